package api

import (
	"net/http"

	"github.com/taghive/taghive/pkg/httputil"
	"github.com/taghive/taghive/pkg/model"
)

// ingestEvent handles POST /v1/ingest
func (s *Server) ingestEvent(w http.ResponseWriter, r *http.Request) {
	var payload model.EventInput
	if !httputil.ParseJSONOrError(w, r, &payload) {
		return
	}

	event, err := s.store.AppendEvent(payload)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.EventsIngestedTotal.Inc()
	}
	s.logger.WithFields(map[string]any{
		"event_id": event.ID,
		"event":    event.Name,
	}).Info("event ingested")
	httputil.WriteSuccess(w, map[string]any{
		"ok": true,
		"id": event.ID,
	})
}
