package api

import (
	"net/http"

	"github.com/taghive/taghive/pkg/httputil"
)

type chatRequest struct {
	Prompt string `json:"prompt"`
}

// getOverview handles GET /v1/analytics/overview
func (s *Server) getOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.analytics.Overview(s.now())
	if err != nil {
		s.logger.WithError(err).Error("overview aggregation failed")
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, overview)
}

// getTopEvent handles GET /v1/analytics/top-event
func (s *Server) getTopEvent(w http.ResponseWriter, r *http.Request) {
	top, err := s.analytics.TopEvent()
	if err != nil {
		s.logger.WithError(err).Error("top-event aggregation failed")
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, top)
}

// chatAnalysis handles POST /v1/analysis/chat
func (s *Server) chatAnalysis(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	answer, err := s.analytics.Answer(req.Prompt)
	if err != nil {
		s.logger.WithError(err).Error("chat analysis failed")
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]string{"answer": answer})
}
