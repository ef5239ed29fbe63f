package api

import (
	"net/http"

	"github.com/taghive/taghive/pkg/httputil"
	"github.com/taghive/taghive/pkg/model"
)

// listContainers handles GET /v1/containers with an optional
// account_id query filter.
func (s *Server) listContainers(w http.ResponseWriter, r *http.Request) {
	accountID := httputil.ParseQueryString(r, "account_id", "")

	containers, err := s.store.ListContainers(accountID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, containers)
}

// getContainer handles GET /v1/containers/{id}
func (s *Server) getContainer(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	container, err := s.store.GetContainer(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, container)
}

// upsertContainer handles PUT /v1/containers
func (s *Server) upsertContainer(w http.ResponseWriter, r *http.Request) {
	var payload model.ContainerUpsert
	if !httputil.ParseJSONOrError(w, r, &payload) {
		return
	}

	container, err := s.store.UpsertContainer(payload)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.countUpsert("containers")
	s.logger.WithFields(map[string]any{
		"container_id": container.ContainerID,
		"account_id":   container.AccountID,
	}).Info("container upserted")
	httputil.WriteSuccess(w, map[string]any{
		"ok":           true,
		"container_id": container.ContainerID,
		"container":    container,
	})
}
