package api

import (
	"net/http"

	"github.com/taghive/taghive/pkg/httputil"
	"github.com/taghive/taghive/pkg/model"
)

// listAccounts handles GET /v1/accounts
func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.ListAccounts()
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, accounts)
}

// getAccount handles GET /v1/accounts/{id}
func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	account, err := s.store.GetAccount(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, account)
}

// upsertAccount handles PUT /v1/accounts
func (s *Server) upsertAccount(w http.ResponseWriter, r *http.Request) {
	var payload model.AccountUpsert
	if !httputil.ParseJSONOrError(w, r, &payload) {
		return
	}

	account, err := s.store.UpsertAccount(payload)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.countUpsert("accounts")
	s.logger.WithField("account_id", account.AccountID).Info("account upserted")
	httputil.WriteSuccess(w, map[string]any{
		"ok":         true,
		"account_id": account.AccountID,
		"account":    account,
	})
}
