package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taghive/taghive/pkg/auth"
	"github.com/taghive/taghive/pkg/observability"
)

func newTestMiddleware(buf *bytes.Buffer) *APIKeyAuth {
	logger := observability.NewLogger(observability.WarnLevel, buf)
	return NewAPIKeyAuth(auth.NewGate("valid-secret-key"), logger)
}

func protected(mw *APIKeyAuth) http.Handler {
	return mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
}

func TestAPIKeyAuthAccepts(t *testing.T) {
	var buf bytes.Buffer
	handler := protected(newTestMiddleware(&buf))

	r := httptest.NewRequest("GET", "/v1/accounts", nil)
	r.Header.Set(APIKeyHeader, "valid-secret-key")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, buf.String())
}

func TestAPIKeyAuthRejectsMissing(t *testing.T) {
	var buf bytes.Buffer
	handler := protected(newTestMiddleware(&buf))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/v1/accounts", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid or missing api key")
}

func TestAPIKeyAuthRejectsWrongAndLogsMaskedOnly(t *testing.T) {
	var buf bytes.Buffer
	handler := protected(newTestMiddleware(&buf))

	r := httptest.NewRequest("GET", "/v1/accounts", nil)
	r.Header.Set(APIKeyHeader, "stolen-credential")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, buf.String(), "sto...ial")
	assert.NotContains(t, buf.String(), "stolen-credential")
}
