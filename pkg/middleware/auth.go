package middleware

import (
	"errors"
	"net/http"

	"github.com/taghive/taghive/pkg/auth"
	"github.com/taghive/taghive/pkg/httputil"
	"github.com/taghive/taghive/pkg/observability"
)

// APIKeyHeader carries the shared-secret credential on every request.
const APIKeyHeader = "x-api-key"

// APIKeyAuth rejects requests whose x-api-key header does not match the
// configured secret. It runs before any store or analytics operation, so a
// rejected request has no observable side effect.
type APIKeyAuth struct {
	gate   *auth.Gate
	logger *observability.Logger
}

// NewAPIKeyAuth creates the authentication middleware.
func NewAPIKeyAuth(gate *auth.Gate, logger *observability.Logger) *APIKeyAuth {
	return &APIKeyAuth{
		gate:   gate,
		logger: logger,
	}
}

// Handler wraps an HTTP handler with API key validation.
func (m *APIKeyAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := m.gate.Authorize(r.Header.Get(APIKeyHeader)); err != nil {
			// only the masked credential ever reaches the log
			masked := ""
			var ue *auth.UnauthorizedError
			if errors.As(err, &ue) {
				masked = ue.MaskedKey
			}
			m.logger.WithFields(map[string]interface{}{
				"method":  r.Method,
				"path":    r.URL.Path,
				"api_key": masked,
			}).Warn("request rejected: invalid or missing api key")

			httputil.WriteUnauthorized(w, "invalid or missing api key")
			return
		}

		next.ServeHTTP(w, r)
	})
}
