package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/taghive/taghive/pkg/analytics"
	"github.com/taghive/taghive/pkg/httputil"
	"github.com/taghive/taghive/pkg/ident"
	"github.com/taghive/taghive/pkg/model"
	"github.com/taghive/taghive/pkg/observability"
)

// Server represents our API server
type Server struct {
	store     model.Store
	analytics *analytics.Service
	router    *mux.Router
	logger    *observability.Logger
	metrics   *observability.Metrics
	authMW    func(http.Handler) http.Handler
	now       func() time.Time
}

// Option customizes a Server.
type Option func(*Server)

// WithAuthMiddleware installs the access-gate middleware on every data
// endpoint. The health endpoint stays open.
func WithAuthMiddleware(mw func(http.Handler) http.Handler) Option {
	return func(s *Server) { s.authMW = mw }
}

// WithMetrics wires business counters (ingests, upserts) into handlers.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithClock injects the time source used as "now" for analytics reads.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer creates a new API server
func NewServer(store model.Store, svc *analytics.Service, logger *observability.Logger, opts ...Option) *Server {
	s := &Server{
		store:     store,
		analytics: svc,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	r := mux.NewRouter()

	// Health is public; everything else sits behind the access gate.
	r.HandleFunc("/v1/health", s.health).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()
	if s.authMW != nil {
		v1.Use(mux.MiddlewareFunc(s.authMW))
	}

	// Account routes
	v1.HandleFunc("/accounts", s.listAccounts).Methods("GET")
	v1.HandleFunc("/accounts", s.upsertAccount).Methods("PUT")
	v1.HandleFunc("/accounts/{id}", s.getAccount).Methods("GET")

	// Container routes
	v1.HandleFunc("/containers", s.listContainers).Methods("GET")
	v1.HandleFunc("/containers", s.upsertContainer).Methods("PUT")
	v1.HandleFunc("/containers/{id}", s.getContainer).Methods("GET")

	// Ingest route
	v1.HandleFunc("/ingest", s.ingestEvent).Methods("POST")

	// Analytics routes
	v1.HandleFunc("/analytics/overview", s.getOverview).Methods("GET")
	v1.HandleFunc("/analytics/top-event", s.getTopEvent).Methods("GET")
	v1.HandleFunc("/analysis/chat", s.chatAnalysis).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(s.notFound)

	s.router = r
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// health handles GET /v1/health
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]bool{"ok": true})
}

// notFound answers unmatched routes with a structured hint.
func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusNotFound, map[string]string{
		"error": "route not found",
		"hint":  "available: /v1/health, /v1/accounts, /v1/containers, /v1/ingest, /v1/analytics/overview, /v1/analysis/chat",
	})
}

// writeStoreError maps core error kinds onto HTTP status codes. The core
// itself never touches the response writer.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case model.IsValidation(err):
		httputil.WriteValidationError(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		httputil.WriteNotFoundError(w, err.Error())
	case errors.Is(err, ident.ErrExhausted):
		s.logger.WithError(err).Error("identifier generation exhausted")
		httputil.WriteInternalError(w, err)
	default:
		s.logger.WithError(err).Error("unexpected store error")
		httputil.WriteInternalError(w, err)
	}
}

func (s *Server) countUpsert(collection string) {
	if s.metrics != nil {
		s.metrics.UpsertsTotal.WithLabelValues(collection).Inc()
	}
}
