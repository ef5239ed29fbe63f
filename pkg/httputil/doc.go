// Package httputil provides HTTP utilities for standardized request and
// response handling.
//
// # Response Helpers
//
//	httputil.WriteSuccess(w, data)
//	httputil.WriteValidationError(w, "name is required")
//	httputil.WriteNotFoundError(w, err.Error())
//
// # Middleware
//
// Request-id assignment, structured request logging, panic recovery, CORS,
// and body-size limiting, composable through Chain:
//
//	handler := httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//	)(server)
package httputil
