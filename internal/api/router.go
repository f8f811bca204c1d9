package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Route patterns.
const (
	RouteHelloWorld      = "/api/v1/helloworld"
	RouteQueryDevice     = "/queryDevice"
	RouteQueryCredential = "/queryDeviceCredential"
	RouteDeviceChange    = "/deviceChange"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)
	if s.cfg.GetRequestTimeout() > 0 {
		r.Use(s.timeoutMiddleware)
	}

	r.Get(RouteHelloWorld, s.handleHelloWorld)
	r.Post(RouteQueryDevice, s.handleQueryDevice)
	r.Post(RouteQueryCredential, s.handleQueryCredential)
	r.Post(RouteDeviceChange, s.handleDeviceChange)

	// Adapters only know the four routes above; a wrong method is as
	// unknown to them as a wrong path.
	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleNotFound)

	return r
}
