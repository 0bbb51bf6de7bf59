package handler

import (
	"github.com/gorilla/mux"

	"github.com/damon-houk/fxconv/internal/infrastructure/logger"
	"github.com/damon-houk/fxconv/internal/infrastructure/metrics"
	"github.com/damon-houk/fxconv/internal/infrastructure/middleware"
)

// RouteRegistrar is implemented by every handler
type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// NewRouter builds the API router with request-ID, logging, metrics and
// panic recovery middleware and the /metrics endpoint.
func NewRouter(log logger.Logger, handlers ...RouteRegistrar) *mux.Router {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	router := mux.NewRouter()
	router.Use(
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware(log),
		middleware.MetricsMiddleware,
		middleware.RecoveryMiddleware(log),
	)

	for _, h := range handlers {
		h.RegisterRoutes(router)
	}

	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	return router
}
