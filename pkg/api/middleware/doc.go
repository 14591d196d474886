// Package middleware provides the HTTP middleware of the tradenet API.
//
// Every middleware has the shape func(http.Handler) http.Handler so it can
// be passed to chi's Router.Use:
//
//	r := chi.NewRouter()
//	r.Use(middleware.RequestID())
//	r.Use(middleware.PanicRecovery(logger))
//	r.Use(middleware.Logging(logger))
//	r.Use(middleware.Metrics(registry))
package middleware
