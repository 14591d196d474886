package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/dd0wney/cluso-tradenet/pkg/api/middleware"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.PanicRecovery(s.logger))
	r.Use(middleware.Logging(s.logger))
	r.Use(middleware.Metrics(s.metrics))
	r.Use(middleware.SecurityHeaders(nil))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", s.health.LivenessHandler())
	r.Get("/ready", s.health.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/countries", s.handleCountries)
		r.Get("/countries/{country}", s.handleCountry)
		r.Get("/compare", s.handleCompare)
		r.Get("/records", s.handleRecords)
		r.Get("/network", s.handleNetwork)
		r.Get("/clusters", s.handleClusters)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.BodySizeLimit(middleware.DefaultMaxBodyBytes))
		r.Use(s.authenticate)
		r.Post("/graphql", s.handleGraphQL)
	})

	return r
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	if s.graphql == nil {
		s.respondError(w, http.StatusServiceUnavailable, "GraphQL endpoint not available")
		return
	}
	s.graphql.ServeHTTP(w, r)
}
