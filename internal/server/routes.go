package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"seotrack/internal/handlers"
	"seotrack/internal/handlers/api"
)

// Deps are the collaborators the routes are served by.
type Deps struct {
	DB    handlers.Pinger
	Queue handlers.Pinger
	Jobs  *api.JobHandler
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(deps Deps) {
	s.RegisterProbes(deps.DB, deps.Queue)

	// Job trigger API
	jobs := s.App.Group("/api/jobs")
	jobs.Post("/collection", deps.Jobs.Collection)
	jobs.Post("/analysis", deps.Jobs.Analysis)
	jobs.Post("/forecast", deps.Jobs.Forecast)
	jobs.Get("/:id", deps.Jobs.Get)
}

// RegisterProbes registers the health probes and the metrics endpoint. It is
// all the worker process serves.
func (s *Server) RegisterProbes(database, queue handlers.Pinger) {
	probeHandler := handlers.NewProbeHandler(database, queue)

	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
