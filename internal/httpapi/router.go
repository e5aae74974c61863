// Package httpapi wires the turn pipeline and registry/audit admin
// operations into a Chi router.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/coastlineai/sentinel/internal/audit"
	httpmiddleware "github.com/coastlineai/sentinel/internal/http/middleware"
	"github.com/coastlineai/sentinel/internal/observability/metrics"
	"github.com/coastlineai/sentinel/internal/orchestrator"
	"github.com/coastlineai/sentinel/internal/registry"
	"github.com/coastlineai/sentinel/pkg/logging"
)

// Config holds the dependencies the router needs to build its handlers.
type Config struct {
	Logger             *logging.Logger
	Orchestrator       *orchestrator.Orchestrator
	RegistryStore      *registry.Store
	AuditStore         *audit.Store
	Metrics            *metrics.TurnMetrics
	MetricsHandler     http.Handler
	AdminAuthSecret    string
	CORSAllowedOrigins []string
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New builds the Chi router for the turn API and admin endpoints.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	r.Get("/health", Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	turnHandler := NewTurnHandler(cfg.Orchestrator, cfg.Metrics, cfg.Logger)
	r.Route("/v1", func(v1 chi.Router) {
		v1.Post("/turn", turnHandler.Process)
	})

	if cfg.AdminAuthSecret != "" {
		registryHandler := NewAdminRegistryHandler(cfg.RegistryStore, cfg.Logger)
		eventsHandler := NewAdminEventsHandler(cfg.AuditStore, cfg.Logger)

		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))

			admin.Route("/registry", func(reg chi.Router) {
				reg.Get("/{region}/{situationType}", registryHandler.Lookup)
				reg.Put("/resources", registryHandler.Upsert)
				reg.Delete("/resources/{resourceID}", registryHandler.Retire)
				reg.Post("/verifications", registryHandler.RecordVerification)
			})

			admin.Get("/events", eventsHandler.List)
			admin.Patch("/events/{eventID}/review", eventsHandler.SetReviewerStatus)
		})
	}

	return r
}
