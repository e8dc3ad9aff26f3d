package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/albisri/kasledger/internal/adapter/http/handler"
	"github.com/albisri/kasledger/internal/adapter/http/middleware"
	"github.com/albisri/kasledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	EntryHandler     *handler.EntryHandler
	TransferHandler  *handler.TransferHandler
	EventHandler     *handler.EventHandler
	MonitorHandler   *handler.MonitorHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/code/{code}", cfg.AccountHandler.GetByCode)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Patch("/{id}", cfg.AccountHandler.Update)
			r.Delete("/{id}", cfg.AccountHandler.Delete)
			r.Post("/{id}/default", cfg.AccountHandler.SetDefault)
			r.Put("/{id}/status", cfg.AccountHandler.SetStatus)
			r.Post("/{id}/toggle", cfg.AccountHandler.ToggleStatus)
			r.Get("/{id}/balance", cfg.AccountHandler.Balance)
			r.Post("/{id}/resync", cfg.AccountHandler.Resync)
			r.Get("/{id}/entries", cfg.EntryHandler.ListByAccount)
		})

		// Entries
		r.Route("/entries", func(r chi.Router) {
			r.Post("/", cfg.EntryHandler.Create)
			r.Get("/", cfg.EntryHandler.List)
			r.Get("/{id}", cfg.EntryHandler.Get)
			r.Post("/{id}/cancel", cfg.EntryHandler.Cancel)
			r.Post("/{id}/source", cfg.EntryHandler.LinkSource)
		})

		// Transfers
		r.Post("/transfers", cfg.TransferHandler.Create)

		// Auto-posting events from origin modules
		r.Route("/events", func(r chi.Router) {
			r.Post("/", cfg.EventHandler.Post)
			r.Delete("/{module}/{sourceID}", cfg.EventHandler.Unpost)
		})

		// Consistency monitor
		r.Route("/monitor", func(r chi.Router) {
			r.Get("/duplicates", cfg.MonitorHandler.Duplicates)
			r.Get("/orphans", cfg.MonitorHandler.Orphans)
			r.Get("/summary", cfg.MonitorHandler.Summary)
			r.Get("/drift", cfg.MonitorHandler.BalanceDrift)
		})
	})

	return r
}
