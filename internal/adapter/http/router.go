package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/adapter/http/handler"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/adapter/http/middleware"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/infrastructure/metrics"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ChargeHandler       *handler.ChargeHandler
	PostingHandler      *handler.PostingHandler
	CashRegisterHandler *handler.CashRegisterHandler
	HealthHandler       *handler.HealthHandler
	IdempotencyStore    usecase.IdempotencyStore
	RateLimiter         *middleware.RateLimiter
	Metrics             *metrics.Metrics
	Logger              zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)

	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
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

		// Client ledgers
		r.Route("/clients/{id}", func(r chi.Router) {
			r.Get("/charges", cfg.ChargeHandler.List)
			r.Post("/charges", cfg.ChargeHandler.Create)
			r.Get("/charges/balances", cfg.ChargeHandler.Balances)
			r.Post("/charges/carryforward", cfg.ChargeHandler.CarryForward)
			r.Get("/charges/postings", cfg.PostingHandler.States)
		})

		// Charges
		r.Route("/charges/{id}", func(r chi.Router) {
			r.Put("/", cfg.ChargeHandler.Update)
			r.Delete("/", cfg.ChargeHandler.Delete)
			r.Get("/postings", cfg.PostingHandler.State)
			r.Post("/postings", cfg.PostingHandler.Post)
			r.Post("/withdraw", cfg.CashRegisterHandler.Withdraw)
		})

		// Expense ledgers
		r.Route("/depenses", func(r chi.Router) {
			r.Get("/", cfg.PostingHandler.List)
			r.Post("/", cfg.PostingHandler.Create)
			r.Delete("/{id}", cfg.PostingHandler.Delete)
		})

		// Cash register
		r.Route("/caisse", func(r chi.Router) {
			r.Get("/", cfg.CashRegisterHandler.Snapshot)
			r.Post("/", cfg.CashRegisterHandler.Add)
			r.Put("/{id}", cfg.CashRegisterHandler.Update)
			r.Delete("/{id}", cfg.CashRegisterHandler.Delete)
		})
	})

	return r
}
