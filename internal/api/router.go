package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/relaybot/sheetmail/internal/api/handler"
	apimw "github.com/relaybot/sheetmail/internal/api/middleware"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
//
// webhook is nil in long-poll deployments, which leaves health and metrics
// as the only inbound surface.
func NewRouter(webhook *handler.WebhookHandler, reg prometheus.Gatherer, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)          // recover panics, return 500
	r.Use(chimw.RealIP)             // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1 << 20)) // update envelopes are small; 1 MB is generous
	r.Use(apimw.CorrelationID)      // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- routes ---
	hh := handler.NewHealthHandler()
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	if webhook != nil {
		r.Post("/webhook", webhook.Receive)
	}

	return r
}
