package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"whatsapp-boost/internal/handler"
	"whatsapp-boost/internal/metrics"
	"whatsapp-boost/internal/middleware"
	"whatsapp-boost/pkg/logger"
)

// Handlers groups the operator HTTP handlers
type Handlers struct {
	Health   *handler.HealthHandler
	Deposits *handler.DepositsHandler
	Groups   *handler.GroupsHandler
	Webhook  *handler.WebhookHandler
}

// SetupRoutes builds the operator HTTP API
func SetupRoutes(h Handlers, auth *middleware.AuthMiddleware, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	// Public routes
	r.Get("/health", h.Health.CheckHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	if !auth.Enabled() {
		log.Warn("API_KEY is not set, operator API is read-only")
	}

	// Protected routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Route("/deposits", func(r chi.Router) {
			r.Get("/", h.Deposits.ListDeposits)
			r.Get("/{externalID}", h.Deposits.GetDeposit)
			if auth.Enabled() {
				r.Delete("/{externalID}", h.Deposits.CancelDeposit)
			}
		})

		r.Get("/groups", h.Groups.ListGroups)

		// Message injection acts as any chat, never mount it without a key
		if auth.Enabled() {
			r.Post("/webhook/message", h.Webhook.ReceiveMessage)
		}
	})

	return r
}
