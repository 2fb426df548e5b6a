package rest

import (
	"log/slog"
	"net/http"

	"github.com/autorentar/rental-payments/api"
	"github.com/autorentar/rental-payments/internal/payment"
	"github.com/autorentar/rental-payments/internal/split"
	"github.com/autorentar/rental-payments/internal/transport/middleware"
	"github.com/autorentar/rental-payments/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type RouterConfig struct {
	AllowedOrigins string
	// JWTSecret is optional; without it any bearer token reaches the split route.
	JWTSecret string
	InFlight  *middleware.InFlight
	Logger    *slog.Logger
}

// RegisterAllRoutes mounts the webhook and split endpoints plus health and docs.
// Nil handlers are skipped.
func RegisterAllRoutes(router *chi.Mux, cfg RouterConfig, health *HealthHandler, webhookHandler *payment.WebhookHandler, splitHandler *split.Handler) {
	if cfg.InFlight == nil {
		cfg.InFlight = middleware.NewInFlight()
	}

	// Apply global middleware
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(cfg.Logger))
	router.Use(middleware.RecoveryMiddleware(cfg.Logger))
	router.Use(cfg.InFlight.Middleware)

	router.Get(swagger.SpecPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(api.OpenAPISpec)
	})
	router.Handle("/swagger/*", swagger.Handler())

	if health != nil {
		router.Get("/health", health.healthCheckHandler)
		router.Get("/ping", health.pingHandler)
	}

	// Registered for every method so the handlers answer 405 themselves.
	if webhookHandler != nil {
		router.HandleFunc("/payment-webhook", webhookHandler.HandleWebhook)
	}

	if splitHandler != nil {
		router.Group(func(pr chi.Router) {
			pr.Use(middleware.RequireBearer(cfg.JWTSecret, cfg.Logger))
			pr.HandleFunc("/process-payment-split", splitHandler.ProcessSplit)
		})
	}
}
