package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/autorentar/rental-payments/api"
	"github.com/autorentar/rental-payments/internal/payment"
	"github.com/autorentar/rental-payments/internal/split"
	"github.com/autorentar/rental-payments/internal/transport"
	"github.com/autorentar/rental-payments/internal/transport/middleware"
	"github.com/autorentar/rental-payments/internal/transport/rest"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server for payment webhooks and payment splits`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	App      *App
	Router   *chi.Mux
	InFlight *middleware.InFlight
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	cfg := deps.App.Config
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("Starting HTTP server", "address", addr, "env", cfg.App.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig, "in_flight", deps.InFlight.Active())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		deps.App.Close()
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	app := deps.App
	baseHandler := transport.NewBaseHandler(deps.Logger)

	schema, err := payment.NewSchemaValidator(api.OpenAPISpec)
	if err != nil {
		return err
	}
	webhookHandler := payment.NewWebhookHandler(
		baseHandler,
		app.PaymentService,
		payment.NewHMACVerifier(app.Config.Security),
		schema,
	)
	splitHandler := split.NewHandler(baseHandler, app.SplitService)

	checks := map[string]rest.Check{
		"postgres": app.DB.PingContext,
	}
	if app.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		}
	}
	health := rest.NewHealthHandler(checks, deps.InFlight.Active)

	if app.Config.Security.JWTSecret == "" {
		deps.Logger.Warn("jwt_secret not set, split endpoint only checks bearer presence")
	}

	rest.RegisterAllRoutes(deps.Router, rest.RouterConfig{
		AllowedOrigins: app.Config.Server.AllowedOrigins,
		JWTSecret:      app.Config.Security.JWTSecret,
		InFlight:       deps.InFlight,
		Logger:         deps.Logger,
	}, health, webhookHandler, splitHandler)
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	app, err := newApp(config)
	if err != nil {
		return nil, err
	}

	return &Dependencies{
		App:      app,
		Router:   chi.NewRouter(),
		InFlight: middleware.NewInFlight(),
		Logger:   app.Logger,
	}, nil
}
