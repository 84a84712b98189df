package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ooru-foods/app"
	"ooru-foods/config"
	_ "ooru-foods/docs"
	"ooru-foods/libs"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// @title Ooru Foods API
// @version 1.0
// @description Storefront API for Ooru Foods: catalog, cart and checkout.
// @host localhost:8082
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-KEY
// @securityDefinitions.apikey SessionID
// @in header
// @name X-Session-ID
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	libs.InitLogger(os.Getenv("APP_ENV"))

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	libs.InitLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := libs.SetupTracer(ctx, "ooru-foods", cfg.OTLPEndpoint, cfg.AppEnv)
	if err != nil {
		slog.Error("Failed to set up tracing", "error", err)
		os.Exit(1)
	}

	application, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to start application", "error", err)
		os.Exit(1)
	}

	go application.Flusher.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(application.Router, "ooru-foods"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Port, "environment", cfg.AppEnv)
		slog.Info("Swagger UI: http://localhost:" + cfg.Port + "/swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	if err := application.Close(); err != nil {
		slog.Error("Failed to close application", "error", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		slog.Error("Failed to flush traces", "error", err)
	}
}
