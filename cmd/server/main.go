// Command server runs the Interu HTTP API.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"interu/internal/bootstrap"
	"interu/internal/config"
	"interu/internal/middleware"
	"interu/internal/observability"
	"interu/internal/server"
)

// @title Interu API
// @version 1.0
// @description Skill exchange platform API: posts, exchange chats, ratings, notifications and moderation

// @contact.name API Support
// @contact.email support@interu.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8400
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.ConfigureLogger(os.Stdout, cfg.Env, os.Getenv("LOG_LEVEL"))

	ctx := context.Background()
	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:    "interu-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	db, redisClient, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	srv, err := server.NewServerWithDeps(cfg, db, redisClient)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	go func() {
		if err := srv.Start(); err != nil {
			middleware.Logger.Error("server stopped", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	middleware.Logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		middleware.Logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		middleware.Logger.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
}
