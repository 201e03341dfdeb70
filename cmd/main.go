package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/weiawesome/collab-service/internal/config"
	"github.com/weiawesome/collab-service/internal/guard"
	"github.com/weiawesome/collab-service/internal/handler"
	"github.com/weiawesome/collab-service/internal/hub"
	"github.com/weiawesome/collab-service/internal/kafka"
	"github.com/weiawesome/collab-service/internal/registry"
	"github.com/weiawesome/collab-service/internal/service"
	"github.com/weiawesome/collab-service/pkg/jwt"
	pkglog "github.com/weiawesome/collab-service/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	pkglog.Init(cfg.Log)
	l := pkglog.L()
	l.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting collab service")

	// Initialize Redis registry
	reg, err := registry.NewRedisRegistry(cfg.Redis, cfg.Server.AdvertiseAddress)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize redis registry")
	}
	defer reg.Close()
	l.Info().Str("address", cfg.Redis.Address).Msg("connected to redis")

	// Initialize Kafka producer
	producer, err := kafka.NewConfluentProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Partitions)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize kafka producer")
	}
	l.Info().Str("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("connected to kafka")

	// Initialize room access guard
	roomGuard := guard.NewRoomGuard(cfg.Rooms.BaseURL, cfg.Rooms.CacheTTL)
	l.Info().Str("base_url", cfg.Rooms.BaseURL).Msg("room guard configured")

	// Initialize token verifier
	if cfg.Auth.JWTSecret == "" {
		l.Fatal().Msg("JWT_SECRET is required")
	}
	verifier := jwt.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	// Initialize hub and service
	wsHub := hub.New(cfg.WebSocket)
	collabSvc := service.NewCollabService(wsHub, verifier, roomGuard, producer, reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := collabSvc.Start(ctx); err != nil {
		l.Fatal().Err(err).Msg("failed to start collab service")
	}
	defer collabSvc.Stop()

	// Setup routes
	router := mux.NewRouter()
	router.Use(pkglog.HTTPMiddleware(pkglog.L()))

	wsHandler := handler.NewWSHandler(wsHub, collabSvc)
	wsHandler.RegisterRoutes(router)

	httpHandler := handler.NewHTTPHandler(wsHub)
	httpHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		l.Info().Str("addr", server.Addr).Msg("collab service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info().Msg("shutting down collab service")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("server forced to shutdown")
	}

	l.Info().Msg("collab service stopped")
}
