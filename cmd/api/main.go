package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hafta3/tablebot/internal/api/router"
	appconfig "github.com/hafta3/tablebot/internal/config"
	"github.com/hafta3/tablebot/internal/conversation"
	"github.com/hafta3/tablebot/internal/reservations"
	"github.com/hafta3/tablebot/internal/transport"
	"github.com/hafta3/tablebot/pkg/logging"
)

func main() {
	// Load .env if present (development convenience).
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting tablebot API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
	)

	ctx := context.Background()

	llm, err := conversation.NewLLMClient(ctx, cfg)
	if err != nil {
		logger.Error("failed to create LLM client", "error", err)
		os.Exit(1)
	}

	history, err := conversation.NewHistory(ctx, cfg.RestaurantName, cfg.RedisAddr, cfg.RedisPassword, cfg.DialogueTTL)
	if err != nil {
		logger.Error("failed to create dialogue history", "error", err)
		os.Exit(1)
	}

	store := reservations.NewMemoryStore()
	resv := reservations.NewService(store, cfg.MaxPartySize, cfg.TableLabel, logger)

	metrics := conversation.NewMetrics(nil)
	engine := conversation.NewEngine(llm, history, resv, logger, metrics, cfg.LLMTimeout)
	handler := conversation.NewHandler(engine, logger)

	r := router.New(&router.Config{
		Logger:              logger,
		ConversationHandler: handler,
		MetricsHandler:      promhttp.Handler(),
	})

	// Optional NATS binding for backends that front the bot themselves.
	var natsTransport *transport.NATSTransport
	if cfg.NatsURL != "" {
		natsTransport, err = transport.NewNATSTransport(cfg.NatsURL, cfg.NatsSubject, engine, cfg.LLMTimeout*2, logger)
		if err != nil {
			logger.Error("failed to initialize NATS transport", "error", err)
			os.Exit(1)
		}
		if err := natsTransport.Start(); err != nil {
			logger.Error("failed to start NATS transport", "error", err)
			os.Exit(1)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * cfg.LLMTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if natsTransport != nil {
		_ = natsTransport.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
