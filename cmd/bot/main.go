package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	appconfig "github.com/hafta3/tablebot/internal/config"
	"github.com/hafta3/tablebot/internal/conversation"
	"github.com/hafta3/tablebot/internal/reservations"
	"github.com/hafta3/tablebot/internal/transport"
	"github.com/hafta3/tablebot/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting tablebot telegram bot",
		"restaurant", cfg.RestaurantName,
		"llm_provider", cfg.LLMProvider,
	)

	if cfg.TelegramToken == "" {
		logger.Error("TELEGRAM_BOT_TOKEN is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	bot, err := transport.NewTelegramBot(cfg.TelegramToken, engine, resv, cfg.RestaurantName, logger)
	if err != nil {
		logger.Error("failed to create telegram bot", "error", err)
		os.Exit(1)
	}

	logger.Info("bot running, waiting for messages")
	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("bot stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("bot stopped")
}
