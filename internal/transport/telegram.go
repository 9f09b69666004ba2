package transport

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hafta3/tablebot/internal/conversation"
	"github.com/hafta3/tablebot/internal/reservations"
	"github.com/hafta3/tablebot/pkg/logging"
)

// TelegramBot binds the conversation engine to Telegram long polling.
type TelegramBot struct {
	api            *tgbotapi.BotAPI
	service        conversation.Service
	reservations   *reservations.Service
	restaurantName string
	logger         *logging.Logger
}

// NewTelegramBot authenticates against the bot API.
func NewTelegramBot(token string, service conversation.Service, resv *reservations.Service, restaurantName string, logger *logging.Logger) (*TelegramBot, error) {
	if service == nil {
		panic("transport: conversation service required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to create telegram bot: %w", err)
	}
	logger.Info("authenticated with telegram", "bot", api.Self.UserName)

	return &TelegramBot{
		api:            api,
		service:        service,
		reservations:   resv,
		restaurantName: restaurantName,
		logger:         logger,
	}, nil
}

// Run polls for updates until ctx is cancelled.
func (b *TelegramBot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			b.handleUpdate(ctx, update.Message)
		}
	}
}

func (b *TelegramBot) handleUpdate(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := strconv.FormatInt(msg.From.ID, 10)

	if msg.IsCommand() {
		if msg.Command() == "start" {
			b.handleStart(ctx, chatID, userID)
		}
		return
	}

	// Let the customer see something is happening during the gateway call.
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Debug("failed to send typing action", "error", err)
	}

	resp, err := b.service.ProcessMessage(ctx, conversation.MessageRequest{
		UserID: userID,
		Text:   msg.Text,
	})
	if err != nil {
		b.logger.Error("failed to process telegram message", "error", err, "user_id", userID)
		return
	}

	for _, reply := range resp.Replies {
		b.send(chatID, reply)
	}
}

// handleStart resets the dialogue and greets with a reservation summary.
func (b *TelegramBot) handleStart(ctx context.Context, chatID int64, userID string) {
	if err := b.service.Reset(ctx, userID); err != nil {
		b.logger.Error("failed to reset dialogue on /start", "error", err, "user_id", userID)
	}

	greeting := fmt.Sprintf(
		"Welcome! I'm the reservation assistant for %s. Tell me the date, time, and party size you'd like, or give me a reservation id to look one up.",
		b.restaurantName,
	)
	if b.reservations != nil {
		if count, err := b.reservations.Count(ctx); err == nil && count > 0 {
			greeting += fmt.Sprintf(" We're currently holding %d reservations.", count)
		}
	}
	b.send(chatID, greeting)
}

func (b *TelegramBot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send telegram message", "error", err, "chat_id", chatID)
	}
}
