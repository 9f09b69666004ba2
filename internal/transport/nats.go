package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/hafta3/tablebot/internal/conversation"
	"github.com/hafta3/tablebot/pkg/logging"
)

// NATSTransport serves conversation turns over NATS request/reply, for
// backends that front the bot themselves.
type NATSTransport struct {
	conn    *nats.Conn
	subject string
	service conversation.Service
	logger  *logging.Logger
	timeout time.Duration
	sub     *nats.Subscription
}

type natsReply struct {
	Replies []string `json:"replies"`
	Outcome string   `json:"outcome"`
	Error   string   `json:"error,omitempty"`
}

// NewNATSTransport connects to NATS and prepares the chat subscription.
func NewNATSTransport(url, subject string, service conversation.Service, timeout time.Duration, logger *logging.Logger) (*NATSTransport, error) {
	if service == nil {
		panic("transport: conversation service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	conn, err := nats.Connect(url,
		nats.Name("tablebot"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to connect to NATS: %w", err)
	}
	logger.Info("connected to NATS", "url", url)

	return &NATSTransport{
		conn:    conn,
		subject: subject,
		service: service,
		logger:  logger,
		timeout: timeout,
	}, nil
}

// Start subscribes to the chat subject.
func (t *NATSTransport) Start() error {
	sub, err := t.conn.Subscribe(t.subject, t.handleMessage)
	if err != nil {
		return fmt.Errorf("transport: failed to subscribe to %s: %w", t.subject, err)
	}
	t.sub = sub
	t.logger.Info("subscribed to chat subject", "subject", t.subject)
	return nil
}

func (t *NATSTransport) handleMessage(msg *nats.Msg) {
	var req conversation.MessageRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		t.logger.Error("failed to parse chat request", "error", err)
		t.respond(msg, natsReply{Error: "invalid request format"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	resp, err := t.service.ProcessMessage(ctx, req)
	if err != nil {
		t.logger.Error("failed to process chat request", "error", err, "user_id", req.UserID)
		t.respond(msg, natsReply{Error: "failed to process message"})
		return
	}

	t.respond(msg, natsReply{Replies: resp.Replies, Outcome: resp.Outcome})
}

func (t *NATSTransport) respond(msg *nats.Msg, reply natsReply) {
	data, err := json.Marshal(reply)
	if err != nil {
		t.logger.Error("failed to marshal chat reply", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		t.logger.Error("failed to send chat reply", "error", err)
	}
}

// Close drains the subscription and closes the connection.
func (t *NATSTransport) Close() error {
	if t.sub != nil {
		_ = t.sub.Unsubscribe()
	}
	if t.conn != nil {
		t.conn.Close()
		t.logger.Info("NATS connection closed")
	}
	return nil
}
