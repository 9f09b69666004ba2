package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hafta3/tablebot/internal/reservations"
	"github.com/hafta3/tablebot/pkg/logging"
)

var engineTracer = otel.Tracer("tablebot.internal.conversation")

// Terminal outcomes of one inbound message.
const (
	OutcomeChat           = "chat"
	OutcomeCreated        = "created"
	OutcomeRetrieved      = "retrieved"
	OutcomeRejected       = "rejected"
	OutcomeGatewayFailure = "gateway_failure"
	OutcomeError          = "error"
)

const (
	apologyReply  = "Sorry, I'm having trouble reaching the reservation assistant right now. Please try again in a moment."
	checkingReply = "Checking your reservation details, one moment please..."
)

// Service is the conversation engine contract consumed by transports.
type Service interface {
	ProcessMessage(ctx context.Context, req MessageRequest) (*Response, error)
	Reset(ctx context.Context, userID string) error
}

// MessageRequest is one inbound chat message.
type MessageRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// Response carries the ordered outbound replies for one inbound message:
// one reply on the chat, success, and failure paths; two on the rejection
// path (the interim notice, then the post-feedback reply).
type Response struct {
	Replies     []string
	Outcome     string
	Reservation *reservations.Record
}

// Engine is the dialogue controller. It owns the per-message state machine:
// load memory, call the gateway, classify the completion, dispatch structured
// intents, and loop rejection feedback through the gateway exactly once.
type Engine struct {
	llm          LLMClient
	history      History
	reservations *reservations.Service
	logger       *logging.Logger
	metrics      *Metrics
	timeout      time.Duration

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

var _ Service = (*Engine)(nil)

// NewEngine wires the dialogue controller.
func NewEngine(llm LLMClient, history History, resv *reservations.Service, logger *logging.Logger, metrics *Metrics, timeout time.Duration) *Engine {
	if llm == nil {
		panic("conversation: llm client required")
	}
	if history == nil {
		panic("conversation: history required")
	}
	if resv == nil {
		panic("conversation: reservations service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Engine{
		llm:          llm,
		history:      history,
		reservations: resv,
		logger:       logger,
		metrics:      metrics,
		timeout:      timeout,
		userLocks:    make(map[string]*sync.Mutex),
	}
}

// ProcessMessage handles one inbound message end to end. Failures inside
// dispatch never escape to the transport; they become an apology reply.
func (e *Engine) ProcessMessage(ctx context.Context, req MessageRequest) (resp *Response, err error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, errors.New("conversation: user id required")
	}

	// Turns for one user never interleave; other users proceed in parallel.
	unlock := e.lockUser(req.UserID)
	defer unlock()

	msgID := uuid.NewString()
	ctx, span := engineTracer.Start(ctx, "conversation.process_message")
	defer span.End()
	span.SetAttributes(
		attribute.String("tablebot.user_id", req.UserID),
		attribute.String("tablebot.message_id", msgID),
	)
	logger := e.logger.With("message_id", msgID, "user_id", req.UserID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic during message dispatch", "panic", r)
			resp = e.terminal(OutcomeError, apologyReply)
			err = nil
		}
		if resp != nil {
			e.metrics.ObserveMessage(resp.Outcome)
			span.SetAttributes(attribute.String("tablebot.outcome", resp.Outcome))
		}
	}()

	turns, herr := e.history.GetOrCreate(ctx, req.UserID)
	if herr != nil {
		span.RecordError(herr)
		logger.Error("failed to load dialogue history", "error", herr)
		return e.terminal(OutcomeError, apologyReply), nil
	}

	userTurn := ChatMessage{Role: ChatRoleUser, Content: req.Text}
	if herr := e.history.Append(ctx, req.UserID, userTurn); herr != nil {
		span.RecordError(herr)
		logger.Error("failed to append user turn", "error", herr)
		return e.terminal(OutcomeError, apologyReply), nil
	}
	turns = append(turns, userTurn)

	completion, gerr := e.complete(ctx, turns)
	if gerr != nil {
		// Terminal for this message: fixed apology, no gateway retry, and no
		// memory mutation beyond the user turn already appended.
		logger.Warn("gateway call failed", "error", gerr)
		return e.terminal(OutcomeGatewayFailure, apologyReply), nil
	}

	ext := ExtractIntent(completion)
	if ext.Kind == PlainChat {
		return e.chat(ctx, req.UserID, ext.Text)
	}

	payload, derr := decodeIntent(ext.Payload)
	if derr != nil {
		// The probe parsed but the typed decode did not (e.g. wrong field
		// types). Permissive fallback: show the raw completion unchanged.
		logger.Info("structured payload failed typed decode", "error", derr)
		return e.chat(ctx, req.UserID, ext.Text)
	}

	if !payload.Recognized() {
		// The model clearly attempted a structured response, so route it
		// through the feedback loop rather than echoing JSON at the user.
		logger.Info("unrecognized intent discriminator", "intent", payload.Intent)
		e.metrics.ObserveDispatch("unknown", "unrecognized")
		reason := "the requested operation was not recognized; only creating a reservation or retrieving an existing one is supported"
		return e.feedback(ctx, req.UserID, ext.Payload, reason)
	}

	if !payload.Complete() {
		// Missing fields are prevented upstream by the system prompt; when
		// they slip through anyway, the raw completion is shown as chat.
		logger.Info("incomplete intent payload", "intent", payload.Intent)
		return e.chat(ctx, req.UserID, ext.Text)
	}

	return e.dispatch(ctx, req, payload, ext.Payload)
}

// Reset discards the user's dialogue history so the next message reseeds a
// fresh system-context turn.
func (e *Engine) Reset(ctx context.Context, userID string) error {
	if err := e.history.Clear(ctx, userID); err != nil {
		return err
	}
	e.logger.Info("dialogue reset", "user_id", userID)
	return nil
}

// chat is the terminal CHATTING state: the completion is the reply, verbatim.
func (e *Engine) chat(ctx context.Context, userID, completion string) (*Response, error) {
	if err := e.history.Append(ctx, userID, ChatMessage{Role: ChatRoleAssistant, Content: completion}); err != nil {
		e.logger.Error("failed to append assistant turn", "error", err, "user_id", userID)
	}
	return e.terminal(OutcomeChat, completion), nil
}

// dispatch routes a recognized, complete payload to its domain handler.
func (e *Engine) dispatch(ctx context.Context, req MessageRequest, payload *IntentPayload, rawPayload string) (*Response, error) {
	ctx, span := engineTracer.Start(ctx, "conversation.dispatch")
	defer span.End()
	span.SetAttributes(attribute.String("tablebot.intent", payload.Intent))

	switch payload.Intent {
	case IntentCheckAvailability:
		rec, rejection, err := e.reservations.Create(ctx, reservations.CreateParams{
			Date:             payload.Date,
			Time:             payload.Time,
			PartySize:        payload.PartySize,
			CustomerName:     payload.CustomerName,
			RequestingUserID: req.UserID,
		})
		if err != nil {
			span.RecordError(err)
			e.logger.Error("reservation create failed", "error", err, "user_id", req.UserID)
			return e.terminal(OutcomeError, apologyReply), nil
		}
		if rejection != nil {
			e.metrics.ObserveDispatch(payload.Intent, "rejected")
			return e.feedback(ctx, req.UserID, rawPayload, rejection.Reason)
		}
		e.metrics.ObserveDispatch(payload.Intent, "created")
		if err := e.history.Clear(ctx, req.UserID); err != nil {
			e.logger.Error("failed to clear dialogue after create", "error", err, "user_id", req.UserID)
		}
		resp := e.terminal(OutcomeCreated, renderCreated(rec))
		resp.Reservation = rec
		return resp, nil

	case IntentRetrieveReservation:
		rec, rejection, err := e.reservations.Retrieve(ctx, payload.ReservationID, payload.CustomerName)
		if err != nil {
			span.RecordError(err)
			e.logger.Error("reservation retrieve failed", "error", err, "user_id", req.UserID)
			return e.terminal(OutcomeError, apologyReply), nil
		}
		if rejection != nil {
			e.metrics.ObserveDispatch(payload.Intent, "rejected")
			return e.feedback(ctx, req.UserID, rawPayload, rejection.Reason)
		}
		e.metrics.ObserveDispatch(payload.Intent, "retrieved")
		if err := e.history.Clear(ctx, req.UserID); err != nil {
			e.logger.Error("failed to clear dialogue after retrieve", "error", err, "user_id", req.UserID)
		}
		resp := e.terminal(OutcomeRetrieved, renderRetrieved(rec))
		resp.Reservation = rec
		return resp, nil
	}

	// Unreachable: dispatch is only entered for recognized intents.
	return e.terminal(OutcomeError, apologyReply), nil
}

// feedback performs the single corrective round-trip after a domain
// rejection: record the model's structured attempt, inject the rejection
// reason as a user-role turn, and call the gateway exactly once more. The
// bound is structural; there is no loop here.
func (e *Engine) feedback(ctx context.Context, userID, rawPayload, reason string) (*Response, error) {
	ctx, span := engineTracer.Start(ctx, "conversation.feedback")
	defer span.End()

	if err := e.history.Append(ctx, userID, ChatMessage{Role: ChatRoleAssistant, Content: rawPayload}); err != nil {
		e.logger.Error("failed to record structured attempt", "error", err, "user_id", userID)
		return e.terminal(OutcomeError, apologyReply), nil
	}
	feedbackTurn := ChatMessage{
		Role:    ChatRoleUser,
		Content: fmt.Sprintf("Information from the reservation system: %s. Let the customer know and ask for an updated request.", reason),
	}
	if err := e.history.Append(ctx, userID, feedbackTurn); err != nil {
		e.logger.Error("failed to append feedback turn", "error", err, "user_id", userID)
		return e.terminal(OutcomeError, apologyReply), nil
	}

	turns, err := e.history.GetOrCreate(ctx, userID)
	if err != nil {
		e.logger.Error("failed to reload dialogue for feedback", "error", err, "user_id", userID)
		return e.terminal(OutcomeError, apologyReply), nil
	}

	completion, err := e.complete(ctx, turns)
	if err != nil {
		e.logger.Warn("feedback gateway call failed", "error", err, "user_id", userID)
		return &Response{
			Replies: []string{checkingReply, apologyReply},
			Outcome: OutcomeGatewayFailure,
		}, nil
	}

	if err := e.history.Append(ctx, userID, ChatMessage{Role: ChatRoleAssistant, Content: completion}); err != nil {
		e.logger.Error("failed to append feedback reply", "error", err, "user_id", userID)
	}

	return &Response{
		Replies: []string{checkingReply, completion},
		Outcome: OutcomeRejected,
	}, nil
}

// complete performs one gateway call under the configured timeout. Expired
// deadlines are folded into the unavailable class.
func (e *Engine) complete(ctx context.Context, turns []ChatMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	ctx, span := engineTracer.Start(ctx, "conversation.gateway_complete")
	defer span.End()

	start := time.Now()
	resp, err := e.llm.Complete(ctx, LLMRequest{Messages: turns, Temperature: 0})
	elapsed := time.Since(start).Seconds()
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		}
		status := "error"
		if errors.Is(err, ErrGatewayUnavailable) {
			status = "unavailable"
		}
		e.metrics.ObserveGateway(status, elapsed)
		return "", err
	}
	e.metrics.ObserveGateway("ok", elapsed)
	return strings.TrimSpace(resp.Text), nil
}

func (e *Engine) terminal(outcome, reply string) *Response {
	return &Response{Replies: []string{reply}, Outcome: outcome}
}

func (e *Engine) lockUser(userID string) func() {
	e.mu.Lock()
	l, ok := e.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		e.userLocks[userID] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func renderCreated(rec *reservations.Record) string {
	return fmt.Sprintf(
		"Great news, %s! Your reservation (id: %s) is confirmed.\n\nDate: %s\nTime: %s\nParty size: %d\nTable: %s\n\nWe look forward to welcoming you!",
		rec.CustomerName, rec.ReservationID, rec.Date, rec.Time, rec.PartySize, rec.TableLabel,
	)
}

func renderRetrieved(rec *reservations.Record) string {
	return fmt.Sprintf(
		"Found it! Reservation %s for %s.\n\nDate: %s\nTime: %s\nParty size: %d\nTable: %s",
		rec.ReservationID, rec.CustomerName, rec.Date, rec.Time, rec.PartySize, rec.TableLabel,
	)
}
