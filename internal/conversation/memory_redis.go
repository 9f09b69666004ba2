package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultDialogueTTL = 30 * time.Minute

// redisHistory stores each user's turns as a JSON array under dialogue:<id>
// with a session TTL, so stale sessions expire on their own.
type redisHistory struct {
	client *redis.Client
	ttl    time.Duration
	seed   seedFunc
	tracer trace.Tracer
}

func newRedisHistory(ctx context.Context, addr, password string, ttl time.Duration, seed seedFunc) (*redisHistory, error) {
	if seed == nil {
		panic("conversation: history seed required")
	}
	if ttl <= 0 {
		ttl = defaultDialogueTTL
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("conversation: failed to connect to redis: %w", err)
	}

	return &redisHistory{
		client: client,
		ttl:    ttl,
		seed:   seed,
		tracer: otel.Tracer("tablebot.internal.conversation.history"),
	}, nil
}

func dialogueKey(userID string) string {
	return fmt.Sprintf("dialogue:%s", userID)
}

func (h *redisHistory) GetOrCreate(ctx context.Context, userID string) ([]ChatMessage, error) {
	ctx, span := h.tracer.Start(ctx, "conversation.history_get_or_create")
	defer span.End()

	data, err := h.client.Get(ctx, dialogueKey(userID)).Bytes()
	if err == redis.Nil {
		turns := []ChatMessage{h.seed()}
		if err := h.save(ctx, userID, turns); err != nil {
			span.RecordError(err)
			return nil, err
		}
		return turns, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to load dialogue: %w", err)
	}

	var turns []ChatMessage
	if err := json.Unmarshal(data, &turns); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to decode dialogue: %w", err)
	}
	return turns, nil
}

func (h *redisHistory) Append(ctx context.Context, userID string, msg ChatMessage) error {
	ctx, span := h.tracer.Start(ctx, "conversation.history_append")
	defer span.End()

	turns, err := h.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	turns = append(turns, msg)
	if err := h.save(ctx, userID, turns); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (h *redisHistory) Clear(ctx context.Context, userID string) error {
	ctx, span := h.tracer.Start(ctx, "conversation.history_clear")
	defer span.End()

	if err := h.client.Del(ctx, dialogueKey(userID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to clear dialogue: %w", err)
	}
	return nil
}

// save rewrites the entry, refreshing its TTL.
func (h *redisHistory) save(ctx context.Context, userID string, turns []ChatMessage) error {
	data, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("conversation: failed to marshal dialogue: %w", err)
	}
	if err := h.client.Set(ctx, dialogueKey(userID), data, h.ttl).Err(); err != nil {
		return fmt.Errorf("conversation: failed to persist dialogue: %w", err)
	}
	return nil
}

// Close closes the underlying redis connection.
func (h *redisHistory) Close() error {
	return h.client.Close()
}
