package conversation

import (
	"context"
	"time"
)

// History holds each user's ordered dialogue turns. The first turn of a
// fresh entry is always the dated system-context turn; Clear drops the whole
// entry so the next message reseeds it.
type History interface {
	// GetOrCreate returns the user's turns, seeding a new entry with the
	// system-context turn for a first-seen user.
	GetOrCreate(ctx context.Context, userID string) ([]ChatMessage, error)
	// Append adds one turn to the user's entry.
	Append(ctx context.Context, userID string, msg ChatMessage) error
	// Clear removes the user's entry entirely.
	Clear(ctx context.Context, userID string) error
}

// seedFunc produces the system-context turn for a new dialogue session.
type seedFunc func() ChatMessage

func systemSeed(restaurantName string, now func() time.Time) seedFunc {
	if now == nil {
		now = time.Now
	}
	return func() ChatMessage {
		return ChatMessage{
			Role:    ChatRoleSystem,
			Content: buildSystemPrompt(restaurantName, now()),
		}
	}
}

// NewHistory picks the redis backend when an address is configured,
// otherwise the in-process one.
func NewHistory(ctx context.Context, restaurantName, redisAddr, redisPassword string, ttl time.Duration) (History, error) {
	seed := systemSeed(restaurantName, time.Now)
	if redisAddr == "" {
		return newMemoryHistory(seed), nil
	}
	return newRedisHistory(ctx, redisAddr, redisPassword, ttl, seed)
}
