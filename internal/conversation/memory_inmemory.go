package conversation

import (
	"context"
	"sync"
)

// memoryHistory is the in-process History implementation.
type memoryHistory struct {
	mu    sync.Mutex
	turns map[string][]ChatMessage
	seed  seedFunc
}

func newMemoryHistory(seed seedFunc) *memoryHistory {
	if seed == nil {
		panic("conversation: history seed required")
	}
	return &memoryHistory{
		turns: make(map[string][]ChatMessage),
		seed:  seed,
	}
}

func (h *memoryHistory) GetOrCreate(_ context.Context, userID string) ([]ChatMessage, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	turns, ok := h.turns[userID]
	if !ok {
		turns = []ChatMessage{h.seed()}
		h.turns[userID] = turns
	}

	out := make([]ChatMessage, len(turns))
	copy(out, turns)
	return out, nil
}

func (h *memoryHistory) Append(_ context.Context, userID string, msg ChatMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	turns, ok := h.turns[userID]
	if !ok {
		turns = []ChatMessage{h.seed()}
	}
	h.turns[userID] = append(turns, msg)
	return nil
}

func (h *memoryHistory) Clear(_ context.Context, userID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.turns, userID)
	return nil
}
