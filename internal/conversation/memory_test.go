package conversation

import (
	"context"
	"strings"
	"testing"
	"time"
)

func testSeed() seedFunc {
	fixed := time.Date(2025, time.November, 1, 9, 0, 0, 0, time.UTC)
	return systemSeed("Hafta3 Restaurant", func() time.Time { return fixed })
}

func TestMemoryHistory_SeedsSystemTurn(t *testing.T) {
	h := newMemoryHistory(testSeed())
	ctx := context.Background()

	turns, err := h.GetOrCreate(ctx, "user-1")
	if err != nil {
		t.Fatalf("get or create failed: %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("expected exactly one seeded turn, got %d", len(turns))
	}
	if turns[0].Role != ChatRoleSystem {
		t.Fatalf("first turn must be the system-context turn, got role %q", turns[0].Role)
	}
	if !strings.Contains(turns[0].Content, "2025-11-01") {
		t.Fatal("system turn must embed the session date")
	}

	// The seed is per-user-session, not per-call.
	again, err := h.GetOrCreate(ctx, "user-1")
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	if len(again) != 1 {
		t.Fatalf("reseeded an existing entry: got %d turns", len(again))
	}
}

func TestMemoryHistory_AppendPreservesOrder(t *testing.T) {
	h := newMemoryHistory(testSeed())
	ctx := context.Background()

	if _, err := h.GetOrCreate(ctx, "user-1"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	for _, content := range []string{"first", "second", "third"} {
		if err := h.Append(ctx, "user-1", ChatMessage{Role: ChatRoleUser, Content: content}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	turns, _ := h.GetOrCreate(ctx, "user-1")
	if len(turns) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(turns))
	}
	if turns[1].Content != "first" || turns[3].Content != "third" {
		t.Fatalf("insertion order lost: %+v", turns)
	}
}

func TestMemoryHistory_ClearDropsEntireEntry(t *testing.T) {
	h := newMemoryHistory(testSeed())
	ctx := context.Background()

	if _, err := h.GetOrCreate(ctx, "user-1"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := h.Append(ctx, "user-1", ChatMessage{Role: ChatRoleUser, Content: "hello"}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := h.Clear(ctx, "user-1"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	turns, err := h.GetOrCreate(ctx, "user-1")
	if err != nil {
		t.Fatalf("get after clear failed: %v", err)
	}
	if len(turns) != 1 || turns[0].Role != ChatRoleSystem {
		t.Fatalf("expected a fresh seeded entry after clear, got %+v", turns)
	}
}

func TestMemoryHistory_UsersAreIsolated(t *testing.T) {
	h := newMemoryHistory(testSeed())
	ctx := context.Background()

	_, _ = h.GetOrCreate(ctx, "a")
	_ = h.Append(ctx, "a", ChatMessage{Role: ChatRoleUser, Content: "from a"})

	turns, _ := h.GetOrCreate(ctx, "b")
	if len(turns) != 1 {
		t.Fatalf("user b should start fresh, got %d turns", len(turns))
	}
}
