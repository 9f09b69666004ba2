package reservations

import (
	"context"
	"strings"
	"testing"

	"github.com/hafta3/tablebot/pkg/logging"
)

func newTestService(t *testing.T) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewService(store, 6, "Table 5 (window side)", logging.Default()), store
}

func TestService_CreateWithinCapacity(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	rec, rejection, err := svc.Create(ctx, CreateParams{
		Date:             "2025-11-01",
		Time:             "19:00",
		PartySize:        4,
		CustomerName:     "Ahmet Yılmaz",
		RequestingUserID: "user-1",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if rejection != nil {
		t.Fatalf("unexpected rejection: %s", rejection.Reason)
	}
	if rec.ReservationID == "" {
		t.Fatal("expected an allocated reservation id")
	}
	if rec.TableLabel != "Table 5 (window side)" {
		t.Fatalf("expected placeholder table label, got %q", rec.TableLabel)
	}

	count, _ := store.Count(ctx)
	if count != 1 {
		t.Fatalf("expected 1 stored record, got %d", count)
	}
}

func TestService_CreateOverCapacityRejects(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	rec, rejection, err := svc.Create(ctx, CreateParams{
		Date:         "2025-11-01",
		Time:         "20:00",
		PartySize:    7,
		CustomerName: "Big Group",
	})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if rec != nil {
		t.Fatal("over-capacity create should not return a record")
	}
	if rejection == nil || !strings.Contains(rejection.Reason, "party of 7") {
		t.Fatalf("expected capacity rejection, got %+v", rejection)
	}

	count, _ := store.Count(ctx)
	if count != 0 {
		t.Fatalf("rejection must not mutate the store, got %d records", count)
	}
}

func TestService_RetrieveRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, _, err := svc.Create(ctx, CreateParams{
		Date:         "2025-11-01",
		Time:         "19:00",
		PartySize:    4,
		CustomerName: "Ahmet Yılmaz",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Case and whitespace-insensitive on both id and name.
	rec, rejection, err := svc.Retrieve(ctx, "  "+strings.ToLower(created.ReservationID)+" ", "ahmet yılmaz")
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if rejection != nil {
		t.Fatalf("unexpected rejection: %s", rejection.Reason)
	}
	if rec.Date != "2025-11-01" || rec.Time != "19:00" || rec.PartySize != 4 {
		t.Fatalf("round-trip lost fields: %+v", rec)
	}
}

func TestService_RetrieveUnknownID(t *testing.T) {
	svc, _ := newTestService(t)

	rec, rejection, err := svc.Retrieve(context.Background(), "RZ0000", "Anyone")
	if err != nil {
		t.Fatalf("retrieve returned error: %v", err)
	}
	if rec != nil {
		t.Fatal("unknown id should not return a record")
	}
	if rejection == nil || !strings.Contains(rejection.Reason, "no reservation exists") {
		t.Fatalf("expected not-found rejection, got %+v", rejection)
	}
}

func TestService_RetrieveNameMismatchDoesNotDisclose(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, _, err := svc.Create(ctx, CreateParams{
		Date:         "2025-12-24",
		Time:         "21:00",
		PartySize:    2,
		CustomerName: "Ahmet Yılmaz",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	rec, rejection, err := svc.Retrieve(ctx, created.ReservationID, "Someone Else")
	if err != nil {
		t.Fatalf("retrieve returned error: %v", err)
	}
	if rec != nil {
		t.Fatal("name mismatch must not disclose the record")
	}
	if rejection == nil || !strings.Contains(rejection.Reason, "does not match") {
		t.Fatalf("expected name-mismatch rejection, got %+v", rejection)
	}
	if strings.Contains(rejection.Reason, "2025-12-24") || strings.Contains(rejection.Reason, "Ahmet") {
		t.Fatalf("rejection leaks record details: %s", rejection.Reason)
	}
}
