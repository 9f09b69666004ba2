package reservations

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// Record is a single confirmed reservation. Records are never mutated or
// deleted once inserted; they live for the lifetime of the store.
type Record struct {
	ReservationID    string    `json:"reservation_id"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	PartySize        int       `json:"party_size"`
	CustomerName     string    `json:"customer_name"`
	TableLabel       string    `json:"table_label"`
	RequestingUserID string    `json:"requesting_user_id"`
	CreatedAt        time.Time `json:"created_at"`
}

// Store is the reservation table consumed by the domain service.
type Store interface {
	// Insert allocates a fresh reservation id, stores the record under it,
	// and returns the id.
	Insert(ctx context.Context, rec Record) (string, error)
	// Get looks up a record by id. Lookup is case-insensitive and ignores
	// surrounding whitespace.
	Get(ctx context.Context, reservationID string) (*Record, bool, error)
	// Count returns the number of stored reservations.
	Count(ctx context.Context) (int, error)
}

// MemoryStore is the in-process Store implementation.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	newID   func() string
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithIDGenerator overrides the reservation id generator. Used by tests to
// force collisions.
func WithIDGenerator(gen func() string) MemoryStoreOption {
	return func(s *MemoryStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewMemoryStore creates an empty in-memory reservation store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		records: make(map[string]Record),
		newID:   randomReservationID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert allocates an id unused in the current key set and stores the record.
// Allocation and insertion happen under one lock so concurrent creations
// cannot collide on the same id.
func (s *MemoryStore) Insert(_ context.Context, rec Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		id := normalizeID(s.newID())
		if id == "" {
			return "", fmt.Errorf("reservations: id generator returned empty id")
		}
		if _, exists := s.records[id]; exists {
			continue
		}
		rec.ReservationID = id
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = time.Now().UTC()
		}
		s.records[id] = rec
		return id, nil
	}
}

func (s *MemoryStore) Get(_ context.Context, reservationID string) (*Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[normalizeID(reservationID)]
	if !ok {
		return nil, false, nil
	}
	return &rec, true, nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// randomReservationID draws ids in the customer-facing RZxxxx format.
func randomReservationID() string {
	return fmt.Sprintf("RZ%04d", rand.IntN(10000))
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
