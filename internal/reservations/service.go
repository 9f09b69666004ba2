package reservations

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hafta3/tablebot/pkg/logging"
)

var tracer = otel.Tracer("tablebot.internal.reservations")

// Rejection carries the human-readable reason a domain operation refused a
// request. It is fed back to the generation gateway, never raised as an error.
type Rejection struct {
	Reason string
}

// CreateParams is a validated create request.
type CreateParams struct {
	Date             string
	Time             string
	PartySize        int
	CustomerName     string
	RequestingUserID string
}

// Service applies reservation policy on top of the store.
type Service struct {
	store        Store
	logger       *logging.Logger
	maxPartySize int
	tableLabel   string
}

// NewService constructs a reservation service.
func NewService(store Store, maxPartySize int, tableLabel string, logger *logging.Logger) *Service {
	if store == nil {
		panic("reservations: store required")
	}
	if maxPartySize <= 0 {
		maxPartySize = 6
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:        store,
		logger:       logger,
		maxPartySize: maxPartySize,
		tableLabel:   tableLabel,
	}
}

// Create inserts a reservation unless the party exceeds capacity. A capacity
// refusal returns a Rejection and leaves the store untouched.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Record, *Rejection, error) {
	ctx, span := tracer.Start(ctx, "reservations.create")
	defer span.End()
	span.SetAttributes(
		attribute.Int("tablebot.party_size", params.PartySize),
		attribute.String("tablebot.date", params.Date),
	)

	if params.PartySize > s.maxPartySize {
		s.logger.Info("reservation rejected: over capacity",
			"party_size", params.PartySize,
			"max_party_size", s.maxPartySize,
		)
		return nil, &Rejection{
			Reason: fmt.Sprintf(
				"no table is available for a party of %d; the largest table seats %d. Please suggest a smaller group or a different arrangement",
				params.PartySize, s.maxPartySize,
			),
		}, nil
	}

	rec := Record{
		Date:             params.Date,
		Time:             params.Time,
		PartySize:        params.PartySize,
		CustomerName:     strings.TrimSpace(params.CustomerName),
		TableLabel:       s.tableLabel,
		RequestingUserID: params.RequestingUserID,
	}
	id, err := s.store.Insert(ctx, rec)
	if err != nil {
		span.RecordError(err)
		return nil, nil, fmt.Errorf("reservations: insert: %w", err)
	}
	rec.ReservationID = id

	s.logger.Info("reservation created",
		"reservation_id", id,
		"date", rec.Date,
		"time", rec.Time,
		"party_size", rec.PartySize,
	)
	return &rec, nil, nil
}

// Retrieve looks up a reservation by id and verifies the customer name.
// The stored record is only disclosed when the name matches.
func (s *Service) Retrieve(ctx context.Context, reservationID, customerName string) (*Record, *Rejection, error) {
	ctx, span := tracer.Start(ctx, "reservations.retrieve")
	defer span.End()

	rec, found, err := s.store.Get(ctx, reservationID)
	if err != nil {
		span.RecordError(err)
		return nil, nil, fmt.Errorf("reservations: lookup: %w", err)
	}
	if !found {
		return nil, &Rejection{
			Reason: fmt.Sprintf("no reservation exists with id %s", strings.TrimSpace(reservationID)),
		}, nil
	}
	if !strings.EqualFold(strings.TrimSpace(customerName), strings.TrimSpace(rec.CustomerName)) {
		s.logger.Info("reservation lookup refused: name mismatch", "reservation_id", rec.ReservationID)
		return nil, &Rejection{
			Reason: "the name given does not match this reservation id",
		}, nil
	}

	return rec, nil, nil
}

// Count reports the number of reservations, used for greeting summaries.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}
