package conversation

import (
	"encoding/json"
	"strings"
)

// Intent discriminator values the gateway is instructed to emit.
const (
	IntentCheckAvailability   = "check_availability"
	IntentRetrieveReservation = "retrieve_reservation"
)

// IntentPayload is the decoded structured payload. Exactly one variant's
// field set is expected to be populated, keyed by Intent.
type IntentPayload struct {
	Intent        string `json:"intent"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	PartySize     int    `json:"party_size"`
	ReservationID string `json:"reservation_id"`
	CustomerName  string `json:"customer_name"`
}

func decodeIntent(raw string) (*IntentPayload, error) {
	var payload IntentPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, err
	}
	payload.Intent = strings.TrimSpace(payload.Intent)
	return &payload, nil
}

// Recognized reports whether the discriminator names a supported operation.
func (p *IntentPayload) Recognized() bool {
	switch p.Intent {
	case IntentCheckAvailability, IntentRetrieveReservation:
		return true
	}
	return false
}

// Complete presence-checks the fields of the chosen variant. Field formats
// are not re-validated here; the system prompt instructs the gateway to
// withhold JSON until everything is known, and an incomplete payload falls
// back to the plain-chat path.
func (p *IntentPayload) Complete() bool {
	switch p.Intent {
	case IntentCheckAvailability:
		return strings.TrimSpace(p.Date) != "" &&
			strings.TrimSpace(p.Time) != "" &&
			p.PartySize > 0 &&
			strings.TrimSpace(p.CustomerName) != ""
	case IntentRetrieveReservation:
		return strings.TrimSpace(p.ReservationID) != "" &&
			strings.TrimSpace(p.CustomerName) != ""
	}
	return false
}
