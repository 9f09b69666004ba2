package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeIntent(t *testing.T) {
	payload, err := decodeIntent(`{"intent":"check_availability","date":"2025-11-01","time":"19:00","party_size":4,"customer_name":"Ahmet Yılmaz"}`)
	require.NoError(t, err)
	assert.Equal(t, IntentCheckAvailability, payload.Intent)
	assert.Equal(t, "2025-11-01", payload.Date)
	assert.Equal(t, "19:00", payload.Time)
	assert.Equal(t, 4, payload.PartySize)
	assert.Equal(t, "Ahmet Yılmaz", payload.CustomerName)
}

func TestDecodeIntentWrongTypes(t *testing.T) {
	_, err := decodeIntent(`{"intent":"check_availability","party_size":"four"}`)
	assert.Error(t, err)
}

func TestIntentRecognized(t *testing.T) {
	tests := []struct {
		intent string
		want   bool
	}{
		{IntentCheckAvailability, true},
		{IntentRetrieveReservation, true},
		{"", false},
		{"cancel_reservation", false},
		{"CHECK_AVAILABILITY", false},
	}
	for _, tt := range tests {
		p := IntentPayload{Intent: tt.intent}
		assert.Equal(t, tt.want, p.Recognized(), "intent %q", tt.intent)
	}
}

func TestIntentComplete(t *testing.T) {
	tests := []struct {
		name    string
		payload IntentPayload
		want    bool
	}{
		{
			name: "create with all fields",
			payload: IntentPayload{
				Intent: IntentCheckAvailability, Date: "2025-11-01", Time: "19:00",
				PartySize: 4, CustomerName: "Ahmet Yılmaz",
			},
			want: true,
		},
		{
			name: "create missing time",
			payload: IntentPayload{
				Intent: IntentCheckAvailability, Date: "2025-11-01",
				PartySize: 4, CustomerName: "Ahmet Yılmaz",
			},
			want: false,
		},
		{
			name: "create zero party size",
			payload: IntentPayload{
				Intent: IntentCheckAvailability, Date: "2025-11-01", Time: "19:00",
				CustomerName: "Ahmet Yılmaz",
			},
			want: false,
		},
		{
			name: "create whitespace name",
			payload: IntentPayload{
				Intent: IntentCheckAvailability, Date: "2025-11-01", Time: "19:00",
				PartySize: 4, CustomerName: "   ",
			},
			want: false,
		},
		{
			name: "retrieve with all fields",
			payload: IntentPayload{
				Intent: IntentRetrieveReservation, ReservationID: "RZ1234", CustomerName: "Ahmet",
			},
			want: true,
		},
		{
			name:    "retrieve missing id",
			payload: IntentPayload{Intent: IntentRetrieveReservation, CustomerName: "Ahmet"},
			want:    false,
		},
		{
			name:    "unrecognized intent is never complete",
			payload: IntentPayload{Intent: "foo", Date: "2025-11-01"},
			want:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.payload.Complete())
		})
	}
}
