package conversation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hafta3/tablebot/internal/reservations"
	"github.com/hafta3/tablebot/pkg/logging"
)

type stubService struct {
	resp      *Response
	err       error
	resetErr  error
	lastReq   MessageRequest
	resetUser string
}

func (s *stubService) ProcessMessage(_ context.Context, req MessageRequest) (*Response, error) {
	s.lastReq = req
	return s.resp, s.err
}

func (s *stubService) Reset(_ context.Context, userID string) error {
	s.resetUser = userID
	return s.resetErr
}

func TestHandler_Message(t *testing.T) {
	svc := &stubService{resp: &Response{
		Replies: []string{"Your table is booked."},
		Outcome: OutcomeCreated,
		Reservation: &reservations.Record{
			ReservationID: "RZ1234",
			CustomerName:  "Ahmet Yılmaz",
		},
	}}
	h := NewHandler(svc, logging.Default())

	body := `{"user_id": "u1", "text": "book a table"}`
	req := httptest.NewRequest(http.MethodPost, "/conversations/message", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Message(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var out struct {
		Replies       []string `json:"replies"`
		Outcome       string   `json:"outcome"`
		ReservationID string   `json:"reservation_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, []string{"Your table is booked."}, out.Replies)
	assert.Equal(t, OutcomeCreated, out.Outcome)
	assert.Equal(t, "RZ1234", out.ReservationID)
	assert.Equal(t, "u1", svc.lastReq.UserID)
}

func TestHandler_Message_BadRequests(t *testing.T) {
	h := NewHandler(&stubService{}, logging.Default())

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", "{not json"},
		{"missing user id", `{"text": "hello"}`},
		{"missing text", `{"user_id": "u1"}`},
		{"blank fields", `{"user_id": "  ", "text": " "}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/conversations/message", strings.NewReader(tc.body))
			w := httptest.NewRecorder()
			h.Message(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandler_Message_ServiceError(t *testing.T) {
	h := NewHandler(&stubService{err: context.DeadlineExceeded}, logging.Default())

	req := httptest.NewRequest(http.MethodPost, "/conversations/message", strings.NewReader(`{"user_id": "u1", "text": "hi"}`))
	w := httptest.NewRecorder()
	h.Message(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandler_Reset(t *testing.T) {
	svc := &stubService{}
	h := NewHandler(svc, logging.Default())

	req := httptest.NewRequest(http.MethodPost, "/conversations/reset", strings.NewReader(`{"user_id": "u1"}`))
	w := httptest.NewRecorder()
	h.Reset(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", svc.resetUser)
}

func TestHandler_Reset_RequiresUserID(t *testing.T) {
	h := NewHandler(&stubService{}, logging.Default())

	req := httptest.NewRequest(http.MethodPost, "/conversations/reset", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	h.Reset(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
