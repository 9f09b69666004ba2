package conversation

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hafta3/tablebot/pkg/logging"
)

// Handler wires HTTP requests to the conversation engine.
type Handler struct {
	service Service
	logger  *logging.Logger
}

// NewHandler creates a conversation handler.
func NewHandler(service Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("conversation: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type messageResponse struct {
	Replies       []string `json:"replies"`
	Outcome       string   `json:"outcome"`
	ReservationID string   `json:"reservation_id,omitempty"`
}

// Message handles POST /conversations/message.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode message request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Text) == "" {
		http.Error(w, "user_id and text are required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.ProcessMessage(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to process message", "error", err)
		http.Error(w, "Failed to process message", http.StatusInternalServerError)
		return
	}

	out := messageResponse{Replies: resp.Replies, Outcome: resp.Outcome}
	if resp.Reservation != nil {
		out.ReservationID = resp.Reservation.ReservationID
	}
	h.writeJSON(w, http.StatusOK, out)
}

// Reset handles POST /conversations/reset.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	if err := h.service.Reset(r.Context(), req.UserID); err != nil {
		h.logger.Error("failed to reset dialogue", "error", err, "user_id", req.UserID)
		http.Error(w, "Failed to reset conversation", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
