package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/harbor-homecare-web/internal/session"
	"github.com/wolfman30/harbor-homecare-web/pkg/logging"
)

const maxChatBody = 16 << 10

// Handler exposes widgets over HTTP, one per session id.
type Handler struct {
	sessions *session.Store[*Widget]
	logger   *logging.Logger
}

// NewHandler creates a chat handler backed by sessions.
func NewHandler(sessions *session.Store[*Widget], logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if sessions == nil {
		panic("chat: session store cannot be nil")
	}
	return &Handler{sessions: sessions, logger: logger}
}

type messageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type transcriptResponse struct {
	SessionID string  `json:"sessionId"`
	Reply     string  `json:"reply,omitempty"`
	Pending   bool    `json:"pending"`
	Messages  []Entry `json:"messages"`
}

// HandleMessage handles POST /api/chat.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	sessionID, widget := h.sessions.GetOrCreate(strings.TrimSpace(req.SessionID))
	reply, err := widget.Send(r.Context(), req.Message)
	switch {
	case errors.Is(err, ErrEmptyMessage):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	case errors.Is(err, ErrBusy):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a reply is still pending"})
		return
	case err != nil:
		h.logger.Error("chat: send failed", "error", err, "session_id", sessionID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to send message"})
		return
	}

	writeJSON(w, http.StatusOK, transcriptResponse{
		SessionID: sessionID,
		Reply:     reply.Text,
		Pending:   widget.Pending(),
		Messages:  widget.Entries(),
	})
}

// HandleHistory handles GET /api/chat/{sessionID}.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	widget, ok := h.sessions.Get(sessionID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, transcriptResponse{
		SessionID: sessionID,
		Pending:   widget.Pending(),
		Messages:  widget.Entries(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
