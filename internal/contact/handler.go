package contact

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/wolfman30/harbor-homecare-web/pkg/logging"
)

const maxRequestBody = 64 << 10

// Handler serves POST /api/submit-contact.
type Handler struct {
	forwarder *Forwarder
	logger    *logging.Logger
}

// NewHandler creates a contact submission handler.
func NewHandler(forwarder *Forwarder, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if forwarder == nil {
		panic("contact: forwarder cannot be nil")
	}
	return &Handler{forwarder: forwarder, logger: logger}
}

// Submit handles POST /api/submit-contact requests.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{"error": "Payload too large"})
			return
		}
		h.logger.Error("contact: failed to read body", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to read request"})
		return
	}

	sub, err := Decode(body)
	if err != nil {
		var shapeErr *ShapeError
		if errors.As(err, &shapeErr) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "Invalid payload",
				"issues": shapeErr.Issues,
			})
			return
		}
		h.logger.Error("contact: failed to validate payload", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Unknown error"})
		return
	}

	result, err := h.forwarder.Forward(r.Context(), sub)
	if err != nil {
		var upstreamErr *UpstreamError
		if errors.As(err, &upstreamErr) {
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":  "Upstream rejected submission",
				"status": upstreamErr.Status,
				"body":   upstreamErr.Body,
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to submit contact request"})
		return
	}

	if result.Simulated {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "simulated": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "data": result.Data})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
