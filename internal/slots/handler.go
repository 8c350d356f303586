// Package slots serves the free-slots proxy endpoint.
package slots

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/wolfman30/harbor-homecare-web/internal/leadconnector"
	"github.com/wolfman30/harbor-homecare-web/pkg/logging"
)

// Source answers free-slot queries.
type Source interface {
	Configured() bool
	FreeSlots(ctx context.Context, q leadconnector.FreeSlotsQuery) (*leadconnector.Response, error)
}

// Handler serves GET /api/free-slots.
type Handler struct {
	source Source
	logger *logging.Logger
}

// NewHandler creates a free-slots handler.
func NewHandler(source Source, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if source == nil {
		panic("slots: source cannot be nil")
	}
	return &Handler{source: source, logger: logger}
}

// FreeSlots handles GET /api/free-slots?startDate=ms&endDate=ms&calendarId=optional.
func (h *Handler) FreeSlots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	q := r.URL.Query()
	startRaw := strings.TrimSpace(q.Get("startDate"))
	endRaw := strings.TrimSpace(q.Get("endDate"))
	if startRaw == "" || endRaw == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing startDate or endDate"})
		return
	}
	start, errStart := strconv.ParseInt(startRaw, 10, 64)
	end, errEnd := strconv.ParseInt(endRaw, 10, 64)
	if errStart != nil || errEnd != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "startDate and endDate must be epoch milliseconds"})
		return
	}
	if start > end {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "startDate must not be after endDate"})
		return
	}

	if !h.source.Configured() {
		h.logger.Error("slots: leadconnector api key missing")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Server not configured"})
		return
	}

	resp, err := h.source.FreeSlots(r.Context(), leadconnector.FreeSlotsQuery{
		StartDateMillis: start,
		EndDateMillis:   end,
		CalendarID:      q.Get("calendarId"),
	})
	if err != nil {
		var apiErr *leadconnector.APIError
		switch {
		case errors.As(err, &apiErr):
			writeJSON(w, apiErr.StatusCode, map[string]string{"error": apiErr.Message})
		case errors.Is(err, leadconnector.ErrNotConfigured):
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Server not configured"})
		default:
			h.logger.Error("slots: free-slots lookup failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load free slots"})
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
