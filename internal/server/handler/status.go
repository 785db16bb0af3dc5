package handler

import (
	"net/http"
	"time"
)

// StatusHandler serves static process information for dashboards.
type StatusHandler struct {
	Mode      string
	VenueA    string
	VenueB    string
	StartedAt time.Time
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(mode, venueA, venueB string) *StatusHandler {
	return &StatusHandler{Mode: mode, VenueA: venueA, VenueB: venueB, StartedAt: time.Now().UTC()}
}

// GetStatus responds with the running mode, the scanned venues and uptime.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":           h.Mode,
		"venue_a":        h.VenueA,
		"venue_b":        h.VenueB,
		"started_at":     h.StartedAt.Format(time.RFC3339),
		"uptime_seconds": int64(time.Since(h.StartedAt).Seconds()),
	})
}
