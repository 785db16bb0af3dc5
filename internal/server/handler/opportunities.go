package handler

import (
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/polyarb/internal/domain"
)

// OpportunityHandler serves the alerted-opportunity history.
type OpportunityHandler struct {
	store  domain.OpportunityStore // nil when persistence is disabled
	logger *slog.Logger
}

// NewOpportunityHandler creates an OpportunityHandler. store may be nil.
func NewOpportunityHandler(store domain.OpportunityStore, logger *slog.Logger) *OpportunityHandler {
	return &OpportunityHandler{store: store, logger: logger}
}

type listOpportunitiesResponse struct {
	Opportunities []domain.Opportunity `json:"opportunities"`
}

// ListRecent returns the most recently alerted opportunities, newest first.
// GET /api/opportunities?limit=50
func (h *OpportunityHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "opportunity persistence is not enabled")
		return
	}

	opps, err := h.store.ListRecent(r.Context(), parseLimit(r, 50, 500))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list opportunities failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list opportunities")
		return
	}
	if opps == nil {
		opps = []domain.Opportunity{}
	}

	writeJSON(w, http.StatusOK, listOpportunitiesResponse{Opportunities: opps})
}
