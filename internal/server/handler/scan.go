package handler

import (
	"net/http"

	"github.com/alanyoungcy/polyarb/internal/scanner"
)

// ReportSource exposes the last finished scan cycle. *scanner.Scanner
// satisfies it.
type ReportSource interface {
	LastReport() *scanner.CycleReport
}

// ScanHandler serves the latest cycle report.
type ScanHandler struct {
	source ReportSource
}

// NewScanHandler creates a ScanHandler.
func NewScanHandler(source ReportSource) *ScanHandler {
	return &ScanHandler{source: source}
}

// LastReport returns the most recent cycle report, or 404 before the first
// cycle has finished.
// GET /api/scan/last
func (h *ScanHandler) LastReport(w http.ResponseWriter, _ *http.Request) {
	report := h.source.LastReport()
	if report == nil {
		writeError(w, http.StatusNotFound, "no scan cycle has finished yet")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
