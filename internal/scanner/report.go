package scanner

import (
	"fmt"
	"time"

	"github.com/alanyoungcy/polyarb/internal/domain"
	"github.com/alanyoungcy/polyarb/internal/metrics"
)

// CycleReport summarizes one finished scan cycle.
type CycleReport struct {
	ID         string          `json:"id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	DurationMs int64           `json:"duration_ms"`
	VenueA     domain.Platform `json:"venue_a"`
	VenueB     domain.Platform `json:"venue_b"`
	MarketsA   int             `json:"markets_a"`
	MarketsB   int             `json:"markets_b"`
	// Matched counts all pairs above the match threshold; Checked is the
	// prefix of them that was priced this cycle.
	Matched    int            `json:"matched"`
	Checked    int            `json:"checked"`
	Priced     int            `json:"priced"`
	Skipped    map[string]int `json:"skipped"`
	Qualifying int            `json:"qualifying"`
	// Opportunities holds only the directions that were alerted.
	Opportunities []domain.Opportunity `json:"opportunities"`
}

func (r *CycleReport) skip(reason string) {
	r.Skipped[reason]++
	metrics.PairsSkippedTotal.WithLabelValues(reason).Inc()
}

// ArchivePath is the object key the report is archived under.
func (r *CycleReport) ArchivePath() string {
	return fmt.Sprintf("reports/%s/%s.json", r.StartedAt.Format("2006/01/02"), r.ID)
}
