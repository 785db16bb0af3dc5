package domain

import (
	"regexp"
	"strings"
)

// MatchRequest asks an analyst for a win probability on a head-to-head event.
type MatchRequest struct {
	Title string
	// Category is a league or category hint such as "nba".
	Category    string
	Description string
	MarketLine  string
}

// MatchPrediction is the analyst's answer. Probabilities are percentages that
// sum to 100.
type MatchPrediction struct {
	Sport     string  `json:"sport"`
	TeamA     string  `json:"teamA"`
	TeamB     string  `json:"teamB"`
	ProbA     float64 `json:"probA"`
	ProbB     float64 `json:"probB"`
	Reasoning string  `json:"reasoning"`
	Risks     string  `json:"risks"`
}

var versusRe = regexp.MustCompile(`(?i) vs\.? `)

// IsMatchup reports whether title names two sides joined by "vs" or "vs.".
func IsMatchup(title string) bool {
	return versusRe.MatchString(title)
}

// SplitMatchup splits "A vs B" (or "A vs. B") into its two sides. ok is
// false when the title has no versus separator.
func SplitMatchup(title string) (a, b string, ok bool) {
	parts := versusRe.Split(title, -1)
	if len(parts) < 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}
