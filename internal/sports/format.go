package sports

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/alanyoungcy/polyarb/internal/domain"
)

var usd = message.NewPrinter(language.English)

// FormatUSD renders a dollar amount rounded to whole dollars with thousands
// separators, e.g. "$12,500".
func FormatUSD(v float64) string {
	return usd.Sprintf("$%d", int64(math.Round(v)))
}

// FormatMessage renders the comparison of market odds and analyst odds for
// one market.
func FormatMessage(label string, c Candidate, pred *domain.MatchPrediction) (title, body string) {
	tag := c.League
	if tag == "" {
		tag = pred.Sport
	}
	if tag == "" {
		tag = "SPORTS"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s [vol : %s]\n", tag, c.Title, FormatUSD(c.Volume))
	fmt.Fprintf(&b, "%s : %s\n", label, c.MarketLine)
	fmt.Fprintf(&b, "GEMINI : %s %.0f%% / %s %.0f%%\n", pred.TeamA, pred.ProbA, pred.TeamB, pred.ProbB)
	fmt.Fprintf(&b, "\n[ Analysis ]\n%s\n", strings.TrimSpace(pred.Reasoning))
	fmt.Fprintf(&b, "\n[ Risks ]\n%s", strings.TrimSpace(pred.Risks))
	return "[" + label + "]", b.String()
}
