package matching

import "github.com/alanyoungcy/polyarb/internal/domain"

// Matcher pairs every platform-A market with its single most similar
// platform-B market. Assignment is greedy: one B market may be claimed by
// several A markets in the same call.
type Matcher struct {
	threshold float64
}

// NewMatcher creates a Matcher that only accepts pairs scoring >= threshold.
func NewMatcher(threshold float64) *Matcher {
	return &Matcher{threshold: threshold}
}

// Threshold returns the minimum accepted score.
func (m *Matcher) Threshold() float64 { return m.threshold }

// Match returns at most one pair per market in a, in the order of a. Ties
// keep the first B market seen.
func (m *Matcher) Match(a, b []domain.Market) []domain.MatchedPair {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}

	bTokens := make([]TokenSet, len(b))
	for i, mb := range b {
		bTokens[i] = Normalize(mb.Question)
	}

	var pairs []domain.MatchedPair
	for _, ma := range a {
		aTokens := Normalize(ma.Question)
		if len(aTokens) == 0 {
			continue
		}

		best, bestScore := -1, 0.0
		for j, bt := range bTokens {
			if score := Jaccard(aTokens, bt); score > bestScore {
				best, bestScore = j, score
			}
		}
		if best < 0 || bestScore < m.threshold {
			continue
		}
		pairs = append(pairs, domain.MatchedPair{A: ma, B: b[best], Score: bestScore})
	}
	return pairs
}
