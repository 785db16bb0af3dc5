package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyarb/internal/domain"
)

func market(id, q string) domain.Market {
	return domain.Market{ID: id, Question: q}
}

func TestMatcher_BestCandidateAboveThreshold(t *testing.T) {
	a := []domain.Market{
		market("a1", "Will Bitcoin hit 100k in 2025?"),
		market("a2", "Will the Lakers win the NBA title?"),
		market("a3", "Completely unrelated question here"),
	}
	b := []domain.Market{
		market("b1", "Lakers NBA champions?"),
		market("b2", "BTC hit 100k 2025"),
		market("b3", "Lakers win NBA title"),
	}

	pairs := NewMatcher(0.6).Match(a, b)
	require.Len(t, pairs, 2)

	assert.Equal(t, "a1", pairs[0].A.ID)
	assert.Equal(t, "b2", pairs[0].B.ID)
	assert.Equal(t, 1.0, pairs[0].Score)

	assert.Equal(t, "a2", pairs[1].A.ID)
	assert.Equal(t, "b3", pairs[1].B.ID)
}

func TestMatcher_InvariantsHold(t *testing.T) {
	a := []domain.Market{
		market("a1", "btc 100k"),
		market("a2", "btc 100k june"),
		market("a3", "eth 5k"),
		market("a4", ""),
	}
	b := []domain.Market{
		market("b1", "btc 100k"),
		market("b2", "eth 5k december"),
	}

	threshold := 0.6
	pairs := NewMatcher(threshold).Match(a, b)

	seen := map[string]bool{}
	for _, p := range pairs {
		assert.False(t, seen[p.A.ID], "duplicate pair for %s", p.A.ID)
		seen[p.A.ID] = true
		assert.GreaterOrEqual(t, p.Score, threshold)
		assert.Equal(t, p.Score, Similarity(p.A.Question, p.B.Question))
	}
	assert.False(t, seen["a4"])
}

func TestMatcher_GreedyAllowsReclaim(t *testing.T) {
	a := []domain.Market{market("a1", "btc 100k"), market("a2", "bitcoin 100k")}
	b := []domain.Market{market("b1", "btc 100k")}

	pairs := NewMatcher(0.6).Match(a, b)
	require.Len(t, pairs, 2)
	assert.Equal(t, "b1", pairs[0].B.ID)
	assert.Equal(t, "b1", pairs[1].B.ID)
}

func TestMatcher_TieKeepsFirst(t *testing.T) {
	a := []domain.Market{market("a1", "btc 100k")}
	b := []domain.Market{market("b1", "btc 100k"), market("b2", "BTC 100k!")}

	pairs := NewMatcher(0.5).Match(a, b)
	require.Len(t, pairs, 1)
	assert.Equal(t, "b1", pairs[0].B.ID)
}

func TestMatcher_EmptyInputs(t *testing.T) {
	m := NewMatcher(0.6)
	assert.Empty(t, m.Match(nil, []domain.Market{market("b", "x")}))
	assert.Empty(t, m.Match([]domain.Market{market("a", "x")}, nil))
}
