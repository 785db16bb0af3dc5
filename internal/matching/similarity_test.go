package matching

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"Bitcoin above 100k by EOY", "Will BTC be above 100k on December 31?"},
		{"Trump wins presidential election", "Will Trump win the 2028 election?"},
		{"", "something"},
		{"a b c", "c d e f"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]))
	}
}

func TestSimilarity_SelfIsOne(t *testing.T) {
	for _, s := range []string{"Bitcoin will hit 100k", "Lakers vs Celtics", "x"} {
		assert.Equal(t, 1.0, Similarity(s, s))
	}
}

func TestSimilarity_EmptySetsAreZero(t *testing.T) {
	for _, p := range [][2]string{{"", ""}, {"???", "!!!"}, {"the", "will be"}} {
		got := Similarity(p[0], p[1])
		assert.False(t, math.IsNaN(got))
		assert.Equal(t, 0.0, got)
	}
}

func TestJaccard(t *testing.T) {
	a := Normalize("btc 100k june")
	b := Normalize("btc 100k july")
	// 2 shared of 4 distinct.
	assert.InDelta(t, 0.5, Jaccard(a, b), 1e-12)
}

func TestSimilarity_SynonymsRaiseScore(t *testing.T) {
	got := Similarity("Bitcoin above 100k by end of the year", "BTC above 100k December 31")
	assert.Equal(t, 1.0, got)
}
