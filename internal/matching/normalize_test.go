package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_SynonymFolding(t *testing.T) {
	a := Normalize("Bitcoin will hit 100k")
	b := Normalize("BTC hits 100k")

	assert.True(t, a.Has("btc"))
	assert.True(t, b.Has("btc"))
	assert.False(t, a.Has("will"))
	assert.False(t, a.Has("bitcoin"))
	assert.Equal(t, "100k btc hit", a.String())
}

func TestNormalize_StopWordsAndPunctuation(t *testing.T) {
	got := Normalize("Will the Fed cut rates in March?!")
	assert.Equal(t, "cut fed march rates", got.String())

	got = Normalize("Which company has the largest market cap in the world?")
	assert.Equal(t, "has largest which", got.String())
}

func TestNormalize_SubstringReplacement(t *testing.T) {
	// Variants are folded even inside longer words.
	assert.True(t, Normalize("bitcoins").Has("btcs"))
	assert.True(t, Normalize("Presidential election").Has("president"))
}

func TestNormalize_MultiWordSynonyms(t *testing.T) {
	assert.Equal(t, "eoy gold price", Normalize("Gold price on December 31").String())
	assert.Equal(t, "2025 eoy gold", Normalize("Gold by end of 2025").String())
	assert.Equal(t, "arsenal epl win", Normalize("Will Arsenal win the Premier League?").String())
	// Becomes adjacent only after "of" is dropped.
	assert.True(t, Normalize("champions of league winner").Has("ucl"))
}

func TestNormalize_EmptyInput(t *testing.T) {
	assert.Empty(t, Normalize(""))
	assert.Empty(t, Normalize("???"))
	assert.Empty(t, Normalize("the a an"))
}

func TestNormalize_DuplicatesCollapse(t *testing.T) {
	got := Normalize("BTC btc Bitcoin")
	assert.Len(t, got, 1)
}

func TestCanonical_FixedPoint(t *testing.T) {
	inputs := []string{
		"Bitcoin will hit 100k",
		"Will the US dollar index close above 105 on Dec 31?",
		"Real Madrid vs. Barcelona: who wins the Champions League?",
		"u.s.a_b test",
		"Champions of League - end of the year",
		"",
		"!!!",
	}
	for _, in := range inputs {
		once := Canonical(in)
		assert.Equal(t, once, Canonical(once), "input %q", in)
		assert.Equal(t, Normalize(in), Normalize(once), "input %q", in)
	}
}

func TestNormalize_StringRoundTrip(t *testing.T) {
	inputs := []string{
		"League of Champions winner",
		"Champions of League winner",
		"Bitcoin will hit 100k",
		"Will Arsenal win the Premier League?",
		"Gold price on December 31",
		"US dollar vs euro at end of 2025",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once.String()), "input %q", in)
	}
}

func TestNormalize_WordOrderOfMultiWordVariant(t *testing.T) {
	a := Normalize("League of Champions winner")
	b := Normalize("Champions of League winner")

	assert.Equal(t, a, b)
	assert.Equal(t, "ucl winner", a.String())
}

func TestNormalize_CryptoFoldsToTicker(t *testing.T) {
	got := Normalize("Ethereum or ETH above 5k")
	assert.True(t, got.Has("eth"))
	assert.False(t, got.Has("ethereum"))

	// Short tickers are never expanded inside longer words.
	got = Normalize("Whether Seth wins")
	assert.Equal(t, "seth whether wins", got.String())
}
