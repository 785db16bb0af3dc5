// Package matching pairs semantically equivalent market questions across two
// venues using token-set similarity.
package matching

import (
	"regexp"
	"sort"
	"strings"
)

// synonym folds every variant substring into canonical. Replacement is plain
// substring replacement, so a variant inside a longer word is folded too.
type synonym struct {
	canonical string
	variants  []string
}

// synonyms is applied in order. No canonical form contains any variant, which
// keeps folding idempotent.
var synonyms = []synonym{
	{"btc", []string{"bitcoin"}},
	{"eth", []string{"ethereum"}},
	{"eoy 2025", []string{"end of 2025"}},
	{"eoy", []string{"december 31", "dec 31", "end of the year"}},
	{"usd", []string{"us dollar"}},
	{"president", []string{"presidential"}},
	{"ucl", []string{"champions league"}},
	{"epl", []string{"premier league"}},
}

var stopWords = map[string]bool{
	"will": true, "be": true, "the": true, "a": true, "an": true,
	"at": true, "by": true, "on": true, "to": true, "in": true,
	"of": true, "for": true, "with": true, "is": true, "are": true,
	"was": true, "were": true,
}

// domainStopWords are nouns too generic to distinguish two markets.
var domainStopWords = map[string]bool{
	"market": true, "cap": true, "world": true, "company": true,
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// TokenSet is the canonical set of significant lowercase tokens of a question.
type TokenSet map[string]struct{}

// Has reports whether tok is in the set.
func (s TokenSet) Has(tok string) bool {
	_, ok := s[tok]
	return ok
}

// String renders the tokens sorted and space separated.
func (s TokenSet) String() string {
	out := make([]string, 0, len(s))
	for tok := range s {
		out = append(out, tok)
	}
	sort.Strings(out)
	return strings.Join(out, " ")
}

// Canonical returns the cleaned form of text: lowercased, synonyms folded,
// punctuation collapsed and stop words removed, with the surviving words in
// their original order. Canonical(Canonical(x)) == Canonical(x).
func Canonical(text string) string {
	clean := fold(strings.ToLower(text))
	clean = nonAlnum.ReplaceAllString(clean, " ")

	words := strings.Fields(clean)
	kept := words[:0]
	for _, w := range words {
		if stopWords[w] || domainStopWords[w] {
			continue
		}
		kept = append(kept, w)
	}

	// Dropping stop words can make a multi-word variant adjacent
	// ("champions of league"), so fold once more.
	return strings.Join(strings.Fields(fold(strings.Join(kept, " "))), " ")
}

// Normalize turns a free-text market question into its TokenSet. Empty or
// punctuation-only input yields an empty set.
//
// The set is closed under its own String form: sorting can place words in
// the order of a multi-word variant ("league of champions" renders as
// "champions league"), so the sorted rendering is folded again until it is
// stable. Every fold shortens the text, so the loop terminates.
func Normalize(text string) TokenSet {
	set := tokensOf(Canonical(text))
	for {
		rendered := set.String()
		next := tokensOf(Canonical(rendered))
		if next.String() == rendered {
			return next
		}
		set = next
	}
}

func tokensOf(canonical string) TokenSet {
	words := strings.Fields(canonical)
	set := make(TokenSet, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func fold(s string) string {
	for _, syn := range synonyms {
		for _, v := range syn.variants {
			s = strings.ReplaceAll(s, v, syn.canonical)
		}
	}
	return s
}
