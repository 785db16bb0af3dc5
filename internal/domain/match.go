package domain

// MatchedPair associates a platform-A market with its best platform-B
// candidate for one scan cycle.
type MatchedPair struct {
	A     Market
	B     Market
	Score float64
}
