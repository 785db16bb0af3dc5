package matching

// Jaccard returns |a ∩ b| / |a ∪ b|, or 0 when both sets are empty.
func Jaccard(a, b TokenSet) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	shared := 0
	for tok := range a {
		if b.Has(tok) {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// Similarity scores two questions in [0,1]. It is symmetric.
func Similarity(a, b string) float64 {
	return Jaccard(Normalize(a), Normalize(b))
}
