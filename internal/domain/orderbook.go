package domain

// PriceLevel is a single price+size entry in an orderbook.
type PriceLevel struct {
	Price float64
	Size  float64
}

// OrderBook is a raw book for one outcome (or for the YES side of a combined
// book). Levels are in whatever order the venue returned them.
type OrderBook struct {
	Bids []PriceLevel
	Asks []PriceLevel
}

// Price is an optional probability price in (0,1). Derived marks a value
// computed as the complement of the opposite outcome rather than quoted.
type Price struct {
	Value   float64
	Valid   bool
	Derived bool
}

// Known returns a directly quoted price.
func Known(v float64) Price { return Price{Value: v, Valid: true} }

// Quote is the best bid and best ask for one outcome.
type Quote struct {
	Bid Price
	Ask Price
}

// Empty reports whether neither side carries a price.
func (q Quote) Empty() bool { return !q.Bid.Valid && !q.Ask.Valid }

// BinaryQuote holds both outcomes of a binary market on one venue.
type BinaryQuote struct {
	Yes Quote
	No  Quote
}

// Empty reports whether no side of the market carries a price.
func (q BinaryQuote) Empty() bool { return q.Yes.Empty() && q.No.Empty() }
