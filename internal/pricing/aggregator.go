// Package pricing reduces raw order books to best bid / best ask quotes.
//
// An absent book, an empty side or an out-of-range level always yields an
// absent price, never a synthetic zero. When a venue only quotes one outcome
// the opposite outcome is derived as 1 - price and flagged Derived.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/polyarb/internal/domain"
)

// Best returns the highest bid and lowest ask of a single-outcome book.
func Best(book *domain.OrderBook) domain.Quote {
	if book == nil {
		return domain.Quote{}
	}
	return domain.Quote{
		Bid: bestOf(book.Bids, func(p, best float64) bool { return p > best }),
		Ask: bestOf(book.Asks, func(p, best float64) bool { return p < best }),
	}
}

// Split combines two independently fetched single-outcome books.
func Split(yes, no *domain.OrderBook) domain.BinaryQuote {
	return domain.BinaryQuote{Yes: Best(yes), No: Best(no)}
}

// FromYesBook prices a combined book that only lists the YES outcome. Buying
// NO is equivalent to selling YES, so NO ask = 1 - YES bid and NO bid =
// 1 - YES ask.
func FromYesBook(book *domain.OrderBook) domain.BinaryQuote {
	yes := Best(book)
	return domain.BinaryQuote{
		Yes: yes,
		No: domain.Quote{
			Bid: complement(yes.Ask),
			Ask: complement(yes.Bid),
		},
	}
}

// FromBidBooks prices a venue that publishes resting bids for both outcomes
// but no asks. An ask on one outcome is the complement of the best bid on the
// other.
func FromBidBooks(yesBids, noBids []domain.PriceLevel) domain.BinaryQuote {
	higher := func(p, best float64) bool { return p > best }
	yesBid := bestOf(yesBids, higher)
	noBid := bestOf(noBids, higher)
	return domain.BinaryQuote{
		Yes: domain.Quote{Bid: yesBid, Ask: complement(noBid)},
		No:  domain.Quote{Bid: noBid, Ask: complement(yesBid)},
	}
}

func bestOf(levels []domain.PriceLevel, better func(p, best float64) bool) domain.Price {
	var out domain.Price
	for _, lvl := range levels {
		if !inRange(lvl.Price) {
			continue
		}
		if !out.Valid || better(lvl.Price, out.Value) {
			out = domain.Known(lvl.Price)
		}
	}
	return out
}

func complement(p domain.Price) domain.Price {
	if !p.Valid {
		return domain.Price{}
	}
	// Decimal keeps 1 - 0.45 at 0.55 instead of 0.5499999999999999.
	v := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(p.Value)).InexactFloat64()
	return domain.Price{Value: v, Valid: true, Derived: true}
}

func inRange(p float64) bool {
	return !math.IsNaN(p) && p > 0 && p < 1
}
