// Package arbitrage prices both hedge directions of a matched market pair and
// turns qualifying results into deduplicated alerts.
package arbitrage

import (
	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/polyarb/internal/domain"
)

var one = decimal.NewFromInt(1)

// Evaluator computes cost and ROI for the two cross-venue hedges:
//
//	A: YES on platform A + NO on platform B
//	B: YES on platform B + NO on platform A
//
// One of the two legs always pays out 1, so 1 - cost is the profit per unit.
type Evaluator struct {
	threshold decimal.Decimal
}

// NewEvaluator returns an Evaluator qualifying directions with roi >= roiThreshold.
func NewEvaluator(roiThreshold float64) *Evaluator {
	return &Evaluator{threshold: decimal.NewFromFloat(roiThreshold)}
}

// Evaluate prices every direction whose two asks are present. A direction
// with a missing ask or a non-positive cost is left out; the other direction
// is unaffected.
func (e *Evaluator) Evaluate(a, b domain.BinaryQuote) []domain.Evaluation {
	var out []domain.Evaluation
	if ev, ok := e.direction(domain.DirectionAYesBNo, a.Yes.Ask, b.No.Ask); ok {
		out = append(out, ev)
	}
	if ev, ok := e.direction(domain.DirectionBYesANo, b.Yes.Ask, a.No.Ask); ok {
		out = append(out, ev)
	}
	return out
}

func (e *Evaluator) direction(dir domain.Direction, yes, no domain.Price) (domain.Evaluation, bool) {
	if !yes.Valid || !no.Valid {
		return domain.Evaluation{}, false
	}
	cost := decimal.NewFromFloat(yes.Value).Add(decimal.NewFromFloat(no.Value))
	if !cost.IsPositive() {
		return domain.Evaluation{}, false
	}
	roi := one.Sub(cost).Div(cost)

	return domain.Evaluation{
		Direction: dir,
		YesAsk:    yes.Value,
		NoAsk:     no.Value,
		Cost:      cost.InexactFloat64(),
		ROI:       roi.InexactFloat64(),
		Qualifies: roi.GreaterThanOrEqual(e.threshold),
		Derived:   yes.Derived || no.Derived,
	}, true
}
