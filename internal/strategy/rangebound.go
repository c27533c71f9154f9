// internal/strategy/rangebound.go
package strategy

import (
	"github.com/galatrade/swapbot/internal/market"
)

// evaluateRange trades the band between recent extremes. Inside the band it
// buys near support and sells near resistance. A clean break of either edge
// is traded as continuation, not faded.
func evaluateRange(series market.Series) Signal {
	window := tail(series.Points, 30)
	price := series.Last().Price

	low, high := window[0].Price, window[0].Price
	for _, p := range window[1:] {
		if p.Price < low {
			low = p.Price
		}
		if p.Price > high {
			high = p.Price
		}
	}

	support := low * 1.02
	resistance := high * 0.98
	if resistance <= support {
		return Signal{Action: ActionHold, Confidence: 30, Reason: "range too narrow"}
	}

	// Edge breaks take priority over in-band positioning.
	switch {
	case price < support:
		return Signal{Action: ActionSell, Confidence: 85, Reason: "breakdown below support"}
	case price > resistance:
		return Signal{Action: ActionBuy, Confidence: 85, Reason: "breakout above resistance"}
	}

	positionInRange := (price - support) / (resistance - support)
	switch {
	case positionInRange < 0.2:
		return Signal{Action: ActionBuy, Confidence: 75, Reason: "near support"}
	case positionInRange > 0.8:
		return Signal{Action: ActionSell, Confidence: 75, Reason: "near resistance"}
	default:
		return Signal{Action: ActionHold, Confidence: 30, Reason: "mid-range"}
	}
}
