// internal/strategy/trend.go
package strategy

import (
	"math"

	"github.com/galatrade/swapbot/internal/market"
)

// evaluateTrend follows moving-average alignment over the last 20 points.
// A fully stacked ladder (price > SMA5 > SMA10 > SMA20) is a strong trend;
// momentum over the window scales the confidence.
func evaluateTrend(series market.Series) Signal {
	window := tail(series.Points, 20)
	price := series.Last().Price

	sma5 := sma(window, 5)
	sma10 := sma(window, 10)
	sma20 := sma(window, 20)

	oldest := window[0].Price
	momentum := 0.0
	if oldest > 0 {
		momentum = (price - oldest) / oldest * 100
	}

	switch {
	case price > sma5 && sma5 > sma10 && sma10 > sma20:
		return Signal{
			Action:     ActionBuy,
			Confidence: math.Min(80+momentum*10, 95),
			Reason:     "strong upward trend",
		}
	case price < sma5 && sma5 < sma10 && sma10 < sma20:
		return Signal{
			Action:     ActionSell,
			Confidence: math.Min(80+math.Abs(momentum)*10, 95),
			Reason:     "strong downward trend",
		}
	case price > sma10 && momentum > 0.5:
		return Signal{Action: ActionBuy, Confidence: 60, Reason: "price above SMA10 with positive momentum"}
	case price < sma10 && momentum < -0.5:
		return Signal{Action: ActionSell, Confidence: 60, Reason: "price below SMA10 with negative momentum"}
	default:
		return Signal{Action: ActionHold, Confidence: 30, Reason: "no clear trend"}
	}
}
