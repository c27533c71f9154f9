// internal/strategy/meanreversion.go
package strategy

import (
	"fmt"
	"math"

	"github.com/galatrade/swapbot/internal/market"
)

// evaluateMeanReversion fades statistical extremes: the further the price
// sits from its 20-point mean (in standard deviations), the harder the
// signal leans against the move.
func evaluateMeanReversion(series market.Series) Signal {
	window := tail(series.Points, 20)
	price := series.Last().Price

	mean := sma(window, len(window))
	variance := 0.0
	for _, p := range window {
		d := p.Price - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(window)))

	if stddev == 0 {
		return Signal{Action: ActionHold, Confidence: 20, Reason: "flat price, nothing to revert"}
	}

	z := (price - mean) / stddev

	switch {
	case z < -2:
		return Signal{
			Action:     ActionBuy,
			Confidence: math.Min(90, 70+math.Abs(z)*10),
			Reason:     fmt.Sprintf("price %.1f sigma below mean", math.Abs(z)),
		}
	case z > 2:
		return Signal{
			Action:     ActionSell,
			Confidence: math.Min(90, 70+z*10),
			Reason:     fmt.Sprintf("price %.1f sigma above mean", z),
		}
	case z < -1:
		return Signal{Action: ActionBuy, Confidence: 50, Reason: "price stretched below mean"}
	case z > 1:
		return Signal{Action: ActionSell, Confidence: 50, Reason: "price stretched above mean"}
	default:
		return Signal{Action: ActionHold, Confidence: 20, Reason: "price near mean"}
	}
}
