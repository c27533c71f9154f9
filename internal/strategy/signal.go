// internal/strategy/signal.go
package strategy

import (
	"fmt"

	"github.com/galatrade/swapbot/internal/market"
	"github.com/galatrade/swapbot/internal/risk"
)

// Action is a strategy recommendation.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// Signal is the pure output of a strategy evaluation. No side effects; the
// agent decides what, if anything, to do with it.
type Signal struct {
	Action          Action  `json:"action"`
	Confidence      float64 `json:"confidence"` // 0..100
	Reason          string  `json:"reason"`
	PoolID          string  `json:"pool_id"`
	SuggestedAmount float64 `json:"suggested_amount,omitempty"` // USD, 0 = unset
	WarmedUp        bool    `json:"warmed_up,omitempty"`        // derived from synthetic history
}

const initializingReason = "Initializing data"

// Evaluate runs the configured strategy over a pool's price series and
// applies the bias adjustment. Series with fewer than three points always
// hold: there is nothing to measure yet.
func Evaluate(strat risk.Strategy, poolID string, series market.Series, bias risk.Bias) (Signal, error) {
	if len(series.Points) < 3 {
		return Signal{Action: ActionHold, Confidence: 0, Reason: initializingReason, PoolID: poolID}, nil
	}

	var sig Signal
	switch strat {
	case risk.StrategyTrend:
		sig = evaluateTrend(series)
	case risk.StrategyMeanReversion:
		sig = evaluateMeanReversion(series)
	case risk.StrategyRange:
		sig = evaluateRange(series)
	default:
		return Signal{}, fmt.Errorf("unknown strategy %q", strat)
	}

	sig.PoolID = poolID
	sig.WarmedUp = series.WarmedUp
	if sig.WarmedUp {
		sig.Reason += " (warm-up data)"
	}
	return applyBias(sig, bias), nil
}

// applyBias tilts buy/sell confidence toward the configured market bias and
// clamps the result to [0,100].
func applyBias(sig Signal, bias risk.Bias) Signal {
	multiplier := 1.0
	switch {
	case bias == risk.BiasBullish && sig.Action == ActionBuy:
		multiplier = 1.2
	case bias == risk.BiasBullish && sig.Action == ActionSell:
		multiplier = 0.8
	case bias == risk.BiasBearish && sig.Action == ActionBuy:
		multiplier = 0.8
	case bias == risk.BiasBearish && sig.Action == ActionSell:
		multiplier = 1.2
	}

	if multiplier != 1.0 {
		sig.Confidence *= multiplier
		sig.Reason = fmt.Sprintf("%s [%s bias]", sig.Reason, bias)
	}
	if sig.Confidence > 100 {
		sig.Confidence = 100
	}
	if sig.Confidence < 0 {
		sig.Confidence = 0
	}
	return sig
}

// tail returns up to the last n points of the series.
func tail(points []market.PricePoint, n int) []market.PricePoint {
	if len(points) <= n {
		return points
	}
	return points[len(points)-n:]
}

func sma(points []market.PricePoint, n int) float64 {
	window := tail(points, n)
	sum := 0.0
	for _, p := range window {
		sum += p.Price
	}
	return sum / float64(len(window))
}
