package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galatrade/swapbot/internal/market"
	"github.com/galatrade/swapbot/internal/risk"
)

func seriesFromPrices(prices ...float64) market.Series {
	points := make([]market.PricePoint, len(prices))
	base := time.Now().Add(-time.Duration(len(prices)) * time.Minute)
	for i, p := range prices {
		points[i] = market.PricePoint{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Price:     p,
			Volume:    1000,
		}
	}
	return market.Series{Points: points}
}

func TestEvaluateHoldsWithThinHistory(t *testing.T) {
	for _, strat := range []risk.Strategy{risk.StrategyTrend, risk.StrategyMeanReversion, risk.StrategyRange} {
		sig, err := Evaluate(strat, "pool-1", seriesFromPrices(100, 101), risk.BiasNeutral)
		require.NoError(t, err)
		assert.Equal(t, ActionHold, sig.Action, "strategy %s", strat)
		assert.Zero(t, sig.Confidence, "strategy %s", strat)
		assert.Equal(t, "Initializing data", sig.Reason)
	}
}

func TestTrendBuysStrictlyIncreasingSequence(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}

	sig, err := Evaluate(risk.StrategyTrend, "pool-1", seriesFromPrices(prices...), risk.BiasNeutral)
	require.NoError(t, err)

	assert.Equal(t, ActionBuy, sig.Action)
	assert.GreaterOrEqual(t, sig.Confidence, 80.0)
	assert.LessOrEqual(t, sig.Confidence, 95.0)
}

func TestTrendSellsStrictlyDecreasingSequence(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 120 - float64(i)
	}

	sig, err := Evaluate(risk.StrategyTrend, "pool-1", seriesFromPrices(prices...), risk.BiasNeutral)
	require.NoError(t, err)

	assert.Equal(t, ActionSell, sig.Action)
	assert.GreaterOrEqual(t, sig.Confidence, 80.0)
}

func TestTrendHoldsOnChop(t *testing.T) {
	sig, err := Evaluate(risk.StrategyTrend, "pool-1",
		seriesFromPrices(100, 101, 99, 100, 101, 99, 100, 101, 99, 100), risk.BiasNeutral)
	require.NoError(t, err)
	assert.Equal(t, ActionHold, sig.Action)
}

func TestMeanReversionSellsExtremeHigh(t *testing.T) {
	prices := make([]float64, 19)
	for i := range prices {
		if i%2 == 0 {
			prices[i] = 99
		} else {
			prices[i] = 101
		}
	}
	prices = append(prices, 120) // far above the window mean

	sig, err := Evaluate(risk.StrategyMeanReversion, "pool-1", seriesFromPrices(prices...), risk.BiasNeutral)
	require.NoError(t, err)

	assert.Equal(t, ActionSell, sig.Action)
	assert.GreaterOrEqual(t, sig.Confidence, 90.0)
}

func TestMeanReversionBuysExtremeLow(t *testing.T) {
	prices := make([]float64, 19)
	for i := range prices {
		if i%2 == 0 {
			prices[i] = 99
		} else {
			prices[i] = 101
		}
	}
	prices = append(prices, 80)

	sig, err := Evaluate(risk.StrategyMeanReversion, "pool-1", seriesFromPrices(prices...), risk.BiasNeutral)
	require.NoError(t, err)

	assert.Equal(t, ActionBuy, sig.Action)
	assert.GreaterOrEqual(t, sig.Confidence, 90.0)
}

func TestMeanReversionHoldsNearMean(t *testing.T) {
	sig, err := Evaluate(risk.StrategyMeanReversion, "pool-1",
		seriesFromPrices(100, 101, 99, 100, 101, 99, 100), risk.BiasNeutral)
	require.NoError(t, err)
	assert.Equal(t, ActionHold, sig.Action)
}

func rangePrices(last float64) []float64 {
	// 29 points oscillating between 100 and 110, then the probe point.
	prices := make([]float64, 29)
	for i := range prices {
		if i%2 == 0 {
			prices[i] = 100
		} else {
			prices[i] = 110
		}
	}
	return append(prices, last)
}

func TestRangeBuysNearSupport(t *testing.T) {
	// support = 100*1.02 = 102, resistance = 110*0.98 = 107.8
	sig, err := Evaluate(risk.StrategyRange, "pool-1", seriesFromPrices(rangePrices(102.5)...), risk.BiasNeutral)
	require.NoError(t, err)
	assert.Equal(t, ActionBuy, sig.Action)
	assert.Equal(t, 75.0, sig.Confidence)
}

func TestRangeSellsNearResistance(t *testing.T) {
	sig, err := Evaluate(risk.StrategyRange, "pool-1", seriesFromPrices(rangePrices(107.5)...), risk.BiasNeutral)
	require.NoError(t, err)
	assert.Equal(t, ActionSell, sig.Action)
	assert.Equal(t, 75.0, sig.Confidence)
}

func TestRangeTradesBreakoutAsContinuation(t *testing.T) {
	sig, err := Evaluate(risk.StrategyRange, "pool-1", seriesFromPrices(rangePrices(112)...), risk.BiasNeutral)
	require.NoError(t, err)
	assert.Equal(t, ActionBuy, sig.Action)
	assert.Equal(t, 85.0, sig.Confidence)

	sig, err = Evaluate(risk.StrategyRange, "pool-1", seriesFromPrices(rangePrices(99)...), risk.BiasNeutral)
	require.NoError(t, err)
	assert.Equal(t, ActionSell, sig.Action)
	assert.Equal(t, 85.0, sig.Confidence)
}

func TestBiasMultipliesAndClamps(t *testing.T) {
	sig := applyBias(Signal{Action: ActionBuy, Confidence: 60, Reason: "test"}, risk.BiasBullish)
	assert.InDelta(t, 72.0, sig.Confidence, 1e-9)
	assert.Contains(t, sig.Reason, "bullish")

	sig = applyBias(Signal{Action: ActionSell, Confidence: 60, Reason: "test"}, risk.BiasBullish)
	assert.InDelta(t, 48.0, sig.Confidence, 1e-9)

	sig = applyBias(Signal{Action: ActionBuy, Confidence: 90, Reason: "test"}, risk.BiasBullish)
	assert.Equal(t, 100.0, sig.Confidence)

	sig = applyBias(Signal{Action: ActionBuy, Confidence: 60, Reason: "test"}, risk.BiasNeutral)
	assert.Equal(t, 60.0, sig.Confidence)
	assert.Equal(t, "test", sig.Reason)
}

func TestConfidenceStaysInBoundsAfterBias(t *testing.T) {
	biases := []risk.Bias{risk.BiasBullish, risk.BiasNeutral, risk.BiasBearish}
	strategies := []risk.Strategy{risk.StrategyTrend, risk.StrategyMeanReversion, risk.StrategyRange}
	inputs := [][]float64{
		rangePrices(112),
		{100, 110, 120, 130, 140, 150, 160, 170, 180, 190},
		{100, 100, 100, 100, 100, 100},
	}

	for _, strat := range strategies {
		for _, bias := range biases {
			for _, prices := range inputs {
				sig, err := Evaluate(strat, "pool-1", seriesFromPrices(prices...), bias)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, sig.Confidence, 0.0)
				assert.LessOrEqual(t, sig.Confidence, 100.0)
			}
		}
	}
}

func TestWarmedUpSeriesTagsReason(t *testing.T) {
	series := seriesFromPrices(100, 101, 102, 103, 104, 105, 106, 107, 108, 109)
	series.WarmedUp = true

	sig, err := Evaluate(risk.StrategyTrend, "pool-1", series, risk.BiasNeutral)
	require.NoError(t, err)
	assert.True(t, sig.WarmedUp)
	assert.Contains(t, sig.Reason, "warm-up")
}
