// internal/risk/params.go
package risk

import (
	"fmt"
	"time"
)

// Profile names a risk bundle.
type Profile string

// Strategy selects the signal generator.
type Strategy string

// Speed controls the scheduler interval.
type Speed string

// Confidence selects the signal confidence threshold.
type Confidence string

// Bias tilts take-profit/stop-loss and signal confidence.
type Bias string

const (
	ProfileSafe       Profile = "safe"
	ProfileBalanced   Profile = "balanced"
	ProfileAggressive Profile = "aggressive"

	StrategyTrend         Strategy = "trend"
	StrategyMeanReversion Strategy = "meanReversion"
	StrategyRange         Strategy = "range"

	SpeedFast   Speed = "fast"
	SpeedNormal Speed = "normal"
	SpeedSlow   Speed = "slow"

	ConfidencePrecise Confidence = "precise"
	ConfidenceNormal  Confidence = "normal"
	ConfidenceActive  Confidence = "active"

	BiasBullish Bias = "bullish"
	BiasNeutral Bias = "neutral"
	BiasBearish Bias = "bearish"
)

// TradingConfiguration is the immutable user-facing configuration. The agent
// never patches fields in place; updates replace the whole value and restart
// the scheduler.
type TradingConfiguration struct {
	Risk             Profile    `mapstructure:"risk" json:"risk"`
	Strategy         Strategy   `mapstructure:"strategy" json:"strategy"`
	Speed            Speed      `mapstructure:"speed" json:"speed"`
	SignalConfidence Confidence `mapstructure:"signal_confidence" json:"signal_confidence"`
	Bias             Bias       `mapstructure:"bias" json:"bias"`
	PaperMode        bool       `mapstructure:"paper_mode" json:"paper_mode"`
}

// Parameters are the concrete numbers a TradingConfiguration resolves to.
type Parameters struct {
	MaxPositionSizeFraction float64
	StopLossFraction        float64
	TakeProfitFraction      float64
	SlippageTolerance       float64
	CheckInterval           time.Duration
	ConfidenceThreshold     float64
	MinVolumeMultiplier     float64
	TrailingStop            bool
	Bias                    Bias
}

type baseParams struct {
	position     float64
	stopLoss     float64
	takeProfit   float64
	slippage     float64
	trailingStop bool
}

var profileTable = map[Profile]baseParams{
	ProfileSafe:       {position: 0.15, stopLoss: 0.03, takeProfit: 0.02, slippage: 0.003},
	ProfileBalanced:   {position: 0.30, stopLoss: 0.05, takeProfit: 0.04, slippage: 0.005},
	ProfileAggressive: {position: 0.60, stopLoss: 0.15, takeProfit: 0.10, slippage: 0.01, trailingStop: true},
}

// Scheduler intervals per speed. An earlier revision ran slow mode at 15
// minutes; the hourly value is the canonical one.
var speedTable = map[Speed]time.Duration{
	SpeedFast:   60 * time.Second,
	SpeedNormal: 5 * time.Minute,
	SpeedSlow:   time.Hour,
}

// Confidence thresholds. The finer-grained 75/50/30 table is canonical; the
// coarser 80/60/40 table was retired with the old dashboard presets.
var confidenceTable = map[Confidence]float64{
	ConfidencePrecise: 75,
	ConfidenceNormal:  50,
	ConfidenceActive:  30,
}

// Resolve maps a TradingConfiguration to concrete Parameters. Pure: no
// state, called on every config replacement and at agent start.
func Resolve(cfg TradingConfiguration) (Parameters, error) {
	base, ok := profileTable[cfg.Risk]
	if !ok {
		return Parameters{}, fmt.Errorf("unknown risk profile %q", cfg.Risk)
	}
	interval, ok := speedTable[cfg.Speed]
	if !ok {
		return Parameters{}, fmt.Errorf("unknown speed %q", cfg.Speed)
	}
	threshold, ok := confidenceTable[cfg.SignalConfidence]
	if !ok {
		return Parameters{}, fmt.Errorf("unknown signal confidence %q", cfg.SignalConfidence)
	}

	p := Parameters{
		MaxPositionSizeFraction: base.position,
		StopLossFraction:        base.stopLoss,
		TakeProfitFraction:      base.takeProfit,
		SlippageTolerance:       base.slippage,
		CheckInterval:           interval,
		ConfidenceThreshold:     threshold,
		MinVolumeMultiplier:     1.0,
		TrailingStop:            base.trailingStop,
		Bias:                    cfg.Bias,
	}

	switch cfg.Bias {
	case BiasBullish:
		p.TakeProfitFraction *= 1.2
		p.StopLossFraction *= 0.8
	case BiasBearish:
		p.TakeProfitFraction *= 0.8
		p.StopLossFraction *= 1.2
	case BiasNeutral, "":
		// unchanged
	default:
		return Parameters{}, fmt.Errorf("unknown bias %q", cfg.Bias)
	}

	return p, nil
}

// Validate checks that every enum field of the configuration is known.
func (c TradingConfiguration) Validate() error {
	if _, err := Resolve(c); err != nil {
		return err
	}
	switch c.Strategy {
	case StrategyTrend, StrategyMeanReversion, StrategyRange:
		return nil
	default:
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}
}
