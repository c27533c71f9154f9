// internal/ledger/live.go
package ledger

import (
	"sync"

	"go.uber.org/zap"
)

// Live tracks a wallet-backed trading session. P&L is the change in the
// external wallet's USD value since the session snapshot, reported against
// the user's trading limit rather than the wallet's total net worth: the bot
// only ever trades within the limit, so that is the base its performance is
// judged on.
type Live struct {
	mu                  sync.RWMutex
	tradingLimit        float64
	sessionInitialValue float64
	currentWalletValue  float64
	started             bool
	trades              []Trade
	logger              *zap.Logger

	// accumulators over successful trades
	totalVolume float64
	totalFees   float64
	wins        int
	losses      int
	profitSum   float64
	lossSum     float64
	best        float64
	worst       float64
}

// NewLive creates a live ledger scoped to a trading limit.
func NewLive(tradingLimit float64, logger *zap.Logger) *Live {
	return &Live{
		tradingLimit: tradingLimit,
		logger:       logger.Named("live_ledger"),
	}
}

// SetInitialBalances snapshots the wallet value at session start. Until this
// is called the ledger reports zero P&L and ignores balance updates.
func (l *Live) SetInitialBalances(balances []Balance) {
	l.mu.Lock()
	defer l.mu.Unlock()

	value := sumValue(balances)
	l.sessionInitialValue = value
	l.currentWalletValue = value
	l.started = true

	l.logger.Info("Live session started",
		zap.Float64("wallet_value_usd", value),
		zap.Float64("trading_limit_usd", l.tradingLimit))
}

// UpdateCurrentBalances refreshes the wallet snapshot. A no-op before the
// session has started.
func (l *Live) UpdateCurrentBalances(balances []Balance) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.started {
		return
	}
	l.currentWalletValue = sumValue(balances)
}

// Started reports whether the session snapshot has been taken.
func (l *Live) Started() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.started
}

// PnL is the wallet value delta since session start.
func (l *Live) PnL() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.started {
		return 0
	}
	return l.currentWalletValue - l.sessionInitialValue
}

// CurrentValue reports the session P&L on top of the trading limit base.
func (l *Live) CurrentValue() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.started {
		return l.tradingLimit
	}
	return l.tradingLimit + (l.currentWalletValue - l.sessionInitialValue)
}

// TradingLimit returns the configured session limit.
func (l *Live) TradingLimit() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tradingLimit
}

// AddTrade records a trade. Volume, fees and win/loss aggregates only count
// successful trades that carry both execution prices; failed or partially
// priced trades are kept in history but excluded from the aggregates.
func (l *Live) AddTrade(trade Trade) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.trades = append(l.trades, trade)

	if trade.Status != StatusSuccess || trade.PriceIn == 0 || trade.PriceOut == 0 {
		return
	}

	l.totalVolume += trade.AmountIn * trade.PriceIn
	l.totalFees += trade.Fee
	if trade.ProfitPercent > l.best {
		l.best = trade.ProfitPercent
	}
	if trade.ProfitPercent < l.worst {
		l.worst = trade.ProfitPercent
	}
	if trade.ProfitPercent > 0 {
		l.wins++
		l.profitSum += trade.ProfitPercent
	} else if trade.ProfitPercent < 0 {
		l.losses++
		l.lossSum += trade.ProfitPercent
	}
}

// Trades returns the trade history, oldest first.
func (l *Live) Trades() []Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// Stats returns the session aggregates.
func (l *Live) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Stats{
		TotalTrades:       len(l.trades),
		Wins:              l.wins,
		Losses:            l.losses,
		TotalVolumeUSD:    l.totalVolume,
		TotalFeesUSD:      l.totalFees,
		BestTradePercent:  l.best,
		WorstTradePercent: l.worst,
	}
	if decided := l.wins + l.losses; decided > 0 {
		s.WinRate = float64(l.wins) / float64(decided) * 100
	}
	if l.wins > 0 {
		s.AvgProfitPercent = l.profitSum / float64(l.wins)
	}
	if l.losses > 0 {
		s.AvgLossPercent = l.lossSum / float64(l.losses)
	}
	return s
}

func sumValue(balances []Balance) float64 {
	total := 0.0
	for _, b := range balances {
		total += b.ValueUSD
	}
	return total
}
