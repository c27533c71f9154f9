// internal/ledger/paper.go
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/galatrade/swapbot/internal/token"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUnknownPrice        = errors.New("no known price for token")
)

// Paper is a simulated ledger. Balances are held as decimals so a
// debit/credit pair either applies exactly or not at all; there is no
// partial application and no rounding drift across trades.
type Paper struct {
	mu       sync.RWMutex
	balances map[token.Symbol]decimal.Decimal
	prices   map[token.Symbol]float64
	trades   []Trade
	notional float64
	logger   *zap.Logger
}

// NewPaper seeds a paper ledger by splitting the initial notional across the
// default token basket at reference prices.
func NewPaper(initialNotional float64, logger *zap.Logger) *Paper {
	p := &Paper{
		logger: logger.Named("paper_ledger"),
	}
	p.seed(initialNotional)
	return p
}

func (p *Paper) seed(notional float64) {
	refPrices := token.ReferencePrices()
	balances := make(map[token.Symbol]decimal.Decimal)
	prices := make(map[token.Symbol]float64)

	for sym, fraction := range token.DefaultBasket() {
		price := refPrices[sym]
		balances[sym] = decimal.NewFromFloat(notional * fraction / price)
		prices[sym] = price
	}

	p.balances = balances
	p.prices = prices
	p.trades = nil
	p.notional = notional

	p.logger.Info("Paper ledger seeded",
		zap.Float64("notional_usd", notional),
		zap.Int("tokens", len(balances)))
}

// Reset replaces the whole balance sheet with a fresh seed. Never applied
// incrementally.
func (p *Paper) Reset(notional float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seed(notional)
}

// UpdateInitialBalance is Reset under the name the dashboard calls it by.
func (p *Paper) UpdateInitialBalance(notional float64) {
	p.Reset(notional)
}

// UpdatePrice records the latest USD price for a token.
func (p *Paper) UpdatePrice(sym token.Symbol, price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices[sym] = price
}

// LastPrice returns the last recorded USD price for a token.
func (p *Paper) LastPrice(sym token.Symbol) (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	price, ok := p.prices[sym]
	return price, ok
}

// Balance returns the current holding of a token.
func (p *Paper) Balance(sym token.Symbol) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	f, _ := p.balances[sym].Float64()
	return f
}

// Balances returns a snapshot of all holdings with their USD values.
func (p *Paper) Balances() []Balance {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Balance, 0, len(p.balances))
	for sym, bal := range p.balances {
		amount, _ := bal.Float64()
		out = append(out, Balance{Token: sym, Amount: amount, ValueUSD: amount * p.prices[sym]})
	}
	return out
}

// CurrentValue recomputes the portfolio value from balances and last known
// prices. It is never cached: the value is always this sum.
func (p *Paper) CurrentValue() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.currentValueLocked()
}

func (p *Paper) currentValueLocked() float64 {
	total := 0.0
	for sym, bal := range p.balances {
		amount, _ := bal.Float64()
		total += amount * p.prices[sym]
	}
	return total
}

// ExecuteTrade settles a swap against the paper balance sheet. Insufficient
// balance rejects the trade with no mutation at all.
func (p *Paper) ExecuteTrade(poolID string, tokenIn, tokenOut token.Symbol, amountIn, amountOut float64) (Trade, error) {
	trade := NewTrade(poolID, tokenIn, tokenOut, amountIn)
	trade.AmountOut = amountOut
	if err := p.Settle(&trade); err != nil {
		return Trade{}, err
	}
	return trade, nil
}

// Settle applies a pending trade to the balance sheet: debit tokenIn, credit
// tokenOut, fill in execution prices and profit from the last known prices,
// and mark the trade successful with a pseudo transaction reference. The
// debit/credit pair never partially applies.
func (p *Paper) Settle(trade *Trade) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if trade.Status != StatusPending {
		return fmt.Errorf("trade %s is %s, expected pending", trade.ID, trade.Status)
	}

	debit := decimal.NewFromFloat(trade.AmountIn)
	have := p.balances[trade.TokenIn]
	if have.LessThan(debit) {
		return fmt.Errorf("%w: %s has %s, need %s",
			ErrInsufficientBalance, trade.TokenIn, have.String(), debit.String())
	}

	priceIn, okIn := p.prices[trade.TokenIn]
	priceOut, okOut := p.prices[trade.TokenOut]
	if !okIn || !okOut {
		return fmt.Errorf("%w: %s/%s", ErrUnknownPrice, trade.TokenIn, trade.TokenOut)
	}

	p.balances[trade.TokenIn] = have.Sub(debit)
	p.balances[trade.TokenOut] = p.balances[trade.TokenOut].Add(decimal.NewFromFloat(trade.AmountOut))

	trade.PriceIn = priceIn
	trade.PriceOut = priceOut
	valueIn := trade.AmountIn * priceIn
	valueOut := trade.AmountOut * priceOut
	if valueIn > 0 {
		trade.ProfitPercent = (valueOut - valueIn) / valueIn * 100
	}
	_ = trade.MarkSuccess(fmt.Sprintf("paper-%d", time.Now().UnixNano()))

	p.trades = append(p.trades, *trade)

	p.logger.Info("Paper trade executed",
		zap.String("trade_id", trade.ID),
		zap.String("token_in", string(trade.TokenIn)),
		zap.String("token_out", string(trade.TokenOut)),
		zap.Float64("amount_in", trade.AmountIn),
		zap.Float64("amount_out", trade.AmountOut),
		zap.Float64("profit_percent", trade.ProfitPercent),
		zap.Float64("portfolio_value", p.currentValueLocked()))

	return nil
}

// Trades returns the trade history, oldest first.
func (p *Paper) Trades() []Trade {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Trade, len(p.trades))
	copy(out, p.trades)
	return out
}

// Stats partitions the trade history by profit sign.
func (p *Paper) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var s Stats
	var profitSum, lossSum float64
	for _, t := range p.trades {
		if t.Status != StatusSuccess {
			continue
		}
		s.TotalTrades++
		s.TotalVolumeUSD += t.AmountIn * t.PriceIn
		s.TotalFeesUSD += t.Fee
		if t.ProfitPercent > s.BestTradePercent {
			s.BestTradePercent = t.ProfitPercent
		}
		if t.ProfitPercent < s.WorstTradePercent {
			s.WorstTradePercent = t.ProfitPercent
		}
		if t.ProfitPercent > 0 {
			s.Wins++
			profitSum += t.ProfitPercent
		} else if t.ProfitPercent < 0 {
			s.Losses++
			lossSum += t.ProfitPercent
		}
	}

	if decided := s.Wins + s.Losses; decided > 0 {
		s.WinRate = float64(s.Wins) / float64(decided) * 100
	}
	if s.Wins > 0 {
		s.AvgProfitPercent = profitSum / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AvgLossPercent = lossSum / float64(s.Losses)
	}
	return s
}
