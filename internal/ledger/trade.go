// internal/ledger/trade.go
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/galatrade/swapbot/internal/token"
)

// Status is the lifecycle state of a trade. Transitions are one-way:
// pending→success or pending→failed, never back.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Trade is one executed (or attempted) swap.
type Trade struct {
	ID            string       `json:"id"`
	Timestamp     time.Time    `json:"timestamp"`
	PoolID        string       `json:"pool_id"`
	TokenIn       token.Symbol `json:"token_in"`
	TokenOut      token.Symbol `json:"token_out"`
	AmountIn      float64      `json:"amount_in"`
	AmountOut     float64      `json:"amount_out"`
	PriceIn       float64      `json:"price_in,omitempty"`  // USD price of tokenIn at execution
	PriceOut      float64      `json:"price_out,omitempty"` // USD price of tokenOut at execution
	Fee           float64      `json:"fee,omitempty"`       // USD
	ProfitPercent float64      `json:"profit_percent,omitempty"`
	TxRef         string       `json:"tx_ref,omitempty"`
	Status        Status       `json:"status"`
}

// NewTrade creates a pending trade with a fresh id.
func NewTrade(poolID string, tokenIn, tokenOut token.Symbol, amountIn float64) Trade {
	return Trade{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		PoolID:    poolID,
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
		AmountIn:  amountIn,
		Status:    StatusPending,
	}
}

// MarkSuccess finalizes a pending trade.
func (t *Trade) MarkSuccess(txRef string) error {
	if t.Status != StatusPending {
		return fmt.Errorf("trade %s is %s, cannot mark success", t.ID, t.Status)
	}
	t.Status = StatusSuccess
	t.TxRef = txRef
	return nil
}

// MarkFailed finalizes a pending trade as failed.
func (t *Trade) MarkFailed() error {
	if t.Status != StatusPending {
		return fmt.Errorf("trade %s is %s, cannot mark failed", t.ID, t.Status)
	}
	t.Status = StatusFailed
	return nil
}

// Balance is one entry of a wallet snapshot from the balance source.
type Balance struct {
	Token    token.Symbol `json:"token"`
	Amount   float64      `json:"amount"`
	ValueUSD float64      `json:"value_usd"`
}

// Stats aggregates trade outcomes for dashboards.
type Stats struct {
	TotalTrades       int     `json:"total_trades"`
	Wins              int     `json:"wins"`
	Losses            int     `json:"losses"`
	WinRate           float64 `json:"win_rate"` // percent of decided trades
	AvgProfitPercent  float64 `json:"avg_profit_percent"`
	AvgLossPercent    float64 `json:"avg_loss_percent"`
	TotalVolumeUSD    float64 `json:"total_volume_usd"`
	TotalFeesUSD      float64 `json:"total_fees_usd"`
	BestTradePercent  float64 `json:"best_trade_percent"`
	WorstTradePercent float64 `json:"worst_trade_percent"`
}
