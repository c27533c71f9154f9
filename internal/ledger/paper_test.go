package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/galatrade/swapbot/internal/token"
)

func TestNewPaperSeedsBasketAtReferencePrices(t *testing.T) {
	p := NewPaper(500, zap.NewNop())

	assert.InDelta(t, 500, p.CurrentValue(), 1e-6)

	// 40% of $500 in GUSDC at $1 is 200 tokens, 20% in GALA at $0.02 is 5000
	assert.InDelta(t, 200, p.Balance(token.GUSDC), 1e-9)
	assert.InDelta(t, 5000, p.Balance(token.GALA), 1e-9)
	assert.InDelta(t, 100.0/2500.0, p.Balance(token.GWETH), 1e-12)
}

func TestExecuteTradeMovesBalances(t *testing.T) {
	p := NewPaper(500, zap.NewNop())

	trade, err := p.ExecuteTrade("pool-1", token.GUSDC, token.GALA, 100, 4000)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, trade.Status)
	assert.NotEmpty(t, trade.TxRef)
	assert.InDelta(t, 100, p.Balance(token.GUSDC), 1e-9)
	assert.InDelta(t, 9000, p.Balance(token.GALA), 1e-9)

	// bought 4000 GALA at $0.02 for $100: value unchanged, profit -20%
	assert.InDelta(t, 80.0, 4000*trade.PriceOut, 1e-9)
	assert.InDelta(t, -20.0, trade.ProfitPercent, 1e-9)
}

func TestSettleRejectsInsufficientBalanceWithoutMutation(t *testing.T) {
	p := NewPaper(500, zap.NewNop())
	before := p.CurrentValue()

	trade := NewTrade("pool-1", token.GUSDC, token.GALA, 10_000)
	trade.AmountOut = 400_000
	err := p.Settle(&trade)

	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, StatusPending, trade.Status)
	assert.InDelta(t, before, p.CurrentValue(), 1e-9)
	assert.InDelta(t, 200, p.Balance(token.GUSDC), 1e-9)
	assert.Empty(t, p.Trades())
}

func TestSettleRejectsUnknownPrice(t *testing.T) {
	p := NewPaper(500, zap.NewNop())

	trade := NewTrade("pool-1", token.GUSDC, token.Symbol("XYZ"), 10)
	trade.AmountOut = 1
	err := p.Settle(&trade)

	assert.ErrorIs(t, err, ErrUnknownPrice)
	assert.InDelta(t, 200, p.Balance(token.GUSDC), 1e-9)
}

func TestSettleRejectsNonPendingTrade(t *testing.T) {
	p := NewPaper(500, zap.NewNop())

	trade := NewTrade("pool-1", token.GUSDC, token.GALA, 10)
	trade.AmountOut = 400
	require.NoError(t, trade.MarkFailed())

	assert.Error(t, p.Settle(&trade))
}

func TestCurrentValueTracksPriceUpdates(t *testing.T) {
	p := NewPaper(500, zap.NewNop())

	p.UpdatePrice(token.GALA, 0.04) // GALA leg doubles: +$100
	assert.InDelta(t, 600, p.CurrentValue(), 1e-6)

	p.UpdatePrice(token.GALA, 0.01)
	assert.InDelta(t, 450, p.CurrentValue(), 1e-6)

	price, ok := p.LastPrice(token.GALA)
	require.True(t, ok)
	assert.Equal(t, 0.01, price)
}

func TestStatsPartitionsByProfitSign(t *testing.T) {
	p := NewPaper(500, zap.NewNop())

	// sell 1000 GALA ($20) for 25 GUSDC ($25): +25%
	_, err := p.ExecuteTrade("pool-1", token.GALA, token.GUSDC, 1000, 25)
	require.NoError(t, err)

	// sell 1000 GALA ($20) for 18 GUSDC ($18): -10%
	_, err = p.ExecuteTrade("pool-1", token.GALA, token.GUSDC, 1000, 18)
	require.NoError(t, err)

	s := p.Stats()
	assert.Equal(t, 2, s.TotalTrades)
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.InDelta(t, 50, s.WinRate, 1e-9)
	assert.InDelta(t, 25, s.AvgProfitPercent, 1e-9)
	assert.InDelta(t, -10, s.AvgLossPercent, 1e-9)
	assert.InDelta(t, 25, s.BestTradePercent, 1e-9)
	assert.InDelta(t, -10, s.WorstTradePercent, 1e-9)
	assert.InDelta(t, 40, s.TotalVolumeUSD, 1e-9)
}

func TestResetReplacesBalanceSheet(t *testing.T) {
	p := NewPaper(500, zap.NewNop())

	_, err := p.ExecuteTrade("pool-1", token.GUSDC, token.GALA, 50, 2000)
	require.NoError(t, err)
	p.UpdatePrice(token.GALA, 0.9)

	p.Reset(1000)

	assert.InDelta(t, 1000, p.CurrentValue(), 1e-6)
	assert.InDelta(t, 400, p.Balance(token.GUSDC), 1e-9)
	assert.Empty(t, p.Trades())
	price, _ := p.LastPrice(token.GALA)
	assert.Equal(t, 0.02, price)
}
