package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galatrade/swapbot/internal/token"
)

func galaPool() *LiquidityPool {
	return &LiquidityPool{
		ID:        "pool-1",
		TokenA:    token.GALA,
		TokenB:    token.GUSDC,
		ReserveA:  1_000_000,
		ReserveB:  50_000,
		Fee:       0.003,
		Volume24h: 25_000,
	}
}

func TestQuoteSwapConstantProduct(t *testing.T) {
	pool := galaPool()
	amountIn := 1000.0

	quote, err := QuoteSwap(pool, token.GALA, amountIn)
	require.NoError(t, err)

	a := amountIn * (1 - pool.Fee)
	want := pool.ReserveB * a / (pool.ReserveA + a)
	assert.InDelta(t, want, quote.AmountOut, 1e-9)
	assert.Equal(t, token.GUSDC, quote.TokenOut)
	assert.InDelta(t, want/amountIn, quote.ExecutionPrice, 1e-12)
	assert.InDelta(t, 0.05, quote.SpotPrice, 1e-12)
}

func TestQuoteSwapReverseDirection(t *testing.T) {
	pool := galaPool()

	quote, err := QuoteSwap(pool, token.GUSDC, 100)
	require.NoError(t, err)

	assert.Equal(t, token.GALA, quote.TokenOut)
	a := 100 * (1 - pool.Fee)
	want := pool.ReserveA * a / (pool.ReserveB + a)
	assert.InDelta(t, want, quote.AmountOut, 1e-6)
}

func TestQuoteSwapPriceImpactIsNegative(t *testing.T) {
	// any trade executes below spot under constant product
	quote, err := QuoteSwap(galaPool(), token.GALA, 50_000)
	require.NoError(t, err)
	assert.Negative(t, quote.PriceImpact)

	small, err := QuoteSwap(galaPool(), token.GALA, 10)
	require.NoError(t, err)
	assert.Greater(t, small.PriceImpact, quote.PriceImpact,
		"larger trades move the price further from spot")
}

func TestQuoteSwapRejectsBadInputs(t *testing.T) {
	_, err := QuoteSwap(galaPool(), token.GALA, 0)
	assert.Error(t, err)

	_, err = QuoteSwap(galaPool(), token.GALA, -5)
	assert.Error(t, err)

	_, err = QuoteSwap(galaPool(), token.GWETH, 100)
	assert.Error(t, err)

	empty := galaPool()
	empty.ReserveA = 0
	_, err = QuoteSwap(empty, token.GALA, 100)
	assert.ErrorIs(t, err, ErrEmptyReserves)
}

func TestMinAmountOutAppliesSlippage(t *testing.T) {
	quote := &Quote{AmountOut: 100}
	assert.InDelta(t, 99.5, quote.MinAmountOut(0.005), 1e-9)
	assert.Equal(t, 100.0, quote.MinAmountOut(0))
}

func TestSpotPricePrefersOraclePrices(t *testing.T) {
	pool := galaPool()

	price, err := pool.SpotPrice()
	require.NoError(t, err)
	assert.InDelta(t, 0.05, price, 1e-12)

	pool.PriceTokenA = 0.04
	pool.PriceTokenB = 1.0
	price, err = pool.SpotPrice()
	require.NoError(t, err)
	assert.InDelta(t, 0.04, price, 1e-12)

	drained := galaPool()
	drained.ReserveB = 0
	_, err = drained.SpotPrice()
	assert.ErrorIs(t, err, ErrEmptyReserves)
}
