// internal/market/amm.go
package market

import (
	"fmt"
	"math/big"

	"github.com/galatrade/swapbot/internal/token"
)

// Quote is the expected outcome of a swap against a pool snapshot.
type Quote struct {
	TokenIn        token.Symbol
	TokenOut       token.Symbol
	AmountIn       float64
	AmountOut      float64
	ExecutionPrice float64 // amountOut / amountIn
	SpotPrice      float64 // reserveOut / reserveIn before the swap
	PriceImpact    float64 // percent deviation of execution price from spot
}

// QuoteSwap prices amountIn of tokenIn against the pool using the constant
// product formula:
//
//	amountOut = reserveOut * a / (reserveIn + a), a = amountIn * (1 - fee)
//
// big.Float keeps the intermediate products exact enough for deep pools.
func QuoteSwap(pool *LiquidityPool, tokenIn token.Symbol, amountIn float64) (*Quote, error) {
	if amountIn <= 0 {
		return nil, fmt.Errorf("amount in must be positive, got %f", amountIn)
	}
	reserveIn, reserveOut, ok := pool.reserves(tokenIn)
	if !ok {
		return nil, fmt.Errorf("token %s is not in pool %s", tokenIn, pool.ID)
	}
	if reserveIn <= 0 || reserveOut <= 0 {
		return nil, ErrEmptyReserves
	}

	x := big.NewFloat(reserveIn)
	y := big.NewFloat(reserveOut)
	a := new(big.Float).Mul(big.NewFloat(amountIn), big.NewFloat(1.0-pool.Fee))

	numerator := new(big.Float).Mul(y, a)
	denominator := new(big.Float).Add(x, a)
	out, _ := new(big.Float).Quo(numerator, denominator).Float64()

	tokenOut := pool.TokenB
	if tokenIn == pool.TokenB {
		tokenOut = pool.TokenA
	}

	spot := reserveOut / reserveIn
	execution := out / amountIn
	impact := (execution - spot) / spot * 100

	return &Quote{
		TokenIn:        tokenIn,
		TokenOut:       tokenOut,
		AmountIn:       amountIn,
		AmountOut:      out,
		ExecutionPrice: execution,
		SpotPrice:      spot,
		PriceImpact:    impact,
	}, nil
}

// MinAmountOut applies a slippage tolerance (fraction) to a quoted output.
func (q *Quote) MinAmountOut(slippage float64) float64 {
	return q.AmountOut * (1.0 - slippage)
}
