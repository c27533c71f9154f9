// internal/agent/interfaces.go
package agent

import (
	"context"

	"github.com/galatrade/swapbot/internal/ledger"
	"github.com/galatrade/swapbot/internal/market"
	"github.com/galatrade/swapbot/internal/token"
)

// PoolDataSource supplies liquidity pool snapshots. Implementations own the
// transport (RPC, SDK, simulation); the agent only sees reserve state.
type PoolDataSource interface {
	GetPools(ctx context.Context) ([]market.LiquidityPool, error)
}

// WalletBalanceSource supplies the connected wallet's token balances.
type WalletBalanceSource interface {
	GetBalances(ctx context.Context) ([]ledger.Balance, error)
}

// SwapRequest describes one swap to submit on-chain.
type SwapRequest struct {
	PoolID       string
	TokenIn      token.Symbol
	TokenOut     token.Symbol
	AmountIn     float64
	MinAmountOut float64
	Slippage     float64 // fraction
}

// SwapExecutor submits swaps for live sessions. ExecuteSwap returns a
// transaction reference, or an error on revert, rejection or insufficient
// funds.
type SwapExecutor interface {
	ExecuteSwap(ctx context.Context, req SwapRequest) (string, error)
}
