// internal/sim/sim.go
// Simulated market adapters for paper sessions: a random-walk pool source,
// a wallet view over the paper ledger, and an always-succeeding executor.
// No network, no chain.
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/galatrade/swapbot/internal/agent"
	"github.com/galatrade/swapbot/internal/ledger"
	"github.com/galatrade/swapbot/internal/market"
	"github.com/galatrade/swapbot/internal/token"
)

// PoolSource serves pool snapshots whose reserves drift on a random walk
// (±2% per read) around their starting point.
type PoolSource struct {
	mu     sync.Mutex
	pools  []market.LiquidityPool
	rng    *rand.Rand
	logger *zap.Logger
}

// NewPoolSource seeds the simulator with a default GALA/GUSDC pool.
func NewPoolSource(logger *zap.Logger) *PoolSource {
	return &PoolSource{
		pools: []market.LiquidityPool{
			{
				ID:        "sim-gala-gusdc",
				TokenA:    token.GALA,
				TokenB:    token.GUSDC,
				ReserveA:  5_000_000,
				ReserveB:  100_000,
				Fee:       0.003,
				Volume24h: 25_000,
			},
			{
				ID:        "sim-gweth-gusdc",
				TokenA:    token.GWETH,
				TokenB:    token.GUSDC,
				ReserveA:  40,
				ReserveB:  100_000,
				Fee:       0.003,
				Volume24h: 60_000,
			},
		},
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger.Named("sim_pools"),
	}
}

// GetPools returns the current snapshots after one random-walk step.
func (s *PoolSource) GetPools(ctx context.Context) ([]market.LiquidityPool, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]market.LiquidityPool, len(s.pools))
	for i := range s.pools {
		drift := 1 + (s.rng.Float64()-0.5)*0.04
		s.pools[i].ReserveB *= drift
		out[i] = s.pools[i]
	}
	return out, nil
}

// WalletSource exposes the paper ledger's balances as a wallet snapshot so
// the agent sees a consistent view in paper mode.
type WalletSource struct {
	paper *ledger.Paper
}

func NewWalletSource(paper *ledger.Paper) *WalletSource {
	return &WalletSource{paper: paper}
}

func (w *WalletSource) GetBalances(ctx context.Context) ([]ledger.Balance, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return w.paper.Balances(), nil
	}
}

// Executor fills every swap immediately with a synthetic reference. Paper
// sessions never reach it (the ledger settles them), but it lets live-mode
// wiring be exercised end to end without a chain connection.
type Executor struct {
	logger *zap.Logger
}

func NewExecutor(logger *zap.Logger) *Executor {
	return &Executor{logger: logger.Named("sim_executor")}
}

func (e *Executor) ExecuteSwap(ctx context.Context, req agent.SwapRequest) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	txRef := fmt.Sprintf("sim-%d", time.Now().UnixNano())
	e.logger.Info("Simulated swap filled",
		zap.String("pool", req.PoolID),
		zap.String("token_in", string(req.TokenIn)),
		zap.String("token_out", string(req.TokenOut)),
		zap.Float64("amount_in", req.AmountIn),
		zap.String("tx_ref", txRef))
	return txRef, nil
}
