// internal/agent/agent.go
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/galatrade/swapbot/internal/activity"
	"github.com/galatrade/swapbot/internal/ledger"
	"github.com/galatrade/swapbot/internal/market"
	"github.com/galatrade/swapbot/internal/risk"
)

var (
	ErrAlreadyRunning = errors.New("agent is already running")
	ErrNoWallet       = errors.New("no wallet connection")
	ErrNoPoolSelected = errors.New("no pool selected")
	ErrNoFunds        = errors.New("wallet has no funds for live trading")
)

// Config wires an Agent together.
type Config struct {
	Trading  risk.TradingConfiguration
	Pools    PoolDataSource
	Wallet   WalletBalanceSource
	Executor SwapExecutor // required for live sessions only
	Paper    *ledger.Paper
	Live     *ledger.Live
	Activity *activity.Log
	History  *market.HistoryStore
	Logger   *zap.Logger
}

// Agent owns one trading session: it runs the periodic
// signal→size→gate→execute cycle and is the sole mutator of session state.
type Agent struct {
	mu           sync.Mutex
	cfg          risk.TradingConfiguration
	params       risk.Parameters
	selectedPool *market.LiquidityPool
	running      bool
	cancel       context.CancelFunc
	parentCtx    context.Context

	pools    PoolDataSource
	wallet   WalletBalanceSource
	executor SwapExecutor
	paper    *ledger.Paper
	live     *ledger.Live
	activity *activity.Log
	history  *market.HistoryStore
	logger   *zap.Logger

	// epoch advances on every (re)start; cycles started under an older epoch
	// discard their results instead of writing into the new session.
	epoch atomic.Uint64
	// busy guards against overlapping cycles: if a cycle's I/O is still
	// pending when the timer fires, the new tick is skipped.
	busy atomic.Bool
	wg   sync.WaitGroup
}

// New creates a stopped agent.
func New(cfg Config) (*Agent, error) {
	if err := cfg.Trading.Validate(); err != nil {
		return nil, fmt.Errorf("invalid trading configuration: %w", err)
	}
	params, err := risk.Resolve(cfg.Trading)
	if err != nil {
		return nil, err
	}
	return &Agent{
		cfg:      cfg.Trading,
		params:   params,
		pools:    cfg.Pools,
		wallet:   cfg.Wallet,
		executor: cfg.Executor,
		paper:    cfg.Paper,
		live:     cfg.Live,
		activity: cfg.Activity,
		history:  cfg.History,
		logger:   cfg.Logger.Named("agent"),
	}, nil
}

// Start validates preconditions, runs one cycle immediately and schedules
// the recurring timer. Precondition failures leave the agent stopped and are
// returned to the caller; they are never retried internally.
func (a *Agent) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.startLocked(ctx)
}

func (a *Agent) startLocked(ctx context.Context) error {
	if a.running {
		return ErrAlreadyRunning
	}
	if a.wallet == nil {
		return ErrNoWallet
	}
	if a.selectedPool == nil {
		return ErrNoPoolSelected
	}

	params, err := risk.Resolve(a.cfg)
	if err != nil {
		return err
	}
	a.params = params

	if !a.cfg.PaperMode {
		if a.executor == nil {
			return fmt.Errorf("%w: no swap executor", ErrNoWallet)
		}
		balances, err := a.fetchBalances(ctx)
		if err != nil {
			return fmt.Errorf("fetch wallet balances: %w", err)
		}
		total := 0.0
		for _, b := range balances {
			total += b.ValueUSD
		}
		if total <= 0 {
			return ErrNoFunds
		}
		a.live.SetInitialBalances(balances)
		a.activity.LogWallet(activity.LevelInfo, "Live session started", map[string]any{
			"wallet_value_usd":  total,
			"trading_limit_usd": a.live.TradingLimit(),
		})
	}

	schedCtx, cancel := context.WithCancel(ctx)
	a.parentCtx = ctx
	a.cancel = cancel
	a.running = true
	epoch := a.epoch.Add(1)

	a.logger.Info("Agent started",
		zap.String("pool", a.selectedPool.ID),
		zap.String("strategy", string(a.cfg.Strategy)),
		zap.String("risk", string(a.cfg.Risk)),
		zap.Bool("paper_mode", a.cfg.PaperMode),
		zap.Duration("interval", params.CheckInterval))
	a.activity.LogSystem(activity.LevelInfo, "Trading agent started", map[string]any{
		"strategy": string(a.cfg.Strategy),
		"interval": params.CheckInterval.String(),
	})

	a.wg.Add(1)
	go a.run(ctx, schedCtx, epoch, params.CheckInterval)
	return nil
}

// run drives the cycle timer. The scheduler context only stops scheduling;
// a cycle already in flight keeps its own context and finishes on its own.
func (a *Agent) run(cycleCtx, schedCtx context.Context, epoch uint64, interval time.Duration) {
	defer a.wg.Done()

	a.tryCycle(cycleCtx, epoch)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-schedCtx.Done():
			a.logger.Debug("Scheduler stopped")
			return
		case <-ticker.C:
			a.tryCycle(cycleCtx, epoch)
		}
	}
}

// tryCycle starts a cycle goroutine unless one is still in flight.
func (a *Agent) tryCycle(ctx context.Context, epoch uint64) {
	if !a.busy.CompareAndSwap(false, true) {
		a.logger.Warn("Previous cycle still in flight, skipping tick")
		return
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.busy.Store(false)
		a.runCycle(ctx, epoch)
	}()
}

// Stop cancels the timer and marks the agent stopped. Idempotent. A cycle
// already in flight is not aborted; its results are kept unless the agent
// has been restarted under a new configuration in the meantime.
func (a *Agent) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

func (a *Agent) stopLocked() {
	if !a.running {
		return
	}
	a.cancel()
	a.cancel = nil
	a.running = false

	a.logger.Info("Agent stopped")
	a.activity.LogSystem(activity.LevelInfo, "Trading agent stopped", nil)
}

// UpdateConfig replaces the configuration wholesale. A running agent is
// stopped and restarted so the new interval and strategy apply immediately.
func (a *Agent) UpdateConfig(cfg risk.TradingConfiguration) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid trading configuration: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	wasRunning := a.running
	if wasRunning {
		a.stopLocked()
	}
	a.cfg = cfg
	if params, err := risk.Resolve(cfg); err == nil {
		a.params = params
	}
	a.logger.Info("Configuration replaced",
		zap.String("risk", string(cfg.Risk)),
		zap.String("strategy", string(cfg.Strategy)),
		zap.Bool("paper_mode", cfg.PaperMode))

	if wasRunning {
		return a.startLocked(a.parentCtx)
	}
	return nil
}

// SetSelectedPool sets the target pool. Changing it while running is allowed
// and takes effect on the next cycle.
func (a *Agent) SetSelectedPool(pool market.LiquidityPool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.selectedPool = &pool
	a.logger.Info("Pool selected",
		zap.String("pool", pool.ID),
		zap.String("pair", fmt.Sprintf("%s/%s", pool.TokenA, pool.TokenB)))
}

// Running reports the scheduler state.
func (a *Agent) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Snapshot is a read-only view of the session for dashboards.
type Snapshot struct {
	Running        bool                      `json:"running"`
	Config         risk.TradingConfiguration `json:"config"`
	PortfolioValue float64                   `json:"portfolio_value"`
	Trades         []ledger.Trade            `json:"trades"`
	Stats          ledger.Stats              `json:"stats"`
}

// GetStats returns the current session snapshot.
func (a *Agent) GetStats() Snapshot {
	a.mu.Lock()
	cfg := a.cfg
	running := a.running
	a.mu.Unlock()

	snap := Snapshot{Running: running, Config: cfg}
	if cfg.PaperMode {
		snap.PortfolioValue = a.paper.CurrentValue()
		snap.Trades = a.paper.Trades()
		snap.Stats = a.paper.Stats()
	} else {
		snap.PortfolioValue = a.live.CurrentValue()
		snap.Trades = a.live.Trades()
		snap.Stats = a.live.Stats()
	}
	return snap
}

// Wait blocks until the scheduler and any in-flight cycle have returned.
// Intended for shutdown and tests.
func (a *Agent) Wait() {
	a.wg.Wait()
}
