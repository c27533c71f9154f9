// internal/agent/cycle.go
package agent

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/galatrade/swapbot/internal/activity"
	"github.com/galatrade/swapbot/internal/ledger"
	"github.com/galatrade/swapbot/internal/market"
	"github.com/galatrade/swapbot/internal/risk"
	"github.com/galatrade/swapbot/internal/strategy"
	"github.com/galatrade/swapbot/internal/token"
)

const (
	fetchTimeout   = 10 * time.Second
	swapTimeout    = 30 * time.Second
	fetchMaxTries  = 3
	fetchBaseDelay = 500 * time.Millisecond
)

// runCycle executes one tick of the trading loop. Every failure inside a
// cycle is logged and contained; the scheduler keeps ticking.
func (a *Agent) runCycle(ctx context.Context, epoch uint64) {
	a.mu.Lock()
	pool := a.selectedPool
	params := a.params
	cfg := a.cfg
	a.mu.Unlock()

	if pool == nil {
		a.activity.LogSystem(activity.LevelWarning, "No pool selected, skipping cycle", nil)
		return
	}

	logger := a.logger.With(zap.String("pool", pool.ID), zap.Uint64("epoch", epoch))

	// Snapshot wallet and pool state in parallel; both fetches retry with
	// exponential backoff before the cycle gives up.
	var balances []ledger.Balance
	var freshPool *market.LiquidityPool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balances, err = a.fetchBalances(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		freshPool, err = a.fetchPool(gctx, pool.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Warn("Cycle data fetch failed, keeping previous history", zap.Error(err))
		a.activity.LogSystem(activity.LevelWarning, "Market data unavailable", map[string]any{"error": err.Error()})
		return
	}
	pool = freshPool

	price, err := pool.SpotPrice()
	if err != nil {
		logger.Warn("Cannot price pool", zap.Error(err))
		return
	}
	a.history.Append(pool.ID, market.PricePoint{
		Timestamp: time.Now(),
		Price:     price,
		Volume:    pool.Volume24h,
	})

	var totalValue float64
	if cfg.PaperMode {
		// Track the base token's USD price off the quote leg's last known
		// value so the ledger stays self-consistent.
		if quoteUSD, ok := a.paper.LastPrice(pool.TokenB); ok {
			a.paper.UpdatePrice(pool.TokenA, price*quoteUSD)
		}
		totalValue = a.paper.CurrentValue()
	} else {
		a.live.UpdateCurrentBalances(balances)
		for _, b := range balances {
			totalValue += b.ValueUSD
		}
	}

	sig, err := strategy.Evaluate(cfg.Strategy, pool.ID, a.history.Series(pool.ID), params.Bias)
	if err != nil {
		logger.Error("Strategy evaluation failed", zap.Error(err))
		return
	}

	a.activity.LogSignal(
		fmt.Sprintf("%s %s (%.0f%%): %s", cfg.Strategy, sig.Action, sig.Confidence, sig.Reason),
		sig.Confidence,
		map[string]any{"pool": pool.ID, "action": string(sig.Action), "confidence": sig.Confidence},
	)

	if sig.Action == strategy.ActionHold || sig.Confidence < params.ConfidenceThreshold {
		logger.Debug("Signal below threshold, no trade",
			zap.String("action", string(sig.Action)),
			zap.Float64("confidence", sig.Confidence),
			zap.Float64("threshold", params.ConfidenceThreshold))
		return
	}

	a.executeSignal(ctx, logger, epoch, pool, params, cfg, sig, balances, totalValue)
}

// executeSignal sizes the position, checks execution feasibility and settles
// the trade against the paper ledger or the live executor.
func (a *Agent) executeSignal(
	ctx context.Context,
	logger *zap.Logger,
	epoch uint64,
	pool *market.LiquidityPool,
	params risk.Parameters,
	cfg risk.TradingConfiguration,
	sig strategy.Signal,
	balances []ledger.Balance,
	totalValue float64,
) {
	positionCap := totalValue * params.MaxPositionSizeFraction
	tradeSizeUSD := positionCap * 0.5
	if sig.SuggestedAmount > 0 {
		tradeSizeUSD = math.Min(positionCap, sig.SuggestedAmount)
	}

	// Buys spend the quote token for the base token; sells the inverse.
	tokenIn, tokenOut := pool.TokenB, pool.TokenA
	if sig.Action == strategy.ActionSell {
		tokenIn, tokenOut = pool.TokenA, pool.TokenB
	}

	priceIn := a.usdPrice(cfg, tokenIn, balances)
	if priceIn <= 0 {
		logger.Warn("No usable price for input token, skipping trade",
			zap.String("token", string(tokenIn)))
		a.activity.LogSystem(activity.LevelWarning, "Skipping trade: unknown input token price",
			map[string]any{"token": string(tokenIn)})
		return
	}
	amountIn := tradeSizeUSD / priceIn

	quote, err := market.QuoteSwap(pool, tokenIn, amountIn)
	if err != nil {
		logger.Warn("Swap quote failed", zap.Error(err))
		return
	}

	// Policy guard, not an error: a trade too big for the pool's depth is
	// skipped and the next cycle proceeds.
	if math.Abs(quote.PriceImpact) > params.SlippageTolerance*100 {
		logger.Warn("Price impact exceeds slippage tolerance, skipping trade",
			zap.Float64("impact_percent", quote.PriceImpact),
			zap.Float64("tolerance_percent", params.SlippageTolerance*100))
		a.activity.LogSystem(activity.LevelWarning, "Trade skipped: price impact above tolerance",
			map[string]any{"impact": quote.PriceImpact, "tolerance": params.SlippageTolerance * 100})
		return
	}

	if a.epoch.Load() != epoch {
		logger.Debug("Agent restarted during cycle, discarding result")
		return
	}

	trade := ledger.NewTrade(pool.ID, tokenIn, tokenOut, amountIn)
	trade.AmountOut = quote.AmountOut
	trade.Fee = amountIn * pool.Fee * priceIn

	a.activity.Add(activity.LevelInfo, activity.TypeTrade,
		fmt.Sprintf("Submitting %s: %.4f %s -> %.4f %s", sig.Action, amountIn, tokenIn, quote.AmountOut, tokenOut),
		map[string]any{"trade_id": trade.ID, "pool": pool.ID})

	if cfg.PaperMode {
		a.settlePaper(logger, &trade)
		return
	}
	a.settleLive(ctx, logger, &trade, quote, params, cfg, balances)
}

func (a *Agent) settlePaper(logger *zap.Logger, trade *ledger.Trade) {
	if err := a.paper.Settle(trade); err != nil {
		_ = trade.MarkFailed()
		logger.Error("Paper trade rejected", zap.String("trade_id", trade.ID), zap.Error(err))
		a.activity.LogTrade(fmt.Sprintf("Trade failed: %v", err), false,
			map[string]any{"trade_id": trade.ID})
		return
	}
	a.activity.LogTrade(
		fmt.Sprintf("Trade filled: %.4f %s -> %.4f %s (%.2f%%)",
			trade.AmountIn, trade.TokenIn, trade.AmountOut, trade.TokenOut, trade.ProfitPercent),
		true,
		map[string]any{"trade_id": trade.ID, "tx_ref": trade.TxRef})
}

func (a *Agent) settleLive(
	ctx context.Context,
	logger *zap.Logger,
	trade *ledger.Trade,
	quote *market.Quote,
	params risk.Parameters,
	cfg risk.TradingConfiguration,
	balances []ledger.Balance,
) {
	swapCtx, cancel := context.WithTimeout(ctx, swapTimeout)
	defer cancel()

	txRef, err := a.executor.ExecuteSwap(swapCtx, SwapRequest{
		PoolID:       trade.PoolID,
		TokenIn:      trade.TokenIn,
		TokenOut:     trade.TokenOut,
		AmountIn:     trade.AmountIn,
		MinAmountOut: quote.MinAmountOut(params.SlippageTolerance),
		Slippage:     params.SlippageTolerance,
	})
	if err != nil {
		_ = trade.MarkFailed()
		a.live.AddTrade(*trade)
		logger.Error("Swap execution failed", zap.String("trade_id", trade.ID), zap.Error(err))
		a.activity.LogTrade(fmt.Sprintf("Swap failed: %v", err), false,
			map[string]any{"trade_id": trade.ID})
		return
	}

	trade.PriceIn = a.usdPrice(cfg, trade.TokenIn, balances)
	trade.PriceOut = a.usdPrice(cfg, trade.TokenOut, balances)
	if valueIn := trade.AmountIn * trade.PriceIn; valueIn > 0 {
		trade.ProfitPercent = (trade.AmountOut*trade.PriceOut - valueIn) / valueIn * 100
	}
	_ = trade.MarkSuccess(txRef)
	a.live.AddTrade(*trade)

	logger.Info("Swap executed",
		zap.String("trade_id", trade.ID),
		zap.String("tx_ref", txRef),
		zap.Float64("profit_percent", trade.ProfitPercent))
	a.activity.LogTrade(
		fmt.Sprintf("Swap executed: %.4f %s -> %.4f %s",
			trade.AmountIn, trade.TokenIn, trade.AmountOut, trade.TokenOut),
		true,
		map[string]any{"trade_id": trade.ID, "tx_ref": txRef})
}

// usdPrice resolves the last known USD price of a token: the paper ledger's
// price table in paper mode, the wallet snapshot's implied price otherwise.
func (a *Agent) usdPrice(cfg risk.TradingConfiguration, sym token.Symbol, balances []ledger.Balance) float64 {
	if cfg.PaperMode {
		price, _ := a.paper.LastPrice(sym)
		return price
	}
	for _, b := range balances {
		if b.Token == sym && b.Amount > 0 {
			return b.ValueUSD / b.Amount
		}
	}
	return 0
}

func (a *Agent) fetchBalances(ctx context.Context) ([]ledger.Balance, error) {
	return retryFetch(ctx, a.logger, "wallet balances", func(c context.Context) ([]ledger.Balance, error) {
		return a.wallet.GetBalances(c)
	})
}

func (a *Agent) fetchPool(ctx context.Context, poolID string) (*market.LiquidityPool, error) {
	return retryFetch(ctx, a.logger, "pools", func(c context.Context) (*market.LiquidityPool, error) {
		pools, err := a.pools.GetPools(c)
		if err != nil {
			return nil, err
		}
		for i := range pools {
			if pools[i].ID == poolID {
				return &pools[i], nil
			}
		}
		return nil, fmt.Errorf("pool %s not found in data source", poolID)
	})
}

// retryFetch wraps a data-source call with a bounded exponential backoff.
func retryFetch[T any](ctx context.Context, logger *zap.Logger, what string, fn func(context.Context) (T, error)) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = fetchBaseDelay
	policy.MaxInterval = fetchBaseDelay * 10

	operation := func() (T, error) {
		fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()
		return fn(fetchCtx)
	}
	notify := func(err error, d time.Duration) {
		logger.Warn("Retrying fetch after error",
			zap.String("what", what),
			zap.Error(err),
			zap.Duration("backoff", d))
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(fetchMaxTries),
		backoff.WithNotify(notify))
}
