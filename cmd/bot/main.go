// ====================================
// File: cmd/bot/main.go
// ====================================
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/galatrade/swapbot/internal/activity"
	"github.com/galatrade/swapbot/internal/agent"
	"github.com/galatrade/swapbot/internal/config"
	"github.com/galatrade/swapbot/internal/ledger"
	"github.com/galatrade/swapbot/internal/logger"
	"github.com/galatrade/swapbot/internal/market"
	"github.com/galatrade/swapbot/internal/sim"
)

func main() {
	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fallback, _ := zap.NewDevelopment()
		fallback.Fatal("Failed to load config", zap.Error(err))
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	log, err := logger.New(logCfg)
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting swapbot",
		zap.String("config", configPath),
		zap.Bool("paper_mode", cfg.Trading.PaperMode))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	activityLog := activity.NewLog(log)
	sub := activityLog.Subscribe(func(e activity.Entry) {
		log.Debug("activity", zap.String("level", string(e.Level)),
			zap.String("type", string(e.Type)), zap.String("message", e.Message))
	})
	defer sub.Unsubscribe()

	paper := ledger.NewPaper(cfg.PaperNotionalUSD, log)
	live := ledger.NewLive(cfg.TradingLimitUSD, log)
	history := market.NewHistoryStore(log)

	poolSource := sim.NewPoolSource(log)

	bot, err := agent.New(agent.Config{
		Trading:  cfg.Trading,
		Pools:    poolSource,
		Wallet:   sim.NewWalletSource(paper),
		Executor: sim.NewExecutor(log),
		Paper:    paper,
		Live:     live,
		Activity: activityLog,
		History:  history,
		Logger:   log,
	})
	if err != nil {
		log.Fatal("Failed to create agent", zap.Error(err))
	}

	pools, err := poolSource.GetPools(ctx)
	if err != nil || len(pools) == 0 {
		log.Fatal("No pools available", zap.Error(err))
	}
	selected := pools[0]
	if cfg.PoolID != "" {
		for _, p := range pools {
			if p.ID == cfg.PoolID {
				selected = p
				break
			}
		}
	}
	bot.SetSelectedPool(selected)

	if err := bot.Start(ctx); err != nil {
		log.Fatal("Failed to start agent", zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down")
	bot.Stop()
	cancel()
	bot.Wait()

	snap := bot.GetStats()
	log.Info("Session summary",
		zap.Int("trades", len(snap.Trades)),
		zap.Float64("portfolio_value", snap.PortfolioValue),
		zap.Float64("win_rate", snap.Stats.WinRate))
}
