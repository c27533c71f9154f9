// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"

	"github.com/galatrade/swapbot/internal/risk"
)

// Config is everything the bot reads at startup: the trading configuration
// plus session and logging settings.
type Config struct {
	Trading risk.TradingConfiguration `mapstructure:"trading"`

	PaperNotionalUSD float64 `mapstructure:"paper_notional_usd"`
	TradingLimitUSD  float64 `mapstructure:"trading_limit_usd"`
	PoolID           string  `mapstructure:"pool_id"`

	LogFile      string `mapstructure:"log_file"`
	DebugLogging bool   `mapstructure:"debug_logging"`
}

const (
	DefaultPaperNotional = 500.0
	DefaultTradingLimit  = 100.0
	DefaultLogFile       = "logs/swapbot.log"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"trading.risk":              string(risk.ProfileBalanced),
		"trading.strategy":          string(risk.StrategyTrend),
		"trading.speed":             string(risk.SpeedNormal),
		"trading.signal_confidence": string(risk.ConfidenceNormal),
		"trading.bias":              string(risk.BiasNeutral),
		"trading.paper_mode":        true,
		"paper_notional_usd":        DefaultPaperNotional,
		"trading_limit_usd":         DefaultTradingLimit,
		"log_file":                  DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if err := cfg.Trading.Validate(); err != nil {
		return err
	}
	if cfg.PaperNotionalUSD <= 0 {
		return errors.New("invalid paper_notional_usd")
	}
	if !cfg.Trading.PaperMode && cfg.TradingLimitUSD <= 0 {
		return errors.New("invalid trading_limit_usd for live mode")
	}
	if cfg.LogFile == "" {
		return errors.New("missing log_file")
	}
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.AutomaticEnv()
	v.SetEnvPrefix("SWAPBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if poolID := v.GetString("POOL_ID"); poolID != "" {
		cfg.PoolID = poolID
	}
	if v.IsSet("DEBUG_LOGGING") {
		cfg.DebugLogging = v.GetBool("DEBUG_LOGGING")
	}
}
