// Package config loads run configuration from YAML or JSON files with
// environment-variable overrides (SIMLEDGER_* vars, optionally from a
// .env file).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents a complete backtest run configuration.
type Config struct {
	Symbol         string  `json:"symbol" yaml:"symbol"`
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`

	Broker   BrokerConfig   `json:"broker" yaml:"broker"`
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
}

// BrokerConfig selects and parameterizes the execution policy.
type BrokerConfig struct {
	Policy         string  `json:"policy" yaml:"policy"` // "exchange" or "ideal"
	CommissionRate float64 `json:"commission_rate" yaml:"commission_rate"`
	MinCommission  float64 `json:"min_commission" yaml:"min_commission"`
	StampTaxRate   float64 `json:"stamp_tax_rate" yaml:"stamp_tax_rate"`
	SlippageRate   float64 `json:"slippage_rate" yaml:"slippage_rate"`
	LotSize        int64   `json:"lot_size" yaml:"lot_size"`
	BandTolerance  float64 `json:"band_tolerance" yaml:"band_tolerance"`
}

// RiskConfig parameterizes the optional pre-trade gate.
type RiskConfig struct {
	Enabled         bool    `json:"enabled" yaml:"enabled"`
	MaxPositionPct  float64 `json:"max_position_pct" yaml:"max_position_pct"`
	MaxOrderPct     float64 `json:"max_order_pct" yaml:"max_order_pct"`
	MaxTradesPerDay int     `json:"max_trades_per_day" yaml:"max_trades_per_day"`
	MaxDailyLossPct float64 `json:"max_daily_loss_pct" yaml:"max_daily_loss_pct"`
	MaxDrawdownPct  float64 `json:"max_drawdown_pct" yaml:"max_drawdown_pct"`
}

// StrategyConfig selects and parameterizes the strategy.
type StrategyConfig struct {
	Name       string  `json:"name" yaml:"name"`
	FastPeriod int     `json:"fast_period" yaml:"fast_period"`
	SlowPeriod int     `json:"slow_period" yaml:"slow_period"`
	Ratio      float64 `json:"ratio" yaml:"ratio"`
}

// JournalConfig selects the journal sink.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// MetricsConfig parameterizes the performance statistics.
type MetricsConfig struct {
	RiskFreeRate float64 `json:"risk_free_rate" yaml:"risk_free_rate"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Symbol:         "600519",
		InitialCapital: 100000,
		Broker: BrokerConfig{
			Policy:         "exchange",
			CommissionRate: 0.0003,
			MinCommission:  5,
			StampTaxRate:   0.001,
			SlippageRate:   0,
			LotSize:        100,
			BandTolerance:  0.01,
		},
		Risk: RiskConfig{
			Enabled:         true,
			MaxPositionPct:  0.95,
			MaxOrderPct:     0.95,
			MaxTradesPerDay: 10,
			MaxDailyLossPct: 0.05,
			MaxDrawdownPct:  0.25,
		},
		Strategy: StrategyConfig{
			Name:       "sma-cross",
			FastPeriod: 5,
			SlowPeriod: 20,
			Ratio:      0.95,
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Metrics: MetricsConfig{
			RiskFreeRate: 0.02,
		},
	}
}

// LoadFromFile loads configuration from a file (YAML first, JSON fallback),
// applies environment overrides and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv folds SIMLEDGER_* environment variables over the config. A .env
// file in the working directory is honored when present.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if v := getEnv("SIMLEDGER_SYMBOL"); v != "" {
		c.Symbol = v
	}
	if v, ok := getEnvFloat("SIMLEDGER_INITIAL_CAPITAL"); ok {
		c.InitialCapital = v
	}
	if v := getEnv("SIMLEDGER_BROKER_POLICY"); v != "" {
		c.Broker.Policy = v
	}
	if v := getEnv("SIMLEDGER_STRATEGY"); v != "" {
		c.Strategy.Name = v
	}
	if v := getEnv("SIMLEDGER_JOURNAL_TYPE"); v != "" {
		c.Journal.Type = v
	}
	if v := getEnv("SIMLEDGER_DB_PATH"); v != "" {
		c.Journal.DBPath = v
	}
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial_capital must be positive")
	}
	switch c.Broker.Policy {
	case "", "exchange", "ideal":
	default:
		return fmt.Errorf("broker.policy must be 'exchange' or 'ideal', got %q", c.Broker.Policy)
	}
	if c.Broker.CommissionRate < 0 || c.Broker.CommissionRate >= 1 {
		return fmt.Errorf("broker.commission_rate must be in [0,1)")
	}
	if c.Broker.StampTaxRate < 0 || c.Broker.StampTaxRate >= 1 {
		return fmt.Errorf("broker.stamp_tax_rate must be in [0,1)")
	}
	if c.Broker.SlippageRate < 0 || c.Broker.SlippageRate >= 1 {
		return fmt.Errorf("broker.slippage_rate must be in [0,1)")
	}
	if c.Broker.LotSize < 0 {
		return fmt.Errorf("broker.lot_size must not be negative")
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite', got %q", c.Journal.Type)
	}
	return nil
}

// SaveToFile writes the configuration as YAML (or JSON for .json paths).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func getEnvFloat(key string) (float64, bool) {
	s := getEnv(key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
