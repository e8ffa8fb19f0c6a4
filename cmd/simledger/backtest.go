package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yanun0323/logs"

	"github.com/tradeforge/simledger/backtest"
	"github.com/tradeforge/simledger/broker"
	"github.com/tradeforge/simledger/config"
	"github.com/tradeforge/simledger/internal/id"
	"github.com/tradeforge/simledger/journal"
	"github.com/tradeforge/simledger/market"
	"github.com/tradeforge/simledger/risk"
	"github.com/tradeforge/simledger/strategies"
)

func newBacktestCmd() *cobra.Command {
	var (
		configPath string
		barsPath   string
		stratName  string
		symbol     string
	)

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay a bar CSV against a strategy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				var err error
				cfg, err = config.LoadFromFile(configPath)
				if err != nil {
					return err
				}
			} else {
				cfg.ApplyEnv()
			}
			if stratName != "" {
				cfg.Strategy.Name = stratName
			}
			if symbol != "" {
				cfg.Symbol = symbol
			}

			if barsPath == "" {
				return fmt.Errorf("--bars is required")
			}
			feed, err := market.NewCSVFeed(barsPath)
			if err != nil {
				return fmt.Errorf("open bars: %w", err)
			}
			bars, err := market.ReadAll(feed)
			if err != nil {
				return fmt.Errorf("read bars: %w", err)
			}
			logs.Infof("loaded %d bars from %s", len(bars), barsPath)

			return runBacktest(cmd.Context(), cfg, bars)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML/JSON config file")
	cmd.Flags().StringVar(&barsPath, "bars", "", "path to bar CSV (date,open,high,low,close,volume)")
	cmd.Flags().StringVarP(&stratName, "strategy", "s", "", "strategy name override (noop, buy-hold, sma-cross)")
	cmd.Flags().StringVar(&symbol, "symbol", "", "symbol override")

	return cmd
}

func runBacktest(ctx context.Context, cfg *config.Config, bars market.Bars) error {
	if ctx == nil {
		ctx = context.Background()
	}

	strat, err := strategies.ByName(cfg.Strategy.Name, strategies.Params{
		FastPeriod: cfg.Strategy.FastPeriod,
		SlowPeriod: cfg.Strategy.SlowPeriod,
		Ratio:      cfg.Strategy.Ratio,
	})
	if err != nil {
		return err
	}

	var riskPolicy *risk.Policy
	if cfg.Risk.Enabled {
		riskPolicy = &risk.Policy{
			MaxPositionPct:  cfg.Risk.MaxPositionPct,
			MaxOrderPct:     cfg.Risk.MaxOrderPct,
			MaxTradesPerDay: cfg.Risk.MaxTradesPerDay,
			MaxDailyLossPct: cfg.Risk.MaxDailyLossPct,
			MaxDrawdownPct:  cfg.Risk.MaxDrawdownPct,
		}
	}

	engine := backtest.New(backtest.Config{
		Symbol:         cfg.Symbol,
		InitialCapital: cfg.InitialCapital,
		Policy:         cfg.Broker.Policy,
		Broker: broker.Config{
			CommissionRate: cfg.Broker.CommissionRate,
			MinCommission:  cfg.Broker.MinCommission,
			StampTaxRate:   cfg.Broker.StampTaxRate,
			SlippageRate:   cfg.Broker.SlippageRate,
			LotSize:        cfg.Broker.LotSize,
			BandTolerance:  cfg.Broker.BandTolerance,
		},
		Risk:         riskPolicy,
		RiskFreeRate: cfg.Metrics.RiskFreeRate,
	}, strat)

	jnl, err := openJournal(cfg)
	if err != nil {
		return err
	}
	if jnl != nil {
		engine.Journal = jnl
		defer jnl.Close()
	}

	report, err := engine.Run(ctx, bars)
	if err != nil {
		return err
	}

	printReport(report)
	return nil
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "", "none":
		return nil, nil
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath, id.NewRunID())
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
	}
}

func printReport(r *backtest.Report) {
	m := r.Metrics

	fmt.Printf("\nRun %s  %s on %s  (%s .. %s, %d trading days)\n\n",
		r.RunID, r.Strategy, r.Symbol,
		r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"), m.TradingDays)

	fmt.Printf("  Initial capital     %14.2f\n", m.InitialCapital)
	fmt.Printf("  Final equity        %14.2f\n", m.FinalEquity)
	fmt.Printf("  Total return        %13.2f%%\n", 100*m.TotalReturn)
	fmt.Printf("  Annualized return   %13.2f%%\n", 100*m.AnnualizedReturn)
	fmt.Printf("  Annualized vol      %13.2f%%\n", 100*m.AnnualizedVolatility)
	fmt.Printf("  Sharpe ratio        %14.2f\n", m.SharpeRatio)
	fmt.Printf("  Sortino ratio       %14.2f\n", m.SortinoRatio)
	fmt.Printf("  Max drawdown        %13.2f%%\n", 100*m.MaxDrawdown)
	fmt.Printf("  Calmar ratio        %14.2f\n", m.CalmarRatio)
	fmt.Printf("  Trades (fills)      %14d\n", m.TotalTrades)
	fmt.Printf("  Closing trades      %14d\n", m.ClosingTrades)
	fmt.Printf("  Win rate            %13.2f%%\n", 100*m.WinRate)
	fmt.Printf("  Profit factor       %14.2f\n", m.ProfitFactor)

	if len(r.Positions) > 0 {
		fmt.Println("\n  Open positions:")
		for _, p := range r.Positions {
			fmt.Printf("    %-10s %8d @ %10.4f (mark %10.4f)\n", p.Symbol, p.Quantity, p.AvgCost, p.MarkPrice)
		}
	}
	fmt.Println()
}
