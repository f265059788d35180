package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SentiPull/internal/di"
	"SentiPull/internal/domain/models"
	"SentiPull/pkg/config"
	"SentiPull/pkg/util"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "sentipull",
		Short:        "Daily news sentiment and insider scores for listed companies",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "config file path")

	load := func() (*config.Config, error) {
		cfg, err := config.LoadWithEnv(configPath)
		if err != nil {
			return nil, fmt.Errorf("config load failed: %w", err)
		}
		return cfg, nil
	}

	root.AddCommand(newServeCmd(load), newRunCmd(load), newInsiderCmd(load))
	return root
}

type loader func() (*config.Config, error)

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the job consumer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, cleanup, err := di.InitializeApp(cfg)
			if err != nil {
				return fmt.Errorf("app initialization failed: %w", err)
			}
			defer cleanup()

			return app.Run(ctx)
		},
	}
}

func newRunCmd(load loader) *cobra.Command {
	var (
		symbol, start, end string
		persist, publish   bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the sentiment pipeline once and print the report as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			from, to, err := parseRange(start, end, cfg.Pipeline.DefaultLookbackDays)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if cfg.Pipeline.RunTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Pipeline.RunTimeout)
				defer cancel()
			}

			runner, cleanup, err := di.InitializeRunner(cfg)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			defer cleanup()

			report, err := runner.Pipeline.Run(ctx, di.RunParams(cfg, symbol, from, to, persist, publish))
			if err != nil {
				return err
			}
			return printJSON(cmd, models.NewSentimentReportDTO(report))
		},
	}
	cmd.Flags().StringVar(&symbol, "symbol", "", "ticker symbol")
	cmd.Flags().StringVar(&start, "start", "", "first day (YYYY-MM-DD), defaults to the lookback window")
	cmd.Flags().StringVar(&end, "end", "", "last day (YYYY-MM-DD), defaults to today")
	cmd.Flags().BoolVar(&persist, "persist", true, "write series to the configured store")
	cmd.Flags().BoolVar(&publish, "publish", false, "publish the report to Kafka")
	_ = cmd.MarkFlagRequired("symbol")
	return cmd
}

func newInsiderCmd(load loader) *cobra.Command {
	var symbol, start, end string
	cmd := &cobra.Command{
		Use:   "insider",
		Short: "Score insider share changes once and print the result as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			from, to, err := parseRange(start, end, cfg.Insider.LookbackDays)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner, cleanup, err := di.InitializeRunner(cfg)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			defer cleanup()

			score, err := runner.Insider.Score(ctx, symbol, from, to)
			if err != nil {
				return err
			}
			return printJSON(cmd, models.NewInsiderScoreDTO(score))
		},
	}
	cmd.Flags().StringVar(&symbol, "symbol", "", "ticker symbol")
	cmd.Flags().StringVar(&start, "from", "", "first filing day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "to", "", "last filing day (YYYY-MM-DD), defaults to today")
	_ = cmd.MarkFlagRequired("symbol")
	return cmd
}

// parseRange defaults to the days-long window ending today.
func parseRange(start, end string, days int) (time.Time, time.Time, error) {
	to := util.TruncateDay(time.Now().UTC())
	if end != "" {
		t, err := util.ParseDate(end)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t
	}
	if days <= 0 {
		days = 1
	}
	from := to.AddDate(0, 0, -(days - 1))
	if start != "" {
		t, err := util.ParseDate(start)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = t
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("start %s is after end %s", from.Format(util.DateLayout), to.Format(util.DateLayout))
	}
	return from, to, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
