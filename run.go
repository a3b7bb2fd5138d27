package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/planets/config"
	"github.com/pthm-cable/planets/game"
	"github.com/pthm-cable/planets/telemetry"
)

var (
	flagSeed        int64
	flagMaxTicks    int
	flagOutputDir   string
	flagLogStats    bool
	flagStatsWindow float64
	flagMetricsAddr string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation headless",
	Long: `Run the simulation without graphics until --max-ticks is reached or the
process is interrupted.

Stats windows are logged with --log-stats and written as CSV with --output-dir.
With --metrics-addr the Prometheus endpoint is served at /metrics.`,
	RunE: runSim,
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = time-based)")
	cmd.Flags().IntVar(&flagMaxTicks, "max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	cmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "Output directory for CSV logs and config snapshot")
	cmd.Flags().BoolVar(&flagLogStats, "log-stats", false, "Output stats via slog")
	cmd.Flags().Float64Var(&flagStatsWindow, "stats-window", 0, "Stats window size in seconds (0 = use config)")
	cmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :2112")
}

// setupLogging installs the default slog logger: JSON for machines, charmbracelet/log for people.
func setupLogging() {
	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}

	if flagJSON {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
		return
	}

	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           charmlog.InfoLevel,
	})
	if flagDebug {
		handler.SetLevel(charmlog.DebugLevel)
	}
	slog.SetDefault(slog.New(handler))
}

func runSim(cmd *cobra.Command, _ []string) error {
	setupLogging()

	if err := config.Init(flagConfig); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := config.Cfg()

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	runID := uuid.NewString()

	var metrics *telemetry.Metrics
	if flagMetricsAddr != "" {
		metrics = telemetry.NewMetrics()
		go serveMetrics(flagMetricsAddr, metrics)
	}

	g, err := game.NewGame(cfg, game.Options{
		Seed:           seed,
		RunID:          runID,
		LogStats:       flagLogStats,
		StatsWindowSec: flagStatsWindow,
		OutputDir:      flagOutputDir,
		Metrics:        metrics,
	})
	if err != nil {
		return fmt.Errorf("create world: %w", err)
	}
	defer func() {
		if err := g.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}()

	slog.Info("starting headless simulation",
		"run_id", runID,
		"seed", seed,
		"max_ticks", flagMaxTicks,
		"output_dir", flagOutputDir,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	err = g.Run(ctx, flagMaxTicks)
	slog.Info("simulation stopped", "tick", g.Tick(), "elapsed", time.Since(start).Round(time.Millisecond))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// serveMetrics runs the Prometheus endpoint until the process exits.
func serveMetrics(addr string, m *telemetry.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	slog.Info("metrics available", "addr", addr, "path", "/metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("metrics server stopped", "error", err)
	}
}
