package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"continuum-report/internal/config"
	"continuum-report/internal/pipeline"
	"continuum-report/internal/store"
	"continuum-report/pkg/utils"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func newLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// loadConfig reads --config over the defaults, then applies the flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.IsSet("base-dir") {
		cfg.BaseDir = c.String("base-dir")
	}
	if c.IsSet("src-dir") {
		cfg.SrcDir = c.String("src-dir")
	}
	if c.IsSet("graphs-dir") {
		cfg.GraphsDir = c.String("graphs-dir")
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("show") {
		cfg.Show = c.Bool("show")
	}
	for _, e := range c.StringSlice("export") {
		switch strings.ToLower(strings.TrimSpace(e)) {
		case "csv":
			cfg.Export.CSV = true
		case "xlsx":
			cfg.Export.XLSX = true
		default:
			return nil, fmt.Errorf("unknown export %q (want csv or xlsx)", e)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunAction renders every chart of the configured report.
func RunAction(c *cli.Context) error {
	logger := newLogger(c)
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	runID := uuid.New().String()

	var rec pipeline.Recorder
	if cfg.DBPath != "" {
		ledger, err := store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer ledger.Close()
		if err := ledger.SaveRun(runID, cfg); err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
		rec = ledger
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := pipeline.Run(ctx, runID, cfg, rec, logger)
	if err != nil {
		return fmt.Errorf("report failed: %w", err)
	}

	for _, ds := range report.Datasets {
		fmt.Printf("\n%s (%d rows)\n", ds.Name, ds.Rows)
		fmt.Printf("%-50s %8s %8s\n", "Category", "Total", "Perc")
		fmt.Println(strings.Repeat("-", 68))
		for _, st := range ds.Categories {
			fmt.Printf("%-50s %8.0f %8.2f\n", st.Category, st.Total, utils.Round(st.Perc, 2))
		}
	}
	fmt.Println()
	for _, a := range report.Artifacts {
		fmt.Printf("wrote %s\n", a.Path)
	}
	return nil
}

// HistoryAction lists recorded runs, newest first.
func HistoryAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("no run ledger configured (use --db or db_path)")
	}

	ledger, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer ledger.Close()

	runs, err := ledger.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}
	if limit := c.Int("limit"); limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	fmt.Printf("%-36s %-10s %-20s %-20s\n", "ID", "Status", "Created", "Updated")
	fmt.Println(strings.Repeat("-", 90))
	for _, r := range runs {
		fmt.Printf("%-36s %-10s %-20s %-20s\n",
			r.ID,
			r.Status,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.UpdatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	fmt.Printf("\nTotal: %d runs\n", len(runs))
	return nil
}
