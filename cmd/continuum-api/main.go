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

	"continuum-report/internal/api"
	"continuum-report/internal/api/handler"
	"continuum-report/internal/config"
	"continuum-report/internal/store"
	"continuum-report/pkg/router"

	"github.com/urfave/cli/v2"
)

// @title Continuum Report API
// @version 1.0
// @description Renders the consumer-privacy literature review charts and records each run.
// @BasePath /api/v1
func main() {
	app := &cli.App{
		Name:  "continuum-api",
		Usage: "serve the report API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file"},
			&cli.StringFlag{Name: "addr", Usage: "listen address (overrides server.addr)"},
			&cli.StringFlag{Name: "db", Usage: "SQLite run ledger", Value: "continuum.db"},
		},
		Action: serve,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}
	if c.IsSet("db") || cfg.DBPath == "" {
		cfg.DBPath = c.String("db")
	}

	// Init DB
	ledger, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer ledger.Close()

	h := handler.NewReportHandler(ledger, cfg, logger)
	r := router.New(logger)
	api.RegisterRoutes(r, h)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server started", "addr", cfg.Server.Addr, "charts_dir", cfg.ChartsDir())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	// Let a run in progress finish writing its charts.
	h.Wait()
	return nil
}
