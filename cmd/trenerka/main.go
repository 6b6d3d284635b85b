package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"trenerka/internal/cli"
	apphttp "trenerka/internal/http"
	"trenerka/internal/journal/memory"
	applog "trenerka/internal/log"
	"trenerka/internal/metrics"
	"trenerka/internal/sheets/xlsx"
	"trenerka/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, os.Stdout)

	var recorder *metrics.Recorder
	if cfg.MetricsEnabled {
		recorder = metrics.New()
	}

	journal := services.NewJournalService(memory.New(),
		services.WithWorkbookWriter(xlsx.New()),
		services.WithMetrics(recorder),
		services.WithLogger(logger),
		services.WithWeekOrder(cli.WeekOrder(cfg)),
	)

	srv := apphttp.NewServer(":"+cfg.Port, journal, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Metrics:            recorder,
		Logger:             logger,
	})

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting trenerka server",
			applog.FieldOperation, applog.OpStartup,
			"port", cfg.Port,
			"metrics", cfg.MetricsEnabled,
			"week_order", cfg.ChartWeekOrder)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
