package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/riskibarqy/fantrax-team-manager/internal/app"
	"github.com/riskibarqy/fantrax-team-manager/internal/config"
	"github.com/riskibarqy/fantrax-team-manager/internal/observability"
	"github.com/riskibarqy/fantrax-team-manager/internal/platform/logging"
	"github.com/riskibarqy/fantrax-team-manager/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		logging.Default().Error("manager exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	logger := logging.NewJSON(level).With(
		"service", cfg.ServiceName,
		"env", cfg.AppEnv,
	)
	logging.SetDefault(logger)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("tracing shutdown failed", "error", err)
		}
	}()

	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := stopProfiler(); err != nil {
			logger.Error("profiler stop failed", "error", err)
		}
	}()

	pprofServer := observability.StartPprofServer(cfg, logger)
	defer func() {
		if err := observability.StopPprofServer(pprofServer, 5*time.Second); err != nil {
			logger.Error("pprof shutdown failed", "error", err)
		}
	}()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(context.Background()); err != nil {
			logger.Error("app shutdown failed", "error", err)
		}
	}()

	opsErr := make(chan error, 1)
	go func() {
		opsErr <- application.Ops.ListenAndServe(cfg.HTTPAddr)
	}()

	period := "auto"
	if cfg.PeriodID > 0 {
		period = strconv.Itoa(cfg.PeriodID)
	}
	logger.Info("manager started",
		"team_id", cfg.TeamID,
		"period_id", period,
		"cycle_interval", cfg.CycleInterval.String(),
		"storage_driver", cfg.StorageDriver,
	)

	runCycle := func() {
		report, err := application.Cycles.RunCycle(ctx, cfg.TeamID, cfg.PeriodID)
		switch {
		case err == nil:
			application.Ops.RecordReport(report)
		case errors.Is(err, usecase.ErrCycleInProgress):
			logger.Info("cycle skipped, previous run still active")
		case errors.Is(err, usecase.ErrPlatformAuth):
			logger.Error("cycle failed, platform session expired; refresh the cookie", "error", err)
		case errors.Is(err, context.Canceled):
		default:
			logger.Error("cycle failed", "error", err)
		}
	}

	runCycle()
	ticker := time.NewTicker(cfg.CycleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutdown signal received")
			return nil
		case err := <-opsErr:
			if err != nil {
				return err
			}
			return nil
		case <-ticker.C:
			runCycle()
		}
	}
}
