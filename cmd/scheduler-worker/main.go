package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"famledger/internal/config"
	applog "famledger/internal/log"
	"famledger/internal/services"
	"famledger/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentScheduler)
	applog.SetDefault(logger)

	logger.Info("Starting scheduler-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	poster := services.NewLedgerPoster(repo)
	scheduler := services.NewScheduler(repo, poster).
		WithLease(repo, cfg.SchedulerOwner, cfg.SchedulerLeaseTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Rule scheduler configured",
		"interval", cfg.SchedulerInterval,
		"lease_ttl", cfg.SchedulerLeaseTTL,
		"owner", cfg.SchedulerOwner,
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(cfg.SchedulerInterval)
	defer ticker.Stop()

	runPass := func(now time.Time) {
		result, err := scheduler.RunDueRules(ctx, now)
		if err != nil {
			if err == services.ErrLeaseHeld {
				logger.Info("Scheduler lease held elsewhere, skipping pass")
				return
			}
			logger.Error("Scheduler pass failed", "error", err)
			return
		}
		logger.Info("Scheduler pass complete",
			"succeeded", len(result.Succeeded),
			"paused", len(result.Paused),
			"failed", result.FailureCount())
		for _, f := range result.Failed {
			logger.Error("Rule processing failed", "rule_id", f.RuleID, "error", f.Err)
		}
	}

	// Run initial pass on startup
	logger.Info("Running initial scheduler pass...")
	runPass(time.Now())

	// Start periodic processing
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				runPass(now)
			}
		}
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down scheduler-worker...")
	cancel()

	time.Sleep(2 * time.Second)
	logger.Info("Scheduler-worker shutdown complete")
}
