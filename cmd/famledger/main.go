package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"famledger/internal/amqp"
	"famledger/internal/config"
	"famledger/internal/export"
	apphttp "famledger/internal/http"
	applog "famledger/internal/log"
	"famledger/internal/services"
	"famledger/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting famledger server")

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

	// AMQP carries budget alerts to the alert-worker; without a broker the
	// dispatcher only logs decisions.
	var notifier services.Notifier
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, alerts will only be logged", "error", err)
		} else {
			defer amqpClient.Close()
			notifier = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	var exporter apphttp.SpendReportExporter
	if cfg.ExportEnabled() {
		sheetsExporter, err := export.NewSheetsExporter(context.Background(), export.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsFile: cfg.GoogleCredentialsFile,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize spreadsheet exporter", "error", err)
			os.Exit(1)
		}
		exporter = sheetsExporter
		logger.Info("Spreadsheet exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	poster := services.NewLedgerPoster(repo)
	scheduler := services.NewScheduler(repo, poster).
		WithLease(repo, cfg.SchedulerOwner+"-api", cfg.SchedulerLeaseTTL)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Rules:          repo,
		Budgets:        repo,
		Ledger:         repo,
		Aggregator:     services.NewBudgetAggregator(repo, repo),
		Dispatcher:     services.NewAlertDispatcher(notifier),
		Scheduler:      scheduler,
		Exporter:       exporter,
		SpendCacheSize: cfg.SpendCacheSize,
		SpendCacheTTL:  cfg.SpendCacheTTL,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
