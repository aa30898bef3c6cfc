// Package main is the entry point for the tokopos background worker. Its
// single job is the nightly regeneration of cached stock reports for every
// active branch.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"tokopos/internal/domain/ledger"
	"tokopos/internal/domain/reports"
	"tokopos/internal/infrastructure/storage/postgres"
	"tokopos/internal/infrastructure/storage/postgres/catalog_repo"
	"tokopos/internal/infrastructure/storage/postgres/ledger_repo"
	"tokopos/internal/infrastructure/storage/postgres/report_repo"
	"tokopos/internal/infrastructure/storage/postgres/sales_repo"
	"tokopos/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting tokopos report worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)

	productRepo := catalog_repo.NewProductRepo(txm)
	branchRepo := catalog_repo.NewBranchRepo(txm)
	ledgerRepo := ledger_repo.NewLedgerRepo(txm)
	cacheRepo := report_repo.NewCacheRepo(txm)
	salesRepo := sales_repo.NewSalesRepo(txm)

	ledgerService := ledger.NewService(ledgerRepo, productRepo)
	reportService := reports.NewService(
		ledgerRepo, ledgerService, productRepo, branchRepo, salesRepo, cacheRepo,
	)

	runHour := getEnvInt("REPORT_BATCH_HOUR", 2) // 02:00 UTC
	worker := &batchWorker{
		reports: reportService,
		log:     log,
		runHour: runHour,
		runNow:  getEnv("REPORT_BATCH_RUN_NOW", "false") == "true",
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// batchWorker runs the report regeneration once per day at runHour UTC.
type batchWorker struct {
	reports *reports.Service
	log     *logger.Logger
	runHour int
	runNow  bool
}

func (w *batchWorker) Run(ctx context.Context) {
	if w.runNow {
		w.regenerate(ctx)
	}

	for {
		next := w.nextRun(time.Now().UTC())
		w.log.Infow("next report regeneration scheduled", "at", next)

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
			w.regenerate(ctx)
		}
	}
}

func (w *batchWorker) regenerate(ctx context.Context) {
	start := time.Now()
	w.log.Info("report regeneration starting")

	if err := w.reports.RegenerateAll(ctx, start.UTC()); err != nil {
		w.log.Errorw("report regeneration failed", "error", err)
		return
	}

	w.log.Infow("report regeneration completed", "duration", time.Since(start).String())
}

func (w *batchWorker) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), w.runHour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
