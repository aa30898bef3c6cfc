// Package main is the entry point for the tokopos API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tokopos/internal/domain/auth"
	"tokopos/internal/domain/catalogs/branch"
	"tokopos/internal/domain/catalogs/product"
	"tokopos/internal/domain/ledger"
	"tokopos/internal/domain/opname"
	"tokopos/internal/domain/reports"
	v1 "tokopos/internal/infrastructure/http/v1"
	notifyinfra "tokopos/internal/infrastructure/notify"
	"tokopos/internal/infrastructure/storage/postgres"
	"tokopos/internal/infrastructure/storage/postgres/catalog_repo"
	"tokopos/internal/infrastructure/storage/postgres/ledger_repo"
	"tokopos/internal/infrastructure/storage/postgres/opname_repo"
	"tokopos/internal/infrastructure/storage/postgres/report_repo"
	"tokopos/internal/infrastructure/storage/postgres/sales_repo"
	"tokopos/internal/infrastructure/storage/postgres/user_repo"
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

	ctx := context.Background()
	log.Info("starting tokopos server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txm := postgres.NewTxManager(pool)

	// --- Repositories ---
	productRepo := catalog_repo.NewProductRepo(txm)
	branchRepo := catalog_repo.NewBranchRepo(txm)
	ledgerRepo := ledger_repo.NewLedgerRepo(txm)
	sessionRepo := opname_repo.NewSessionRepo(txm)
	cacheRepo := report_repo.NewCacheRepo(txm)
	salesRepo := sales_repo.NewSalesRepo(txm)
	userRepo := user_repo.NewUserRepo(txm)

	auditStore, err := postgres.NewAuditStore(txm)
	if err != nil {
		log.Fatalw("failed to initialize audit store", "error", err)
	}

	// --- Services ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(mustEnv("JWT_SECRET")))
	authService := auth.NewService(userRepo, jwtService)

	notifier := notifyinfra.NewService(txm, branchRepo, userRepo)

	ledgerService := ledger.NewService(ledgerRepo, productRepo)
	branchService := branch.NewService(branchRepo)
	productService := product.NewService(productRepo, ledgerService, txm)
	opnameService := opname.NewService(
		sessionRepo, productRepo, branchRepo,
		ledgerService, txm, notifier, auditStore,
	)
	reportService := reports.NewService(
		ledgerRepo, ledgerService, productRepo, branchRepo, salesRepo, cacheRepo,
	)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:           pool,
		Logger:         log,
		JWTValidator:   jwtService,
		AuthService:    authService,
		BranchService:  branchService,
		ProductService: productService,
		LedgerService:  ledgerService,
		OpnameService:  opnameService,
		ReportService:  reportService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
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
