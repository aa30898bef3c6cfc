// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"tokopos/internal/domain/auth"
	"tokopos/internal/domain/catalogs/branch"
	"tokopos/internal/domain/catalogs/product"
	"tokopos/internal/domain/ledger"
	"tokopos/internal/domain/opname"
	"tokopos/internal/domain/reports"
	"tokopos/internal/infrastructure/http/v1/handlers"
	"tokopos/internal/infrastructure/http/v1/middleware"
	"tokopos/internal/infrastructure/storage/postgres"
	"tokopos/pkg/logger"
)

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	JWTValidator middleware.JWTValidator
	AuthService  *auth.Service

	BranchService  *branch.Service
	ProductService *product.Service
	LedgerService  *ledger.Service
	OpnameService  *opname.Service
	ReportService  *reports.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	api := router.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.Auth(cfg.JWTValidator))

	branchHandler := handlers.NewBranchHandler(cfg.BranchService)
	branches := protected.Group("/branches")
	{
		branches.POST("", middleware.RequireAdmin(), branchHandler.Create)
		branches.GET("", branchHandler.List)
		branches.GET("/:id", branchHandler.Get)
	}

	productHandler := handlers.NewProductHandler(cfg.ProductService)
	products := protected.Group("/products")
	{
		products.POST("", productHandler.Create)
		products.GET("", productHandler.List)
		products.GET("/:id", productHandler.Get)
		products.PUT("/:id", productHandler.Update)
		products.DELETE("/:id", middleware.RequireAdmin(), productHandler.Delete)
		products.POST("/:id/adjust", productHandler.AdjustQuantity)
	}

	opnameHandler := handlers.NewOpnameHandler(cfg.OpnameService)
	sessions := protected.Group("/opname-sessions")
	{
		sessions.POST("", opnameHandler.Create)
		sessions.GET("", opnameHandler.List)
		sessions.GET("/:id", opnameHandler.Get)
		sessions.PUT("/:id/items", opnameHandler.AddItem)
		sessions.DELETE("/:id/items/:itemId", opnameHandler.RemoveItem)
		sessions.POST("/:id/submit", opnameHandler.Submit)
		sessions.POST("/:id/approve", middleware.RequireAdmin(), opnameHandler.Approve)
		sessions.POST("/:id/reject", middleware.RequireAdmin(), opnameHandler.Reject)
		sessions.POST("/:id/import", opnameHandler.Import)
		sessions.POST("/:id/import-csv", opnameHandler.ImportCSV)
		sessions.GET("/:id/export-csv", opnameHandler.ExportCSV)
	}

	stockHandler := handlers.NewStockHandler(cfg.LedgerService)
	stock := protected.Group("/stock")
	{
		stock.GET("/at", stockHandler.StockAt)
		stock.GET("/history", stockHandler.History)
		stock.GET("/by-reference/:kind/:refId", stockHandler.ByReference)
	}

	reportsHandler := handlers.NewReportsHandler(cfg.ReportService)
	reportGroup := protected.Group("/reports")
	{
		reportGroup.GET("/stock-movement", reportsHandler.StockMovement)
		reportGroup.GET("/stock-mutation", reportsHandler.StockMutation)
	}

	return router
}
