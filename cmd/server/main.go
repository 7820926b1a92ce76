package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cashierapp "github.com/erp/settlement/internal/application/cashier"
	ledgerapp "github.com/erp/settlement/internal/application/ledger"
	settlementapp "github.com/erp/settlement/internal/application/settlement"
	"github.com/erp/settlement/internal/infrastructure/auth"
	"github.com/erp/settlement/internal/infrastructure/config"
	"github.com/erp/settlement/internal/infrastructure/logger"
	"github.com/erp/settlement/internal/infrastructure/notify"
	"github.com/erp/settlement/internal/infrastructure/persistence"
	"github.com/erp/settlement/internal/interfaces/http/handler"
	"github.com/erp/settlement/internal/interfaces/http/middleware"
	"github.com/erp/settlement/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting settlement engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Run schema migrations
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Transaction scopes and auxiliary sinks
	ledgerScope := persistence.NewGormLedgerTransactionScope(db.DB)
	settlementScope := persistence.NewGormSettlementTransactionScope(db.DB)
	cashierScope := persistence.NewGormCashierTransactionScope(db.DB)
	auditRecorder := persistence.NewGormAuditRecorder(db.DB)
	stockNotifier := notify.NewLogStockNotifier(log)

	// Application services
	accountService := ledgerapp.NewAccountService(ledgerScope, log)
	postingService := ledgerapp.NewPostingService(ledgerScope, log)
	settlementService := settlementapp.NewService(
		settlementScope,
		settlementapp.NewStatusAggregator(),
		auditRecorder,
		log,
	)
	sessionService := cashierapp.NewSessionService(cashierScope, auditRecorder, log)
	reversalService := cashierapp.NewReversalService(
		cashierScope,
		auditRecorder,
		stockNotifier,
		log,
		cfg.Cashier.ReversalWindow,
	)
	// JWT service for authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// Handlers
	ledgerHandler := handler.NewLedgerHandler(accountService, postingService)
	settlementHandler := handler.NewSettlementHandler(settlementService)
	cashierHandler := handler.NewCashierHandler(sessionService, reversalService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. CORS - Handle cross-origin requests
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Ledger domain (accounts, entries)
	ledgerRoutes := router.NewDomainGroup("ledger", "/ledger")
	ledgerRoutes.POST("/accounts", ledgerHandler.CreateAccount)
	ledgerRoutes.GET("/accounts/:id", ledgerHandler.GetAccount)
	ledgerRoutes.GET("/accounts/:id/entries", ledgerHandler.ListEntries)
	ledgerRoutes.POST("/accounts/:id/rebuild", ledgerHandler.RebuildSnapshots)
	ledgerRoutes.GET("/accounts/:id/verify", ledgerHandler.VerifyBalance)
	ledgerRoutes.POST("/entries", ledgerHandler.PostEntry)

	// Settlement domain (documents, installments)
	settlementRoutes := router.NewDomainGroup("settlements", "/settlements")
	settlementRoutes.POST("/installments/:id/settle", settlementHandler.SettleInstallment)
	settlementRoutes.GET("/documents/:id", settlementHandler.GetDocument)

	// Cashier domain (sessions, sales, movements)
	cashierRoutes := router.NewDomainGroup("cashier", "/cash-sessions")
	cashierRoutes.POST("", cashierHandler.OpenSession)
	cashierRoutes.GET("/:id", cashierHandler.GetSession)
	cashierRoutes.POST("/:id/sales", cashierHandler.RecordSale)
	cashierRoutes.POST("/:id/movements", cashierHandler.RecordMovement)
	cashierRoutes.POST("/:id/close", cashierHandler.CloseSession)
	cashierRoutes.POST("/:id/suspended-sales", cashierHandler.SuspendSale)
	cashierRoutes.DELETE("/:id/suspended-sales/:suspendedId", cashierHandler.ResumeSuspendedSale)

	// Sale reversal lives under /sales
	saleRoutes := router.NewDomainGroup("sales", "/sales")
	saleRoutes.POST("/:id/cancel", cashierHandler.CancelSale)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(ledgerRoutes)
	r.Register(settlementRoutes)
	r.Register(cashierRoutes)
	r.Register(saleRoutes)
	r.Register(systemRoutes)
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
