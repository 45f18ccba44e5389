package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appbilling "github.com/rentroll/backend/internal/application/billing"
	appinvoicing "github.com/rentroll/backend/internal/application/invoicing"
	appmetering "github.com/rentroll/backend/internal/application/metering"
	appproperty "github.com/rentroll/backend/internal/application/property"
	"github.com/rentroll/backend/internal/infrastructure/cache"
	"github.com/rentroll/backend/internal/infrastructure/config"
	"github.com/rentroll/backend/internal/infrastructure/event"
	"github.com/rentroll/backend/internal/infrastructure/logger"
	"github.com/rentroll/backend/internal/infrastructure/persistence"
	"github.com/rentroll/backend/internal/infrastructure/render"
	"github.com/rentroll/backend/internal/infrastructure/telemetry"
	"github.com/rentroll/backend/internal/interfaces/http/handler"
	"github.com/rentroll/backend/internal/interfaces/http/middleware"
	"github.com/rentroll/backend/internal/interfaces/http/router"
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
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Rent Roll Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing (no-op provider when disabled)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Database query tracing (no-op when disabled)
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Initialize repositories
	propertyRepo := persistence.NewPropertyRepository(db.DB)
	lotRepo := persistence.NewLotRepository(db.DB)
	meterRepo := persistence.NewWaterMeterRepository(db.DB)
	tenantRepo := persistence.NewTenantRepository(db.DB)
	accountRepo := persistence.NewAccountRepository(db.DB)
	settingRepo := persistence.NewInvoiceSettingRepository(db.DB)
	receivableRepo := persistence.NewReceivableRepository(db.DB)
	paymentRepo := persistence.NewPaymentRepository(db.DB)
	allocationRepo := persistence.NewAllocationRepository(db.DB)
	invoiceRepo := persistence.NewInvoiceRepository(db.DB)
	readingRepo := persistence.NewMeterReadingRepository(db.DB)
	uow := persistence.NewGormUnitOfWork(db.DB)

	// Confirmation store backs the duplicate-guard override tokens.
	// Redis keeps tokens shared across instances; outside production
	// the factory may fall back to process memory.
	storeFactory := cache.NewConfirmationStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	confirmations, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create confirmation store", zap.Error(err))
	}

	// Domain event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Invoice document renderer (headless Chrome, optional)
	renderer, err := render.NewRenderer(cfg.Render, log)
	if err != nil {
		log.Fatal("Failed to initialize invoice renderer", zap.Error(err))
	}

	// Initialize application services
	settingsService := appbilling.NewSettingsService(settingRepo, confirmations, log)
	paymentService := appbilling.NewPaymentService(uow, paymentRepo, accountRepo, confirmations, eventBus, log)
	receivableService := appbilling.NewReceivableService(receivableRepo, accountRepo, confirmations, log)
	generationService := appbilling.NewGenerationService(
		accountRepo,
		lotRepo,
		meterRepo,
		readingRepo,
		receivableRepo,
		paymentRepo,
		allocationRepo,
		settingRepo,
		log,
	)
	allocationService := appbilling.NewAllocationService(uow, accountRepo, eventBus, log)
	invoiceService := appinvoicing.NewInvoiceService(
		invoiceRepo,
		receivableRepo,
		paymentRepo,
		accountRepo,
		lotRepo,
		meterRepo,
		tenantRepo,
		settingRepo,
		renderer,
		log,
	)
	importService := appmetering.NewImportService(meterRepo, readingRepo, log)
	accountService := appproperty.NewAccountService(accountRepo, lotRepo, tenantRepo, log)
	registryService := appproperty.NewRegistryService(propertyRepo, lotRepo, meterRepo, tenantRepo, log)

	// Initialize handlers
	settingsHandler := handler.NewSettingsHandler(settingsService)
	paymentHandler := handler.NewPaymentHandler(paymentService, cfg.Billing.RecentPayments)
	chargeHandler := handler.NewChargeHandler(receivableService)
	billingRunHandler := handler.NewBillingRunHandler(generationService)
	allocationHandler := handler.NewAllocationHandler(allocationService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	meteringHandler := handler.NewMeteringHandler(importService)
	accountHandler := handler.NewAccountHandler(accountService)
	registryHandler := handler.NewRegistryHandler(registryService)

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
	// 3. Tracing - OpenTelemetry spans (no-op when disabled)
	// 4. Logger - Log requests
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit covers meter report uploads
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Billing domain: rate settings, the payment ledger, one-off
	// charges, statement runs and pooled allocation
	billingRoutes := router.NewDomainGroup("billing", "/billing")
	billingRoutes.POST("/settings", settingsHandler.Create)
	billingRoutes.GET("/settings", settingsHandler.List)
	billingRoutes.GET("/settings/effective", settingsHandler.Effective)
	billingRoutes.GET("/settings/:id", settingsHandler.GetByID)
	billingRoutes.POST("/settings/raise-rates", settingsHandler.RaiseRates)
	billingRoutes.POST("/payments", paymentHandler.Record)
	billingRoutes.GET("/payments", paymentHandler.List)
	billingRoutes.GET("/payments/recent", paymentHandler.Recent)
	billingRoutes.DELETE("/payments/:id", paymentHandler.Delete)
	billingRoutes.GET("/accounts/:id/balance", paymentHandler.Balance)
	billingRoutes.POST("/charges", chargeHandler.Create)
	billingRoutes.GET("/charges", chargeHandler.List)
	billingRoutes.POST("/runs/preview", billingRunHandler.Preview)
	billingRoutes.POST("/runs", billingRunHandler.Run)
	billingRoutes.POST("/allocations/preview", allocationHandler.Preview)
	billingRoutes.POST("/allocations", allocationHandler.Run)
	billingRoutes.POST("/allocations/run-all", allocationHandler.RunAll)
	r.Register(billingRoutes)

	// Invoicing domain: readiness checks, assembly and delivery
	invoiceRoutes := router.NewDomainGroup("invoicing", "/invoices")
	invoiceRoutes.GET("/readiness", invoiceHandler.Readiness)
	invoiceRoutes.POST("/generate", invoiceHandler.Generate)
	invoiceRoutes.GET("", invoiceHandler.List)
	invoiceRoutes.GET("/:id", invoiceHandler.GetByID)
	invoiceRoutes.POST("/:id/delivered", invoiceHandler.MarkDelivered)
	r.Register(invoiceRoutes)

	// Metering domain: CSV imports and individual readings
	meteringRoutes := router.NewDomainGroup("metering", "/metering")
	meteringRoutes.POST("/imports", meteringHandler.Import)
	meteringRoutes.POST("/readings", meteringHandler.Record)
	meteringRoutes.GET("/readings", meteringHandler.List)
	meteringRoutes.GET("/meters/:id/latest", meteringHandler.Latest)
	r.Register(meteringRoutes)

	// Registry domain: properties, lots, meters, tenants and accounts
	registryRoutes := router.NewDomainGroup("registry", "/registry")
	registryRoutes.POST("/properties", registryHandler.CreateProperty)
	registryRoutes.GET("/properties", registryHandler.ListProperties)
	registryRoutes.POST("/lots", registryHandler.CreateLot)
	registryRoutes.GET("/lots", registryHandler.ListLots)
	registryRoutes.PUT("/lots/:id/storage", registryHandler.SetLotStorage)
	registryRoutes.POST("/meters", registryHandler.CreateMeter)
	registryRoutes.GET("/meters", registryHandler.ListMeters)
	registryRoutes.PUT("/meters/:id/lot", registryHandler.RelinkMeter)
	registryRoutes.POST("/tenants", registryHandler.CreateTenant)
	registryRoutes.GET("/tenants", registryHandler.ListTenants)
	registryRoutes.PUT("/tenants/:id/account", registryHandler.LinkTenant)
	registryRoutes.POST("/accounts", accountHandler.Open)
	registryRoutes.GET("/accounts", accountHandler.List)
	registryRoutes.GET("/accounts/:id", accountHandler.GetByID)
	registryRoutes.POST("/accounts/:id/close", accountHandler.Close)
	registryRoutes.PUT("/accounts/:id/rent-override", accountHandler.SetRentOverride)
	registryRoutes.PUT("/accounts/:id/bill-preference", accountHandler.SetBillPreference)
	r.Register(registryRoutes)

	// Setup routes
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
