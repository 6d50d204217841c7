package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	editionapp "github.com/chonibe/coa-service/internal/application/edition"
	syncapp "github.com/chonibe/coa-service/internal/application/sync"
	"github.com/chonibe/coa-service/internal/infrastructure/config"
	"github.com/chonibe/coa-service/internal/infrastructure/lock"
	"github.com/chonibe/coa-service/internal/infrastructure/logger"
	"github.com/chonibe/coa-service/internal/infrastructure/persistence"
	"github.com/chonibe/coa-service/internal/infrastructure/sources"
	"github.com/chonibe/coa-service/internal/interfaces/http/handler"
	"github.com/chonibe/coa-service/internal/interfaces/http/middleware"
	"github.com/chonibe/coa-service/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting COA service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	lineItemRepo := persistence.NewGormLineItemRepository(db.DB)
	eventRepo := persistence.NewGormEditionEventRepository(db.DB)
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)
	cursorRepo := persistence.NewGormSyncCursorRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Per-product resequence lock, Redis-backed with in-memory fallback
	locker, err := lock.NewProductLockerFactory(cfg.Redis, cfg.Sync, lock.WithLogger(log)).CreateLocker()
	if err != nil {
		log.Fatal("Failed to create product locker", zap.Error(err))
	}

	// Upstream adapters
	shopify, err := sources.NewShopifyAdapter(&sources.ShopifyConfig{
		ShopDomain:     cfg.Shopify.ShopDomain,
		AccessToken:    cfg.Shopify.AccessToken,
		APIVersion:     cfg.Shopify.APIVersion,
		PageSize:       cfg.Shopify.PageSize,
		TimeoutSeconds: cfg.Shopify.TimeoutSeconds,
		MaxRetries:     cfg.Shopify.MaxRetries,
	})
	if err != nil {
		log.Fatal("Failed to configure Shopify adapter", zap.Error(err))
	}
	warehouse, err := sources.NewWarehouseAdapter(&sources.WarehouseConfig{
		APIBaseURL:     cfg.Warehouse.APIBaseURL,
		APIKey:         cfg.Warehouse.APIKey,
		PageSize:       cfg.Warehouse.PageSize,
		TimeoutSeconds: cfg.Warehouse.TimeoutSeconds,
		MaxRetries:     cfg.Warehouse.MaxRetries,
	})
	if err != nil {
		log.Fatal("Failed to configure warehouse adapter", zap.Error(err))
	}

	// Application services
	sequencer := editionapp.NewSequencer(locker, txScope)
	verificationService := editionapp.NewVerificationService(orderRepo, lineItemRepo, eventRepo, shipmentRepo)
	revocationService := editionapp.NewRevocationService(lineItemRepo, sequencer)
	reconciler := syncapp.NewReconciler(orderRepo, lineItemRepo, shipmentRepo, log)
	syncService := syncapp.NewSyncService(shopify, warehouse, reconciler, cursorRepo, orderRepo, lineItemRepo, sequencer, log)

	// HTTP handlers
	editionHandler := handler.NewEditionHandler(verificationService, revocationService)
	syncHandler := handler.NewSyncHandler(syncService)
	systemHandler := handler.NewSystemHandler(db)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.AccessLog(log))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		MaxAge:       12 * time.Hour,
	}))

	// Probes live outside API versioning
	systemHandler.RegisterRoot(engine)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(editionHandler).
		Register(syncHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

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

// gormLogLevel maps the application log level onto GORM's logger
func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "warn":
		return gormlogger.Warn
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Silent
	}
}
