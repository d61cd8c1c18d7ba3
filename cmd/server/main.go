package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/practice/backend/internal/bootstrap"
	"github.com/practice/backend/internal/infrastructure/auth"
	"github.com/practice/backend/internal/infrastructure/cache"
	"github.com/practice/backend/internal/infrastructure/config"
	"github.com/practice/backend/internal/infrastructure/logger"
	"github.com/practice/backend/internal/infrastructure/persistence"
	"github.com/practice/backend/internal/infrastructure/telemetry"
	"github.com/practice/backend/internal/interfaces/http/handler"
	"github.com/practice/backend/internal/interfaces/http/router"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Telemetry comes first so the logger can tee into the OTel log bridge
	bootLog, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	providers, err := telemetry.Setup(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	var logOpts []logger.Option
	if providers.Enabled() {
		logOpts = append(logOpts, logger.WithTee(providers.LogCore(logger.ParseLevel(cfg.Log.Level))))
	}
	logOpts = append(logOpts, logger.WithFields(zap.String("service", cfg.Telemetry.ServiceName)))
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}, logOpts...)
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting practice backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
		zap.Bool("telemetry", providers.Enabled()),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := persistence.NewDatabase(cfg.Database, persistence.Options{
		Logger:        log,
		LogLevel:      logger.MapGormLogLevel(cfg.Log.Level),
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
		Tracing: telemetry.DBTracingConfig{
			Enabled:            cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
			LogFullSQL:         cfg.Telemetry.DBLogFullSQL,
			SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
			DBName:             cfg.Database.DBName,
		},
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	// Postgres schemas are owned by cmd/migrate
	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(context.Background()); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}

	lock, closeLock, err := cache.NewGenerationLock(context.Background(), cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to initialize generation lock", zap.Error(err))
	}
	defer func() {
		if err := closeLock(); err != nil {
			log.Error("Error closing generation lock", zap.Error(err))
		}
	}()

	opts := bootstrap.OptionsFromConfig(cfg)
	opts.Lock = lock
	opts.Logger = log

	var meter metric.Meter
	if providers.Enabled() {
		meter = providers.Meter("github.com/practice/backend")
		metrics, err := telemetry.NewEngineMetrics(meter)
		if err != nil {
			log.Fatal("Failed to create engine metrics", zap.Error(err))
		}
		opts.Metrics = metrics
	}
	services := bootstrap.NewServices(db.DB, opts)

	engine, err := router.NewEngine(router.EngineConfig{
		HTTP:        cfg.HTTP,
		JWT:         auth.NewJWTService(cfg.JWT),
		Logger:      log,
		ServiceName: cfg.Telemetry.ServiceName,
		Tracing:     providers.Enabled(),
		Meter:       meter,
	}, router.Handlers{
		Practice: handler.NewPracticeHandler(services.Generator, services.Statuses),
		Invoice:  handler.NewInvoiceHandler(services.Invoices),
		Ledger:   handler.NewLedgerHandler(services.Vouchers, services.TrialBalance),
		System:   handler.NewSystemHandler(db, version),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := providers.Shutdown(ctx); err != nil {
		log.Error("Telemetry shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
