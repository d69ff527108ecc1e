package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/welldanyogia/servicedesk-audit/internal/auth"
	"github.com/welldanyogia/servicedesk-audit/internal/config"
	"github.com/welldanyogia/servicedesk-audit/internal/health"
	"github.com/welldanyogia/servicedesk-audit/internal/logger"
	"github.com/welldanyogia/servicedesk-audit/internal/metrics"
	appmw "github.com/welldanyogia/servicedesk-audit/internal/middleware"
	"github.com/welldanyogia/servicedesk-audit/internal/report"
	"github.com/welldanyogia/servicedesk-audit/internal/repository"
	"github.com/welldanyogia/servicedesk-audit/internal/sanitizer"
	"github.com/welldanyogia/servicedesk-audit/internal/storage"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg := config.Load()

	appLogger := logger.New(cfg.Log)
	slog.SetDefault(appLogger)

	if err := cfg.Validate(); err != nil {
		appLogger.Error("Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	loc, _ := cfg.Report.Location()

	appLogger.Info("Starting report server",
		slog.String("version", version),
		slog.String("log_level", cfg.Log.Level),
		slog.String("timezone", cfg.Report.TimeZone),
	)

	// Setup database connections
	dbPool, err := setupDatabase(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()

	db, err := sqlx.Connect("pgx", cfg.Database.DSN())
	if err != nil {
		appLogger.Error("Failed to open query connection", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxConns)
	db.SetMaxIdleConns(cfg.Database.MinConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	dbCollector := metrics.NewDBStatsCollector(dbPool, db.DB, appLogger)
	dbCollector.Start(15 * time.Second)
	defer dbCollector.Stop()

	// Initialize repositories
	userRepo := repository.NewUserRepository(dbPool)
	activityRepo := repository.NewActivityRepo(db)

	checks := map[string]health.Pinger{
		"database": dbPool,
		"queries":  health.PingerFunc(db.PingContext),
	}

	serviceCfg := report.ServiceConfig{
		Activity:  activityRepo,
		Users:     userRepo,
		Location:  loc,
		Sanitizer: sanitizer.NewTextSanitizer(),
		Logger:    appLogger,
	}

	// Archive storage is optional
	var retentionJob *storage.RetentionJob
	if cfg.Storage.Enabled() {
		storageService, err := storage.NewStorageService(cfg.Storage)
		if err != nil {
			appLogger.Warn("Failed to initialize archive storage, archiving disabled",
				slog.String("error", err.Error()),
			)
		} else {
			serviceCfg.Archive = storageService
			checks["storage"] = storageService
			appLogger.Info("Archive storage initialized", slog.String("bucket", cfg.Storage.Bucket))

			retentionJob = storage.NewRetentionJob(storageService, storage.RetentionConfig{
				Retention: cfg.Storage.ArchiveRetention,
			}, appLogger)
			if err := retentionJob.Start(); err != nil {
				appLogger.Warn("Failed to start archive retention job", slog.String("error", err.Error()))
			}
		}
	}

	reportService := report.NewService(serviceCfg)
	reportHandler := report.NewHandler(reportService, appLogger)

	tokenService := auth.NewTokenService(auth.TokenServiceConfig{
		AccessSecret:      cfg.JWT.AccessSecret,
		AccessTokenExpiry: cfg.JWT.AccessTokenExpiry,
		Issuer:            cfg.JWT.Issuer,
	})

	// Initialize middleware
	authMiddleware := appmw.NewAuthMiddleware(tokenService)
	rateLimiter := appmw.NewRateLimiter(cfg.Report.RateLimit, cfg.Report.RateWindow)
	stopCleanup := make(chan struct{})
	go rateLimiter.Run(stopCleanup)

	healthHandler := health.NewHandler(health.Config{
		Checks:   checks,
		Critical: []string{"database", "queries"},
		Version:  version,
	})

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appmw.StructuredLogger(appLogger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Operational endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/health/ready", healthHandler.Readiness)
	r.Get("/health/live", healthHandler.Liveness)
	r.Handle("/metrics", metrics.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		report.RegisterRoutes(r, reportHandler,
			authMiddleware.Authenticate,
			authMiddleware.RequireRole(cfg.Report.AllowedRoles...),
			rateLimiter.PerUser,
		)
	})

	// Create server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("HTTP server listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthHandler.SetReady(false)
	close(stopCleanup)
	if retentionJob != nil {
		retentionJob.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", slog.String("error", err.Error()))
	}

	appLogger.Info("Server exited")
}

// setupDatabase creates and configures the database connection pool
func setupDatabase(cfg *config.Config, log *slog.Logger) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Configure pool
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute
	poolConfig.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Connected to database",
		slog.String("database", cfg.Database.DBName),
		slog.String("host", cfg.Database.Host),
	)
	return pool, nil
}
