package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/expenseflow/internal/adapters/email"
	"github.com/SscSPs/expenseflow/internal/adapters/storage"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/SscSPs/expenseflow/internal/core/services"
	"github.com/SscSPs/expenseflow/internal/handlers"
	"github.com/SscSPs/expenseflow/internal/middleware"
	"github.com/SscSPs/expenseflow/internal/platform/config"
	"github.com/SscSPs/expenseflow/internal/repositories/database/pgsql"
	"github.com/SscSPs/expenseflow/internal/utils"
	"github.com/SscSPs/expenseflow/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	shutdownTimeout  = 10 * time.Second
	tokenPurgePeriod = time.Hour
)

// tokenPurger is implemented by the API token service.
type tokenPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// @title ExpenseFlow API
// @version 1.0
// @description Expense submission and approval workflow.

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool, logger)

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.Warn("Redis unavailable, rate limiting falls back to memory", slog.String("error", err.Error()))
			redisClient = nil
		}
	}
	defer database.CloseRedis(redisClient, logger)

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogHost, logger)
	defer posthogClient.Close()

	containerOpts, closeStorage, err := infrastructureOptions(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize infrastructure", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStorage()
	if posthogClient.IsInitialized() {
		containerOpts = append(containerOpts, services.WithTracker(posthogClient))
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	serviceContainer := services.NewServiceContainer(cfg, repos, containerOpts...)

	apiLimiter, err := newAPILimiter(cfg, redisClient)
	if err != nil {
		logger.Error("Failed to initialize rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.APITokenHeader, "X-Request-ID"},
			ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.RequestTimeout(cfg.RequestTimeout),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer,
		handlers.WithRateLimiter(apiLimiter),
		handlers.WithPosthog(posthogClient),
	)

	if purger, ok := serviceContainer.APIToken.(tokenPurger); ok {
		go purgeExpiredTokens(ctx, purger, logger)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
}

// runMigrations applies every pending "up" migration over a temporary
// database/sql connection.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationsPath, "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return upErr
	}
	if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
		return errors.Join(sourceErr, dbErr)
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// infrastructureOptions builds receipt storage and the mailer from cfg.
func infrastructureOptions(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]services.ContainerOption, func(), error) {
	closeStorage := func() {}
	var blobs portssvc.BlobStorage

	switch cfg.StorageProvider {
	case config.StorageProviderGCS:
		gcsStorage, err := storage.NewGCSStorage(ctx, cfg.GCSBucket, cfg.GCSCredentialJSON, cfg.GCSPublicBaseURL)
		if err != nil {
			return nil, closeStorage, err
		}
		closeStorage = func() {
			if err := gcsStorage.Close(); err != nil {
				logger.Warn("Failed to close GCS client", slog.String("error", err.Error()))
			}
		}
		blobs = gcsStorage
		logger.Info("Receipt storage: GCS", slog.String("bucket", cfg.GCSBucket))
	default:
		blobs = storage.NewMemoryStorage("")
		logger.Warn("Receipt storage: in-memory. Receipts are lost on restart.")
	}

	opts := []services.ContainerOption{services.WithBlobStorage(blobs)}
	if cfg.EmailEnabled {
		opts = append(opts, services.WithMailer(email.NewSMTPMailer(email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
		})))
		logger.Info("Email delivery enabled", slog.String("host", cfg.SMTPHost))
	}
	return opts, closeStorage, nil
}

// newAPILimiter shares counters through Redis when available.
func newAPILimiter(cfg *config.Config, redisClient *redis.Client) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		return nil, err
	}
	if redisClient == nil {
		return limiter.New(memory.NewStore(), rate), nil
	}
	store, err := limiterredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: "expenseflow_limiter"})
	if err != nil {
		return nil, err
	}
	return limiter.New(store, rate), nil
}

func purgeExpiredTokens(ctx context.Context, purger tokenPurger, logger *slog.Logger) {
	ticker := time.NewTicker(tokenPurgePeriod)
	defer ticker.Stop()
	for {
		if _, err := purger.PurgeExpired(ctx); err != nil {
			logger.Warn("Failed to purge expired API tokens", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
