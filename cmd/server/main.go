package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/cache"
	"github.com/SAP-F-2025/classroom-service/internal/config"
	"github.com/SAP-F-2025/classroom-service/internal/database"
	"github.com/SAP-F-2025/classroom-service/internal/handlers"
	"github.com/SAP-F-2025/classroom-service/internal/metrics"
	"github.com/SAP-F-2025/classroom-service/internal/realtime"
	"github.com/SAP-F-2025/classroom-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/SAP-F-2025/classroom-service/internal/session"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
	"github.com/SAP-F-2025/classroom-service/pkg"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment, os.Stdout)
	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger utils.Logger) error {
	slogger := logger.Slog()

	// ===== STORAGE =====

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.RunMigrations {
		if pkg.IsSQLite(cfg.DatabaseURL) {
			err = database.AutoMigrate(db)
		} else {
			err = database.MigratePostgres(cfg.DatabaseURL, slogger)
		}
		if err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		return err
	}

	var cacheService cache.CacheService
	var sessionBackend session.Backend
	if redisClient != nil {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, slogger)
		sessionBackend = session.NewRedisBackend(redisClient)
	} else {
		logger.Warn("REDIS_URL not set, sessions and cache are kept in process memory")
		cacheService = cache.NewMemoryCache()
		sessionBackend = session.NewMemoryBackend()
	}

	// ===== MESSAGING =====

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", "error", err)
		}
	}()

	broker := realtime.NewBroker(slogger)
	defer broker.Close()

	// ===== SERVICES & HTTP =====

	appMetrics := metrics.New()
	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:      postgres.NewRepository(db),
		Cache:     cacheService,
		Publisher: publisher,
		Notifier:  broker,
		SSO:       services.NewCasdoorProvider(cfg.Casdoor),
		Metrics:   appMetrics,
		Logger:    slogger,
		Validator: validator.New(),
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.ContextLogger(logger), utils.LoggerMiddleware(logger))

	sessions := session.NewManager(session.NewStore(sessionBackend, cfg.SessionTTL, cfg.IsProduction(), []byte(cfg.SessionSecret)))
	handlers.NewHandlerManager(serviceManager, sessions, realtime.NewChatStreamer(broker, slogger), appMetrics, logger).
		SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting classroom service", "addr", server.Addr, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
