package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sjperalta/fintera-coop/docs" // Swagger docs
	"github.com/sjperalta/fintera-coop/internal/config"
	"github.com/sjperalta/fintera-coop/internal/database"
	"github.com/sjperalta/fintera-coop/internal/handlers"
	"github.com/sjperalta/fintera-coop/internal/jobs"
	"github.com/sjperalta/fintera-coop/internal/lock"
	"github.com/sjperalta/fintera-coop/internal/middleware"
	"github.com/sjperalta/fintera-coop/internal/repository"
	"github.com/sjperalta/fintera-coop/internal/services"
	"github.com/sjperalta/fintera-coop/internal/storage"
	"github.com/sjperalta/fintera-coop/pkg/logger"
)

// @title Fintera Coop API
// @version 1.0
// @description Recurring contribution plans, schedules and settlement for financial cooperatives

// @contact.name API Support
// @contact.email support@cooperativa.app

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Environment)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", logger.Err(err))
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if !cfg.SMTP.Enabled() {
		logger.Warn("email disabled: SMTP_HOST not set")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		logger.Error("Failed to connect to database", logger.Err(err))
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.MigrateUp(db); err != nil {
		logger.Error("Failed to run migrations", logger.Err(err))
		os.Exit(1)
	}

	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", logger.Err(err))
		os.Exit(1)
	}

	locker := newLocker(cfg)

	repos := repository.NewRepositories(db)

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	svcs, err := services.NewServices(repos, worker, store, locker, cfg, db)
	if err != nil {
		logger.Error("Failed to initialize services", logger.Err(err))
		os.Exit(1)
	}

	worker.ScheduleEveryImmediate("extend_schedules", cfg.ExtendSchedulesEvery, svcs.Job.ExtendSchedulesJob)

	h := handlers.NewHandlers(svcs, store)
	router := setupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", logger.Err(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logger.Err(err))
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if closer, ok := locker.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

// newLocker connects to Redis when configured. Without it, bulk runs are
// only serialized within this process's database transactions.
func newLocker(cfg *config.Config) lock.Locker {
	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set, bulk settlement runs are not locked across instances")
		return lock.NoopLocker{}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	locker, err := lock.NewRedisLockerFromURL(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("Redis unavailable, continuing without bulk run locks", logger.Err(err))
		return lock.NoopLocker{}
	}
	logger.Info("Connected to redis")
	return locker
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	h.Register(router.Group("/api/v1"), cfg.JWTSecret)

	return router
}
