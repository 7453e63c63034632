package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ewm/api/config"
	"ewm/api/database"
	"ewm/api/handlers"
	"ewm/api/middleware"
	"ewm/api/services"
	"ewm/api/statclient"
	"ewm/api/store"
	"ewm/api/utils"
)

func main() {
	cfg := config.LoadMain()

	logger, err := utils.NewLogger(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to initialize PostgreSQL database", zap.Error(err))
	}
	defer dbClient.Close()

	if err := store.MigrateMain(ctx, dbClient.DB); err != nil {
		logger.Fatal("Failed to migrate schema", zap.Error(err))
	}

	// --- Stores ---
	userStore := store.NewUserStore(dbClient.DB)
	categoryStore := store.NewCategoryStore(dbClient.DB)
	eventStore := store.NewEventStore(dbClient.DB)
	requestStore := store.NewRequestStore(dbClient.DB)
	commentStore := store.NewCommentStore(dbClient.DB)
	compilationStore := store.NewCompilationStore(dbClient.DB)

	// --- Services ---
	stats := statclient.New(cfg.StatsServerURL, cfg.StatsTimeout, logger.Named("statclient"))
	metrics := services.NewEventMetrics(requestStore, stats, logger)
	eventService := services.NewEventService(eventStore, categoryStore, userStore, metrics, stats, cfg.AppName, logger)

	h := handlers.MainHandlers{
		Auth:         handlers.NewAuthHandlers(cfg.AdminEmail, cfg.AdminPasswordHash, []byte(cfg.JWTSecret), logger),
		Users:        handlers.NewUserHandlers(services.NewUserService(userStore, logger), logger),
		Categories:   handlers.NewCategoryHandlers(services.NewCategoryService(categoryStore, eventStore, logger), logger),
		Events:       handlers.NewEventHandlers(eventService, logger),
		Requests:     handlers.NewRequestHandlers(services.NewRequestService(requestStore, eventStore, userStore, logger), logger),
		Comments:     handlers.NewCommentHandlers(services.NewCommentService(commentStore, eventStore, userStore, logger), logger),
		Compilations: handlers.NewCompilationHandlers(services.NewCompilationService(compilationStore, eventStore, metrics, logger), logger),
	}

	var limiter *middleware.LimiterStore
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewLimiterStore(cfg.RateLimitRPS, cfg.RateLimitBurst, 15*time.Minute)
		limiter.StartJanitor(ctx, 2*time.Minute)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handlers.NewMainRouter(cfg, h, limiter, logger),
	}

	go func() {
		logger.Info("main service starting", zap.String("port", cfg.Port), zap.String("stats", cfg.StatsServerURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("main service failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Server exiting.")
}
