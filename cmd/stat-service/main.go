package main

import (
	"context"
	"errors"
	"fmt"
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
	"ewm/api/store"
	"ewm/api/utils"
)

func main() {
	cfg := config.LoadStats()

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

	hits, closeStore, err := openHitStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize hit store", zap.String("backend", cfg.Backend), zap.Error(err))
	}
	defer closeStore()

	statsHandlers := handlers.NewStatsHandlers(services.NewStatsService(hits, logger), logger)

	var limiter *middleware.LimiterStore
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewLimiterStore(cfg.RateLimitRPS, cfg.RateLimitBurst, 15*time.Minute)
		limiter.StartJanitor(ctx, 2*time.Minute)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handlers.NewStatsRouter(cfg, statsHandlers, limiter, logger),
	}

	go func() {
		logger.Info("stats service starting", zap.String("port", cfg.Port), zap.String("backend", cfg.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("stats service failed to start", zap.Error(err))
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

func openHitStore(ctx context.Context, cfg *config.Stats, logger *zap.Logger) (services.HitStore, func(), error) {
	switch cfg.Backend {
	case config.BackendClickHouse:
		ch, err := database.NewClickHouseDB(ctx, cfg.ClickHouse, logger)
		if err != nil {
			return nil, nil, err
		}
		s, err := store.NewClickHouseHitStore(ctx, ch, logger)
		if err != nil {
			ch.Close()
			return nil, nil, err
		}
		return s, ch.Close, nil

	case config.BackendPostgres, config.BackendSQLite:
		var (
			db      *database.DBClient
			dialect store.Dialect
			err     error
		)
		if cfg.Backend == config.BackendPostgres {
			db, err = database.NewPostgresDB(ctx, cfg.DatabaseURL, logger)
			dialect = store.DialectPostgres
		} else {
			db, err = database.NewSQLiteDB(ctx, cfg.DatabaseURL, logger)
			dialect = store.DialectSQLite
		}
		if err != nil {
			return nil, nil, err
		}
		s, err := store.NewSQLHitStore(ctx, db.DB, dialect, logger)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return s, db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown STATS_BACKEND %q", cfg.Backend)
	}
}
