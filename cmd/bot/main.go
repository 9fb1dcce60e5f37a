package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/staff_availability/internal/app"
	"github.com/Freeeeeet/staff_availability/internal/config"
	"github.com/Freeeeeet/staff_availability/internal/controller"
	"github.com/Freeeeeet/staff_availability/internal/lock"
	"github.com/Freeeeeet/staff_availability/internal/metrics"
	"github.com/Freeeeeet/staff_availability/internal/repository"
	"github.com/Freeeeeet/staff_availability/internal/repository/base"
	"github.com/Freeeeeet/staff_availability/internal/service"
	"github.com/Freeeeeet/staff_availability/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Service stopped with error", zap.Error(err))
	}

	logger.Info("Service stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting staff availability service",
		zap.String("environment", cfg.Environment),
		zap.Bool("bot_enabled", cfg.BotEnabled()),
		zap.Bool("redis_enabled", cfg.RedisEnabled()))

	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}

	migrator, err := app.NewMigrator(pool, migrations.FS, logger)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		migrator.Close()
		return err
	}
	migrator.Close()

	// Блокировка сотрудника между процессами нужна только при нескольких репликах
	var locker service.Locker
	if cfg.RedisEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		redisLocker := lock.NewRedisLocker(rdb, cfg.LockTTL, logger)
		if err := redisLocker.Ping(ctx); err != nil {
			return err
		}
		locker = redisLocker
	}

	scheduleService := service.NewScheduleService(
		repository.NewHourTemplateRepository(pool),
		service.NewUnitOfWork(base.NewRepository(pool)),
		repository.NewStandingScheduleRepository(pool, logger),
		locker,
		logger,
	)

	metrics.Register()
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           metricsMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Metrics server listening", zap.String("addr", cfg.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	scheduler := app.NewScheduler(scheduleService, cfg.StandingInterval, cfg.StandingWeeksAhead, logger)
	scheduler.Start(ctx)

	if cfg.BotEnabled() {
		botController, err := controller.NewBotController(cfg.TelegramToken, scheduleService, cfg.AdminIDs, logger)
		if err != nil {
			return err
		}
		if err := botController.RegisterHandlers(ctx); err != nil {
			logger.Warn("Bot commands menu not set", zap.Error(err))
		}
		if len(cfg.AdminIDs) == 0 {
			logger.Warn("ADMIN_TELEGRAM_IDS is empty, nobody can apply schedules from chat")
		}

		// Блокируется до отмены ctx
		botController.Start(ctx)
	} else {
		<-ctx.Done()
	}

	logger.Info("Shutting down")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return metricsServer.Shutdown(shutdownCtx)
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
