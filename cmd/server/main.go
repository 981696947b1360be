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

	"github.com/Freeeeeet/lesson_scheduler/internal/api"
	"github.com/Freeeeeet/lesson_scheduler/internal/app"
	"github.com/Freeeeeet/lesson_scheduler/internal/config"
	"github.com/Freeeeeet/lesson_scheduler/internal/controller"
	"github.com/Freeeeeet/lesson_scheduler/internal/controller/handlers"
	"github.com/Freeeeeet/lesson_scheduler/internal/feed"
	"github.com/Freeeeeet/lesson_scheduler/internal/metrics"
	"github.com/Freeeeeet/lesson_scheduler/internal/repository"
	"github.com/Freeeeeet/lesson_scheduler/internal/repository/memory"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
	"github.com/Freeeeeet/lesson_scheduler/migrations"
	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const (
	orphanAuditInterval = time.Hour
	shutdownTimeout     = 10 * time.Second
)

type stores struct {
	slots    service.SlotStore
	bookings service.BookingStore
	users    service.UserStore
	homework service.HomeworkStore
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	checks := map[string]api.HealthCheck{}

	st, cleanup, err := openStores(ctx, cfg, logger, checks)
	if err != nil {
		return err
	}
	defer cleanup()

	changes := openFeed(cfg, logger, checks)
	defer changes.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	settings := service.Settings{
		TeacherID:      cfg.TeacherID,
		DefaultRate:    cfg.DefaultRate,
		RescheduleLead: cfg.RescheduleLead,
		Location:       cfg.Location,
	}

	users := service.NewUserService(st.users, changes, settings, logger)
	if cfg.TeacherID != "" {
		if _, err := users.EnsureTeacher(ctx, cfg.TeacherID, "Teacher"); err != nil {
			return fmt.Errorf("ensure teacher: %w", err)
		}
	}

	rates := service.NewRateResolver(st.users, settings, changes, logger)
	bookings := service.NewBookingService(st.slots, st.bookings, rates, changes, settings, m, logger)
	teacher := service.NewTeacherService(st.slots, st.bookings, st.users, rates, changes, settings, m, logger)
	availability := service.NewAvailabilityService(st.slots, st.bookings, rates, changes, settings, logger)
	homework := service.NewHomeworkService(st.homework, st.users, rates, changes, settings, logger)

	scheduler := app.NewScheduler(teacher, orphanAuditInterval, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if cfg.TelegramToken != "" {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("create bot: %w", err)
		}
		ctrl := controller.NewBotController(b, handlers.Services{
			Users:        users,
			Bookings:     bookings,
			Teacher:      teacher,
			Availability: availability,
			Rates:        rates,
			Homework:     homework,
		}, logger)
		if err := ctrl.RegisterHandlers(ctx); err != nil {
			logger.Warn("Bot commands menu not set", zap.Error(err))
		}
		go ctrl.Start(ctx)
	} else {
		logger.Info("TELEGRAM_TOKEN not set, bot disabled")
	}

	h := api.NewHandler(api.Services{
		Bookings:     bookings,
		Teacher:      teacher,
		Availability: availability,
		Rates:        rates,
		Homework:     homework,
		Users:        users,
	}, api.Options{
		SigningKey:  cfg.JWTSigningKey,
		Issuer:      cfg.JWTIssuer,
		RateLimit:   cfg.RateLimit,
		DevTokens:   !cfg.IsProduction(),
		CORSOrigins: cfg.CORSOrigins,
		Checks:      checks,
		Gatherer:    registry,
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.NewRouter(h, m),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStores подключает Postgres с миграциями или in-memory хранилище
func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger, checks map[string]api.HealthCheck) (stores, func(), error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("Using in-memory store, data is lost on restart")
		mem := memory.New()
		return stores{slots: mem.Slots, bookings: mem.Bookings, users: mem.Users, homework: mem.Homework}, func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		return stores{}, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return stores{}, nil, fmt.Errorf("ping database: %w", err)
	}

	migrator, err := app.NewMigrator(pool, migrations.FS, logger)
	if err != nil {
		pool.Close()
		return stores{}, nil, err
	}
	defer migrator.Close()
	if err := migrator.Run(ctx); err != nil {
		pool.Close()
		return stores{}, nil, fmt.Errorf("run migrations: %w", err)
	}

	checks["db"] = func(ctx context.Context) bool { return pool.Ping(ctx) == nil }

	return stores{
		slots:    repository.NewSlotRepository(pool),
		bookings: repository.NewBookingRepository(pool),
		users:    repository.NewUserRepository(pool),
		homework: repository.NewHomeworkRepository(pool),
	}, pool.Close, nil
}

// openFeed выбирает Redis pub/sub, если задан адрес, иначе ленту в памяти процесса
func openFeed(cfg *config.Config, logger *zap.Logger, checks map[string]api.HealthCheck) feed.Feed {
	if cfg.RedisAddr == "" {
		return feed.NewInMemory(16)
	}

	redisFeed := feed.NewRedisFeed(feed.NewRedisClient(cfg.RedisAddr), feed.DefaultChannel, logger)
	checks["redis"] = redisFeed.Healthy
	return redisFeed
}
