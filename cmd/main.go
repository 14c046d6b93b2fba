package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/okian/squad/internal/adapters/http/api"
	"github.com/okian/squad/internal/adapters/http/swagger"
	"github.com/okian/squad/internal/adapters/repository"
	service "github.com/okian/squad/internal/app"
	"github.com/okian/squad/internal/config"
	"github.com/okian/squad/pkg/logger"
	"github.com/okian/squad/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "squad exited", logger.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	metrics.Configure(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithCustomLabels(cfg.MetricsLabels),
	)

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	svc := newService(cfg, store, log)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return fmt.Errorf("start service: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Error(stopCtx, "service stop failed", logger.Error(err))
		}
	}()

	sched, err := newScheduler(ctx, svc, cfg.StatsInterval(), log)
	if err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer func() {
		if err := sched.Shutdown(); err != nil {
			log.Warn(ctx, "scheduler shutdown failed", logger.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(svc, cfg, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("store", cfg.StoreDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// Close the rating queue first so a rating is either refused with 503
	// or applied before the store closes.
	if err := svc.Drain(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "rating drain failed", logger.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	log.Info(shutdownCtx, "server stopped")
	return nil
}

// openStore builds the configured roster store, fronted by the redis player
// cache when redis_addr is set.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Store, error) {
	var store repository.Store
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := repository.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		pg, err := repository.NewPostgresStore(ctx, db)
		if err != nil {
			if sqlDB, derr := db.DB(); derr == nil {
				_ = sqlDB.Close()
			}
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		store = pg
	default:
		store = repository.NewMemoryStore()
	}

	if cfg.RedisAddr == "" {
		return store, nil
	}
	client, err := repository.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	log.Info(ctx, "player cache enabled", logger.String("redis_addr", cfg.RedisAddr))
	return repository.NewCachedStore(store, client,
		repository.WithCacheTTL(cfg.CacheTTL()),
		repository.WithCacheLogger(log.Named("cache")),
	), nil
}

func newService(cfg *config.Config, store repository.Store, log logger.Logger) *service.Service {
	return service.New(
		service.WithStore(store),
		service.WithLogger(log.Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithBalanceDefaults(cfg.MaxTeamSize, cfg.MinPoolSize),
		service.WithTeamSizeLimits(cfg.TeamMinPlayers, cfg.TeamMaxPlayers),
		service.WithSimulation(cfg.SimSizeBonus, cfg.SimJitter),
		service.WithRandomSeed(cfg.RandomSeed),
	)
}

func newMux(svc *service.Service, cfg *config.Config, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(mux)
	api.NewServer(svc,
		api.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
		api.WithLogger(log.Named("http")),
	).Register(mux)
	return mux
}

// newScheduler starts the periodic gauge refresh.
func newScheduler(ctx context.Context, svc *service.Service, every time.Duration, log logger.Logger) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			updateSystemMetrics()
			if err := svc.RefreshGauges(ctx); err != nil {
				log.Warn(ctx, "gauge refresh failed", logger.Error(err))
			}
		}),
		gocron.WithName("gauge-refresh"),
		gocron.WithTags("metrics"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}
	s.Start()
	return s, nil
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
