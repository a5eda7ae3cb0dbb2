package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alem-hub/gradebook/config"
	"github.com/alem-hub/gradebook/internal/application/gradebook"
	"github.com/alem-hub/gradebook/internal/infrastructure/messaging"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/gradebook/internal/infrastructure/seed"
	"github.com/alem-hub/gradebook/pkg/circuitbreaker"
	"github.com/alem-hub/gradebook/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION WIRING
// ══════════════════════════════════════════════════════════════════════════════

// app держит собранные компоненты и освобождает их в Close.
type app struct {
	cfg *config.Config
	log *logger.Logger
	gb  *gradebook.GradeBook
	bus *messaging.InMemoryEventBus

	mirror  *redis.RankingMirror
	closers []func() error
}

// setupLogger создаёт логгер по настройкам наблюдаемости.
func setupLogger(cfg *config.Config, w io.Writer) *logger.Logger {
	return logger.New(logger.Options{
		Output:    w,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		Format:    logger.ParseFormat(cfg.Observability.LogFormat),
		AddCaller: cfg.App.Debug,
	})
}

// newApp собирает журнал: реестры, шину событий, зеркало Redis и seed-данные.
func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 1. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	a.bus = messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{
		Logger:        log,
		EnableMetrics: true,
	})
	a.closers = append(a.closers, a.bus.Close)

	if err := a.bus.SubscribeAll(messaging.AuditHandler(log)); err != nil {
		return nil, fmt.Errorf("subscribe audit handler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. REDIS MIRROR (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Redis.Enabled {
		if err := a.connectMirror(ctx); err != nil {
			return nil, err
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. GRADE BOOK
	// ─────────────────────────────────────────────────────────────────────────
	a.gb = gradebook.New(
		memory.NewStudentRepository(),
		memory.NewCourseRepository(),
		gradebook.Options{Publisher: a.bus, Logger: log},
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 4. SEED
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Seed.Path != "" {
		if err := a.applySeed(ctx); err != nil {
			return nil, err
		}
	}

	return a, nil
}

func (a *app) connectMirror(ctx context.Context) error {
	rc := a.cfg.Redis
	a.log.Info("connecting to Redis", logger.String("addr", rc.Addr()), logger.Bool("url", rc.URL != ""))

	cache, err := redis.NewCache(ctx, redis.Config{
		URL:             rc.URL,
		Host:            rc.Host,
		Port:            rc.Port,
		Password:        rc.Password,
		DB:              rc.DB,
		DialTimeout:     rc.DialTimeout,
		ReadTimeout:     rc.ReadTimeout,
		WriteTimeout:    rc.WriteTimeout,
		KeyPrefix:       rc.KeyPrefix,
		ConnectAttempts: rc.ConnectAttempts,
	}, func(attempt int, err error, delay time.Duration) {
		a.log.Warn("Redis not ready, retrying",
			logger.Int("attempt", attempt), logger.Err(err), logger.Duration("delay", delay))
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	a.closers = append(a.closers, cache.Close)

	breaker := circuitbreaker.MirrorBreaker(rc.MirrorCooldown, func(name string, from, to circuitbreaker.State) {
		a.log.Warn("circuit breaker state changed",
			logger.String("breaker", name), logger.String("from", from.String()), logger.String("to", to.String()))
	})
	a.mirror = redis.NewRankingMirror(cache, rc.RankingTTL).WithBreaker(breaker)

	// Старые данные предыдущего процесса не должны смешиваться с новыми.
	if err := a.mirror.Invalidate(ctx); err != nil {
		return fmt.Errorf("reset redis mirror: %w", err)
	}
	if err := a.bus.SubscribeAll(a.mirror.Handler(a.log)); err != nil {
		return fmt.Errorf("subscribe redis mirror: %w", err)
	}

	a.log.Info("Redis mirror enabled", logger.String("prefix", rc.KeyPrefix))
	return nil
}

func (a *app) applySeed(ctx context.Context) error {
	f, err := seed.Load(a.cfg.Seed.Path)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}

	if _, err := seed.Apply(ctx, a.gb, f, a.cfg.Seed.Strict, a.log.With(logger.String("path", a.cfg.Seed.Path))); err != nil {
		return fmt.Errorf("apply seed %s: %w", a.cfg.Seed.Path, err)
	}
	return nil
}

// Close освобождает ресурсы в обратном порядке и сбрасывает буфер логгера.
func (a *app) Close() error {
	if a.bus != nil {
		if m := a.bus.Metrics(); m != nil {
			snap := m.Snapshot()
			a.log.Debug("event bus totals",
				logger.Int64("published", snap.TotalPublished),
				logger.Int64("handler_failures", snap.HandlerFailures))
		}
	}

	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	_ = a.log.Sync()
	return first
}
