package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "HoopLine/internal/domain/repository"
	icache "HoopLine/internal/service/cache"
	"HoopLine/internal/service/ratelimit"
	pkgch "HoopLine/pkg/clickhouse"
	"HoopLine/pkg/config"
	xhttp "HoopLine/pkg/http"
	pkgkafka "HoopLine/pkg/kafka"
	applogger "HoopLine/pkg/logger"
)

// Limiter entries idle longer than this are dropped by the prune loop.
const (
	limiterIdle  = 10 * time.Minute
	limiterSweep = time.Minute
)

// Components are the long-lived pieces the App starts and stops.
// Everything except HTTP is optional.
type Components struct {
	HTTP       xhttp.Handler
	Consumer   *pkgkafka.Consumer
	Handlers   []pkgkafka.MessageHandler
	Publisher  domrepo.PredictionPublisher
	Store      domrepo.PredictionStore
	ClickHouse *pkgch.Client
	Redis      *icache.RedisCache
	Limiter    *ratelimit.Limiter
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	c          Components
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, c Components) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, log: l, c: c}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.log, []xhttp.Handler{a.c.HTTP},
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)

	// Start consumer if configured
	if a.c.Consumer != nil && len(a.c.Handlers) > 0 {
		topics := make([]string, 0, len(a.c.Handlers))
		for _, h := range a.c.Handlers {
			a.c.Consumer.RegisterHandler(h)
			topics = append(topics, h.Topic())
		}
		if err := a.c.Consumer.Start(); err != nil {
			a.log.Error("kafka consumer start error", applogger.Error(err))
			return err
		}
		a.log.Info("kafka consumer started", applogger.Strings("topics", topics))
	}

	if a.c.Limiter != nil {
		go a.pruneLimiter(ctx)
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("hoopline started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

func (a *App) pruneLimiter(ctx context.Context) {
	t := time.NewTicker(limiterSweep)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.c.Limiter.Prune(limiterIdle); n > 0 {
				a.log.Debug("rate limiter pruned", applogger.Int("clients", n))
			}
		}
	}
}

// shutdown stops intake first, then flushes and closes outputs.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	a.log.Info("shutting down...")

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.c.Consumer != nil {
		if err := a.c.Consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")

	// The collector ships through the producer, so it goes before the publisher.
	a.log.RemoveCollector()

	if a.c.Publisher != nil {
		if err := a.c.Publisher.Close(); err != nil {
			a.log.Warn("prediction publisher close error", applogger.Error(err))
		}
	}
	if a.c.Store != nil {
		if err := a.c.Store.Close(); err != nil {
			a.log.Warn("prediction store close error", applogger.Error(err))
		}
	}
	if a.c.ClickHouse != nil {
		if err := a.c.ClickHouse.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.c.Redis != nil {
		if err := a.c.Redis.Close(); err != nil {
			a.log.Warn("redis close error", applogger.Error(err))
		}
	}
	return nil
}
