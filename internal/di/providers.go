package di

import (
	"context"
	"fmt"
	"time"

	domrepo "HoopLine/internal/domain/repository"
	domsvc "HoopLine/internal/domain/service"
	"HoopLine/internal/handler/api"
	internalrepo "HoopLine/internal/repository"
	icache "HoopLine/internal/service/cache"
	svcmetrics "HoopLine/internal/service/metrics"
	"HoopLine/internal/service/ratelimit"
	"HoopLine/internal/services/analytics"
	"HoopLine/internal/services/baseline"
	"HoopLine/internal/services/scoring"
	"HoopLine/internal/usecase"
	pkgch "HoopLine/pkg/clickhouse"
	"HoopLine/pkg/config"
	pkgkafka "HoopLine/pkg/kafka"
	"HoopLine/pkg/logger"
	"HoopLine/pkg/metrics"
	"HoopLine/pkg/server"
)

// responseCacheEntries bounds the in-process layer of the response cache.
const responseCacheEntries = 10000

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	pc := cfg.Kafka.Producer
	producer, err := pkgkafka.NewProducer(pkgkafka.WriterConfig{
		Brokers:      cfg.Kafka.Brokers,
		Acks:         cfg.Kafka.RequiredAcks,
		Compression:  cfg.Kafka.Compression,
		MaxAttempts:  pc.MaxAttempts,
		BatchSize:    pc.BatchSize,
		BatchBytes:   pc.BatchBytes,
		Linger:       pc.Linger,
		WriteTimeout: pc.WriteTimeout,
		ReadTimeout:  pc.ReadTimeout,
		Async:        pc.Async,
		KeyRouted:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideLogger builds the application logger. Warnings and errors are
// aggregated and shipped to the logs topic when the collector is enabled.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Log.Collector.Enabled && producer != nil {
		l.AddCollector(&logger.CollectionConfig{
			TimeInterval:   cfg.Log.Collector.FlushInterval,
			CountThreshold: cfg.Log.Collector.Threshold,
			Topic:          cfg.Kafka.Topics.Logs,
			Source:         "hoopline/" + cfg.Environment,
			Publisher:      producer,
		})
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	svcmetrics.Register()
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the
// database exists. Returns nil when ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	cc := cfg.ClickHouse
	client, err := pkgch.NewClient(pkgch.Config{
		Host:         cc.Host,
		Port:         cc.Port,
		Database:     cc.Database,
		User:         cc.User,
		Password:     cc.Password,
		HTTP:         cc.UseHTTP,
		DialTimeout:  cc.DialTimeout,
		ReadTimeout:  cc.ReadTimeout,
		AsyncInsert:  cc.AsyncInsert,
		WaitForAsync: cc.WaitForAsync,
		MaxExecTime:  cc.MaxExecutionTime,
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{internalrepo.CreateDatabase(cfg.ClickHouse.Database)}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideHistoryStore creates the game history table. Without ClickHouse
// baselines live in memory only.
func ProvideHistoryStore(client *pkgch.Client, l *logger.Logger) (domrepo.HistoryStore, error) {
	if client == nil {
		return nil, nil
	}
	store := internalrepo.NewCHHistoryStore(client.DB(), client.Database(), l)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}
	return store, nil
}

// ProvidePredictionStore creates the prediction and evaluation tables.
func ProvidePredictionStore(client *pkgch.Client, l *logger.Logger) (domrepo.PredictionStore, error) {
	if client == nil {
		return nil, nil
	}
	store := internalrepo.NewCHPredictionStore(client.DB(), client.Database(), l)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("prediction store: %w", err)
	}
	return store, nil
}

// ProvidePredictionPublisher creates the predictions topic publisher.
func ProvidePredictionPublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.PredictionPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPredictionPublisher(producer, cfg.Kafka.Topics.Predictions)
}

// ProvideRedisCache connects the shared cache tier, or nil when Redis is disabled.
func ProvideRedisCache(cfg *config.Config) *icache.RedisCache {
	if !cfg.Redis.Enabled {
		return nil
	}
	return icache.NewRedisCache(icache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideCache layers an in-process cache over Redis when one is configured.
func ProvideCache(redis *icache.RedisCache, cfg *config.Config) icache.BytesCache {
	l1 := icache.NewBoundedTTLCache(responseCacheEntries)
	if redis == nil {
		return l1
	}
	return icache.NewLayeredCache(l1, redis, cfg.Cache.ResponseTTL)
}

// ProvideScorer validates the scoring hyperparameters and builds the scorer.
func ProvideScorer(cfg *config.Config) (*scoring.Scorer, error) {
	return scoring.NewScorer(cfg.Scoring.Params())
}

// ProvideBook creates the rolling baseline book.
func ProvideBook(cfg *config.Config) *baseline.Book {
	return baseline.NewBook(baseline.ConfigFrom(cfg.Scoring.Params()))
}

// ProvideAdvisor creates the configured override advisor; nil for mode "none".
func ProvideAdvisor(cfg *config.Config) domsvc.OverrideAdvisor {
	return analytics.NewOverrideAdvisor(cfg)
}

// ProvideBaselineUseCase creates the baseline use case.
func ProvideBaselineUseCase(
	book *baseline.Book,
	store domrepo.HistoryStore,
	c icache.BytesCache,
	m domrepo.Metrics,
	l *logger.Logger,
	cfg *config.Config,
) *usecase.BaselineUseCase {
	return usecase.NewBaselineUseCase(book, store, c, cfg.Cache.BaselineTTL, m, l)
}

// ProvideScoringUseCase creates the scoring use case.
func ProvideScoringUseCase(
	scorer *scoring.Scorer,
	baselines *usecase.BaselineUseCase,
	advisor domsvc.OverrideAdvisor,
	store domrepo.PredictionStore,
	pub domrepo.PredictionPublisher,
	m domrepo.Metrics,
	l *logger.Logger,
	cfg *config.Config,
) *usecase.ScoringUseCase {
	deps := usecase.ScoringDeps{Advisor: advisor, Store: store, Publisher: pub}
	return usecase.NewScoringUseCase(scorer, baselines, deps, m, l, cfg.Scoring.Workers)
}

// ProvideEvaluationUseCase creates the evaluation use case.
func ProvideEvaluationUseCase(store domrepo.PredictionStore, m domrepo.Metrics, l *logger.Logger) *usecase.EvaluationUseCase {
	return usecase.NewEvaluationUseCase(store, m, l)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config, l *logger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	cc := cfg.Kafka.Consumer
	consumer, err := pkgkafka.NewConsumer(pkgkafka.ReaderConfig{
		Brokers:    cfg.Kafka.Brokers,
		GroupID:    cc.GroupID,
		MinBytes:   cc.MinBytes,
		MaxBytes:   cc.MaxBytes,
		Workers:    cc.Workers,
		Buffer:     cc.BufferSize,
		Retries:    cc.RetryMax,
		BackoffMin: cc.BackoffMin,
		BackoffMax: cc.BackoffMax,
		DLQTopic:   cc.DLQTopic,
		Hooks:      []pkgkafka.ConsumerHook{pkgkafka.NewLoggingHook(l)},
		Logger:     l,
	})
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaHandlers builds the handlers for the matchups and games topics.
func ProvideKafkaHandlers(
	scoringUC *usecase.ScoringUseCase,
	baselines *usecase.BaselineUseCase,
	m domrepo.Metrics,
	cfg *config.Config,
) []pkgkafka.MessageHandler {
	return []pkgkafka.MessageHandler{
		usecase.NewKafkaMatchupsHandler(cfg.Kafka.Topics.Matchups, scoringUC, m),
		usecase.NewKafkaGamesHandler(cfg.Kafka.Topics.Games, baselines, m),
	}
}

// ProvideLimiter creates the per-client limiter; nil when rps is zero.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	if cfg.Server.RateLimit.RPS <= 0 {
		return nil
	}
	return ratelimit.New(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst)
}

// ProvideAPIHandler creates the HTTP handler and its health checks.
func ProvideAPIHandler(
	l *logger.Logger,
	scoringUC *usecase.ScoringUseCase,
	baselines *usecase.BaselineUseCase,
	evaluations *usecase.EvaluationUseCase,
	c icache.BytesCache,
	limiter *ratelimit.Limiter,
	advisor domsvc.OverrideAdvisor,
	chClient *pkgch.Client,
	redis *icache.RedisCache,
	cfg *config.Config,
) *api.Handler {
	var checks []api.HealthCheck
	if chClient != nil {
		checks = append(checks, api.HealthCheck{Name: "clickhouse", Check: chClient.Health})
	}
	if redis != nil {
		checks = append(checks, api.HealthCheck{Name: "redis", Check: redis.Ping})
	}
	if adv, ok := advisor.(*analytics.HTTPOverrideAdvisor); ok {
		checks = append(checks, api.HealthCheck{Name: "advisor", Check: adv.Health})
	}
	return api.NewHandler(l, api.Deps{
		Scoring:     scoringUC,
		Baselines:   baselines,
		Evaluations: evaluations,
		Cache:       c,
		CacheTTL:    cfg.Cache.ResponseTTL,
		Limiter:     limiter,
		Checks:      checks,
	})
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	h *api.Handler,
	consumer *pkgkafka.Consumer,
	handlers []pkgkafka.MessageHandler,
	pub domrepo.PredictionPublisher,
	store domrepo.PredictionStore,
	chClient *pkgch.Client,
	redis *icache.RedisCache,
	limiter *ratelimit.Limiter,
) *server.App {
	return server.New(cfg, l, server.Components{
		HTTP:       h,
		Consumer:   consumer,
		Handlers:   handlers,
		Publisher:  pub,
		Store:      store,
		ClickHouse: chClient,
		Redis:      redis,
		Limiter:    limiter,
	})
}
