//go:build wireinject
// +build wireinject

package di

import (
	"HoopLine/pkg/config"
	"HoopLine/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideMetrics,
		ProvideClickHouseClient,
		ProvideRedisCache,
		ProvideCache,

		// Repositories
		ProvideHistoryStore,
		ProvidePredictionStore,
		ProvidePredictionPublisher,

		// Scoring core
		ProvideScorer,
		ProvideBook,
		ProvideAdvisor,

		// Use cases
		ProvideBaselineUseCase,
		ProvideScoringUseCase,
		ProvideEvaluationUseCase,

		// Transports
		ProvideKafkaConsumer,
		ProvideKafkaHandlers,
		ProvideLimiter,
		ProvideAPIHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
