//go:build wireinject
// +build wireinject

package di

import (
	"SentiPull/pkg/config"
	"SentiPull/pkg/server"

	"github.com/google/wire"
)

var coreSet = wire.NewSet(
	// Observability
	ProvideLogger,
	ProvideRegistry,
	ProvideMetrics,

	// Providers and classifier
	ProvideRateLimiter,
	ProvideFinnhubClient,
	ProvideNewsSources,
	ProvideClassifier,

	// Storage and messaging
	ProvideSentimentStore,
	ProvideKafkaProducer,
	ProvidePublisher,

	// Use cases
	ProvideInsiderScorer,
	ProvidePipeline,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		coreSet,
		ProvidePricesUseCase,
		ProvideCache,
		ProvideJobStore,
		ProvideJobService,
		ProvideKafkaConsumer,
		ProvideJobHandler,
		ProvideHTTPHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeRunner wires the dependencies of the one-shot CLI commands.
func InitializeRunner(cfg *config.Config) (*Runner, func(), error) {
	wire.Build(
		coreSet,
		ProvideRunner,
	)
	return nil, nil, nil
}
