//go:build wireinject
// +build wireinject

package di

import (
	"TrendPull/pkg/config"
	"TrendPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideRedisClient,

		// Repositories
		ProvideBarStore,
		ProvideSignalStore,
		ProvideSymbolRegistry,
		ProvideBarPublisher,
		ProvidePriceCache,
		ProvideMarketStream,

		// Domain services
		ProvideChannelEngine,

		// Use cases
		ProvideBarAggregator,
		ProvideFeedCollector,
		ProvideSignalCorrelator,
		ProvideMarketQuery,
		ProvideSignalIngest,

		// HTTP
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
