//go:build wireinject
// +build wireinject

package di

import (
	"MarketBluff/pkg/config"
	"MarketBluff/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCacheStore,
		ProvideBarSource,
		ProvideListingSource,
		ProvideSummaryPublisher,

		// Analytics
		ProvideBetaEstimator,
		ProvideDrawdownDetector,

		// Repositories
		ProvidePriceCache,
		ProvideMetaCache,
		ProvideUniverseResolver,
		ProvideCachedProvider,
		ProvideMarketDataProvider,

		// Use cases
		ProvideBluffAnalysis,
		ProvideUniverseUseCase,
		ProvideUniverseRefresher,

		// Application server
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}
