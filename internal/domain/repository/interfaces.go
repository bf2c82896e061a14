package repository

import (
	"context"
	"time"

	"MarketBluff/internal/domain/models"
)

// MarketDataProvider is everything the analysis engine needs from a
// market-data source. Implementations must be safe for concurrent use
// across different tickers.
type MarketDataProvider interface {
	GetDefaultUniverse(ctx context.Context) (models.Universe, error)
	// GetPriceHistory returns bars within [start, end]. An empty series with
	// a nil error means no usable data.
	GetPriceHistory(ctx context.Context, ticker string, start, end time.Time) (models.PriceSeries, error)
	GetTickerMeta(ctx context.Context, ticker string, betaLookbackDays int) (models.TickerMeta, error)
}

// UniverseRefresher forces a fresh live listing of the default universe.
type UniverseRefresher interface {
	RefreshDefaultUniverse(ctx context.Context) (models.Universe, error)
}

// BarSource fetches raw daily history and quotes from upstream.
type BarSource interface {
	FetchHistory(ctx context.Context, ticker string) (models.PriceSeries, error)
	FetchMarketCap(ctx context.Context, ticker string) (float64, error)
}

// ListingSource fetches the live index constituent list.
type ListingSource interface {
	FetchConstituents(ctx context.Context) ([]string, error)
}

// SummaryPublisher hands a finished run to downstream consumers.
type SummaryPublisher interface {
	PublishSummary(ctx context.Context, s *models.AnalysisSummary) error
	Close() error
}

type Metrics interface {
	RecordTickerOutcome(outcome string)
	RecordCacheLookup(cache string, hit bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordRun(seconds float64, evaluated, failed int)
}
