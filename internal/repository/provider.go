package repository

import (
	"context"
	"time"

	"MarketBluff/internal/domain/models"
	"MarketBluff/internal/domain/repository"
)

// CachedProvider implements MarketDataProvider over the universe resolver
// and the price and meta caches.
type CachedProvider struct {
	universe *UniverseResolver
	prices   *PriceCache
	meta     *MetaCache
}

// NewCachedProvider creates the cache-backed market data provider.
func NewCachedProvider(universe *UniverseResolver, prices *PriceCache, meta *MetaCache) *CachedProvider {
	return &CachedProvider{universe: universe, prices: prices, meta: meta}
}

var (
	_ repository.MarketDataProvider = (*CachedProvider)(nil)
	_ repository.UniverseRefresher  = (*CachedProvider)(nil)
)

func (p *CachedProvider) GetDefaultUniverse(ctx context.Context) (models.Universe, error) {
	return p.universe.Resolve(ctx)
}

func (p *CachedProvider) GetPriceHistory(ctx context.Context, ticker string, start, end time.Time) (models.PriceSeries, error) {
	return p.prices.Get(ctx, ticker, start, end)
}

func (p *CachedProvider) GetTickerMeta(ctx context.Context, ticker string, betaLookbackDays int) (models.TickerMeta, error) {
	return p.meta.Get(ctx, ticker, betaLookbackDays)
}

// RefreshDefaultUniverse re-lists the live constituents regardless of the
// cached copy.
func (p *CachedProvider) RefreshDefaultUniverse(ctx context.Context) (models.Universe, error) {
	return p.universe.RefreshLive(ctx)
}
