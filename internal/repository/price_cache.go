package repository

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"MarketBluff/internal/domain/models"
	domainrepo "MarketBluff/internal/domain/repository"
	"MarketBluff/pkg/cache"
	"MarketBluff/pkg/logger"
)

const (
	priceNamespace = "prices"
	// coverageGrace lets the cached series end up to two days before the
	// requested end (weekend, holiday, today not yet printed).
	coverageGrace = 48 * time.Hour
)

// PriceCache serves daily bars from a Store, refetching the full upstream
// history whenever the cached series does not cover a request. Concurrent
// misses for one ticker share a single upstream fetch.
type PriceCache struct {
	store        cache.Store
	source       domainrepo.BarSource
	metrics      domainrepo.Metrics
	log          *logger.Logger
	fetchTimeout time.Duration
	flight       singleflight.Group
}

func NewPriceCache(store cache.Store, source domainrepo.BarSource, metrics domainrepo.Metrics, log *logger.Logger, fetchTimeout time.Duration) *PriceCache {
	return &PriceCache{
		store:        store,
		source:       source,
		metrics:      metrics,
		log:          log,
		fetchTimeout: fetchTimeout,
	}
}

func priceKey(ticker string) string {
	return cache.GenerateKey(priceNamespace, cache.SafeName(ticker)+".csv")
}

// Get returns the bars of ticker dated within [start, end]. Upstream
// failures yield an empty series and a nil error; only context
// cancellation is reported.
func (c *PriceCache) Get(ctx context.Context, ticker string, start, end time.Time) (models.PriceSeries, error) {
	t := models.NormalizeTicker(ticker)
	if t == "" {
		return models.PriceSeries{}, nil
	}
	key := priceKey(t)

	if cached, ok := c.load(ctx, key); ok && cached.Covers(start, end, coverageGrace) {
		c.metrics.RecordCacheLookup(priceNamespace, true)
		return cached.Slice(start, end), nil
	}
	c.metrics.RecordCacheLookup(priceNamespace, false)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := c.flight.DoChan(t, func() (interface{}, error) {
		return c.refresh(ctx, t, key, start, end)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return models.PriceSeries{}, nil
		}
		return res.Val.(models.PriceSeries).Slice(start, end), nil
	}
}

// refresh runs once per ticker at a time. A flight that started after
// another one stored the series is answered from the store.
func (c *PriceCache) refresh(ctx context.Context, t, key string, start, end time.Time) (models.PriceSeries, error) {
	if cached, ok := c.load(ctx, key); ok && cached.Covers(start, end, coverageGrace) {
		return cached, nil
	}

	fetched, err := c.fetch(ctx, t)
	if err != nil {
		c.metrics.RecordError("price_fetch")
		c.log.Warn("price history fetch failed", logger.String("ticker", t), logger.Error(err))
		return nil, err
	}
	if fetched.Empty() {
		c.log.Debug("no usable price rows", logger.String("ticker", t))
		return models.PriceSeries{}, nil
	}

	data, err := encodePrices(fetched)
	if err == nil {
		err = c.store.Set(ctx, key, data)
	}
	if err != nil {
		c.metrics.RecordError("price_cache_write")
		c.log.Warn("price cache write failed", logger.String("ticker", t), logger.Error(err))
	}
	return fetched, nil
}

func (c *PriceCache) load(ctx context.Context, key string) (models.PriceSeries, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.log.Warn("price cache read failed", logger.String("key", key), logger.Error(err))
		}
		return nil, false
	}
	series, err := decodePrices(data)
	if err != nil {
		c.log.Warn("discarding unreadable price cache entry", logger.String("key", key), logger.Error(err))
		return nil, false
	}
	return series, true
}

// fetch is shared by every caller waiting on the flight, so with a fetch
// timeout it is detached from the cancellation of the caller that started it.
func (c *PriceCache) fetch(ctx context.Context, ticker string) (models.PriceSeries, error) {
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()
	}

	started := time.Now()
	series, err := c.source.FetchHistory(ctx, ticker)
	c.metrics.RecordLatency("fetch_history", time.Since(started).Seconds())
	return series, err
}
