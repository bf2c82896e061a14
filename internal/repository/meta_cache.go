package repository

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"MarketBluff/internal/domain/models"
	domainrepo "MarketBluff/internal/domain/repository"
	domainsvc "MarketBluff/internal/domain/service"
	"MarketBluff/pkg/cache"
	"MarketBluff/pkg/logger"
	"MarketBluff/pkg/util"
)

const metaNamespace = "meta"

// metaEntry is the persisted per-ticker document. Every field is rewritten
// on each lookup.
type metaEntry struct {
	AsOf             string   `json:"as_of"`
	MarketCapMUSD    *float64 `json:"market_cap_musd"`
	BetaAsOf         string   `json:"beta_as_of"`
	BetaLookbackDays int      `json:"beta_lookback_days"`
	BetaValue        *float64 `json:"beta_value"`
}

// MetaCache serves market cap and beta, recomputing whatever was not
// cached today.
type MetaCache struct {
	store        cache.Store
	source       domainrepo.BarSource
	prices       *PriceCache
	estimator    domainsvc.BetaEstimator
	benchmark    string
	metrics      domainrepo.Metrics
	log          *logger.Logger
	fetchTimeout time.Duration
	now          func() time.Time
}

func NewMetaCache(
	store cache.Store,
	source domainrepo.BarSource,
	prices *PriceCache,
	estimator domainsvc.BetaEstimator,
	benchmark string,
	metrics domainrepo.Metrics,
	log *logger.Logger,
	fetchTimeout time.Duration,
) *MetaCache {
	return &MetaCache{
		store:        store,
		source:       source,
		prices:       prices,
		estimator:    estimator,
		benchmark:    benchmark,
		metrics:      metrics,
		log:          log,
		fetchTimeout: fetchTimeout,
		now:          time.Now,
	}
}

func metaKey(ticker string) string {
	return cache.GenerateKey(metaNamespace, cache.SafeName(ticker)+".json")
}

// Get returns the meta of ticker. It never fails for upstream reasons: an
// unknown market cap is nil and an undeterminable beta is 1.0.
func (c *MetaCache) Get(ctx context.Context, ticker string, betaLookbackDays int) (models.TickerMeta, error) {
	t := models.NormalizeTicker(ticker)
	today := util.Day(c.now())
	todayStr := util.FormatDate(today)
	key := metaKey(t)

	cached := c.load(ctx, key)

	var marketCap *float64
	if cached.AsOf == todayStr && cached.MarketCapMUSD != nil {
		marketCap = cached.MarketCapMUSD
	}
	var beta *float64
	if cached.BetaAsOf == todayStr && cached.BetaLookbackDays == betaLookbackDays && cached.BetaValue != nil {
		beta = cached.BetaValue
	}
	c.metrics.RecordCacheLookup(metaNamespace, marketCap != nil && beta != nil)

	if marketCap == nil {
		marketCap = c.fetchMarketCap(ctx, t)
	}
	if beta == nil {
		b, err := c.computeBeta(ctx, t, today, betaLookbackDays)
		if err != nil {
			return models.TickerMeta{}, err
		}
		beta = &b
	}

	entry := metaEntry{
		AsOf:             todayStr,
		MarketCapMUSD:    marketCap,
		BetaAsOf:         todayStr,
		BetaLookbackDays: betaLookbackDays,
		BetaValue:        beta,
	}
	if data, err := json.Marshal(entry); err != nil {
		c.log.Warn("meta cache encode failed", logger.String("ticker", t), logger.Error(err))
	} else if err := c.store.Set(ctx, key, data); err != nil {
		c.metrics.RecordError("meta_cache_write")
		c.log.Warn("meta cache write failed", logger.String("ticker", t), logger.Error(err))
	}

	return models.TickerMeta{MarketCapMUSD: marketCap, Beta: *beta}, nil
}

func (c *MetaCache) load(ctx context.Context, key string) metaEntry {
	var entry metaEntry
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.log.Warn("meta cache read failed", logger.String("key", key), logger.Error(err))
		}
		return entry
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		c.log.Warn("discarding unreadable meta cache entry", logger.String("key", key), logger.Error(err))
		return metaEntry{}
	}
	return entry
}

func (c *MetaCache) fetchMarketCap(ctx context.Context, ticker string) *float64 {
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}

	started := time.Now()
	capUSD, err := c.source.FetchMarketCap(ctx, ticker)
	c.metrics.RecordLatency("fetch_market_cap", time.Since(started).Seconds())
	if err != nil {
		c.metrics.RecordError("market_cap_fetch")
		c.log.Warn("market cap unavailable", logger.String("ticker", ticker), logger.Error(err))
		return nil
	}
	if math.IsNaN(capUSD) || math.IsInf(capUSD, 0) {
		return nil
	}
	musd := capUSD / 1_000_000.0
	return &musd
}

// computeBeta only returns an error when ctx is done.
func (c *MetaCache) computeBeta(ctx context.Context, ticker string, today time.Time, lookbackDays int) (float64, error) {
	start := today.AddDate(0, 0, -lookbackDays)

	stock, err := c.prices.Get(ctx, ticker, start, today)
	if err != nil {
		return 0, err
	}
	market, err := c.prices.Get(ctx, c.benchmark, start, today)
	if err != nil {
		return 0, err
	}
	return c.estimator.Estimate(stock, market), nil
}
