package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"MarketBluff/internal/domain/models"
	domainrepo "MarketBluff/internal/domain/repository"
	"MarketBluff/pkg/cache"
	"MarketBluff/pkg/logger"
	"MarketBluff/pkg/util"
)

const (
	SourceLive      = "wikipedia-live"
	SourceLiveCache = "wikipedia-live-cache"
	SourceFallback  = "fallback-static"
	sourceSnapshot  = "snapshot"
)

var liveListingKey = cache.GenerateKey("universe", "sp500_live.csv")

// fallbackTickers seeds the universe when no file-based seed is available.
var fallbackTickers = []string{
	"AAPL", "MSFT", "AMZN", "NVDA", "GOOGL", "GOOG", "META", "BRK-B", "JPM", "V",
	"UNH", "XOM", "LLY", "MA", "AVGO", "PG", "HD", "MRK", "COST", "KO",
	"PEP", "ABBV", "ADBE", "BAC", "CRM", "WMT", "NFLX", "MCD", "CSCO", "TMO",
	"PFE", "ABT", "AMD", "ACN", "CMCSA", "DHR", "LIN", "TXN", "WFC", "DIS",
	"AMGN", "VZ", "INTU", "QCOM", "INTC", "UPS", "PM", "RTX", "LOW", "HON",
	"NEE", "UNP", "SBUX", "ORCL", "CAT", "IBM", "GS", "SPGI", "MS", "CVX",
	"AMAT", "BLK", "DE", "GILD", "MDT", "LMT", "C", "T", "BA", "AXP",
	"BKNG", "TJX", "CI", "SYK", "ADP", "ZTS", "PLD", "ISRG", "MMC", "MO",
	"SCHW", "GE", "CB", "SO", "ADI", "PNC", "ELV", "DUK", "TMUS", "MU",
	"AON", "VRTX", "REGN", "BSX", "CL", "APD", "ITW", "SHW", "SNPS", "EOG",
}

// UniverseConfig locates the file-based universe sources.
type UniverseConfig struct {
	Size         int
	SnapshotFile string
	SeedFile     string
}

// UniverseResolver walks live cache -> live listing -> snapshot -> seed and
// resizes the first usable result.
type UniverseResolver struct {
	cfg     UniverseConfig
	store   cache.Store
	listing domainrepo.ListingSource
	log     *logger.Logger
	now     func() time.Time
}

func NewUniverseResolver(cfg UniverseConfig, store cache.Store, listing domainrepo.ListingSource, log *logger.Logger) *UniverseResolver {
	return &UniverseResolver{
		cfg:     cfg,
		store:   store,
		listing: listing,
		log:     log,
		now:     time.Now,
	}
}

// Resolve returns the default universe. Only exhausting every source is
// an error.
func (r *UniverseResolver) Resolve(ctx context.Context) (models.Universe, error) {
	today := util.Day(r.now())

	steps := []struct {
		name string
		load func(context.Context, time.Time) (models.Universe, error)
	}{
		{"live-cache", r.fromLiveCache},
		{"live", r.fromListing},
		{"snapshot", r.fromSnapshot},
		{"seed", r.fromSeed},
	}

	for _, step := range steps {
		u, err := step.load(ctx, today)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return models.Universe{}, ctxErr
			}
			r.log.Debug("universe source skipped", logger.String("source", step.name), logger.Error(err))
			continue
		}
		if len(u.Tickers) == 0 {
			continue
		}
		resized := r.resize(u)
		if len(resized.Tickers) == 0 {
			continue
		}
		r.log.Info("default universe resolved",
			logger.String("source", resized.Source),
			logger.Int("tickers", len(resized.Tickers)),
		)
		return resized, nil
	}

	return models.Universe{}, domainrepo.ErrUniverseUnavailable
}

// RefreshLive forces a live listing fetch, rewrites the cached copy even
// when today's copy exists, and returns the resized universe.
func (r *UniverseResolver) RefreshLive(ctx context.Context) (models.Universe, error) {
	u, err := r.fromListing(ctx, util.Day(r.now()))
	if err != nil {
		return models.Universe{}, fmt.Errorf("refresh live listing: %w", err)
	}
	return r.resize(u), nil
}

func (r *UniverseResolver) fromLiveCache(ctx context.Context, today time.Time) (models.Universe, error) {
	data, err := r.store.Get(ctx, liveListingKey)
	if err != nil {
		return models.Universe{}, err
	}
	tickers, asOf, err := decodeTickerList(data)
	if err != nil {
		return models.Universe{}, err
	}
	if asOf == nil || !asOf.Equal(today) {
		return models.Universe{}, fmt.Errorf("live cache is stale")
	}
	return models.Universe{
		Source:  SourceLiveCache,
		AsOf:    asOf,
		Tickers: models.SortedTickerSet(tickers),
	}, nil
}

func (r *UniverseResolver) fromListing(ctx context.Context, today time.Time) (models.Universe, error) {
	if r.listing == nil {
		return models.Universe{}, errors.New("no listing source configured")
	}
	raw, err := r.listing.FetchConstituents(ctx)
	if err != nil {
		return models.Universe{}, err
	}
	tickers := models.SortedTickerSet(raw)
	if len(tickers) == 0 {
		return models.Universe{}, errors.New("listing returned no tickers")
	}

	if data, err := encodeTickerList(tickers, today); err != nil {
		r.log.Warn("live listing encode failed", logger.Error(err))
	} else if err := r.store.Set(ctx, liveListingKey, data); err != nil {
		r.log.Warn("live listing cache write failed", logger.Error(err))
	}

	asOf := today
	return models.Universe{Source: SourceLive, AsOf: &asOf, Tickers: tickers}, nil
}

func (r *UniverseResolver) fromSnapshot(_ context.Context, _ time.Time) (models.Universe, error) {
	if r.cfg.SnapshotFile == "" {
		return models.Universe{}, errors.New("no snapshot configured")
	}
	data, err := os.ReadFile(r.cfg.SnapshotFile)
	if err != nil {
		return models.Universe{}, err
	}
	tickers, asOf, err := decodeTickerList(data)
	if err != nil {
		return models.Universe{}, fmt.Errorf("snapshot %s: %w", r.cfg.SnapshotFile, err)
	}

	source := sourceSnapshot
	if asOf != nil {
		source += "-" + util.MonthYear(*asOf)
	}
	return models.Universe{Source: source, AsOf: asOf, Tickers: models.SortedTickerSet(tickers)}, nil
}

func (r *UniverseResolver) fromSeed(_ context.Context, _ time.Time) (models.Universe, error) {
	return models.Universe{Source: SourceFallback, Tickers: r.seed()}, nil
}

// seed returns the seed CSV tickers in file order, or the compiled-in list.
func (r *UniverseResolver) seed() []string {
	if r.cfg.SeedFile != "" {
		if data, err := os.ReadFile(r.cfg.SeedFile); err == nil {
			if tickers, _, err := decodeTickerList(data); err == nil {
				if deduped := models.DedupeTickers(tickers); len(deduped) > 0 {
					return deduped
				}
			}
		}
	}
	return models.DedupeTickers(fallbackTickers)
}

// resize pads u from the seed list and truncates it to the configured size.
func (r *UniverseResolver) resize(u models.Universe) models.Universe {
	target := r.cfg.Size
	if target < 1 {
		target = 1
	}

	tickers := models.DedupeTickers(u.Tickers)
	if len(tickers) < target {
		present := make(map[string]struct{}, len(tickers))
		for _, t := range tickers {
			present[t] = struct{}{}
		}
		for _, t := range r.seed() {
			if len(tickers) >= target {
				break
			}
			if _, ok := present[t]; ok {
				continue
			}
			present[t] = struct{}{}
			tickers = append(tickers, t)
		}
	}
	if len(tickers) > target {
		tickers = tickers[:target]
	}

	source := u.Source
	suffix := fmt.Sprintf("-top%d", target)
	if source != "" && !strings.HasSuffix(source, suffix) {
		source += suffix
	}
	return models.Universe{Source: source, AsOf: u.AsOf, Tickers: tickers}
}

// WriteSnapshot stores tickers in the snapshot layout read by the resolver.
func WriteSnapshot(path string, tickers []string, asOf time.Time) error {
	tickers = models.SortedTickerSet(tickers)
	if len(tickers) == 0 {
		return errors.New("snapshot has no tickers")
	}
	data, err := encodeTickerList(tickers, util.Day(asOf))
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
