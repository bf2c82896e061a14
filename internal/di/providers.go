package di

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"MarketBluff/internal/domain/repository"
	domsvc "MarketBluff/internal/domain/service"
	"MarketBluff/internal/handler/api"
	internalrepo "MarketBluff/internal/repository"
	"MarketBluff/internal/service/wikipedia"
	"MarketBluff/internal/service/yahoo"
	"MarketBluff/internal/services/analytics"
	"MarketBluff/internal/usecase"
	"MarketBluff/pkg/cache"
	"MarketBluff/pkg/config"
	xhttp "MarketBluff/pkg/http"
	pkgkafka "MarketBluff/pkg/kafka"
	"MarketBluff/pkg/logger"
	"MarketBluff/pkg/metrics"
	"MarketBluff/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(logger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Noop{}
	}
	return metrics.New()
}

// ProvideCacheStore creates the key/value store behind the price, meta and
// universe caches.
func ProvideCacheStore(cfg *config.Config) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemoryStore(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize)), nil
	case "redis":
		store, err := cache.NewRedisStore(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
			cache.WithRedisTTL(cfg.Cache.Redis.TTL),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return store, nil
	default:
		store, err := cache.NewFileStore(cache.WithFileRoot(cfg.Cache.Dir))
		if err != nil {
			return nil, fmt.Errorf("file cache: %w", err)
		}
		if cfg.Cache.Backend == "layered" {
			return cache.NewLayeredStore(store, cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize)), nil
		}
		return store, nil
	}
}

// ProvideBarSource creates the Yahoo chart/quote client.
func ProvideBarSource(cfg *config.Config, l *logger.Logger) repository.BarSource {
	return yahoo.NewClient(
		yahoo.WithChartURL(cfg.MarketData.ChartURL),
		yahoo.WithQuoteURL(cfg.MarketData.QuoteURL),
		yahoo.WithRange(cfg.MarketData.HistoryRange),
		yahoo.WithUserAgent(cfg.MarketData.UserAgent),
		yahoo.WithTimeout(cfg.MarketData.Timeout),
		yahoo.WithRateLimit(cfg.MarketData.RequestsPerSecond, cfg.MarketData.Burst),
		yahoo.WithLogger(l),
	)
}

// ProvideListingSource creates the live constituents scraper.
func ProvideListingSource(cfg *config.Config) repository.ListingSource {
	return wikipedia.NewClient(
		wikipedia.WithURL(cfg.Universe.ListingURL),
		wikipedia.WithTimeout(cfg.MarketData.Timeout),
	)
}

func ProvideBetaEstimator(cfg *config.Config) domsvc.BetaEstimator {
	return analytics.NewBetaCalculator(cfg.Analysis.MinBetaSamples)
}

func ProvideDrawdownDetector() domsvc.DrawdownDetector {
	return analytics.NewDrawdownDetector()
}

func ProvidePriceCache(cfg *config.Config, store cache.Store, src repository.BarSource, m repository.Metrics, l *logger.Logger) *internalrepo.PriceCache {
	return internalrepo.NewPriceCache(store, src, m, l, cfg.Analysis.FetchTimeout)
}

func ProvideMetaCache(
	cfg *config.Config,
	store cache.Store,
	src repository.BarSource,
	prices *internalrepo.PriceCache,
	est domsvc.BetaEstimator,
	m repository.Metrics,
	l *logger.Logger,
) *internalrepo.MetaCache {
	return internalrepo.NewMetaCache(store, src, prices, est, cfg.MarketData.BenchmarkTicker, m, l, cfg.Analysis.FetchTimeout)
}

func ProvideUniverseResolver(cfg *config.Config, store cache.Store, listing repository.ListingSource, l *logger.Logger) *internalrepo.UniverseResolver {
	return internalrepo.NewUniverseResolver(internalrepo.UniverseConfig{
		Size:         cfg.Universe.Size,
		SnapshotFile: cfg.Universe.SnapshotFile,
		SeedFile:     cfg.Universe.SeedFile,
	}, store, listing, l)
}

// ProvideCachedProvider assembles the cache-backed provider.
func ProvideCachedProvider(u *internalrepo.UniverseResolver, p *internalrepo.PriceCache, m *internalrepo.MetaCache) *internalrepo.CachedProvider {
	return internalrepo.NewCachedProvider(u, p, m)
}

func ProvideMarketDataProvider(p *internalrepo.CachedProvider) repository.MarketDataProvider {
	return p
}

// ProvideSummaryPublisher creates the Kafka publisher, or a no-op one when
// Kafka is disabled.
func ProvideSummaryPublisher(cfg *config.Config) (repository.SummaryPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopSummaryPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaSummaryPublisher(producer, cfg.Kafka.Topic), nil
}

func ProvideBluffAnalysis(
	cfg *config.Config,
	provider repository.MarketDataProvider,
	detector domsvc.DrawdownDetector,
	pub repository.SummaryPublisher,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.BluffAnalysisUseCase {
	return usecase.NewBluffAnalysisUseCase(provider, detector, pub, m, l,
		cfg.Analysis.MaxWorkers, cfg.Analysis.BetaLookbackDays)
}

func ProvideUniverseUseCase(provider repository.MarketDataProvider) *usecase.UniverseUseCase {
	return usecase.NewUniverseUseCase(provider)
}

func ProvideUniverseRefresher(p *internalrepo.CachedProvider, l *logger.Logger) *usecase.UniverseRefresher {
	return usecase.NewUniverseRefresher(p, l)
}

// ProvideHTTPServer creates the echo server with the API routes.
func ProvideHTTPServer(
	cfg *config.Config,
	l *logger.Logger,
	analysis *usecase.BluffAnalysisUseCase,
	universe *usecase.UniverseUseCase,
) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(l),
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		opts = append(opts, xhttp.WithCORSOrigins(cfg.Server.CORSOrigins))
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path, prometheus.DefaultRegisterer, prometheus.DefaultGatherer))
	}
	return xhttp.NewServer(api.NewAnalysisEchoHandler(l, analysis, universe), opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	httpServer *xhttp.Server,
	refresher *usecase.UniverseRefresher,
	store cache.Store,
	pub repository.SummaryPublisher,
) *server.App {
	return server.New(cfg, l, httpServer, refresher, store, pub)
}
