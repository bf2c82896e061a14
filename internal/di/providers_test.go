package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalrepo "MarketBluff/internal/repository"
	"MarketBluff/pkg/cache"
	"MarketBluff/pkg/config"
	"MarketBluff/pkg/metrics"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Environment = "test"
	cfg.Cache.Backend = "memory"
	return cfg
}

func TestProvideCacheStore(t *testing.T) {
	cfg := testConfig(t)

	store, err := ProvideCacheStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryStore{}, store)

	cfg.Cache.Backend = "file"
	cfg.Cache.Dir = t.TempDir()
	store, err = ProvideCacheStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &cache.FileStore{}, store)

	cfg.Cache.Backend = "layered"
	store, err = ProvideCacheStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &cache.LayeredStore{}, store)
	require.NoError(t, store.Close())
}

func TestProvideSummaryPublisherDisabled(t *testing.T) {
	pub, err := ProvideSummaryPublisher(testConfig(t))
	require.NoError(t, err)
	assert.IsType(t, internalrepo.NoopSummaryPublisher{}, pub)
}

func TestProvideMetricsDisabled(t *testing.T) {
	assert.IsType(t, metrics.Noop{}, ProvideMetrics(testConfig(t)))
}

func TestInitializeApp(t *testing.T) {
	app, err := InitializeApp(testConfig(t))
	require.NoError(t, err)
	assert.NotNil(t, app)
}
