package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketBluff/internal/domain/models"
	"MarketBluff/pkg/cache"
	"MarketBluff/pkg/logger"
	"MarketBluff/pkg/metrics"
)

func TestPriceCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	src := newFakeBarSource()
	end := day("2026-03-31")
	src.history["AAPL"] = dailySeries(end, 400)
	c := newTestPriceCache(store, src)

	start := day("2026-01-01")
	first, err := c.Get(ctx, "aapl", start, end)
	require.NoError(t, err)
	require.NotEmpty(t, first)
	assert.True(t, first.First().Equal(start))
	assert.True(t, first.Last().Equal(end))

	second, err := c.Get(ctx, "AAPL", start, end)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.historyCalls["AAPL"])

	stored, err := decodePrices(mustGet(t, store, "prices/AAPL.csv"))
	require.NoError(t, err)
	assert.Len(t, stored, 400)
}

func TestPriceCacheCoverageGrace(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	src := newFakeBarSource()
	src.history["MSFT"] = dailySeries(day("2026-03-27"), 200)
	c := newTestPriceCache(store, src)

	_, err := c.Get(ctx, "MSFT", day("2026-01-01"), day("2026-03-27"))
	require.NoError(t, err)

	// two days past the last bar is still covered
	_, err = c.Get(ctx, "MSFT", day("2026-01-01"), day("2026-03-29"))
	require.NoError(t, err)
	assert.Equal(t, 1, src.historyCalls["MSFT"])

	_, err = c.Get(ctx, "MSFT", day("2026-01-01"), day("2026-03-30"))
	require.NoError(t, err)
	assert.Equal(t, 2, src.historyCalls["MSFT"])
}

func TestPriceCacheRefetchesWhenStartNotCovered(t *testing.T) {
	ctx := context.Background()
	src := newFakeBarSource()
	end := day("2026-03-31")
	src.history["KO"] = dailySeries(end, 30)
	c := newTestPriceCache(newTestStore(t), src)

	got, err := c.Get(ctx, "KO", day("2025-01-01"), end)
	require.NoError(t, err)
	assert.Len(t, got, 30)

	_, err = c.Get(ctx, "KO", day("2025-01-01"), end)
	require.NoError(t, err)
	assert.Equal(t, 2, src.historyCalls["KO"])
}

func TestPriceCacheCorruptEntryIsAMiss(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Set(ctx, "prices/PG.csv", []byte("not,a,price\nfile")))

	src := newFakeBarSource()
	end := day("2026-03-31")
	src.history["PG"] = dailySeries(end, 10)
	c := newTestPriceCache(store, src)

	got, err := c.Get(ctx, "PG", day("2026-03-22"), end)
	require.NoError(t, err)
	assert.Len(t, got, 10)
	assert.Equal(t, 1, src.historyCalls["PG"])

	rewritten, err := decodePrices(mustGet(t, store, "prices/PG.csv"))
	require.NoError(t, err)
	assert.Len(t, rewritten, 10)
}

func TestPriceCacheEmptyFetchIsNotWritten(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	c := newTestPriceCache(store, newFakeBarSource())

	got, err := c.Get(ctx, "NOPE", day("2026-01-01"), day("2026-03-31"))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = store.Get(ctx, "prices/NOPE.csv")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestPriceCacheUpstreamFailureYieldsEmpty(t *testing.T) {
	src := newFakeBarSource()
	src.failHistory = true
	c := newTestPriceCache(newTestStore(t), src)

	got, err := c.Get(context.Background(), "AAPL", day("2026-01-01"), day("2026-03-31"))
	require.NoError(t, err)
	assert.Equal(t, models.PriceSeries{}, got)
}

func TestPriceCacheReportsCancellation(t *testing.T) {
	src := newFakeBarSource()
	src.failHistory = true
	c := newTestPriceCache(newTestStore(t), src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Get(ctx, "AAPL", day("2026-01-01"), day("2026-03-31"))
	assert.ErrorIs(t, err, context.Canceled)
}

type gatedBarSource struct {
	series  models.PriceSeries
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedBarSource) FetchHistory(context.Context, string) (models.PriceSeries, error) {
	g.calls.Add(1)
	g.once.Do(func() { close(g.started) })
	<-g.release
	return g.series, nil
}

func (g *gatedBarSource) FetchMarketCap(context.Context, string) (float64, error) {
	return 0, errUpstream
}

func TestPriceCacheConcurrentMissesShareOneFetch(t *testing.T) {
	end := day("2026-03-31")
	src := &gatedBarSource{
		series:  dailySeries(end, 300),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	c := NewPriceCache(newTestStore(t), src, metrics.Noop{}, logger.Nop(), time.Second)

	const workers = 16
	results := make([]models.PriceSeries, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := c.Get(context.Background(), "^GSPC", day("2026-01-01"), end)
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}

	<-src.started
	time.Sleep(20 * time.Millisecond)
	close(src.release)
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	for _, got := range results {
		require.NotEmpty(t, got)
		assert.True(t, got.Last().Equal(end))
	}
}

func TestPriceCacheCancelledWaiterDoesNotCancelSharedFetch(t *testing.T) {
	end := day("2026-03-31")
	src := &gatedBarSource{
		series:  dailySeries(end, 100),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	store := newTestStore(t)
	c := NewPriceCache(store, src, metrics.Noop{}, logger.Nop(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, "KO", day("2026-01-01"), end)
		errCh <- err
	}()
	<-src.started
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(src.release)
	got, err := c.Get(context.Background(), "KO", day("2026-01-01"), end)
	require.NoError(t, err)
	assert.NotEmpty(t, got)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestDecodePricesRejectsBadRows(t *testing.T) {
	_, err := decodePrices([]byte("date,high,low,close\n2026-01-02,1,x,1\n"))
	assert.ErrorIs(t, err, errMalformed)

	_, err = decodePrices([]byte("date,high,low,close\n2026-13-02,1,1,1\n"))
	assert.ErrorIs(t, err, errMalformed)

	got, err := decodePrices([]byte("date,high,low,close\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}
