package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"MarketBluff/internal/domain/models"
	"MarketBluff/pkg/cache"
	"MarketBluff/pkg/logger"
	"MarketBluff/pkg/metrics"
)

var errUpstream = errors.New("upstream down")

type fakeBarSource struct {
	mu           sync.Mutex
	history      map[string]models.PriceSeries
	caps         map[string]float64
	historyCalls map[string]int
	capCalls     int
	failHistory  bool
}

func newFakeBarSource() *fakeBarSource {
	return &fakeBarSource{
		history:      map[string]models.PriceSeries{},
		caps:         map[string]float64{},
		historyCalls: map[string]int{},
	}
}

func (f *fakeBarSource) FetchHistory(_ context.Context, ticker string) (models.PriceSeries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls[ticker]++
	if f.failHistory {
		return nil, errUpstream
	}
	return f.history[ticker], nil
}

func (f *fakeBarSource) FetchMarketCap(_ context.Context, ticker string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.capCalls++
	c, ok := f.caps[ticker]
	if !ok {
		return 0, errUpstream
	}
	return c, nil
}

type fakeListing struct {
	symbols []string
	err     error
	calls   int
}

func (f *fakeListing) FetchConstituents(context.Context) ([]string, error) {
	f.calls++
	return f.symbols, f.err
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

// dailySeries builds consecutive calendar-day bars ending at end.
func dailySeries(end time.Time, n int) models.PriceSeries {
	out := make(models.PriceSeries, n)
	for i := 0; i < n; i++ {
		p := 100 + float64(i%7)
		out[i] = models.Bar{Date: end.AddDate(0, 0, i-n+1), High: p + 1, Low: p - 1, Close: p}
	}
	return out
}

func newTestStore(t *testing.T) *cache.MemoryStore {
	s := cache.NewMemoryStore()
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestPriceCache(store cache.Store, src *fakeBarSource) *PriceCache {
	return NewPriceCache(store, src, metrics.Noop{}, logger.Nop(), time.Second)
}

func mustGet(t *testing.T, s cache.Store, key string) []byte {
	data, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	return data
}

func universeOf(source string, tickers ...string) models.Universe {
	return models.Universe{Source: source, Tickers: tickers}
}
