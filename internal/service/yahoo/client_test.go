package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketBluff/internal/domain/repository"
	"MarketBluff/pkg/util"
)

const chartBody = `{"chart":{"result":[{"meta":{"symbol":"AAPL","gmtoffset":-18000},
"timestamp":[1736173800,1736260200,1736346600,1736433000],
"indicators":{"quote":[{
"high":[245.0,null,244.0,243.0],
"low":[241.0,null,240.0,239.5],
"close":[242.0,null,243.0,241.0]}]}}],"error":null}}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(
		WithChartURL(srv.URL+"/v8/finance/chart"),
		WithQuoteURL(srv.URL+"/v7/finance/quote"),
		WithRateLimit(1000, 1000),
	)
}

func TestFetchHistorySkipsNullBars(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "10y", r.URL.Query().Get("range"))
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(chartBody))
	})

	bars, err := c.FetchHistory(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, "2025-01-06", util.FormatDate(bars[0].Date))
	assert.Equal(t, "2025-01-08", util.FormatDate(bars[1].Date))
	assert.Equal(t, 245.0, bars[0].High)
	assert.Equal(t, 239.5, bars[2].Low)
}

func TestFetchHistoryNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	})

	_, err := c.FetchHistory(context.Background(), "ZZZZ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestFetchHistoryEmptyResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	})

	bars, err := c.FetchHistory(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestFetchMarketCap(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "MSFT", r.URL.Query().Get("symbols"))
		_, _ = w.Write([]byte(`{"quoteResponse":{"result":[{"symbol":"MSFT","marketCap":3100000000000}],"error":null}}`))
	})

	mc, err := c.FetchMarketCap(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, 3.1e12, mc)
}

func TestFetchMarketCapMissing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"quoteResponse":{"result":[{"symbol":"MSFT"}],"error":null}}`))
	})

	_, err := c.FetchMarketCap(context.Background(), "MSFT")
	assert.Error(t, err)
}

func TestFetchRespectsCanceledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chartBody))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchHistory(ctx, "AAPL")
	assert.Error(t, err)
}
