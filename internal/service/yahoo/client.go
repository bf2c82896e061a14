package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"MarketBluff/internal/domain/models"
	"MarketBluff/internal/domain/repository"
	"MarketBluff/internal/service/ratelimit"
	xhttp "MarketBluff/pkg/http"
	applogger "MarketBluff/pkg/logger"
	"MarketBluff/pkg/util"
)

const (
	DefaultChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	DefaultQuoteURL = "https://query1.finance.yahoo.com/v7/finance/quote"
	DefaultRange    = "10y"
	DefaultTimeout  = 20 * time.Second
)

// Client fetches daily bars and quotes from the Yahoo Finance public API.
// It implements repository.BarSource.
type Client struct {
	chartURL     string
	quoteURL     string
	historyRange string
	userAgent    string
	timeout      time.Duration
	transport    http.RoundTripper
	limiter      *ratelimit.Limiter
	logger       *applogger.Logger
	http         *xhttp.Client
}

// Option configures the Client.
type Option func(*Client)

// WithChartURL sets the chart endpoint base.
func WithChartURL(u string) Option {
	return func(c *Client) {
		c.chartURL = strings.TrimRight(u, "/")
	}
}

// WithQuoteURL sets the quote endpoint.
func WithQuoteURL(u string) Option {
	return func(c *Client) {
		c.quoteURL = u
	}
}

// WithRange sets the history range requested on refetch (e.g. "10y").
func WithRange(r string) Option {
	return func(c *Client) {
		c.historyRange = r
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithTransport sets a custom round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

// WithRateLimit sets the upstream request rate.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = ratelimit.New(requestsPerSecond, burst)
	}
}

// WithLogger sets a logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a new Yahoo client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		chartURL:     DefaultChartURL,
		quoteURL:     DefaultQuoteURL,
		historyRange: DefaultRange,
		userAgent:    "Mozilla/5.0",
		timeout:      DefaultTimeout,
		limiter:      ratelimit.New(4, 4),
		logger:       applogger.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.http = xhttp.NewClient(
		xhttp.WithTimeout(c.timeout),
		xhttp.WithTransport(c.transport),
		xhttp.WithHeader("User-Agent", c.userAgent),
		xhttp.WithHeader("Accept", "application/json"),
	)
	return c
}

// chartResponse is the response structure from the chart API.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High  []*float64 `json:"high"`
					Low   []*float64 `json:"low"`
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol    string   `json:"symbol"`
			MarketCap *float64 `json:"marketCap"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteResponse"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *apiError) err(ticker string) error {
	if strings.EqualFold(e.Code, "Not Found") {
		return fmt.Errorf("yahoo %s: %w", ticker, repository.ErrNotFound)
	}
	return fmt.Errorf("yahoo %s: %s: %s", ticker, e.Code, e.Description)
}

// FetchHistory downloads the full configured range of daily bars. Bars with
// a null high, low or close are skipped.
func (c *Client) FetchHistory(ctx context.Context, ticker string) (models.PriceSeries, error) {
	var resp chartResponse
	err := c.get(ctx, c.chartURL+"/"+url.PathEscape(ticker), map[string][]string{
		"interval": {"1d"},
		"range":    {c.historyRange},
		"events":   {"history"},
	}, &resp)
	if err != nil {
		return nil, c.wrap(ticker, err)
	}
	if resp.Chart.Error != nil {
		return nil, resp.Chart.Error.err(ticker)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return models.PriceSeries{}, nil
	}

	result := resp.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]models.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		h, l, cl := at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if h == nil || l == nil || cl == nil {
			continue // holidays, halted sessions
		}
		bars = append(bars, models.Bar{
			Date:  util.Day(time.Unix(ts+result.Meta.GMTOffset, 0).UTC()),
			High:  *h,
			Low:   *l,
			Close: *cl,
		})
	}

	c.logger.Debug("yahoo history fetched",
		applogger.String("ticker", ticker),
		applogger.Int("bars", len(bars)),
	)
	return models.Sanitize(bars), nil
}

// FetchMarketCap returns the market capitalization in USD.
func (c *Client) FetchMarketCap(ctx context.Context, ticker string) (float64, error) {
	var resp quoteResponse
	err := c.get(ctx, c.quoteURL, map[string][]string{
		"symbols": {ticker},
		"fields":  {"marketCap"},
	}, &resp)
	if err != nil {
		return 0, c.wrap(ticker, err)
	}
	if resp.QuoteResponse.Error != nil {
		return 0, resp.QuoteResponse.Error.err(ticker)
	}
	for _, r := range resp.QuoteResponse.Result {
		if r.MarketCap != nil && strings.EqualFold(r.Symbol, ticker) {
			return *r.MarketCap, nil
		}
	}
	return 0, fmt.Errorf("yahoo %s: market cap missing", ticker)
}

func (c *Client) get(ctx context.Context, u string, query map[string][]string, dest interface{}) error {
	if err := c.limiter.Wait(ctx, limiterKey(u)); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         u,
		QueryParams: query,
	}, dest)
}

func (c *Client) wrap(ticker string, err error) error {
	var se *xhttp.StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return fmt.Errorf("yahoo %s: %w", ticker, repository.ErrNotFound)
	}
	return fmt.Errorf("yahoo %s: %w", ticker, err)
}

func at(xs []*float64, i int) *float64 {
	if i >= len(xs) {
		return nil
	}
	return xs[i]
}

// limiterKey buckets requests per upstream host.
func limiterKey(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return u.Host
	}
	return raw
}
