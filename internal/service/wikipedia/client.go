package wikipedia

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	xhttp "MarketBluff/pkg/http"
)

const (
	DefaultListingURL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"
	symbolHeader      = "Symbol"
)

var ErrNoSymbolTable = errors.New("wikipedia: no table with a Symbol column")

// Client scrapes the S&P 500 constituents table. It implements
// repository.ListingSource.
type Client struct {
	url       string
	timeout   time.Duration
	transport http.RoundTripper
	http      *xhttp.Client
}

// Option configures the Client.
type Option func(*Client)

// WithURL sets the listing page URL.
func WithURL(u string) Option {
	return func(c *Client) {
		c.url = u
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

func NewClient(opts ...Option) *Client {
	c := &Client{
		url:     DefaultListingURL,
		timeout: 20 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = xhttp.NewClient(
		xhttp.WithTimeout(c.timeout),
		xhttp.WithTransport(c.transport),
		xhttp.WithHeader("User-Agent", "MarketBluff/1.0 (constituents snapshot)"),
	)
	return c
}

// FetchConstituents returns the raw symbols of the first table that has a
// Symbol column, in page order.
func (c *Client) FetchConstituents(ctx context.Context) ([]string, error) {
	var body []byte
	if err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.url,
	}, &body); err != nil {
		return nil, fmt.Errorf("wikipedia fetch: %w", err)
	}
	return ParseConstituents(body)
}

// ParseConstituents extracts symbols from a constituents page.
func ParseConstituents(page []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("wikipedia parse: %w", err)
	}

	var symbols []string
	found := false
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		col := -1
		table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
			if col < 0 && strings.TrimSpace(th.Text()) == symbolHeader {
				col = i
			}
		})
		if col < 0 {
			return true
		}
		found = true
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cell := tr.Find("td").Eq(col)
			if cell.Length() == 0 {
				return
			}
			if s := strings.TrimSpace(cell.Text()); s != "" {
				symbols = append(symbols, s)
			}
		})
		return false
	})

	if !found {
		return nil, ErrNoSymbolTable
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("wikipedia: symbol table is empty")
	}
	return symbols, nil
}
