package models

import (
	"sort"
	"strings"
	"time"
)

// Universe is a resolved list of candidate tickers.
type Universe struct {
	Source  string
	AsOf    *time.Time
	Tickers []string
}

// Bar is one daily price observation. Date is a UTC midnight.
type Bar struct {
	Date  time.Time
	High  float64
	Low   float64
	Close float64
}

// PriceSeries holds bars in strictly increasing date order.
type PriceSeries []Bar

// Empty reports whether the series has no bars.
func (s PriceSeries) Empty() bool { return len(s) == 0 }

// First returns the earliest bar date.
func (s PriceSeries) First() time.Time { return s[0].Date }

// Last returns the latest bar date.
func (s PriceSeries) Last() time.Time { return s[len(s)-1].Date }

// Slice returns the bars dated within [start, end], inclusive.
func (s PriceSeries) Slice(start, end time.Time) PriceSeries {
	lo := sort.Search(len(s), func(i int) bool { return !s[i].Date.Before(start) })
	hi := sort.Search(len(s), func(i int) bool { return s[i].Date.After(end) })
	if lo >= hi {
		return PriceSeries{}
	}
	out := make(PriceSeries, hi-lo)
	copy(out, s[lo:hi])
	return out
}

// Covers reports whether the series spans [start, end], allowing the last
// bar to trail end by up to grace (weekends, holidays).
func (s PriceSeries) Covers(start, end time.Time, grace time.Duration) bool {
	if s.Empty() {
		return false
	}
	return !s.First().After(start) && !s.Last().Before(end.Add(-grace))
}

// Sanitize sorts bars by date, keeps the last bar per date and drops bars
// with non-positive or inverted prices.
func Sanitize(bars []Bar) PriceSeries {
	sorted := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if b.High <= 0 || b.Low <= 0 || b.High < b.Low {
			continue
		}
		sorted = append(sorted, b)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	out := make(PriceSeries, 0, len(sorted))
	for _, b := range sorted {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

// TickerMeta carries per-ticker fundamentals. MarketCapMUSD is nil when unknown.
type TickerMeta struct {
	MarketCapMUSD *float64
	Beta          float64
}

// DefaultBeta is used whenever beta cannot be determined.
const DefaultBeta = 1.0

// legacyTickers maps retired symbols to their current listing.
var legacyTickers = map[string]string{
	// AmerisourceBergen renamed to Cencora
	"ABC": "COR",
}

// NormalizeTicker trims, uppercases, maps share-class dots to dashes and
// remaps legacy symbols.
func NormalizeTicker(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	t = strings.ReplaceAll(t, ".", "-")
	if renamed, ok := legacyTickers[t]; ok {
		return renamed
	}
	return t
}

// DedupeTickers normalizes and removes duplicates, keeping first-seen order.
func DedupeTickers(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, raw := range tickers {
		t := NormalizeTicker(raw)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SortedTickerSet normalizes, dedupes and sorts tickers.
func SortedTickerSet(tickers []string) []string {
	out := DedupeTickers(tickers)
	sort.Strings(out)
	return out
}
