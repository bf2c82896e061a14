package models

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNormalizeTicker(t *testing.T) {
	cases := map[string]string{
		" brk.b ": "BRK-B",
		"abc":     "COR",
		"aapl":    "AAPL",
		"^gspc":   "^GSPC",
		"  ":      "",
	}
	for in, want := range cases {
		if got := NormalizeTicker(in); got != want {
			t.Fatalf("NormalizeTicker(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDedupeTickersKeepsFirstSeenOrder(t *testing.T) {
	got := DedupeTickers([]string{"msft", "AAPL", "MSFT", "", "abc", "COR"})
	want := []string{"MSFT", "AAPL", "COR"}
	if len(got) != len(want) {
		t.Fatalf("unexpected %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected %v", got)
		}
	}
}

func TestSortedTickerSet(t *testing.T) {
	got := SortedTickerSet([]string{"msft", "aapl", "MSFT"})
	if len(got) != 2 || got[0] != "AAPL" || got[1] != "MSFT" {
		t.Fatalf("unexpected %v", got)
	}
}

func TestPriceSeriesSliceAndCovers(t *testing.T) {
	s := PriceSeries{
		{Date: day("2025-01-02"), High: 2, Low: 1, Close: 1.5},
		{Date: day("2025-01-03"), High: 2, Low: 1, Close: 1.5},
		{Date: day("2025-01-06"), High: 2, Low: 1, Close: 1.5},
	}

	got := s.Slice(day("2025-01-03"), day("2025-01-06"))
	if len(got) != 2 || !got[0].Date.Equal(day("2025-01-03")) {
		t.Fatalf("unexpected slice %v", got)
	}
	if len(s.Slice(day("2025-02-01"), day("2025-03-01"))) != 0 {
		t.Fatalf("expected empty slice")
	}

	grace := 48 * time.Hour
	if !s.Covers(day("2025-01-02"), day("2025-01-08"), grace) {
		t.Fatalf("expected coverage within grace")
	}
	if s.Covers(day("2025-01-02"), day("2025-01-09"), grace) {
		t.Fatalf("expected no coverage past grace")
	}
	if s.Covers(day("2025-01-01"), day("2025-01-06"), grace) {
		t.Fatalf("expected no coverage before first bar")
	}
}

func TestSanitizeOrdersAndDedupes(t *testing.T) {
	got := Sanitize([]Bar{
		{Date: day("2025-01-03"), High: 3, Low: 2},
		{Date: day("2025-01-02"), High: 2, Low: 1},
		{Date: day("2025-01-03"), High: 4, Low: 2},
		{Date: day("2025-01-04"), High: 1, Low: 2},
	})
	if len(got) != 2 {
		t.Fatalf("unexpected %v", got)
	}
	if got[1].High != 4 {
		t.Fatalf("expected last duplicate to win, got %v", got[1])
	}
}
