package features

import (
	"time"

	"MarketBluff/internal/domain/models"
)

// AlignedCloses holds close prices of two series on their common dates.
type AlignedCloses struct {
	Dates  []time.Time
	Stock  []float64
	Market []float64
}

// Len returns the number of aligned observations.
func (a AlignedCloses) Len() int { return len(a.Dates) }

// JoinCloses inner-joins two date-sorted series on bar date.
func JoinCloses(stock, market models.PriceSeries) AlignedCloses {
	n := len(stock)
	if len(market) < n {
		n = len(market)
	}
	out := AlignedCloses{
		Dates:  make([]time.Time, 0, n),
		Stock:  make([]float64, 0, n),
		Market: make([]float64, 0, n),
	}
	i, j := 0, 0
	for i < len(stock) && j < len(market) {
		a, b := stock[i].Date, market[j].Date
		switch {
		case a.Before(b):
			i++
		case b.Before(a):
			j++
		default:
			out.Dates = append(out.Dates, a)
			out.Stock = append(out.Stock, stock[i].Close)
			out.Market = append(out.Market, market[j].Close)
			i++
			j++
		}
	}
	return out
}

// PctReturns computes simple returns r_t = C_t / C_{t-1} - 1.
// It returns a slice of length len(closes)-1, or nil if insufficient data.
func PctReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		out = append(out, closes[i]/closes[i-1]-1)
	}
	return out
}

// PairedReturns computes returns for both legs and keeps only the rows
// where both are finite.
func PairedReturns(a AlignedCloses) (stock, market []float64) {
	rs := PctReturns(a.Stock)
	rm := PctReturns(a.Market)
	stock = make([]float64, 0, len(rs))
	market = make([]float64, 0, len(rm))
	for i := range rs {
		if !finite(rs[i]) || !finite(rm[i]) {
			continue
		}
		stock = append(stock, rs[i])
		market = append(market, rm[i])
	}
	return stock, market
}
