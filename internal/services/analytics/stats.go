package analytics

import (
	"math"
	"sort"

	"MarketBluff/internal/domain/models"
)

// SampleVariance is the unbiased (n-1) variance. NaN for fewer than 2 values.
func SampleVariance(xs []float64) float64 {
	return SampleCovariance(xs, xs)
}

// SampleCovariance is the unbiased (n-1) covariance of two equal-length series.
func SampleCovariance(xs, ys []float64) float64 {
	n := len(xs)
	if n < 2 || len(ys) != n {
		return math.NaN()
	}
	mx, my := mean(xs), mean(ys)
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += (xs[i] - mx) * (ys[i] - my)
	}
	return sum / float64(n-1)
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Percentile returns the p-th percentile (0..100) using linear interpolation
// between closest ranks. NaN for an empty input.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	rank := p / 100.0 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// RecoveryDistribution returns p25/median/p75 rounded to 4 dp, or all nil
// for no values.
func RecoveryDistribution(values []float64) models.RecoveryDistribution {
	if len(values) == 0 {
		return models.RecoveryDistribution{}
	}
	p := func(q float64) *float64 {
		v := Round(Percentile(values, q), 4)
		return &v
	}
	return models.RecoveryDistribution{P25: p(25), Median: p(50), P75: p(75)}
}

// RatePct returns 100*num/den, or 0 when den is not positive.
func RatePct(num, den int) float64 {
	if den <= 0 {
		return 0.0
	}
	return float64(num) / float64(den) * 100.0
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}
