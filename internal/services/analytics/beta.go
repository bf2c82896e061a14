package analytics

import (
	"math"

	"MarketBluff/internal/domain/models"
	"MarketBluff/internal/services/features"
)

const minMarketVariance = 1e-12

// BetaCalculator estimates beta as cov(stock, market) / var(market) over
// daily simple returns of date-aligned closes.
type BetaCalculator struct {
	// MinSamples is the minimum number of paired return observations.
	MinSamples int
}

func NewBetaCalculator(minSamples int) *BetaCalculator {
	if minSamples < 2 {
		minSamples = 2
	}
	return &BetaCalculator{MinSamples: minSamples}
}

// Estimate returns models.DefaultBeta whenever the data cannot support an
// estimate.
func (b *BetaCalculator) Estimate(stock, market models.PriceSeries) float64 {
	if stock.Empty() || market.Empty() {
		return models.DefaultBeta
	}

	rs, rm := features.PairedReturns(features.JoinCloses(stock, market))
	if len(rm) < b.MinSamples {
		return models.DefaultBeta
	}

	varM := SampleVariance(rm)
	if math.IsNaN(varM) || varM <= minMarketVariance {
		return models.DefaultBeta
	}

	beta := SampleCovariance(rs, rm) / varM
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return models.DefaultBeta
	}
	return beta
}
