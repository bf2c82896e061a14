package service

import "MarketBluff/internal/domain/models"

// DrawdownDetector finds qualifying decline/recovery events in a bar series.
type DrawdownDetector interface {
	Detect(bars models.PriceSeries, thresholdPct float64) []models.Event
}

// BetaEstimator estimates market beta from aligned close prices.
type BetaEstimator interface {
	Estimate(stock, market models.PriceSeries) float64
}
