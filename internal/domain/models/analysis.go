package models

import "time"

// Event is one peak -> trough (-> recovery) cycle found by the detector.
type Event struct {
	PeakDate      time.Time
	TroughDate    time.Time
	DeclinePct    float64
	PeakPrice     float64
	TroughPrice   float64
	Recovered     bool
	RecoveryDate  *time.Time
	RecoveryPrice *float64
	RecoveryDays  *int
}

// StockAnalysis is the per-ticker result built from the representative event.
type StockAnalysis struct {
	Ticker       string
	DeclinePct   float64
	ThresholdPct float64
	Beta         float64

	PeakDate   time.Time
	TroughDate time.Time

	PeakPrice   float64
	TroughPrice float64

	MarketCapMUSD *float64

	// Recovered is true if any qualifying event of the ticker recovered.
	Recovered     bool
	RecoveryDate  *time.Time
	RecoveryPrice *float64
	RecoveryDays  *int

	QualifyingEvents int
	RecoveredEvents  int
}

// RecoveryDistribution holds recovery-day percentiles; all nil when no
// stock recovered.
type RecoveryDistribution struct {
	P25    *float64
	Median *float64
	P75    *float64
}

// AnalysisParams echoes the inputs of a run.
type AnalysisParams struct {
	Tickers             []string
	LookbackMonths      int
	DeclineThresholdPct float64
	MinMarketCapMUSD    float64
	UsedDefaultUniverse bool
}

// AnalysisSummary is the immutable outcome of one run.
type AnalysisSummary struct {
	GeneratedAt time.Time
	Params      AnalysisParams

	UniverseSize         int
	EvaluatedTickerCount int

	DeclinedStockCount  int
	RecoveredStockCount int
	StockBluffRatePct   float64

	DeclinedEventCount  int
	RecoveredEventCount int
	EventBluffRatePct   float64

	RecoveryDays RecoveryDistribution

	FailedTickerCount int
	FailedTickers     []string

	DeclinedStocks  []StockAnalysis
	RecoveredStocks []StockAnalysis
}
