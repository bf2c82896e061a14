package models

import (
	"time"
)

// Requests and responses for the analysis HTTP endpoints. The response
// shapes are also the payload published for downstream persistence.

const dateLayout = "2006-01-02"

// AnalyzeRequest uses pointers for defaulted fields so an explicit zero
// reaches the validator instead of being replaced by the default.
type AnalyzeRequest struct {
	Tickers             []string `json:"tickers"`
	LookbackMonths      *int     `json:"lookback_months" default:"6" validate:"required,gte=1,lte=60"`
	DeclineThresholdPct *float64 `json:"decline_threshold_pct" default:"20" validate:"required,gt=0,lte=100"`
	MinMarketCapMUSD    float64  `json:"min_market_cap_musd" validate:"gte=0"`
}

type TickerSearchRequest struct {
	Q string `query:"q" json:"q" validate:"max=32"`
}

type UniverseResponse struct {
	Source      string   `json:"source"`
	AsOf        *string  `json:"as_of"`
	TickerCount int      `json:"ticker_count"`
	Tickers     []string `json:"tickers"`
}

type TickerSearchResponse struct {
	Query   string   `json:"query"`
	Tickers []string `json:"tickers"`
}

type StockResult struct {
	Ticker        string   `json:"ticker"`
	DeclinePct    float64  `json:"decline_pct"`
	ThresholdPct  float64  `json:"threshold_pct"`
	Beta          float64  `json:"beta"`
	PeakDate      string   `json:"peak_date"`
	TroughDate    string   `json:"trough_date"`
	PeakPrice     float64  `json:"peak_price"`
	TroughPrice   float64  `json:"trough_price"`
	MarketCapMUSD *float64 `json:"market_cap_musd"`
	Recovered     bool     `json:"recovered"`
	RecoveryDate  *string  `json:"recovery_date"`
	RecoveryPrice *float64 `json:"recovery_price"`
	RecoveryDays  *int     `json:"recovery_days"`

	QualifyingEvents int `json:"qualifying_events"`
	RecoveredEvents  int `json:"recovered_events"`
}

type RecoveryDistributionResult struct {
	P25    *float64 `json:"p25"`
	Median *float64 `json:"median"`
	P75    *float64 `json:"p75"`
}

type AnalysisParamsResult struct {
	Tickers             []string `json:"tickers"`
	LookbackMonths      int      `json:"lookback_months"`
	DeclineThresholdPct float64  `json:"decline_threshold_pct"`
	MinMarketCapMUSD    float64  `json:"min_market_cap_musd"`
	UsedDefaultUniverse bool     `json:"used_default_universe"`
}

type AnalyzeResponse struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Params      AnalysisParamsResult `json:"params"`

	UniverseSize         int `json:"universe_size"`
	EvaluatedTickerCount int `json:"evaluated_ticker_count"`

	DeclinedStockCount  int     `json:"declined_stock_count"`
	RecoveredStockCount int     `json:"recovered_stock_count"`
	StockBluffRatePct   float64 `json:"stock_bluff_rate_pct"`

	DeclinedEventCount  int     `json:"declined_event_count"`
	RecoveredEventCount int     `json:"recovered_event_count"`
	EventBluffRatePct   float64 `json:"event_bluff_rate_pct"`

	RecoveryDaysDistribution RecoveryDistributionResult `json:"recovery_days_distribution"`

	FailedTickerCount int      `json:"failed_ticker_count"`
	FailedTickers     []string `json:"failed_tickers"`

	DeclinedStocks  []StockResult `json:"declined_stocks"`
	RecoveredStocks []StockResult `json:"recovered_stocks"`
}

// NewUniverseResponse maps a Universe to its wire shape.
func NewUniverseResponse(u Universe) UniverseResponse {
	return UniverseResponse{
		Source:      u.Source,
		AsOf:        formatDatePtr(u.AsOf),
		TickerCount: len(u.Tickers),
		Tickers:     nonNil(u.Tickers),
	}
}

// NewAnalyzeResponse maps a summary to its wire shape.
func NewAnalyzeResponse(s *AnalysisSummary) AnalyzeResponse {
	return AnalyzeResponse{
		GeneratedAt: s.GeneratedAt,
		Params: AnalysisParamsResult{
			Tickers:             nonNil(s.Params.Tickers),
			LookbackMonths:      s.Params.LookbackMonths,
			DeclineThresholdPct: s.Params.DeclineThresholdPct,
			MinMarketCapMUSD:    s.Params.MinMarketCapMUSD,
			UsedDefaultUniverse: s.Params.UsedDefaultUniverse,
		},
		UniverseSize:         s.UniverseSize,
		EvaluatedTickerCount: s.EvaluatedTickerCount,
		DeclinedStockCount:   s.DeclinedStockCount,
		RecoveredStockCount:  s.RecoveredStockCount,
		StockBluffRatePct:    s.StockBluffRatePct,
		DeclinedEventCount:   s.DeclinedEventCount,
		RecoveredEventCount:  s.RecoveredEventCount,
		EventBluffRatePct:    s.EventBluffRatePct,
		RecoveryDaysDistribution: RecoveryDistributionResult{
			P25:    s.RecoveryDays.P25,
			Median: s.RecoveryDays.Median,
			P75:    s.RecoveryDays.P75,
		},
		FailedTickerCount: s.FailedTickerCount,
		FailedTickers:     nonNil(s.FailedTickers),
		DeclinedStocks:    newStockResults(s.DeclinedStocks),
		RecoveredStocks:   newStockResults(s.RecoveredStocks),
	}
}

func newStockResults(items []StockAnalysis) []StockResult {
	out := make([]StockResult, 0, len(items))
	for _, a := range items {
		out = append(out, StockResult{
			Ticker:           a.Ticker,
			DeclinePct:       a.DeclinePct,
			ThresholdPct:     a.ThresholdPct,
			Beta:             a.Beta,
			PeakDate:         a.PeakDate.Format(dateLayout),
			TroughDate:       a.TroughDate.Format(dateLayout),
			PeakPrice:        a.PeakPrice,
			TroughPrice:      a.TroughPrice,
			MarketCapMUSD:    a.MarketCapMUSD,
			Recovered:        a.Recovered,
			RecoveryDate:     formatDatePtr(a.RecoveryDate),
			RecoveryPrice:    a.RecoveryPrice,
			RecoveryDays:     a.RecoveryDays,
			QualifyingEvents: a.QualifyingEvents,
			RecoveredEvents:  a.RecoveredEvents,
		})
	}
	return out
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
