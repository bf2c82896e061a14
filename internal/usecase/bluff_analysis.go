package usecase

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"MarketBluff/internal/domain/models"
	domrepo "MarketBluff/internal/domain/repository"
	domsvc "MarketBluff/internal/domain/service"
	"MarketBluff/internal/services/analytics"
	"MarketBluff/pkg/logger"
	"MarketBluff/pkg/util"
)

const (
	outcomeAnalyzed = "analyzed"
	outcomeExcluded = "excluded"
	outcomeFailed   = "failed"
)

// BluffAnalysisUseCase runs the decline/recovery analysis over a ticker set.
type BluffAnalysisUseCase struct {
	provider         domrepo.MarketDataProvider
	detector         domsvc.DrawdownDetector
	publisher        domrepo.SummaryPublisher
	metrics          domrepo.Metrics
	log              *logger.Logger
	maxWorkers       int
	betaLookbackDays int
	now              func() time.Time
}

func NewBluffAnalysisUseCase(
	provider domrepo.MarketDataProvider,
	detector domsvc.DrawdownDetector,
	publisher domrepo.SummaryPublisher,
	metrics domrepo.Metrics,
	log *logger.Logger,
	maxWorkers int,
	betaLookbackDays int,
) *BluffAnalysisUseCase {
	if maxWorkers <= 0 {
		maxWorkers = 16
	}
	return &BluffAnalysisUseCase{
		provider:         provider,
		detector:         detector,
		publisher:        publisher,
		metrics:          metrics,
		log:              log,
		maxWorkers:       maxWorkers,
		betaLookbackDays: betaLookbackDays,
		now:              time.Now,
	}
}

type AnalyzeParams struct {
	Tickers             []string
	LookbackMonths      int
	DeclineThresholdPct float64
	MinMarketCapMUSD    float64
}

// Analyze resolves the ticker set (explicit tickers, else the default
// universe), runs the analysis and publishes the summary.
func (uc *BluffAnalysisUseCase) Analyze(ctx context.Context, p AnalyzeParams) (*models.AnalysisSummary, error) {
	params := models.AnalysisParams{
		LookbackMonths:      p.LookbackMonths,
		DeclineThresholdPct: p.DeclineThresholdPct,
		MinMarketCapMUSD:    p.MinMarketCapMUSD,
	}

	if tickers := models.SortedTickerSet(p.Tickers); len(tickers) > 0 {
		params.Tickers = tickers
	} else {
		universe, err := uc.provider.GetDefaultUniverse(ctx)
		if err != nil {
			return nil, fmt.Errorf("default universe: %w", err)
		}
		params.Tickers = models.DedupeTickers(universe.Tickers)
		params.UsedDefaultUniverse = true
	}

	summary, err := uc.Run(ctx, params)
	if err != nil {
		return nil, err
	}

	if err := uc.publisher.PublishSummary(ctx, summary); err != nil {
		uc.metrics.RecordError("publish_summary")
		uc.log.Warn("summary publish failed", logger.Error(err))
	}
	return summary, nil
}

type tickerOutcome struct {
	ticker    string
	stock     *models.StockAnalysis
	events    int
	recovered int
	failed    bool
}

// Run analyzes params.Tickers in a bounded worker pool. Per-ticker failures
// never abort the run; only context cancellation does.
func (uc *BluffAnalysisUseCase) Run(ctx context.Context, params models.AnalysisParams) (*models.AnalysisSummary, error) {
	started := time.Now()
	now := uc.now()
	end := util.Day(now)
	start := util.AddMonths(end, -params.LookbackMonths)
	tickers := params.Tickers

	jobs := make(chan string)
	results := make(chan tickerOutcome, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < uc.workerCount(len(tickers)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticker := range jobs {
				results <- uc.analyzeSafe(ctx, ticker, start, end, params)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, t := range tickers {
			select {
			case jobs <- t:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() { wg.Wait(); close(results) }()

	var (
		declined        []models.StockAnalysis
		failed          []string
		declinedEvents  int
		recoveredEvents int
	)
	for out := range results {
		switch {
		case out.failed:
			failed = append(failed, out.ticker)
			uc.metrics.RecordTickerOutcome(outcomeFailed)
		case out.stock != nil:
			declined = append(declined, *out.stock)
			declinedEvents += out.events
			recoveredEvents += out.recovered
			uc.metrics.RecordTickerOutcome(outcomeAnalyzed)
		default:
			uc.metrics.RecordTickerOutcome(outcomeExcluded)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis run: %w", err)
	}

	sort.SliceStable(declined, func(i, j int) bool {
		if declined[i].DeclinePct != declined[j].DeclinePct {
			return declined[i].DeclinePct > declined[j].DeclinePct
		}
		return declined[i].Ticker < declined[j].Ticker
	})
	recoveredStocks := make([]models.StockAnalysis, 0, len(declined))
	recoveryDays := make([]float64, 0, len(declined))
	for _, s := range declined {
		if !s.Recovered {
			continue
		}
		recoveredStocks = append(recoveredStocks, s)
		if s.RecoveryDays != nil {
			recoveryDays = append(recoveryDays, float64(*s.RecoveryDays))
		}
	}
	failed = models.SortedTickerSet(failed)

	summary := &models.AnalysisSummary{
		GeneratedAt:          now.UTC(),
		Params:               params,
		UniverseSize:         len(tickers),
		EvaluatedTickerCount: len(tickers),
		DeclinedStockCount:   len(declined),
		RecoveredStockCount:  len(recoveredStocks),
		StockBluffRatePct:    analytics.Round(analytics.RatePct(len(recoveredStocks), len(declined)), 4),
		DeclinedEventCount:   declinedEvents,
		RecoveredEventCount:  recoveredEvents,
		EventBluffRatePct:    analytics.Round(analytics.RatePct(recoveredEvents, declinedEvents), 4),
		RecoveryDays:         analytics.RecoveryDistribution(recoveryDays),
		FailedTickerCount:    len(failed),
		FailedTickers:        failed,
		DeclinedStocks:       declined,
		RecoveredStocks:      recoveredStocks,
	}

	elapsed := time.Since(started)
	uc.metrics.RecordRun(elapsed.Seconds(), len(tickers), len(failed))
	uc.log.Info("analysis run complete",
		logger.Int("evaluated", len(tickers)),
		logger.Int("declined", summary.DeclinedStockCount),
		logger.Int("recovered", summary.RecoveredStockCount),
		logger.Int("failed", summary.FailedTickerCount),
		logger.Duration("elapsed_ms", elapsed),
	)
	return summary, nil
}

func (uc *BluffAnalysisUseCase) workerCount(n int) int {
	w := runtime.NumCPU() * 4
	if w < 1 {
		w = 1
	}
	if uc.maxWorkers < w {
		w = uc.maxWorkers
	}
	if n < w {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}

// analyzeSafe turns a panic in the per-ticker pipeline into a failure.
func (uc *BluffAnalysisUseCase) analyzeSafe(ctx context.Context, ticker string, start, end time.Time, params models.AnalysisParams) (out tickerOutcome) {
	defer func() {
		if r := recover(); r != nil {
			uc.metrics.RecordError("ticker_panic")
			uc.log.Error("ticker analysis panicked",
				logger.String("ticker", ticker),
				logger.Any("panic", fmt.Sprint(r)),
			)
			out = tickerOutcome{ticker: ticker, failed: true}
		}
	}()

	out, err := uc.analyzeTicker(ctx, ticker, start, end, params)
	if err != nil {
		uc.log.Warn("ticker excluded from result", logger.String("ticker", ticker), logger.Error(err))
		return tickerOutcome{ticker: ticker, failed: true}
	}
	return out
}

func (uc *BluffAnalysisUseCase) analyzeTicker(ctx context.Context, ticker string, start, end time.Time, params models.AnalysisParams) (tickerOutcome, error) {
	out := tickerOutcome{ticker: ticker}

	bars, err := uc.provider.GetPriceHistory(ctx, ticker, start, end)
	if err != nil {
		return out, fmt.Errorf("price history: %w", err)
	}
	if len(bars) < 2 {
		return out, domrepo.ErrDataUnavailable
	}

	meta, err := uc.provider.GetTickerMeta(ctx, ticker, uc.betaLookbackDays)
	if err != nil {
		return out, fmt.Errorf("ticker meta: %w", err)
	}
	if meta.MarketCapMUSD != nil && *meta.MarketCapMUSD < params.MinMarketCapMUSD {
		return out, nil
	}

	threshold := analytics.Threshold(params.DeclineThresholdPct, meta.Beta)
	events := uc.detector.Detect(bars, threshold)
	rep, ok := analytics.Representative(events)
	if !ok {
		return out, nil
	}

	recoveredEvents := 0
	for _, ev := range events {
		if ev.Recovered {
			recoveredEvents++
		}
	}

	stock := &models.StockAnalysis{
		Ticker:           ticker,
		DeclinePct:       analytics.Round(rep.DeclinePct, 4),
		ThresholdPct:     analytics.Round(threshold, 4),
		Beta:             analytics.Round(meta.Beta, 4),
		PeakDate:         rep.PeakDate,
		TroughDate:       rep.TroughDate,
		PeakPrice:        analytics.Round(rep.PeakPrice, 4),
		TroughPrice:      analytics.Round(rep.TroughPrice, 4),
		Recovered:        recoveredEvents > 0,
		QualifyingEvents: len(events),
		RecoveredEvents:  recoveredEvents,
	}
	if meta.MarketCapMUSD != nil {
		v := analytics.Round(*meta.MarketCapMUSD, 3)
		stock.MarketCapMUSD = &v
	}
	if rep.Recovered {
		stock.RecoveryDate = rep.RecoveryDate
		stock.RecoveryDays = rep.RecoveryDays
		if rep.RecoveryPrice != nil {
			v := analytics.Round(*rep.RecoveryPrice, 4)
			stock.RecoveryPrice = &v
		}
	}

	out.stock = stock
	out.events = len(events)
	out.recovered = recoveredEvents
	return out, nil
}
