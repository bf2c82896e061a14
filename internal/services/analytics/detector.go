package analytics

import (
	"math"
	"time"

	"MarketBluff/internal/domain/models"
	"MarketBluff/pkg/util"
)

type detectorState int

const (
	trackingPeak detectorState = iota
	inDrawdown
)

// openEvent holds the fields of the drawdown currently in flight.
type openEvent struct {
	peakPrice   float64
	peakDate    time.Time
	troughPrice float64
	troughDate  time.Time
}

func (o openEvent) declinePct() float64 {
	return (o.peakPrice - o.troughPrice) / o.peakPrice * 100.0
}

func (o openEvent) close(recovery *models.Bar) models.Event {
	ev := models.Event{
		PeakDate:    o.peakDate,
		TroughDate:  o.troughDate,
		DeclinePct:  o.declinePct(),
		PeakPrice:   o.peakPrice,
		TroughPrice: o.troughPrice,
	}
	if recovery != nil {
		date := recovery.Date
		price := recovery.High
		days := util.DaysBetween(o.troughDate, recovery.Date)
		ev.Recovered = true
		ev.RecoveryDate = &date
		ev.RecoveryPrice = &price
		ev.RecoveryDays = &days
	}
	return ev
}

// DrawdownDetector walks a bar series with a two-state machine:
// tracking the running peak, or waiting for a drawdown to recover.
//
// The trough of an event is fixed at the bar that crossed the threshold and
// is not lowered by deeper lows later in the same drawdown. A recovery bar
// must be dated strictly after the trough.
type DrawdownDetector struct{}

func NewDrawdownDetector() *DrawdownDetector { return &DrawdownDetector{} }

// Detect returns the qualifying events in chronological order.
func (DrawdownDetector) Detect(bars models.PriceSeries, thresholdPct float64) []models.Event {
	rows := usableBars(bars)
	if len(rows) < 2 {
		return nil
	}

	var (
		events    []models.Event
		state     = trackingPeak
		peakPrice = rows[0].High
		peakDate  = rows[0].Date
		open      openEvent
	)

	for i := 1; i < len(rows); i++ {
		bar := rows[i]
		switch state {
		case trackingPeak:
			if bar.High > peakPrice {
				peakPrice = bar.High
				peakDate = bar.Date
			}
			if !bar.Date.After(peakDate) {
				continue
			}
			decline := (peakPrice - bar.Low) / peakPrice * 100.0
			if decline >= thresholdPct {
				open = openEvent{
					peakPrice:   peakPrice,
					peakDate:    peakDate,
					troughPrice: bar.Low,
					troughDate:  bar.Date,
				}
				state = inDrawdown
			}
		case inDrawdown:
			if bar.High >= open.peakPrice && bar.Date.After(open.troughDate) {
				events = append(events, open.close(&bar))
				state = trackingPeak
				peakPrice = bar.High
				peakDate = bar.Date
			}
		}
	}

	if state == inDrawdown {
		events = append(events, open.close(nil))
	}
	return events
}

// usableBars drops bars with missing highs or lows.
func usableBars(bars models.PriceSeries) models.PriceSeries {
	out := make(models.PriceSeries, 0, len(bars))
	for _, b := range bars {
		if math.IsNaN(b.High) || math.IsNaN(b.Low) || b.High <= 0 {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Representative picks the event shown for a ticker: the deepest recovered
// event if any recovered, else the deepest event overall. The earliest
// event wins ties.
func Representative(events []models.Event) (models.Event, bool) {
	var (
		best     models.Event
		found    bool
		anyRecov bool
	)
	for _, ev := range events {
		if ev.Recovered {
			anyRecov = true
			break
		}
	}
	for _, ev := range events {
		if anyRecov && !ev.Recovered {
			continue
		}
		if !found || ev.DeclinePct > best.DeclinePct {
			best = ev
			found = true
		}
	}
	return best, found
}

// Threshold scales the base decline threshold by beta, never below base.
func Threshold(basePct, beta float64) float64 {
	return basePct * math.Max(1.0, beta)
}
