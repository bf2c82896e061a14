package usecase

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	domrepo "MarketBluff/internal/domain/repository"
	"MarketBluff/pkg/logger"
)

// UniverseRefresher periodically re-lists the default universe so the
// first request of the day finds a warm live-listing cache.
type UniverseRefresher struct {
	source  domrepo.UniverseRefresher
	cron    *cron.Cron
	log     *logger.Logger
	timeout time.Duration
}

func NewUniverseRefresher(source domrepo.UniverseRefresher, log *logger.Logger) *UniverseRefresher {
	return &UniverseRefresher{
		source:  source,
		cron:    cron.New(),
		log:     log,
		timeout: 2 * time.Minute,
	}
}

// Start schedules the warm-up with a standard five-field cron expression.
// An empty schedule disables it.
func (r *UniverseRefresher) Start(schedule string) error {
	if schedule == "" {
		return nil
	}
	if _, err := r.cron.AddFunc(schedule, r.RunNow); err != nil {
		return err
	}
	r.cron.Start()
	r.log.Info("universe warm-up scheduled", logger.String("schedule", schedule))
	return nil
}

// Stop waits for a running warm-up to finish.
func (r *UniverseRefresher) Stop() {
	<-r.cron.Stop().Done()
}

// RunNow re-lists the default universe once.
func (r *UniverseRefresher) RunNow() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	started := time.Now()
	u, err := r.source.RefreshDefaultUniverse(ctx)
	if err != nil {
		r.log.Error("universe warm-up failed", logger.Error(err))
		return
	}
	r.log.Info("universe warm-up done",
		logger.String("source", u.Source),
		logger.Int("tickers", len(u.Tickers)),
		logger.Duration("elapsed_ms", time.Since(started)),
	)
}
