package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketBluff/internal/domain/models"
	domrepo "MarketBluff/internal/domain/repository"
	"MarketBluff/pkg/logger"
)

func TestSearchTickers(t *testing.T) {
	p := &stubProvider{universe: models.Universe{Tickers: []string{"AAPL", "AMAT", "MA", "META", "MSFT"}}}
	uc := NewUniverseUseCase(p)

	q, got, err := uc.SearchTickers(context.Background(), "  ma ")
	require.NoError(t, err)
	assert.Equal(t, "MA", q)
	assert.Equal(t, []string{"AMAT", "MA"}, got)

	_, all, err := uc.SearchTickers(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestSearchTickersCapsResults(t *testing.T) {
	tickers := make([]string, 150)
	for i := range tickers {
		tickers[i] = fmt.Sprintf("T%03d", i)
	}
	uc := NewUniverseUseCase(&stubProvider{universe: models.Universe{Tickers: tickers}})

	_, got, err := uc.SearchTickers(context.Background(), "t")
	require.NoError(t, err)
	assert.Len(t, got, 100)
	assert.Equal(t, "T000", got[0])
}

func TestDefaultUniverseError(t *testing.T) {
	uc := NewUniverseUseCase(&stubProvider{})
	_, err := uc.DefaultUniverse(context.Background())
	assert.ErrorIs(t, err, domrepo.ErrUniverseUnavailable)
}

type countingRefresher struct {
	calls int
	err   error
}

func (c *countingRefresher) RefreshDefaultUniverse(context.Context) (models.Universe, error) {
	c.calls++
	if c.err != nil {
		return models.Universe{}, c.err
	}
	return models.Universe{Source: "wikipedia-live-top1", Tickers: []string{"AAPL"}}, nil
}

func TestUniverseRefresher(t *testing.T) {
	src := &countingRefresher{}
	r := NewUniverseRefresher(src, logger.Nop())

	assert.Error(t, r.Start("not a cron"))
	require.NoError(t, r.Start(""))
	require.NoError(t, r.Start("0 6 * * *"))
	r.RunNow()
	r.RunNow()
	r.Stop()
	assert.Equal(t, 2, src.calls)
}

func TestUniverseRefresherSurvivesListingFailure(t *testing.T) {
	src := &countingRefresher{err: errors.New("listing down")}
	r := NewUniverseRefresher(src, logger.Nop())

	r.RunNow()
	assert.Equal(t, 1, src.calls)
}
