package usecase

import (
	"context"
	"fmt"
	"strings"

	"MarketBluff/internal/domain/models"
	domrepo "MarketBluff/internal/domain/repository"
)

const maxSearchResults = 100

// UniverseUseCase exposes the default universe and ticker lookup.
type UniverseUseCase struct {
	provider domrepo.MarketDataProvider
}

func NewUniverseUseCase(provider domrepo.MarketDataProvider) *UniverseUseCase {
	return &UniverseUseCase{provider: provider}
}

func (uc *UniverseUseCase) DefaultUniverse(ctx context.Context) (models.Universe, error) {
	u, err := uc.provider.GetDefaultUniverse(ctx)
	if err != nil {
		return models.Universe{}, fmt.Errorf("default universe: %w", err)
	}
	return u, nil
}

// SearchTickers returns the query (trimmed, uppercased) and up to 100
// default-universe tickers containing it, in universe order. An empty
// query matches everything.
func (uc *UniverseUseCase) SearchTickers(ctx context.Context, q string) (string, []string, error) {
	query := strings.ToUpper(strings.TrimSpace(q))

	u, err := uc.DefaultUniverse(ctx)
	if err != nil {
		return query, nil, err
	}

	matches := make([]string, 0, maxSearchResults)
	for _, t := range u.Tickers {
		if len(matches) == maxSearchResults {
			break
		}
		if query == "" || strings.Contains(t, query) {
			matches = append(matches, t)
		}
	}
	return query, matches, nil
}
