package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainrepo "MarketBluff/internal/domain/repository"
	"MarketBluff/pkg/cache"
	"MarketBluff/pkg/logger"
)

func newTestResolver(t *testing.T, cfg UniverseConfig, store cache.Store, listing *fakeListing, today time.Time) *UniverseResolver {
	var src domainrepo.ListingSource
	if listing != nil {
		src = listing
	}
	r := NewUniverseResolver(cfg, store, src, logger.Nop())
	r.now = func() time.Time { return today }
	return r
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestUniverseLiveListingIsCachedForTheDay(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	listing := &fakeListing{symbols: []string{"MSFT", "brk.b", "AAPL", "MSFT"}}
	today := day("2026-03-31")
	r := newTestResolver(t, UniverseConfig{Size: 3}, store, listing, today)

	u, err := r.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "wikipedia-live-top3", u.Source)
	assert.Equal(t, []string{"AAPL", "BRK-B", "MSFT"}, u.Tickers)
	require.NotNil(t, u.AsOf)
	assert.True(t, u.AsOf.Equal(today))

	tickers, asOf, err := decodeTickerList(mustGet(t, store, "universe/sp500_live.csv"))
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "BRK-B", "MSFT"}, tickers)
	assert.True(t, asOf.Equal(today))

	u, err = r.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "wikipedia-live-cache-top3", u.Source)
	assert.Equal(t, 1, listing.calls)
}

func TestUniverseStaleLiveCacheRefetches(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	data, err := encodeTickerList([]string{"OLD"}, day("2026-03-30"))
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, liveListingKey, data))

	listing := &fakeListing{symbols: []string{"NEW"}}
	r := newTestResolver(t, UniverseConfig{Size: 1}, store, listing, day("2026-03-31"))

	u, err := r.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"NEW"}, u.Tickers)
	assert.Equal(t, 1, listing.calls)
}

func TestRefreshLiveRelistsOverFreshCache(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	today := day("2026-03-31")
	data, err := encodeTickerList([]string{"OLD"}, today)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, liveListingKey, data))

	listing := &fakeListing{symbols: []string{"NEW", "abc"}}
	r := newTestResolver(t, UniverseConfig{Size: 2}, store, listing, today)
	p := NewCachedProvider(r, nil, nil)

	u, err := p.RefreshDefaultUniverse(ctx)
	require.NoError(t, err)
	assert.Equal(t, "wikipedia-live-top2", u.Source)
	assert.Equal(t, []string{"COR", "NEW"}, u.Tickers)
	assert.Equal(t, 1, listing.calls)

	u, err = r.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "wikipedia-live-cache-top2", u.Source)
	assert.Equal(t, []string{"COR", "NEW"}, u.Tickers)

	listing.err = errors.New("listing down")
	_, err = r.RefreshLive(ctx)
	assert.Error(t, err)
}

func TestUniverseFallsBackToSnapshot(t *testing.T) {
	snapshot := writeFile(t, "snapshot.csv", "ticker,as_of\nMSFT,2026-02-14\nAAPL,2026-02-14\nABC,2026-02-14\n")
	listing := &fakeListing{err: errors.New("blocked")}
	r := newTestResolver(t, UniverseConfig{Size: 3, SnapshotFile: snapshot}, newTestStore(t), listing, day("2026-03-31"))

	u, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "snapshot-feb2026-top3", u.Source)
	assert.Equal(t, []string{"AAPL", "COR", "MSFT"}, u.Tickers)
	require.NotNil(t, u.AsOf)
	assert.True(t, u.AsOf.Equal(day("2026-02-14")))
}

func TestUniverseFallsBackToSeedFile(t *testing.T) {
	seed := writeFile(t, "seed.csv", "ticker,name\nzts,Zoetis\nAAPL,Apple\nzts,dup\n")
	listing := &fakeListing{err: errors.New("blocked")}
	r := newTestResolver(t, UniverseConfig{Size: 2, SeedFile: seed, SnapshotFile: filepath.Join(t.TempDir(), "missing.csv")},
		newTestStore(t), listing, day("2026-03-31"))

	u, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fallback-static-top2", u.Source)
	assert.Nil(t, u.AsOf)
	assert.Equal(t, []string{"ZTS", "AAPL"}, u.Tickers)
}

func TestUniverseCompiledInFallback(t *testing.T) {
	listing := &fakeListing{err: errors.New("blocked")}
	r := newTestResolver(t, UniverseConfig{Size: 300}, newTestStore(t), listing, day("2026-03-31"))

	u, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fallback-static-top300", u.Source)
	assert.Len(t, u.Tickers, len(fallbackTickers))
	assert.Equal(t, "AAPL", u.Tickers[0])
}

func TestUniverseResizeTruncatesDeterministically(t *testing.T) {
	r := newTestResolver(t, UniverseConfig{Size: 5}, newTestStore(t), nil, day("2026-03-31"))

	u := r.resize(universeOf("snapshot-feb2026", "A", "B", "C", "D", "E", "F", "G", "H", "I", "J"))
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, u.Tickers)
	assert.Equal(t, "snapshot-feb2026-top5", u.Source)

	again := r.resize(u)
	assert.Equal(t, "snapshot-feb2026-top5", again.Source)
	assert.Equal(t, u.Tickers, again.Tickers)
}

func TestUniverseResizePadsFromSeed(t *testing.T) {
	seed := writeFile(t, "seed.csv", "ticker\nAAPL\nMSFT\nKO\nPG\n")
	r := newTestResolver(t, UniverseConfig{Size: 4, SeedFile: seed}, newTestStore(t), nil, day("2026-03-31"))

	u := r.resize(universeOf("wikipedia-live", "MSFT", "XOM"))
	assert.Equal(t, []string{"MSFT", "XOM", "AAPL", "KO"}, u.Tickers)
}

func TestWriteSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshot.csv")
	require.NoError(t, WriteSnapshot(path, []string{"msft", "BRK.B", "aapl", "MSFT"}, day("2026-03-04")))

	r := NewUniverseResolver(UniverseConfig{Size: 3, SnapshotFile: path}, newTestStore(t), nil, logger.Nop())
	u, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "snapshot-mar2026-top3", u.Source)
	assert.Equal(t, []string{"AAPL", "BRK-B", "MSFT"}, u.Tickers)

	assert.Error(t, WriteSnapshot(path, nil, day("2026-03-04")))
}
