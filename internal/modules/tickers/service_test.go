package tickers

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apptest "github.com/greenmangroup/options-tracker/internal/testing"
)

// stubClient returns canned matches or a fixed error
type stubClient struct {
	matches []Match
	err     error
	calls   int
}

func (c *stubClient) Search(ctx context.Context, query string) ([]Match, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.matches, nil
}

func TestGetOrCreateDeduplicatesCaseInsensitive(t *testing.T) {
	db, cleanup := apptest.NewTestDB(t)
	defer cleanup()
	repo := NewRepository(db, zerolog.Nop())

	id, err := repo.GetOrCreate("aapl")
	require.NoError(t, err)

	again, err := repo.GetOrCreate("AAPL")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	ticker, err := repo.GetBySymbol("Aapl")
	require.NoError(t, err)
	require.NotNil(t, ticker)
	assert.Equal(t, "AAPL", ticker.Symbol)
	// Freshly created tickers show the bare symbol until the cache fills in.
	assert.Equal(t, "AAPL", ticker.CompanyName)
}

func TestGetOrCreateRejectsEmptySymbol(t *testing.T) {
	db, cleanup := apptest.NewTestDB(t)
	defer cleanup()
	repo := NewRepository(db, zerolog.Nop())

	_, err := repo.GetOrCreate("   ")
	assert.Error(t, err)
}

func TestDisplayNamePrefersCache(t *testing.T) {
	db, cleanup := apptest.NewTestDB(t)
	defer cleanup()
	repo := NewRepository(db, zerolog.Nop())

	apptest.SeedTicker(t, db, "AAPL", "Apple Inc.")

	client := &stubClient{err: fmt.Errorf("provider down")}
	svc := NewService(repo, client, zerolog.Nop())

	name := svc.DisplayName(context.Background(), "aapl")
	assert.Equal(t, "Apple Inc.", name)
	assert.Equal(t, 0, client.calls)
}

func TestDisplayNameFetchesAndCachesOnMiss(t *testing.T) {
	db, cleanup := apptest.NewTestDB(t)
	defer cleanup()
	repo := NewRepository(db, zerolog.Nop())

	_, err := repo.GetOrCreate("MSFT")
	require.NoError(t, err)

	client := &stubClient{matches: []Match{
		{Symbol: "MSFT2", Name: "Wrong Match"},
		{Symbol: "msft", Name: "Microsoft Corporation"},
	}}
	svc := NewService(repo, client, zerolog.Nop())

	name := svc.DisplayName(context.Background(), "MSFT")
	assert.Equal(t, "Microsoft Corporation", name)

	// Cached: the second call never reaches the provider.
	name = svc.DisplayName(context.Background(), "MSFT")
	assert.Equal(t, "Microsoft Corporation", name)
	assert.Equal(t, 1, client.calls)
}

func TestDisplayNameFallsBackToSymbolOnError(t *testing.T) {
	db, cleanup := apptest.NewTestDB(t)
	defer cleanup()
	repo := NewRepository(db, zerolog.Nop())

	_, err := repo.GetOrCreate("NVDA")
	require.NoError(t, err)

	client := &stubClient{err: fmt.Errorf("rate limited")}
	svc := NewService(repo, client, zerolog.Nop())

	assert.Equal(t, "NVDA", svc.DisplayName(context.Background(), "nvda"))
}

func TestDisplayNameWithoutClient(t *testing.T) {
	db, cleanup := apptest.NewTestDB(t)
	defer cleanup()
	repo := NewRepository(db, zerolog.Nop())

	svc := NewService(repo, nil, zerolog.Nop())
	assert.Equal(t, "TSLA", svc.DisplayName(context.Background(), "TSLA"))
}

func TestRefreshUnnamed(t *testing.T) {
	db, cleanup := apptest.NewTestDB(t)
	defer cleanup()
	repo := NewRepository(db, zerolog.Nop())

	apptest.SeedTicker(t, db, "AAPL", "Apple Inc.")
	_, err := repo.GetOrCreate("MSFT")
	require.NoError(t, err)
	_, err = repo.GetOrCreate("NVDA")
	require.NoError(t, err)

	client := &stubClient{matches: []Match{
		{Symbol: "MSFT", Name: "Microsoft Corporation"},
		{Symbol: "NVDA", Name: "NVIDIA Corporation"},
	}}
	svc := NewService(repo, client, zerolog.Nop())

	updated, err := svc.RefreshUnnamed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, updated)
	// Only the two unnamed tickers hit the provider.
	assert.Equal(t, 2, client.calls)

	msft, err := repo.GetBySymbol("MSFT")
	require.NoError(t, err)
	assert.Equal(t, "Microsoft Corporation", msft.CompanyName)

	remaining, err := repo.ListUnnamed()
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestRefreshUnnamedSkipsFailedLookups(t *testing.T) {
	db, cleanup := apptest.NewTestDB(t)
	defer cleanup()
	repo := NewRepository(db, zerolog.Nop())

	_, err := repo.GetOrCreate("MSFT")
	require.NoError(t, err)

	client := &stubClient{err: fmt.Errorf("provider down")}
	svc := NewService(repo, client, zerolog.Nop())

	updated, err := svc.RefreshUnnamed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, updated)

	remaining, err := repo.ListUnnamed()
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
