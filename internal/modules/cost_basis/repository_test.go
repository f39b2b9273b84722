package cost_basis

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenmangroup/options-tracker/internal/database"
	apptest "github.com/greenmangroup/options-tracker/internal/testing"
)

func newRepo(t *testing.T) (*Repository, *database.DB, func()) {
	t.Helper()
	db, cleanup := apptest.NewTestDB(t)
	return NewRepository(db, zerolog.Nop()), db, cleanup
}

func appendEntry(t *testing.T, repo *Repository, db *database.DB, e Entry) *Entry {
	t.Helper()
	var out *Entry
	err := db.WithTx(func(tx *sql.Tx) error {
		var err error
		out, err = repo.AppendTx(tx, e)
		return err
	})
	require.NoError(t, err)
	return out
}

func TestAppendFirstPremiumEntry(t *testing.T) {
	repo, db, cleanup := newRepo(t)
	defer cleanup()

	accountID := apptest.SeedAccount(t, db, "main", 10000)
	tickerID := apptest.SeedTicker(t, db, "AAPL", "Apple Inc.")

	// Premium with no shares held: basis_per_share carries the raw basis.
	entry := appendEntry(t, repo, db, Entry{
		AccountID:   accountID,
		TickerID:    tickerID,
		Date:        "2025-01-10",
		Description: "SELL 1 PUT AAPL 240",
		SharesDelta: 0,
		AmountDelta: -250,
	})

	assert.Equal(t, int64(1), entry.Seq)
	assert.Equal(t, -250.0, entry.RunningBasis)
	assert.Equal(t, int64(0), entry.RunningShares)
	assert.Equal(t, -250.0, entry.BasisPerShare)
}

func TestRunningTotalsAcrossBuyAndSell(t *testing.T) {
	repo, db, cleanup := newRepo(t)
	defer cleanup()

	accountID := apptest.SeedAccount(t, db, "main", 10000)
	tickerID := apptest.SeedTicker(t, db, "MSFT", "Microsoft Corporation")

	appendEntry(t, repo, db, Entry{
		AccountID: accountID, TickerID: tickerID,
		Date: "2025-02-01", Description: "BUY 10 MSFT",
		SharesDelta: 10, PerShare: 50, AmountDelta: 500,
	})
	last := appendEntry(t, repo, db, Entry{
		AccountID: accountID, TickerID: tickerID,
		Date: "2025-02-05", Description: "SELL 5 MSFT",
		SharesDelta: -5, PerShare: 60, AmountDelta: -300,
	})

	assert.Equal(t, int64(5), last.RunningShares)
	assert.Equal(t, 200.0, last.RunningBasis)
	assert.Equal(t, 40.0, last.BasisPerShare)
}

func TestBackdatedInsertReordersScope(t *testing.T) {
	repo, db, cleanup := newRepo(t)
	defer cleanup()

	accountID := apptest.SeedAccount(t, db, "main", 10000)
	tickerID := apptest.SeedTicker(t, db, "NVDA", "NVIDIA Corporation")

	appendEntry(t, repo, db, Entry{
		AccountID: accountID, TickerID: tickerID,
		Date: "2025-03-10", Description: "BUY 10 NVDA",
		SharesDelta: 10, PerShare: 100, AmountDelta: 1000,
	})
	// Earlier transaction date but later seq: the scope must be rebuilt
	// in (transaction_date, seq) order, not insertion order.
	appendEntry(t, repo, db, Entry{
		AccountID: accountID, TickerID: tickerID,
		Date: "2025-03-01", Description: "SELL 1 PUT NVDA 95",
		SharesDelta: 0, AmountDelta: -150,
	})

	entries, err := repo.ListEntries(accountID, "NVDA")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "2025-03-01", entries[0].Date)
	assert.Equal(t, -150.0, entries[0].RunningBasis)
	assert.Equal(t, -150.0, entries[0].BasisPerShare)

	assert.Equal(t, "2025-03-10", entries[1].Date)
	assert.Equal(t, 850.0, entries[1].RunningBasis)
	assert.Equal(t, int64(10), entries[1].RunningShares)
	assert.Equal(t, 85.0, entries[1].BasisPerShare)
}

func TestScopesAreIndependent(t *testing.T) {
	repo, db, cleanup := newRepo(t)
	defer cleanup()

	mainID := apptest.SeedAccount(t, db, "main", 10000)
	iraID := apptest.SeedAccount(t, db, "ira", 5000)
	tickerID := apptest.SeedTicker(t, db, "AAPL", "Apple Inc.")

	appendEntry(t, repo, db, Entry{
		AccountID: mainID, TickerID: tickerID,
		Date: "2025-01-10", Description: "SELL 1 PUT AAPL 240",
		SharesDelta: 0, AmountDelta: -250,
	})
	e := appendEntry(t, repo, db, Entry{
		AccountID: iraID, TickerID: tickerID,
		Date: "2025-01-11", Description: "SELL 1 PUT AAPL 240",
		SharesDelta: 0, AmountDelta: -100,
	})

	// Seq restarts per scope and totals never bleed across accounts.
	assert.Equal(t, int64(1), e.Seq)
	assert.Equal(t, -100.0, e.RunningBasis)
}

func TestDeleteAssignmentRecomputes(t *testing.T) {
	repo, db, cleanup := newRepo(t)
	defer cleanup()

	accountID := apptest.SeedAccount(t, db, "main", 10000)
	tickerID := apptest.SeedTicker(t, db, "AAPL", "Apple Inc.")
	tradeID := apptest.SeedTrade(t, db, accountID, tickerID, "CASH_SECURED_PUT", "assigned", "2025-01-10")

	appendEntry(t, repo, db, Entry{
		AccountID: accountID, TickerID: tickerID, TradeID: &tradeID,
		Date: "2025-01-10", Description: "SELL 1 PUT AAPL 240",
		SharesDelta: 0, AmountDelta: -250,
	})
	appendEntry(t, repo, db, Entry{
		AccountID: accountID, TickerID: tickerID, TradeID: &tradeID,
		Date: "2025-02-21", Description: "ASSIGNED 100 AAPL @ 240",
		SharesDelta: 100, PerShare: 240, AmountDelta: 24000,
	})

	err := db.WithTx(func(tx *sql.Tx) error {
		_, err := repo.DeleteAssignmentTx(tx, tradeID)
		return err
	})
	require.NoError(t, err)

	entries, err := repo.ListEntries(accountID, "AAPL")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, -250.0, entries[0].RunningBasis)
	assert.Equal(t, int64(0), entries[0].RunningShares)

	// Second delete is a no-op.
	err = db.WithTx(func(tx *sql.Tx) error {
		cfID, err := repo.DeleteAssignmentTx(tx, tradeID)
		assert.Zero(t, cfID)
		return err
	})
	require.NoError(t, err)
}

func TestHasEntryWithPrefix(t *testing.T) {
	repo, db, cleanup := newRepo(t)
	defer cleanup()

	accountID := apptest.SeedAccount(t, db, "main", 10000)
	tickerID := apptest.SeedTicker(t, db, "AAPL", "Apple Inc.")
	tradeID := apptest.SeedTrade(t, db, accountID, tickerID, "CASH_SECURED_PUT", "assigned", "2025-01-10")

	err := db.WithTx(func(tx *sql.Tx) error {
		found, err := repo.HasEntryWithPrefixTx(tx, tradeID, AssignmentPrefix)
		require.NoError(t, err)
		assert.False(t, found)
		return nil
	})
	require.NoError(t, err)

	appendEntry(t, repo, db, Entry{
		AccountID: accountID, TickerID: tickerID, TradeID: &tradeID,
		Date: "2025-02-21", Description: "ASSIGNED 100 AAPL @ 240",
		SharesDelta: 100, PerShare: 240, AmountDelta: 24000,
	})

	err = db.WithTx(func(tx *sql.Tx) error {
		found, err := repo.HasEntryWithPrefixTx(tx, tradeID, AssignmentPrefix)
		require.NoError(t, err)
		assert.True(t, found)
		return nil
	})
	require.NoError(t, err)
}

func TestHasEntryWithMarker(t *testing.T) {
	repo, db, cleanup := newRepo(t)
	defer cleanup()

	accountID := apptest.SeedAccount(t, db, "main", 10000)
	tickerID := apptest.SeedTicker(t, db, "AAPL", "Apple Inc.")
	tradeID := apptest.SeedTrade(t, db, accountID, tickerID, "CASH_SECURED_PUT", "open", "2025-01-10")

	// A plain option open shares the SELL prefix but carries no marker.
	appendEntry(t, repo, db, Entry{
		AccountID: accountID, TickerID: tickerID, TradeID: &tradeID,
		Date: "2025-01-10", Description: "SELL -1 AAPL 100 21-FEB-25 240.00 PUT @2.50",
		SharesDelta: 0, PerShare: 2.50, AmountDelta: -250,
	})

	err := db.WithTx(func(tx *sql.Tx) error {
		found, err := repo.HasEntryWithMarkerTx(tx, tradeID, RollMarker)
		require.NoError(t, err)
		assert.False(t, found)
		return nil
	})
	require.NoError(t, err)

	appendEntry(t, repo, db, Entry{
		AccountID: accountID, TickerID: tickerID, TradeID: &tradeID,
		Date: "2025-02-21", Description: "SELL -1 DIAGONAL AAPL 100 21-MAR-25/21-FEB-25 235.00/240.00 PUT @ 1.80",
		SharesDelta: 0, PerShare: 1.80, AmountDelta: -180,
	})

	err = db.WithTx(func(tx *sql.Tx) error {
		found, err := repo.HasEntryWithMarkerTx(tx, tradeID, RollMarker)
		require.NoError(t, err)
		assert.True(t, found)
		return nil
	})
	require.NoError(t, err)
}

func TestLinkCashFlowIsWriteOnce(t *testing.T) {
	repo, db, cleanup := newRepo(t)
	defer cleanup()

	accountID := apptest.SeedAccount(t, db, "main", 10000)
	tickerID := apptest.SeedTicker(t, db, "AAPL", "Apple Inc.")

	entry := appendEntry(t, repo, db, Entry{
		AccountID: accountID, TickerID: tickerID,
		Date: "2025-01-10", Description: "SELL 1 PUT AAPL 240",
		SharesDelta: 0, AmountDelta: -250,
	})

	mkFlow := func(desc string) int64 {
		res, err := db.Exec(`
			INSERT INTO cash_flows (account_id, transaction_date, transaction_type, amount, description)
			VALUES (?, '2025-01-10', 'SELL_PUT', 250, ?)
		`, accountID, desc)
		require.NoError(t, err)
		id, err := res.LastInsertId()
		require.NoError(t, err)
		return id
	}
	first := mkFlow("first")
	second := mkFlow("second")

	err := db.WithTx(func(tx *sql.Tx) error {
		if err := repo.LinkCashFlowTx(tx, entry.ID, first); err != nil {
			return err
		}
		return repo.LinkCashFlowTx(tx, entry.ID, second)
	})
	require.NoError(t, err)

	var linked int64
	require.NoError(t, db.QueryRow(`SELECT cash_flow_id FROM cost_basis WHERE id = ?`, entry.ID).Scan(&linked))
	assert.Equal(t, first, linked)
}

func TestServiceSummariesGroupByScope(t *testing.T) {
	repo, db, cleanup := newRepo(t)
	defer cleanup()

	accountID := apptest.SeedAccount(t, db, "main", 10000)
	aaplID := apptest.SeedTicker(t, db, "AAPL", "Apple Inc.")
	msftID := apptest.SeedTicker(t, db, "MSFT", "Microsoft Corporation")

	appendEntry(t, repo, db, Entry{
		AccountID: accountID, TickerID: aaplID,
		Date: "2025-01-10", Description: "SELL 1 PUT AAPL 240",
		SharesDelta: 0, AmountDelta: -250,
	})
	appendEntry(t, repo, db, Entry{
		AccountID: accountID, TickerID: msftID,
		Date: "2025-02-01", Description: "BUY 10 MSFT",
		SharesDelta: 10, PerShare: 50, AmountDelta: 500,
	})

	svc := NewService(repo, zerolog.Nop())
	summaries, err := svc.Summaries(accountID, "")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "AAPL", summaries[0].Symbol)
	assert.Equal(t, "Apple Inc.", summaries[0].CompanyName)
	assert.Equal(t, -250.0, summaries[0].TotalBasis)
	assert.Equal(t, "MSFT", summaries[1].Symbol)
	assert.Equal(t, "Microsoft Corporation", summaries[1].CompanyName)
	assert.Equal(t, int64(10), summaries[1].TotalShares)
	assert.Equal(t, 50.0, summaries[1].BasisPerShare)
}
