package reports

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenmangroup/options-tracker/internal/database"
	"github.com/greenmangroup/options-tracker/internal/domain"
	"github.com/greenmangroup/options-tracker/internal/modules/accounts"
	"github.com/greenmangroup/options-tracker/internal/modules/cash_flows"
	apptest "github.com/greenmangroup/options-tracker/internal/testing"
)

func newService(t *testing.T) (*Service, *database.DB, func()) {
	t.Helper()
	db, cleanup := apptest.NewTestDB(t)
	accountsRepo := accounts.NewRepository(db, zerolog.Nop())
	flows := cash_flows.NewRepository(db, zerolog.Nop())
	return NewService(db, accountsRepo, flows, zerolog.Nop()), db, cleanup
}

func insertPut(t *testing.T, db *database.DB, accountID, tickerID int64, status string, net, margin, arorc float64) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO trades
		(account_id, ticker_id, trade_kind, status, trade_date, quantity,
		 credit_debit, strike_price, net_credit_per_share, margin_capital, arorc)
		VALUES (?, ?, 'CASH_SECURED_PUT', ?, '2025-01-10', 1, ?, 245, ?, ?, ?)
	`, accountID, tickerID, status, net+1.0, net, margin, arorc)
	require.NoError(t, err)
}

func insertFlow(t *testing.T, db *database.DB, accountID int64, date, kind string, amount float64) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO cash_flows (account_id, transaction_date, transaction_type, amount)
		VALUES (?, ?, ?, ?)
	`, accountID, date, kind, amount)
	require.NoError(t, err)
}

func TestBankrollSummary(t *testing.T) {
	svc, db, cleanup := newService(t)
	defer cleanup()

	accountID := apptest.SeedAccount(t, db, "main", 25000)
	tickerID := apptest.SeedTicker(t, db, "AAPL", "Apple Inc.")

	insertFlow(t, db, accountID, "2025-01-05", "DEPOSIT", 5000)
	insertFlow(t, db, accountID, "2025-01-20", "WITHDRAWAL", -1000)
	insertFlow(t, db, accountID, "2025-01-10", "SELL_PUT", 250)
	insertFlow(t, db, accountID, "2025-02-15", "PREMIUM_CREDIT", 210)

	insertPut(t, db, accountID, tickerID, "open", 1.50, 24350, 7.5)
	insertPut(t, db, accountID, tickerID, "expired", 2.10, 23790, 8.1)

	summary, err := svc.Bankroll(accountID, "", "", "")
	require.NoError(t, err)

	assert.Equal(t, 25000.0, summary.StartingBalance)
	assert.Equal(t, 4000.0, summary.NetDeposits)
	assert.Equal(t, 460.0, summary.NetPremiums)
	// Only the open trade's margin stays committed.
	assert.Equal(t, 24350.0, summary.MarginCapitalInUse)
	assert.Equal(t, 25000.0+4000.0+460.0-24350.0, summary.Available)

	require.Len(t, summary.ByKind, 1)
	assert.Equal(t, "CASH_SECURED_PUT", summary.ByKind[0].Kind)
	assert.Equal(t, 1, summary.ByKind[0].OpenTrades)
}

func TestBankrollDateRange(t *testing.T) {
	svc, db, cleanup := newService(t)
	defer cleanup()

	accountID := apptest.SeedAccount(t, db, "main", 10000)
	insertFlow(t, db, accountID, "2025-01-10", "SELL_PUT", 250)
	insertFlow(t, db, accountID, "2025-03-10", "SELL_PUT", 300)

	summary, err := svc.Bankroll(accountID, "2025-03-01", "2025-03-31", "")
	require.NoError(t, err)
	assert.Equal(t, 300.0, summary.NetPremiums)
}

func TestTradeStats(t *testing.T) {
	svc, db, cleanup := newService(t)
	defer cleanup()

	accountID := apptest.SeedAccount(t, db, "main", 25000)
	tickerID := apptest.SeedTicker(t, db, "AAPL", "Apple Inc.")

	insertPut(t, db, accountID, tickerID, "expired", 1.50, 24350, 7.5)
	insertPut(t, db, accountID, tickerID, "expired", 2.50, 23000, 9.0)
	insertPut(t, db, accountID, tickerID, "assigned", 1.00, 24000, 6.0)
	insertPut(t, db, accountID, tickerID, "open", 2.00, 24500, 7.5)

	summary, err := svc.TradeStats(accountID)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalTrades)
	assert.Equal(t, 1, summary.OpenTrades)
	assert.Equal(t, 2, summary.Wins)
	assert.Equal(t, 1, summary.Losses)
	assert.Equal(t, domain.Round1(2.0/3.0*100), summary.WinRate)

	// Premiums: 150, 250, 100, 200 across all credit trades.
	assert.Equal(t, 700.0, summary.TotalPremiums)
	assert.Equal(t, 175.0, summary.MeanPremium)
	assert.Greater(t, summary.StdDevPremium, 0.0)
	assert.Equal(t, 7.5, summary.MeanARORC)
}

func TestTradeStatsEmptyAccount(t *testing.T) {
	svc, db, cleanup := newService(t)
	defer cleanup()

	accountID := apptest.SeedAccount(t, db, "main", 1000)
	summary, err := svc.TradeStats(accountID)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalTrades)
	assert.Zero(t, summary.WinRate)
	assert.Zero(t, summary.MeanPremium)
}

func TestPremiumChart(t *testing.T) {
	svc, db, cleanup := newService(t)
	defer cleanup()

	accountID := apptest.SeedAccount(t, db, "main", 10000)
	insertFlow(t, db, accountID, "2025-01-10", "SELL_PUT", 250)
	insertFlow(t, db, accountID, "2025-01-25", "SELL_CALL", 120)
	insertFlow(t, db, accountID, "2025-02-15", "PREMIUM_CREDIT", 210)
	insertFlow(t, db, accountID, "2025-02-20", "DEPOSIT", 5000)

	points, err := svc.PremiumChart(accountID)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2025-01", points[0].Month)
	assert.Equal(t, 370.0, points[0].Premiums)
	assert.Equal(t, "2025-02", points[1].Month)
	assert.Equal(t, 210.0, points[1].Premiums)
}
