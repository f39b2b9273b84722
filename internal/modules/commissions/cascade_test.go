package commissions

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenmangroup/options-tracker/internal/database"
	"github.com/greenmangroup/options-tracker/internal/domain"
	"github.com/greenmangroup/options-tracker/internal/modules/trading"
	apptest "github.com/greenmangroup/options-tracker/internal/testing"
)

type cascadeFixture struct {
	db      *database.DB
	rates   *Repository
	trades  *trading.Repository
	cascade *Cascade

	accountID int64
	tickerID  int64
}

func newCascadeFixture(t *testing.T) (*cascadeFixture, func()) {
	t.Helper()
	db, cleanup := apptest.NewTestDB(t)
	log := zerolog.Nop()

	rates := NewRepository(db, log)
	tradeRepo := trading.NewRepository(db, log)
	return &cascadeFixture{
		db:        db,
		rates:     rates,
		trades:    tradeRepo,
		cascade:   NewCascade(db, rates, tradeRepo, log),
		accountID: apptest.SeedAccount(t, db, "main", 25000),
		tickerID:  apptest.SeedTicker(t, db, "AAPL", "Apple Inc."),
	}, cleanup
}

func (f *cascadeFixture) insertPut(t *testing.T, tradeDate string, commission float64) int64 {
	t.Helper()
	trade := &trading.Trade{
		AccountID:     f.accountID,
		TickerID:      f.tickerID,
		Kind:          domain.KindCashSecuredPut,
		Status:        domain.StatusOpen,
		TradeDate:     tradeDate,
		Expiration:    "2025-12-19",
		Quantity:      1,
		CreditDebit:   2.50,
		Strike:        245.00,
		MarginPercent: 100,
		Commission:    commission,
		DTE:           30,
	}
	trade.Recompute()

	err := f.db.WithTx(func(tx *sql.Tx) error {
		_, err := f.trades.CreateTx(tx, trade)
		return err
	})
	require.NoError(t, err)
	return trade.ID
}

func TestRecalculateRefreshesTradesFromEffectiveDate(t *testing.T) {
	f, cleanup := newCascadeFixture(t)
	defer cleanup()

	// Both trades entered while no rate existed (commission 0).
	before := f.insertPut(t, "2025-01-15", 0)
	after := f.insertPut(t, "2025-03-15", 0)

	_, err := f.rates.Create(&CommissionRate{
		AccountID: f.accountID, Rate: 1.00, EffectiveDate: "2025-02-01",
	})
	require.NoError(t, err)

	updated, err := f.cascade.Recalculate(f.accountID, "2025-02-01")
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	// The earlier trade keeps its commission-free metrics.
	got, err := f.trades.Get(before)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Commission)
	require.NotNil(t, got.NetCreditPerShare)
	assert.Equal(t, 2.50, *got.NetCreditPerShare)

	got, err = f.trades.Get(after)
	require.NoError(t, err)
	assert.Equal(t, 1.00, got.Commission)
	require.NotNil(t, got.NetCreditPerShare)
	assert.Equal(t, 1.50, *got.NetCreditPerShare)
	require.NotNil(t, got.RiskCapitalPerShare)
	assert.Equal(t, 243.50, *got.RiskCapitalPerShare)
	require.NotNil(t, got.MarginCapital)
	assert.Equal(t, 24350.00, *got.MarginCapital)
}

func TestRecalculateIsIdempotent(t *testing.T) {
	f, cleanup := newCascadeFixture(t)
	defer cleanup()

	id := f.insertPut(t, "2025-03-15", 0)
	_, err := f.rates.Create(&CommissionRate{
		AccountID: f.accountID, Rate: 0.65, EffectiveDate: "2025-01-01",
	})
	require.NoError(t, err)

	_, err = f.cascade.Recalculate(f.accountID, "2025-01-01")
	require.NoError(t, err)
	first, err := f.trades.Get(id)
	require.NoError(t, err)

	_, err = f.cascade.Recalculate(f.accountID, "2025-01-01")
	require.NoError(t, err)
	second, err := f.trades.Get(id)
	require.NoError(t, err)

	assert.Equal(t, first.Commission, second.Commission)
	assert.Equal(t, *first.NetCreditPerShare, *second.NetCreditPerShare)
	assert.Equal(t, *first.RiskCapitalPerShare, *second.RiskCapitalPerShare)
	assert.Equal(t, *first.MarginCapital, *second.MarginCapital)
	assert.Equal(t, *first.ARORC, *second.ARORC)
}

func TestRecalculateEmptyAccount(t *testing.T) {
	f, cleanup := newCascadeFixture(t)
	defer cleanup()

	updated, err := f.cascade.Recalculate(f.accountID, "2025-01-01")
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestRecalculateLeavesLedgerAlone(t *testing.T) {
	f, cleanup := newCascadeFixture(t)
	defer cleanup()

	tradeID := f.insertPut(t, "2025-03-15", 0)
	_, err := f.db.Exec(`
		INSERT INTO cost_basis
		(account_id, ticker_id, trade_id, transaction_date, seq, description,
		 shares, cost_per_share, total_amount, running_basis, running_shares, basis_per_share)
		VALUES (?, ?, ?, '2025-03-15', 1, 'SELL 1 PUT AAPL 245.00 19-DEC-25',
		 0, 2.50, -250, -250, 0, -250)
	`, f.accountID, f.tickerID, tradeID)
	require.NoError(t, err)

	_, err = f.rates.Create(&CommissionRate{
		AccountID: f.accountID, Rate: 1.00, EffectiveDate: "2025-01-01",
	})
	require.NoError(t, err)
	_, err = f.cascade.Recalculate(f.accountID, "2025-01-01")
	require.NoError(t, err)

	var basis float64
	require.NoError(t, f.db.QueryRow(`SELECT running_basis FROM cost_basis WHERE trade_id = ?`, tradeID).Scan(&basis))
	assert.Equal(t, -250.0, basis)
}
