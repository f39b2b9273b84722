package cash_flows

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenmangroup/options-tracker/internal/database"
	"github.com/greenmangroup/options-tracker/internal/domain"
	apptest "github.com/greenmangroup/options-tracker/internal/testing"
)

func newRepo(t *testing.T) (*Repository, *database.DB, func()) {
	t.Helper()
	db, cleanup := apptest.NewTestDB(t)
	return NewRepository(db, zerolog.Nop()), db, cleanup
}

func TestCreateAndList(t *testing.T) {
	repo, db, cleanup := newRepo(t)
	defer cleanup()

	accountID := apptest.SeedAccount(t, db, "main", 10000)

	_, err := repo.Create(&CashFlow{
		AccountID: accountID, Date: "2025-01-05",
		Kind: domain.FlowDeposit, Amount: 5000, Description: "initial funding",
	})
	require.NoError(t, err)
	_, err = repo.Create(&CashFlow{
		AccountID: accountID, Date: "2025-01-20",
		Kind: domain.FlowWithdrawal, Amount: -1000,
	})
	require.NoError(t, err)

	flows, err := repo.ListByAccount(accountID, Filter{})
	require.NoError(t, err)
	require.Len(t, flows, 2)
	// Newest first
	assert.Equal(t, domain.FlowWithdrawal, flows[0].Kind)
	assert.Equal(t, -1000.0, flows[0].Amount)
	assert.Equal(t, "initial funding", flows[1].Description)
}

func TestListFilters(t *testing.T) {
	repo, db, cleanup := newRepo(t)
	defer cleanup()

	accountID := apptest.SeedAccount(t, db, "main", 10000)
	for _, cf := range []CashFlow{
		{AccountID: accountID, Date: "2025-01-05", Kind: domain.FlowDeposit, Amount: 5000},
		{AccountID: accountID, Date: "2025-02-10", Kind: domain.FlowSellPut, Amount: 250},
		{AccountID: accountID, Date: "2025-03-15", Kind: domain.FlowWithdrawal, Amount: -500},
	} {
		cf := cf
		_, err := repo.Create(&cf)
		require.NoError(t, err)
	}

	flows, err := repo.ListByAccount(accountID, Filter{From: "2025-02-01", To: "2025-02-28"})
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, domain.FlowSellPut, flows[0].Kind)

	flows, err = repo.ListByAccount(accountID, Filter{Kind: domain.FlowDeposit})
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, 5000.0, flows[0].Amount)
}

func TestCreateRejectsUnknownKind(t *testing.T) {
	repo, db, cleanup := newRepo(t)
	defer cleanup()

	accountID := apptest.SeedAccount(t, db, "main", 10000)
	_, err := repo.Create(&CashFlow{
		AccountID: accountID, Date: "2025-01-05",
		Kind: domain.CashFlowKind("DIVIDEND"), Amount: 100,
	})
	assert.Error(t, err)
}

func TestDeleteRestrictedToManualFlows(t *testing.T) {
	repo, db, cleanup := newRepo(t)
	defer cleanup()

	accountID := apptest.SeedAccount(t, db, "main", 10000)
	tickerID := apptest.SeedTicker(t, db, "AAPL", "Apple Inc.")
	tradeID := apptest.SeedTrade(t, db, accountID, tickerID, "CASH_SECURED_PUT", "open", "2025-01-10")

	depositID, err := repo.Create(&CashFlow{
		AccountID: accountID, Date: "2025-01-05", Kind: domain.FlowDeposit, Amount: 5000,
	})
	require.NoError(t, err)

	var premiumID int64
	err = db.WithTx(func(tx *sql.Tx) error {
		var err error
		premiumID, err = repo.CreateTx(tx, &CashFlow{
			AccountID: accountID, Date: "2025-01-10",
			Kind: domain.FlowSellPut, Amount: 250, TradeID: &tradeID, TickerID: &tickerID,
		})
		return err
	})
	require.NoError(t, err)

	assert.NoError(t, repo.Delete(depositID))
	assert.Error(t, repo.Delete(premiumID))
}

func TestDeleteByTradeAndKind(t *testing.T) {
	repo, db, cleanup := newRepo(t)
	defer cleanup()

	accountID := apptest.SeedAccount(t, db, "main", 10000)
	tickerID := apptest.SeedTicker(t, db, "AAPL", "Apple Inc.")
	tradeID := apptest.SeedTrade(t, db, accountID, tickerID, "CASH_SECURED_PUT", "assigned", "2025-01-10")

	err := db.WithTx(func(tx *sql.Tx) error {
		for _, cf := range []CashFlow{
			{AccountID: accountID, Date: "2025-01-10", Kind: domain.FlowSellPut, Amount: 250, TradeID: &tradeID},
			{AccountID: accountID, Date: "2025-02-21", Kind: domain.FlowAssignment, Amount: -24000, TradeID: &tradeID},
		} {
			cf := cf
			if _, err := repo.CreateTx(tx, &cf); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = db.WithTx(func(tx *sql.Tx) error {
		return repo.DeleteByTradeAndKindTx(tx, tradeID, domain.FlowAssignment)
	})
	require.NoError(t, err)

	flows, err := repo.ListByAccount(accountID, Filter{})
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, domain.FlowSellPut, flows[0].Kind)
}

func TestTotals(t *testing.T) {
	repo, db, cleanup := newRepo(t)
	defer cleanup()

	accountID := apptest.SeedAccount(t, db, "main", 10000)
	for _, cf := range []CashFlow{
		{AccountID: accountID, Date: "2025-01-05", Kind: domain.FlowDeposit, Amount: 5000},
		{AccountID: accountID, Date: "2025-01-20", Kind: domain.FlowWithdrawal, Amount: -1500},
		{AccountID: accountID, Date: "2025-02-10", Kind: domain.FlowSellPut, Amount: 250},
		{AccountID: accountID, Date: "2025-03-01", Kind: domain.FlowPremiumDebit, Amount: -80},
	} {
		cf := cf
		_, err := repo.Create(&cf)
		require.NoError(t, err)
	}

	premiums, err := repo.NetPremiums(accountID, "", "")
	require.NoError(t, err)
	assert.Equal(t, 170.0, premiums)

	// Date bounds narrow the premium window.
	premiums, err = repo.NetPremiums(accountID, "2025-03-01", "")
	require.NoError(t, err)
	assert.Equal(t, -80.0, premiums)
	premiums, err = repo.NetPremiums(accountID, "", "2025-02-28")
	require.NoError(t, err)
	assert.Equal(t, 250.0, premiums)

	deposits, err := repo.NetDeposits(accountID)
	require.NoError(t, err)
	assert.Equal(t, 3500.0, deposits)
}
