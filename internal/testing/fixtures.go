package testing

import (
	"testing"

	"github.com/greenmangroup/options-tracker/internal/database"
)

// SeedAccount inserts an account and returns its id
func SeedAccount(t *testing.T, db *database.DB, name string, startingBalance float64) int64 {
	t.Helper()

	result, err := db.Exec(`
		INSERT INTO accounts (account_name, account_type, start_date, starting_balance)
		VALUES (?, 'PRIMARY', '2024-01-01', ?)
	`, name, startingBalance)
	if err != nil {
		t.Fatalf("Failed to seed account %s: %v", name, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get seeded account id: %v", err)
	}
	return id
}

// SeedTicker inserts a ticker and returns its id
func SeedTicker(t *testing.T, db *database.DB, symbol, companyName string) int64 {
	t.Helper()

	result, err := db.Exec(`
		INSERT INTO tickers (ticker, company_name) VALUES (?, ?)
	`, symbol, companyName)
	if err != nil {
		t.Fatalf("Failed to seed ticker %s: %v", symbol, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get seeded ticker id: %v", err)
	}
	return id
}

// SeedTrade inserts a minimal trade row and returns its id. Derived metric
// columns are left at their defaults; tests that need them set them via the
// trading repository.
func SeedTrade(t *testing.T, db *database.DB, accountID, tickerID int64, kind, status, tradeDate string) int64 {
	t.Helper()

	result, err := db.Exec(`
		INSERT INTO trades (account_id, ticker_id, trade_kind, status, trade_date, quantity, credit_debit)
		VALUES (?, ?, ?, ?, ?, 1, 0)
	`, accountID, tickerID, kind, status, tradeDate)
	if err != nil {
		t.Fatalf("Failed to seed trade: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get seeded trade id: %v", err)
	}
	return id
}
