package accounts

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/options-tracker/internal/database"
)

// ErrAccountHasTrades is returned when deleting an account that trades
// still reference.
var ErrAccountHasTrades = errors.New("account has trades and cannot be deleted")

// Repository handles account database operations
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new account repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "accounts").Logger(),
	}
}

// Create inserts a new account and returns its id
func (r *Repository) Create(account *Account) (int64, error) {
	if err := account.Validate(); err != nil {
		return 0, fmt.Errorf("failed to create account: %w", err)
	}

	result, err := r.db.Exec(`
		INSERT INTO accounts (account_name, account_type, start_date, starting_balance)
		VALUES (?, ?, ?, ?)
	`, account.Name, account.Type, nullString(account.StartDate), account.StartingBalance)
	if err != nil {
		return 0, fmt.Errorf("failed to create account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get account id: %w", err)
	}

	r.log.Info().Str("account", account.Name).Int64("id", id).Msg("Account created")
	return id, nil
}

// Get retrieves an account by id, returning nil when not found
func (r *Repository) Get(id int64) (*Account, error) {
	row := r.db.QueryRow(`
		SELECT id, account_name, account_type, COALESCE(start_date, ''), starting_balance
		FROM accounts WHERE id = ?
	`, id)

	var a Account
	var startDate string
	err := row.Scan(&a.ID, &a.Name, &a.Type, &startDate, &a.StartingBalance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	a.StartDate = startDate
	return &a, nil
}

// List retrieves all accounts ordered by name
func (r *Repository) List() ([]Account, error) {
	rows, err := r.db.Query(`
		SELECT id, account_name, account_type, COALESCE(start_date, ''), starting_balance
		FROM accounts ORDER BY account_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.StartDate, &a.StartingBalance); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Delete removes an account. Fails with ErrAccountHasTrades while any trade
// references it.
func (r *Repository) Delete(id int64) error {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM trades WHERE account_id = ?`, id).Scan(&count); err != nil {
		return fmt.Errorf("failed to count account trades: %w", err)
	}
	if count > 0 {
		return ErrAccountHasTrades
	}

	if _, err := r.db.Exec(`DELETE FROM accounts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	r.log.Info().Int64("id", id).Msg("Account deleted")
	return nil
}

// StartingBalance returns the account's starting balance, 0 when the account
// does not exist.
func (r *Repository) StartingBalance(id int64) (float64, error) {
	var balance float64
	err := r.db.QueryRow(`
		SELECT COALESCE(starting_balance, 0) FROM accounts WHERE id = ?
	`, id).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get starting balance: %w", err)
	}
	return balance, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
