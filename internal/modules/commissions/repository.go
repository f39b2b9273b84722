package commissions

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/options-tracker/internal/database"
)

// Repository handles commission database operations
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new commission repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "commissions").Logger(),
	}
}

// ResolveRate returns the commission rate in effect for an account on a
// date: the most recent rate with effective_date <= date, or 0.0 when the
// account has no rate yet. Resolution is a total function; "no rate" is not
// an error.
func (r *Repository) ResolveRate(accountID int64, date string) (float64, error) {
	var rate float64
	err := r.db.QueryRow(`
		SELECT commission_rate
		FROM commissions
		WHERE account_id = ? AND effective_date <= ?
		ORDER BY effective_date DESC
		LIMIT 1
	`, accountID, date).Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		return 0.0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve commission rate: %w", err)
	}
	return rate, nil
}

// Create inserts a new commission rate and returns its id
func (r *Repository) Create(rate *CommissionRate) (int64, error) {
	if err := rate.Validate(); err != nil {
		return 0, fmt.Errorf("failed to create commission rate: %w", err)
	}

	result, err := r.db.Exec(`
		INSERT INTO commissions (account_id, commission_rate, effective_date, notes)
		VALUES (?, ?, ?, ?)
	`, rate.AccountID, rate.Rate, rate.EffectiveDate, rate.Notes)
	if err != nil {
		return 0, fmt.Errorf("failed to create commission rate: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get commission rate id: %w", err)
	}

	r.log.Info().
		Int64("account_id", rate.AccountID).
		Float64("rate", rate.Rate).
		Str("effective_date", rate.EffectiveDate).
		Msg("Commission rate created")
	return id, nil
}

// Get retrieves a commission rate by id, nil when not found
func (r *Repository) Get(id int64) (*CommissionRate, error) {
	row := r.db.QueryRow(`
		SELECT id, account_id, commission_rate, effective_date, COALESCE(notes, '')
		FROM commissions WHERE id = ?
	`, id)

	var c CommissionRate
	err := row.Scan(&c.ID, &c.AccountID, &c.Rate, &c.EffectiveDate, &c.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get commission rate: %w", err)
	}
	return &c, nil
}

// ListByAccount retrieves an account's rates, most recent first
func (r *Repository) ListByAccount(accountID int64) ([]CommissionRate, error) {
	rows, err := r.db.Query(`
		SELECT id, account_id, commission_rate, effective_date, COALESCE(notes, '')
		FROM commissions
		WHERE account_id = ?
		ORDER BY effective_date DESC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list commission rates: %w", err)
	}
	defer rows.Close()

	var rates []CommissionRate
	for rows.Next() {
		var c CommissionRate
		if err := rows.Scan(&c.ID, &c.AccountID, &c.Rate, &c.EffectiveDate, &c.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan commission rate: %w", err)
		}
		rates = append(rates, c)
	}
	return rates, rows.Err()
}

// Update rewrites a rate's value, effective date and notes
func (r *Repository) Update(rate *CommissionRate) error {
	if err := rate.Validate(); err != nil {
		return fmt.Errorf("failed to update commission rate: %w", err)
	}

	_, err := r.db.Exec(`
		UPDATE commissions SET commission_rate = ?, effective_date = ?, notes = ?
		WHERE id = ?
	`, rate.Rate, rate.EffectiveDate, rate.Notes, rate.ID)
	if err != nil {
		return fmt.Errorf("failed to update commission rate: %w", err)
	}
	return nil
}

// Delete removes a commission rate
func (r *Repository) Delete(id int64) error {
	if _, err := r.db.Exec(`DELETE FROM commissions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete commission rate: %w", err)
	}
	return nil
}
