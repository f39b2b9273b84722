package cash_flows

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/options-tracker/internal/database"
	"github.com/greenmangroup/options-tracker/internal/domain"
)

// Repository handles cash flow persistence
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new cash flow repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "cash_flows").Logger(),
	}
}

// CreateTx inserts a cash flow inside an open transaction and returns its id
func (r *Repository) CreateTx(tx *sql.Tx, cf *CashFlow) (int64, error) {
	if !cf.Kind.IsValid() {
		return 0, fmt.Errorf("invalid cash flow kind: %q", cf.Kind)
	}

	result, err := tx.Exec(`
		INSERT INTO cash_flows (account_id, transaction_date, transaction_type, amount, description, trade_id, ticker_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, cf.AccountID, cf.Date, string(cf.Kind), cf.Amount, cf.Description,
		nullInt64(cf.TradeID), nullInt64(cf.TickerID))
	if err != nil {
		return 0, fmt.Errorf("failed to create cash flow: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get cash flow id: %w", err)
	}
	cf.ID = id

	r.log.Debug().
		Int64("account_id", cf.AccountID).
		Str("type", string(cf.Kind)).
		Float64("amount", cf.Amount).
		Msg("Cash flow recorded")
	return id, nil
}

// Create inserts a cash flow outside any transaction. Used for manual
// deposits and withdrawals.
func (r *Repository) Create(cf *CashFlow) (int64, error) {
	var id int64
	err := r.db.WithTx(func(tx *sql.Tx) error {
		var err error
		id, err = r.CreateTx(tx, cf)
		return err
	})
	return id, err
}

// ListByAccount returns an account's cash flows newest first, optionally
// filtered by date range and kind.
func (r *Repository) ListByAccount(accountID int64, filter Filter) ([]CashFlow, error) {
	query := `
		SELECT cf.id, cf.account_id, cf.transaction_date, cf.transaction_type,
		       cf.amount, COALESCE(cf.description, ''), cf.trade_id, cf.ticker_id,
		       COALESCE(t.ticker, '')
		FROM cash_flows cf
		LEFT JOIN tickers t ON cf.ticker_id = t.id
		WHERE cf.account_id = ?
	`
	args := []interface{}{accountID}
	if filter.From != "" {
		query += ` AND cf.transaction_date >= ?`
		args = append(args, filter.From)
	}
	if filter.To != "" {
		query += ` AND cf.transaction_date <= ?`
		args = append(args, filter.To)
	}
	if filter.Kind != "" {
		query += ` AND cf.transaction_type = ?`
		args = append(args, string(filter.Kind))
	}
	query += ` ORDER BY cf.transaction_date DESC, cf.id DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cash flows: %w", err)
	}
	defer rows.Close()

	var flows []CashFlow
	for rows.Next() {
		cf, err := scanCashFlow(rows)
		if err != nil {
			return nil, err
		}
		flows = append(flows, *cf)
	}
	return flows, rows.Err()
}

// DeleteByTradeAndKindTx removes the cash flows a lifecycle event created
// for a trade, so the event can be undone.
func (r *Repository) DeleteByTradeAndKindTx(tx *sql.Tx, tradeID int64, kind domain.CashFlowKind) error {
	_, err := tx.Exec(`
		DELETE FROM cash_flows WHERE trade_id = ? AND transaction_type = ?
	`, tradeID, string(kind))
	if err != nil {
		return fmt.Errorf("failed to delete cash flows: %w", err)
	}
	return nil
}

// DeleteTx removes a single cash flow by id
func (r *Repository) DeleteTx(tx *sql.Tx, id int64) error {
	_, err := tx.Exec(`DELETE FROM cash_flows WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cash flow: %w", err)
	}
	return nil
}

// Delete removes a manual cash flow by id, restricted to deposit and
// withdrawal entries. Trade-generated flows are managed by their trade's
// lifecycle transitions.
func (r *Repository) Delete(id int64) error {
	return r.db.WithTx(func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			DELETE FROM cash_flows
			WHERE id = ? AND transaction_type IN (?, ?)
		`, id, string(domain.FlowDeposit), string(domain.FlowWithdrawal))
		if err != nil {
			return fmt.Errorf("failed to delete cash flow: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("cash flow %d not found or not manually deletable", id)
		}
		return nil
	})
}

// NetPremiums returns the sum of premium-style flows for an account:
// SELL_PUT, SELL_CALL, PREMIUM_CREDIT and PREMIUM_DEBIT. Empty bounds
// leave that side of the date window open.
func (r *Repository) NetPremiums(accountID int64, from, to string) (float64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0) FROM cash_flows
		WHERE account_id = ?
		  AND transaction_type IN ('SELL_PUT', 'SELL_CALL', 'PREMIUM_CREDIT', 'PREMIUM_DEBIT')
	`
	args := []interface{}{accountID}
	if from != "" {
		query += ` AND transaction_date >= ?`
		args = append(args, from)
	}
	if to != "" {
		query += ` AND transaction_date <= ?`
		args = append(args, to)
	}

	var total float64
	if err := r.db.QueryRow(query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum premiums: %w", err)
	}
	return total, nil
}

// NetDeposits returns deposits minus withdrawals for an account. The signed
// amounts make this a plain sum.
func (r *Repository) NetDeposits(accountID int64) (float64, error) {
	var total float64
	err := r.db.QueryRow(`
		SELECT COALESCE(SUM(amount), 0) FROM cash_flows
		WHERE account_id = ? AND transaction_type IN ('DEPOSIT', 'WITHDRAWAL')
	`, accountID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum deposits: %w", err)
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCashFlow(row rowScanner) (*CashFlow, error) {
	var cf CashFlow
	var kind string
	var tradeID, tickerID sql.NullInt64
	if err := row.Scan(&cf.ID, &cf.AccountID, &cf.Date, &kind,
		&cf.Amount, &cf.Description, &tradeID, &tickerID, &cf.Symbol); err != nil {
		return nil, fmt.Errorf("failed to scan cash flow: %w", err)
	}
	cf.Kind = domain.CashFlowKind(kind)
	if tradeID.Valid {
		cf.TradeID = &tradeID.Int64
	}
	if tickerID.Valid {
		cf.TickerID = &tickerID.Int64
	}
	return &cf, nil
}

func nullInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
