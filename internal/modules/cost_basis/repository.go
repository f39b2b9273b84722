package cost_basis

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/options-tracker/internal/database"
)

// Repository handles cost-basis ledger database operations
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new cost-basis repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "cost_basis").Logger(),
	}
}

// AppendTx inserts a new ledger entry for a (account, ticker) scope inside
// an open transaction and recomputes the scope's running totals. The entry
// receives the next seq for its scope; the returned entry carries its id and
// running totals.
func (r *Repository) AppendTx(tx *sql.Tx, entry Entry) (*Entry, error) {
	var nextSeq int64
	err := tx.QueryRow(`
		SELECT COALESCE(MAX(seq), 0) + 1 FROM cost_basis
		WHERE account_id = ? AND ticker_id = ?
	`, entry.AccountID, entry.TickerID).Scan(&nextSeq)
	if err != nil {
		return nil, fmt.Errorf("failed to get next ledger sequence: %w", err)
	}
	entry.Seq = nextSeq

	result, err := tx.Exec(`
		INSERT INTO cost_basis
		(account_id, ticker_id, trade_id, cash_flow_id, transaction_date, seq,
		 description, shares, cost_per_share, total_amount,
		 running_basis, running_shares, basis_per_share)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, 0)
	`, entry.AccountID, entry.TickerID, nullInt64(entry.TradeID), nullInt64(entry.CashFlowID),
		entry.Date, entry.Seq, entry.Description, entry.SharesDelta, entry.PerShare, entry.AmountDelta)
	if err != nil {
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry id: %w", err)
	}
	entry.ID = id

	if err := r.RecomputeScopeTx(tx, entry.AccountID, entry.TickerID); err != nil {
		return nil, err
	}

	row := tx.QueryRow(`
		SELECT running_basis, running_shares, basis_per_share
		FROM cost_basis WHERE id = ?
	`, id)
	if err := row.Scan(&entry.RunningBasis, &entry.RunningShares, &entry.BasisPerShare); err != nil {
		return nil, fmt.Errorf("failed to read back ledger entry: %w", err)
	}

	r.log.Debug().
		Int64("account_id", entry.AccountID).
		Int64("ticker_id", entry.TickerID).
		Str("description", entry.Description).
		Float64("amount", entry.AmountDelta).
		Msg("Ledger entry appended")
	return &entry, nil
}

// RecomputeScopeTx rebuilds the running totals of every entry in a
// (account, ticker) scope as a prefix sum over (transaction_date, seq)
// ascending. basis_per_share is basis/shares, or the running basis itself
// while net shares are zero.
func (r *Repository) RecomputeScopeTx(tx *sql.Tx, accountID, tickerID int64) error {
	rows, err := tx.Query(`
		SELECT id, shares, total_amount, running_basis, running_shares, basis_per_share
		FROM cost_basis
		WHERE account_id = ? AND ticker_id = ?
		ORDER BY transaction_date ASC, seq ASC
	`, accountID, tickerID)
	if err != nil {
		return fmt.Errorf("failed to read ledger scope: %w", err)
	}

	type update struct {
		id            int64
		basis         float64
		shares        int64
		basisPerShare float64
	}

	var updates []update
	var runningBasis float64
	var runningShares int64
	for rows.Next() {
		var id, shares, storedShares int64
		var amount, storedBasis, storedBPS float64
		if err := rows.Scan(&id, &shares, &amount, &storedBasis, &storedShares, &storedBPS); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan ledger entry: %w", err)
		}

		runningBasis += amount
		runningShares += shares

		basisPerShare := runningBasis
		if runningShares != 0 {
			basisPerShare = runningBasis / float64(runningShares)
		}

		if storedBasis != runningBasis || storedShares != runningShares || storedBPS != basisPerShare {
			updates = append(updates, update{id, runningBasis, runningShares, basisPerShare})
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("failed to iterate ledger scope: %w", err)
	}
	rows.Close()

	for _, u := range updates {
		if _, err := tx.Exec(`
			UPDATE cost_basis SET running_basis = ?, running_shares = ?, basis_per_share = ?
			WHERE id = ?
		`, u.basis, u.shares, u.basisPerShare, u.id); err != nil {
			return fmt.Errorf("failed to update running totals: %w", err)
		}
	}
	return nil
}

// LinkCashFlowTx sets the write-once link from a ledger entry to its cash
// flow. A link that is already set is left untouched.
func (r *Repository) LinkCashFlowTx(tx *sql.Tx, entryID, cashFlowID int64) error {
	_, err := tx.Exec(`
		UPDATE cost_basis SET cash_flow_id = ?
		WHERE id = ? AND cash_flow_id IS NULL
	`, cashFlowID, entryID)
	if err != nil {
		return fmt.Errorf("failed to link cash flow: %w", err)
	}
	return nil
}

// HasEntryWithPrefixTx reports whether a trade already has a ledger entry
// whose description starts with the given marker. Used as the idempotency
// guard for assignment entries.
func (r *Repository) HasEntryWithPrefixTx(tx *sql.Tx, tradeID int64, prefix string) (bool, error) {
	return r.hasEntryLikeTx(tx, tradeID, prefix+"%")
}

// HasEntryWithMarkerTx reports whether a trade already has a ledger entry
// whose description contains the given marker anywhere. Used as the
// idempotency guard for roll-diagonal entries, whose descriptions share
// their prefix with plain option opens.
func (r *Repository) HasEntryWithMarkerTx(tx *sql.Tx, tradeID int64, marker string) (bool, error) {
	return r.hasEntryLikeTx(tx, tradeID, "%"+marker+"%")
}

func (r *Repository) hasEntryLikeTx(tx *sql.Tx, tradeID int64, pattern string) (bool, error) {
	var exists int
	err := tx.QueryRow(`
		SELECT 1 FROM cost_basis
		WHERE trade_id = ? AND description LIKE ?
		LIMIT 1
	`, tradeID, pattern).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check ledger entry: %w", err)
	}
	return true, nil
}

// DeleteAssignmentTx removes the single ledger entry created when a trade
// was assigned and recomputes downstream running totals. Returns the id of
// the linked cash flow when one was attached, 0 otherwise.
func (r *Repository) DeleteAssignmentTx(tx *sql.Tx, tradeID int64) (int64, error) {
	var accountID, tickerID int64
	var cashFlowID sql.NullInt64
	err := tx.QueryRow(`
		SELECT account_id, ticker_id, cash_flow_id FROM cost_basis
		WHERE trade_id = ? AND description LIKE ? || '%'
	`, tradeID, AssignmentPrefix).Scan(&accountID, &tickerID, &cashFlowID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find assignment entry: %w", err)
	}

	_, err = tx.Exec(`
		DELETE FROM cost_basis
		WHERE trade_id = ? AND description LIKE ? || '%'
	`, tradeID, AssignmentPrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to delete assignment entry: %w", err)
	}

	if err := r.RecomputeScopeTx(tx, accountID, tickerID); err != nil {
		return 0, err
	}

	if cashFlowID.Valid {
		return cashFlowID.Int64, nil
	}
	return 0, nil
}

// ListEntries returns ledger entries joined with ticker symbol and owning
// trade status, optionally filtered by account and/or symbol, ordered by
// symbol then (date, seq).
func (r *Repository) ListEntries(accountID int64, symbol string) ([]Entry, error) {
	query := `
		SELECT cb.id, cb.account_id, cb.ticker_id, cb.trade_id, cb.cash_flow_id,
		       cb.transaction_date, cb.seq, cb.description, cb.shares,
		       cb.cost_per_share, cb.total_amount,
		       cb.running_basis, cb.running_shares, cb.basis_per_share,
		       t.ticker, t.company_name, COALESCE(tr.status, '')
		FROM cost_basis cb
		JOIN tickers t ON cb.ticker_id = t.id
		LEFT JOIN trades tr ON cb.trade_id = tr.id
		WHERE 1=1
	`
	var args []interface{}
	if accountID > 0 {
		query += ` AND cb.account_id = ?`
		args = append(args, accountID)
	}
	if symbol != "" {
		query += ` AND t.ticker = ? COLLATE NOCASE`
		args = append(args, symbol)
	}
	query += ` ORDER BY t.ticker, cb.account_id, cb.transaction_date ASC, cb.seq ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var tradeID, cashFlowID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.AccountID, &e.TickerID, &tradeID, &cashFlowID,
			&e.Date, &e.Seq, &e.Description, &e.SharesDelta,
			&e.PerShare, &e.AmountDelta,
			&e.RunningBasis, &e.RunningShares, &e.BasisPerShare,
			&e.Symbol, &e.CompanyName, &e.TradeStatus); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		if tradeID.Valid {
			e.TradeID = &tradeID.Int64
		}
		if cashFlowID.Valid {
			e.CashFlowID = &cashFlowID.Int64
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
