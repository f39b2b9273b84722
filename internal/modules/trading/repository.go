package trading

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/options-tracker/internal/database"
	"github.com/greenmangroup/options-tracker/internal/domain"
)

// RateResolver resolves the commission rate in effect for an account on a
// date. Implemented by the commissions repository; the small interface
// keeps this package from depending on it.
type RateResolver interface {
	ResolveRate(accountID int64, date string) (float64, error)
}

// ErrTradeNotFound is returned when a trade id does not exist
var ErrTradeNotFound = errors.New("trade not found")

// ErrTradeHasChild is returned when deleting a roll parent whose child
// still references it.
var ErrTradeHasChild = errors.New("trade is referenced by a roll child")

// ErrParentCycle is returned when a parent link would make a trade its own
// ancestor.
var ErrParentCycle = errors.New("parent trade chain would form a cycle")

// Repository handles trade database operations
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new trade repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "trades").Logger(),
	}
}

const tradeColumns = `
	t.id, t.account_id, t.ticker_id, t.parent_trade_id, t.trade_kind, t.status,
	t.trade_date, COALESCE(t.expiration_date, ''), t.quantity, t.credit_debit,
	t.current_price, t.strike_price, t.days_to_expiration, t.margin_percent,
	t.commission_per_share, t.net_credit_per_share, t.risk_capital_per_share,
	t.margin_capital, t.arorc, tk.ticker
`

// CreateTx inserts a trade inside an open transaction and returns its id
func (r *Repository) CreateTx(tx *sql.Tx, trade *Trade) (int64, error) {
	if trade.ParentTradeID != nil {
		if err := r.checkParentChainTx(tx, *trade.ParentTradeID, trade.ID); err != nil {
			return 0, err
		}
	}

	result, err := tx.Exec(`
		INSERT INTO trades
		(account_id, ticker_id, parent_trade_id, trade_kind, status, trade_date,
		 expiration_date, quantity, credit_debit, current_price, strike_price,
		 days_to_expiration, margin_percent, commission_per_share,
		 net_credit_per_share, risk_capital_per_share, margin_capital, arorc)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, trade.AccountID, trade.TickerID, nullInt64(trade.ParentTradeID),
		string(trade.Kind), string(trade.Status), trade.TradeDate,
		nullString(trade.Expiration), trade.Quantity, trade.CreditDebit,
		trade.CurrentPrice, trade.Strike, trade.DTE, trade.MarginPercent,
		trade.Commission, nullFloat64(trade.NetCreditPerShare),
		nullFloat64(trade.RiskCapitalPerShare), nullFloat64(trade.MarginCapital),
		nullFloat64(trade.ARORC))
	if err != nil {
		return 0, fmt.Errorf("failed to create trade: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get trade id: %w", err)
	}
	trade.ID = id
	return id, nil
}

// GetTx retrieves a trade by id inside an open transaction
func (r *Repository) GetTx(tx *sql.Tx, id int64) (*Trade, error) {
	row := tx.QueryRow(`
		SELECT `+tradeColumns+`
		FROM trades t JOIN tickers tk ON t.ticker_id = tk.id
		WHERE t.id = ?
	`, id)
	return scanTrade(row)
}

// Get retrieves a trade by id
func (r *Repository) Get(id int64) (*Trade, error) {
	row := r.db.QueryRow(`
		SELECT `+tradeColumns+`
		FROM trades t JOIN tickers tk ON t.ticker_id = tk.id
		WHERE t.id = ?
	`, id)
	return scanTrade(row)
}

// List returns trades matching the filter, newest trade date first
func (r *Repository) List(filter Filter) ([]Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades t JOIN tickers tk ON t.ticker_id = tk.id
		WHERE 1=1
	`
	var args []interface{}
	if filter.AccountID > 0 {
		query += ` AND t.account_id = ?`
		args = append(args, filter.AccountID)
	}
	if filter.Status != "" {
		query += ` AND t.status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Symbol != "" {
		query += ` AND tk.ticker = ? COLLATE NOCASE`
		args = append(args, filter.Symbol)
	}
	if filter.Since != "" {
		query += ` AND t.trade_date >= ?`
		args = append(args, filter.Since)
	}
	query += ` ORDER BY t.trade_date DESC, t.id DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	defer rows.Close()

	var trades []Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, *trade)
	}
	return trades, rows.Err()
}

// UpdateTx persists a trade's mutable entry fields and derived fields
func (r *Repository) UpdateTx(tx *sql.Tx, trade *Trade) error {
	result, err := tx.Exec(`
		UPDATE trades SET
			trade_date = ?, expiration_date = ?, quantity = ?, credit_debit = ?,
			current_price = ?, strike_price = ?, days_to_expiration = ?,
			margin_percent = ?, commission_per_share = ?,
			net_credit_per_share = ?, risk_capital_per_share = ?,
			margin_capital = ?, arorc = ?
		WHERE id = ?
	`, trade.TradeDate, nullString(trade.Expiration), trade.Quantity,
		trade.CreditDebit, trade.CurrentPrice, trade.Strike, trade.DTE,
		trade.MarginPercent, trade.Commission,
		nullFloat64(trade.NetCreditPerShare), nullFloat64(trade.RiskCapitalPerShare),
		nullFloat64(trade.MarginCapital), nullFloat64(trade.ARORC), trade.ID)
	if err != nil {
		return fmt.Errorf("failed to update trade: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTradeNotFound
	}
	return nil
}

// UpdateDerivedTx persists only the commission snapshot and derived fields.
// Used by the recalculation cascade.
func (r *Repository) UpdateDerivedTx(tx *sql.Tx, trade *Trade) error {
	_, err := tx.Exec(`
		UPDATE trades SET
			commission_per_share = ?, net_credit_per_share = ?,
			risk_capital_per_share = ?, margin_capital = ?, arorc = ?
		WHERE id = ?
	`, trade.Commission, nullFloat64(trade.NetCreditPerShare),
		nullFloat64(trade.RiskCapitalPerShare), nullFloat64(trade.MarginCapital),
		nullFloat64(trade.ARORC), trade.ID)
	if err != nil {
		return fmt.Errorf("failed to update derived fields: %w", err)
	}
	return nil
}

// SetStatusTx updates a trade's status and appends to the status history
func (r *Repository) SetStatusTx(tx *sql.Tx, tradeID int64, oldStatus, newStatus domain.TradeStatus) error {
	result, err := tx.Exec(`UPDATE trades SET status = ? WHERE id = ?`, string(newStatus), tradeID)
	if err != nil {
		return fmt.Errorf("failed to update trade status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTradeNotFound
	}

	_, err = tx.Exec(`
		INSERT INTO trade_status_history (trade_id, old_status, new_status)
		VALUES (?, ?, ?)
	`, tradeID, string(oldStatus), string(newStatus))
	if err != nil {
		return fmt.Errorf("failed to record status change: %w", err)
	}
	return nil
}

// StatusHistory returns a trade's status changes, oldest first
func (r *Repository) StatusHistory(tradeID int64) ([]StatusChange, error) {
	rows, err := r.db.Query(`
		SELECT id, trade_id, COALESCE(old_status, ''), new_status
		FROM trade_status_history WHERE trade_id = ?
		ORDER BY id ASC
	`, tradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}
	defer rows.Close()

	var changes []StatusChange
	for rows.Next() {
		var c StatusChange
		if err := rows.Scan(&c.ID, &c.TradeID, &c.OldStatus, &c.NewStatus); err != nil {
			return nil, fmt.Errorf("failed to scan status change: %w", err)
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// DeleteTx removes a trade. Dependent ledger and cash-flow rows go with it
// through the foreign key cascade; a roll child blocks deletion because
// parent_trade_id carries no cascade action.
func (r *Repository) DeleteTx(tx *sql.Tx, id int64) error {
	var childID int64
	err := tx.QueryRow(`SELECT id FROM trades WHERE parent_trade_id = ? LIMIT 1`, id).Scan(&childID)
	if err == nil {
		return fmt.Errorf("trade %d has child %d: %w", id, childID, ErrTradeHasChild)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check for roll children: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM trades WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTradeNotFound
	}
	return nil
}

// ListExpiredOpen returns open credit-option trades whose expiration has
// passed as of the given date.
func (r *Repository) ListExpiredOpen(asOf string) ([]Trade, error) {
	rows, err := r.db.Query(`
		SELECT `+tradeColumns+`
		FROM trades t JOIN tickers tk ON t.ticker_id = tk.id
		WHERE t.status = 'open'
		  AND t.expiration_date IS NOT NULL
		  AND t.expiration_date != ''
		  AND t.expiration_date < ?
	`, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired trades: %w", err)
	}
	defer rows.Close()

	var trades []Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, *trade)
	}
	return trades, rows.Err()
}

// checkParentChainTx walks up the parent chain from parentID, rejecting a
// link that would contain childID.
func (r *Repository) checkParentChainTx(tx *sql.Tx, parentID, childID int64) error {
	current := parentID
	for current != 0 {
		if childID != 0 && current == childID {
			return ErrParentCycle
		}
		var next sql.NullInt64
		err := tx.QueryRow(`SELECT parent_trade_id FROM trades WHERE id = ?`, current).Scan(&next)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("parent trade %d: %w", current, ErrTradeNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to walk parent chain: %w", err)
		}
		if !next.Valid {
			return nil
		}
		current = next.Int64
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row rowScanner) (*Trade, error) {
	var t Trade
	var kind, status string
	var parentID sql.NullInt64
	var net, risk, margin, arorc sql.NullFloat64
	err := row.Scan(&t.ID, &t.AccountID, &t.TickerID, &parentID, &kind, &status,
		&t.TradeDate, &t.Expiration, &t.Quantity, &t.CreditDebit,
		&t.CurrentPrice, &t.Strike, &t.DTE, &t.MarginPercent,
		&t.Commission, &net, &risk, &margin, &arorc, &t.Symbol)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTradeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan trade: %w", err)
	}
	t.Kind = domain.TradeKind(kind)
	t.Status = domain.TradeStatus(status)
	if parentID.Valid {
		t.ParentTradeID = &parentID.Int64
	}
	if net.Valid {
		t.NetCreditPerShare = &net.Float64
	}
	if risk.Valid {
		t.RiskCapitalPerShare = &risk.Float64
	}
	if margin.Valid {
		t.MarginCapital = &margin.Float64
	}
	if arorc.Valid {
		t.ARORC = &arorc.Float64
	}
	return &t, nil
}

func nullInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloat64(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
