package tickers

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/options-tracker/internal/database"
)

// Repository handles ticker database operations
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new ticker repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "tickers").Logger(),
	}
}

// GetBySymbol retrieves a ticker by symbol (case-insensitive), nil when
// not found.
func (r *Repository) GetBySymbol(symbol string) (*Ticker, error) {
	row := r.db.QueryRow(`
		SELECT id, ticker, company_name FROM tickers WHERE ticker = ? COLLATE NOCASE
	`, strings.TrimSpace(symbol))
	return scanTicker(row)
}

func scanTicker(row *sql.Row) (*Ticker, error) {
	var t Ticker
	err := row.Scan(&t.ID, &t.Symbol, &t.CompanyName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan ticker: %w", err)
	}
	return &t, nil
}

// GetOrCreate returns the id for a symbol, creating the row on first
// reference. A freshly created ticker uses the symbol itself as its display
// name until the name cache fills it in.
func (r *Repository) GetOrCreate(symbol string) (int64, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return 0, fmt.Errorf("ticker symbol cannot be empty")
	}

	existing, err := r.GetBySymbol(symbol)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	result, err := r.db.Exec(`
		INSERT INTO tickers (ticker, company_name) VALUES (?, ?)
	`, symbol, symbol)
	if err != nil {
		return 0, fmt.Errorf("failed to create ticker: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get ticker id: %w", err)
	}

	r.log.Debug().Str("symbol", symbol).Int64("id", id).Msg("Ticker created")
	return id, nil
}

// UpdateCompanyName caches a display name for a symbol
func (r *Repository) UpdateCompanyName(symbol, name string) error {
	_, err := r.db.Exec(`
		UPDATE tickers SET company_name = ?, updated_at = ? WHERE ticker = ? COLLATE NOCASE
	`, name, time.Now().Format(time.RFC3339), strings.ToUpper(strings.TrimSpace(symbol)))
	if err != nil {
		return fmt.Errorf("failed to update company name: %w", err)
	}
	return nil
}

// ListUnnamed returns tickers whose display name is still the bare symbol
func (r *Repository) ListUnnamed() ([]Ticker, error) {
	rows, err := r.db.Query(`
		SELECT id, ticker, company_name FROM tickers WHERE company_name = ticker
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list unnamed tickers: %w", err)
	}
	defer rows.Close()

	var tickers []Ticker
	for rows.Next() {
		var t Ticker
		if err := rows.Scan(&t.ID, &t.Symbol, &t.CompanyName); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

// TopSymbols returns the most traded symbols with open-trade and staleness
// flags.
func (r *Repository) TopSymbols(limit int) ([]TopSymbol, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(`
		SELECT t.ticker, COUNT(st.id) AS trade_count,
		       MAX(CASE WHEN st.status = 'open' THEN 1 ELSE 0 END) AS has_open_trades,
		       MAX(CASE WHEN st.status IN ('assigned', 'expired') THEN st.trade_date ELSE NULL END) AS last_closed_date
		FROM tickers t
		JOIN trades st ON t.id = st.ticker_id
		GROUP BY t.ticker
		ORDER BY trade_count DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top symbols: %w", err)
	}
	defer rows.Close()

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)

	var symbols []TopSymbol
	for rows.Next() {
		var s TopSymbol
		var hasOpen int
		var lastClosed sql.NullString
		if err := rows.Scan(&s.Symbol, &s.TradeCount, &hasOpen, &lastClosed); err != nil {
			return nil, fmt.Errorf("failed to scan top symbol: %w", err)
		}
		s.HasOpenTrades = hasOpen == 1
		if lastClosed.Valid {
			if d, err := time.Parse("2006-01-02", lastClosed.String); err == nil {
				s.IsOldAssignedExpired = d.Before(thirtyDaysAgo)
			}
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}
