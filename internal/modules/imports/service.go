// Package imports loads batches of historical trades, reusing the normal
// trade-entry path so every imported row gets commissions, metrics and
// ledger entries exactly as a hand-entered trade would.
package imports

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/greenmangroup/options-tracker/internal/modules/trading"
)

// Row is one trade in an import batch
type Row struct {
	Symbol        string  `json:"ticker"`
	Kind          string  `json:"trade_kind"`
	TradeDate     string  `json:"trade_date"`
	Expiration    string  `json:"expiration_date"`
	Quantity      int64   `json:"quantity"`
	CreditDebit   float64 `json:"credit_debit"`
	Strike        float64 `json:"strike_price"`
	MarginPercent float64 `json:"margin_percent"`
}

// RowError reports why one row was skipped
type RowError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// Result summarizes an import batch
type Result struct {
	BatchID  string     `json:"batch_id"`
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	TradeIDs []int64    `json:"trade_ids"`
	Errors   []RowError `json:"errors,omitempty"`
}

// Service imports trade batches
type Service struct {
	trades *trading.Service
	log    zerolog.Logger
}

// NewService creates a new import service
func NewService(trades *trading.Service, log zerolog.Logger) *Service {
	return &Service{
		trades: trades,
		log:    log.With().Str("service", "imports").Logger(),
	}
}

// ImportBatch creates every valid row as a trade. Invalid rows are skipped
// and reported; they never abort the rest of the batch.
func (s *Service) ImportBatch(accountID int64, rows []Row) *Result {
	result := &Result{BatchID: uuid.NewString()}

	for i, row := range rows {
		trade, err := s.trades.CreateTrade(trading.CreateTradeRequest{
			AccountID:     accountID,
			Symbol:        row.Symbol,
			Kind:          row.Kind,
			TradeDate:     row.TradeDate,
			Expiration:    row.Expiration,
			Quantity:      row.Quantity,
			CreditDebit:   row.CreditDebit,
			Strike:        row.Strike,
			MarginPercent: row.MarginPercent,
		})
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, RowError{Index: i, Error: err.Error()})
			continue
		}
		result.Imported++
		result.TradeIDs = append(result.TradeIDs, trade.ID)
	}

	s.log.Info().
		Str("batch_id", result.BatchID).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("Import batch complete")
	return result
}
