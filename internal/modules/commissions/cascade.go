package commissions

import (
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/options-tracker/internal/database"
	"github.com/greenmangroup/options-tracker/internal/modules/trading"
)

// Cascade refreshes the derived metrics of every trade a commission-rate
// change can affect. It never touches ledger entries or cash flows; only
// per-trade derived fields are rewritten, which makes it idempotent.
type Cascade struct {
	db     *database.DB
	rates  *Repository
	trades *trading.Repository
	log    zerolog.Logger
}

// NewCascade creates a new recalculation cascade
func NewCascade(db *database.DB, rates *Repository, trades *trading.Repository, log zerolog.Logger) *Cascade {
	return &Cascade{
		db:     db,
		rates:  rates,
		trades: trades,
		log:    log.With().Str("service", "commission_cascade").Logger(),
	}
}

// Recalculate re-resolves the commission and recomputes derived fields for
// every trade in the account dated on or after effectiveDate. Returns the
// number of trades refreshed; an empty trade set succeeds with zero.
func (c *Cascade) Recalculate(accountID int64, effectiveDate string) (int, error) {
	trades, err := c.trades.List(trading.Filter{AccountID: accountID, Since: effectiveDate})
	if err != nil {
		return 0, err
	}
	if len(trades) == 0 {
		return 0, nil
	}

	// Rates are resolved before the write transaction; the single-connection
	// pool cannot serve reads while a transaction is open.
	for i := range trades {
		rate, err := c.rates.ResolveRate(accountID, trades[i].TradeDate)
		if err != nil {
			return 0, err
		}
		trades[i].Commission = rate
		trades[i].Recompute()
	}

	err = c.db.WithTx(func(tx *sql.Tx) error {
		for i := range trades {
			if err := c.trades.UpdateDerivedTx(tx, &trades[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	c.log.Info().
		Int64("account_id", accountID).
		Str("effective_date", effectiveDate).
		Int("trades_updated", len(trades)).
		Msg("Commission cascade complete")
	return len(trades), nil
}
