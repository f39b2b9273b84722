// Package trading implements trade entry, derived-metric computation and
// the trade lifecycle state machine with its ledger and cash-flow side
// effects.
package trading

import (
	"fmt"
	"time"

	"github.com/greenmangroup/options-tracker/internal/domain"
)

// Trade is the central entity. Derived fields (NetCreditPerShare,
// RiskCapitalPerShare, MarginCapital, ARORC) are always a pure function of
// the entry fields plus the resolved commission; they are refreshed in
// place by the recalculation cascade and never drift otherwise.
type Trade struct {
	ID            int64              `json:"id"`
	AccountID     int64              `json:"account_id"`
	TickerID      int64              `json:"ticker_id"`
	ParentTradeID *int64             `json:"parent_trade_id,omitempty"`
	Kind          domain.TradeKind   `json:"trade_kind"`
	Status        domain.TradeStatus `json:"status"`
	TradeDate     string             `json:"trade_date"`
	Expiration    string             `json:"expiration_date,omitempty"`
	Quantity      int64              `json:"quantity"`
	CreditDebit   float64            `json:"credit_debit"`
	CurrentPrice  float64            `json:"current_price"`
	Strike        float64            `json:"strike_price"`
	DTE           int                `json:"days_to_expiration"`
	MarginPercent float64            `json:"margin_percent"`
	Commission    float64            `json:"commission_per_share"`

	NetCreditPerShare   *float64 `json:"net_credit_per_share,omitempty"`
	RiskCapitalPerShare *float64 `json:"risk_capital_per_share,omitempty"`
	MarginCapital       *float64 `json:"margin_capital,omitempty"`
	ARORC               *float64 `json:"arorc,omitempty"`

	CreatedAt *time.Time `json:"created_at,omitempty"`

	// Joined field
	Symbol string `json:"ticker,omitempty"`
}

// SharesTotal is the trade's size in shares: contracts are 100 shares each
func (t *Trade) SharesTotal() int64 {
	return t.Quantity * t.Kind.SharesPerUnit()
}

// Validate checks entry fields before insertion
func (t *Trade) Validate() error {
	if !t.Kind.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidTradeKind, t.Kind)
	}
	if t.AccountID <= 0 {
		return fmt.Errorf("account id is required")
	}
	if t.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if _, err := domain.ParseDate(t.TradeDate); err != nil {
		return fmt.Errorf("invalid trade date: %w", err)
	}
	if t.Kind.RequiresExpiration() {
		if _, err := domain.ParseDate(t.Expiration); err != nil {
			return fmt.Errorf("invalid expiration date: %w", err)
		}
	}
	if t.Kind.RequiresStrike() && t.Strike <= 0 {
		return fmt.Errorf("strike price is required for %s trades", t.Kind)
	}
	return nil
}

// StatusChange is one row of the append-only status history
type StatusChange struct {
	ID        int64      `json:"id"`
	TradeID   int64      `json:"trade_id"`
	OldStatus string     `json:"old_status,omitempty"`
	NewStatus string     `json:"new_status"`
	ChangedAt *time.Time `json:"changed_at,omitempty"`
}

// Filter narrows trade list queries
type Filter struct {
	AccountID int64
	Status    domain.TradeStatus
	Symbol    string
	Since     string
}
