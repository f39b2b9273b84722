// Package cash_flows records account cash movements: deposits, withdrawals
// and the premium/assignment flows generated by trade lifecycle events.
package cash_flows

import (
	"time"

	"github.com/greenmangroup/options-tracker/internal/domain"
)

// CashFlow is one cash movement row. Amount is signed from the account's
// point of view: credits positive, debits negative.
type CashFlow struct {
	ID          int64               `json:"id"`
	AccountID   int64               `json:"account_id"`
	Date        string              `json:"transaction_date"`
	Kind        domain.CashFlowKind `json:"transaction_type"`
	Amount      float64             `json:"amount"`
	Description string              `json:"description,omitempty"`
	TradeID     *int64              `json:"trade_id,omitempty"`
	TickerID    *int64              `json:"ticker_id,omitempty"`
	CreatedAt   *time.Time          `json:"created_at,omitempty"`

	// Joined field
	Symbol string `json:"ticker,omitempty"`
}

// Filter narrows ListByAccount queries
type Filter struct {
	From string
	To   string
	Kind domain.CashFlowKind
}
