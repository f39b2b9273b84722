// Package cost_basis maintains the append-style cost-basis ledger: per
// (account, ticker) ordered entries with running share/basis totals.
//
// Entries are ordered by (transaction_date, seq) ascending, where seq is a
// monotonic counter per scope. Running totals are a prefix sum over that
// order; after any deletion or out-of-order insert the scope's totals are
// recomputed in full.
package cost_basis

import "time"

// Entry is one cost-basis ledger row. SharesDelta and AmountDelta are
// signed; RunningBasis/RunningShares/BasisPerShare include this entry.
type Entry struct {
	ID          int64   `json:"id"`
	AccountID   int64   `json:"account_id"`
	TickerID    int64   `json:"ticker_id"`
	TradeID     *int64  `json:"trade_id,omitempty"`
	CashFlowID  *int64  `json:"cash_flow_id,omitempty"`
	Date        string  `json:"transaction_date"`
	Seq         int64   `json:"seq"`
	Description string  `json:"description"`
	SharesDelta int64   `json:"shares"`
	PerShare    float64 `json:"cost_per_share"`
	AmountDelta float64 `json:"total_amount"`

	RunningBasis  float64 `json:"running_basis"`
	RunningShares int64   `json:"running_shares"`
	BasisPerShare float64 `json:"basis_per_share"`

	CreatedAt *time.Time `json:"created_at,omitempty"`

	// Joined fields
	Symbol      string `json:"ticker,omitempty"`
	CompanyName string `json:"-"`
	TradeStatus string `json:"status,omitempty"`
}

// Summary is the per-(account, ticker) view exposed by the cost-basis API:
// the final running totals plus the ordered entry list.
type Summary struct {
	AccountID     int64   `json:"account_id"`
	Symbol        string  `json:"ticker"`
	CompanyName   string  `json:"company_name"`
	TotalShares   int64   `json:"total_shares"`
	TotalBasis    float64 `json:"total_cost_basis"`
	BasisPerShare float64 `json:"total_cost_basis_per_share"`
	Entries       []Entry `json:"entries"`
}

// AssignmentPrefix marks ledger entries created by an assignment
// transition; the unassign path finds and removes them by this marker.
const AssignmentPrefix = "ASSIGNED"

// RollMarker distinguishes roll-diagonal entries from plain option opens,
// which share the SELL prefix; roll completion checks for it.
const RollMarker = "DIAGONAL"
