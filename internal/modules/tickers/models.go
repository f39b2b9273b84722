// Package tickers manages ticker symbols and their cached company display
// names. Symbols are shared across accounts and created lazily on first
// reference; name lookups against the market-data provider are best effort
// and never block a ledger write.
package tickers

import "time"

// Ticker represents a ticker symbol with its cached display name
type Ticker struct {
	ID          int64      `json:"id"`
	Symbol      string     `json:"ticker"`
	CompanyName string     `json:"company_name"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Match is a symbol-search result from the market-data provider
type Match struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// TopSymbol is a frequently traded ticker with activity flags
type TopSymbol struct {
	Symbol               string `json:"ticker"`
	TradeCount           int    `json:"trade_count"`
	HasOpenTrades        bool   `json:"has_open_trades"`
	IsOldAssignedExpired bool   `json:"is_old_assigned_expired"`
}
