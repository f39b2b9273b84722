// Package accounts manages trading accounts: the owning scope for trades,
// ledger entries, cash flows and commission schedules.
package accounts

import (
	"fmt"
	"strings"
	"time"
)

// Account represents a trading account
type Account struct {
	ID              int64      `json:"id"`
	Name            string     `json:"account_name"`
	Type            string     `json:"account_type"`
	StartDate       string     `json:"start_date,omitempty"`
	StartingBalance float64    `json:"starting_balance"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}

// Validate checks account data before insertion
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if a.Type == "" {
		a.Type = "PRIMARY"
	}
	return nil
}
