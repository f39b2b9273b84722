// Package commissions manages per-account commission schedules: temporal
// rate resolution and the recalculation cascade that refreshes trade metrics
// when a rate changes.
package commissions

import (
	"fmt"
	"time"

	"github.com/greenmangroup/options-tracker/internal/domain"
)

// CommissionRate is a per-share commission effective from a given date
type CommissionRate struct {
	ID            int64      `json:"id"`
	AccountID     int64      `json:"account_id"`
	Rate          float64    `json:"commission_rate"`
	EffectiveDate string     `json:"effective_date"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

// Validate checks rate data before insertion
func (c *CommissionRate) Validate() error {
	if c.AccountID <= 0 {
		return fmt.Errorf("account id is required")
	}
	if c.Rate < 0 {
		return fmt.Errorf("commission rate cannot be negative")
	}
	if _, err := domain.ParseDate(c.EffectiveDate); err != nil {
		return fmt.Errorf("invalid effective date: %w", err)
	}
	return nil
}
