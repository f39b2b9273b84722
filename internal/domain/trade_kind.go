// Package domain holds the value objects shared across modules: trade kinds,
// trade statuses, cash-flow kinds, money rounding and date handling.
package domain

import (
	"fmt"
	"strings"
)

// TradeKind is the closed set of supported trade types. Capabilities are
// resolved from the kind itself; nothing downstream inspects type strings.
type TradeKind string

const (
	KindCashSecuredPut TradeKind = "CASH_SECURED_PUT"
	KindCoveredCall    TradeKind = "COVERED_CALL"
	KindBuyToOpen      TradeKind = "BUY_TO_OPEN"
	KindSellToClose    TradeKind = "SELL_TO_CLOSE"
)

// ErrInvalidTradeKind is returned when a trade carries an unknown kind tag.
// Unknown kinds are rejected at creation, never silently defaulted.
var ErrInvalidTradeKind = fmt.Errorf("invalid trade kind")

// ParseTradeKind converts a kind tag to a TradeKind (case-insensitive).
// Legacy tags from spreadsheet imports are accepted as aliases.
func ParseTradeKind(value string) (TradeKind, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "CASH_SECURED_PUT", "ROCT_PUT", "ROCT PUT", "ROP":
		return KindCashSecuredPut, nil
	case "COVERED_CALL", "ROCT_CALL", "ROCT CALL", "ROC":
		return KindCoveredCall, nil
	case "BUY_TO_OPEN", "BTO":
		return KindBuyToOpen, nil
	case "SELL_TO_CLOSE", "STC":
		return KindSellToClose, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTradeKind, value)
	}
}

// IsValid checks if the trade kind is one of the closed set
func (k TradeKind) IsValid() bool {
	switch k {
	case KindCashSecuredPut, KindCoveredCall, KindBuyToOpen, KindSellToClose:
		return true
	}
	return false
}

// IsCreditOption reports whether the kind collects premium up front
func (k TradeKind) IsCreditOption() bool {
	return k == KindCashSecuredPut || k == KindCoveredCall
}

// IsStock reports whether the kind trades shares directly
func (k TradeKind) IsStock() bool {
	return k == KindBuyToOpen || k == KindSellToClose
}

// IsPut reports whether assignment converts the position into bought shares
func (k TradeKind) IsPut() bool {
	return k == KindCashSecuredPut
}

// IsCall reports whether assignment converts the position into sold shares
func (k TradeKind) IsCall() bool {
	return k == KindCoveredCall
}

// RequiresStrike reports whether the kind needs a strike price
func (k TradeKind) RequiresStrike() bool {
	return k.IsCreditOption()
}

// RequiresExpiration reports whether the kind needs an expiration date
func (k TradeKind) RequiresExpiration() bool {
	return k.IsCreditOption()
}

// SharesPerUnit is the number of shares one quantity unit represents:
// 100 per option contract, 1 per stock share.
func (k TradeKind) SharesPerUnit() int64 {
	if k.IsCreditOption() {
		return 100
	}
	return 1
}

// OptionWord is the PUT/CALL word used in ledger descriptions
func (k TradeKind) OptionWord() string {
	switch k {
	case KindCashSecuredPut:
		return "PUT"
	case KindCoveredCall:
		return "CALL"
	}
	return ""
}
