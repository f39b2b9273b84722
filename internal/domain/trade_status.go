package domain

import (
	"fmt"
	"strings"
)

// TradeStatus is a trade's lifecycle state
type TradeStatus string

const (
	StatusOpen     TradeStatus = "open"
	StatusClosed   TradeStatus = "closed"
	StatusExpired  TradeStatus = "expired"
	StatusAssigned TradeStatus = "assigned"
	StatusRoll     TradeStatus = "roll"
)

// ParseTradeStatus converts a status string (case-insensitive)
func ParseTradeStatus(value string) (TradeStatus, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "open":
		return StatusOpen, nil
	case "closed":
		return StatusClosed, nil
	case "expired":
		return StatusExpired, nil
	case "assigned":
		return StatusAssigned, nil
	case "roll":
		return StatusRoll, nil
	default:
		return "", fmt.Errorf("invalid trade status: %q", value)
	}
}

// IsValid checks if the status is one of the lifecycle states
func (s TradeStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusClosed, StatusExpired, StatusAssigned, StatusRoll:
		return true
	}
	return false
}

// CashFlowKind is the closed set of cash-flow transaction types
type CashFlowKind string

const (
	FlowDeposit       CashFlowKind = "DEPOSIT"
	FlowWithdrawal    CashFlowKind = "WITHDRAWAL"
	FlowPremiumCredit CashFlowKind = "PREMIUM_CREDIT"
	FlowPremiumDebit  CashFlowKind = "PREMIUM_DEBIT"
	FlowSellPut       CashFlowKind = "SELL_PUT"
	FlowSellCall      CashFlowKind = "SELL_CALL"
	FlowAssignment    CashFlowKind = "ASSIGNMENT"
)

// ParseCashFlowKind converts a transaction type string (case-insensitive)
func ParseCashFlowKind(value string) (CashFlowKind, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "DEPOSIT":
		return FlowDeposit, nil
	case "WITHDRAWAL":
		return FlowWithdrawal, nil
	case "PREMIUM_CREDIT":
		return FlowPremiumCredit, nil
	case "PREMIUM_DEBIT":
		return FlowPremiumDebit, nil
	case "SELL_PUT", "SELL PUT":
		return FlowSellPut, nil
	case "SELL_CALL", "SELL CALL":
		return FlowSellCall, nil
	case "ASSIGNMENT":
		return FlowAssignment, nil
	default:
		return "", fmt.Errorf("invalid cash flow kind: %q", value)
	}
}

// IsValid checks if the kind is one of the closed set
func (k CashFlowKind) IsValid() bool {
	_, err := ParseCashFlowKind(string(k))
	return err == nil
}
