// Package reports builds the read-only summaries: bankroll, per-kind trade
// statistics and premium chart data.
package reports

// KindBreakdown is the bankroll contribution of one trade kind
type KindBreakdown struct {
	Kind          string  `json:"trade_kind"`
	OpenTrades    int     `json:"open_trades"`
	NetPremiums   float64 `json:"net_premiums"`
	MarginCapital float64 `json:"margin_capital_in_use"`
}

// BankrollSummary is starting balance plus net premiums minus margin
// capital committed to open and assigned positions.
type BankrollSummary struct {
	AccountID          int64           `json:"account_id"`
	StartingBalance    float64         `json:"starting_balance"`
	NetDeposits        float64         `json:"net_deposits"`
	NetPremiums        float64         `json:"net_premiums"`
	MarginCapitalInUse float64         `json:"margin_capital_in_use"`
	Available          float64         `json:"available"`
	ByKind             []KindBreakdown `json:"by_kind"`
}

// TradeSummary aggregates outcome statistics over an account's trades
type TradeSummary struct {
	AccountID     int64   `json:"account_id"`
	TotalTrades   int     `json:"total_trades"`
	OpenTrades    int     `json:"open_trades"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	WinRate       float64 `json:"win_rate"`
	TotalPremiums float64 `json:"total_premiums"`
	MeanPremium   float64 `json:"mean_premium"`
	StdDevPremium float64 `json:"stddev_premium"`
	MeanARORC     float64 `json:"mean_arorc"`
	DaysDone      int     `json:"days_done"`
	DaysRemaining int     `json:"days_remaining"`
}

// ChartPoint is one month of premium income
type ChartPoint struct {
	Month    string  `json:"month"`
	Premiums float64 `json:"premiums"`
}
