package trading

import (
	"github.com/greenmangroup/options-tracker/internal/domain"
)

// Metrics are a trade's derived fields. Nil means "not meaningful for this
// trade", never an error.
type Metrics struct {
	NetCreditPerShare   *float64
	RiskCapitalPerShare *float64
	MarginCapital       *float64
	ARORC               *float64
}

// ComputeMetrics derives a trade's metrics from its entry fields and the
// resolved commission. Pure function.
//
// Net credit is stored at 5 decimals so later ratios do not compound
// rounding error. Risk capital is stored at 2 decimals but all downstream
// formulas use the unrounded value to avoid double rounding.
func ComputeMetrics(kind domain.TradeKind, quantity int64, creditDebit, strike, commission, marginPercent float64, dte int) Metrics {
	if !kind.IsCreditOption() {
		// Stock trades carry no option economics.
		return Metrics{}
	}

	net := domain.Round5(creditDebit - commission)
	shares := float64(quantity * kind.SharesPerUnit())
	riskUnrounded := strike - net

	m := Metrics{NetCreditPerShare: &net}

	if kind.IsPut() {
		risk := domain.Round2(riskUnrounded)
		m.RiskCapitalPerShare = &risk
		margin := domain.Round2(riskUnrounded * shares)
		m.MarginCapital = &margin
	} else {
		margin := domain.Round2(riskUnrounded * shares)
		m.MarginCapital = &margin
	}

	if kind.IsPut() && riskUnrounded > 0 && dte > 0 && marginPercent > 0 {
		capitalPerShare := riskUnrounded * marginPercent / 100
		arorc := domain.Round1((365.0 / float64(dte)) * (net / capitalPerShare) * 100)
		m.ARORC = &arorc
	}
	return m
}

// Recompute refreshes a trade's derived fields in place from its current
// entry fields and commission snapshot.
func (t *Trade) Recompute() {
	m := ComputeMetrics(t.Kind, t.Quantity, t.CreditDebit, t.Strike, t.Commission, t.MarginPercent, t.DTE)
	t.NetCreditPerShare = m.NetCreditPerShare
	t.RiskCapitalPerShare = m.RiskCapitalPerShare
	t.MarginCapital = m.MarginCapital
	t.ARORC = m.ARORC
}
