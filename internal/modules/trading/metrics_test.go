package trading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenmangroup/options-tracker/internal/domain"
)

func TestComputeMetricsPut(t *testing.T) {
	m := ComputeMetrics(domain.KindCashSecuredPut, 1, 2.50, 245.00, 1.00, 100, 30)

	require.NotNil(t, m.NetCreditPerShare)
	require.NotNil(t, m.RiskCapitalPerShare)
	require.NotNil(t, m.MarginCapital)
	require.NotNil(t, m.ARORC)

	assert.Equal(t, 1.50, *m.NetCreditPerShare)
	assert.Equal(t, 243.50, *m.RiskCapitalPerShare)
	assert.Equal(t, 24350.00, *m.MarginCapital)
	assert.Equal(t, 7.5, *m.ARORC)
}

func TestRiskPlusNetEqualsStrike(t *testing.T) {
	for _, tc := range []struct {
		strike, credit, commission float64
	}{
		{245.00, 2.50, 1.00},
		{100.00, 0.85, 0.35},
		{57.50, 1.12, 0.0065},
	} {
		m := ComputeMetrics(domain.KindCashSecuredPut, 1, tc.credit, tc.strike, tc.commission, 100, 30)
		require.NotNil(t, m.NetCreditPerShare)
		require.NotNil(t, m.RiskCapitalPerShare)
		// Stored risk differs from strike − net only by its 2-decimal rounding.
		assert.InDelta(t, tc.strike, *m.RiskCapitalPerShare+*m.NetCreditPerShare, 0.005)
	}
}

func TestComputeMetricsQuantityScalesMargin(t *testing.T) {
	m := ComputeMetrics(domain.KindCashSecuredPut, 3, 2.50, 245.00, 1.00, 100, 30)
	require.NotNil(t, m.MarginCapital)
	assert.Equal(t, 73050.00, *m.MarginCapital)
	// ARORC is per share and quantity-independent.
	require.NotNil(t, m.ARORC)
	assert.Equal(t, 7.5, *m.ARORC)
}

func TestComputeMetricsMarginPercent(t *testing.T) {
	// Only half the risk capital is posted, doubling the return on capital.
	m := ComputeMetrics(domain.KindCashSecuredPut, 1, 2.50, 245.00, 1.00, 50, 30)
	require.NotNil(t, m.ARORC)
	assert.Equal(t, 15.0, *m.ARORC)
}

func TestComputeMetricsARORCGuards(t *testing.T) {
	// Zero DTE
	m := ComputeMetrics(domain.KindCashSecuredPut, 1, 2.50, 245.00, 1.00, 100, 0)
	assert.Nil(t, m.ARORC)

	// Zero margin percent
	m = ComputeMetrics(domain.KindCashSecuredPut, 1, 2.50, 245.00, 1.00, 0, 30)
	assert.Nil(t, m.ARORC)

	// Non-positive risk capital (deep credit against a tiny strike)
	m = ComputeMetrics(domain.KindCashSecuredPut, 1, 5.00, 2.00, 0, 100, 30)
	assert.Nil(t, m.ARORC)
	require.NotNil(t, m.NetCreditPerShare)
}

func TestComputeMetricsCall(t *testing.T) {
	m := ComputeMetrics(domain.KindCoveredCall, 1, 1.20, 50.00, 0.20, 100, 30)

	require.NotNil(t, m.NetCreditPerShare)
	assert.Equal(t, 1.00, *m.NetCreditPerShare)
	// Calls carry margin capital but no risk capital and no ARORC.
	assert.Nil(t, m.RiskCapitalPerShare)
	require.NotNil(t, m.MarginCapital)
	assert.Equal(t, 4900.00, *m.MarginCapital)
	assert.Nil(t, m.ARORC)
}

func TestComputeMetricsStock(t *testing.T) {
	m := ComputeMetrics(domain.KindBuyToOpen, 10, 50.00, 0, 0, 100, 0)
	assert.Nil(t, m.NetCreditPerShare)
	assert.Nil(t, m.RiskCapitalPerShare)
	assert.Nil(t, m.MarginCapital)
	assert.Nil(t, m.ARORC)
}

func TestComputeMetricsHalfUpStorageRounding(t *testing.T) {
	// Float subtraction alone yields 2.1799999...; storage must carry the
	// exact decimal result.
	m := ComputeMetrics(domain.KindCashSecuredPut, 1, 2.345, 70.00, 0.165, 100, 30)
	require.NotNil(t, m.NetCreditPerShare)
	assert.Equal(t, 2.18, *m.NetCreditPerShare)
	require.NotNil(t, m.RiskCapitalPerShare)
	assert.Equal(t, 67.82, *m.RiskCapitalPerShare)
}
