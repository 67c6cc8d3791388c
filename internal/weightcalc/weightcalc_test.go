package weightcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetWeight(t *testing.T) {
	net, err := NetWeight(25000, 8000)
	require.NoError(t, err)
	assert.Equal(t, int64(17000), net)
}

func TestNetWeight_GrossNotAboveTare(t *testing.T) {
	_, err := NetWeight(8000, 8000)
	require.Error(t, err)

	_, err = NetWeight(7000, 8000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must exceed tare")
}

func TestMoistureDeduction_AtOrBelowBaseline(t *testing.T) {
	// At baseline: zero deduction
	assert.Equal(t, int64(0), MoistureDeduction(17000, 115, 115))
	// Below baseline: still zero — drier coffee earns no bonus
	assert.Equal(t, int64(0), MoistureDeduction(17000, 90, 115))
}

func TestMoistureDeduction_AboveBaseline(t *testing.T) {
	// 13.5% moisture on 17000kg: excess 2.0% → 340kg
	assert.Equal(t, int64(340), MoistureDeduction(17000, 135, 115))
	// 0.1% excess on 17000kg → 17kg
	assert.Equal(t, int64(17), MoistureDeduction(17000, 116, 115))
}

func TestMoistureDeduction_RoundsHalfUp(t *testing.T) {
	// 999kg at 0.1% excess = 0.999 → rounds to 1
	assert.Equal(t, int64(1), MoistureDeduction(999, 116, 115))
	// 499kg at 0.1% excess = 0.499 → rounds to 0
	assert.Equal(t, int64(0), MoistureDeduction(499, 116, 115))
	// 500kg at 0.1% excess = 0.500 → rounds up to 1
	assert.Equal(t, int64(1), MoistureDeduction(500, 116, 115))
}

func TestFinalNetWeight_FlooredAtZero(t *testing.T) {
	assert.Equal(t, int64(16660), FinalNetWeight(17000, 340))
	assert.Equal(t, int64(0), FinalNetWeight(100, 150))
}

func TestDerive_WorkedExample(t *testing.T) {
	// Gross 25000, tare 8000, moisture 13.5%, price 8000 UGX/kg:
	// net 17000, deduction 340, final 16660, total 133,280,000
	d, err := Derive(25000, 8000, 135, DefaultMoistureBaseline, 8000)
	require.NoError(t, err)
	assert.Equal(t, int64(17000), d.NetWeightKg)
	assert.Equal(t, int64(340), d.DeductionKg)
	assert.Equal(t, int64(16660), d.FinalNetWeightKg)
	assert.Equal(t, int64(133280000), d.TotalAmountUGX)
}

func TestDeriveFromNet_Deterministic(t *testing.T) {
	a := DeriveFromNet(17000, 135, 115, 8000)
	b := DeriveFromNet(17000, 135, 115, 8000)
	assert.Equal(t, a, b)
}

func TestDeriveFromNet_NoDeductionPath(t *testing.T) {
	d := DeriveFromNet(12000, 110, 115, 7500)
	assert.Equal(t, int64(0), d.DeductionKg)
	assert.Equal(t, int64(12000), d.FinalNetWeightKg)
	assert.Equal(t, int64(90000000), d.TotalAmountUGX)
}
