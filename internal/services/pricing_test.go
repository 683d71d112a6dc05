package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/salesops/internal/models"
)

func TestComputeLineDerivesAllAmounts(t *testing.T) {
	line := ComputeLine(1, LineInput{
		ProductName:     "シャイニートレジャーex BOX",
		Category:        "BOX",
		Quantity:        2,
		UnitPrice:       1000,
		CostProvisional: 800,
		RebateRate:      10,
	})

	require.Equal(t, 1, line.LineNo)
	require.Equal(t, float64(2000), line.SalesAmount)
	require.Equal(t, float64(80), line.RebateAmount)
	require.Equal(t, float64(720), line.CostFinal)
	require.Equal(t, float64(1200), line.LineProfitProvisional)
	require.Equal(t, float64(1280), line.LineProfitFinal)
	require.Equal(t, models.AllocationUnallocated, line.AllocationStatus)
}

func TestComputeLineAppliesDiscount(t *testing.T) {
	line := ComputeLine(2, LineInput{
		ProductName: "151 BOX",
		Quantity:    3,
		UnitPrice:   5000,
		LineDiscount: 500,
	})

	require.Equal(t, float64(14500), line.SalesAmount)
	require.Equal(t, float64(0), line.RebateAmount)
	require.Equal(t, float64(14500), line.LineProfitFinal)
}

func TestSumLinesRollsUpHeaderTotals(t *testing.T) {
	lines := []models.OrderLine{
		ComputeLine(1, LineInput{ProductName: "A", Quantity: 2, UnitPrice: 1000, CostProvisional: 800, RebateRate: 10}),
		ComputeLine(2, LineInput{ProductName: "B", Quantity: 1, UnitPrice: 3000, CostProvisional: 2000}),
	}

	totals := SumLines(lines)
	require.Equal(t, float64(5000), totals.SalesTotal)
	require.Equal(t, float64(2800), totals.CostProvisional)
	require.Equal(t, float64(2720), totals.CostFinal)
	require.Equal(t, float64(2200), totals.GrossProfitProvisional)
	require.Equal(t, float64(2280), totals.GrossProfitFinal)

	var order models.OrderHeader
	ApplyTotals(&order, totals)
	require.Equal(t, totals.SalesTotal, order.SalesTotal)
	require.Equal(t, totals.GrossProfitFinal, order.GrossProfitFinal)
}

func TestSumLinesEmpty(t *testing.T) {
	totals := SumLines(nil)
	require.Equal(t, float64(0), totals.SalesTotal)
	require.Equal(t, float64(0), totals.GrossProfitProvisional)
}
