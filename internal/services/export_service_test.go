package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/salesops/internal/models"
)

func TestProrateByQuantity(t *testing.T) {
	require.Equal(t, float64(300), ProrateByQuantity(900, 1, 3))
	require.Equal(t, float64(600), ProrateByQuantity(900, 2, 3))
	require.Equal(t, float64(0), ProrateByQuantity(900, 1, 0))
	require.Equal(t, float64(0), ProrateByQuantity(0, 2, 3))
}

func TestWeekOfMonth(t *testing.T) {
	// June 2025 starts on a Sunday.
	require.Equal(t, 1, WeekOfMonth(day(2025, 6, 1)))
	require.Equal(t, 1, WeekOfMonth(day(2025, 6, 7)))
	require.Equal(t, 2, WeekOfMonth(day(2025, 6, 8)))
	require.Equal(t, 5, WeekOfMonth(day(2025, 6, 30)))

	// May 2025 starts on a Thursday, so the 4th opens week 2.
	require.Equal(t, 1, WeekOfMonth(day(2025, 5, 3)))
	require.Equal(t, 2, WeekOfMonth(day(2025, 5, 4)))
	require.Equal(t, 5, WeekOfMonth(day(2025, 5, 31)))
}

func TestBuildExportRowsExpandsLines(t *testing.T) {
	orderDate := day(2025, 6, 8)
	orders := []models.OrderHeader{
		{
			ID: "PK01-ASK-20250608-01", CustomerID: "PK01",
			Status: models.StatusPaid, OrderDate: orderDate,
			PaymentMethod: "Wise", PaymentFee: 900,
			RequestedShipping: 300, ActualShipping: 450,
			Carrier: "EMS",
		},
	}
	lines := map[string][]models.OrderLine{
		"PK01-ASK-20250608-01": {
			{LineNo: 1, SKUCode: "SKU00001", ProductName: "151 BOX", Category: "BOX", Quantity: 1, SalesAmount: 5000, CostProvisional: 4000, CostFinal: 3600, LineProfitProvisional: 1000, LineProfitFinal: 1400, RebateRate: 10},
			{LineNo: 2, ProductName: "プロモカード", Category: "シングル", Quantity: 2, SalesAmount: 2000, CostProvisional: 1000, CostFinal: 1000},
		},
	}
	customers := map[string]models.Customer{
		"PK01": {ID: "PK01", Country: "US", AcquisitionSource: "X", CustomerFlag: "VIP"},
	}

	rows := BuildExportRows(orders, lines, customers)
	require.Len(t, rows, 2)

	first := rows[0]
	require.Equal(t, 2025, first.Year)
	require.Equal(t, 6, first.Month)
	require.Equal(t, 2, first.Week)
	require.Equal(t, 1, first.SalesTargetFlag)
	require.Equal(t, "US", first.Country)
	require.Equal(t, "VIP", first.CustomerFlag)
	require.Equal(t, "SKU00001", first.SKUCode)
	require.Equal(t, float64(300), first.AllocatedPaymentFee)
	require.Equal(t, float64(100), first.AllocatedRequestedShipping)
	require.Equal(t, float64(150), first.AllocatedActualShipping)

	second := rows[1]
	require.Equal(t, float64(600), second.AllocatedPaymentFee)
	require.Equal(t, float64(300), second.AllocatedActualShipping)
	require.Equal(t, "EMS", second.Carrier)
}

func TestBuildExportRowsFlagsNonSalesTarget(t *testing.T) {
	orders := []models.OrderHeader{
		{ID: "O1", CustomerID: "PK01", Status: models.StatusPendingPayment, OrderDate: day(2025, 6, 1)},
	}
	lines := map[string][]models.OrderLine{
		"O1": {{LineNo: 1, ProductName: "A", Quantity: 1}},
	}

	rows := BuildExportRows(orders, lines, nil)
	require.Len(t, rows, 1)
	require.Equal(t, 0, rows[0].SalesTargetFlag)
}

func TestBuildExportRowsSkipsOrdersWithoutLines(t *testing.T) {
	orders := []models.OrderHeader{
		{ID: "O1", CustomerID: "PK01", Status: models.StatusPaid, OrderDate: day(2025, 6, 1)},
	}

	rows := BuildExportRows(orders, nil, nil)
	require.Empty(t, rows)
}

func TestBuildExportRowsZeroQuantityTotal(t *testing.T) {
	orders := []models.OrderHeader{
		{ID: "O1", CustomerID: "PK01", Status: models.StatusPaid, OrderDate: day(2025, 6, 1), PaymentFee: 900},
	}
	lines := map[string][]models.OrderLine{
		"O1": {{LineNo: 1, ProductName: "A", Quantity: 0}},
	}

	rows := BuildExportRows(orders, lines, nil)
	require.Len(t, rows, 1)
	require.Equal(t, float64(0), rows[0].AllocatedPaymentFee)
}

type captureIndexer struct {
	rows []models.ExportRow
	fail bool
}

func (c *captureIndexer) IndexExportRow(ctx context.Context, row *models.ExportRow, seq int) error {
	if c.fail {
		return context.DeadlineExceeded
	}
	c.rows = append(c.rows, *row)
	return nil
}

func TestRebuildIndexesEveryRow(t *testing.T) {
	customers := newMemCustomerStore()
	orders := newMemOrderStore()
	ctx := context.Background()

	require.NoError(t, customers.Create(ctx, &models.Customer{ID: "PK01", Name: "Alice", Country: "US"}))
	require.NoError(t, orders.Create(ctx, &models.OrderHeader{
		ID: "PK01-ASK-20250601-01", CustomerID: "PK01",
		Status: models.StatusPaid, OrderDate: day(2025, 6, 1),
		Lines: []models.OrderLine{
			{LineNo: 1, ProductName: "151 BOX", Quantity: 1, SalesAmount: 5000},
			{LineNo: 2, ProductName: "プロモカード", Quantity: 1, SalesAmount: 1000},
		},
	}))

	indexer := &captureIndexer{}
	service := NewExportService(customers, orders, indexer)

	rows, err := service.Rebuild(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Len(t, indexer.rows, 2)
	require.Equal(t, "US", indexer.rows[0].Country)
}

func TestRebuildSurvivesIndexFailures(t *testing.T) {
	customers := newMemCustomerStore()
	orders := newMemOrderStore()
	ctx := context.Background()

	require.NoError(t, customers.Create(ctx, &models.Customer{ID: "PK01", Name: "Alice"}))
	require.NoError(t, orders.Create(ctx, &models.OrderHeader{
		ID: "PK01-ASK-20250601-01", CustomerID: "PK01",
		Status: models.StatusPaid, OrderDate: day(2025, 6, 1),
		Lines: []models.OrderLine{{LineNo: 1, ProductName: "151 BOX", Quantity: 1}},
	}))

	service := NewExportService(customers, orders, &captureIndexer{fail: true})
	rows, err := service.Rebuild(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestRebuildWithoutIndexer(t *testing.T) {
	customers := newMemCustomerStore()
	orders := newMemOrderStore()
	ctx := context.Background()

	require.NoError(t, customers.Create(ctx, &models.Customer{ID: "PK01", Name: "Alice"}))
	require.NoError(t, orders.Create(ctx, &models.OrderHeader{
		ID: "PK01-ASK-20250601-01", CustomerID: "PK01",
		Status: models.StatusPaid, OrderDate: day(2025, 6, 1),
		Lines: []models.OrderLine{{LineNo: 1, ProductName: "151 BOX", Quantity: 1}},
	}))

	service := NewExportService(customers, orders, nil)
	rows, err := service.Rebuild(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
