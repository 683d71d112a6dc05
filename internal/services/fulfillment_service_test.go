package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/salesops/internal/models"
)

func newFulfillmentFixture(t *testing.T) (*FulfillmentService, *memOrderStore, *memSKUStore, *memLedgerStore) {
	t.Helper()
	orders := newMemOrderStore()
	skus := newMemSKUStore()
	ledger := newMemLedgerStore()
	service := NewFulfillmentService(orders, skus, ledger, nil)
	service.now = func() time.Time { return time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC) }
	return service, orders, skus, ledger
}

func TestProcessShipsReservedLines(t *testing.T) {
	service, orders, skus, ledger := newFulfillmentFixture(t)
	ctx := context.Background()

	require.NoError(t, skus.Create(ctx, &models.SKU{
		Code: "SKU00001", ProductName: "151 BOX", Category: "BOX",
		StockStatus: models.StockStatusInStock, QuantityOnHand: 5, QuantityReserved: 2,
	}))
	require.NoError(t, orders.Create(ctx, &models.OrderHeader{
		ID: "PK01-ASK-20250301-01", CustomerID: "PK01", Status: models.StatusShipped,
		OrderDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Lines: []models.OrderLine{
			{LineNo: 1, ProductName: "151 BOX", SKUCode: "SKU00001", Quantity: 2, AllocationStatus: models.AllocationReserved},
		},
	}))

	result, err := service.Process(ctx, "PK01-ASK-20250301-01")
	require.NoError(t, err)
	require.Equal(t, 1, result.ShippedLines)
	require.Equal(t, 0, result.SkippedLines)

	sku, err := skus.GetByCode(ctx, "SKU00001")
	require.NoError(t, err)
	require.Equal(t, float64(3), sku.QuantityOnHand)
	require.Equal(t, float64(0), sku.QuantityReserved)

	lines, err := orders.GetLines(ctx, "PK01-ASK-20250301-01")
	require.NoError(t, err)
	require.Equal(t, models.AllocationShipped, lines[0].AllocationStatus)

	movements, err := ledger.ListByOrder(ctx, "PK01-ASK-20250301-01")
	require.NoError(t, err)
	require.Len(t, movements, 1)
	require.Equal(t, models.MovementShipment, movements[0].Kind)
	require.Equal(t, float64(-2), movements[0].Quantity)
}

func TestProcessSkipsLinesWithoutSKUReference(t *testing.T) {
	service, orders, skus, _ := newFulfillmentFixture(t)
	ctx := context.Background()

	require.NoError(t, skus.Create(ctx, &models.SKU{
		Code: "SKU00001", ProductName: "151 BOX",
		StockStatus: models.StockStatusInStock, QuantityOnHand: 5, QuantityReserved: 1,
	}))
	require.NoError(t, orders.Create(ctx, &models.OrderHeader{
		ID: "PK01-ASK-20250301-01", CustomerID: "PK01", Status: models.StatusShipped,
		OrderDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Lines: []models.OrderLine{
			{LineNo: 1, ProductName: "未引当商品", SKUCode: "", Quantity: 1, AllocationStatus: models.AllocationUnallocated},
			{LineNo: 2, ProductName: "151 BOX", SKUCode: "SKU00001", Quantity: 1, AllocationStatus: models.AllocationReserved},
		},
	}))

	result, err := service.Process(ctx, "PK01-ASK-20250301-01")
	require.NoError(t, err)
	require.Equal(t, 1, result.ShippedLines)
	require.Equal(t, 1, result.SkippedLines)

	// The line without a SKU is left untouched.
	lines, err := orders.GetLines(ctx, "PK01-ASK-20250301-01")
	require.NoError(t, err)
	require.Equal(t, models.AllocationUnallocated, lines[0].AllocationStatus)
	require.Equal(t, models.AllocationShipped, lines[1].AllocationStatus)
}

func TestProcessFloorsReservedAtZero(t *testing.T) {
	service, orders, skus, _ := newFulfillmentFixture(t)
	ctx := context.Background()

	// Reservation bookkeeping drifted: less reserved than the line ships.
	require.NoError(t, skus.Create(ctx, &models.SKU{
		Code: "SKU00001", ProductName: "151 BOX",
		StockStatus: models.StockStatusInStock, QuantityOnHand: 5, QuantityReserved: 1,
	}))
	require.NoError(t, orders.Create(ctx, &models.OrderHeader{
		ID: "PK01-ASK-20250301-01", CustomerID: "PK01", Status: models.StatusShipped,
		OrderDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Lines: []models.OrderLine{
			{LineNo: 1, ProductName: "151 BOX", SKUCode: "SKU00001", Quantity: 3, AllocationStatus: models.AllocationReserved},
		},
	}))

	_, err := service.Process(ctx, "PK01-ASK-20250301-01")
	require.NoError(t, err)

	sku, err := skus.GetByCode(ctx, "SKU00001")
	require.NoError(t, err)
	require.Equal(t, float64(2), sku.QuantityOnHand)
	require.Equal(t, float64(0), sku.QuantityReserved)
}

func TestProcessIsIdempotent(t *testing.T) {
	service, orders, skus, ledger := newFulfillmentFixture(t)
	ctx := context.Background()

	require.NoError(t, skus.Create(ctx, &models.SKU{
		Code: "SKU00001", ProductName: "151 BOX",
		StockStatus: models.StockStatusInStock, QuantityOnHand: 5, QuantityReserved: 2,
	}))
	require.NoError(t, orders.Create(ctx, &models.OrderHeader{
		ID: "PK01-ASK-20250301-01", CustomerID: "PK01", Status: models.StatusShipped,
		OrderDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Lines: []models.OrderLine{
			{LineNo: 1, ProductName: "151 BOX", SKUCode: "SKU00001", Quantity: 2, AllocationStatus: models.AllocationReserved},
		},
	}))

	_, err := service.Process(ctx, "PK01-ASK-20250301-01")
	require.NoError(t, err)

	result, err := service.Process(ctx, "PK01-ASK-20250301-01")
	require.NoError(t, err)
	require.Equal(t, 0, result.ShippedLines)
	require.Equal(t, 1, result.SkippedLines)

	sku, err := skus.GetByCode(ctx, "SKU00001")
	require.NoError(t, err)
	require.Equal(t, float64(3), sku.QuantityOnHand)

	movements, err := ledger.ListByOrder(ctx, "PK01-ASK-20250301-01")
	require.NoError(t, err)
	require.Len(t, movements, 1)
}

func TestProcessSkipsMissingSKU(t *testing.T) {
	service, orders, _, _ := newFulfillmentFixture(t)
	ctx := context.Background()

	require.NoError(t, orders.Create(ctx, &models.OrderHeader{
		ID: "PK01-ASK-20250301-01", CustomerID: "PK01", Status: models.StatusShipped,
		OrderDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Lines: []models.OrderLine{
			{LineNo: 1, ProductName: "151 BOX", SKUCode: "SKU99999", Quantity: 1, AllocationStatus: models.AllocationReserved},
		},
	}))

	result, err := service.Process(ctx, "PK01-ASK-20250301-01")
	require.NoError(t, err)
	require.Equal(t, 0, result.ShippedLines)
	require.Equal(t, 1, result.SkippedLines)
}
