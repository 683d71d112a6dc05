package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/salesops/internal/metrics"
	"example.com/salesops/internal/models"
)

// FulfillmentResult reports how many lines were shipped and how many were
// skipped because they carried no SKU reference or were shipped already.
type FulfillmentResult struct {
	OrderID      string `json:"order_id"`
	ShippedLines int    `json:"shipped_lines"`
	SkippedLines int    `json:"skipped_lines"`
}

// FulfillmentService converts reservations into shipped stock: it decrements
// on-hand quantity, releases the reservation, marks lines shipped and posts
// shipment entries to the ledger.
type FulfillmentService struct {
	orders  OrderStore
	skus    SKUStore
	ledger  LedgerStore
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewFulfillmentService creates a new fulfillment service
func NewFulfillmentService(orders OrderStore, skus SKUStore, ledger LedgerStore, m *metrics.Metrics) *FulfillmentService {
	return &FulfillmentService{
		orders:  orders,
		skus:    skus,
		ledger:  ledger,
		metrics: m,
		now:     time.Now,
	}
}

// Process ships every line of an order that has a SKU reference and a positive
// quantity. Lines without a SKU reference were never allocated, so there is
// nothing to ship for them and they are silently skipped; lines already
// shipped are skipped too so a repeated trigger cannot double-decrement stock.
// Each line is applied independently. Callers hold the order lock.
func (s *FulfillmentService) Process(ctx context.Context, orderID string) (*FulfillmentResult, error) {
	lines, err := s.orders.GetLines(ctx, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load lines for order %s", orderID)
	}

	result := &FulfillmentResult{OrderID: orderID}
	shippedAt := s.now()

	for i := range lines {
		line := &lines[i]
		if line.SKUCode == "" || line.Quantity <= 0 {
			result.SkippedLines++
			continue
		}
		if line.AllocationStatus == models.AllocationShipped {
			result.SkippedLines++
			continue
		}

		sku, err := s.skus.GetByCode(ctx, line.SKUCode)
		if err != nil {
			if isNotFound(err) {
				log.Warn().
					Str("order_id", orderID).
					Str("sku", line.SKUCode).
					Int("line_no", line.LineNo).
					Msg("Line references a missing SKU, skipping")
				result.SkippedLines++
				continue
			}
			return nil, errors.Wrapf(err, "failed to load SKU %s", line.SKUCode)
		}

		sku.QuantityOnHand -= line.Quantity
		// Floored at zero: reservation bookkeeping may have drifted and the
		// reserved counter must never go negative.
		sku.QuantityReserved -= line.Quantity
		if sku.QuantityReserved < 0 {
			sku.QuantityReserved = 0
		}
		if err := s.skus.Save(ctx, sku); err != nil {
			return nil, errors.Wrapf(err, "failed to decrement stock on SKU %s", sku.Code)
		}

		line.AllocationStatus = models.AllocationShipped
		if err := s.orders.SaveLine(ctx, line); err != nil {
			return nil, errors.Wrapf(err, "failed to mark line %d shipped", line.LineNo)
		}

		movement := &models.InventoryMovement{
			Kind:       models.MovementShipment,
			OrderID:    orderID,
			OccurredAt: shippedAt,
			SKUCode:    sku.Code,
			Quantity:   -line.Quantity,
			UnitPrice:  0,
			Memo:       "発送出庫: " + line.ProductName,
		}
		if err := s.ledger.Append(ctx, movement); err != nil {
			return nil, errors.Wrap(err, "failed to post shipment to ledger")
		}

		result.ShippedLines++
	}

	if s.metrics != nil {
		s.metrics.IncrementCounterBy("fulfillment.lines_shipped", int64(result.ShippedLines))
	}

	log.Info().
		Str("order_id", orderID).
		Int("shipped", result.ShippedLines).
		Int("skipped", result.SkippedLines).
		Msg("Fulfillment finished")

	return result, nil
}
