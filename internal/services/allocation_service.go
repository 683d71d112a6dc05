package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/salesops/internal/metrics"
	"example.com/salesops/internal/models"
)

// AllocationResult reports how an allocation pass went: how many lines were
// reserved plus the per-line failures. Failures never abort the pass.
type AllocationResult struct {
	OrderID        string      `json:"order_id"`
	AllocatedCount int         `json:"allocated_count"`
	Errors         []LineError `json:"errors,omitempty"`
}

// AllocationService matches unfulfilled order lines against available SKU
// stock, reserves quantity and posts reservation entries to the ledger.
type AllocationService struct {
	orders  OrderStore
	skus    SKUStore
	ledger  LedgerStore
	locks   *OrderLocker
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewAllocationService creates a new allocation service
func NewAllocationService(orders OrderStore, skus SKUStore, ledger LedgerStore, locks *OrderLocker, m *metrics.Metrics) *AllocationService {
	return &AllocationService{
		orders:  orders,
		skus:    skus,
		ledger:  ledger,
		locks:   locks,
		metrics: m,
		now:     time.Now,
	}
}

// AllocateOrder reserves stock for every unallocated line of an order.
// Eligibility requires the order status to be in the sales-target set, so
// pending-payment and cancelled orders are rejected up front. Lines already
// reserved or shipped are skipped, which makes a repeated invocation a no-op
// for them: the guard is the allocation status, not the stock math.
func (s *AllocationService) AllocateOrder(ctx context.Context, orderID string) (*AllocationResult, error) {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load order %s", orderID)
	}

	if !order.Status.IsSalesTarget() {
		return nil, Validationf("order %s in status %s is not eligible for allocation", orderID, order.Status)
	}

	result := &AllocationResult{OrderID: orderID}

	for i := range order.Lines {
		line := &order.Lines[i]
		if line.AllocationStatus != models.AllocationUnallocated || line.Quantity <= 0 {
			continue
		}

		sku, err := s.skus.FindInStock(ctx, line.ProductName, line.Category)
		if err != nil {
			if isNotFound(err) {
				result.Errors = append(result.Errors, LineError{
					LineNo:      line.LineNo,
					ProductName: line.ProductName,
					Reason:      ReasonSKUNotFound,
					Required:    line.Quantity,
				})
				continue
			}
			return nil, errors.Wrapf(err, "failed to look up SKU for %q", line.ProductName)
		}

		available := sku.Available()
		if available < line.Quantity {
			result.Errors = append(result.Errors, LineError{
				LineNo:      line.LineNo,
				ProductName: line.ProductName,
				Reason:      ReasonInsufficientStock,
				Required:    line.Quantity,
				Available:   available,
			})
			continue
		}

		sku.QuantityReserved += line.Quantity
		if err := s.skus.Save(ctx, sku); err != nil {
			return nil, errors.Wrapf(err, "failed to reserve stock on SKU %s", sku.Code)
		}

		line.SKUCode = sku.Code
		line.AllocationStatus = models.AllocationReserved
		if err := s.orders.SaveLine(ctx, line); err != nil {
			return nil, errors.Wrapf(err, "failed to mark line %d reserved", line.LineNo)
		}

		// Cost is fixed at purchase, not at reservation, so the ledger
		// records a zero unit price here.
		movement := &models.InventoryMovement{
			Kind:       models.MovementReservation,
			OrderID:    orderID,
			OccurredAt: s.now(),
			SKUCode:    sku.Code,
			Quantity:   -line.Quantity,
			UnitPrice:  0,
			Memo:       "注文引当: " + line.ProductName,
		}
		if err := s.ledger.Append(ctx, movement); err != nil {
			return nil, errors.Wrap(err, "failed to post reservation to ledger")
		}

		result.AllocatedCount++
	}

	if s.metrics != nil {
		s.metrics.IncrementCounterBy("allocation.lines_reserved", int64(result.AllocatedCount))
		s.metrics.IncrementCounterBy("allocation.line_errors", int64(len(result.Errors)))
	}

	log.Info().
		Str("order_id", orderID).
		Int("allocated", result.AllocatedCount).
		Int("errors", len(result.Errors)).
		Msg("Inventory allocation finished")

	return result, nil
}
