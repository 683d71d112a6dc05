package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/salesops/internal/metrics"
	"example.com/salesops/internal/models"
)

// SKUInput is the structured input for registering purchased stock.
type SKUInput struct {
	ProductName string     `json:"product_name"`
	Category    string     `json:"category"`
	Spec        string     `json:"spec"`
	Condition   string     `json:"condition"`
	PurchasedAt *time.Time `json:"purchased_at"`
	Quantity    float64    `json:"quantity"`
	UnitPrice   float64    `json:"unit_price"`
	Shipping    float64    `json:"shipping"`
	RebateRate  float64    `json:"rebate_rate"`
	Supplier    string     `json:"supplier"`
	Location    string     `json:"location"`
	Memo        string     `json:"memo"`
}

// InventoryService registers purchased stock and exposes the ledger.
type InventoryService struct {
	skus    SKUStore
	ledger  LedgerStore
	ids     *IDGenerator
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewInventoryService creates a new inventory service
func NewInventoryService(skus SKUStore, ledger LedgerStore, ids *IDGenerator, m *metrics.Metrics) *InventoryService {
	return &InventoryService{
		skus:    skus,
		ledger:  ledger,
		ids:     ids,
		metrics: m,
		now:     time.Now,
	}
}

// RegisterSKU creates a SKU under a generated code with the purchased
// quantity on hand and posts an intake entry to the ledger. Intake is the one
// movement kind that records a real unit cost.
func (s *InventoryService) RegisterSKU(ctx context.Context, in SKUInput) (*models.SKU, error) {
	if in.ProductName == "" {
		return nil, Validationf("product name is required")
	}
	if in.Quantity <= 0 {
		return nil, Validationf("purchase quantity must be positive")
	}

	code, err := s.ids.NextSKUCode(ctx)
	if err != nil {
		return nil, err
	}

	sku := &models.SKU{
		Code:              code,
		ProductName:       in.ProductName,
		Category:          in.Category,
		Spec:              in.Spec,
		Condition:         in.Condition,
		PurchasedAt:       in.PurchasedAt,
		PurchaseQuantity:  in.Quantity,
		PurchaseUnitPrice: in.UnitPrice,
		PurchaseShipping:  in.Shipping,
		RebateRate:        in.RebateRate,
		Supplier:          in.Supplier,
		StockStatus:       models.StockStatusInStock,
		Location:          in.Location,
		QuantityOnHand:    in.Quantity,
		QuantityReserved:  0,
		Memo:              in.Memo,
	}
	if err := s.skus.Create(ctx, sku); err != nil {
		return nil, errors.Wrap(err, "failed to create SKU")
	}

	movement := &models.InventoryMovement{
		Kind:       models.MovementIntake,
		OccurredAt: s.now(),
		SKUCode:    code,
		Quantity:   in.Quantity,
		UnitPrice:  in.UnitPrice,
		Memo:       "仕入入庫: " + in.ProductName,
	}
	if err := s.ledger.Append(ctx, movement); err != nil {
		return nil, errors.Wrap(err, "failed to post intake to ledger")
	}

	if s.metrics != nil {
		s.metrics.IncrementCounter("inventory.skus_registered")
	}
	log.Info().Str("sku", code).Str("product", in.ProductName).Float64("quantity", in.Quantity).Msg("SKU registered")

	return sku, nil
}

// ListSKUs lists all SKUs
func (s *InventoryService) ListSKUs(ctx context.Context) ([]models.SKU, error) {
	return s.skus.List(ctx)
}

// GetSKU gets one SKU with its ledger history
func (s *InventoryService) GetSKU(ctx context.Context, code string) (*models.SKU, []models.InventoryMovement, error) {
	sku, err := s.skus.GetByCode(ctx, code)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to load SKU %s", code)
	}
	movements, err := s.ledger.ListBySKU(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	return sku, movements, nil
}

// OrderMovements lists the ledger entries posted for an order
func (s *InventoryService) OrderMovements(ctx context.Context, orderID string) ([]models.InventoryMovement, error) {
	return s.ledger.ListByOrder(ctx, orderID)
}
