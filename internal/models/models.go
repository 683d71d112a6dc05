package models

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Customer is a buyer of the shop. Aggregate fields (purchase count, total
// spend, first/last purchase) are derived from orders in the sales-target
// statuses and are overwritten wholesale by the aggregation refresh; they are
// never a source of truth on their own.
type Customer struct {
	ID                string     `gorm:"primaryKey" json:"id"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Name              string     `gorm:"not null" json:"name"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	Address1          string     `json:"address1"`
	Address2          string     `json:"address2"`
	PostalCode        string     `json:"postal_code"`
	Country           string     `json:"country"`
	AcquisitionSource string     `json:"acquisition_source"`
	CustomerFlag      string     `json:"customer_flag"`
	InterestBox       bool       `json:"interest_box"`
	InterestPSA       bool       `json:"interest_psa"`
	InterestSingle    bool       `json:"interest_single"`
	InterestBulk      bool       `json:"interest_bulk"`
	PaysWithWise      bool       `json:"pays_with_wise"`
	PaysWithPayPal    bool       `json:"pays_with_paypal"`
	PIIConsent        bool       `json:"pii_consent"`
	ConsentAt         *time.Time `json:"consent_at"`
	DeletionRequested bool       `json:"deletion_requested"`
	DeletionHandledAt *time.Time `json:"deletion_handled_at"`
	DoNotContact      bool       `json:"do_not_contact"`
	Memo              string     `json:"memo"`
	PurchaseCount     int        `gorm:"not null;default:0" json:"purchase_count"`
	TotalSpend        float64    `gorm:"not null;default:0" json:"total_spend"`
	FirstPurchaseAt   *time.Time `json:"first_purchase_at"`
	LastPurchaseAt    *time.Time `json:"last_purchase_at"`
}

// OrderHeader is one order. CustomerName is denormalized from the customer at
// creation time and deliberately not refreshed on later customer edits.
// Monetary totals always equal the sums of the corresponding line fields.
type OrderHeader struct {
	ID                     string      `gorm:"primaryKey" json:"id"`
	CreatedAt              time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
	CustomerID             string      `gorm:"index;not null" json:"customer_id"`
	CustomerName           string      `json:"customer_name"`
	OrderDate              time.Time   `gorm:"not null" json:"order_date"`
	PaymentMethod          string      `json:"payment_method"`
	Status                 OrderStatus `gorm:"not null" json:"status"`
	PaymentReceivedAt      *time.Time  `json:"payment_received_at"`
	PaymentReference       string      `json:"payment_reference"`
	PaymentFee             float64     `gorm:"not null;default:0" json:"payment_fee"`
	RequestedShipping      float64     `gorm:"not null;default:0" json:"requested_shipping"`
	ActualShipping         float64     `gorm:"not null;default:0" json:"actual_shipping"`
	Carrier                string      `json:"carrier"`
	TrackingNumber         string      `json:"tracking_number"`
	ShippedAt              *time.Time  `json:"shipped_at"`
	TrackingSentAt         *time.Time  `json:"tracking_sent_at"`
	ArrivedAt              *time.Time  `json:"arrived_at"`
	SalesTotal             float64     `gorm:"not null;default:0" json:"sales_total"`
	CostProvisional        float64     `gorm:"not null;default:0" json:"cost_provisional"`
	CostFinal              float64     `gorm:"not null;default:0" json:"cost_final"`
	GrossProfitProvisional float64     `gorm:"not null;default:0" json:"gross_profit_provisional"`
	GrossProfitFinal       float64     `gorm:"not null;default:0" json:"gross_profit_final"`
	Memo                   string      `json:"memo"`
	Lines                  []OrderLine `gorm:"foreignKey:OrderID" json:"lines,omitempty"`
}

// AllocationStatus tracks how far a line has come through stock bookkeeping.
type AllocationStatus string

const (
	AllocationUnallocated AllocationStatus = "未"
	AllocationReserved    AllocationStatus = "引当"
	AllocationShipped     AllocationStatus = "出庫済"
)

// OrderLine is one line item of an order, owned exclusively by its header.
type OrderLine struct {
	ID                    uint             `gorm:"primaryKey" json:"-"`
	CreatedAt             time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
	OrderID               string           `gorm:"index;not null;uniqueIndex:idx_order_line" json:"order_id"`
	LineNo                int              `gorm:"not null;uniqueIndex:idx_order_line" json:"line_no"`
	SKUCode               string           `gorm:"index" json:"sku_code"`
	ProductName           string           `gorm:"not null" json:"product_name"`
	Category              string           `json:"category"`
	Quantity              float64          `gorm:"not null;default:0" json:"quantity"`
	UnitPrice             float64          `gorm:"not null;default:0" json:"unit_price"`
	LineDiscount          float64          `gorm:"not null;default:0" json:"line_discount"`
	SalesAmount           float64          `gorm:"not null;default:0" json:"sales_amount"`
	CostProvisional       float64          `gorm:"not null;default:0" json:"cost_provisional"`
	RebateRate            float64          `gorm:"not null;default:0" json:"rebate_rate"`
	RebateAmount          float64          `gorm:"not null;default:0" json:"rebate_amount"`
	CostFinal             float64          `gorm:"not null;default:0" json:"cost_final"`
	LineProfitProvisional float64          `gorm:"not null;default:0" json:"line_profit_provisional"`
	LineProfitFinal       float64          `gorm:"not null;default:0" json:"line_profit_final"`
	AllocationStatus      AllocationStatus `gorm:"not null;default:'未'" json:"allocation_status"`
	Memo                  string           `json:"memo"`
}

// StockStatus values for a SKU. Only in-stock SKUs are visible to allocation.
const (
	StockStatusInStock = "在庫"
	StockStatusSoldOut = "売切"
)

// SKU is a stock-keeping unit. QuantityReserved never exceeds QuantityOnHand;
// their difference is what allocation may still commit.
type SKU struct {
	Code              string     `gorm:"primaryKey" json:"code"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	ProductName       string     `gorm:"index;not null" json:"product_name"`
	Category          string     `gorm:"index" json:"category"`
	Spec              string     `json:"spec"`
	Condition         string     `json:"condition"`
	PurchasedAt       *time.Time `json:"purchased_at"`
	PurchaseQuantity  float64    `gorm:"not null;default:0" json:"purchase_quantity"`
	PurchaseUnitPrice float64    `gorm:"not null;default:0" json:"purchase_unit_price"`
	PurchaseShipping  float64    `gorm:"not null;default:0" json:"purchase_shipping"`
	RebateRate        float64    `gorm:"not null;default:0" json:"rebate_rate"`
	Supplier          string     `json:"supplier"`
	StockStatus       string     `gorm:"not null;default:'在庫'" json:"stock_status"`
	Location          string     `json:"location"`
	QuantityOnHand    float64    `gorm:"not null;default:0" json:"quantity_on_hand"`
	QuantityReserved  float64    `gorm:"not null;default:0" json:"quantity_reserved"`
	Memo              string     `json:"memo"`
}

// Available is the sellable quantity exposed to allocation.
func (s *SKU) Available() float64 {
	return s.QuantityOnHand - s.QuantityReserved
}

// MovementKind classifies inventory ledger entries.
type MovementKind string

const (
	MovementIntake      MovementKind = "入庫"
	MovementReservation MovementKind = "予約"
	MovementShipment    MovementKind = "出庫"
)

// InventoryMovement is one row of the append-only stock ledger. Rows are
// created and never updated or deleted; the sum of quantities per SKU must
// reconcile with that SKU's counters.
type InventoryMovement struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time    `gorm:"autoCreateTime" json:"created_at"`
	Kind       MovementKind `gorm:"not null" json:"kind"`
	OrderID    string       `gorm:"index" json:"order_id"`
	OccurredAt time.Time    `gorm:"not null" json:"occurred_at"`
	SKUCode    string       `gorm:"index;not null" json:"sku_code"`
	Quantity   float64      `gorm:"not null" json:"quantity"`
	UnitPrice  float64      `gorm:"not null;default:0" json:"unit_price"`
	Memo       string       `json:"memo"`
}

// SequenceCounter backs the ID generators. Values are handed out via the
// counter repository under a row lock.
type SequenceCounter struct {
	Key   string `gorm:"primaryKey" json:"key"`
	Value int64  `gorm:"not null;default:0" json:"value"`
}

// SetupModels configures GORM models and runs migrations
func SetupModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Customer{},
		&OrderHeader{},
		&OrderLine{},
		&SKU{},
		&InventoryMovement{},
		&SequenceCounter{},
	)
	if err != nil {
		return errors.Wrap(err, "failed to run auto migrations")
	}

	return nil
}
