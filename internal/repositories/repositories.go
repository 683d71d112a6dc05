package repositories

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/salesops/internal/models"
)

// CustomerRepository provides access to customer data
type CustomerRepository struct {
	db         *gorm.DB // Write database
	readOnlyDB *gorm.DB // Read-only database
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB, readOnlyDB *gorm.DB) *CustomerRepository {
	return &CustomerRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// Create creates a new customer
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

// GetByID gets a customer by ID
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	var customer models.Customer
	err := r.readOnlyDB.WithContext(ctx).First(&customer, "id = ?", id).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to get customer by ID")
	}
	return &customer, nil
}

// List lists all customers in creation order
func (r *CustomerRepository) List(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.readOnlyDB.WithContext(ctx).Order("created_at").Find(&customers).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list customers")
	}
	return customers, nil
}

// SaveAggregates overwrites the derived aggregate fields of a customer
func (r *CustomerRepository) SaveAggregates(ctx context.Context, customer *models.Customer) error {
	result := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customer.ID).
		Updates(map[string]interface{}{
			"purchase_count":    customer.PurchaseCount,
			"total_spend":       customer.TotalSpend,
			"first_purchase_at": customer.FirstPurchaseAt,
			"last_purchase_at":  customer.LastPurchaseAt,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to save customer aggregates")
	}
	return nil
}

// OrderRepository provides access to order headers and their lines
type OrderRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB, readOnlyDB *gorm.DB) *OrderRepository {
	return &OrderRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// Create creates an order header together with its initial lines
func (r *OrderRepository) Create(ctx context.Context, order *models.OrderHeader) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// GetByID gets an order header with its lines, ordered by line number
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.OrderHeader, error) {
	var order models.OrderHeader
	err := r.readOnlyDB.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no") }).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to get order by ID")
	}
	return &order, nil
}

// List lists all order headers in creation order
func (r *OrderRepository) List(ctx context.Context) ([]models.OrderHeader, error) {
	var orders []models.OrderHeader
	err := r.readOnlyDB.WithContext(ctx).Order("created_at").Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}
	return orders, nil
}

// Save persists the full order header row
func (r *OrderRepository) Save(ctx context.Context, order *models.OrderHeader) error {
	return r.db.WithContext(ctx).Omit("Lines").Save(order).Error
}

// ReplaceLines replaces every line of an order and updates the header totals
// in one transaction. Lines are replaced wholesale on re-import.
func (r *OrderRepository) ReplaceLines(ctx context.Context, order *models.OrderHeader, lines []models.OrderLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderLine{}).Error; err != nil {
			return errors.Wrap(err, "failed to delete existing order lines")
		}
		for i := range lines {
			lines[i].ID = 0
			lines[i].OrderID = order.ID
			if err := tx.Create(&lines[i]).Error; err != nil {
				return errors.Wrap(err, "failed to create order line")
			}
		}
		if err := tx.Omit("Lines").Save(order).Error; err != nil {
			return errors.Wrap(err, "failed to update order totals")
		}
		return nil
	})
}

// GetLines gets the lines of an order ordered by line number
func (r *OrderRepository) GetLines(ctx context.Context, orderID string) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	err := r.readOnlyDB.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("line_no").
		Find(&lines).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to get order lines")
	}
	return lines, nil
}

// ListLines lists every order line, grouped by order and line number
func (r *OrderRepository) ListLines(ctx context.Context) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	err := r.readOnlyDB.WithContext(ctx).
		Order("order_id, line_no").
		Find(&lines).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list order lines")
	}
	return lines, nil
}

// SaveLine persists a single order line
func (r *OrderRepository) SaveLine(ctx context.Context, line *models.OrderLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

// SKURepository provides access to stock-keeping units
type SKURepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewSKURepository creates a new SKU repository
func NewSKURepository(db *gorm.DB, readOnlyDB *gorm.DB) *SKURepository {
	return &SKURepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// Create creates a new SKU
func (r *SKURepository) Create(ctx context.Context, sku *models.SKU) error {
	return r.db.WithContext(ctx).Create(sku).Error
}

// GetByCode gets a SKU by its code
func (r *SKURepository) GetByCode(ctx context.Context, code string) (*models.SKU, error) {
	var sku models.SKU
	err := r.readOnlyDB.WithContext(ctx).First(&sku, "code = ?", code).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to get SKU by code")
	}
	return &sku, nil
}

// List lists all SKUs in code order
func (r *SKURepository) List(ctx context.Context) ([]models.SKU, error) {
	var skus []models.SKU
	err := r.readOnlyDB.WithContext(ctx).Order("code").Find(&skus).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list SKUs")
	}
	return skus, nil
}

// FindInStock finds the first in-stock SKU for a product name and category,
// in code order. Returns gorm.ErrRecordNotFound when nothing matches.
func (r *SKURepository) FindInStock(ctx context.Context, productName, category string) (*models.SKU, error) {
	var sku models.SKU
	err := r.readOnlyDB.WithContext(ctx).
		Where("product_name = ? AND category = ? AND stock_status = ?", productName, category, models.StockStatusInStock).
		Order("code").
		First(&sku).Error
	if err != nil {
		return nil, err
	}
	return &sku, nil
}

// Save persists the full SKU row
func (r *SKURepository) Save(ctx context.Context, sku *models.SKU) error {
	return r.db.WithContext(ctx).Save(sku).Error
}

// LedgerRepository provides access to the append-only inventory ledger.
// Entries are only ever created; there is no update or delete path.
type LedgerRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB, readOnlyDB *gorm.DB) *LedgerRepository {
	return &LedgerRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// Append appends a movement to the ledger
func (r *LedgerRepository) Append(ctx context.Context, movement *models.InventoryMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// ListBySKU lists a SKU's movements in posting order
func (r *LedgerRepository) ListBySKU(ctx context.Context, skuCode string) ([]models.InventoryMovement, error) {
	var movements []models.InventoryMovement
	err := r.readOnlyDB.WithContext(ctx).
		Where("sku_code = ?", skuCode).
		Order("id").
		Find(&movements).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list movements by SKU")
	}
	return movements, nil
}

// ListByOrder lists an order's movements in posting order
func (r *LedgerRepository) ListByOrder(ctx context.Context, orderID string) ([]models.InventoryMovement, error) {
	var movements []models.InventoryMovement
	err := r.readOnlyDB.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id").
		Find(&movements).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list movements by order")
	}
	return movements, nil
}

// CounterRepository hands out sequence numbers. Next takes a row-level lock so
// two concurrent callers can never receive the same value.
type CounterRepository struct {
	db *gorm.DB
}

// NewCounterRepository creates a new counter repository
func NewCounterRepository(db *gorm.DB) *CounterRepository {
	return &CounterRepository{db: db}
}

// Next atomically increments and returns the counter for key
func (r *CounterRepository) Next(ctx context.Context, key string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counter models.SequenceCounter
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&counter, "key = ?", key).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			counter = models.SequenceCounter{Key: key}
			if err := tx.Create(&counter).Error; err != nil {
				return errors.Wrap(err, "failed to create sequence counter")
			}
		} else if err != nil {
			return errors.Wrap(err, "failed to lock sequence counter")
		}

		counter.Value++
		if err := tx.Save(&counter).Error; err != nil {
			return errors.Wrap(err, "failed to advance sequence counter")
		}
		value = counter.Value
		return nil
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}
