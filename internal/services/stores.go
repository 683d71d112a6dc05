package services

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/salesops/internal/models"
)

// The services consume narrow store interfaces rather than the concrete gorm
// repositories so the bookkeeping logic can be exercised against in-memory
// fakes. The repositories package satisfies all of them.

// CustomerStore provides customer persistence
type CustomerStore interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	List(ctx context.Context) ([]models.Customer, error)
	SaveAggregates(ctx context.Context, customer *models.Customer) error
}

// OrderStore provides order header and line persistence
type OrderStore interface {
	Create(ctx context.Context, order *models.OrderHeader) error
	GetByID(ctx context.Context, id string) (*models.OrderHeader, error)
	List(ctx context.Context) ([]models.OrderHeader, error)
	Save(ctx context.Context, order *models.OrderHeader) error
	ReplaceLines(ctx context.Context, order *models.OrderHeader, lines []models.OrderLine) error
	GetLines(ctx context.Context, orderID string) ([]models.OrderLine, error)
	ListLines(ctx context.Context) ([]models.OrderLine, error)
	SaveLine(ctx context.Context, line *models.OrderLine) error
}

// SKUStore provides stock-keeping unit persistence
type SKUStore interface {
	Create(ctx context.Context, sku *models.SKU) error
	GetByCode(ctx context.Context, code string) (*models.SKU, error)
	List(ctx context.Context) ([]models.SKU, error)
	FindInStock(ctx context.Context, productName, category string) (*models.SKU, error)
	Save(ctx context.Context, sku *models.SKU) error
}

// LedgerStore provides the append-only inventory movement ledger
type LedgerStore interface {
	Append(ctx context.Context, movement *models.InventoryMovement) error
	ListBySKU(ctx context.Context, skuCode string) ([]models.InventoryMovement, error)
	ListByOrder(ctx context.Context, orderID string) ([]models.InventoryMovement, error)
}

// CounterStore hands out sequence numbers for ID generation
type CounterStore interface {
	Next(ctx context.Context, key string) (int64, error)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// OrderLocker serializes mutating operations per order ID. The store's
// read-modify-write on shared counters is not atomic across the read and the
// write, so every mutation of an order and its stock runs under its lock.
type OrderLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewOrderLocker creates a new order locker
func NewOrderLocker() *OrderLocker {
	return &OrderLocker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for an order ID and returns its unlock function
func (l *OrderLocker) Lock(orderID string) func() {
	l.mu.Lock()
	m, ok := l.locks[orderID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[orderID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
