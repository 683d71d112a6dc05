package services

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"example.com/salesops/internal/models"
)

// In-memory stores backing the service tests. They satisfy the same store
// interfaces the gorm repositories do and mimic their ordering guarantees.

type memCustomerStore struct {
	customers map[string]*models.Customer
	order     []string
}

func newMemCustomerStore() *memCustomerStore {
	return &memCustomerStore{customers: make(map[string]*models.Customer)}
}

func (s *memCustomerStore) Create(ctx context.Context, customer *models.Customer) error {
	c := *customer
	s.customers[c.ID] = &c
	s.order = append(s.order, c.ID)
	return nil
}

func (s *memCustomerStore) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *memCustomerStore) List(ctx context.Context) ([]models.Customer, error) {
	out := make([]models.Customer, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.customers[id])
	}
	return out, nil
}

func (s *memCustomerStore) SaveAggregates(ctx context.Context, customer *models.Customer) error {
	existing, ok := s.customers[customer.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	existing.PurchaseCount = customer.PurchaseCount
	existing.TotalSpend = customer.TotalSpend
	existing.FirstPurchaseAt = customer.FirstPurchaseAt
	existing.LastPurchaseAt = customer.LastPurchaseAt
	return nil
}

type memOrderStore struct {
	orders map[string]*models.OrderHeader
	lines  map[string][]models.OrderLine
	order  []string
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{
		orders: make(map[string]*models.OrderHeader),
		lines:  make(map[string][]models.OrderLine),
	}
}

func (s *memOrderStore) Create(ctx context.Context, order *models.OrderHeader) error {
	o := *order
	lines := o.Lines
	o.Lines = nil
	s.orders[o.ID] = &o
	s.order = append(s.order, o.ID)
	for _, l := range lines {
		l.OrderID = o.ID
		s.lines[o.ID] = append(s.lines[o.ID], l)
	}
	return nil
}

func (s *memOrderStore) GetByID(ctx context.Context, id string) (*models.OrderHeader, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *o
	copied.Lines = append([]models.OrderLine(nil), s.lines[id]...)
	return &copied, nil
}

func (s *memOrderStore) List(ctx context.Context) ([]models.OrderHeader, error) {
	out := make([]models.OrderHeader, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.orders[id])
	}
	return out, nil
}

func (s *memOrderStore) Save(ctx context.Context, order *models.OrderHeader) error {
	if _, ok := s.orders[order.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	o := *order
	o.Lines = nil
	s.orders[order.ID] = &o
	return nil
}

func (s *memOrderStore) ReplaceLines(ctx context.Context, order *models.OrderHeader, lines []models.OrderLine) error {
	if err := s.Save(ctx, order); err != nil {
		return err
	}
	replaced := make([]models.OrderLine, 0, len(lines))
	for _, l := range lines {
		l.OrderID = order.ID
		replaced = append(replaced, l)
	}
	s.lines[order.ID] = replaced
	return nil
}

func (s *memOrderStore) GetLines(ctx context.Context, orderID string) ([]models.OrderLine, error) {
	return append([]models.OrderLine(nil), s.lines[orderID]...), nil
}

func (s *memOrderStore) ListLines(ctx context.Context) ([]models.OrderLine, error) {
	ids := make([]string, 0, len(s.lines))
	for id := range s.lines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []models.OrderLine
	for _, id := range ids {
		out = append(out, s.lines[id]...)
	}
	return out, nil
}

func (s *memOrderStore) SaveLine(ctx context.Context, line *models.OrderLine) error {
	lines := s.lines[line.OrderID]
	for i := range lines {
		if lines[i].LineNo == line.LineNo {
			lines[i] = *line
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type memSKUStore struct {
	skus  map[string]*models.SKU
	order []string
}

func newMemSKUStore() *memSKUStore {
	return &memSKUStore{skus: make(map[string]*models.SKU)}
}

func (s *memSKUStore) Create(ctx context.Context, sku *models.SKU) error {
	copied := *sku
	s.skus[copied.Code] = &copied
	s.order = append(s.order, copied.Code)
	return nil
}

func (s *memSKUStore) GetByCode(ctx context.Context, code string) (*models.SKU, error) {
	sku, ok := s.skus[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *sku
	return &copied, nil
}

func (s *memSKUStore) List(ctx context.Context) ([]models.SKU, error) {
	out := make([]models.SKU, 0, len(s.order))
	codes := append([]string(nil), s.order...)
	sort.Strings(codes)
	for _, code := range codes {
		out = append(out, *s.skus[code])
	}
	return out, nil
}

func (s *memSKUStore) FindInStock(ctx context.Context, productName, category string) (*models.SKU, error) {
	codes := append([]string(nil), s.order...)
	sort.Strings(codes)
	for _, code := range codes {
		sku := s.skus[code]
		if sku.ProductName == productName && sku.Category == category && sku.StockStatus == models.StockStatusInStock {
			copied := *sku
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memSKUStore) Save(ctx context.Context, sku *models.SKU) error {
	if _, ok := s.skus[sku.Code]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *sku
	s.skus[sku.Code] = &copied
	return nil
}

type memLedgerStore struct {
	movements []models.InventoryMovement
}

func newMemLedgerStore() *memLedgerStore {
	return &memLedgerStore{}
}

func (s *memLedgerStore) Append(ctx context.Context, movement *models.InventoryMovement) error {
	m := *movement
	m.ID = uint(len(s.movements) + 1)
	s.movements = append(s.movements, m)
	return nil
}

func (s *memLedgerStore) ListBySKU(ctx context.Context, skuCode string) ([]models.InventoryMovement, error) {
	var out []models.InventoryMovement
	for _, m := range s.movements {
		if m.SKUCode == skuCode {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memLedgerStore) ListByOrder(ctx context.Context, orderID string) ([]models.InventoryMovement, error) {
	var out []models.InventoryMovement
	for _, m := range s.movements {
		if m.OrderID == orderID {
			out = append(out, m)
		}
	}
	return out, nil
}

type memCounterStore struct {
	counters map[string]int64
}

func newMemCounterStore() *memCounterStore {
	return &memCounterStore{counters: make(map[string]int64)}
}

func (s *memCounterStore) Next(ctx context.Context, key string) (int64, error) {
	s.counters[key]++
	return s.counters[key], nil
}
