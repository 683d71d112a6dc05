package services

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/salesops/internal/models"
)

// ExportIndexer pushes export rows to the analytics index. Implemented by the
// search package's Elasticsearch client.
type ExportIndexer interface {
	IndexExportRow(ctx context.Context, row *models.ExportRow, seq int) error
}

// ProrateByQuantity allocates an order-level amount onto a line by the ratio
// quantity / totalQuantity. A zero total allocates zero, never a division by
// zero.
func ProrateByQuantity(amount, quantity, totalQuantity float64) float64 {
	if totalQuantity <= 0 {
		return 0
	}
	return amount * quantity / totalQuantity
}

// WeekOfMonth computes the calendar week of the month of a date, where weeks
// start on Sunday and week 1 is the week containing the 1st.
func WeekOfMonth(t time.Time) int {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	offset := int(firstOfMonth.Weekday())
	return int(math.Ceil(float64(t.Day()+offset) / 7))
}

// BuildExportRows expands orders into one export row per (order, line) pair.
func BuildExportRows(orders []models.OrderHeader, linesByOrder map[string][]models.OrderLine, customersByID map[string]models.Customer) []models.ExportRow {
	var rows []models.ExportRow
	for i := range orders {
		o := &orders[i]
		lines := linesByOrder[o.ID]
		if len(lines) == 0 {
			continue
		}

		var totalQuantity float64
		for _, l := range lines {
			totalQuantity += l.Quantity
		}

		customer := customersByID[o.CustomerID]

		flag := 0
		if o.Status.IsSalesTarget() {
			flag = 1
		}

		for _, l := range lines {
			rows = append(rows, models.ExportRow{
				OrderDate:                  o.OrderDate,
				Year:                       o.OrderDate.Year(),
				Month:                      int(o.OrderDate.Month()),
				Week:                       WeekOfMonth(o.OrderDate),
				OrderID:                    o.ID,
				OrderStatus:                o.Status,
				SalesTargetFlag:            flag,
				CustomerID:                 o.CustomerID,
				Country:                    customer.Country,
				AcquisitionSource:          customer.AcquisitionSource,
				CustomerFlag:               customer.CustomerFlag,
				PaymentMethod:              o.PaymentMethod,
				SKUCode:                    l.SKUCode,
				ProductName:                l.ProductName,
				Category:                   l.Category,
				Quantity:                   l.Quantity,
				SalesAmount:                l.SalesAmount,
				CostProvisional:            l.CostProvisional,
				CostFinal:                  l.CostFinal,
				LineProfitProvisional:      l.LineProfitProvisional,
				LineProfitFinal:            l.LineProfitFinal,
				AllocatedPaymentFee:        ProrateByQuantity(o.PaymentFee, l.Quantity, totalQuantity),
				AllocatedRequestedShipping: ProrateByQuantity(o.RequestedShipping, l.Quantity, totalQuantity),
				AllocatedActualShipping:    ProrateByQuantity(o.ActualShipping, l.Quantity, totalQuantity),
				Carrier:                    o.Carrier,
				RebateRate:                 l.RebateRate,
			})
		}
	}
	return rows
}

// ExportService rebuilds the analytics export feed and pushes it to the
// search index the dashboards read from.
type ExportService struct {
	customers CustomerStore
	orders    OrderStore
	search    ExportIndexer
}

// NewExportService creates a new export service
func NewExportService(customers CustomerStore, orders OrderStore, indexer ExportIndexer) *ExportService {
	return &ExportService{
		customers: customers,
		orders:    orders,
		search:    indexer,
	}
}

// Rebuild expands every order into export rows and reindexes them. Index
// failures for single rows are logged and skipped so one bad row does not
// abort the rebuild.
func (s *ExportService) Rebuild(ctx context.Context) ([]models.ExportRow, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}
	lines, err := s.orders.ListLines(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list order lines")
	}
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list customers")
	}

	linesByOrder := make(map[string][]models.OrderLine)
	for _, l := range lines {
		linesByOrder[l.OrderID] = append(linesByOrder[l.OrderID], l)
	}
	customersByID := make(map[string]models.Customer, len(customers))
	for _, c := range customers {
		customersByID[c.ID] = c
	}

	rows := BuildExportRows(orders, linesByOrder, customersByID)

	if s.search != nil {
		indexed := 0
		for i := range rows {
			if err := s.search.IndexExportRow(ctx, &rows[i], i); err != nil {
				log.Warn().Err(err).Str("order_id", rows[i].OrderID).Msg("Failed to index export row")
				continue
			}
			indexed++
		}
		log.Info().Int("rows", len(rows)).Int("indexed", indexed).Msg("Export feed rebuilt")
	}

	return rows, nil
}
