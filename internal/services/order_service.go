package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/salesops/internal/messaging"
	"example.com/salesops/internal/metrics"
	"example.com/salesops/internal/models"
)

// CreateCustomerInput is the structured input for a new customer. Only the
// name is required; everything else is profile data filled in later.
type CreateCustomerInput struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Address1          string `json:"address1"`
	Address2          string `json:"address2"`
	PostalCode        string `json:"postal_code"`
	Country           string `json:"country"`
	AcquisitionSource string `json:"acquisition_source"`
	CustomerFlag      string `json:"customer_flag"`
	Memo              string `json:"memo"`
}

// OrderEvent is published to the message bus when an order changes status.
type OrderEvent struct {
	EventID    string             `json:"event_id"`
	OrderID    string             `json:"order_id"`
	CustomerID string             `json:"customer_id"`
	OldStatus  models.OrderStatus `json:"old_status,omitempty"`
	NewStatus  models.OrderStatus `json:"new_status"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// StatusUpdateResult reports a status transition and everything it triggered.
type StatusUpdateResult struct {
	Order       *models.OrderHeader `json:"order"`
	OldStatus   models.OrderStatus  `json:"old_status"`
	Warnings    []string            `json:"warnings,omitempty"`
	Fulfillment *FulfillmentResult  `json:"fulfillment,omitempty"`
}

// OrderService drives the order workflow: customer and order creation, line
// import, the status state machine and shipping.
type OrderService struct {
	customers   CustomerStore
	orders      OrderStore
	ids         *IDGenerator
	fulfillment *FulfillmentService
	aggregates  *AggregateService
	bus         messaging.Publisher
	metrics     *metrics.Metrics
	locks       *OrderLocker
	now         func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(
	customers CustomerStore,
	orders OrderStore,
	ids *IDGenerator,
	fulfillment *FulfillmentService,
	aggregates *AggregateService,
	bus messaging.Publisher,
	m *metrics.Metrics,
	locks *OrderLocker,
) *OrderService {
	return &OrderService{
		customers:   customers,
		orders:      orders,
		ids:         ids,
		fulfillment: fulfillment,
		aggregates:  aggregates,
		bus:         bus,
		metrics:     m,
		locks:       locks,
		now:         time.Now,
	}
}

// CreateCustomer registers a new customer under a generated ID
func (s *OrderService) CreateCustomer(ctx context.Context, in CreateCustomerInput) (*models.Customer, error) {
	if in.Name == "" {
		return nil, Validationf("customer name is required")
	}

	id, err := s.ids.NextCustomerID(ctx)
	if err != nil {
		return nil, err
	}

	customer := &models.Customer{
		ID:                id,
		Name:              in.Name,
		Email:             in.Email,
		Phone:             in.Phone,
		Address1:          in.Address1,
		Address2:          in.Address2,
		PostalCode:        in.PostalCode,
		Country:           in.Country,
		AcquisitionSource: in.AcquisitionSource,
		CustomerFlag:      in.CustomerFlag,
		Memo:              in.Memo,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, errors.Wrap(err, "failed to create customer")
	}

	if s.metrics != nil {
		s.metrics.IncrementCounter("customers.created")
	}
	log.Info().Str("customer_id", id).Str("name", in.Name).Msg("Customer created")

	return customer, nil
}

// CreateOrder opens a new order for a customer. The header starts in pending
// payment with the customer name denormalized onto it, plus a single template
// line the import replaces later. The denormalized name is deliberately not
// refreshed when the customer is edited afterwards.
func (s *OrderService) CreateOrder(ctx context.Context, customerID string) (*models.OrderHeader, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load customer %s", customerID)
	}

	orderDate := s.now()
	id, err := s.ids.NextOrderID(ctx, customer.ID, orderDate)
	if err != nil {
		return nil, err
	}

	order := &models.OrderHeader{
		ID:           id,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		OrderDate:    orderDate,
		Status:       models.StatusPendingPayment,
		Lines: []models.OrderLine{
			{LineNo: 1, AllocationStatus: models.AllocationUnallocated},
		},
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, errors.Wrap(err, "failed to create order")
	}

	if s.metrics != nil {
		s.metrics.IncrementCounter("orders.created")
	}
	log.Info().Str("order_id", id).Str("customer_id", customer.ID).Msg("Order created")

	return order, nil
}

// ImportLines replaces the order's lines wholesale with freshly computed rows
// and updates the header totals in the same write.
func (s *OrderService) ImportLines(ctx context.Context, orderID string, inputs []LineInput) (*models.OrderHeader, error) {
	if len(inputs) == 0 {
		return nil, Validationf("no line data provided")
	}
	for i, in := range inputs {
		if in.ProductName == "" {
			return nil, Validationf("line %d: product name is required", i+1)
		}
	}

	unlock := s.locks.Lock(orderID)
	defer unlock()

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load order %s", orderID)
	}

	lines := make([]models.OrderLine, 0, len(inputs))
	for i, in := range inputs {
		lines = append(lines, ComputeLine(i+1, in))
	}
	ApplyTotals(order, SumLines(lines))

	if err := s.orders.ReplaceLines(ctx, order, lines); err != nil {
		return nil, errors.Wrapf(err, "failed to replace lines of order %s", orderID)
	}
	order.Lines = lines

	if s.metrics != nil {
		s.metrics.IncrementCounterBy("orders.lines_imported", int64(len(lines)))
	}
	log.Info().
		Str("order_id", orderID).
		Int("lines", len(lines)).
		Float64("sales_total", order.SalesTotal).
		Msg("Order lines imported")

	return order, nil
}

// UpdateStatus moves an order to a user-selected status and runs the
// transition side effects: date stamps, the zero-cost warning on procurement,
// fulfillment on shipping and the full aggregate refresh on entering any
// sales-target status. Cancelled is terminal.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, next models.OrderStatus) (*StatusUpdateResult, error) {
	if !next.IsValid() {
		return nil, Validationf("unknown order status %q", next)
	}

	unlock := s.locks.Lock(orderID)
	defer unlock()

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load order %s", orderID)
	}
	if order.Status.IsTerminal() && next != order.Status {
		return nil, Validationf("order %s is cancelled and cannot change status", orderID)
	}

	result := &StatusUpdateResult{OldStatus: order.Status}
	now := s.now()
	order.Status = next

	switch next {
	case models.StatusPaid:
		if order.PaymentReceivedAt == nil {
			order.PaymentReceivedAt = &now
		}
	case models.StatusProcured:
		// A zero provisional cost is suspicious but does not block the
		// transition; the operator gets a warning instead.
		for _, l := range order.Lines {
			if l.Quantity > 0 && l.CostProvisional == 0 {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("line %d (%s) has no provisional cost", l.LineNo, l.ProductName))
			}
		}
	case models.StatusShipped:
		if order.ShippedAt == nil {
			order.ShippedAt = &now
		}
	case models.StatusTrackingSent:
		order.TrackingSentAt = &now
	case models.StatusArrived:
		order.ArrivedAt = &now
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, errors.Wrapf(err, "failed to update status of order %s", orderID)
	}

	if next == models.StatusShipped {
		fulfillment, err := s.fulfillment.Process(ctx, order.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "fulfillment failed for order %s", orderID)
		}
		result.Fulfillment = fulfillment
	}

	if next.IsSalesTarget() {
		if _, err := s.aggregates.RefreshAll(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to refresh customer aggregates after status change")
		}
	}

	s.publishStatusChange(ctx, order, result.OldStatus)

	if s.metrics != nil {
		s.metrics.IncrementCounter("orders.status_updates")
	}
	log.Info().
		Str("order_id", orderID).
		Str("old_status", string(result.OldStatus)).
		Str("new_status", string(next)).
		Msg("Order status updated")

	result.Order = order
	return result, nil
}

// UpdateStatusByIndex resolves a 1-based status selection and applies it
func (s *OrderService) UpdateStatusByIndex(ctx context.Context, orderID string, index int) (*StatusUpdateResult, error) {
	status, err := models.StatusByIndex(index)
	if err != nil {
		return nil, Validationf("%s", err.Error())
	}
	return s.UpdateStatus(ctx, orderID, status)
}

// Ship records carrier and tracking on an order, marks it shipped and runs
// the fulfillment processor. Shipping requires procurement to be done.
func (s *OrderService) Ship(ctx context.Context, orderID, carrier, trackingNumber string) (*StatusUpdateResult, error) {
	if carrier == "" {
		return nil, Validationf("carrier is required")
	}
	if trackingNumber == "" {
		return nil, Validationf("tracking number is required")
	}

	unlock := s.locks.Lock(orderID)
	defer unlock()

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load order %s", orderID)
	}

	switch order.Status {
	case models.StatusProcured, models.StatusShipped, models.StatusTrackingSent, models.StatusArrived:
	default:
		return nil, Validationf("order %s in status %s cannot be shipped", orderID, order.Status)
	}

	result := &StatusUpdateResult{OldStatus: order.Status}
	now := s.now()
	order.Status = models.StatusShipped
	order.Carrier = carrier
	order.TrackingNumber = trackingNumber
	order.ShippedAt = &now

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, errors.Wrapf(err, "failed to mark order %s shipped", orderID)
	}

	fulfillment, err := s.fulfillment.Process(ctx, order.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "fulfillment failed for order %s", orderID)
	}
	result.Fulfillment = fulfillment

	if _, err := s.aggregates.RefreshAll(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to refresh customer aggregates after shipping")
	}

	s.publishStatusChange(ctx, order, result.OldStatus)

	if s.metrics != nil {
		s.metrics.IncrementCounter("orders.shipped")
	}
	log.Info().
		Str("order_id", orderID).
		Str("carrier", carrier).
		Str("tracking_number", trackingNumber).
		Msg("Order shipped")

	result.Order = order
	return result, nil
}

// publishStatusChange emits a status-change event. Publishing is best effort;
// a bus failure never fails the transition itself.
func (s *OrderService) publishStatusChange(ctx context.Context, order *models.OrderHeader, old models.OrderStatus) {
	if s.bus == nil {
		return
	}
	event := OrderEvent{
		EventID:    uuid.New().String(),
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		OldStatus:  old,
		NewStatus:  order.Status,
		OccurredAt: s.now(),
	}
	if err := s.bus.SendMessage(ctx, event); err != nil {
		log.Warn().Err(err).Str("order_id", order.ID).Msg("Failed to publish order event")
	}
}
