package models

import "github.com/pkg/errors"

// OrderStatus is the lifecycle state of an order. The stored values are the
// Japanese labels the business works with.
type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "支払い前"
	StatusPaid           OrderStatus = "支払い完了"
	StatusProcured       OrderStatus = "仕入れ完了"
	StatusShipped        OrderStatus = "発送済"
	StatusTrackingSent   OrderStatus = "追跡番号送付済"
	StatusArrived        OrderStatus = "到着"
	StatusCancelled      OrderStatus = "キャンセル"
)

// AllStatuses lists every status in selection order. Index-based selection in
// the API maps 1-based positions onto this slice.
var AllStatuses = []OrderStatus{
	StatusPendingPayment,
	StatusPaid,
	StatusProcured,
	StatusShipped,
	StatusTrackingSent,
	StatusArrived,
	StatusCancelled,
}

// SalesTargetStatuses are the statuses counted in revenue and customer
// aggregates. Pending payment and cancelled orders are excluded.
var SalesTargetStatuses = []OrderStatus{
	StatusPaid,
	StatusProcured,
	StatusShipped,
	StatusTrackingSent,
	StatusArrived,
}

// IsSalesTarget reports whether orders in this status count toward revenue.
func (s OrderStatus) IsSalesTarget() bool {
	for _, t := range SalesTargetStatuses {
		if s == t {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCancelled
}

// IsValid reports whether s is one of the enumerated statuses.
func (s OrderStatus) IsValid() bool {
	for _, t := range AllStatuses {
		if s == t {
			return true
		}
	}
	return false
}

// StatusByIndex resolves a 1-based selection index to a status. Out-of-range
// indices are rejected without any state change.
func StatusByIndex(i int) (OrderStatus, error) {
	if i < 1 || i > len(AllStatuses) {
		return "", errors.Errorf("status selection %d is out of range 1..%d", i, len(AllStatuses))
	}
	return AllStatuses[i-1], nil
}

// ParseStatus resolves a status by its stored label.
func ParseStatus(v string) (OrderStatus, error) {
	s := OrderStatus(v)
	if !s.IsValid() {
		return "", errors.Errorf("unknown order status %q", v)
	}
	return s, nil
}
