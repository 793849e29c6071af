package domain

import "fmt"

// OrderStatus is the customer-facing lifecycle stage of the order as a whole.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// PaymentStatus tracks payment settlement independently of the order status.
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusPaid              PaymentStatus = "paid"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
)

// FulfillmentStatus tracks physical pick/pack/ship progress, independent of
// payment or overall order status.
type FulfillmentStatus string

const (
	FulfillmentStatusUnfulfilled FulfillmentStatus = "unfulfilled"
	FulfillmentStatusPartial     FulfillmentStatus = "partial"
	FulfillmentStatusFulfilled   FulfillmentStatus = "fulfilled"
)

// Each status axis has its own transition table. All transitions are
// admin-initiated, never automatic. An empty entry is a terminal state.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {OrderStatusRefunded},
	OrderStatusCancelled:  {},
	OrderStatusRefunded:   {},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:           {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusPaid:              {PaymentStatusRefunded, PaymentStatusPartiallyRefunded},
	PaymentStatusFailed:            {PaymentStatusPending},
	PaymentStatusRefunded:          {},
	PaymentStatusPartiallyRefunded: {PaymentStatusRefunded},
}

var fulfillmentTransitions = map[FulfillmentStatus][]FulfillmentStatus{
	FulfillmentStatusUnfulfilled: {FulfillmentStatusPartial, FulfillmentStatusFulfilled},
	FulfillmentStatusPartial:     {FulfillmentStatusFulfilled},
	FulfillmentStatusFulfilled:   {},
}

// ParseOrderStatus parses a persisted or client-supplied status string.
// Out-of-enum values are rejected, never coerced.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := orderTransitions[status]; !ok {
		return "", Errorf(EINVALID, "", "unknown order status: %q", s)
	}
	return status, nil
}

// ParsePaymentStatus parses a persisted or client-supplied status string.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if _, ok := paymentTransitions[status]; !ok {
		return "", Errorf(EINVALID, "", "unknown payment status: %q", s)
	}
	return status, nil
}

// ParseFulfillmentStatus parses a persisted or client-supplied status string.
func ParseFulfillmentStatus(s string) (FulfillmentStatus, error) {
	status := FulfillmentStatus(s)
	if _, ok := fulfillmentTransitions[status]; !ok {
		return "", Errorf(EINVALID, "", "unknown fulfillment status: %q", s)
	}
	return status, nil
}

// CanTransitionTo reports whether next is a legal successor of s.
// A same-value transition is not part of the table; callers treat it as a no-op.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether next is a legal successor of s.
// There is no regression once fulfilled.
func (s FulfillmentStatus) CanTransitionTo(next FulfillmentStatus) bool {
	for _, allowed := range fulfillmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Deletable reports whether an order in this status may be hard-deleted.
func (s OrderStatus) Deletable() bool {
	return s == OrderStatusPending || s == OrderStatusCancelled
}

// RevenueEligible reports whether orders in this status count toward revenue.
func (s OrderStatus) RevenueEligible() bool {
	switch s {
	case OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

func (s OrderStatus) String() string       { return string(s) }
func (s PaymentStatus) String() string     { return string(s) }
func (s FulfillmentStatus) String() string { return string(s) }

// InvalidTransition builds the rejection returned when a patch asks for an
// illegal status change.
func InvalidTransition(op, axis string, from, to fmt.Stringer) error {
	return Errorf(EUNPROCESSABLE, op, "illegal %s transition: %s to %s", axis, from.String(), to.String())
}
