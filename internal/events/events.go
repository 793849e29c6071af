// Package events publishes order lifecycle notifications for downstream
// consumers (email, fulfillment dashboards). Publishing is fire-and-forget:
// a broker outage never fails a customer request.
package events

import (
	"context"
	"time"

	"github.com/rowanholt/vesta/internal/domain"
)

// Subjects for order lifecycle events.
const (
	SubjectOrderCreated       = "orders.created"
	SubjectOrderStatusChanged = "orders.status_changed"
)

// OrderCreated is the payload published when checkout commits an order.
type OrderCreated struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	Total       string    `json:"total"`
	ItemCount   int       `json:"itemCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OrderStatusChanged is the payload published after a lifecycle patch
// changed at least one status axis.
type OrderStatusChanged struct {
	OrderID           string    `json:"orderId"`
	OrderNumber       string    `json:"orderNumber"`
	OrderStatus       string    `json:"orderStatus"`
	PaymentStatus     string    `json:"paymentStatus"`
	FulfillmentStatus string    `json:"fulfillmentStatus"`
	ChangedAt         time.Time `json:"changedAt"`
}

// Publisher emits order lifecycle events.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order)
	PublishOrderStatusChanged(ctx context.Context, order *domain.Order)
}

// Noop is the Publisher used when no broker is configured.
type Noop struct{}

func (Noop) PublishOrderCreated(ctx context.Context, order *domain.Order)       {}
func (Noop) PublishOrderStatusChanged(ctx context.Context, order *domain.Order) {}
