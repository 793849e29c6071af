// Package repository defines the persistence boundary of the engine. The
// postgres package implements Store for production; the memory package
// implements it for tests and demo mode. Both honor the same conditional
// write semantics, so the services are oblivious to which one they run on.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rowanholt/vesta/internal/domain"
	"github.com/shopspring/decimal"
)

// Sentinel errors shared by all Store implementations. Services translate
// these into domain errors with caller-facing messages.
var (
	// ErrNotFound signals a missing row of any kind.
	ErrNotFound = errors.New("repository: not found")

	// ErrInsufficientStock signals a conditional stock decrement that
	// matched no row: the requested quantity exceeded available stock at
	// commit time.
	ErrInsufficientStock = errors.New("repository: insufficient stock")

	// ErrDuplicateOrderNumber signals an order-number unique constraint
	// violation. The caller regenerates the number and retries, bounded.
	ErrDuplicateOrderNumber = errors.New("repository: duplicate order number")

	// ErrConflict signals a conditional status write that matched no row
	// because another writer got there first. The caller must re-fetch.
	ErrConflict = errors.New("repository: concurrent modification")

	// ErrNotDeletable signals a conditional delete rejected because the
	// order status no longer permits deletion.
	ErrNotDeletable = errors.New("repository: order not deletable")
)

// UpsertCartItemParams adds a line to a cart or, when the (product, size)
// pair is already present, increments its quantity.
type UpsertCartItemParams struct {
	CartID      uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Size        string
	UnitPrice   decimal.Decimal
	Quantity    int32
}

// CreateOrderParams carries everything the atomic checkout commit writes:
// the priced order, its frozen items, and the cart to destroy. Stock for
// every item is decremented in the same transaction; if any line lacks
// stock the whole commit fails and nothing is persisted.
type CreateOrderParams struct {
	Order      domain.Order
	DeleteCart uuid.UUID
}

// UpdateOrderParams is a conditional write: the update only applies while
// the persisted status triple still equals the Expected values read by the
// caller. Nil optional fields are left untouched.
type UpdateOrderParams struct {
	ID uuid.UUID

	ExpectedOrderStatus       domain.OrderStatus
	ExpectedPaymentStatus     domain.PaymentStatus
	ExpectedFulfillmentStatus domain.FulfillmentStatus

	OrderStatus       domain.OrderStatus
	PaymentStatus     domain.PaymentStatus
	FulfillmentStatus domain.FulfillmentStatus

	ShippingMethod *string
	TrackingNumber *string
	Notes          *string
}

// ListOrdersParams pages through orders, newest first.
type ListOrdersParams struct {
	Limit  int32
	Offset int32
}

// OrderStats is the raw aggregate a stats query returns for one window:
// revenue and count over revenue-eligible orders with createdAt in
// [Start, End).
type OrderStats struct {
	TotalRevenue decimal.Decimal
	OrderCount   int64
}

// Store is the persistence interface the services depend on.
type Store interface {
	// Catalog boundary.
	GetVariant(ctx context.Context, productID uuid.UUID, size string) (domain.ProductVariant, error)

	// Carts.
	CreateCart(ctx context.Context) (domain.Cart, error)
	GetCart(ctx context.Context, id uuid.UUID) (domain.Cart, error)
	GetCartItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error)
	UpsertCartItem(ctx context.Context, params UpsertCartItemParams) (domain.CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int32) error
	RemoveCartItem(ctx context.Context, cartID, itemID uuid.UUID) error
	SetCartCoupon(ctx context.Context, cartID uuid.UUID, code *string) error

	// Coupons, keyed by normalized code.
	GetCoupon(ctx context.Context, code string) (domain.Coupon, error)

	// Orders.
	CreateOrder(ctx context.Context, params CreateOrderParams) (domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (domain.Order, error)
	ListOrders(ctx context.Context, params ListOrdersParams) ([]domain.Order, error)
	UpdateOrder(ctx context.Context, params UpdateOrderParams) (domain.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error

	// Reporting. Read-only; may observe slightly stale data.
	OrderStats(ctx context.Context, start, end time.Time) (OrderStats, error)
}
