package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is a mutable pre-checkout container. It is created on first use,
// mutated by add/update/remove operations, and destroyed on successful
// checkout.
type Cart struct {
	ID         uuid.UUID
	CouponCode *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CartItem is one line of a cart. Name and unit price are snapshotted from
// the catalog when the item is added.
type CartItem struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Size        string          `json:"size"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int32           `json:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// CartSummary aggregates a cart with its items and display totals. The same
// pricing calculator computes these totals and the committed order totals, so
// displayed and charged amounts cannot diverge.
type CartSummary struct {
	Cart      Cart
	Items     []CartItem
	Subtotal  decimal.Decimal
	Shipping  decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
	ItemCount int

	// Coupon is the currently applied coupon, re-validated against the
	// latest subtotal. Nil when no coupon is applied.
	Coupon *AppliedCoupon

	// CouponRemoved is set when a previously applied coupon stopped
	// applying (for example the subtotal fell below its minimum) and was
	// detached during this operation. Never left silently stale.
	CouponRemoved bool

	// CouponRemovedReason carries the human-readable reason for removal.
	CouponRemovedReason string
}
