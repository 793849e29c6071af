package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how an order is paid. Only cash on delivery is
// modeled; card payments would arrive through a separate gateway flow.
type PaymentMethod string

const (
	PaymentMethodCOD PaymentMethod = "cod"
)

// ParsePaymentMethod rejects unknown payment methods at the boundary.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	if PaymentMethod(s) == PaymentMethodCOD {
		return PaymentMethodCOD, nil
	}
	return "", Errorf(EINVALID, "", "unsupported payment method: %q", s)
}

// Address is a postal address snapshot attached to an order. Upstream
// validation guarantees well-formedness; Validate only checks required
// fields.
type Address struct {
	FullName   string `json:"fullName" validate:"required"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Phone      string `json:"phone,omitempty"`
}

// Validate checks the fields an order cannot ship without.
func (a Address) Validate() error {
	switch {
	case a.FullName == "":
		return Invalid("address.validate", "full name is required")
	case a.Line1 == "":
		return Invalid("address.validate", "address line 1 is required")
	case a.City == "":
		return Invalid("address.validate", "city is required")
	case a.PostalCode == "":
		return Invalid("address.validate", "postal code is required")
	case a.Country == "":
		return Invalid("address.validate", "country is required")
	}
	return nil
}

// Order is an immutable snapshot of a validated cart taken at checkout time.
// After creation only the three status fields, tracking number, notes, and
// shipping method may change; items, addresses, and all monetary fields are
// frozen.
type Order struct {
	ID              uuid.UUID
	OrderNumber     string
	Items           []OrderItem
	ShippingAddress Address
	BillingAddress  Address

	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal

	CouponCode    *string
	PaymentMethod PaymentMethod

	OrderStatus       OrderStatus
	PaymentStatus     PaymentStatus
	FulfillmentStatus FulfillmentStatus

	ShippingMethod string
	TrackingNumber string
	Notes          string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem is a price-resolved copy of a cart line. Later catalog price
// changes never retroactively alter it.
type OrderItem struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Size        string          `json:"size"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int32           `json:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// OrderPatch is an explicit optional-field update for the mutable parts of an
// order. Each status present is validated against its own transition table
// before any field commits; an invalid transition on any one field rejects
// the whole patch.
type OrderPatch struct {
	OrderStatus       *OrderStatus
	PaymentStatus     *PaymentStatus
	FulfillmentStatus *FulfillmentStatus
	ShippingMethod    *string
	TrackingNumber    *string
	Notes             *string
}

// Empty reports whether the patch carries no changes at all.
func (p OrderPatch) Empty() bool {
	return p.OrderStatus == nil && p.PaymentStatus == nil && p.FulfillmentStatus == nil &&
		p.ShippingMethod == nil && p.TrackingNumber == nil && p.Notes == nil
}
