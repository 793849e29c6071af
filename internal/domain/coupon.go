package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType distinguishes percentage coupons from fixed-amount coupons.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// ParseDiscountType rejects out-of-enum discount types at the boundary.
func ParseDiscountType(s string) (DiscountType, error) {
	switch DiscountType(s) {
	case DiscountTypePercentage, DiscountTypeFixed:
		return DiscountType(s), nil
	}
	return "", Errorf(EINVALID, "", "unknown discount type: %q", s)
}

// Coupon is a promotional code entitling a bounded discount under stated
// constraints. Coupons are immutable once issued.
type Coupon struct {
	Code          string
	Type          DiscountType
	Value         decimal.Decimal
	MinOrderValue decimal.Decimal
	Description   string
	StartsAt      time.Time
	ExpiresAt     time.Time
	Active        bool
}

// AppliedCoupon is an ephemeral snapshot of a coupon bound to one cart state.
// It is recomputed whenever the subtotal changes and never persisted
// independently of an order.
type AppliedCoupon struct {
	Code           string          `json:"code"`
	Type           DiscountType    `json:"discountType"`
	Value          decimal.Decimal `json:"discountValue"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Description    string          `json:"description,omitempty"`
}

// NormalizeCouponCode canonicalizes a user-supplied code. Coupon codes are
// case-insensitive and stored uppercase.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
