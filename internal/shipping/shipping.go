// Package shipping decides what a cart pays for delivery. The policy is a
// pure function of the pre-discount subtotal; discounts never change the
// shipping cost.
package shipping

import (
	"github.com/rowanholt/vesta/internal/domain"
	"github.com/shopspring/decimal"
)

// Policy computes the shipping cost for an order subtotal.
type Policy interface {
	Cost(subtotal decimal.Decimal) decimal.Decimal
}

// Settings is the read-only global shipping configuration.
type Settings struct {
	// FreeShippingThreshold is the subtotal at or above which shipping is free.
	FreeShippingThreshold decimal.Decimal

	// FlatRate is charged on every order below the threshold.
	FlatRate decimal.Decimal
}

// ThresholdPolicy is the flat-rate-with-free-threshold policy used for every
// storefront order.
type ThresholdPolicy struct {
	settings Settings
}

// NewThresholdPolicy validates the settings and returns a Policy.
func NewThresholdPolicy(settings Settings) (*ThresholdPolicy, error) {
	if settings.FreeShippingThreshold.IsNegative() {
		return nil, domain.Invalid("shipping.settings", "free shipping threshold must not be negative")
	}
	if settings.FlatRate.IsNegative() {
		return nil, domain.Invalid("shipping.settings", "flat rate must not be negative")
	}

	return &ThresholdPolicy{settings: settings}, nil
}

// Cost returns zero when the subtotal reaches the free-shipping threshold,
// otherwise the flat rate. The subtotal is the pre-discount subtotal.
func (p *ThresholdPolicy) Cost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.settings.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.settings.FlatRate
}
