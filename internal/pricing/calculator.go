// Package pricing implements the monetary arithmetic shared by the cart
// display path and the checkout commit path. Every function is pure and
// deterministic: identical inputs always produce identical outputs, with no
// hidden state. Both paths call the same functions, so a displayed total and
// the committed total can never diverge.
package pricing

import (
	"github.com/rowanholt/vesta/internal/domain"
	"github.com/shopspring/decimal"
)

// Currency amounts are stored and reported with two decimal places.
const currencyPrecision = 2

var hundred = decimal.NewFromInt(100)

// Subtotal returns the sum of unitPrice×quantity over all items.
// Any quantity below 1 or negative unit price fails the whole computation.
func Subtotal(items []domain.CartItem) (decimal.Decimal, error) {
	subtotal := decimal.Zero
	for _, item := range items {
		if item.Quantity < 1 {
			return decimal.Zero, domain.Errorf(domain.EINVALID, "pricing.subtotal",
				"invalid line item %q: quantity must be at least 1", item.ProductName)
		}
		if item.UnitPrice.IsNegative() {
			return decimal.Zero, domain.Errorf(domain.EINVALID, "pricing.subtotal",
				"invalid line item %q: unit price must not be negative", item.ProductName)
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt32(item.Quantity)))
	}
	return subtotal, nil
}

// Discount computes the discount a coupon grants on the given subtotal.
// Percentage coupons take subtotal×value/100; fixed coupons are capped at the
// subtotal so a discount never exceeds what it discounts. The result is
// rounded to currency precision here, so the amount that gets persisted and
// the amount arithmetic is done with are the same number. Fails when the
// subtotal is below the coupon's minimum order value.
func Discount(subtotal decimal.Decimal, coupon domain.Coupon) (decimal.Decimal, error) {
	if subtotal.LessThan(coupon.MinOrderValue) {
		return decimal.Zero, domain.Errorf(domain.EUNPROCESSABLE, "pricing.discount",
			"coupon %s requires a minimum order value of %s", coupon.Code, coupon.MinOrderValue.StringFixed(currencyPrecision))
	}

	switch coupon.Type {
	case domain.DiscountTypePercentage:
		return subtotal.Mul(coupon.Value).Div(hundred).Round(currencyPrecision), nil
	case domain.DiscountTypeFixed:
		if coupon.Value.GreaterThan(subtotal) {
			return subtotal.Round(currencyPrecision), nil
		}
		return coupon.Value.Round(currencyPrecision), nil
	}

	return decimal.Zero, domain.Errorf(domain.EINVALID, "pricing.discount",
		"unknown discount type: %q", coupon.Type)
}

// Total combines subtotal, shipping, and discount into a grand total rounded
// to currency precision. The clamp at zero holds regardless of upstream
// discount errors.
func Total(subtotal, shipping, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Add(shipping).Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total.Round(currencyPrecision)
}
