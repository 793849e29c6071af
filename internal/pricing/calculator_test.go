package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowanholt/vesta/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSubtotal(t *testing.T) {
	tests := []struct {
		name    string
		items   []domain.CartItem
		want    string
		wantErr bool
	}{
		{
			name:  "empty cart",
			items: nil,
			want:  "0",
		},
		{
			name: "single line",
			items: []domain.CartItem{
				{ProductName: "House Blend", UnitPrice: dec("499.50"), Quantity: 2},
			},
			want: "999",
		},
		{
			name: "multiple lines",
			items: []domain.CartItem{
				{ProductName: "House Blend", UnitPrice: dec("1500"), Quantity: 1},
				{ProductName: "Filters", UnitPrice: dec("249.50"), Quantity: 2},
			},
			want: "1999",
		},
		{
			name: "zero quantity rejected",
			items: []domain.CartItem{
				{ProductName: "House Blend", UnitPrice: dec("100"), Quantity: 0},
			},
			wantErr: true,
		},
		{
			name: "negative unit price rejected",
			items: []domain.CartItem{
				{ProductName: "House Blend", UnitPrice: dec("-1"), Quantity: 1},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Subtotal(tt.items)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsCode(err, domain.EINVALID))
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestDiscount(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		coupon   domain.Coupon
		want     string
		wantCode string
	}{
		{
			name:     "percentage",
			subtotal: "1999",
			coupon:   domain.Coupon{Code: "SAVE10", Type: domain.DiscountTypePercentage, Value: dec("10")},
			want:     "199.9",
		},
		{
			name:     "fixed below subtotal",
			subtotal: "1999",
			coupon:   domain.Coupon{Code: "FLAT500", Type: domain.DiscountTypeFixed, Value: dec("500")},
			want:     "500",
		},
		{
			name:     "fixed capped at subtotal",
			subtotal: "300",
			coupon:   domain.Coupon{Code: "FLAT500", Type: domain.DiscountTypeFixed, Value: dec("500")},
			want:     "300",
		},
		{
			name:     "percentage with sub-cent result rounds to currency precision",
			subtotal: "999.95",
			coupon:   domain.Coupon{Code: "SAVE10", Type: domain.DiscountTypePercentage, Value: dec("10")},
			want:     "100.00",
		},
		{
			name:     "fixed with sub-cent value rounds to currency precision",
			subtotal: "1000",
			coupon:   domain.Coupon{Code: "ODD", Type: domain.DiscountTypeFixed, Value: dec("99.999")},
			want:     "100.00",
		},
		{
			name:     "below minimum order value",
			subtotal: "999",
			coupon:   domain.Coupon{Code: "SAVE10", Type: domain.DiscountTypePercentage, Value: dec("10"), MinOrderValue: dec("1000")},
			wantCode: domain.EUNPROCESSABLE,
		},
		{
			name:     "exactly at minimum order value",
			subtotal: "1000",
			coupon:   domain.Coupon{Code: "SAVE10", Type: domain.DiscountTypePercentage, Value: dec("10"), MinOrderValue: dec("1000")},
			want:     "100",
		},
		{
			name:     "unknown discount type",
			subtotal: "1000",
			coupon:   domain.Coupon{Code: "BROKEN", Type: "bogus", Value: dec("10")},
			wantCode: domain.EINVALID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Discount(dec(tt.subtotal), tt.coupon)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, domain.IsCode(err, tt.wantCode))
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestTotal(t *testing.T) {
	tests := []struct {
		name                         string
		subtotal, shipping, discount string
		want                         string
	}{
		{"no discount with shipping", "1999", "99", "0", "2098"},
		{"free shipping at threshold", "2000", "0", "0", "2000"},
		{"percentage discount applied", "1999", "99", "199.9", "1898.1"},
		{"discount exceeding subtotal clamps at zero", "100", "0", "500", "0"},
		{"rounded to two decimals", "10.005", "0", "0", "10.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Total(dec(tt.subtotal), dec(tt.shipping), dec(tt.discount))
			assert.True(t, got.Equal(dec(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

// The discount leaves the calculator already at currency precision, so the
// identity total = subtotal + shipping − discount holds on the exact values
// that get persisted and rendered.
func TestTotalIdentityHoldsAtCurrencyPrecision(t *testing.T) {
	items := []domain.CartItem{
		{ProductName: "House Blend", UnitPrice: dec("999.95"), Quantity: 1},
	}
	coupon := domain.Coupon{Code: "SAVE10", Type: domain.DiscountTypePercentage, Value: dec("10")}
	shipping := dec("99")

	subtotal, err := Subtotal(items)
	require.NoError(t, err)
	discount, err := Discount(subtotal, coupon)
	require.NoError(t, err)

	total := Total(subtotal, shipping, discount)
	assert.True(t, total.Equal(subtotal.Add(shipping).Sub(discount)),
		"total %s must equal %s + %s - %s", total, subtotal, shipping, discount)
	assert.True(t, discount.Equal(discount.Round(2)), "discount %s must carry no sub-cent part", discount)
}

// The cart display path and the checkout commit path share these functions;
// pricing the same inputs twice must agree to the cent.
func TestPricingIsDeterministic(t *testing.T) {
	items := []domain.CartItem{
		{ProductName: "House Blend", UnitPrice: dec("666.67"), Quantity: 3},
	}
	coupon := domain.Coupon{Code: "SAVE10", Type: domain.DiscountTypePercentage, Value: dec("10")}

	first, err := Subtotal(items)
	require.NoError(t, err)
	second, err := Subtotal(items)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))

	d1, err := Discount(first, coupon)
	require.NoError(t, err)
	d2, err := Discount(second, coupon)
	require.NoError(t, err)
	assert.True(t, Total(first, dec("99"), d1).Equal(Total(second, dec("99"), d2)))
}
