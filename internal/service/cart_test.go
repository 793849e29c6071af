package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowanholt/vesta/internal/domain"
	"github.com/rowanholt/vesta/internal/memory"
	"github.com/rowanholt/vesta/internal/shipping"
)

func testPolicy(t *testing.T) shipping.Policy {
	t.Helper()
	policy, err := shipping.NewThresholdPolicy(shipping.Settings{
		FreeShippingThreshold: dec("2000"),
		FlatRate:              dec("99"),
	})
	require.NoError(t, err)
	return policy
}

func newCartFixture(t *testing.T) (*CartService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	coupons := NewCouponService(store)
	return NewCartService(store, coupons, testPolicy(t)), store
}

func TestCartAddItem(t *testing.T) {
	svc, store := newCartFixture(t)
	ctx := context.Background()

	productID := uuid.New()
	store.SeedVariant(domain.ProductVariant{
		ProductID:   productID,
		ProductName: "House Blend",
		Size:        "250g",
		UnitPrice:   dec("999.50"),
		Stock:       5,
	})

	cart, err := svc.CreateCart(ctx)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Subtotal.IsZero())

	summary, err := svc.AddItem(ctx, cart.Cart.ID, productID, "250g", 2)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 2, summary.ItemCount)
	assert.True(t, summary.Subtotal.Equal(dec("1999")), "got %s", summary.Subtotal)
	assert.True(t, summary.Shipping.Equal(dec("99")))
	assert.True(t, summary.Total.Equal(dec("2098")))

	// Same variant again merges into the existing line.
	summary, err = svc.AddItem(ctx, cart.Cart.ID, productID, "250g", 1)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, int32(3), summary.Items[0].Quantity)
}

func TestCartAddItemErrors(t *testing.T) {
	svc, store := newCartFixture(t)
	ctx := context.Background()

	productID := uuid.New()
	store.SeedVariant(domain.ProductVariant{
		ProductID:   productID,
		ProductName: "House Blend",
		Size:        "250g",
		UnitPrice:   dec("500"),
		Stock:       1,
	})

	cart, err := svc.CreateCart(ctx)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, cart.Cart.ID, productID, "250g", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.AddItem(ctx, cart.Cart.ID, productID, "1kg", 1)
	assert.ErrorIs(t, err, ErrVariantNotFound)

	_, err = svc.AddItem(ctx, cart.Cart.ID, productID, "250g", 2)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = svc.AddItem(ctx, uuid.New(), productID, "250g", 1)
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestCartUpdateItemQuantity(t *testing.T) {
	svc, store := newCartFixture(t)
	ctx := context.Background()

	productID := uuid.New()
	store.SeedVariant(domain.ProductVariant{
		ProductID: productID, ProductName: "House Blend", Size: "250g",
		UnitPrice: dec("500"), Stock: 10,
	})

	cart, err := svc.CreateCart(ctx)
	require.NoError(t, err)

	summary, err := svc.AddItem(ctx, cart.Cart.ID, productID, "250g", 2)
	require.NoError(t, err)
	itemID := summary.Items[0].ID

	summary, err = svc.UpdateItemQuantity(ctx, cart.Cart.ID, itemID, 5)
	require.NoError(t, err)
	assert.Equal(t, int32(5), summary.Items[0].Quantity)
	assert.True(t, summary.Subtotal.Equal(dec("2500")))
	assert.True(t, summary.Shipping.IsZero(), "subtotal above threshold ships free")

	// Quantity zero removes the line outright.
	summary, err = svc.UpdateItemQuantity(ctx, cart.Cart.ID, itemID, 0)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)

	_, err = svc.UpdateItemQuantity(ctx, cart.Cart.ID, itemID, -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.UpdateItemQuantity(ctx, cart.Cart.ID, uuid.New(), 3)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCartApplyAndRemoveCoupon(t *testing.T) {
	svc, store := newCartFixture(t)
	ctx := context.Background()

	productID := uuid.New()
	store.SeedVariant(domain.ProductVariant{
		ProductID: productID, ProductName: "House Blend", Size: "250g",
		UnitPrice: dec("999.50"), Stock: 10,
	})
	store.SeedCoupon(domain.Coupon{
		Code: "SAVE10", Type: domain.DiscountTypePercentage,
		Value: dec("10"), MinOrderValue: dec("1000"), Active: true,
	})

	cart, err := svc.CreateCart(ctx)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, cart.Cart.ID, productID, "250g", 2)
	require.NoError(t, err)

	summary, err := svc.ApplyCoupon(ctx, cart.Cart.ID, "save10")
	require.NoError(t, err)
	require.NotNil(t, summary.Coupon)
	assert.Equal(t, "SAVE10", summary.Coupon.Code)
	assert.True(t, summary.Discount.Equal(dec("199.9")), "got %s", summary.Discount)
	assert.True(t, summary.Total.Equal(dec("1898.1")), "got %s", summary.Total)

	summary, err = svc.RemoveCoupon(ctx, cart.Cart.ID)
	require.NoError(t, err)
	assert.Nil(t, summary.Coupon)
	assert.True(t, summary.Discount.IsZero())
}

// A coupon that stops meeting its minimum after the cart shrinks is detached
// on the next summary, and the removal is reported, never silent.
func TestCartCouponAutoDetach(t *testing.T) {
	svc, store := newCartFixture(t)
	ctx := context.Background()

	productID := uuid.New()
	store.SeedVariant(domain.ProductVariant{
		ProductID: productID, ProductName: "House Blend", Size: "250g",
		UnitPrice: dec("600"), Stock: 10,
	})
	store.SeedCoupon(domain.Coupon{
		Code: "SAVE10", Type: domain.DiscountTypePercentage,
		Value: dec("10"), MinOrderValue: dec("1000"), Active: true,
	})

	cart, err := svc.CreateCart(ctx)
	require.NoError(t, err)

	summary, err := svc.AddItem(ctx, cart.Cart.ID, productID, "250g", 2)
	require.NoError(t, err)
	itemID := summary.Items[0].ID

	_, err = svc.ApplyCoupon(ctx, cart.Cart.ID, "SAVE10")
	require.NoError(t, err)

	// Dropping to one unit puts the subtotal below the coupon minimum.
	summary, err = svc.UpdateItemQuantity(ctx, cart.Cart.ID, itemID, 1)
	require.NoError(t, err)
	assert.Nil(t, summary.Coupon)
	assert.True(t, summary.CouponRemoved)
	assert.NotEmpty(t, summary.CouponRemovedReason)
	assert.True(t, summary.Discount.IsZero())

	// The detach is persisted: a fresh summary carries no coupon and no
	// removal notice.
	summary, err = svc.GetSummary(ctx, cart.Cart.ID)
	require.NoError(t, err)
	assert.Nil(t, summary.Cart.CouponCode)
	assert.False(t, summary.CouponRemoved)
}

func TestCartApplyCouponBelowMinimumRejected(t *testing.T) {
	svc, store := newCartFixture(t)
	ctx := context.Background()

	productID := uuid.New()
	store.SeedVariant(domain.ProductVariant{
		ProductID: productID, ProductName: "House Blend", Size: "250g",
		UnitPrice: dec("500"), Stock: 10,
	})
	store.SeedCoupon(domain.Coupon{
		Code: "SAVE10", Type: domain.DiscountTypePercentage,
		Value: dec("10"), MinOrderValue: dec("1000"), Active: true,
	})

	cart, err := svc.CreateCart(ctx)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, cart.Cart.ID, productID, "250g", 1)
	require.NoError(t, err)

	_, err = svc.ApplyCoupon(ctx, cart.Cart.ID, "SAVE10")
	assert.ErrorIs(t, err, ErrCouponBelowMinimum)

	// Rejection leaves the cart untouched.
	summary, err := svc.GetSummary(ctx, cart.Cart.ID)
	require.NoError(t, err)
	assert.Nil(t, summary.Cart.CouponCode)
}
