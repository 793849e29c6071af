package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowanholt/vesta/internal/domain"
	"github.com/rowanholt/vesta/internal/events"
	"github.com/rowanholt/vesta/internal/memory"
)

func testAddress() domain.Address {
	return domain.Address{
		FullName:   "Ada Lovelace",
		Line1:      "12 Analytical Way",
		City:       "London",
		PostalCode: "EC1A 1BB",
		Country:    "GB",
	}
}

func newCheckoutFixture(t *testing.T) (*CheckoutService, *CartService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	coupons := NewCouponService(store)
	policy := testPolicy(t)
	carts := NewCartService(store, coupons, policy)
	checkout := NewCheckoutService(store, coupons, policy, events.Noop{}, zerolog.Nop())
	return checkout, carts, store
}

func seedCartWith(t *testing.T, carts *CartService, store *memory.Store, unitPrice string, quantity int32) (uuid.UUID, uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	productID := uuid.New()
	store.SeedVariant(domain.ProductVariant{
		ProductID: productID, ProductName: "House Blend", Size: "250g",
		UnitPrice: dec(unitPrice), Stock: 100,
	})

	cart, err := carts.CreateCart(ctx)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, cart.Cart.ID, productID, "250g", quantity)
	require.NoError(t, err)

	return cart.Cart.ID, productID
}

func TestCheckout(t *testing.T) {
	checkout, carts, store := newCheckoutFixture(t)
	ctx := context.Background()

	cartID, productID := seedCartWith(t, carts, store, "999.50", 2)

	order, err := checkout.Checkout(ctx, CheckoutParams{
		CartID:          cartID,
		ShippingAddress: testAddress(),
		BillingAddress:  testAddress(),
		PaymentMethod:   "cod",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(order.OrderNumber, "VST-"))
	assert.True(t, order.Subtotal.Equal(dec("1999")))
	assert.True(t, order.Shipping.Equal(dec("99")))
	assert.True(t, order.Total.Equal(dec("2098")))
	assert.Equal(t, domain.OrderStatusPending, order.OrderStatus)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, domain.FulfillmentStatusUnfulfilled, order.FulfillmentStatus)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int32(2), order.Items[0].Quantity)

	// Stock is reserved and the cart is gone.
	assert.Equal(t, int32(98), store.Stock(productID, "250g"))
	_, err = carts.GetSummary(ctx, cartID)
	assert.ErrorIs(t, err, ErrCartNotFound)

	// The order is retrievable by its number.
	fetched, err := store.GetOrderByNumber(ctx, order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, order.ID, fetched.ID)
}

func TestCheckoutWithCoupon(t *testing.T) {
	checkout, carts, store := newCheckoutFixture(t)
	ctx := context.Background()

	cartID, _ := seedCartWith(t, carts, store, "999.50", 2)
	store.SeedCoupon(domain.Coupon{
		Code: "SAVE10", Type: domain.DiscountTypePercentage,
		Value: dec("10"), MinOrderValue: dec("1000"), Active: true,
	})
	_, err := carts.ApplyCoupon(ctx, cartID, "SAVE10")
	require.NoError(t, err)

	order, err := checkout.Checkout(ctx, CheckoutParams{
		CartID:          cartID,
		ShippingAddress: testAddress(),
		BillingAddress:  testAddress(),
		PaymentMethod:   "cod",
	})
	require.NoError(t, err)

	require.NotNil(t, order.CouponCode)
	assert.Equal(t, "SAVE10", *order.CouponCode)
	assert.True(t, order.Discount.Equal(dec("199.9")), "got %s", order.Discount)
	// Shipping is computed on the pre-discount subtotal.
	assert.True(t, order.Shipping.Equal(dec("99")))
	assert.True(t, order.Total.Equal(dec("1898.1")), "got %s", order.Total)
}

func TestCheckoutValidation(t *testing.T) {
	checkout, carts, store := newCheckoutFixture(t)
	ctx := context.Background()

	t.Run("unknown cart", func(t *testing.T) {
		_, err := checkout.Checkout(ctx, CheckoutParams{
			CartID:          uuid.New(),
			ShippingAddress: testAddress(),
			BillingAddress:  testAddress(),
			PaymentMethod:   "cod",
		})
		assert.ErrorIs(t, err, ErrCartNotFound)
	})

	t.Run("empty cart", func(t *testing.T) {
		cart, err := carts.CreateCart(ctx)
		require.NoError(t, err)

		_, err = checkout.Checkout(ctx, CheckoutParams{
			CartID:          cart.Cart.ID,
			ShippingAddress: testAddress(),
			BillingAddress:  testAddress(),
			PaymentMethod:   "cod",
		})
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("incomplete address", func(t *testing.T) {
		cartID, _ := seedCartWith(t, carts, store, "500", 1)

		addr := testAddress()
		addr.PostalCode = ""
		_, err := checkout.Checkout(ctx, CheckoutParams{
			CartID:          cartID,
			ShippingAddress: addr,
			BillingAddress:  testAddress(),
			PaymentMethod:   "cod",
		})
		require.Error(t, err)
		assert.True(t, domain.IsCode(err, domain.EINVALID))
	})

	t.Run("unsupported payment method", func(t *testing.T) {
		cartID, _ := seedCartWith(t, carts, store, "500", 1)

		_, err := checkout.Checkout(ctx, CheckoutParams{
			CartID:          cartID,
			ShippingAddress: testAddress(),
			BillingAddress:  testAddress(),
			PaymentMethod:   "card",
		})
		require.Error(t, err)
		assert.True(t, domain.IsCode(err, domain.EINVALID))
	})
}

func TestCheckoutInsufficientStock(t *testing.T) {
	checkout, carts, store := newCheckoutFixture(t)
	ctx := context.Background()

	productID := uuid.New()
	store.SeedVariant(domain.ProductVariant{
		ProductID: productID, ProductName: "House Blend", Size: "250g",
		UnitPrice: dec("500"), Stock: 3,
	})

	cart, err := carts.CreateCart(ctx)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, cart.Cart.ID, productID, "250g", 3)
	require.NoError(t, err)

	// Stock drains after the items were added but before checkout commits.
	store.SeedVariant(domain.ProductVariant{
		ProductID: productID, ProductName: "House Blend", Size: "250g",
		UnitPrice: dec("500"), Stock: 2,
	})

	_, err = checkout.Checkout(ctx, CheckoutParams{
		CartID:          cart.Cart.ID,
		ShippingAddress: testAddress(),
		BillingAddress:  testAddress(),
		PaymentMethod:   "cod",
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// Nothing committed: stock untouched, cart still intact.
	assert.Equal(t, int32(2), store.Stock(productID, "250g"))
	summary, err := carts.GetSummary(ctx, cart.Cart.ID)
	require.NoError(t, err)
	assert.Len(t, summary.Items, 1)
}

// Two concurrent checkouts race for the last unit; exactly one wins and the
// loser's cart survives.
func TestCheckoutLastUnitRace(t *testing.T) {
	checkout, carts, store := newCheckoutFixture(t)
	ctx := context.Background()

	productID := uuid.New()
	store.SeedVariant(domain.ProductVariant{
		ProductID: productID, ProductName: "House Blend", Size: "250g",
		UnitPrice: dec("500"), Stock: 1,
	})

	newCartWithUnit := func() uuid.UUID {
		cart, err := carts.CreateCart(ctx)
		require.NoError(t, err)
		_, err = carts.AddItem(ctx, cart.Cart.ID, productID, "250g", 1)
		require.NoError(t, err)
		return cart.Cart.ID
	}
	cartA := newCartWithUnit()
	cartB := newCartWithUnit()

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i, cartID := range []uuid.UUID{cartA, cartB} {
		wg.Add(1)
		go func(i int, cartID uuid.UUID) {
			defer wg.Done()
			_, err := checkout.Checkout(ctx, CheckoutParams{
				CartID:          cartID,
				ShippingAddress: testAddress(),
				BillingAddress:  testAddress(),
				PaymentMethod:   "cod",
			})
			results[i] = err
		}(i, cartID)
	}
	wg.Wait()

	var won, lost int
	for _, err := range results {
		switch {
		case err == nil:
			won++
		default:
			assert.ErrorIs(t, err, ErrInsufficientStock)
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)
	assert.Equal(t, int32(0), store.Stock(productID, "250g"))
}

func TestGenerateOrderNumberFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		number, err := generateOrderNumber()
		require.NoError(t, err)

		parts := strings.Split(number, "-")
		require.Len(t, parts, 3)
		assert.Equal(t, "VST", parts[0])
		assert.Len(t, parts[1], 8)
		assert.Len(t, parts[2], 4)
		for _, r := range parts[2] {
			assert.Contains(t, orderNumberAlphabet, string(r))
		}
		seen[number] = true
	}
	// Collisions are possible in principle but vanishingly unlikely in 100
	// draws; the store's unique constraint is the real guarantee.
	assert.Greater(t, len(seen), 90)
}
