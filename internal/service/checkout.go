package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rowanholt/vesta/internal/domain"
	"github.com/rowanholt/vesta/internal/events"
	"github.com/rowanholt/vesta/internal/pricing"
	"github.com/rowanholt/vesta/internal/repository"
	"github.com/rowanholt/vesta/internal/shipping"
)

// Order numbers are regenerated on a unique-constraint collision; the
// generator alone is not trusted for uniqueness.
const orderNumberAttempts = 3

// CheckoutService converts a validated cart into an immutable order with
// atomic stock reservation. Either a fully priced, fully stocked order is
// committed, or nothing is persisted.
type CheckoutService struct {
	store   repository.Store
	coupons *CouponService
	policy  shipping.Policy
	events  events.Publisher
	logger  zerolog.Logger
}

// NewCheckoutService creates a new CheckoutService instance.
func NewCheckoutService(store repository.Store, coupons *CouponService, policy shipping.Policy, publisher events.Publisher, logger zerolog.Logger) *CheckoutService {
	return &CheckoutService{
		store:   store,
		coupons: coupons,
		policy:  policy,
		events:  publisher,
		logger:  logger,
	}
}

// CheckoutParams contains the customer-supplied parts of a checkout.
type CheckoutParams struct {
	CartID          uuid.UUID
	ShippingAddress domain.Address
	BillingAddress  domain.Address
	PaymentMethod   string
}

// Checkout snapshots the cart into an order.
//
// Flow: load cart and items, validate addresses and payment method,
// re-validate the coupon against the current subtotal, price the order with
// the same calculator the cart display uses, then commit order + frozen
// items + stock decrements + cart destruction as one atomic unit. Stock is
// re-checked at commit time even though add-to-cart already checked it, to
// close the race window between concurrent checkouts.
func (s *CheckoutService) Checkout(ctx context.Context, params CheckoutParams) (*domain.Order, error) {
	cart, err := s.store.GetCart(ctx, params.CartID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, domain.Internal(err, "checkout.create", "failed to load cart")
	}

	items, err := s.store.GetCartItems(ctx, cart.ID)
	if err != nil {
		return nil, domain.Internal(err, "checkout.create", "failed to load cart items")
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	if err := params.ShippingAddress.Validate(); err != nil {
		return nil, err
	}
	if err := params.BillingAddress.Validate(); err != nil {
		return nil, err
	}

	paymentMethod, err := domain.ParsePaymentMethod(params.PaymentMethod)
	if err != nil {
		return nil, err
	}

	subtotal, err := pricing.Subtotal(items)
	if err != nil {
		return nil, err
	}

	// Shipping is computed on the pre-discount subtotal; the coupon never
	// changes what delivery costs.
	shippingCost := s.policy.Cost(subtotal)

	discount := decimal.Zero
	var couponCode *string
	if cart.CouponCode != nil {
		applied, err := s.coupons.Validate(ctx, *cart.CouponCode, subtotal)
		if err != nil {
			return nil, err
		}
		discount = applied.DiscountAmount
		couponCode = &applied.Code
	}

	total := pricing.Total(subtotal, shippingCost, discount)

	orderItems := make([]domain.OrderItem, len(items))
	for i, item := range items {
		orderItems[i] = domain.OrderItem{
			ID:          uuid.New(),
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Size:        item.Size,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal,
		}
	}

	order := domain.Order{
		ID:                uuid.New(),
		Items:             orderItems,
		ShippingAddress:   params.ShippingAddress,
		BillingAddress:    params.BillingAddress,
		Subtotal:          subtotal,
		Shipping:          shippingCost,
		Discount:          discount,
		Total:             total,
		CouponCode:        couponCode,
		PaymentMethod:     paymentMethod,
		OrderStatus:       domain.OrderStatusPending,
		PaymentStatus:     domain.PaymentStatusPending,
		FulfillmentStatus: domain.FulfillmentStatusUnfulfilled,
	}

	var created domain.Order
	for attempt := 0; ; attempt++ {
		order.OrderNumber, err = generateOrderNumber()
		if err != nil {
			return nil, domain.Internal(err, "checkout.create", "failed to generate order number")
		}

		created, err = s.store.CreateOrder(ctx, repository.CreateOrderParams{
			Order:      order,
			DeleteCart: cart.ID,
		})
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, ErrInsufficientStock
		}
		if errors.Is(err, repository.ErrDuplicateOrderNumber) && attempt < orderNumberAttempts-1 {
			continue
		}
		if errors.Is(err, repository.ErrDuplicateOrderNumber) {
			return nil, ErrOrderNumberRetry
		}
		return nil, domain.Internal(err, "checkout.create", "failed to create order")
	}

	s.logger.Info().
		Str("order_number", created.OrderNumber).
		Str("total", created.Total.StringFixed(2)).
		Int("items", len(created.Items)).
		Msg("order created")

	s.events.PublishOrderCreated(ctx, &created)

	return &created, nil
}

const orderNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateOrderNumber produces a human-readable order number in the form
// VST-20250129-A3K9. The persistence layer's unique constraint is the real
// uniqueness guarantee.
func generateOrderNumber() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}

	return fmt.Sprintf("VST-%s-%s", time.Now().UTC().Format("20060102"), buf), nil
}
