package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/rowanholt/vesta/internal/domain"
	"github.com/rowanholt/vesta/internal/pricing"
	"github.com/rowanholt/vesta/internal/repository"
	"github.com/rowanholt/vesta/internal/shipping"
)

// CartService provides business logic for shopping cart operations. Every
// mutation returns a fresh summary with the coupon re-validated against the
// new subtotal; a coupon that stopped applying is detached and reported in
// the summary, never left silently stale.
type CartService struct {
	store   repository.Store
	coupons *CouponService
	policy  shipping.Policy
}

// NewCartService creates a new CartService instance.
func NewCartService(store repository.Store, coupons *CouponService, policy shipping.Policy) *CartService {
	return &CartService{store: store, coupons: coupons, policy: policy}
}

// CreateCart creates an empty cart.
func (s *CartService) CreateCart(ctx context.Context) (*domain.CartSummary, error) {
	cart, err := s.store.CreateCart(ctx)
	if err != nil {
		return nil, domain.Internal(err, "cart.create", "failed to create cart")
	}

	return s.summarize(ctx, cart)
}

// GetSummary retrieves a cart with items and display totals.
func (s *CartService) GetSummary(ctx context.Context, cartID uuid.UUID) (*domain.CartSummary, error) {
	cart, err := s.getCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	return s.summarize(ctx, cart)
}

// AddItem adds a product variant to the cart, snapshotting the current
// catalog price, or increments the quantity if the line already exists.
// Stock is advisory-checked here; the authoritative check happens again at
// checkout commit time.
func (s *CartService) AddItem(ctx context.Context, cartID, productID uuid.UUID, size string, quantity int32) (*domain.CartSummary, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.getCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	variant, err := s.store.GetVariant(ctx, productID, size)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, domain.Internal(err, "cart.add_item", "failed to load product variant")
	}

	if variant.Stock < quantity {
		return nil, ErrInsufficientStock
	}

	if _, err := s.store.UpsertCartItem(ctx, repository.UpsertCartItemParams{
		CartID:      cart.ID,
		ProductID:   variant.ProductID,
		ProductName: variant.ProductName,
		Size:        variant.Size,
		UnitPrice:   variant.UnitPrice,
		Quantity:    quantity,
	}); err != nil {
		return nil, domain.Internal(err, "cart.add_item", "failed to add cart item")
	}

	return s.summarize(ctx, cart)
}

// UpdateItemQuantity replaces a line's quantity. Zero removes the line.
func (s *CartService) UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int32) (*domain.CartSummary, error) {
	if quantity == 0 {
		return s.RemoveItem(ctx, cartID, itemID)
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.getCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateCartItemQuantity(ctx, cart.ID, itemID, quantity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, domain.Internal(err, "cart.update_item", "failed to update cart item")
	}

	return s.summarize(ctx, cart)
}

// RemoveItem removes a line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) (*domain.CartSummary, error) {
	cart, err := s.getCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if err := s.store.RemoveCartItem(ctx, cart.ID, itemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, domain.Internal(err, "cart.remove_item", "failed to remove cart item")
	}

	return s.summarize(ctx, cart)
}

// ApplyCoupon validates a code against the current subtotal and attaches it
// to the cart.
func (s *CartService) ApplyCoupon(ctx context.Context, cartID uuid.UUID, code string) (*domain.CartSummary, error) {
	cart, err := s.getCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	items, err := s.store.GetCartItems(ctx, cart.ID)
	if err != nil {
		return nil, domain.Internal(err, "cart.apply_coupon", "failed to load cart items")
	}

	subtotal, err := pricing.Subtotal(items)
	if err != nil {
		return nil, err
	}

	applied, err := s.coupons.Validate(ctx, code, subtotal)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetCartCoupon(ctx, cart.ID, &applied.Code); err != nil {
		return nil, domain.Internal(err, "cart.apply_coupon", "failed to attach coupon")
	}
	cart.CouponCode = &applied.Code

	return s.summarize(ctx, cart)
}

// RemoveCoupon detaches the applied coupon, if any.
func (s *CartService) RemoveCoupon(ctx context.Context, cartID uuid.UUID) (*domain.CartSummary, error) {
	cart, err := s.getCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetCartCoupon(ctx, cart.ID, nil); err != nil {
		return nil, domain.Internal(err, "cart.remove_coupon", "failed to detach coupon")
	}
	cart.CouponCode = nil

	return s.summarize(ctx, cart)
}

func (s *CartService) getCart(ctx context.Context, cartID uuid.UUID) (domain.Cart, error) {
	cart, err := s.store.GetCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Cart{}, ErrCartNotFound
		}
		return domain.Cart{}, domain.Internal(err, "cart.get", "failed to load cart")
	}
	return cart, nil
}

// summarize recomputes all display totals for the cart. The coupon, when
// present, is re-validated against the fresh subtotal; if it stopped
// applying it is detached here and the removal is surfaced to the caller.
func (s *CartService) summarize(ctx context.Context, cart domain.Cart) (*domain.CartSummary, error) {
	items, err := s.store.GetCartItems(ctx, cart.ID)
	if err != nil {
		return nil, domain.Internal(err, "cart.summary", "failed to load cart items")
	}

	subtotal, err := pricing.Subtotal(items)
	if err != nil {
		return nil, err
	}

	summary := &domain.CartSummary{
		Cart:     cart,
		Items:    items,
		Subtotal: subtotal,
		Shipping: s.policy.Cost(subtotal),
	}
	for _, item := range items {
		summary.ItemCount += int(item.Quantity)
	}

	if cart.CouponCode != nil {
		applied, err := s.coupons.Validate(ctx, *cart.CouponCode, subtotal)
		switch {
		case err == nil:
			summary.Coupon = applied
			summary.Discount = applied.DiscountAmount
		case domain.IsCode(err, domain.EUNPROCESSABLE), domain.IsCode(err, domain.ENOTFOUND):
			if detachErr := s.store.SetCartCoupon(ctx, cart.ID, nil); detachErr != nil {
				return nil, domain.Internal(detachErr, "cart.summary", "failed to detach stale coupon")
			}
			summary.Cart.CouponCode = nil
			summary.CouponRemoved = true
			summary.CouponRemovedReason = domain.ErrorMessage(err)
		default:
			return nil, err
		}
	}

	summary.Total = pricing.Total(summary.Subtotal, summary.Shipping, summary.Discount)

	return summary, nil
}
