package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rowanholt/vesta/internal/domain"
	"github.com/rowanholt/vesta/internal/pricing"
	"github.com/rowanholt/vesta/internal/repository"
)

// CouponService validates promotional codes against a cart subtotal and the
// current time, producing a bound discount. Validation is re-invoked whenever
// the subtotal changes; a result is never cached across cart mutations.
type CouponService struct {
	store repository.Store

	// now is injected so expiry checks are deterministic in tests.
	now func() time.Time
}

// NewCouponService creates a CouponService using the wall clock.
func NewCouponService(store repository.Store) *CouponService {
	return &CouponService{store: store, now: time.Now}
}

// WithClock overrides the time source. Test use only.
func (s *CouponService) WithClock(now func() time.Time) *CouponService {
	s.now = now
	return s
}

// Validate looks up the coupon for code, checks the active flag, the time
// window, and the minimum order value, and returns the applied snapshot with
// its discount amount computed for the given subtotal.
func (s *CouponService) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*domain.AppliedCoupon, error) {
	normalized := domain.NormalizeCouponCode(code)
	if normalized == "" {
		return nil, domain.Invalid("coupon.validate", "coupon code is required")
	}

	coupon, err := s.store.GetCoupon(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, domain.Internal(err, "coupon.validate", "failed to look up coupon")
	}

	if !coupon.Active {
		return nil, ErrCouponInactive
	}

	now := s.now()
	if !coupon.StartsAt.IsZero() && now.Before(coupon.StartsAt) {
		return nil, ErrCouponInactive
	}
	if !coupon.ExpiresAt.IsZero() && now.After(coupon.ExpiresAt) {
		return nil, ErrCouponExpired
	}

	if subtotal.LessThan(coupon.MinOrderValue) {
		return nil, fmt.Errorf("%w: minimum order value is %s", ErrCouponBelowMinimum, coupon.MinOrderValue.StringFixed(2))
	}

	discount, err := pricing.Discount(subtotal, coupon)
	if err != nil {
		return nil, err
	}

	return &domain.AppliedCoupon{
		Code:           coupon.Code,
		Type:           coupon.Type,
		Value:          coupon.Value,
		DiscountAmount: discount,
		Description:    coupon.Description,
	}, nil
}
