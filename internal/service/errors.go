package service

import (
	"github.com/rowanholt/vesta/internal/domain"
)

// Cart errors - domain.ENOTFOUND / domain.EINVALID
var (
	ErrCartNotFound     = domain.Errorf(domain.ENOTFOUND, "", "Cart not found")
	ErrCartItemNotFound = domain.Errorf(domain.ENOTFOUND, "", "Cart item not found")
	ErrVariantNotFound  = domain.Errorf(domain.ENOTFOUND, "", "Product variant not found")
	ErrInvalidQuantity  = domain.Errorf(domain.EINVALID, "", "Quantity must be greater than 0")
	ErrEmptyCart        = domain.Errorf(domain.EINVALID, "", "Cart is empty")
)

// Coupon errors
var (
	ErrCouponNotFound     = domain.Errorf(domain.ENOTFOUND, "", "Coupon not found")
	ErrCouponInactive     = domain.Errorf(domain.EUNPROCESSABLE, "", "Coupon is not active")
	ErrCouponExpired      = domain.Errorf(domain.EUNPROCESSABLE, "", "Coupon has expired")
	ErrCouponBelowMinimum = domain.Errorf(domain.EUNPROCESSABLE, "", "Order does not meet the coupon minimum order value")
)

// Checkout errors
var (
	ErrInsufficientStock = domain.Errorf(domain.EUNPROCESSABLE, "", "Insufficient stock for one or more items")
	ErrOrderNumberRetry  = domain.Errorf(domain.ECONFLICT, "", "Could not allocate a unique order number, please retry")
)

// Order lifecycle errors
var (
	ErrOrderNotFound     = domain.Errorf(domain.ENOTFOUND, "", "Order not found")
	ErrOrderNotDeletable = domain.Errorf(domain.EUNPROCESSABLE, "", "Only pending or cancelled orders can be deleted")
	ErrOrderConflict     = domain.Errorf(domain.ECONFLICT, "", "Order was modified concurrently, re-fetch and retry")
	ErrEmptyPatch        = domain.Errorf(domain.EINVALID, "", "Update contains no fields")
)
