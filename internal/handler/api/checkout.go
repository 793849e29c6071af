package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rowanholt/vesta/internal/domain"
	"github.com/rowanholt/vesta/internal/service"
)

// CheckoutHandler exposes the checkout operation.
type CheckoutHandler struct {
	checkout *service.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(checkout *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

type checkoutRequest struct {
	CartID          string         `json:"cartId" validate:"required,uuid"`
	ShippingAddress domain.Address `json:"shippingAddress" validate:"required"`
	BillingAddress  domain.Address `json:"billingAddress" validate:"required"`
	PaymentMethod   string         `json:"paymentMethod" validate:"required"`
}

// Checkout handles POST /api/checkout.
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("api.checkout", "malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	cartID, _ := uuid.Parse(req.CartID)
	order, err := h.checkout.Checkout(c.Request().Context(), service.CheckoutParams{
		CartID:          cartID,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, newOrderResponse(order))
}
