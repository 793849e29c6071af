package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rowanholt/vesta/internal/domain"
	"github.com/rowanholt/vesta/internal/service"
)

// OrderHandler exposes order lookup and the admin lifecycle operations.
type OrderHandler struct {
	orders *service.OrderService
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// GetByNumber handles GET /api/orders/:number, the customer-facing order
// confirmation lookup.
func (h *OrderHandler) GetByNumber(c echo.Context) error {
	order, err := h.orders.GetOrderByNumber(c.Request().Context(), c.Param("number"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newOrderResponse(order))
}

// List handles GET /admin/orders.
func (h *OrderHandler) List(c echo.Context) error {
	limit := queryInt32(c, "limit", 50)
	offset := queryInt32(c, "offset", 0)

	orders, err := h.orders.ListOrders(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}

	resp := make([]orderResponse, len(orders))
	for i := range orders {
		resp[i] = newOrderResponse(&orders[i])
	}
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /admin/orders/:id.
func (h *OrderHandler) Get(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orders.GetOrder(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newOrderResponse(order))
}

type updateOrderRequest struct {
	OrderStatus       *string `json:"orderStatus"`
	PaymentStatus     *string `json:"paymentStatus"`
	FulfillmentStatus *string `json:"fulfillmentStatus"`
	ShippingMethod    *string `json:"shippingMethod"`
	TrackingNumber    *string `json:"trackingNumber"`
	Notes             *string `json:"notes"`
}

// toPatch parses the wire strings into typed statuses, rejecting any
// out-of-enum value before the service sees the patch.
func (r updateOrderRequest) toPatch() (domain.OrderPatch, error) {
	patch := domain.OrderPatch{
		ShippingMethod: r.ShippingMethod,
		TrackingNumber: r.TrackingNumber,
		Notes:          r.Notes,
	}

	if r.OrderStatus != nil {
		status, err := domain.ParseOrderStatus(*r.OrderStatus)
		if err != nil {
			return domain.OrderPatch{}, err
		}
		patch.OrderStatus = &status
	}
	if r.PaymentStatus != nil {
		status, err := domain.ParsePaymentStatus(*r.PaymentStatus)
		if err != nil {
			return domain.OrderPatch{}, err
		}
		patch.PaymentStatus = &status
	}
	if r.FulfillmentStatus != nil {
		status, err := domain.ParseFulfillmentStatus(*r.FulfillmentStatus)
		if err != nil {
			return domain.OrderPatch{}, err
		}
		patch.FulfillmentStatus = &status
	}

	return patch, nil
}

// Update handles PATCH /admin/orders/:id.
func (h *OrderHandler) Update(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req updateOrderRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("api.order.update", "malformed request body")
	}

	patch, err := req.toPatch()
	if err != nil {
		return err
	}

	order, err := h.orders.UpdateOrder(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newOrderResponse(order))
}

// Delete handles DELETE /admin/orders/:id.
func (h *OrderHandler) Delete(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.orders.DeleteOrder(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func queryInt32(c echo.Context, name string, fallback int32) int32 {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fallback
	}
	return int32(v)
}
