package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rowanholt/vesta/internal/domain"
	"github.com/rowanholt/vesta/internal/service"
)

// CartHandler exposes cart operations.
type CartHandler struct {
	carts *service.CartService
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts *service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// Create handles POST /api/carts.
func (h *CartHandler) Create(c echo.Context) error {
	summary, err := h.carts.CreateCart(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newCartResponse(summary))
}

// Get handles GET /api/carts/:id.
func (h *CartHandler) Get(c echo.Context) error {
	cartID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	summary, err := h.carts.GetSummary(c.Request().Context(), cartID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartResponse(summary))
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Size      string `json:"size" validate:"required"`
	Quantity  int32  `json:"quantity" validate:"required,min=1"`
}

// AddItem handles POST /api/carts/:id/items.
func (h *CartHandler) AddItem(c echo.Context) error {
	cartID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("api.cart.add_item", "malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	productID, _ := uuid.Parse(req.ProductID)
	summary, err := h.carts.AddItem(c.Request().Context(), cartID, productID, req.Size, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartResponse(summary))
}

type updateItemRequest struct {
	Quantity *int32 `json:"quantity" validate:"required,min=0"`
}

// UpdateItem handles PATCH /api/carts/:id/items/:itemId.
func (h *CartHandler) UpdateItem(c echo.Context) error {
	cartID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	itemID, err := parseUUIDParam(c, "itemId")
	if err != nil {
		return err
	}

	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("api.cart.update_item", "malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	summary, err := h.carts.UpdateItemQuantity(c.Request().Context(), cartID, itemID, *req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartResponse(summary))
}

// RemoveItem handles DELETE /api/carts/:id/items/:itemId.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	cartID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	itemID, err := parseUUIDParam(c, "itemId")
	if err != nil {
		return err
	}

	summary, err := h.carts.RemoveItem(c.Request().Context(), cartID, itemID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartResponse(summary))
}

type applyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

// ApplyCoupon handles POST /api/carts/:id/coupon.
func (h *CartHandler) ApplyCoupon(c echo.Context) error {
	cartID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req applyCouponRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("api.cart.apply_coupon", "malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	summary, err := h.carts.ApplyCoupon(c.Request().Context(), cartID, req.Code)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartResponse(summary))
}

// RemoveCoupon handles DELETE /api/carts/:id/coupon.
func (h *CartHandler) RemoveCoupon(c echo.Context) error {
	cartID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	summary, err := h.carts.RemoveCoupon(c.Request().Context(), cartID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartResponse(summary))
}

func parseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, domain.Errorf(domain.EINVALID, "api.params", "invalid %s: must be a UUID", name)
	}
	return id, nil
}
