package routes

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/rowanholt/vesta/internal/handler/api"
	"github.com/rowanholt/vesta/internal/middleware"
)

// Deps contains the handlers and cross-cutting pieces the router mounts.
type Deps struct {
	Cart     *api.CartHandler
	Checkout *api.CheckoutHandler
	Orders   *api.OrderHandler
	Stats    *api.StatsHandler
	Health   *api.HealthHandler

	Logger  zerolog.Logger
	Metrics *middleware.Metrics
}

// Register wires every route and middleware onto the echo instance.
func Register(e *echo.Echo, deps Deps) {
	e.Use(echo.WrapMiddleware(middleware.RequestID))
	e.Use(echo.WrapMiddleware(middleware.Logger(deps.Logger)))
	if deps.Metrics != nil {
		e.Use(echo.WrapMiddleware(deps.Metrics.Middleware))
		e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))
	}
	e.Use(echomw.Recover())

	e.GET("/health", deps.Health.Check)

	// Customer-facing API.
	g := e.Group("/api")
	g.POST("/carts", deps.Cart.Create)
	g.GET("/carts/:id", deps.Cart.Get)
	g.POST("/carts/:id/items", deps.Cart.AddItem)
	g.PATCH("/carts/:id/items/:itemId", deps.Cart.UpdateItem)
	g.DELETE("/carts/:id/items/:itemId", deps.Cart.RemoveItem)
	g.POST("/carts/:id/coupon", deps.Cart.ApplyCoupon)
	g.DELETE("/carts/:id/coupon", deps.Cart.RemoveCoupon)
	g.POST("/checkout", deps.Checkout.Checkout)
	g.GET("/orders/:number", deps.Orders.GetByNumber)

	// Admin API.
	admin := e.Group("/admin")
	admin.GET("/orders", deps.Orders.List)
	admin.GET("/orders/:id", deps.Orders.Get)
	admin.PATCH("/orders/:id", deps.Orders.Update)
	admin.DELETE("/orders/:id", deps.Orders.Delete)
	admin.GET("/stats", deps.Stats.Get)
}
