package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/middleware/auth"
	"github.com/Skotchmaster/markethub/internal/validation"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Gate  *auth.Gate
	Store Pinger
	WS    echo.HandlerFunc

	Auth     *AuthHTTP
	Users    *UserHTTP
	Catalog  *CatalogHTTP
	Reviews  *ReviewHTTP
	Cart     *CartHTTP
	Orders   *OrderHTTP
	Vouchers *VoucherHTTP
	Settings *SettingsHTTP
	Admin    *AdminHTTP
}

// Register installs the validator, the error renderer and every route on e.
func Register(e *echo.Echo, d *Deps) {
	e.Validator = validation.Echo{}
	e.HTTPErrorHandler = HTTPErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		ctx := c.Request().Context()
		if err := d.Store.Ping(ctx); err != nil {
			logging.FromContext(ctx).Error("readiness_error", "status", 503, "error", err)
			return echo.NewHTTPError(http.StatusServiceUnavailable, "Database unavailable")
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if d.WS != nil {
		e.GET("/ws", d.WS)
	}

	authed := d.Gate.RequireAuth
	admin := d.Gate.RequireAdmin

	api := e.Group("/api")
	api.GET("/status", d.Admin.Status)
	api.GET("/download", d.Admin.Download, admin)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", d.Auth.Register)
	authGroup.POST("/login", d.Auth.Login)
	authGroup.POST("/logout", d.Auth.Logout)
	authGroup.GET("/me", d.Auth.Me, authed)

	users := api.Group("/users")
	users.GET("", d.Users.List, admin)
	users.GET("/:id", d.Users.Get, admin)
	users.PUT("/:id", d.Users.Update, authed)

	categories := api.Group("/categories")
	categories.GET("", d.Catalog.ListCategories)
	categories.GET("/:id", d.Catalog.GetCategory)
	categories.POST("", d.Catalog.CreateCategory, admin)
	categories.PUT("/:id", d.Catalog.UpdateCategory, admin)
	categories.DELETE("/:id", d.Catalog.DeleteCategory, admin)

	products := api.Group("/products")
	products.GET("", d.Catalog.ListProducts)
	products.GET("/:id", d.Catalog.GetProduct)
	products.POST("", d.Catalog.CreateProduct, admin)
	products.PUT("/:id", d.Catalog.UpdateProduct, admin)
	products.DELETE("/:id", d.Catalog.DeleteProduct, admin)
	products.GET("/:id/reviews", d.Reviews.List)
	products.POST("/:id/reviews", d.Reviews.Create, authed)

	cart := api.Group("/cart", authed)
	cart.GET("", d.Cart.GetCart)
	cart.POST("", d.Cart.AddToCart)
	cart.PUT("/:id", d.Cart.UpdateCartItem)
	cart.DELETE("/:id", d.Cart.DeleteFromCart)
	cart.DELETE("", d.Cart.ClearCart)

	orders := api.Group("/orders")
	orders.GET("", d.Orders.List, authed)
	orders.GET("/:id", d.Orders.Get, authed)
	orders.POST("", d.Orders.Create, authed)
	orders.PUT("/:id/status", d.Orders.UpdateStatus, admin)

	vouchers := api.Group("/vouchers", authed)
	vouchers.GET("", d.Vouchers.List)
	vouchers.POST("/validate", d.Vouchers.Validate)

	settings := api.Group("/settings")
	settings.GET("", d.Settings.List, d.Gate.OptionalAuth)
	settings.PUT("/:key", d.Settings.Update, admin)
}
