package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/middleware/auth"
	"github.com/Skotchmaster/markethub/internal/service"
	"github.com/Skotchmaster/markethub/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get.cart")

	uid, _ := auth.UserID(c)
	items, err := h.Svc.List(ctx, uid)
	if err != nil {
		return fromService(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "add.cart")

	var req transport.AddCartItemRequest
	if err := bindValid(c, l, "add_to_cart_error", &req); err != nil {
		return err
	}

	uid, _ := auth.UserID(c)
	item, err := h.Svc.Add(ctx, uid, req)
	if err != nil {
		return fromService(l, "add_to_cart_error", err)
	}

	l.Info("item added to cart", "cart_item_id", item.ID, "product_id", item.ProductID, "quantity", item.Quantity)
	return c.JSON(http.StatusCreated, item)
}

func (h *CartHTTP) UpdateCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "update.cart")

	id, err := pathID(c, l, "update_cart_error", "id")
	if err != nil {
		return err
	}
	var req transport.UpdateCartItemRequest
	if err := bindValid(c, l, "update_cart_error", &req); err != nil {
		return err
	}

	uid, _ := auth.UserID(c)
	item, err := h.Svc.Update(ctx, uid, id, req.Quantity)
	if err != nil {
		return fromService(l, "update_cart_error", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) DeleteFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delete.one.from.cart")

	id, err := pathID(c, l, "delete_from_cart_error", "id")
	if err != nil {
		return err
	}
	uid, _ := auth.UserID(c)
	if err := h.Svc.Remove(ctx, uid, id); err != nil {
		return fromService(l, "delete_from_cart_error", err)
	}
	return message(c, "Item removed from cart")
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delete.all.from.cart")

	uid, _ := auth.UserID(c)
	if err := h.Svc.Clear(ctx, uid); err != nil {
		return fromService(l, "clear_cart_error", err)
	}
	return message(c, "Cart cleared successfully")
}
