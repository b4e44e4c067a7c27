package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/middleware/auth"
	"github.com/Skotchmaster/markethub/internal/service"
	"github.com/Skotchmaster/markethub/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.list")

	uid, _ := auth.UserID(c)
	orders, err := h.Svc.List(ctx, uid)
	if err != nil {
		return fromService(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.get")

	id, err := pathID(c, l, "get_order_error", "id")
	if err != nil {
		return err
	}
	uid, _ := auth.UserID(c)
	order, err := h.Svc.Get(ctx, uid, id)
	if err != nil {
		return fromService(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.create")

	var req transport.CreateOrderRequest
	if err := bindValid(c, l, "create_order_error", &req); err != nil {
		return err
	}

	uid, _ := auth.UserID(c)
	placed, err := h.Svc.PlaceOrder(ctx, uid, req)
	if err != nil {
		return fromService(l, "create_order_error", err)
	}

	return c.JSON(http.StatusCreated, transport.PlacedOrderResponse{
		Order:          placed.Order,
		VoucherApplied: placed.VoucherApplied,
	})
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.status")

	id, err := pathID(c, l, "update_order_status_error", "id")
	if err != nil {
		return err
	}
	var req transport.UpdateOrderStatusRequest
	if err := bindValid(c, l, "update_order_status_error", &req); err != nil {
		return err
	}

	order, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return fromService(l, "update_order_status_error", err)
	}
	return c.JSON(http.StatusOK, order)
}
