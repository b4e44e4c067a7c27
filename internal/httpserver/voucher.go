package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/middleware/auth"
	"github.com/Skotchmaster/markethub/internal/service"
	"github.com/Skotchmaster/markethub/internal/transport"
)

type VoucherHTTP struct {
	Svc *service.VoucherService
}

func (h *VoucherHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "vouchers.list")

	uid, _ := auth.UserID(c)
	vouchers, err := h.Svc.List(ctx, uid)
	if err != nil {
		return fromService(l, "list_vouchers_error", err)
	}
	return c.JSON(http.StatusOK, vouchers)
}

func (h *VoucherHTTP) Validate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "vouchers.validate")

	var req transport.ValidateVoucherRequest
	if err := bindValid(c, l, "validate_voucher_error", &req); err != nil {
		return err
	}
	v, err := h.Svc.Validate(ctx, req.Code)
	if err != nil {
		return fromService(l, "validate_voucher_error", err)
	}
	return c.JSON(http.StatusOK, v)
}
