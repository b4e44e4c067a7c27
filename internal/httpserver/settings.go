package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/middleware/auth"
	"github.com/Skotchmaster/markethub/internal/service"
	"github.com/Skotchmaster/markethub/internal/transport"
)

type SettingsHTTP struct {
	Svc  *service.SettingsService
	Gate *auth.Gate
}

func (h *SettingsHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "settings.list")

	admin, err := h.Gate.IsAdmin(c)
	if err != nil {
		return fromService(l, "list_settings_error", err)
	}
	list, err := h.Svc.List(ctx, admin)
	if err != nil {
		return fromService(l, "list_settings_error", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *SettingsHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "settings.update")

	var req transport.UpdateSettingRequest
	if err := bindValid(c, l, "update_setting_error", &req); err != nil {
		return err
	}
	key := c.Param("key")
	st, err := h.Svc.Update(ctx, key, req.Value)
	if err != nil {
		return fromService(l, "update_setting_error", err)
	}

	l.Info("setting_updated", "key", key)
	return c.JSON(http.StatusOK, st)
}
