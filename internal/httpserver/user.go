package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/middleware/auth"
	"github.com/Skotchmaster/markethub/internal/service"
	"github.com/Skotchmaster/markethub/internal/transport"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.list")

	users, err := h.Svc.List(ctx)
	if err != nil {
		return fromService(l, "list_users_error", err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.get")

	id, err := pathID(c, l, "get_user_error", "id")
	if err != nil {
		return err
	}
	user, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fromService(l, "get_user_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

// Update lets a user edit their own profile. Admins may edit anyone and
// toggle the admin flag.
func (h *UserHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.update")

	id, err := pathID(c, l, "update_user_error", "id")
	if err != nil {
		return err
	}
	var req transport.UpdateUserRequest
	if err := bindValid(c, l, "update_user_error", &req); err != nil {
		return err
	}

	actor, _ := auth.UserID(c)
	user, err := h.Svc.Update(ctx, actor, id, req)
	if err != nil {
		return fromService(l, "update_user_error", err)
	}

	l.Info("user_updated", "user_id", id, "actor_id", actor)
	return c.JSON(http.StatusOK, user)
}
