package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/middleware/auth"
	"github.com/Skotchmaster/markethub/internal/service"
	"github.com/Skotchmaster/markethub/internal/session"
	"github.com/Skotchmaster/markethub/internal/transport"
)

type AuthHTTP struct {
	Svc      *service.AuthService
	Users    *service.UserService
	Sessions *session.Manager
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := bindValid(c, l, "register_error", &req); err != nil {
		return err
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fromService(l, "register_error", err)
	}

	if err := h.startSession(c, user.ID); err != nil {
		l.Error("register_error", "status", 500, "reason", "session", "user_id", user.ID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	l.Info("user_registered", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "bind", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid data")
	}

	user, err := h.Svc.Login(ctx, req)
	if err != nil {
		return fromService(l, "login_error", err)
	}

	if err := h.startSession(c, user.ID); err != nil {
		l.Error("login_error", "status", 500, "reason", "session", "user_id", user.ID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	l.Info("user_logged_in", "user_id", user.ID)
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	ck, err := h.Sessions.Destroy(ctx, c.Request())
	if err != nil {
		l.Error("logout_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to logout")
	}
	c.SetCookie(ck)
	return message(c, "Logged out successfully")
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	uid, _ := auth.UserID(c)
	user, err := h.Users.Get(ctx, uid)
	if err != nil {
		return fromService(l, "me_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) startSession(c echo.Context, userID uint) error {
	ck, err := h.Sessions.Start(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	c.SetCookie(ck)
	return nil
}
