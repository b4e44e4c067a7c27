package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/session"
)

func (g *Gate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := g.Sessions.Resolve(ctx, c.Request())
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				return unauthorized()
			}
			logging.FromContext(ctx).Error("session_resolve_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
		}
		bind(c, uid)
		return next(c)
	}
}

// OptionalAuth attaches the session's user id when one is present and never
// rejects the request.
func (g *Gate) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		uid, err := g.Sessions.Resolve(ctx, c.Request())
		if err == nil {
			bind(c, uid)
		} else if !errors.Is(err, session.ErrNoSession) {
			logging.FromContext(ctx).Warn("session_resolve_error", "error", err)
		}
		return next(c)
	}
}

// bind records uid on c and tags the request logger with it.
func bind(c echo.Context, uid uint) {
	SetUserID(c, uid)
	c.SetRequest(c.Request().WithContext(logging.With(c.Request().Context(), "user_id", uid)))
}
