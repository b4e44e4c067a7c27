package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/repo"
)

// RequireAdmin runs RequireAuth and then checks the admin flag on the
// stored user. It answers 401 without a session and 403 otherwise.
func (g *Gate) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return g.RequireAuth(func(c echo.Context) error {
		admin, err := g.IsAdmin(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
		}
		if !admin {
			return forbidden()
		}
		return next(c)
	})
}

// IsAdmin reports whether the user bound to c is an administrator. It is
// false without error for anonymous callers and deleted users.
func (g *Gate) IsAdmin(c echo.Context) (bool, error) {
	uid, ok := UserID(c)
	if !ok {
		return false, nil
	}
	ctx := c.Request().Context()
	user, err := g.Users.GetUser(ctx, uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		logging.FromContext(ctx).Error("admin_check_error", "status", 500, "user_id", uid, "error", err)
		return false, err
	}
	return user.IsAdmin, nil
}
