package auth

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/markethub/internal/models"
	"github.com/Skotchmaster/markethub/internal/session"
)

const userIDKey = "user_id"

type UserLookup interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// Gate guards routes with the session cookie.
type Gate struct {
	Sessions *session.Manager
	Users    UserLookup
}

func New(sessions *session.Manager, users UserLookup) *Gate {
	return &Gate{Sessions: sessions, Users: users}
}

// UserID returns the authenticated user id set by one of the gate
// middlewares.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(userIDKey).(uint)
	return id, ok && id != 0
}

func SetUserID(c echo.Context, id uint) {
	c.Set(userIDKey, id)
}

func unauthorized() error {
	return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
}

func forbidden() error {
	return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
}
