package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/markethub/internal/service"
	"github.com/Skotchmaster/markethub/internal/transport"
	"github.com/Skotchmaster/markethub/internal/util"
)

// HTTPErrorHandler renders every error as {"message": "..."}.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, msg := http.StatusInternalServerError, "Server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, transport.MessageResponse{Message: msg})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrAlreadyReviewed),
		errors.Is(err, service.ErrCategoryInUse),
		errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fromService logs err under event and converts it to the HTTP error the
// client sees. Unclassified errors become a generic 500.
func fromService(l *slog.Logger, event string, err error) error {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		l.Error(event, "status", status, "error", err)
		return echo.NewHTTPError(status, "Server error")
	}

	msg := service.Message(err)
	if msg == "" {
		msg = http.StatusText(status)
	}
	l.Warn(event, "status", status, "reason", msg, "error", err)
	return echo.NewHTTPError(status, msg)
}

// bindValid decodes the body into req and runs struct validation. Both
// failures answer 400 Invalid data; the detail only goes to the log.
func bindValid(c echo.Context, l *slog.Logger, event string, req any) error {
	if err := c.Bind(req); err != nil {
		l.Warn(event, "status", 400, "reason", "bind", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid data")
	}
	if err := c.Validate(req); err != nil {
		l.Warn(event, "status", 400, "reason", "validate", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid data")
	}
	return nil
}

func pathID(c echo.Context, l *slog.Logger, event, name string) (uint, error) {
	id, ok := util.ParseID(c.Param(name))
	if !ok {
		l.Warn(event, "status", 400, "reason", "invalid id", name, c.Param(name))
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid ID")
	}
	return id, nil
}

func message(c echo.Context, text string) error {
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: text})
}
