package loggingmw

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/middleware/auth"
)

// RequestLogger puts a request-scoped logger into the request context and
// writes one line per request once the response is final. Handler errors are
// rendered here, so outer middleware sees a nil error. Successful requests on
// quiet routes are logged at debug level.
func RequestLogger(base *slog.Logger, quiet ...string) echo.MiddlewareFunc {
	quietRoutes := make(map[string]struct{}, len(quiet))
	for _, r := range quiet {
		quietRoutes[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = req.Header.Get(echo.HeaderXRequestID)
			}

			l := base.With("method", req.Method, "route", c.Path(), "remote_ip", c.RealIP())
			if rid != "" {
				l = l.With("request_id", rid)
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			res := c.Response()
			attrs := []any{
				"status", res.Status,
				"url", req.URL.Path,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes_out", res.Size,
			}
			if uid, ok := auth.UserID(c); ok {
				attrs = append(attrs, "user_id", uid)
			}

			switch _, isQuiet := quietRoutes[c.Path()]; {
			case res.Status >= 500:
				if err != nil {
					attrs = append(attrs, "error", err.Error())
				}
				l.Error("request_failed", attrs...)
			case res.Status >= 400:
				l.Warn("request_rejected", attrs...)
			case isQuiet:
				l.Debug("request_completed", attrs...)
			default:
				l.Info("request_completed", attrs...)
			}
			return nil
		}
	}
}
