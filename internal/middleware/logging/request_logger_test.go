package loggingmw

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/middleware/auth"
)

func newServer(buf *bytes.Buffer) *echo.Echo {
	e := echo.New()
	e.Use(RequestLogger(logging.NewWithWriter(buf, "info"), "/health/live"))
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/api/orders/:id", func(c echo.Context) error {
		auth.SetUserID(c, 7)
		logging.FromContext(c.Request().Context()).Info("inside")
		return echo.NewHTTPError(http.StatusNotFound, "Order not found")
	})
	e.GET("/boom", func(c echo.Context) error { return errors.New("db down") })
	return e
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &m))
		out = append(out, m)
	}
	return out
}

func TestRequestLogger_RendersErrorAndTagsRequest(t *testing.T) {
	var buf bytes.Buffer
	e := newServer(&buf)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/3", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "rid-1", rec.Header().Get(echo.HeaderXRequestID))

	lines := logLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "inside", lines[0]["msg"])
	assert.Equal(t, "rid-1", lines[0]["request_id"])
	assert.Equal(t, "/api/orders/:id", lines[0]["route"])

	assert.Equal(t, "request_rejected", lines[1]["msg"])
	assert.EqualValues(t, 404, lines[1]["status"])
	assert.EqualValues(t, 7, lines[1]["user_id"])
}

func TestRequestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	e := newServer(&buf)

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Empty(t, buf.String())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "ERROR", lines[0]["level"])
	assert.Equal(t, "db down", lines[0]["error"])
}
