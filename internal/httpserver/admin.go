package httpserver

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/service"
	"github.com/Skotchmaster/markethub/internal/transport"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHTTP struct {
	Export      *service.ExportService
	Environment string
}

func (h *AdminHTTP) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, transport.StatusResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC().Format(time.RFC3339Nano),
		Environment: h.Environment,
	})
}

// Download sends the full data export as an attachment, JSON by default or
// a workbook with ?format=xlsx.
func (h *AdminHTTP) Download(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.download")

	format := c.QueryParam("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "xlsx" {
		l.Warn("download_error", "status", 400, "reason", "unknown format", "format", format)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid format")
	}

	snap, err := h.Export.Snapshot(ctx)
	if err != nil {
		l.Error("download_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error generating download")
	}

	disposition := fmt.Sprintf("attachment; filename=%s", snap.Filename(format))
	c.Response().Header().Set(echo.HeaderContentDisposition, disposition)

	if format == "xlsx" {
		var buf bytes.Buffer
		if err := service.WriteXLSX(&buf, snap); err != nil {
			c.Response().Header().Del(echo.HeaderContentDisposition)
			l.Error("download_error", "status", 500, "format", format, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Error generating download")
		}
		l.Info("export_downloaded", "format", format, "bytes", buf.Len())
		return c.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
	}

	l.Info("export_downloaded", "format", format)
	return c.JSON(http.StatusOK, snap)
}
