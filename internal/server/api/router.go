package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SetupRouter creates and configures the echo router with all routes and middleware.
func SetupRouter(handler *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	// Clients talk to the server directly on the LAN; forwarded headers are
	// not trusted for the address shown to the operator.
	e.IPExtractor = echo.ExtractIPDirect()

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(RequestLogger())

	browse := []string{http.MethodGet, http.MethodHead}

	e.GET("/healthz", handler.HandleHealth)
	e.GET("/audit", handler.HandleAudit)

	e.Match(browse, "/download", handler.HandleDownload)
	e.POST("/delete", handler.HandleDelete)
	// Forms posted from any listing page upload into the root.
	e.POST("/", handler.HandleUpload)
	e.POST("/*", handler.HandleUpload)

	// Everything else is the shared directory.
	e.Match(browse, "/", handler.HandleBrowse)
	e.Match(browse, "/*", handler.HandleBrowse)

	return e
}
