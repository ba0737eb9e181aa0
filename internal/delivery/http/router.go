package http

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	custommiddleware "pricedesk/internal/middleware"
)

// SetupRoutes configures middleware, static assets and the web pages
func SetupRoutes(e *echo.Echo, handler *WebHandler) {
	e.Use(middleware.RequestID())
	e.Use(custommiddleware.RequestLogger(func(c echo.Context) bool {
		// Static files are noise
		return strings.HasPrefix(c.Request().URL.Path, "/assets/")
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())

	e.StaticFS("/assets", Assets())

	RegisterWebRoutes(e, handler)
}
