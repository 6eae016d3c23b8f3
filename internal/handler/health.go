package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports liveness for a named service.
func Health(service string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "healthy", "service": service})
	}
}

// Ready reports readiness, pinging the database when one is wired.
func Ready(service string, db *sql.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db != nil {
			if err := db.PingContext(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, echo.Map{
					"status": "not ready", "service": service, "error": "database unreachable",
				})
			}
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready", "service": service})
	}
}

// Root identifies the service at its base path.
func Root(service string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"service": service, "status": "running"})
	}
}
