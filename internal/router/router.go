package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campushub/reservation/internal/handler"
	"github.com/campushub/reservation/internal/middleware"
	"github.com/campushub/reservation/internal/model"
)

// newEcho builds the Echo instance every service shares: recovery,
// request metrics and the operational endpoints.
func newEcho(service string, db *sql.DB) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.Metrics())

	e.GET("/", handler.Root(service))
	e.GET("/health", handler.Health(service))
	e.GET("/ready", handler.Ready(service, db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return e
}

// UserService wires the auth and account routes.
func UserService(db *sql.DB, jwtSecret string, auth *handler.AuthHandler, users *handler.UserHandler) *echo.Echo {
	e := newEcho("user-service", db)
	authed := middleware.JWTAuth(jwtSecret)
	admin := middleware.RequireRole(string(model.RoleAdmin))

	v1 := e.Group("/api/v1")
	v1.POST("/auth/register", auth.Register)
	v1.POST("/auth/login", auth.Login)
	v1.POST("/auth/refresh", auth.Refresh)
	v1.POST("/auth/logout", auth.Logout, authed)

	me := v1.Group("/users/me", authed)
	me.GET("", users.Me)
	me.PUT("", users.UpdateMe)
	me.POST("/change-password", users.ChangePassword)

	adm := v1.Group("/users", authed, admin)
	adm.GET("", users.List)
	adm.GET("/:id", users.Get)
	adm.PUT("/:id", users.Update)
	adm.DELETE("/:id", users.Delete)
	adm.POST("/:id/activate", users.Activate)
	adm.POST("/:id/deactivate", users.Deactivate)
	return e
}

// ResourceService wires the catalog routes.  Reads require any
// authenticated caller, writes require admin.
func ResourceService(db *sql.DB, jwtSecret string, resources *handler.ResourceHandler) *echo.Echo {
	e := newEcho("resource-service", db)
	authed := middleware.JWTAuth(jwtSecret)
	admin := middleware.RequireRole(string(model.RoleAdmin))

	v1 := e.Group("/api/v1/resources", authed)
	v1.GET("", resources.List)
	v1.GET("/search", resources.Search)
	v1.GET("/available", resources.ListAvailable)
	v1.GET("/:id", resources.Get)
	v1.POST("", resources.Create, admin)
	v1.PUT("/:id", resources.Update, admin)
	v1.DELETE("/:id", resources.Delete, admin)
	return e
}

// ReservationService wires the booking routes.
func ReservationService(db *sql.DB, jwtSecret string, reservations *handler.ReservationHandler) *echo.Echo {
	e := newEcho("reservation-service", db)
	authed := middleware.JWTAuth(jwtSecret)
	admin := middleware.RequireRole(string(model.RoleAdmin))

	v1 := e.Group("/api/v1", authed)
	v1.POST("/reservations", reservations.Create)
	v1.GET("/reservations/my", reservations.ListMine)
	v1.GET("/reservations", reservations.ListAll, admin)
	v1.GET("/reservations/:id", reservations.Get)
	v1.PUT("/reservations/:id", reservations.Update)
	v1.POST("/reservations/:id/cancel", reservations.Cancel)
	v1.POST("/reservations/:id/complete", reservations.Complete, admin)
	v1.POST("/reservations/:id/no-show", reservations.NoShow, admin)

	v1.GET("/reservations/resource/:resource_id", reservations.ListByResource)
	v1.GET("/availability/:resource_id", reservations.Availability)
	return e
}

// Worker exposes only the operational endpoints for the notification
// worker.
func Worker() *echo.Echo {
	return newEcho("notification-worker", nil)
}
