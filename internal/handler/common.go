package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/campushub/reservation/internal/middleware"
	"github.com/campushub/reservation/internal/model"
)

func getUserID(c echo.Context) int64 {
	id, _ := c.Get(middleware.CtxUserID).(int64)
	return id
}

func getUsername(c echo.Context) string {
	name, _ := c.Get(middleware.CtxUsername).(string)
	return name
}

func getRole(c echo.Context) string {
	role, _ := c.Get(middleware.CtxRole).(string)
	return role
}

func getToken(c echo.Context) string {
	tok, _ := c.Get(middleware.CtxToken).(string)
	return tok
}

func isAdmin(c echo.Context) bool {
	return getRole(c) == string(model.RoleAdmin)
}

func queryInt(c echo.Context, key string, def int) int {
	v := c.QueryParam(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// pagination reads skip/limit query params with the platform-wide caps.
func pagination(c echo.Context) (skip, limit int) {
	skip = queryInt(c, "skip", 0)
	limit = queryInt(c, "limit", 100)
	if limit > 100 {
		limit = 100
	}
	return skip, limit
}
