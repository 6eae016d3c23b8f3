package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/reservation/internal/utils"
)

func authedRequest(t *testing.T, secret string, role string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if secret != "" {
		tok, err := utils.NewAccessToken(secret, 7, "alice", role, time.Minute)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestJWTAuthSetsIdentity(t *testing.T) {
	c, rec := authedRequest(t, "secret", "student")
	handler := JWTAuth("secret")(func(c echo.Context) error {
		assert.Equal(t, int64(7), c.Get(CtxUserID))
		assert.Equal(t, "alice", c.Get(CtxUsername))
		assert.Equal(t, "student", c.Get(CtxRole))
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthMissingHeader(t *testing.T) {
	c, rec := authedRequest(t, "", "")
	handler := JWTAuth("secret")(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestJWTAuthBadSignature(t *testing.T) {
	c, rec := authedRequest(t, "other-secret", "student")
	handler := JWTAuth("secret")(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole(t *testing.T) {
	c, rec := authedRequest(t, "secret", "student")
	handler := JWTAuth("secret")(RequireRole("admin")(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	}))
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = authedRequest(t, "secret", "admin")
	handler = JWTAuth("secret")(RequireRole("admin")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
