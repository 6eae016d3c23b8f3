package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campushub/reservation/internal/model"
	"github.com/campushub/reservation/internal/repository"
	"github.com/campushub/reservation/internal/utils"
)

// AuthConfig is the token-related knobs the auth handler needs.
type AuthConfig struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	BcryptCost      int
}

// AuthHandler serves registration, login and token refresh.
type AuthHandler struct {
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Cfg    AuthConfig
	Log    zerolog.Logger
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Register creates an account.  The role defaults to student; only the
// known roles are accepted.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "a valid email is required"})
	}
	if len(req.Username) < 3 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username must be at least 3 characters"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}
	role := model.Role(req.Role)
	if req.Role == "" {
		role = model.RoleStudent
	}
	if !role.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}

	ctx := c.Request().Context()
	id, err := h.Users.Create(ctx, req.Email, req.Username, req.Password, req.FullName, role, h.Cfg.BcryptCost)
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	case errors.Is(err, repository.ErrUsernameExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
	case err != nil:
		h.Log.Error().Err(err).Msg("user create failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create user"})
	}

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		h.Log.Error().Err(err).Int64("user_id", id).Msg("fetch after create failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create user"})
	}
	return c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) issueTokens(c echo.Context, user model.User) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, user.ID, user.Username, string(user.Role), h.Cfg.AccessTokenTTL)
	if err != nil {
		h.Log.Error().Err(err).Msg("token signing failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue token"})
	}
	raw, hash, err := utils.NewRefreshToken()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue token"})
	}
	exp := time.Now().UTC().Add(h.Cfg.RefreshTokenTTL)
	if err := h.Tokens.StoreRefresh(c.Request().Context(), user.ID, hash, exp); err != nil {
		h.Log.Error().Err(err).Msg("refresh token store failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  access,
		"refresh_token": raw,
		"token_type":    "bearer",
	})
}

// Login authenticates by username and password.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	user, err := h.Users.GetByUsername(c.Request().Context(), req.Username)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !utils.CheckPassword(user.PasswordHash, req.Password)) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect username or password"})
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("login lookup failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if !user.IsActive {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account is deactivated"})
	}
	return h.issueTokens(c, user)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh rotates a refresh token into a fresh token pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token is required"})
	}
	ctx := c.Request().Context()
	hash := utils.HashRefreshRaw(req.RefreshToken)
	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	user, err := h.Users.GetByID(ctx, userID)
	if err != nil || !user.IsActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	// single use: the presented token is revoked before a new one is issued
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		h.Log.Error().Err(err).Msg("refresh revoke failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not refresh token"})
	}
	return h.issueTokens(c, user)
}

// Logout revokes every refresh token the caller holds.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.Tokens.RevokeAllForUser(c.Request().Context(), getUserID(c)); err != nil {
		h.Log.Error().Err(err).Msg("logout failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
