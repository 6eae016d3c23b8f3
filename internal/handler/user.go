package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campushub/reservation/internal/repository"
	"github.com/campushub/reservation/internal/utils"
)

// UserHandler serves profile and admin account management.
type UserHandler struct {
	Users      *repository.UserRepo
	Tokens     *repository.TokenRepo
	BcryptCost int
	Log        zerolog.Logger
}

func paramUserID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

// Me returns the caller's own profile.
func (h *UserHandler) Me(c echo.Context) error {
	user, err := h.Users.GetByID(c.Request().Context(), getUserID(c))
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("profile lookup failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load profile"})
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe updates the caller's email or full name.  Role changes are
// admin-only and rejected here.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var upd repository.UserUpdate
	if err := c.Bind(&upd); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if upd.Role != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot change own role"})
	}
	user, err := h.Users.Update(c.Request().Context(), getUserID(c), upd)
	if errors.Is(err, repository.ErrEmailExists) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("profile update failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update profile"})
	}
	return c.JSON(http.StatusOK, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword verifies the current password, replaces it and revokes
// outstanding refresh tokens.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(req.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}
	ctx := c.Request().Context()
	user, err := h.Users.GetByID(ctx, getUserID(c))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if !utils.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "current password is incorrect"})
	}
	if err := h.Users.SetPassword(ctx, user.ID, req.NewPassword, h.BcryptCost); err != nil {
		h.Log.Error().Err(err).Msg("password change failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not change password"})
	}
	if err := h.Tokens.RevokeAllForUser(ctx, user.ID); err != nil {
		h.Log.Error().Err(err).Int64("user_id", user.ID).Msg("token revocation after password change failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}

// List returns all accounts.  Admin only.
func (h *UserHandler) List(c echo.Context) error {
	skip, limit := pagination(c)
	ctx := c.Request().Context()
	users, err := h.Users.List(ctx, skip, limit)
	if err != nil {
		h.Log.Error().Err(err).Msg("user list failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list users"})
	}
	total, err := h.Users.Count(ctx)
	if err != nil {
		h.Log.Error().Err(err).Msg("user count failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list users"})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users, "total": total})
}

// Get returns one account by id.  Admin only.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := paramUserID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	user, err := h.Users.GetByID(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load user"})
	}
	return c.JSON(http.StatusOK, user)
}

// Update applies an admin edit, including role changes.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := paramUserID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	var upd repository.UserUpdate
	if err := c.Bind(&upd); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if upd.Role != nil && !upd.Role.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}
	if _, err := h.Users.GetByID(c.Request().Context(), id); errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	user, err := h.Users.Update(c.Request().Context(), id, upd)
	if errors.Is(err, repository.ErrEmailExists) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}
	if err != nil {
		h.Log.Error().Err(err).Int64("user_id", id).Msg("admin user update failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update user"})
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) setActive(c echo.Context, active bool) error {
	id, err := paramUserID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	ctx := c.Request().Context()
	if err := h.Users.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update user"})
	}
	if !active {
		if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
			h.Log.Error().Err(err).Int64("user_id", id).Msg("token revocation on deactivate failed")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user updated"})
}

// Activate re-enables an account.  Admin only.
func (h *UserHandler) Activate(c echo.Context) error { return h.setActive(c, true) }

// Deactivate disables an account and revokes its tokens.  Admin only.
func (h *UserHandler) Deactivate(c echo.Context) error { return h.setActive(c, false) }

// Delete removes an account permanently.  Admin only.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := paramUserID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if id == getUserID(c) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot delete own account"})
	}
	if err := h.Users.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete user"})
	}
	return c.NoContent(http.StatusNoContent)
}
