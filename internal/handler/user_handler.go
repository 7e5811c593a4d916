package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"inkwell/internal/middleware"
	"inkwell/internal/service"
)

// UserHandler serves the authenticated user's own profile.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateProfileRequest carries the profile fields to change.
type UpdateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=30"`
	Avatar   *string `json:"avatar" validate:"omitempty,max=255"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
}

// ChangePasswordRequest carries the current and the new password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AuthResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, AuthResponse{Success: true, User: user})
}

// UpdateMe godoc
// @Summary Update current user's profile
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /auth/me [put]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	actor, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.svc.UpdateProfile(c.Request().Context(), actor, service.ProfileUpdate{
		Username: req.Username,
		Avatar:   req.Avatar,
		Bio:      req.Bio,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, AuthResponse{Success: true, User: user})
}

// ChangePassword godoc
// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Passwords"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/password [put]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	actor, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.svc.ChangePassword(c.Request().Context(), actor, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, AuthResponse{Success: true, Token: token, User: actor})
}
