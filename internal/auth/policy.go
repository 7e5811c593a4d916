package auth

import (
	apperrors "inkwell/internal/errors"
	"inkwell/internal/model"
)

// RequireOwnerOrAdmin allows the action when actor owns the resource or is an admin.
func RequireOwnerOrAdmin(actor *model.User, ownerID string) error {
	if actor == nil {
		return apperrors.ErrUnauthenticated
	}
	if actor.IsAdmin() || (ownerID != "" && actor.ID == ownerID) {
		return nil
	}
	return apperrors.ErrForbidden
}

// RequireAdmin allows the action only for admins.
func RequireAdmin(actor *model.User) error {
	if actor == nil {
		return apperrors.ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}
	return nil
}
