package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"inkwell/internal/auth"
	apperrors "inkwell/internal/errors"
	"inkwell/internal/model"
)

const (
	claimsKey = "claims"
	userKey   = "user"
)

// UserLoader resolves the user a token was issued to.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Authenticate verifies the bearer token and loads its user into the context.
// Any failure yields 401 before the handler runs.
func Authenticate(tokens *auth.JWTService, users UserLoader) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return tokens.ValidateToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.ErrUnauthenticated
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(func(c echo.Context) error {
			claims, ok := c.Get(claimsKey).(*auth.Claims)
			if !ok {
				return apperrors.ErrUnauthenticated
			}

			user, err := users.FindByID(c.Request().Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrUnauthenticated
				}
				return fmt.Errorf("load user: %w", err)
			}

			c.Set(userKey, user)
			return next(c)
		})
	}
}

// CurrentUser returns the user stored by Authenticate.
func CurrentUser(c echo.Context) (*model.User, error) {
	user, ok := c.Get(userKey).(*model.User)
	if !ok || user == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return user, nil
}

// RequireRole lets the request through only when the current user holds one of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := CurrentUser(c)
			if err != nil {
				return err
			}
			if !slices.Contains(roles, user.Role) {
				return apperrors.NewHTTPError(
					http.StatusForbidden,
					fmt.Sprintf("User role %s is not authorized to access this route", user.Role),
					"FORBIDDEN",
				)
			}
			return next(c)
		}
	}
}
