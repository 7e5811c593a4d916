package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUserExists is returned when the email or username is already registered.
	ErrUserExists = errors.New("User already exists with this email or username")
	// ErrUsernameTaken is returned when a profile update picks someone else's username.
	ErrUsernameTaken = errors.New("Username is already taken")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("User not found")
	// ErrMissingCredentials is returned when login is attempted without email or password.
	ErrMissingCredentials = errors.New("Please provide an email and password")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("Invalid credentials")
	// ErrIncorrectPassword is returned when a password change quotes the wrong current password.
	ErrIncorrectPassword = errors.New("Current password is incorrect")
	// ErrUnauthenticated is returned when the bearer token is missing, invalid or expired.
	ErrUnauthenticated = errors.New("Not authorized to access this route")
	// ErrForbidden is returned when the caller neither owns the resource nor is an admin.
	ErrForbidden = errors.New("Not authorized to modify this resource")
	// ErrPostNotFound is returned when a post is not found.
	ErrPostNotFound = errors.New("Post not found")
	// ErrSlugTaken is returned when a concurrent write claimed the same post slug.
	ErrSlugTaken = errors.New("A post with this slug already exists")
	// ErrCategoryNotFound is returned when a category is not found.
	ErrCategoryNotFound = errors.New("Category not found")
	// ErrCategoryExists is returned when a category name or slug is already used.
	ErrCategoryExists = errors.New("Category with this name or slug already exists")
	// ErrCategoryInUse is returned when deleting a category that still has posts.
	ErrCategoryInUse = errors.New("Category still has posts")
)

// ValidationError carries a user-facing message about malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error with a formatted message.
func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error:   e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unrecognised
// becomes a 500 whose message does not leak the underlying cause.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return NewHTTPError(http.StatusBadRequest, validationErr.Message, "VALIDATION_ERROR")
	}

	switch {
	case errors.Is(err, ErrUserExists):
		return NewHTTPError(http.StatusConflict, ErrUserExists.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrUsernameTaken):
		return NewHTTPError(http.StatusConflict, ErrUsernameTaken.Error(), "USERNAME_TAKEN")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrMissingCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrMissingCredentials.Error(), "MISSING_CREDENTIALS")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrIncorrectPassword):
		return NewHTTPError(http.StatusUnauthorized, ErrIncorrectPassword.Error(), "INCORRECT_PASSWORD")
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthenticated.Error(), "UNAUTHENTICATED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case errors.Is(err, ErrPostNotFound):
		return NewHTTPError(http.StatusNotFound, ErrPostNotFound.Error(), "POST_NOT_FOUND")
	case errors.Is(err, ErrSlugTaken):
		return NewHTTPError(http.StatusConflict, ErrSlugTaken.Error(), "SLUG_TAKEN")
	case errors.Is(err, ErrCategoryNotFound):
		return NewHTTPError(http.StatusNotFound, ErrCategoryNotFound.Error(), "CATEGORY_NOT_FOUND")
	case errors.Is(err, ErrCategoryExists):
		return NewHTTPError(http.StatusConflict, ErrCategoryExists.Error(), "CATEGORY_EXISTS")
	case errors.Is(err, ErrCategoryInUse):
		return NewHTTPError(http.StatusConflict, ErrCategoryInUse.Error(), "CATEGORY_IN_USE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
