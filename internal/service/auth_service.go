package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"inkwell/internal/auth"
	apperrors "inkwell/internal/errors"
	"inkwell/internal/model"
	"inkwell/internal/repository"
)

// AuthResult is what a successful register or login hands back to the client.
type AuthResult struct {
	Token string
	User  *model.User
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

type authService struct {
	userRepo   repository.UserRepository
	hasher     auth.PasswordHasher
	jwtService *auth.JWTService
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, hasher auth.PasswordHasher, jwtService *auth.JWTService) AuthService {
	return &authService{
		userRepo:   userRepo,
		hasher:     hasher,
		jwtService: jwtService,
	}
}

const (
	minUsernameLength = 3
	maxUsernameLength = 30
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeUsername trims the username and applies the length rule to what
// will actually be stored.
func normalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return "", apperrors.NewValidationError("username must be between %d and %d characters", minUsernameLength, maxUsernameLength)
	}
	return username, nil
}

// Register creates a new user with hashed password and signs them in.
func (s *authService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}
	email = normalizeEmail(email)

	// Check if user already exists
	existing, err := s.userRepo.FindByEmailOrUsername(ctx, email, username)
	if err == nil && existing != nil {
		return nil, apperrors.ErrUserExists
	}
	// If error is not "record not found", return it (could be a database error)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           model.NewID(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         model.RoleUser,
		Avatar:       model.DefaultAvatar,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race against a concurrent registration.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtService.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}

// Login authenticates a user by email and password.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.ErrMissingCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}
