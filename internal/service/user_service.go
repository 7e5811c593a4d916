package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"inkwell/internal/auth"
	apperrors "inkwell/internal/errors"
	"inkwell/internal/model"
	"inkwell/internal/repository"
)

// ProfileUpdate lists the profile fields a user may change. Nil means unchanged.
type ProfileUpdate struct {
	Username *string
	Avatar   *string
	Bio      *string
}

// UserService exposes user profile operations.
type UserService interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, actor *model.User, update ProfileUpdate) (*model.User, error)
	ChangePassword(ctx context.Context, actor *model.User, currentPassword, newPassword string) (string, error)
}

type userService struct {
	repo       repository.UserRepository
	hasher     auth.PasswordHasher
	jwtService *auth.JWTService
}

// NewUserService builds a UserService.
func NewUserService(repo repository.UserRepository, hasher auth.PasswordHasher, jwtService *auth.JWTService) UserService {
	return &userService{repo: repo, hasher: hasher, jwtService: jwtService}
}

func (s *userService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// UpdateProfile never touches the password, so no re-hash happens here.
func (s *userService) UpdateProfile(ctx context.Context, actor *model.User, update ProfileUpdate) (*model.User, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	user, err := s.GetUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if update.Username != nil {
		username, err := normalizeUsername(*update.Username)
		if err != nil {
			return nil, err
		}
		if username != user.Username {
			other, err := s.repo.FindByUsername(ctx, username)
			if err == nil && other.ID != user.ID {
				return nil, apperrors.ErrUsernameTaken
			}
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("check username: %w", err)
			}
			user.Username = username
		}
	}
	if update.Avatar != nil {
		user.Avatar = strings.TrimSpace(*update.Avatar)
		if user.Avatar == "" {
			user.Avatar = model.DefaultAvatar
		}
	}
	if update.Bio != nil {
		user.Bio = strings.TrimSpace(*update.Bio)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrUsernameTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// ChangePassword re-hashes exactly once and returns a fresh token.
func (s *userService) ChangePassword(ctx context.Context, actor *model.User, currentPassword, newPassword string) (string, error) {
	if actor == nil {
		return "", apperrors.ErrUnauthenticated
	}
	user, err := s.GetUser(ctx, actor.ID)
	if err != nil {
		return "", err
	}

	if !s.hasher.Verify(user.PasswordHash, currentPassword) {
		return "", apperrors.ErrIncorrectPassword
	}

	hashedPassword, err := s.hasher.Hash(newPassword)
	if err != nil {
		return "", err
	}
	user.PasswordHash = hashedPassword

	if err := s.repo.Update(ctx, user); err != nil {
		return "", fmt.Errorf("update password: %w", err)
	}

	token, err := s.jwtService.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}
