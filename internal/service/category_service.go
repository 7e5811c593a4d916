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

// CategoryInput is the payload for creating a category. Slug is derived from
// Name when empty.
type CategoryInput struct {
	Name        string
	Slug        string
	Description string
}

// CategoryUpdate lists the category fields to change. Nil means unchanged.
type CategoryUpdate struct {
	Name        *string
	Slug        *string
	Description *string
}

// CategoryService manages the category catalogue.
type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, idOrSlug string) (*model.Category, error)
	Create(ctx context.Context, actor *model.User, input CategoryInput) (*model.Category, error)
	Update(ctx context.Context, actor *model.User, id string, update CategoryUpdate) (*model.Category, error)
	Delete(ctx context.Context, actor *model.User, id string) error
}

type categoryService struct {
	repo     repository.CategoryRepository
	postRepo repository.PostRepository
}

// NewCategoryService builds a CategoryService.
func NewCategoryService(repo repository.CategoryRepository, postRepo repository.PostRepository) CategoryService {
	return &categoryService{repo: repo, postRepo: postRepo}
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Get resolves a category by id, falling back to slug.
func (s *categoryService) Get(ctx context.Context, idOrSlug string) (*model.Category, error) {
	var (
		category *model.Category
		err      error
	)
	if model.IsID(idOrSlug) {
		category, err = s.repo.FindByID(ctx, idOrSlug)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			category, err = s.repo.FindBySlug(ctx, idOrSlug)
		}
	} else {
		category, err = s.repo.FindBySlug(ctx, idOrSlug)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return category, nil
}

func (s *categoryService) Create(ctx context.Context, actor *model.User, input CategoryInput) (*model.Category, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("Please add a category name")
	}
	categorySlug := makeSlug(input.Slug, maxCategorySlugLength)
	if categorySlug == "" {
		categorySlug = makeSlug(name, maxCategorySlugLength)
	}
	if categorySlug == "" {
		return nil, apperrors.NewValidationError("Category name must contain letters or digits")
	}

	if err := s.checkConflict(ctx, name, categorySlug, ""); err != nil {
		return nil, err
	}

	category := &model.Category{
		ID:          model.NewID(),
		Name:        name,
		Slug:        categorySlug,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.repo.Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrCategoryExists
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// Update renames or re-describes a category. The slug stays stable across
// renames unless a new one is supplied explicitly.
func (s *categoryService) Update(ctx context.Context, actor *model.User, id string, update CategoryUpdate) (*model.Category, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}

	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("Please add a category name")
		}
		category.Name = name
	}
	if update.Slug != nil {
		categorySlug := makeSlug(*update.Slug, maxCategorySlugLength)
		if categorySlug == "" {
			return nil, apperrors.NewValidationError("Slug must contain letters or digits")
		}
		category.Slug = categorySlug
	}
	if update.Description != nil {
		category.Description = strings.TrimSpace(*update.Description)
	}

	if err := s.checkConflict(ctx, category.Name, category.Slug, category.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrCategoryExists
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

// Delete refuses to remove a category that posts still reference.
func (s *categoryService) Delete(ctx context.Context, actor *model.User, id string) error {
	if err := auth.RequireAdmin(actor); err != nil {
		return err
	}

	category, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := s.postRepo.CountByCategory(ctx, category.ID)
	if err != nil {
		return fmt.Errorf("count posts: %w", err)
	}
	if inUse > 0 {
		return apperrors.ErrCategoryInUse
	}

	if err := s.repo.Delete(ctx, category.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *categoryService) checkConflict(ctx context.Context, name, categorySlug, excludeID string) error {
	_, err := s.repo.FindConflict(ctx, name, categorySlug, excludeID)
	if err == nil {
		return apperrors.ErrCategoryExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check category conflict: %w", err)
	}
	return nil
}
