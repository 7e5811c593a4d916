package repository

import (
	"context"

	"gorm.io/gorm"

	"inkwell/internal/model"
)

// CategoryRepository defines category persistence operations.
type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)
	// FindConflict returns a category other than excludeID that already uses name or slug.
	FindConflict(ctx context.Context, name, slug, excludeID string) (*model.Category, error)
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id string) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// List returns every category sorted by name.
func (r *categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindByID finds a category by ID.
func (r *categoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// FindBySlug finds a category by slug.
func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindConflict(ctx context.Context, name, slug, excludeID string) (*model.Category, error) {
	var category model.Category
	q := r.db.WithContext(ctx).Where("(name = ? OR slug = ?)", name, slug)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Create creates a new category.
func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// Update updates an existing category.
func (r *categoryRepository) Update(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Model(category).
		Select("name", "slug", "description", "updated_at").
		Updates(category).Error
}

// Delete removes a category; gorm.ErrRecordNotFound when nothing matched.
func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
