package repository

import (
	"context"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"inkwell/internal/model"
)

// PostFilter narrows a post listing. Zero values mean "no constraint".
type PostFilter struct {
	PublishedOnly bool
	CategoryID    string
	AuthorID      string
	Tag           string
	// Search is matched case-insensitively as a substring of title or content.
	Search string
	Offset int
	Limit  int
}

// PostRepository defines post and comment persistence operations.
type PostRepository interface {
	List(ctx context.Context, filter PostFilter) ([]model.Post, int64, error)
	FindByID(ctx context.Context, id string) (*model.Post, error)
	FindDetailByID(ctx context.Context, id string) (*model.Post, error)
	FindDetailBySlug(ctx context.Context, slug string) (*model.Post, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
	Create(ctx context.Context, post *model.Post) error
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id string) error
	IncrementViewCount(ctx context.Context, id string) error
	AddComment(ctx context.Context, comment *model.Comment) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern builds a lower-cased substring pattern using '!' as escape character.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

func publicUserColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "avatar")
}

func categorySummaryColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "slug")
}

func commentsInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

func (r *postRepository) filtered(ctx context.Context, f PostFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Post{})
	if f.PublishedOnly {
		q = q.Where("is_published = ?", true)
	}
	if f.CategoryID != "" {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.AuthorID != "" {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	if f.Tag != "" {
		q = q.Where(datatypes.JSONArrayQuery("tags").Contains(f.Tag))
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		q = q.Where("(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(content) LIKE ? ESCAPE '!')", pattern, pattern)
	}
	return q
}

// List returns one page of posts, newest first, with author and category
// resolved, together with the number of posts matching the filter.
func (r *postRepository) List(ctx context.Context, f PostFilter) ([]model.Post, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	posts := []model.Post{}
	if total == 0 {
		return posts, 0, nil
	}

	q := r.filtered(ctx, f).
		Preload("Author", publicUserColumns).
		Preload("Category", categorySummaryColumns).
		Order("created_at DESC, id DESC").
		Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// FindByID loads a post without relations.
func (r *postRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) detail(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Author", publicUserColumns).
		Preload("Category", categorySummaryColumns).
		Preload("Comments", commentsInOrder).
		Preload("Comments.User", publicUserColumns)
}

// FindDetailByID loads a post with author, category and comment authors resolved.
func (r *postRepository) FindDetailByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	if err := r.detail(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// FindDetailBySlug is FindDetailByID keyed by slug.
func (r *postRepository) FindDetailBySlug(ctx context.Context, slug string) (*model.Post, error) {
	var post model.Post
	if err := r.detail(ctx).Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Post{}).Where("slug = ?", slug)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts the post only; relations are never upserted from here.
func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Omit("Author", "Category", "Comments").Create(post).Error
}

// Update writes the mutable columns. author_id, view_count and created_at
// are never part of the update, so concurrent view increments survive.
func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Model(post).
		Select("title", "slug", "content", "excerpt", "featured_image", "category_id", "tags", "is_published", "updated_at").
		Updates(post).Error
}

// Delete removes a post together with its comments.
func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// IncrementViewCount adds one to the view counter in a single UPDATE.
func (r *postRepository) IncrementViewCount(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddComment appends a comment to its post.
func (r *postRepository) AddComment(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Omit("User").Create(comment).Error
}
