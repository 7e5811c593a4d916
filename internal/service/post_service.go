package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"

	"inkwell/internal/auth"
	apperrors "inkwell/internal/errors"
	"inkwell/internal/model"
	"inkwell/internal/repository"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PostQuery holds the public listing parameters as received from the client.
type PostQuery struct {
	Page     int
	Limit    int
	Category string // category slug
	Search   string
	Tag      string
	Author   string // author id
}

// PostPage is one page of a post listing.
type PostPage struct {
	Posts      []model.Post
	Page       int
	Limit      int
	TotalPages int
	TotalCount int64
}

// PostInput is the payload for creating a post. Category accepts an id or a slug.
type PostInput struct {
	Title         string
	Content       string
	Excerpt       string
	FeaturedImage string
	Category      string
	Tags          []string
	IsPublished   *bool
}

// PostUpdate lists the post fields to change. Nil means unchanged.
type PostUpdate struct {
	Title         *string
	Content       *string
	Excerpt       *string
	FeaturedImage *string
	Category      *string
	Tags          *[]string
	IsPublished   *bool
}

// PostService implements the post and comment operations.
type PostService interface {
	List(ctx context.Context, query PostQuery) (*PostPage, error)
	Get(ctx context.Context, idOrSlug string) (*model.Post, error)
	Create(ctx context.Context, actor *model.User, input PostInput) (*model.Post, error)
	Update(ctx context.Context, actor *model.User, id string, update PostUpdate) (*model.Post, error)
	Delete(ctx context.Context, actor *model.User, id string) error
	AddComment(ctx context.Context, actor *model.User, postID, content string) (*model.Post, error)
}

type postService struct {
	repo         repository.PostRepository
	categoryRepo repository.CategoryRepository
}

// NewPostService builds a PostService.
func NewPostService(repo repository.PostRepository, categoryRepo repository.CategoryRepository) PostService {
	return &postService{repo: repo, categoryRepo: categoryRepo}
}

// normalizePaging clamps page and limit to their allowed ranges.
func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	// Keeps (page-1)*limit inside the range every database accepts as OFFSET.
	if maxPage := math.MaxInt32 / limit; page > maxPage {
		page = maxPage
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// List returns published posts, newest first.
func (s *postService) List(ctx context.Context, query PostQuery) (*PostPage, error) {
	page, limit := normalizePaging(query.Page, query.Limit)
	result := &PostPage{Posts: []model.Post{}, Page: page, Limit: limit}

	filter := repository.PostFilter{
		PublishedOnly: true,
		AuthorID:      strings.TrimSpace(query.Author),
		Tag:           strings.ToLower(strings.TrimSpace(query.Tag)),
		Search:        strings.TrimSpace(query.Search),
		Offset:        (page - 1) * limit,
		Limit:         limit,
	}

	if categorySlug := strings.TrimSpace(query.Category); categorySlug != "" {
		category, err := s.categoryRepo.FindBySlug(ctx, strings.ToLower(categorySlug))
		switch {
		case err == nil:
			filter.CategoryID = category.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Unknown category: the filter is dropped.
		default:
			return nil, fmt.Errorf("find category: %w", err)
		}
	}

	posts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	for i := range posts {
		if posts[i].Comments == nil {
			posts[i].Comments = []model.Comment{}
		}
	}

	result.Posts = posts
	result.TotalCount = total
	result.TotalPages = totalPages(total, limit)
	return result, nil
}

func (s *postService) findDetail(ctx context.Context, idOrSlug string) (*model.Post, error) {
	var (
		post *model.Post
		err  error
	)
	if model.IsID(idOrSlug) {
		post, err = s.repo.FindDetailByID(ctx, idOrSlug)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			post, err = s.repo.FindDetailBySlug(ctx, idOrSlug)
		}
	} else {
		post, err = s.repo.FindDetailBySlug(ctx, idOrSlug)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	if post.Comments == nil {
		post.Comments = []model.Comment{}
	}
	return post, nil
}

// Get loads a post by id or slug and counts the view.
func (s *postService) Get(ctx context.Context, idOrSlug string) (*model.Post, error) {
	post, err := s.findDetail(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}

	if err := s.repo.IncrementViewCount(ctx, post.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("increment view count: %w", err)
	}
	post.ViewCount++
	return post, nil
}

func (s *postService) Create(ctx context.Context, actor *model.User, input PostInput) (*model.Post, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("Please add a title")
	}
	content := sanitizeContent(input.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("Please add some content")
	}
	category, err := s.resolveCategory(ctx, input.Category)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		ID:            model.NewID(),
		Title:         title,
		Content:       content,
		Excerpt:       strings.TrimSpace(input.Excerpt),
		FeaturedImage: strings.TrimSpace(input.FeaturedImage),
		AuthorID:      actor.ID,
		CategoryID:    category.ID,
		Tags:          normalizeTags(input.Tags),
		IsPublished:   true,
	}
	if input.IsPublished != nil {
		post.IsPublished = *input.IsPublished
	}
	if post.Excerpt == "" {
		post.Excerpt = deriveExcerpt(content)
	}
	if post.Slug, err = s.uniqueSlug(ctx, title, post.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, post); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrSlugTaken
		}
		return nil, fmt.Errorf("create post: %w", err)
	}
	return s.findDetail(ctx, post.ID)
}

// Update applies a partial update. Only the author or an admin may edit.
func (s *postService) Update(ctx context.Context, actor *model.User, id string, update PostUpdate) (*model.Post, error) {
	post, err := s.findForWrite(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("Please add a title")
		}
		if title != post.Title {
			post.Title = title
			if post.Slug, err = s.uniqueSlug(ctx, title, post.ID); err != nil {
				return nil, err
			}
		}
	}
	if update.Content != nil {
		content := sanitizeContent(*update.Content)
		if content == "" {
			return nil, apperrors.NewValidationError("Please add some content")
		}
		post.Content = content
		if update.Excerpt == nil && post.Excerpt == "" {
			post.Excerpt = deriveExcerpt(content)
		}
	}
	if update.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*update.Excerpt)
		if post.Excerpt == "" {
			post.Excerpt = deriveExcerpt(post.Content)
		}
	}
	if update.FeaturedImage != nil {
		post.FeaturedImage = strings.TrimSpace(*update.FeaturedImage)
		if post.FeaturedImage == "" {
			post.FeaturedImage = model.DefaultFeaturedImage
		}
	}
	if update.Category != nil {
		category, err := s.resolveCategory(ctx, *update.Category)
		if err != nil {
			return nil, err
		}
		post.CategoryID = category.ID
	}
	if update.Tags != nil {
		post.Tags = normalizeTags(*update.Tags)
	}
	if update.IsPublished != nil {
		post.IsPublished = *update.IsPublished
	}

	if err := s.repo.Update(ctx, post); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrSlugTaken
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	return s.findDetail(ctx, post.ID)
}

func (s *postService) Delete(ctx context.Context, actor *model.User, id string) error {
	post, err := s.findForWrite(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, post.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPostNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// AddComment appends a comment by actor and returns the post with all comments.
func (s *postService) AddComment(ctx context.Context, actor *model.User, postID, content string) (*model.Post, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("Please add some text to your comment")
	}

	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}

	comment := &model.Comment{
		ID:      model.NewID(),
		PostID:  post.ID,
		UserID:  actor.ID,
		Content: content,
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return s.findDetail(ctx, post.ID)
}

// findForWrite loads a post by id and checks that actor may modify it.
func (s *postService) findForWrite(ctx context.Context, actor *model.User, id string) (*model.Post, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	if err := auth.RequireOwnerOrAdmin(actor, post.AuthorID); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) resolveCategory(ctx context.Context, idOrSlug string) (*model.Category, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return nil, apperrors.NewValidationError("Please select a category")
	}
	var (
		category *model.Category
		err      error
	)
	if model.IsID(idOrSlug) {
		category, err = s.categoryRepo.FindByID(ctx, idOrSlug)
	} else {
		category, err = s.categoryRepo.FindBySlug(ctx, strings.ToLower(idOrSlug))
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewValidationError("Category %s does not exist", idOrSlug)
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return category, nil
}

// uniqueSlug derives a slug from title. A slug already held by another post
// gets the tail of the post id appended.
func (s *postService) uniqueSlug(ctx context.Context, title, postID string) (string, error) {
	base := makeSlug(title, maxPostSlugLength)
	if base == "" {
		return postID, nil
	}
	taken, err := s.repo.SlugExists(ctx, base, postID)
	if err != nil {
		return "", fmt.Errorf("check slug: %w", err)
	}
	if !taken {
		return base, nil
	}
	return base + "-" + postID[len(postID)-6:], nil
}
