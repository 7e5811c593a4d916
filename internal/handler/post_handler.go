package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"inkwell/internal/middleware"
	"inkwell/internal/service"
)

// PostHandler handles post and comment endpoints.
type PostHandler struct {
	postService service.PostService
}

// NewPostHandler creates a new post handler.
func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// CreatePostRequest represents a new post.
type CreatePostRequest struct {
	Title         string   `json:"title" validate:"required,max=200"`
	Content       string   `json:"content" validate:"required"`
	Excerpt       string   `json:"excerpt" validate:"max=300"`
	FeaturedImage string   `json:"featured_image" validate:"max=255"`
	Category      string   `json:"category" validate:"required"`
	Tags          []string `json:"tags" validate:"max=20,dive,max=30"`
	IsPublished   *bool    `json:"is_published"`
}

// UpdatePostRequest carries the post fields to change.
type UpdatePostRequest struct {
	Title         *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Content       *string   `json:"content" validate:"omitempty,min=1"`
	Excerpt       *string   `json:"excerpt" validate:"omitempty,max=300"`
	FeaturedImage *string   `json:"featured_image" validate:"omitempty,max=255"`
	Category      *string   `json:"category" validate:"omitempty,min=1"`
	Tags          *[]string `json:"tags" validate:"omitempty,max=20,dive,max=30"`
	IsPublished   *bool     `json:"is_published"`
}

// CommentRequest represents a new comment.
type CommentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

// ListPosts godoc
// @Summary List published posts
// @Tags posts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 100)" default(10)
// @Param category query string false "Category slug"
// @Param search query string false "Substring of title or content"
// @Param tag query string false "Tag"
// @Param author query string false "Author id"
// @Success 200 {object} Envelope{data=[]model.Post}
// @Failure 400 {object} errors.ErrorResponse
// @Router /posts [get]
func (h *PostHandler) ListPosts(c echo.Context) error {
	var q service.PostQuery
	err := echo.QueryParamsBinder(c).
		Int("page", &q.Page).
		Int("limit", &q.Limit).
		String("category", &q.Category).
		String("search", &q.Search).
		String("tag", &q.Tag).
		String("author", &q.Author).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters").SetInternal(err)
	}

	page, err := h.postService.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return respondPage(c, page)
}

// GetPost godoc
// @Summary Get a post by id or slug
// @Description Every successful fetch increments the view count.
// @Tags posts
// @Produce json
// @Param id path string true "Post id or slug"
// @Success 200 {object} Envelope{data=model.Post}
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [get]
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, post)
}

// CreatePost godoc
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePostRequest true "Post"
// @Success 201 {object} Envelope{data=model.Post}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /posts [post]
func (h *PostHandler) CreatePost(c echo.Context) error {
	actor, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.postService.Create(c.Request().Context(), actor, service.PostInput{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		Category:      req.Category,
		Tags:          req.Tags,
		IsPublished:   req.IsPublished,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, post)
}

// UpdatePost godoc
// @Summary Update a post
// @Description Only the author or an admin may update a post.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post id"
// @Param request body UpdatePostRequest true "Fields to change"
// @Success 200 {object} Envelope{data=model.Post}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [put]
func (h *PostHandler) UpdatePost(c echo.Context) error {
	actor, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.postService.Update(c.Request().Context(), actor, c.Param("id"), service.PostUpdate{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		Category:      req.Category,
		Tags:          req.Tags,
		IsPublished:   req.IsPublished,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, post)
}

// DeletePost godoc
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post id"
// @Success 200 {object} Envelope
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandler) DeletePost(c echo.Context) error {
	actor, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	if err := h.postService.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, struct{}{})
}

// AddComment godoc
// @Summary Comment on a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post id"
// @Param request body CommentRequest true "Comment"
// @Success 201 {object} Envelope{data=model.Post}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id}/comments [post]
func (h *PostHandler) AddComment(c echo.Context) error {
	actor, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req CommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.postService.AddComment(c.Request().Context(), actor, c.Param("id"), req.Content)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, post)
}
