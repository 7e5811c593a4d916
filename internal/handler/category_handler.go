package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"inkwell/internal/middleware"
	"inkwell/internal/service"
)

// CategoryHandler handles category endpoints.
type CategoryHandler struct {
	categoryService service.CategoryService
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents a new category.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	Slug        string `json:"slug" validate:"omitempty,slug,max=64"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateCategoryRequest carries the category fields to change.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=50"`
	Slug        *string `json:"slug" validate:"omitempty,slug,max=64"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// ListCategories godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} Envelope{data=[]model.Category}
// @Router /categories [get]
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	categories, err := h.categoryService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return respondList(c, categories)
}

// GetCategory godoc
// @Summary Get a category by id or slug
// @Tags categories
// @Produce json
// @Param id path string true "Category id or slug"
// @Success 200 {object} Envelope{data=model.Category}
// @Failure 404 {object} errors.ErrorResponse
// @Router /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	category, err := h.categoryService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, category)
}

// CreateCategory godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "Category"
// @Success 201 {object} Envelope{data=model.Category}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /categories [post]
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	actor, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req CreateCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	category, err := h.categoryService.Create(c.Request().Context(), actor, service.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, category)
}

// UpdateCategory godoc
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category id"
// @Param request body UpdateCategoryRequest true "Fields to change"
// @Success 200 {object} Envelope{data=model.Category}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	actor, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req UpdateCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	category, err := h.categoryService.Update(c.Request().Context(), actor, c.Param("id"), service.CategoryUpdate{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, category)
}

// DeleteCategory godoc
// @Summary Delete a category
// @Description Categories that still have posts cannot be deleted.
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category id"
// @Success 200 {object} Envelope
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	actor, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	if err := h.categoryService.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, struct{}{})
}
