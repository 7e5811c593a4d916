package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"inkwell/internal/model"
	"inkwell/internal/service"
)

// Envelope is the success body shared by every resource endpoint.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Count      *int        `json:"count,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes where a page sits in a listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
	TotalCount int64 `json:"total_count"`
}

// AuthResponse is the body of the auth endpoints.
type AuthResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token,omitempty"`
	User    *model.User `json:"user"`
}

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Data: data})
}

func respondList[T any](c echo.Context, items []T) error {
	count := len(items)
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: items, Count: &count})
}

func respondPage(c echo.Context, page *service.PostPage) error {
	count := len(page.Posts)
	return c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    page.Posts,
		Count:   &count,
		Pagination: &Pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			TotalPages: page.TotalPages,
			TotalCount: page.TotalCount,
		},
	})
}

// bindAndValidate decodes the request into req and runs the registered validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	return c.Validate(req)
}
