package router

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"inkwell/docs"
	"inkwell/internal/config"
	apperrors "inkwell/internal/errors"
	"inkwell/internal/handler"
	authmw "inkwell/internal/middleware"
	"inkwell/internal/model"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Post     *handler.PostHandler
	Category *handler.CategoryHandler
	Health   *handler.HealthHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, authenticate echo.MiddlewareFunc, h Handlers) {
	e.HTTPErrorHandler = apperrors.NewHTTPErrorHandler()
	e.Validator = NewValidator()

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("2M"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e.GET("/healthz", h.Health.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Auth
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.GET("/auth/me", h.User.Me, authenticate)
	api.PUT("/auth/me", h.User.UpdateMe, authenticate)
	api.PUT("/auth/password", h.User.ChangePassword, authenticate)

	// Posts
	api.GET("/posts", h.Post.ListPosts)
	api.GET("/posts/:id", h.Post.GetPost)
	api.POST("/posts", h.Post.CreatePost, authenticate)
	api.PUT("/posts/:id", h.Post.UpdatePost, authenticate)
	api.DELETE("/posts/:id", h.Post.DeletePost, authenticate)
	api.POST("/posts/:id/comments", h.Post.AddComment, authenticate)

	// Categories
	adminOnly := authmw.RequireRole(model.RoleAdmin)
	api.GET("/categories", h.Category.ListCategories)
	api.GET("/categories/:id", h.Category.GetCategory)
	api.POST("/categories", h.Category.CreateCategory, authenticate, adminOnly)
	api.PUT("/categories/:id", h.Category.UpdateCategory, authenticate, adminOnly)
	api.DELETE("/categories/:id", h.Category.DeleteCategory, authenticate, adminOnly)
}
