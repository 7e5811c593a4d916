package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"inkwell/internal/auth"
	"inkwell/internal/config"
	"inkwell/internal/db"
	"inkwell/internal/handler"
	"inkwell/internal/middleware"
	"inkwell/internal/repository"
	"inkwell/internal/router"
	"inkwell/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title Inkwell Blog API
// @version 1.0
// @description Blog API with posts, comments, categories and JWT authentication.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if cfg.ResetDB {
		log.Println("RESET_DB=true detected, dropping all tables...")
		db.Reset(gormDB)
		log.Println("Tables dropped")
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpire)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	// Initialize services
	authService := service.NewAuthService(userRepo, hasher, jwtService)
	userService := service.NewUserService(userRepo, hasher, jwtService)
	postService := service.NewPostService(postRepo, categoryRepo)
	categoryService := service.NewCategoryService(categoryRepo, postRepo)

	e := echo.New()
	e.HideBanner = true

	// Register routes
	router.Register(e, cfg, middleware.Authenticate(jwtService, userRepo), router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		User:     handler.NewUserHandler(userService),
		Post:     handler.NewPostHandler(postService),
		Category: handler.NewCategoryHandler(categoryService),
		Health:   handler.NewHealthHandler(gormDB),
	})

	log.Printf("Swagger documentation available at: %s", swaggerURL(cfg.SwaggerHost, cfg.ServerPort))

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("Server stopped")
}

// swaggerURL accepts a host with or without scheme.
func swaggerURL(host, port string) string {
	if host == "" {
		return "http://localhost:" + port + "/swagger/index.html"
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/") + "/swagger/index.html"
}
