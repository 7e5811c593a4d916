package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"inkwell/internal/auth"
	"inkwell/internal/config"
	"inkwell/internal/db"
	apperrors "inkwell/internal/errors"
	"inkwell/internal/model"
	"inkwell/internal/repository"
	"inkwell/internal/service"
)

// defaultCategories are created on first seed; existing ones are left alone.
var defaultCategories = []service.CategoryInput{
	{Name: "Technology", Description: "Software, hardware and the people who build them"},
	{Name: "Travel", Description: "Places worth the trip"},
	{Name: "Food", Description: "Recipes and restaurants"},
	{Name: "Lifestyle"},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpire)
	authService := service.NewAuthService(userRepo, auth.NewBcryptHasher(cfg.BcryptCost), jwtService)
	categoryService := service.NewCategoryService(categoryRepo, postRepo)

	ctx := context.Background()

	admin, err := seedAdmin(ctx, authService, userRepo, cfg)
	if err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}
	log.Printf("Admin user ready: %s (%s)", admin.Username, admin.Email)

	created, skipped, err := seedCategories(ctx, categoryService, admin)
	if err != nil {
		log.Fatalf("Failed to seed categories: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - Categories created: %d", created)
	log.Printf("  - Categories already present: %d", skipped)
}

// seedAdmin registers the admin account, or promotes it when the email is already registered.
func seedAdmin(ctx context.Context, authService service.AuthService, repo repository.UserRepository, cfg *config.Config) (*model.User, error) {
	var user *model.User
	result, err := authService.Register(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
	switch {
	case err == nil:
		user = result.User
	case errors.Is(err, apperrors.ErrUserExists):
		user, err = repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(cfg.AdminEmail)))
		if err != nil {
			return nil, fmt.Errorf("error loading existing admin %s: %w", cfg.AdminEmail, err)
		}
	default:
		return nil, err
	}

	if user.Role != model.RoleAdmin {
		user.Role = model.RoleAdmin
		if err := repo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("error promoting %s: %w", user.Email, err)
		}
	}
	return user, nil
}

func seedCategories(ctx context.Context, categories service.CategoryService, admin *model.User) (created int, skipped int, err error) {
	for _, input := range defaultCategories {
		_, err := categories.Create(ctx, admin, input)
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrCategoryExists):
			skipped++
		default:
			return created, skipped, fmt.Errorf("error creating category %s: %w", input.Name, err)
		}
	}
	return created, skipped, nil
}
