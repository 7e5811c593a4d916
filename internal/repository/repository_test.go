package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"inkwell/internal/db"
	"inkwell/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.NewSQLite(filepath.Join(t.TempDir(), "repository.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

func seedUser(t *testing.T, gormDB *gorm.DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$10$not-a-real-hash",
	}
	require.NoError(t, NewUserRepository(gormDB).Create(context.Background(), user))
	return user
}

func seedCategory(t *testing.T, gormDB *gorm.DB, name, slug string) *model.Category {
	t.Helper()
	category := &model.Category{Name: name, Slug: slug}
	require.NoError(t, NewCategoryRepository(gormDB).Create(context.Background(), category))
	return category
}

type postSeed struct {
	title     string
	content   string
	published bool
	tags      []string
	age       time.Duration
}

func seedPost(t *testing.T, gormDB *gorm.DB, author *model.User, category *model.Category, s postSeed) *model.Post {
	t.Helper()
	post := &model.Post{
		Title:       s.title,
		Slug:        model.NewID(),
		Content:     s.content,
		AuthorID:    author.ID,
		CategoryID:  category.ID,
		Tags:        s.tags,
		IsPublished: s.published,
		CreatedAt:   time.Now().Add(-s.age),
	}
	require.NoError(t, NewPostRepository(gormDB).Create(context.Background(), post))
	return post
}
