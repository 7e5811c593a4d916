package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"inkwell/internal/auth"
	"inkwell/internal/config"
	"inkwell/internal/db"
	"inkwell/internal/handler"
	"inkwell/internal/middleware"
	"inkwell/internal/model"
	"inkwell/internal/repository"
	"inkwell/internal/service"
)

type testApp struct {
	e      *echo.Echo
	db     *gorm.DB
	tokens *auth.JWTService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	gormDB, err := db.NewSQLite(filepath.Join(t.TempDir(), "router.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	userRepo := repository.NewUserRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)
	tokens := auth.NewJWTService("test-secret", time.Hour)
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)

	e := echo.New()
	Register(e, &config.Config{CORSOrigins: []string{"*"}}, middleware.Authenticate(tokens, userRepo), Handlers{
		Auth:     handler.NewAuthHandler(service.NewAuthService(userRepo, hasher, tokens)),
		User:     handler.NewUserHandler(service.NewUserService(userRepo, hasher, tokens)),
		Post:     handler.NewPostHandler(service.NewPostService(postRepo, categoryRepo)),
		Category: handler.NewCategoryHandler(service.NewCategoryService(categoryRepo, postRepo)),
		Health:   handler.NewHealthHandler(gormDB),
	})

	return &testApp{e: e, db: gormDB, tokens: tokens}
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

type authBody struct {
	Success bool       `json:"success"`
	Token   string     `json:"token"`
	User    model.User `json:"user"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

type postBody struct {
	Success bool       `json:"success"`
	Data    model.Post `json:"data"`
}

type listBody struct {
	Success    bool                `json:"success"`
	Count      int                 `json:"count"`
	Data       []model.Post        `json:"data"`
	Pagination handler.Pagination `json:"pagination"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (a *testApp) register(t *testing.T, username string) authBody {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[authBody](t, rec)
}

func (a *testApp) registerAdmin(t *testing.T, username string) authBody {
	t.Helper()
	body := a.register(t, username)
	require.NoError(t, a.db.Model(&model.User{}).Where("id = ?", body.User.ID).Update("role", model.RoleAdmin).Error)
	return body
}

func (a *testApp) createCategory(t *testing.T, adminToken, name string) model.Category {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/categories", adminToken, map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body struct {
		Data model.Category `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data
}

func (a *testApp) createPost(t *testing.T, token, title, content, category string) model.Post {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/posts", token, map[string]interface{}{
		"title":    title,
		"content":  content,
		"category": category,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[postBody](t, rec).Data
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)

	registered := app.register(t, "alice")
	assert.True(t, registered.Success)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, model.RoleUser, registered.User.Role)

	rec := app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "$2a$")

	loggedIn := decode[authBody](t, rec)
	claims, err := app.tokens.ValidateToken(loggedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)

	rec = app.do(t, http.MethodGet, "/api/auth/me", loggedIn.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode[authBody](t, rec).User.Username)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")

	rec := app.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice2",
		"email":    "ALICE@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	var users int64
	require.NoError(t, app.db.Model(&model.User{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)
}

func TestLoginFailures(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")

	rec := app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode[errorBody](t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, "Invalid credentials", body.Error)

	rec = app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@example.com"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Please provide an email and password", decode[errorBody](t, rec).Error)
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "al",
		"email":    "al@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "username must be at least 3 characters", decode[errorBody](t, rec).Error)
}

func TestUsernameLengthCountsTrimmedValue(t *testing.T) {
	app := newTestApp(t)

	for i, username := range []string{"    ", " ab "} {
		rec := app.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"username": username,
			"email":    fmt.Sprintf("blank%d@example.com", i),
			"password": "secret123",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		assert.Equal(t, "username must be between 3 and 30 characters", decode[errorBody](t, rec).Error)
	}

	var users int64
	require.NoError(t, app.db.Model(&model.User{}).Count(&users).Error)
	assert.Zero(t, users)

	alice := app.register(t, "alice")
	rec := app.do(t, http.MethodPut, "/api/auth/me", alice.Token, map[string]string{"username": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var stored model.User
	require.NoError(t, app.db.First(&stored, "id = ?", alice.User.ID).Error)
	assert.Equal(t, "alice", stored.Username)
}

func TestResponsesNeverExposePasswordHash(t *testing.T) {
	app := newTestApp(t)
	admin := app.registerAdmin(t, "root")
	tech := app.createCategory(t, admin.Token, "Tech")

	var bodies []string
	record := func(rec *httptest.ResponseRecorder, want int) {
		t.Helper()
		require.Equal(t, want, rec.Code, rec.Body.String())
		bodies = append(bodies, rec.Body.String())
	}

	rec := app.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	record(rec, http.StatusCreated)
	alice := decode[authBody](t, rec)
	bob := app.register(t, "bob")

	hashOf := func(id string) string {
		var u model.User
		require.NoError(t, app.db.First(&u, "id = ?", id).Error)
		require.NotEmpty(t, u.PasswordHash)
		return u.PasswordHash
	}
	hashes := []string{hashOf(alice.User.ID), hashOf(bob.User.ID)}

	record(app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "secret123",
	}), http.StatusOK)
	record(app.do(t, http.MethodGet, "/api/auth/me", alice.Token, nil), http.StatusOK)
	record(app.do(t, http.MethodPut, "/api/auth/me", alice.Token, map[string]string{"bio": "writer"}), http.StatusOK)

	post := app.createPost(t, alice.Token, "Secrets", "content", tech.ID)
	record(app.do(t, http.MethodGet, "/api/posts/"+post.ID, "", nil), http.StatusOK)
	record(app.do(t, http.MethodPost, "/api/posts/"+post.ID+"/comments", bob.Token, map[string]string{"content": "hi"}), http.StatusCreated)

	record(app.do(t, http.MethodPut, "/api/auth/password", alice.Token, map[string]string{
		"current_password": "secret123",
		"new_password":     "newsecret456",
	}), http.StatusOK)
	hashes = append(hashes, hashOf(alice.User.ID))
	require.NotEqual(t, hashes[0], hashes[2])

	for _, body := range bodies {
		assert.NotContains(t, body, "$2a$")
		assert.NotContains(t, body, "password_hash")
		for _, hash := range hashes {
			assert.NotContains(t, body, hash)
		}
	}
}

func TestViewCountIncrementsOnEveryFetch(t *testing.T) {
	app := newTestApp(t)
	admin := app.registerAdmin(t, "root")
	alice := app.register(t, "alice")
	tech := app.createCategory(t, admin.Token, "Tech")

	post := app.createPost(t, alice.Token, "Hello World", "<p>first post</p>", tech.Slug)
	assert.Equal(t, "hello-world", post.Slug)
	assert.Zero(t, post.ViewCount)

	rec := app.do(t, http.MethodGet, "/api/posts/"+post.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[postBody](t, rec).Data.ViewCount)

	rec = app.do(t, http.MethodGet, "/api/posts/hello-world", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decode[postBody](t, rec).Data
	assert.Equal(t, int64(2), fetched.ViewCount)
	require.NotNil(t, fetched.Author)
	assert.Equal(t, "alice", fetched.Author.Username)
	assert.Empty(t, fetched.Author.Email)

	rec = app.do(t, http.MethodGet, "/api/posts/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Post not found", decode[errorBody](t, rec).Error)
}

func TestOwnerGate(t *testing.T) {
	app := newTestApp(t)
	admin := app.registerAdmin(t, "root")
	alice := app.register(t, "alice")
	bob := app.register(t, "bob")
	tech := app.createCategory(t, admin.Token, "Tech")
	post := app.createPost(t, alice.Token, "Mine", "alice's words", tech.ID)

	rec := app.do(t, http.MethodPut, "/api/posts/"+post.ID, bob.Token, map[string]string{"title": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = app.do(t, http.MethodDelete, "/api/posts/"+post.ID, bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var stored model.Post
	require.NoError(t, app.db.First(&stored, "id = ?", post.ID).Error)
	assert.Equal(t, "Mine", stored.Title)
	assert.Equal(t, alice.User.ID, stored.AuthorID)

	rec = app.do(t, http.MethodPut, "/api/posts/"+post.ID, alice.Token, map[string]string{"title": "Still mine"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[postBody](t, rec).Data
	assert.Equal(t, "Still mine", updated.Title)
	assert.Equal(t, "still-mine", updated.Slug)

	rec = app.do(t, http.MethodDelete, "/api/posts/"+post.ID, admin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{}}`, rec.Body.String())

	rec = app.do(t, http.MethodPut, "/api/posts/"+post.ID, alice.Token, map[string]string{"title": "Gone"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPostsFilters(t *testing.T) {
	app := newTestApp(t)
	admin := app.registerAdmin(t, "root")
	alice := app.register(t, "alice")
	tech := app.createCategory(t, admin.Token, "Tech")
	travel := app.createCategory(t, admin.Token, "Travel")

	for i := 0; i < 8; i++ {
		app.createPost(t, alice.Token, fmt.Sprintf("Foo part %d", i), "tech body", tech.ID)
	}
	app.createPost(t, alice.Token, "Unrelated", "nothing to see", tech.ID)
	app.createPost(t, alice.Token, "Foo abroad", "foo in Lisbon", travel.ID)

	rec := app.do(t, http.MethodGet, "/api/posts?category=tech&search=FOO&page=2&limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[listBody](t, rec)

	assert.True(t, body.Success)
	assert.Equal(t, 3, body.Count)
	require.Len(t, body.Data, 3)
	assert.Equal(t, handler.Pagination{Page: 2, Limit: 5, TotalPages: 2, TotalCount: 8}, body.Pagination)
	for i, post := range body.Data {
		assert.Equal(t, tech.ID, post.CategoryID)
		assert.Contains(t, strings.ToLower(post.Title+post.Content), "foo")
		if i > 0 {
			assert.False(t, post.CreatedAt.After(body.Data[i-1].CreatedAt))
		}
	}

	rec = app.do(t, http.MethodGet, "/api/posts?category=ghost", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[listBody](t, rec)
	assert.Equal(t, int64(10), all.Pagination.TotalCount)
	assert.Equal(t, 10, all.Count)

	rec = app.do(t, http.MethodGet, "/api/posts?page=99999999999999", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	far := decode[listBody](t, rec)
	assert.Zero(t, far.Count)
	assert.Equal(t, int64(10), far.Pagination.TotalCount)
}

func TestCategoryAdminGate(t *testing.T) {
	app := newTestApp(t)
	admin := app.registerAdmin(t, "root")
	alice := app.register(t, "alice")

	rec := app.do(t, http.MethodPost, "/api/categories", alice.Token, map[string]string{"name": "Tech"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "User role user is not authorized to access this route", decode[errorBody](t, rec).Error)

	rec = app.do(t, http.MethodPost, "/api/categories", "", map[string]string{"name": "Tech"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tech := app.createCategory(t, admin.Token, "Tech")
	rec = app.do(t, http.MethodPost, "/api/categories", admin.Token, map[string]string{"name": "Tech"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	app.createPost(t, alice.Token, "Pinned", "content", tech.ID)
	rec = app.do(t, http.MethodDelete, "/api/categories/"+tech.ID, admin.Token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/categories/tech", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCommentsAppendInOrder(t *testing.T) {
	app := newTestApp(t)
	admin := app.registerAdmin(t, "root")
	alice := app.register(t, "alice")
	bob := app.register(t, "bob")
	tech := app.createCategory(t, admin.Token, "Tech")
	post := app.createPost(t, alice.Token, "Discuss", "content", tech.ID)

	rec := app.do(t, http.MethodPost, "/api/posts/"+post.ID+"/comments", bob.Token, map[string]string{"content": "first"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = app.do(t, http.MethodPost, "/api/posts/"+post.ID+"/comments", alice.Token, map[string]string{"content": "second"})
	require.Equal(t, http.StatusCreated, rec.Code)

	comments := decode[postBody](t, rec).Data.Comments
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "bob", comments[0].User.Username)
	assert.Equal(t, "second", comments[1].Content)

	rec = app.do(t, http.MethodPost, "/api/posts/"+post.ID+"/comments", "", map[string]string{"content": "anon"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	require.NoError(t, db.Ping(context.Background(), app.db))
}
