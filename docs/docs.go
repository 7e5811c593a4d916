// Package docs holds the OpenAPI description served under /swagger.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "Registration data", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login user",
                "parameters": [
                    {"description": "Login credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Update current user's profile",
                "parameters": [
                    {"description": "Profile fields", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.UpdateProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/auth/password": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Change password",
                "parameters": [
                    {"description": "Passwords", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.ChangePasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/posts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "List published posts",
                "parameters": [
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "default": 10, "description": "Page size (max 100)", "name": "limit", "in": "query"},
                    {"type": "string", "description": "Category slug", "name": "category", "in": "query"},
                    {"type": "string", "description": "Substring of title or content", "name": "search", "in": "query"},
                    {"type": "string", "description": "Tag", "name": "tag", "in": "query"},
                    {"type": "string", "description": "Author id", "name": "author", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Create a post",
                "parameters": [
                    {"description": "Post", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CreatePostRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/posts/{id}": {
            "get": {
                "description": "Every successful fetch increments the view count.",
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Get a post by id or slug",
                "parameters": [
                    {"type": "string", "description": "Post id or slug", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Only the author or an admin may update a post.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Update a post",
                "parameters": [
                    {"type": "string", "description": "Post id", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.UpdatePostRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Delete a post",
                "parameters": [
                    {"type": "string", "description": "Post id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/posts/{id}/comments": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Comment on a post",
                "parameters": [
                    {"type": "string", "description": "Post id", "name": "id", "in": "path", "required": true},
                    {"description": "Comment", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CommentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/categories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "List categories",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Create a category",
                "parameters": [
                    {"description": "Category", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CreateCategoryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/categories/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Get a category by id or slug",
                "parameters": [
                    {"type": "string", "description": "Category id or slug", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Update a category",
                "parameters": [
                    {"type": "string", "description": "Category id", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.UpdateCategoryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Categories that still have posts cannot be deleted.",
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Delete a category",
                "parameters": [
                    {"type": "string", "description": "Category id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Envelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "code": {"type": "string"}
            }
        },
        "handler.Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "handler.Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "count": {"type": "integer"},
                "pagination": {"$ref": "#/definitions/handler.Pagination"}
            }
        },
        "handler.AuthResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/model.User"}
            }
        },
        "handler.RegisterRequest": {
            "type": "object",
            "required": ["email", "password", "username"],
            "properties": {
                "username": {"type": "string", "minLength": 3, "maxLength": 30},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6}
            }
        },
        "handler.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.UpdateProfileRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string", "minLength": 3, "maxLength": 30},
                "avatar": {"type": "string", "maxLength": 255},
                "bio": {"type": "string", "maxLength": 500}
            }
        },
        "handler.ChangePasswordRequest": {
            "type": "object",
            "required": ["current_password", "new_password"],
            "properties": {
                "current_password": {"type": "string"},
                "new_password": {"type": "string", "minLength": 6}
            }
        },
        "handler.CreatePostRequest": {
            "type": "object",
            "required": ["category", "content", "title"],
            "properties": {
                "title": {"type": "string", "maxLength": 200},
                "content": {"type": "string"},
                "excerpt": {"type": "string", "maxLength": 300},
                "featured_image": {"type": "string", "maxLength": 255},
                "category": {"type": "string"},
                "tags": {"type": "array", "maxItems": 20, "items": {"type": "string"}},
                "is_published": {"type": "boolean"}
            }
        },
        "handler.UpdatePostRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string", "maxLength": 200},
                "content": {"type": "string"},
                "excerpt": {"type": "string", "maxLength": 300},
                "featured_image": {"type": "string", "maxLength": 255},
                "category": {"type": "string"},
                "tags": {"type": "array", "maxItems": 20, "items": {"type": "string"}},
                "is_published": {"type": "boolean"}
            }
        },
        "handler.CommentRequest": {
            "type": "object",
            "required": ["content"],
            "properties": {
                "content": {"type": "string", "maxLength": 1000}
            }
        },
        "handler.CreateCategoryRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string", "maxLength": 50},
                "slug": {"type": "string", "maxLength": 64},
                "description": {"type": "string", "maxLength": 500}
            }
        },
        "handler.UpdateCategoryRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "maxLength": 50},
                "slug": {"type": "string", "maxLength": 64},
                "description": {"type": "string", "maxLength": 500}
            }
        },
        "model.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"},
                "avatar": {"type": "string"},
                "bio": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "model.Category": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "slug": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "model.Comment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "post_id": {"type": "string"},
                "user_id": {"type": "string"},
                "content": {"type": "string"},
                "created_at": {"type": "string"},
                "user": {"$ref": "#/definitions/model.User"}
            }
        },
        "model.Post": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "slug": {"type": "string"},
                "content": {"type": "string"},
                "excerpt": {"type": "string"},
                "featured_image": {"type": "string"},
                "author_id": {"type": "string"},
                "category_id": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "view_count": {"type": "integer"},
                "is_published": {"type": "boolean"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "author": {"$ref": "#/definitions/model.User"},
                "category": {"$ref": "#/definitions/model.Category"},
                "comments": {"type": "array", "items": {"$ref": "#/definitions/model.Comment"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5000",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "Inkwell Blog API",
	Description:      "Blog API with posts, comments, categories and JWT authentication.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
