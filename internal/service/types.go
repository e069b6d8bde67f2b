package service

import (
	"github.com/nebari-dev/quill/internal/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListRequest holds list parameters as supplied by the caller. Zero values
// fall back to defaults.
type ListRequest struct {
	Page   int
	Limit  int
	Status models.ArticleStatus
}

// Pagination describes where a page sits in the full result.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// ArticlePage is one page of a list query.
type ArticlePage struct {
	Articles   []models.Article `json:"articles"`
	Pagination Pagination       `json:"pagination"`
}

// CreateArticle holds parameters for creating an article. Status defaults to DRAFT.
type CreateArticle struct {
	Title   string               `json:"title" validate:"required,min=3"`
	Content string               `json:"content" validate:"required,min=10"`
	Status  models.ArticleStatus `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED"`
}

// UpdateArticle is a partial update; nil fields are left unchanged.
type UpdateArticle struct {
	Title   *string               `json:"title" validate:"omitnil,min=3"`
	Content *string               `json:"content" validate:"omitnil,min=10"`
	Status  *models.ArticleStatus `json:"status" validate:"omitnil,oneof=DRAFT PUBLISHED"`
}

// RegisterRequest holds parameters for creating an account.
type RegisterRequest struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Name     string      `json:"name" validate:"required,min=2"`
	Role     models.Role `json:"role" validate:"omitempty,oneof=ADMIN EDITOR VIEWER"`
}

// LoginRequest holds login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SetRoleRequest changes a user's role.
type SetRoleRequest struct {
	Role models.Role `json:"role" validate:"required,oneof=ADMIN EDITOR VIEWER"`
}
