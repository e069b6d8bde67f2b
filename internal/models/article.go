package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ArticleStatus is the publication state of an article
type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "DRAFT"
	StatusPublished ArticleStatus = "PUBLISHED"
)

// Valid reports whether s is a known status.
func (s ArticleStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Article is a piece of (possibly HTML) content owned by its author.
// AuthorID is set on create and never changed afterwards.
type Article struct {
	ID        uuid.UUID     `gorm:"type:text;primary_key" json:"id"`
	Title     string        `gorm:"not null" json:"title"`
	Content   string        `gorm:"type:text;not null" json:"content"`
	Status    ArticleStatus `gorm:"type:text;not null;default:'DRAFT';index" json:"status"`
	AuthorID  uuid.UUID     `gorm:"type:text;not null;index" json:"authorId"`
	Author    *Author       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedAt time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// TableName ensures GORM uses the "articles" table
func (Article) TableName() string {
	return "articles"
}

// BeforeCreate hook to generate UUID
func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Author is the public projection of a User embedded in article responses.
type Author struct {
	ID    uuid.UUID `gorm:"type:text;primary_key" json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// TableName maps Author onto the users table
func (Author) TableName() string {
	return "users"
}
