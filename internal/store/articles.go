package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nebari-dev/quill/internal/models"
	"github.com/nebari-dev/quill/internal/policy"
	"gorm.io/gorm"
)

// ArticleFields is a partial update. Nil fields are left unchanged.
type ArticleFields struct {
	Title   *string
	Content *string
	Status  *models.ArticleStatus
}

func (f ArticleFields) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if f.Title != nil {
		cols["title"] = *f.Title
	}
	if f.Content != nil {
		cols["content"] = *f.Content
	}
	if f.Status != nil {
		cols["status"] = *f.Status
	}
	return cols
}

// scopeFilter translates a policy filter into where-clauses.
func scopeFilter(f policy.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.None {
			return db.Where("1 = 0")
		}
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.VisibleTo != nil {
			db = db.Where("(status = ? OR author_id = ?)", models.StatusPublished, *f.VisibleTo)
		}
		if f.AuthorID != nil {
			db = db.Where("author_id = ?", *f.AuthorID)
		}
		return db
	}
}

// FindArticles returns one page of articles matching f, newest first.
func (s *Store) FindArticles(ctx context.Context, f policy.Filter, p Page) ([]models.Article, error) {
	var articles []models.Article
	err := s.db.WithContext(ctx).
		Scopes(scopeFilter(f)).
		Preload("Author").
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("find articles: %w", err)
	}
	return articles, nil
}

// CountArticles counts all articles matching f.
func (s *Store) CountArticles(ctx context.Context, f policy.Filter) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&models.Article{}).
		Scopes(scopeFilter(f)).
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return total, nil
}

// GetArticle returns a single article with its author.
func (s *Store) GetArticle(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	var a models.Article
	if err := s.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// CreateArticle inserts a and returns the stored row with its author.
func (s *Store) CreateArticle(ctx context.Context, a *models.Article) (*models.Article, error) {
	if err := s.db.WithContext(ctx).Omit("Author").Create(a).Error; err != nil {
		return nil, fmt.Errorf("create article: %w", translate(err))
	}
	return s.GetArticle(ctx, a.ID)
}

// UpdateArticle applies a partial update and returns the stored row.
func (s *Store) UpdateArticle(ctx context.Context, id uuid.UUID, fields ArticleFields) (*models.Article, error) {
	cols := fields.columns()
	if len(cols) > 0 {
		res := s.db.WithContext(ctx).Model(&models.Article{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, fmt.Errorf("update article: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return s.GetArticle(ctx, id)
}

// DeleteArticle removes an article permanently.
func (s *Store) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Article{})
	if res.Error != nil {
		return fmt.Errorf("delete article: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
