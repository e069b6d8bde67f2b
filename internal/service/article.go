package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"github.com/nebari-dev/quill/internal/models"
	"github.com/nebari-dev/quill/internal/policy"
	"github.com/nebari-dev/quill/internal/store"
	"golang.org/x/sync/errgroup"
)

// ArticleStore is the persistence the article operations need.
type ArticleStore interface {
	FindArticles(ctx context.Context, f policy.Filter, p store.Page) ([]models.Article, error)
	CountArticles(ctx context.Context, f policy.Filter) (int64, error)
	GetArticle(ctx context.Context, id uuid.UUID) (*models.Article, error)
	CreateArticle(ctx context.Context, a *models.Article) (*models.Article, error)
	UpdateArticle(ctx context.Context, id uuid.UUID, fields store.ArticleFields) (*models.Article, error)
	DeleteArticle(ctx context.Context, id uuid.UUID) error
}

// ArticleService contains the business logic for article operations. Every
// mutation follows fetch, authorize, act; a denied decision issues no write.
type ArticleService struct {
	store  ArticleStore
	policy *policy.Engine
}

// NewArticleService creates a new ArticleService. A nil engine uses the
// embedded grant table.
func NewArticleService(s ArticleStore, engine *policy.Engine) *ArticleService {
	if engine == nil {
		engine = policy.Default()
	}
	return &ArticleService{store: s, policy: engine}
}

// List returns one page of the articles visible to caller, newest first.
func (s *ArticleService) List(ctx context.Context, caller *policy.Identity, req ListRequest) (*ArticlePage, error) {
	// Anonymous callers are pinned to published articles, so their status
	// parameter is ignored rather than validated.
	if caller != nil && req.Status != "" && !req.Status.Valid() {
		return nil, invalidField("status", "Status must be one of: DRAFT, PUBLISHED")
	}

	page := store.Page{Page: req.Page, Limit: req.Limit}
	if page.Page < 1 {
		page.Page = DefaultPage
	}
	if page.Limit < 1 {
		page.Limit = DefaultLimit
	}
	if page.Limit > MaxLimit {
		page.Limit = MaxLimit
	}

	// A page whose offset does not fit in an int is past the end of any table.
	beyond := page.Page-1 > math.MaxInt/page.Limit

	filter := s.policy.ListFilter(caller, req.Status)

	var (
		articles []models.Article
		total    int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if beyond {
			return nil
		}
		var err error
		articles, err = s.store.FindArticles(gctx, filter, page)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.CountArticles(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	if articles == nil {
		articles = []models.Article{}
	}
	return &ArticlePage{
		Articles: articles,
		Pagination: Pagination{
			Total:      total,
			Page:       page.Page,
			Limit:      page.Limit,
			TotalPages: int((total + int64(page.Limit) - 1) / int64(page.Limit)),
		},
	}, nil
}

// fetch loads an article, mapping absence to ErrNotFound.
func (s *ArticleService) fetch(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	a, err := s.store.GetArticle(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("Article not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get article %s: %w", id, err)
	}
	return a, nil
}

// deny picks the error for a refused decision: a missing caller is
// unauthenticated, a known one is forbidden.
func deny(caller *policy.Identity, reason string) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	return forbidden(reason)
}

// Get returns a single article if the caller may see it.
func (s *ArticleService) Get(ctx context.Context, caller *policy.Identity, id uuid.UUID) (*models.Article, error) {
	a, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanView(caller, a) {
		return nil, forbidden("You do not have permission to view this article")
	}
	return a, nil
}

// Create validates and stores a new article authored by the caller.
func (s *ArticleService) Create(ctx context.Context, caller *policy.Identity, req CreateArticle) (*models.Article, error) {
	if !s.policy.CanCreate(caller) {
		return nil, deny(caller, "You do not have permission to create articles")
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.StatusDraft
	}

	a, err := s.store.CreateArticle(ctx, &models.Article{
		Title:    req.Title,
		Content:  req.Content,
		Status:   status,
		AuthorID: caller.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}

	slog.Info("Article created", "article_id", a.ID, "author_id", caller.ID, "status", a.Status)
	return a, nil
}

// Update applies a partial update if the caller may edit the article.
func (s *ArticleService) Update(ctx context.Context, caller *policy.Identity, id uuid.UUID, req UpdateArticle) (*models.Article, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	a, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanUpdate(caller, a) {
		return nil, deny(caller, "You can only edit your own articles")
	}

	updated, err := s.store.UpdateArticle(ctx, id, store.ArticleFields{
		Title:   req.Title,
		Content: req.Content,
		Status:  req.Status,
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("Article not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update article %s: %w", id, err)
	}
	return updated, nil
}

// Delete removes an article if the caller may delete it.
func (s *ArticleService) Delete(ctx context.Context, caller *policy.Identity, id uuid.UUID) error {
	a, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}
	if !s.policy.CanDelete(caller, a) {
		return deny(caller, "Only admins can delete articles")
	}

	err = s.store.DeleteArticle(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return notFound("Article not found")
	}
	if err != nil {
		return fmt.Errorf("delete article %s: %w", id, err)
	}

	slog.Info("Article deleted", "article_id", id, "deleted_by", caller.ID)
	return nil
}
