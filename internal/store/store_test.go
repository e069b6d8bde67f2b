package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/nebari-dev/quill/internal/models"
	"github.com/nebari-dev/quill/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Article{}))
	return New(db)
}

func createUser(t *testing.T, s *Store, name string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func createArticle(t *testing.T, s *Store, author uuid.UUID, title string, status models.ArticleStatus) *models.Article {
	t.Helper()
	a, err := s.CreateArticle(context.Background(), &models.Article{
		Title:    title,
		Content:  "some article content",
		Status:   status,
		AuthorID: author,
	})
	require.NoError(t, err)
	// created_at ordering needs distinct timestamps
	time.Sleep(2 * time.Millisecond)
	return a
}

func titles(articles []models.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.Title)
	}
	return out
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	createUser(t, s, "alice", models.RoleEditor)

	err := s.CreateUser(ctx, &models.User{Name: "Alice Again", Email: "alice@example.com", PasswordHash: "y", Role: models.RoleViewer})
	assert.ErrorIs(t, err, ErrDuplicate)

	count, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "no second user row should be created")
}

func TestFindUser(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice", models.RoleEditor)

	byID, err := s.FindUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)

	byEmail, err := s.FindUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)

	_, err = s.FindUserByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUserRole(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice", models.RoleViewer)

	updated, err := s.UpdateUserRole(ctx, alice.ID, models.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, updated.Role)

	_, err = s.UpdateUserRole(ctx, uuid.New(), models.RoleEditor)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArticleRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice", models.RoleEditor)

	created := createArticle(t, s, alice.ID, "Hello", models.StatusDraft)
	assert.NotEqual(t, uuid.Nil, created.ID)
	require.NotNil(t, created.Author)
	assert.Equal(t, "alice", created.Author.Name)

	got, err := s.GetArticle(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, models.StatusDraft, got.Status)
	assert.Equal(t, alice.ID, got.AuthorID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestUpdateArticle_Partial(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice", models.RoleEditor)
	a := createArticle(t, s, alice.ID, "Original", models.StatusDraft)

	published := models.StatusPublished
	updated, err := s.UpdateArticle(ctx, a.ID, ArticleFields{Status: &published})
	require.NoError(t, err)
	assert.Equal(t, "Original", updated.Title, "unspecified fields stay unchanged")
	assert.Equal(t, a.Content, updated.Content)
	assert.Equal(t, models.StatusPublished, updated.Status)
	assert.Equal(t, alice.ID, updated.AuthorID)

	title := "Renamed"
	_, err = s.UpdateArticle(ctx, uuid.New(), ArticleFields{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteArticle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice", models.RoleEditor)
	a := createArticle(t, s, alice.ID, "Doomed", models.StatusPublished)

	require.NoError(t, s.DeleteArticle(ctx, a.ID))

	_, err := s.GetArticle(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteArticle(ctx, a.ID), ErrNotFound)
}

func TestFindArticles_Filters(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice", models.RoleViewer)
	bob := createUser(t, s, "bob", models.RoleEditor)

	createArticle(t, s, alice.ID, "alice-draft", models.StatusDraft)
	createArticle(t, s, alice.ID, "alice-pub", models.StatusPublished)
	createArticle(t, s, bob.ID, "bob-draft", models.StatusDraft)
	createArticle(t, s, bob.ID, "bob-pub", models.StatusPublished)

	all := Page{Page: 1, Limit: 10}
	tests := []struct {
		name   string
		filter policy.Filter
		want   []string
	}{
		{"unconstrained", policy.Filter{}, []string{"bob-pub", "bob-draft", "alice-pub", "alice-draft"}},
		{"status", policy.Filter{Status: models.StatusDraft}, []string{"bob-draft", "alice-draft"}},
		{"visible to alice", policy.Filter{VisibleTo: &alice.ID}, []string{"bob-pub", "alice-pub", "alice-draft"}},
		{"alice drafts only", policy.Filter{Status: models.StatusDraft, VisibleTo: &alice.ID}, []string{"alice-draft"}},
		{"author", policy.Filter{AuthorID: &bob.ID}, []string{"bob-pub", "bob-draft"}},
		{"none", policy.Filter{None: true}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindArticles(ctx, tt.filter, all)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))

			total, err := s.CountArticles(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), total)
		})
	}
}

func TestFindArticles_Pagination(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice", models.RoleEditor)
	for _, title := range []string{"a1", "a2", "a3", "a4", "a5"} {
		createArticle(t, s, alice.ID, title, models.StatusPublished)
	}

	page2, err := s.FindArticles(ctx, policy.Filter{}, Page{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a3", "a2"}, titles(page2))

	page3, err := s.FindArticles(ctx, policy.Filter{}, Page{Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, titles(page3))
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, Page{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, Page{Page: 3, Limit: 10}.Offset())
}
