package policy

import (
	"github.com/google/uuid"
	"github.com/nebari-dev/quill/internal/models"
)

// Filter is the logical predicate a list query must satisfy. All set
// constraints are ANDed. It says nothing about how a store evaluates it.
type Filter struct {
	// Status, when non-empty, requires an exact status match.
	Status models.ArticleStatus
	// VisibleTo, when set, requires status PUBLISHED or authorship by this id.
	VisibleTo *uuid.UUID
	// AuthorID, when set, requires authorship by this id.
	AuthorID *uuid.UUID
	// None matches no rows at all.
	None bool
}

// Matches evaluates the filter against a single article.
func (f Filter) Matches(a *models.Article) bool {
	if f.None || a == nil {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.VisibleTo != nil && a.Status != models.StatusPublished && a.AuthorID != *f.VisibleTo {
		return false
	}
	if f.AuthorID != nil && a.AuthorID != *f.AuthorID {
		return false
	}
	return true
}
