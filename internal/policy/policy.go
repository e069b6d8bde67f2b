// Package policy decides who may see and change which articles.
//
// Role grants live in an embedded casbin table (policy.csv): each row grants a
// subject (a role, or "anonymous") an action on articles within a scope.
// Scope "any" covers every article, "own" covers articles the caller wrote,
// "published" covers articles in the PUBLISHED state. The Engine combines those
// grants with the facts of a single article; it performs no I/O after
// construction and is safe for concurrent use.
package policy

import (
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"github.com/google/uuid"
	"github.com/nebari-dev/quill/internal/models"
)

//go:embed model.conf
var modelConf string

//go:embed policy.csv
var policyCSV string

// Action is an operation on an article.
type Action string

const (
	ActRead   Action = "read"
	ActCreate Action = "create"
	ActUpdate Action = "update"
	ActDelete Action = "delete"
	// ActManage applies to user accounts, not articles.
	ActManage Action = "manage"
)

// Scope narrows a grant to a subset of articles.
type Scope string

const (
	ScopeAny       Scope = "any"
	ScopeOwn       Scope = "own"
	ScopePublished Scope = "published"
)

const (
	objArticle       = "article"
	objUser          = "user"
	subjectAnonymous = "anonymous"
)

// Identity is an authenticated caller. A nil *Identity is an anonymous caller.
type Identity struct {
	ID   uuid.UUID
	Role models.Role
}

// Engine evaluates article decisions against the grant table.
type Engine struct {
	enforcer *casbin.SyncedEnforcer
}

// New builds an engine from the embedded grant table.
func New() (*Engine, error) {
	return NewFromPolicy(policyCSV)
}

// NewFromPolicy builds an engine from a casbin policy in CSV form.
func NewFromPolicy(csv string) (*Engine, error) {
	m, err := model.NewModelFromString(modelConf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse policy model: %w", err)
	}

	e, err := casbin.NewSyncedEnforcer(m, stringadapter.NewAdapter(csv))
	if err != nil {
		return nil, fmt.Errorf("failed to create policy enforcer: %w", err)
	}
	return &Engine{enforcer: e}, nil
}

var defaultEngine = mustNew()

func mustNew() *Engine {
	e, err := New()
	if err != nil {
		panic(err)
	}
	return e
}

// Default returns the engine built from the embedded grant table.
func Default() *Engine {
	return defaultEngine
}

func subject(id *Identity) string {
	if id == nil {
		return subjectAnonymous
	}
	return string(id.Role)
}

func owns(id *Identity, a *models.Article) bool {
	return id != nil && id.ID != uuid.Nil && a.AuthorID == id.ID
}

// Allowed reports whether the caller holds a grant for act within scope.
// Enforcer errors deny.
func (e *Engine) Allowed(id *Identity, act Action, scope Scope) bool {
	ok, err := e.enforcer.Enforce(subject(id), objArticle, string(act), string(scope))
	return err == nil && ok
}

// permits checks act against a concrete article: a grant on any article, on
// published articles when a is published, or on own articles when the caller wrote a.
func (e *Engine) permits(id *Identity, act Action, a *models.Article) bool {
	if a == nil {
		return false
	}
	if e.Allowed(id, act, ScopeAny) {
		return true
	}
	if a.Status == models.StatusPublished && e.Allowed(id, act, ScopePublished) {
		return true
	}
	return owns(id, a) && e.Allowed(id, act, ScopeOwn)
}

// CanManageUsers reports whether the caller may list accounts and change roles.
func (e *Engine) CanManageUsers(id *Identity) bool {
	ok, err := e.enforcer.Enforce(subject(id), objUser, string(ActManage), string(ScopeAny))
	return err == nil && ok
}

// CanView reports whether the caller may read a.
func (e *Engine) CanView(id *Identity, a *models.Article) bool {
	return e.permits(id, ActRead, a)
}

// CanCreate reports whether the caller may create articles.
func (e *Engine) CanCreate(id *Identity) bool {
	return e.Allowed(id, ActCreate, ScopeAny)
}

// CanUpdate reports whether the caller may edit a.
func (e *Engine) CanUpdate(id *Identity, a *models.Article) bool {
	return e.permits(id, ActUpdate, a)
}

// CanDelete reports whether the caller may delete a.
func (e *Engine) CanDelete(id *Identity, a *models.Article) bool {
	return e.permits(id, ActDelete, a)
}

// ListFilter derives the predicate restricting a list query for the caller.
// requested is the status the caller asked for; empty means any.
//
// Callers without a published or own read grant only get published rows and
// their requested status is ignored. Callers with an own read grant get the
// requested status intersected with "published or mine".
func (e *Engine) ListFilter(id *Identity, requested models.ArticleStatus) Filter {
	switch {
	case e.Allowed(id, ActRead, ScopeAny):
		return Filter{Status: requested}
	case id != nil && e.Allowed(id, ActRead, ScopeOwn):
		owner := id.ID
		if e.Allowed(id, ActRead, ScopePublished) {
			return Filter{Status: requested, VisibleTo: &owner}
		}
		return Filter{Status: requested, AuthorID: &owner}
	case e.Allowed(id, ActRead, ScopePublished):
		return Filter{Status: models.StatusPublished}
	default:
		return Filter{None: true}
	}
}

// CanView reports whether the caller may read a, using the default engine.
func CanView(id *Identity, a *models.Article) bool { return defaultEngine.CanView(id, a) }

// CanCreate reports whether the caller may create articles, using the default engine.
func CanCreate(id *Identity) bool { return defaultEngine.CanCreate(id) }

// CanUpdate reports whether the caller may edit a, using the default engine.
func CanUpdate(id *Identity, a *models.Article) bool { return defaultEngine.CanUpdate(id, a) }

// CanDelete reports whether the caller may delete a, using the default engine.
func CanDelete(id *Identity, a *models.Article) bool { return defaultEngine.CanDelete(id, a) }

// CanManageUsers reports whether the caller may administer accounts, using the default engine.
func CanManageUsers(id *Identity) bool { return defaultEngine.CanManageUsers(id) }

// ListFilter derives a list predicate using the default engine.
func ListFilter(id *Identity, requested models.ArticleStatus) Filter {
	return defaultEngine.ListFilter(id, requested)
}
