package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/nebari-dev/quill/internal/models"
)

var (
	aliceID = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	bobID   = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
)

func ident(id uuid.UUID, role models.Role) *Identity {
	return &Identity{ID: id, Role: role}
}

func article(author uuid.UUID, status models.ArticleStatus) *models.Article {
	return &models.Article{ID: uuid.New(), AuthorID: author, Status: status}
}

// callers enumerates anonymous plus every role, each as alice.
func callers() map[string]*Identity {
	out := map[string]*Identity{"anonymous": nil}
	for _, r := range models.Roles {
		out[string(r)] = ident(aliceID, r)
	}
	return out
}

// articles enumerates every status/ownership combination relative to alice.
func articles() map[string]*models.Article {
	return map[string]*models.Article{
		"own draft":       article(aliceID, models.StatusDraft),
		"own published":   article(aliceID, models.StatusPublished),
		"other draft":     article(bobID, models.StatusDraft),
		"other published": article(bobID, models.StatusPublished),
	}
}

func TestCanView(t *testing.T) {
	tests := []struct {
		caller  string
		article string
		want    bool
	}{
		{"anonymous", "own draft", false},
		{"anonymous", "other draft", false},
		{"anonymous", "other published", true},

		{"VIEWER", "own draft", true},
		{"VIEWER", "own published", true},
		{"VIEWER", "other draft", false},
		{"VIEWER", "other published", true},

		{"EDITOR", "own draft", true},
		{"EDITOR", "other draft", false},
		{"EDITOR", "other published", true},

		{"ADMIN", "own draft", true},
		{"ADMIN", "other draft", true},
		{"ADMIN", "other published", true},
	}

	cs, as := callers(), articles()
	for _, tt := range tests {
		t.Run(tt.caller+"/"+tt.article, func(t *testing.T) {
			if got := CanView(cs[tt.caller], as[tt.article]); got != tt.want {
				t.Errorf("CanView = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanView_NilArticle(t *testing.T) {
	if CanView(ident(aliceID, models.RoleAdmin), nil) {
		t.Error("expected nil article to be invisible")
	}
}

func TestCanView_AuthorAlwaysSeesOwn(t *testing.T) {
	for name, id := range callers() {
		if id == nil {
			continue
		}
		for _, status := range []models.ArticleStatus{models.StatusDraft, models.StatusPublished} {
			if !CanView(id, article(id.ID, status)) {
				t.Errorf("%s cannot view own %s article", name, status)
			}
		}
	}
}

func TestCanCreate(t *testing.T) {
	want := map[string]bool{
		"anonymous": false,
		"VIEWER":    false,
		"EDITOR":    true,
		"ADMIN":     true,
	}
	for name, id := range callers() {
		if got := CanCreate(id); got != want[name] {
			t.Errorf("CanCreate(%s) = %v, want %v", name, got, want[name])
		}
	}
}

func TestCanUpdate(t *testing.T) {
	tests := []struct {
		caller  string
		article string
		want    bool
	}{
		{"anonymous", "other published", false},
		{"VIEWER", "own draft", false},
		{"VIEWER", "other published", false},
		{"EDITOR", "own draft", true},
		{"EDITOR", "own published", true},
		{"EDITOR", "other draft", false},
		{"EDITOR", "other published", false},
		{"ADMIN", "other draft", true},
		{"ADMIN", "other published", true},
	}

	cs, as := callers(), articles()
	for _, tt := range tests {
		t.Run(tt.caller+"/"+tt.article, func(t *testing.T) {
			if got := CanUpdate(cs[tt.caller], as[tt.article]); got != tt.want {
				t.Errorf("CanUpdate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanUpdate_MonotonicInPrivilege(t *testing.T) {
	admin := ident(aliceID, models.RoleAdmin)
	editor := ident(aliceID, models.RoleEditor)
	viewer := ident(aliceID, models.RoleViewer)

	for name, a := range articles() {
		if CanUpdate(editor, a) && !CanUpdate(admin, a) {
			t.Errorf("%s: editor may update but admin may not", name)
		}
		if CanUpdate(viewer, a) {
			t.Errorf("%s: viewer may update", name)
		}
	}
}

func TestCanDelete_OnlyAdmin(t *testing.T) {
	for cname, id := range callers() {
		for aname, a := range articles() {
			want := id != nil && id.Role == models.RoleAdmin
			if got := CanDelete(id, a); got != want {
				t.Errorf("CanDelete(%s, %s) = %v, want %v", cname, aname, got, want)
			}
		}
	}
}

func TestListFilter_Shapes(t *testing.T) {
	t.Run("anonymous ignores requested status", func(t *testing.T) {
		f := ListFilter(nil, models.StatusDraft)
		if f.Status != models.StatusPublished || f.VisibleTo != nil || f.None {
			t.Errorf("unexpected filter: %+v", f)
		}
	})

	t.Run("viewer intersects requested status", func(t *testing.T) {
		f := ListFilter(ident(aliceID, models.RoleViewer), models.StatusDraft)
		if f.Status != models.StatusDraft {
			t.Errorf("expected status DRAFT, got %q", f.Status)
		}
		if f.VisibleTo == nil || *f.VisibleTo != aliceID {
			t.Errorf("expected visibility restricted to alice, got %+v", f.VisibleTo)
		}
	})

	t.Run("admin unconstrained", func(t *testing.T) {
		f := ListFilter(ident(aliceID, models.RoleAdmin), "")
		if f != (Filter{}) {
			t.Errorf("expected empty filter, got %+v", f)
		}
	})

	t.Run("admin keeps requested status", func(t *testing.T) {
		f := ListFilter(ident(aliceID, models.RoleAdmin), models.StatusDraft)
		if f != (Filter{Status: models.StatusDraft}) {
			t.Errorf("unexpected filter: %+v", f)
		}
	})
}

// The list filter must agree with CanView on every article, intersected with the
// requested status for authenticated callers.
func TestListFilter_AgreesWithCanView(t *testing.T) {
	requests := []models.ArticleStatus{"", models.StatusDraft, models.StatusPublished}

	for cname, id := range callers() {
		for _, req := range requests {
			f := ListFilter(id, req)
			for aname, a := range articles() {
				want := CanView(id, a)
				if id != nil && req != "" {
					want = want && a.Status == req
				}
				if got := f.Matches(a); got != want {
					t.Errorf("%s requesting %q on %s: Matches = %v, want %v", cname, req, aname, got, want)
				}
			}
		}
	}
}

func TestListFilter_AnonymousNeverSeesDrafts(t *testing.T) {
	for _, req := range []models.ArticleStatus{"", models.StatusDraft, models.StatusPublished, "ARCHIVED"} {
		f := ListFilter(nil, req)
		for name, a := range articles() {
			if a.Status == models.StatusDraft && f.Matches(a) {
				t.Errorf("anonymous filter for %q matched %s", req, name)
			}
		}
	}
}

func TestUnknownRoleHasNoGrants(t *testing.T) {
	id := ident(aliceID, models.Role("SUPERUSER"))
	a := article(aliceID, models.StatusDraft)

	if CanView(id, a) || CanCreate(id) || CanUpdate(id, a) || CanDelete(id, a) {
		t.Error("unknown role should be denied everything")
	}
	if f := ListFilter(id, ""); !f.None {
		t.Errorf("expected match-nothing filter, got %+v", f)
	}
}

func TestNewFromPolicy_CustomGrants(t *testing.T) {
	e, err := NewFromPolicy("p, VIEWER, article, read, own\n")
	if err != nil {
		t.Fatalf("NewFromPolicy: %v", err)
	}
	viewer := ident(aliceID, models.RoleViewer)

	if e.CanView(viewer, article(bobID, models.StatusPublished)) {
		t.Error("viewer without a published grant should not see others' articles")
	}
	if !e.CanView(viewer, article(aliceID, models.StatusDraft)) {
		t.Error("viewer should see own draft")
	}

	f := e.ListFilter(viewer, "")
	if f.AuthorID == nil || *f.AuthorID != aliceID || f.VisibleTo != nil {
		t.Errorf("expected author-only filter, got %+v", f)
	}
	if e.ListFilter(nil, "").None != true {
		t.Error("anonymous without grants should match nothing")
	}
}

func TestCanManageUsers(t *testing.T) {
	for name, id := range callers() {
		want := name == "ADMIN"
		if got := CanManageUsers(id); got != want {
			t.Errorf("CanManageUsers(%s) = %v, want %v", name, got, want)
		}
	}
}
