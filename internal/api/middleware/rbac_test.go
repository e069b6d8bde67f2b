package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nebari-dev/quill/internal/auth"
	"github.com/nebari-dev/quill/internal/models"
	"github.com/nebari-dev/quill/internal/policy"
)

func TestRequireUserAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		identity   *policy.Identity
		wantStatus int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"viewer", &policy.Identity{ID: uuid.New(), Role: models.RoleViewer}, http.StatusForbidden},
		{"editor", &policy.Identity{ID: uuid.New(), Role: models.RoleEditor}, http.StatusForbidden},
		{"admin", &policy.Identity{ID: uuid.New(), Role: models.RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/admin",
				func(c *gin.Context) {
					if tt.identity != nil {
						c.Set(auth.IdentityContextKey, tt.identity)
					}
				},
				RequireUserAdmin(policy.Default()),
				func(c *gin.Context) { c.Status(http.StatusOK) },
			)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}
