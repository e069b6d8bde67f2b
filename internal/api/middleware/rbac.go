package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/quill/internal/auth"
	"github.com/nebari-dev/quill/internal/policy"
)

// RequireUserAdmin ensures the caller holds the user management grant. It
// must run after auth.RequireAuth.
func RequireUserAdmin(engine *policy.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := auth.Identity(c)
		if id == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Not authorized to access this route",
			})
			return
		}

		if !engine.CanManageUsers(id) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "User role " + string(id.Role) + " is not authorized to access this route",
			})
			return
		}

		c.Next()
	}
}
