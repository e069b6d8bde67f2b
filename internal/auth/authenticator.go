package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/quill/internal/models"
	"github.com/nebari-dev/quill/internal/policy"
	"github.com/nebari-dev/quill/internal/store"
)

const (
	// UserContextKey is the key used to store the loaded user in Gin context
	UserContextKey = "user"
	// IdentityContextKey is the key used to store the resolved identity in Gin context
	IdentityContextKey = "identity"
)

// Authenticator resolves request credentials into identities.
type Authenticator struct {
	tokens        *Tokens
	users         UserFinder
	cookieName    string
	secureCookies bool
}

// NewAuthenticator creates an authenticator. Roles are always read through
// users, never trusted from the token.
func NewAuthenticator(tokens *Tokens, users UserFinder, cookieName string, secureCookies bool) *Authenticator {
	if cookieName == "" {
		cookieName = "token"
	}
	return &Authenticator{
		tokens:        tokens,
		users:         users,
		cookieName:    cookieName,
		secureCookies: secureCookies,
	}
}

// Tokens returns the token issuer.
func (a *Authenticator) Tokens() *Tokens {
	return a.tokens
}

// TokenFromRequest returns the raw credential, preferring the session cookie
// over an Authorization: Bearer header.
func (a *Authenticator) TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(a.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// Authenticate verifies raw and loads its user from the store. Credential
// problems wrap ErrUnauthenticated; anything else is a lookup failure.
func (a *Authenticator) Authenticate(ctx context.Context, raw string) (*models.User, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, ErrMissingToken)
	}

	userID, err := a.tokens.Verify(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	user, err := a.users.FindUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, ErrUserGone)
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	return user, nil
}

// Resolve is the optional-auth form of Authenticate: any failure yields an
// anonymous (nil) identity.
func (a *Authenticator) Resolve(ctx context.Context, raw string) *policy.Identity {
	return IdentityOf(a.resolveUser(ctx, raw))
}

// resolveUser loads the caller behind raw, or nil when there is none or the
// credential does not check out.
func (a *Authenticator) resolveUser(ctx context.Context, raw string) *models.User {
	if raw == "" {
		return nil
	}
	user, err := a.Authenticate(ctx, raw)
	if err != nil {
		slog.Debug("Ignoring invalid credential on optional route", "error", err)
		return nil
	}
	return user
}

// IdentityOf projects a user onto the identity the policy engine consumes.
func IdentityOf(user *models.User) *policy.Identity {
	if user == nil {
		return nil
	}
	return &policy.Identity{ID: user.ID, Role: user.Role}
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(UserContextKey, user)
	c.Set(IdentityContextKey, IdentityOf(user))
}

// RequireAuth returns a Gin middleware that rejects requests without a valid credential.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := a.Authenticate(c.Request.Context(), a.TokenFromRequest(c.Request))
		if err != nil && !errors.Is(err, ErrUnauthenticated) {
			slog.Error("Failed to resolve caller", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal server error",
			})
			return
		}
		if err != nil {
			slog.Debug("Rejected unauthenticated request", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": unauthenticatedMessage(err),
			})
			return
		}
		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth returns a Gin middleware that resolves the caller when it can
// and otherwise lets the request through anonymously.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := a.resolveUser(c.Request.Context(), a.TokenFromRequest(c.Request)); user != nil {
			setUser(c, user)
		}
		c.Next()
	}
}

func unauthenticatedMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return "Not authorized to access this route"
	case errors.Is(err, ErrUserGone):
		return "User no longer exists"
	default:
		return "Invalid or expired token"
	}
}

// Identity returns the caller resolved by the middleware; nil means anonymous.
func Identity(c *gin.Context) *policy.Identity {
	value, exists := c.Get(IdentityContextKey)
	if !exists {
		return nil
	}
	id, _ := value.(*policy.Identity)
	return id
}

// GetUserFromContext extracts the authenticated user from the Gin context
func GetUserFromContext(c *gin.Context) (*models.User, error) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return nil, ErrUnauthenticated
	}

	user, ok := value.(*models.User)
	if !ok {
		return nil, errors.New("invalid user in context")
	}
	return user, nil
}

// SetSessionCookie stores token in an HttpOnly cookie for the token lifetime.
func (a *Authenticator) SetSessionCookie(c *gin.Context, token string) {
	a.writeCookie(c, token, int(a.tokens.Duration().Seconds()))
}

// ClearSessionCookie expires the session cookie.
func (a *Authenticator) ClearSessionCookie(c *gin.Context) {
	a.writeCookie(c, "", -1)
}

func (a *Authenticator) writeCookie(c *gin.Context, value string, maxAge int) {
	if a.secureCookies {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(a.cookieName, value, maxAge, "/", "", a.secureCookies, true)
}
