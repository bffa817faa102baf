package auth

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/hillman/internal/apperrors"
	"github.com/mrlokans/hillman/internal/entities"
)

// Context keys for identity data
const (
	ContextKeyUser     = "auth_user"
	ContextKeyUsername = "auth_username"
)

// MsgNotAdmin is flashed when a member opens an administrative page.
const MsgNotAdmin = "You do not have administrative privileges"

// Identity is the capability surface the admin gate checks.
type Identity interface {
	IsAdmin() bool
}

// UserLoader resolves a session username to a stored user.
type UserLoader interface {
	GetUser(username string) (*entities.User, error)
}

// Middleware resolves the session identity and guards protected routes.
type Middleware struct {
	users          UserLoader
	sessionManager *SessionManager
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(users UserLoader, sessionManager *SessionManager) *Middleware {
	return &Middleware{
		users:          users,
		sessionManager: sessionManager,
	}
}

// Handler loads the user named by the session into the Gin context. It never
// aborts: anonymous requests pass through so public pages keep working, and
// RequireUser / RequireAdmin decide what is protected.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.sessionManager == nil {
			c.Next()
			return
		}

		username := m.sessionManager.GetUsername(c.Request)
		if username == "" {
			c.Next()
			return
		}

		user, err := m.users.GetUser(username)
		switch {
		case err == nil:
			c.Set(ContextKeyUser, user)
			c.Set(ContextKeyUsername, user.Username)
		case apperrors.Is(err, apperrors.KindNotFound):
			// The account was removed while the session was live.
			m.sessionManager.Forget(c.Request)
		default:
			log.Printf("[auth] failed to load session user %q: %v", username, err)
		}

		c.Next()
	}
}

// RequireUser rejects requests without a resolved identity. Browsers are sent to
// the login page; JSON clients get 401.
func (m *Middleware) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}

		if WantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// RequireAdmin lets through only identities holding the privileged role.
// Anonymous requests are handled like RequireUser.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	requireUser := m.RequireUser()

	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			requireUser(c)
			return
		}

		var identity Identity = user
		if identity.IsAdmin() {
			c.Next()
			return
		}

		if WantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": apperrors.Authorization(MsgNotAdmin).Message,
			})
			return
		}

		if m.sessionManager != nil {
			m.sessionManager.AddFlash(c.Request, MsgNotAdmin)
		}
		c.Redirect(http.StatusFound, "/timeline")
		c.Abort()
	}
}

// WantsJSON determines if this is an API client rather than a browser.
func WantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *entities.User {
	if v, exists := c.Get(ContextKeyUser); exists {
		if user, ok := v.(*entities.User); ok {
			return user
		}
	}
	return nil
}

// GetUsername retrieves the authenticated user's username from the context.
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}
