package auth

import (
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/hillman/internal/apperrors"
	"github.com/mrlokans/hillman/internal/audit"
	"github.com/mrlokans/hillman/internal/config"
	"github.com/mrlokans/hillman/internal/entities"
)

const (
	MsgLoggedOut       = "You have been logged out."
	MsgRegistered      = "You have successfully registered for an account!"
	MsgTooManyLogins   = "Too many login attempts. Please try again later."
	MsgTooManyRegister = "Too many registrations from this address. Please try again later."
)

// isLocalPath validates that a redirect path is local to prevent open redirect attacks.
func isLocalPath(path string) bool {
	if path == "" || !strings.HasPrefix(path, "/") {
		return false
	}
	// Protocol-relative URLs (//evil.com)
	if strings.HasPrefix(path, "//") {
		return false
	}
	if strings.Contains(path, "://") || strings.Contains(path, "\\") {
		return false
	}
	return true
}

// sanitizeRedirectPath returns a safe redirect path, defaulting to the timeline.
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/timeline"
}

// AuthController handles login, registration and logout.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	templates      *template.Template
	rateLimiter    *RateLimiter
	registrations  *RegistrationThrottle
	auditor        *audit.Service
}

// NewAuthController creates a new authentication controller. Templates are read
// from <templatesPath>/auth; when none exist every page is answered with JSON.
func NewAuthController(service *Service, sessionManager *SessionManager, templatesPath string, cfg config.Auth, auditor *audit.Service) *AuthController {
	var tmpl *template.Template
	if templatesPath != "" {
		pattern := filepath.Join(templatesPath, "auth", "*.html")
		if matches, _ := filepath.Glob(pattern); len(matches) > 0 {
			parsed, err := template.ParseFiles(matches...)
			if err != nil {
				log.Printf("[auth] failed to parse templates: %v", err)
			} else {
				tmpl = parsed
			}
		}
	}

	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		templates:      tmpl,
		rateLimiter: NewRateLimiter(RateLimitConfig{
			MaxAttempts:     cfg.MaxLoginAttempts,
			WindowDuration:  cfg.RateLimitWindow,
			LockoutDuration: cfg.LockoutDuration,
		}),
		registrations: NewRegistrationThrottle(cfg.RegisterRatePerMinute, cfg.RegisterBurst),
		auditor:       auditor,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/", ac.Index)
	router.GET("/login", ac.LoginPage)
	router.POST("/login", ac.Login)
	router.GET("/register", ac.RegisterPage)
	router.POST("/register", ac.Register)
	router.GET("/logout", ac.Logout)
	router.POST("/logout", ac.Logout)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

// Index sends visitors to the login page, which forwards signed-in users on.
func (ac *AuthController) Index(c *gin.Context) {
	c.Redirect(http.StatusFound, "/login")
}

// LoginPage renders the login form.
func (ac *AuthController) LoginPage(c *gin.Context) {
	if CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/timeline")
		return
	}

	ac.render(c, http.StatusOK, "login.html", gin.H{
		"Title": "Login",
		"Next":  sanitizeRedirectPath(c.Query("next")),
		"Error": c.Query("error"),
	})
}

// Login handles the login form submission.
func (ac *AuthController) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	next := sanitizeRedirectPath(c.PostForm("next"))
	clientIP := c.ClientIP()

	data := gin.H{"Title": "Login", "Next": next, "Username": username}

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, username); !allowed {
		c.Header("Retry-After", retryAfter.String())
		data["Error"] = MsgTooManyLogins
		ac.render(c, http.StatusTooManyRequests, "login.html", data)
		return
	}

	user, err := ac.service.Authenticate(username, password)
	if err != nil {
		if apperrors.Is(err, apperrors.KindAuth) {
			ac.rateLimiter.RecordFailure(clientIP, username)
		}
		ac.auditor.LogAuth(username, "login_failed", clientIP, err)
		ac.renderError(c, "login.html", data, err)
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, username)
	if err := ac.sessionManager.CreateSession(c.Request, user.Username); err != nil {
		ac.renderError(c, "login.html", data, err)
		return
	}
	ac.auditor.LogAuth(user.Username, "login", clientIP, nil)

	if WantsJSON(c) {
		c.JSON(http.StatusOK, user)
		return
	}
	c.Redirect(http.StatusFound, next)
}

// RegisterPage renders the registration form.
func (ac *AuthController) RegisterPage(c *gin.Context) {
	ac.render(c, http.StatusOK, "register.html", gin.H{"Title": "Register"})
}

// Register creates a member account and signs it in.
func (ac *AuthController) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	clientIP := c.ClientIP()

	data := gin.H{"Title": "Register", "Username": username}

	if !ac.registrations.Allow(clientIP) {
		data["Error"] = MsgTooManyRegister
		ac.render(c, http.StatusTooManyRequests, "register.html", data)
		return
	}

	user, err := ac.service.CreateUser(username, password, entities.UserRoleMember)
	if err != nil {
		ac.auditor.LogAuth(username, "register_failed", clientIP, err)
		ac.renderError(c, "register.html", data, err)
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, user.Username); err != nil {
		ac.renderError(c, "register.html", data, err)
		return
	}
	ac.auditor.LogAuth(user.Username, "register", clientIP, nil)

	if WantsJSON(c) {
		c.JSON(http.StatusCreated, user)
		return
	}
	ac.sessionManager.AddFlash(c.Request, "Welcome "+user.Username+"!")
	ac.sessionManager.AddFlash(c.Request, MsgRegistered)
	c.Redirect(http.StatusFound, "/timeline")
}

// Logout destroys the session and redirects to login.
func (ac *AuthController) Logout(c *gin.Context) {
	username := ac.sessionManager.GetUsername(c.Request)
	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		log.Printf("[auth] failed to destroy session: %v", err)
	}
	if username != "" {
		ac.auditor.LogAuth(username, "logout", c.ClientIP(), nil)
	}

	if WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"message": MsgLoggedOut})
		return
	}
	ac.sessionManager.AddFlash(c.Request, MsgLoggedOut)
	c.Redirect(http.StatusFound, "/login")
}

// renderError shows the user-facing message of err on the form it came from.
func (ac *AuthController) renderError(c *gin.Context, name string, data gin.H, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[auth] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	data["Error"] = apperrors.Message(err)
	ac.render(c, status, name, data)
}

// render executes an auth template or falls back to JSON.
func (ac *AuthController) render(c *gin.Context, status int, name string, data gin.H) {
	if ac.templates == nil || WantsJSON(c) {
		if msg, ok := data["Error"].(string); ok && msg != "" {
			c.JSON(status, gin.H{"error": msg})
			return
		}
		c.JSON(status, data)
		return
	}

	data["CSRFToken"] = GetCSRFToken(c)
	data["CSRFField"] = CSRFFormField
	data["Flashes"] = ac.sessionManager.PopFlashes(c.Request)

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := ac.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		log.Printf("[auth] template %s: %v", name, err)
	}
}
