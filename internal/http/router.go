package http

import (
	"html/template"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/hillman/internal/auth"
)

var templateFuncs = template.FuncMap{
	"pathEscape": url.PathEscape,
	"formatTime": func(t time.Time) string {
		return t.Local().Format("Jan 2, 2006 15:04")
	},
	"deref": func(v *int) int {
		if v == nil {
			return 0
		}
		return *v
	},
}

// loadTemplates installs the page templates when the directory has any and
// reports whether HTML rendering is available.
func loadTemplates(router *gin.Engine, templatesPath string) bool {
	if templatesPath == "" {
		return false
	}
	pattern := filepath.Join(templatesPath, "*.html")
	if matches, _ := filepath.Glob(pattern); len(matches) == 0 {
		log.Printf("[http] no templates in %s, serving JSON only", templatesPath)
		return false
	}

	tmpl := template.Must(template.New("").Funcs(templateFuncs).ParseGlob(pattern))
	router.SetHTMLTemplate(tmpl)
	return true
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}
	router.Use(cfg.SessionManager.SessionLoadSave())
	router.Use(cfg.AuthMiddleware.Handler())

	// Inject auth data for templates
	router.Use(AuthContextMiddleware())

	html := loadTemplates(router, cfg.TemplatesPath)
	if cfg.StaticPath != "" {
		if _, err := os.Stat(cfg.StaticPath); err == nil {
			router.Static("/static", cfg.StaticPath)
		}
	}

	presenter := NewPresenter(html, cfg.SessionManager)

	var db Pinger
	if cfg.Database != nil {
		db = cfg.Database
	}
	health := NewHealthController(db, cfg.Version)
	booksController := NewBooksController(cfg.Reading, presenter)
	timelineController := NewTimelineController(cfg.Reading, presenter)
	adminController := NewAdminController(cfg.Reading, cfg.AuthService, cfg.BulkLoader, cfg.BulkLoad, cfg.Auditor, presenter)
	auditController := NewAuditController(cfg.Auditor, cfg.AuditCleanup, presenter)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	// Login, registration, logout and the root redirect
	cfg.AuthController.RegisterRoutes(router)

	members := router.Group("/", cfg.AuthMiddleware.RequireUser())
	members.GET("/books", booksController.ListBooks)
	members.GET("/suggested_books", booksController.SuggestedBooks)
	members.GET("/book/:title", booksController.GetBook)
	members.POST("/begin/:title", booksController.BeginReading)
	members.GET("/review/:title", booksController.ReviewPage)
	members.POST("/review/:title", booksController.SubmitReview)
	members.GET("/timeline", timelineController.Timeline)

	admin := router.Group("/", cfg.AuthMiddleware.RequireAdmin())
	admin.GET("/manage", adminController.ManagePage)
	admin.POST("/manage", adminController.AddUser)
	admin.POST("/remove/:username", adminController.RemoveUser)
	admin.POST("/remove_update/:id", adminController.RemoveUpdate)
	admin.GET("/showbooks", adminController.ShowBooks)
	admin.GET("/showusers", adminController.ShowUsers)
	admin.POST("/loadusers", adminController.LoadUsers)
	admin.POST("/loadbooks", adminController.LoadBooks)
	admin.POST("/clearbooks", adminController.ClearBooks)
	admin.GET("/audit", auditController.AuditLog)
	admin.POST("/audit/cleanup", auditController.RunCleanup)

	return router
}
