package http

import (
	"github.com/mrlokans/hillman/internal/audit"
	"github.com/mrlokans/hillman/internal/auth"
	"github.com/mrlokans/hillman/internal/config"
	"github.com/mrlokans/hillman/internal/database"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database   *database.Database
	Reading    ReadingService
	BulkLoader BulkLoader
	Auditor    *audit.Service

	// Identity
	AuthService    *auth.Service
	AuthController *auth.AuthController
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	CSRFSecret     []byte
	SecureCookies  bool

	// Maintenance trigger (optional)
	AuditCleanup MaintenanceRunner

	BulkLoad config.BulkLoad

	// UI paths
	TemplatesPath string
	StaticPath    string

	// Application info
	Version string
}
