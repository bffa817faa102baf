package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/hillman/internal/audit"
	"github.com/mrlokans/hillman/internal/auth"
	"github.com/mrlokans/hillman/internal/bulkload"
	"github.com/mrlokans/hillman/internal/database"
	"github.com/mrlokans/hillman/internal/http"
	"github.com/mrlokans/hillman/internal/reading"
	"github.com/mrlokans/hillman/internal/scheduler"
	"github.com/mrlokans/hillman/internal/tasks"
)

// =============================================================================
// Domain Services
// =============================================================================

var _ http.ReadingService = (*reading.Service)(nil)
var _ http.UserCreator = (*auth.Service)(nil)
var _ auth.UserLoader = (*auth.Service)(nil)
var _ http.BulkLoader = (*bulkload.Loader)(nil)

// =============================================================================
// Audit and Maintenance
// =============================================================================

var _ http.AuditLog = (*audit.Service)(nil)
var _ http.AuditEventReader = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ http.MaintenanceRunner = (*scheduler.AuditCleanupScheduler)(nil)

// =============================================================================
// Infrastructure
// =============================================================================

var _ http.Pinger = (*database.Database)(nil)
var _ http.Flasher = (*auth.SessionManager)(nil)
