// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Domain Interfaces
//
//   - Catalog, Timeline, Administration: member and admin operations
//     (internal/http/stores.go), implemented by reading.Service
//   - UserCreator: account creation with a role, implemented by auth.Service
//   - BulkLoader: pipe-delimited users/books loading, implemented by bulkload.Loader
//   - UserLoader: resolves a session to a user (internal/auth/middleware.go)
//
// ## Audit and Maintenance Interfaces
//
//   - AuditLog / AuditEventReader: write and read the audit trail (internal/http)
//   - AuditEventCleaner: retention cleanup (internal/tasks/cleanup_audit.go)
//   - TaskQueue: where scheduled jobs are sent (internal/scheduler/audit_cleanup.go)
//   - MaintenanceRunner: on-demand job trigger for the admin pages
//
// # Adding a New Bulk Format
//
//  1. Add a Kind and a line parser in internal/bulkload/parser.go
//
//     const KindReviews Kind = "reviews"
//
//     func ParseReview(text string) (*entities.Update, error)
//
//  2. Insert the parsed rows in Loader.Load, one transaction per line
//
//  3. Add a CLI command in internal/cli/load.go and a route in router.go
//
// # Adding a New Database Domain
//
// To add a new data domain (e.g., follows):
//
//  1. Create sub-package: internal/database/follows/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Register the entity in database.Migrate
//
//  4. Use it from a service inside db.Transaction with NewRepository(tx)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
