// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, driver selection, migrations
//	├── books/           # Catalog reads, rating compare-and-swap, bulk removal
//	├── users/           # User CRUD and the currently-reading pointer
//	├── updates/         # Timeline entries and keyset pagination
//	└── audit/           # Audit trail persistence
//
// # Drivers
//
// SQLite is the default. Set DATABASE_DRIVER to "postgres" or "mysql" and
// DATABASE_DSN to a connection string to use a server database instead.
//
// # Transactions
//
// Repositories wrap whatever *gorm.DB they are given, so a service composes
// several of them inside one transaction:
//
//	err := db.Transaction(func(tx *gorm.DB) error {
//		if err := users.NewRepository(tx).SetReading(name, &title); err != nil {
//			return err
//		}
//		return updates.NewRepository(tx).Create(update)
//	})
//
// Errors are returned as gorm reports them (TranslateError is on, so duplicate
// keys surface as gorm.ErrDuplicatedKey); translating them into domain errors
// is the caller's job.
package database
