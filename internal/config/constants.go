package config

const (
	// DefaultDatabasePath is the default path for the SQLite database
	DefaultDatabasePath = "./hillman.db"

	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin"

	// Flat files read by the bulk loaders, one record per line
	DefaultUsersFile = "users.txt"
	DefaultBooksFile = "books.txt"

	DefaultBulkPassword = "p"

	DefaultTimelinePageSize = 30
	DefaultRatingMin        = 1
	DefaultRatingMax        = 10
)
