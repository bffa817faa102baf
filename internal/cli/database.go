// Package cli implements the one-shot maintenance commands of the hillman binary.
package cli

import (
	"log"

	"github.com/mrlokans/hillman/internal/config"
	"github.com/mrlokans/hillman/internal/database"
)

// openDatabase opens the configured database, or the SQLite file at path when
// one was given on the command line.
func openDatabase(cfg config.Database, path string) (*database.Database, error) {
	if path != "" {
		cfg = config.Database{Driver: config.DriverSQLite, Path: path}
	}
	return database.NewDatabase(cfg)
}

func closeDatabase(db *database.Database) {
	if err := db.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}
