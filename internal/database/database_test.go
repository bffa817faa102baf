package database

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/hillman/internal/config"
	"github.com/mrlokans/hillman/internal/entities"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := open(config.Database{Driver: config.DriverSQLite, Path: dbPath}, logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabase_MigratesSchema(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"users", "books", "updates", "audit_events"} {
		assert.True(t, db.DB.Migrator().HasTable(table), "missing table %s", table)
	}
	assert.True(t, db.IsSQLite())
	assert.NoError(t, db.Ping())
}

func TestNewDatabase_ForeignKeysEnforced(t *testing.T) {
	db := setupTestDB(t)

	var enabled int
	require.NoError(t, db.DB.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)

	// An update pointing at a missing user and book must be rejected.
	err := db.DB.Exec(
		"INSERT INTO updates (type, author_username, book_title, timestamp) VALUES (?, ?, ?, CURRENT_TIMESTAMP)",
		entities.UpdateTypeReading, "ghost", "Missing Book",
	).Error
	assert.Error(t, err)
}

func TestNewDatabase_CascadeOnUserDelete(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.DB.Create(&entities.Book{Title: "Dune", Author: "Frank Herbert", Genre: "scifi"}).Error)
	require.NoError(t, db.DB.Create(&entities.User{Username: "alice", PasswordHash: "x", Role: entities.UserRoleMember}).Error)
	require.NoError(t, db.DB.Exec(
		"INSERT INTO updates (type, author_username, book_title, timestamp) VALUES (?, ?, ?, CURRENT_TIMESTAMP)",
		entities.UpdateTypeReading, "alice", "Dune",
	).Error)

	require.NoError(t, db.DB.Exec("DELETE FROM users WHERE username = ?", "alice").Error)

	var count int64
	require.NoError(t, db.DB.Model(&entities.Update{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDialectorFor(t *testing.T) {
	t.Run("server drivers require a DSN", func(t *testing.T) {
		_, err := dialectorFor(config.DriverPostgres, config.Database{})
		assert.ErrorIs(t, err, ErrMissingDSN)

		_, err = dialectorFor(config.DriverMySQL, config.Database{})
		assert.ErrorIs(t, err, ErrMissingDSN)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := dialectorFor("oracle", config.Database{})
		assert.Error(t, err)
	})

	t.Run("server drivers build a dialector", func(t *testing.T) {
		d, err := dialectorFor(config.DriverPostgres, config.Database{DSN: "postgres://u:p@localhost/db"})
		require.NoError(t, err)
		assert.Equal(t, "postgres", d.Name())

		d, err = dialectorFor(config.DriverMySQL, config.Database{DSN: "u:p@tcp(localhost:3306)/db"})
		require.NoError(t, err)
		assert.Equal(t, "mysql", d.Name())
	})
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "app.db?"+sqliteParams, SQLiteDSN("app.db"))
	assert.Equal(t, "file:app.db?cache=shared&"+sqliteParams, SQLiteDSN("file:app.db?cache=shared"))
}

func TestSQLiteDSN_ImmediateTransactions(t *testing.T) {
	assert.Contains(t, SQLiteDSN("app.db"), "_txlock=immediate")
}

func TestIsBusy(t *testing.T) {
	busy := sqlite3.Error{Code: sqlite3.ErrBusy}
	locked := sqlite3.Error{Code: sqlite3.ErrLocked}

	assert.True(t, IsBusy(busy))
	assert.True(t, IsBusy(fmt.Errorf("failed to update rating: %w", locked)))
	assert.False(t, IsBusy(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	assert.False(t, IsBusy(errors.New("database is locked")))
	assert.False(t, IsBusy(nil))
}
