package database

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/hillman/internal/config"
	"github.com/mrlokans/hillman/internal/entities"
)

var ErrMissingDSN = errors.New("database DSN is required for this driver")

// sqliteParams enables foreign keys so the ON DELETE rules on users, books and
// updates are enforced, and WAL so readers do not block the single writer.
// Transactions begin IMMEDIATE: the write lock is taken before the first read,
// so concurrent writers queue on the busy timeout instead of failing mid-way.
const sqliteParams = "_foreign_keys=on&_busy_timeout=5000&_journal=WAL&_txlock=immediate"

type Database struct {
	DB     *gorm.DB
	Driver config.DatabaseDriver
}

func NewDatabase(cfg config.Database) (*Database, error) {
	return open(cfg, logger.Warn)
}

// NewSQLite opens a SQLite database at path with the given gorm log level.
// CLI commands and tests use it to skip driver configuration.
func NewSQLite(path string, level logger.LogLevel) (*Database, error) {
	return open(config.Database{Driver: config.DriverSQLite, Path: path}, level)
}

func open(cfg config.Database, level logger.LogLevel) (*Database, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverSQLite
	}

	dialector, err := dialectorFor(driver, cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if driver == config.DriverSQLite {
		log.Printf("Database initialized successfully at %s", cfg.Path)
	} else {
		log.Printf("Database initialized successfully (%s)", driver)
	}

	return &Database{DB: db, Driver: driver}, nil
}

func dialectorFor(driver config.DatabaseDriver, cfg config.Database) (gorm.Dialector, error) {
	switch driver {
	case config.DriverSQLite:
		return sqlite.Open(SQLiteDSN(cfg.Path)), nil
	case config.DriverPostgres:
		if cfg.DSN == "" {
			return nil, ErrMissingDSN
		}
		return postgres.Open(cfg.DSN), nil
	case config.DriverMySQL:
		if cfg.DSN == "" {
			return nil, ErrMissingDSN
		}
		return mysql.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// SQLiteDSN appends the connection parameters every SQLite handle needs.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + sqliteParams
}

// Migrate creates or updates the schema. Books are migrated first because
// users and updates hold foreign keys into them.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entities.Book{},
		&entities.User{},
		&entities.Update{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// IsBusy reports whether err is SQLite refusing a lock after the busy timeout.
func IsBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) IsSQLite() bool {
	return d.Driver == config.DriverSQLite
}
