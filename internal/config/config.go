package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseDriver string

const (
	DriverSQLite   DatabaseDriver = "sqlite"
	DriverPostgres DatabaseDriver = "postgres"
	DriverMySQL    DatabaseDriver = "mysql"
)

type (
	Config struct {
		HTTP
		Global
		Database
		UI
		Tasks
		Auth
		Admin
		BulkLoad
		Reading
		Audit
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver DatabaseDriver
		Path   string // SQLite file, used when Driver is sqlite
		DSN    string // Connection string for postgres and mysql
	}
	UI struct {
		TemplatesPath string
		StaticPath    string
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Auth struct {
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		// Login rate limiting
		MaxLoginAttempts int
		RateLimitWindow  time.Duration
		LockoutDuration  time.Duration

		// Registration throttle, per client IP
		RegisterRatePerMinute int
		RegisterBurst         int
	}
	Admin struct {
		Username string
		Password string
	}
	BulkLoad struct {
		UsersFile       string
		BooksFile       string
		DefaultPassword string // Assigned to every bulk-loaded user
	}
	Reading struct {
		TimelinePageSize int
		RatingMin        int
		RatingMax        int
	}
	Audit struct {
		RetentionDays   int
		CleanupSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
)

// NewConfig reads configuration from the environment, after loading a .env
// file from the working directory if one exists.
func NewConfig() *Config {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("WARNING: failed to load .env: %v", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("templates_path", "./templates")
	v.SetDefault("static_path", "./static")

	// Auth defaults
	v.SetDefault("auth_session_secret", "")       // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")  // 24 hours
	v.SetDefault("auth_bcrypt_cost", 12)          // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)     // HTTPS-only cookies
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration
	v.SetDefault("register_rate_per_minute", 5)
	v.SetDefault("register_burst", 3)

	v.SetDefault("admin_username", DefaultAdminUsername)
	v.SetDefault("admin_password", DefaultAdminPassword)

	v.SetDefault("bulk_users_file", DefaultUsersFile)
	v.SetDefault("bulk_books_file", DefaultBooksFile)
	v.SetDefault("bulk_default_password", DefaultBulkPassword)

	v.SetDefault("timeline_page_size", DefaultTimelinePageSize)
	v.SetDefault("rating_min", DefaultRatingMin)
	v.SetDefault("rating_max", DefaultRatingMax)

	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "0 3 * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver: DatabaseDriver(v.GetString("DATABASE_DRIVER")),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			StaticPath:    v.GetString("STATIC_PATH"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Auth: Auth{
			SessionSecret:         v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:       v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:            v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:         v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts:      v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:       v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:       v.GetDuration("AUTH_LOCKOUT_DURATION"),
			RegisterRatePerMinute: v.GetInt("REGISTER_RATE_PER_MINUTE"),
			RegisterBurst:         v.GetInt("REGISTER_BURST"),
		},
		Admin: Admin{
			Username: v.GetString("ADMIN_USERNAME"),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
		BulkLoad: BulkLoad{
			UsersFile:       v.GetString("BULK_USERS_FILE"),
			BooksFile:       v.GetString("BULK_BOOKS_FILE"),
			DefaultPassword: v.GetString("BULK_DEFAULT_PASSWORD"),
		},
		Reading: Reading{
			TimelinePageSize: v.GetInt("TIMELINE_PAGE_SIZE"),
			RatingMin:        v.GetInt("RATING_MIN"),
			RatingMax:        v.GetInt("RATING_MAX"),
		},
		Audit: Audit{
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
	}
}
