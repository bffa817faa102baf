package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/hillman/internal/auth"
	"github.com/mrlokans/hillman/internal/config"
)

// InitDBCommand creates the schema and seeds the admin account.
type InitDBCommand struct {
	AdminUsername string
	AdminPassword string
	DatabasePath  string

	config *config.Config
}

func NewInitDBCommand(cfg *config.Config) *InitDBCommand {
	return &InitDBCommand{config: cfg}
}

func (cmd *InitDBCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("initdb", flag.ContinueOnError)

	fs.StringVar(&cmd.AdminUsername, "admin-user", cmd.config.Admin.Username, "Username of the admin account")
	fs.StringVar(&cmd.AdminPassword, "admin-password", cmd.config.Admin.Password, "Password of the admin account")
	fs.StringVar(&cmd.DatabasePath, "db", "", "SQLite database file (overrides DATABASE_DRIVER/DATABASE_PATH)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s initdb [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create the database schema and the admin account. Existing data is kept.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s initdb\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s initdb -admin-user root -admin-password s3cret -db ./hillman.db\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.AdminUsername == "" || cmd.AdminPassword == "" {
		fs.Usage()
		return fmt.Errorf("admin username and password are required")
	}
	return nil
}

func (cmd *InitDBCommand) Run() error {
	db, err := openDatabase(cmd.config.Database, cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer closeDatabase(db)

	svc := auth.NewService(db.DB, cmd.config.Auth)
	created, err := svc.EnsureAdmin(cmd.AdminUsername, cmd.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	if created {
		fmt.Printf("Initialized the database, admin account %q created\n", cmd.AdminUsername)
	} else {
		fmt.Printf("Initialized the database, admin account %q already exists\n", cmd.AdminUsername)
	}
	return nil
}
