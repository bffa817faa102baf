package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/hillman/internal/auth"
	"github.com/mrlokans/hillman/internal/bulkload"
	"github.com/mrlokans/hillman/internal/config"
)

// LoadCommand bulk-loads users or books from a pipe-delimited file.
type LoadCommand struct {
	Kind         bulkload.Kind
	File         string
	Password     string
	DatabasePath string
	Verbose      bool

	config *config.Config
	out    io.Writer
}

// NewLoadUsersCommand creates the load-users command.
func NewLoadUsersCommand(cfg *config.Config) *LoadCommand {
	return &LoadCommand{Kind: bulkload.KindUsers, config: cfg, out: os.Stdout}
}

// NewLoadBooksCommand creates the load-books command.
func NewLoadBooksCommand(cfg *config.Config) *LoadCommand {
	return &LoadCommand{Kind: bulkload.KindBooks, config: cfg, out: os.Stdout}
}

func (cmd *LoadCommand) name() string {
	return "load-" + string(cmd.Kind)
}

func (cmd *LoadCommand) defaultFile() string {
	if cmd.Kind == bulkload.KindUsers {
		return cmd.config.BulkLoad.UsersFile
	}
	return cmd.config.BulkLoad.BooksFile
}

func (cmd *LoadCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet(cmd.name(), flag.ContinueOnError)

	fs.StringVar(&cmd.File, "file", cmd.defaultFile(), "Pipe-delimited file to load")
	fs.StringVar(&cmd.DatabasePath, "db", "", "SQLite database file (overrides DATABASE_DRIVER/DATABASE_PATH)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print every rejected line")
	if cmd.Kind == bulkload.KindUsers {
		fs.StringVar(&cmd.Password, "password", cmd.config.BulkLoad.DefaultPassword, "Password given to every loaded user")
	}

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s %s [options]\n\n", os.Args[0], cmd.name())
		if cmd.Kind == bulkload.KindUsers {
			fmt.Fprintf(os.Stderr, "Create one member per line; the first field is the username.\n\n")
		} else {
			fmt.Fprintf(os.Stderr, "Create one unrated book per line: title|author|genre|image\n\n")
		}
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s %s -file ./%s.txt\n", os.Args[0], cmd.name(), cmd.Kind)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.File == "" {
		fs.Usage()
		return fmt.Errorf("file is required")
	}
	if cmd.Kind == bulkload.KindUsers && cmd.Password == "" {
		fs.Usage()
		return fmt.Errorf("password is required")
	}
	return nil
}

func (cmd *LoadCommand) Run() error {
	if _, err := os.Stat(cmd.File); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", cmd.File)
	}

	db, err := openDatabase(cmd.config.Database, cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer closeDatabase(db)

	svc := auth.NewService(db.DB, cmd.config.Auth)
	loader := bulkload.NewLoader(db.DB, svc.HashPassword, cmd.Password)

	result, err := loader.LoadFile(cmd.Kind, cmd.File)
	if err != nil {
		return err
	}

	cmd.report(result)
	return nil
}

func (cmd *LoadCommand) report(result *bulkload.Result) {
	fmt.Fprintf(cmd.out, "Loaded %d %s from %s\n", result.Created, result.Kind, cmd.File)
	if result.Failed() == 0 {
		return
	}

	fmt.Fprintf(cmd.out, "%d lines rejected\n", result.Failed())
	if cmd.Verbose {
		for _, lineErr := range result.Errors {
			fmt.Fprintf(cmd.out, "  %v\n", lineErr)
		}
	}
}
