package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/hillman/internal/cli"
	"github.com/mrlokans/hillman/internal/config"
	"github.com/mrlokans/hillman/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// command is implemented by every CLI subcommand.
type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "initdb":
		cmd = cli.NewInitDBCommand(config.NewConfig())
	case "load-users":
		cmd = cli.NewLoadUsersCommand(config.NewConfig())
	case "load-books":
		cmd = cli.NewLoadBooksCommand(config.NewConfig())
	case "version":
		fmt.Printf("hillman %s (%s)\n", Version, Commit)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve        Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  initdb       Create the schema and the admin account\n")
	fmt.Fprintf(os.Stderr, "  load-users   Load accounts from a users file, one username per line\n")
	fmt.Fprintf(os.Stderr, "  load-books   Load books from a title|author|genre|image file\n")
	fmt.Fprintf(os.Stderr, "  version      Print the build version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
