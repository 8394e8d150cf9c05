// Package cli implements the gridboard command-line interface.
//
// This package provides commands for serving a dashboard layout over HTTP,
// editing a layout interactively in the terminal, and inspecting a stored
// layout. The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - serve: Expose the layout engine over an HTTP API
//   - edit:  Edit a dashboard interactively in the terminal
//   - show:  Print a stored dashboard layout
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/AdrienGannerie/gridboard/internal/cli"
//
//	func main() {
//	    if err := cli.Execute(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with
// values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the gridboard CLI and returns an error if any command fails.
// This is the main entry point for the CLI application. The context governs
// every command; cancelling it (main wires SIGINT/SIGTERM) shuts down
// long-running commands like serve.
//
// The function sets up the root command with all subcommands (serve, edit,
// show), configures logging based on the --verbose flag, and executes the
// command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool
	var configPath string

	root := &cobra.Command{
		Use:           "gridboard",
		Short:         "Gridboard places dashboard items on a column grid",
		Long:          `Gridboard is a grid layout engine for dashboards: it places movable, resizable items on a fixed-column grid, resolves placement conflicts, and stages interactive edits that commit or roll back atomically.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("gridboard %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to gridboard.toml")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newEditCmd(&configPath))
	root.AddCommand(newShowCmd(&configPath))

	return root.ExecuteContext(ctx)
}
