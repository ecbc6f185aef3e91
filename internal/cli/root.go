// Package cli implements the projectdesk-memory CLI commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/projectdesk/memory/internal/contextpack"
	"github.com/projectdesk/memory/internal/generate"
	"github.com/projectdesk/memory/internal/store"
)

var (
	dataDir string
	verbose bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "projectdesk-memory",
	Short: "Tiered project memory for the projectdesk dashboard",
	Long:  "Assembles bounded project context, summarizes closed sessions, tracks hot files, and redacts secrets. SQLite-backed, single binary.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Optional; a missing .env is the normal case.
		godotenv.Load()
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "", "Data directory (default: $PROJECTDESK_DATA or ~/.projectdesk)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

func getDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if env := os.Getenv("PROJECTDESK_DATA"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".projectdesk")
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(filepath.Join(getDataDir(), "memory.db"))
}

func openResolver() *contextpack.FileResolver {
	return contextpack.NewFileResolver(filepath.Join(getDataDir(), "projects.json"))
}

func newGenerator() generate.Generator {
	return generate.NewFromEnv()
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
