package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/projectdesk/memory/internal/manifest"
)

func init() {
	cmd := &cobra.Command{
		Use:   "manifest <project-dir>",
		Short: "Render the size-adaptive file manifest for a directory",
		Args:  cobra.ExactArgs(1),
		Run:   runManifest,
	}

	RootCmd.AddCommand(cmd)
}

func runManifest(cmd *cobra.Command, args []string) {
	fmt.Println(manifest.Build(args[0], slog.Default()))
}
