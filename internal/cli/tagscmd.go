package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projectdesk/memory/internal/tagger"
)

func init() {
	cmd := &cobra.Command{
		Use:   "tags <project-dir> <relative-path>",
		Short: "Get or generate keyword tags for a file",
		Long:  "Returns the file's cached tags, computing and caching them on first request. A non-empty cached result is never recomputed.",
		Args:  cobra.ExactArgs(2),
		Run:   runTags,
	}
	cmd.Flags().Bool("force", false, "recompute tags even when cached")

	RootCmd.AddCommand(cmd)
}

func runTags(cmd *cobra.Command, args []string) {
	get := tagger.GetOrGenerate
	if force, _ := cmd.Flags().GetBool("force"); force {
		get = tagger.Regenerate
	}
	tags, err := get(args[0], args[1])
	if err != nil {
		exitErr("tag file", err)
	}
	b, _ := json.Marshal(tags)
	fmt.Println(string(b))
}
