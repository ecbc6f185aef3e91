package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projectdesk/memory/internal/tracker"
)

func init() {
	track := &cobra.Command{
		Use:   "track <project-dir> <relative-path>",
		Short: "Record one file access",
		Args:  cobra.ExactArgs(2),
		Run:   runTrack,
	}
	RootCmd.AddCommand(track)

	hot := &cobra.Command{
		Use:   "hot <project-dir>",
		Short: "List the most accessed files",
		Args:  cobra.ExactArgs(1),
		Run:   runHot,
	}
	hot.Flags().IntP("limit", "n", 10, "Max files to list")
	RootCmd.AddCommand(hot)
}

func runTrack(cmd *cobra.Command, args []string) {
	if err := tracker.Increment(args[0], args[1]); err != nil {
		exitErr("track access", err)
	}
}

func runHot(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	top, err := tracker.Top(args[0], limit)
	if err != nil {
		exitErr("list hot files", err)
	}
	b, _ := json.MarshalIndent(top, "", "  ")
	fmt.Println(string(b))
}
