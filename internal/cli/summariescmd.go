package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projectdesk/memory/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "summaries <thread-id>",
		Short: "Print a thread's recent session summaries",
		Args:  cobra.ExactArgs(1),
		Run:   runSummaries,
	}

	cmd.Flags().IntP("limit", "n", session.DefaultSummaryLimit, "Max summaries to include")

	RootCmd.AddCommand(cmd)
}

func runSummaries(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	out, err := session.RenderSummaries(cmd.Context(), s, args[0], limit)
	if err != nil {
		exitErr("load summaries", err)
	}
	if out == "" {
		return
	}
	fmt.Println(out)
}
