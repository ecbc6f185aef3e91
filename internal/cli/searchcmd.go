package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/projectdesk/memory/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Full-text search over stored messages",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().StringP("thread", "t", "", "Limit to one thread")
	cmd.Flags().IntP("limit", "n", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	thread, _ := cmd.Flags().GetString("thread")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	hits, err := s.SearchMessages(cmd.Context(), store.SearchParams{
		ThreadID: thread,
		Query:    strings.Join(args, " "),
		Limit:    limit,
	})
	if err != nil {
		exitErr("search", err)
	}
	b, _ := json.MarshalIndent(hits, "", "  ")
	fmt.Println(string(b))
}
