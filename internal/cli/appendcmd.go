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
		Use:   "append <thread-id> <role> <content...>",
		Short: "Store one conversation message",
		Long:  "Appends a message to a thread. Content is redacted before it is stored. Use --summarize to fire the background boundary check the turn handler would.",
		Args:  cobra.MinimumNArgs(3),
		Run:   runAppend,
	}

	cmd.Flags().Bool("summarize", false, "Trigger a session boundary check after storing")

	RootCmd.AddCommand(cmd)
}

func runAppend(cmd *cobra.Command, args []string) {
	trigger, _ := cmd.Flags().GetBool("summarize")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	msg, err := s.AppendMessage(cmd.Context(), store.AppendParams{
		ThreadID: args[0],
		Role:     args[1],
		Content:  strings.Join(args[2:], " "),
	})
	if err != nil {
		exitErr("append message", err)
	}

	if trigger {
		runBoundaryCheck(cmd, s, args[0])
	}

	b, _ := json.MarshalIndent(msg, "", "  ")
	fmt.Println(string(b))
}
