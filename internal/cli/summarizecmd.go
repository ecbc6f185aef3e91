package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/projectdesk/memory/internal/session"
	"github.com/projectdesk/memory/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "summarize <thread-id>",
		Short: "Run a session boundary check and summarize if one closed",
		Long:  "Checks the thread for an inactivity boundary and compresses the unsummarized span into a durable summary. In the dashboard this runs detached after each turn; here it runs synchronously.",
		Args:  cobra.ExactArgs(1),
		Run:   runSummarize,
	}

	RootCmd.AddCommand(cmd)
}

func runSummarize(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	runBoundaryCheck(cmd, s, args[0])
}

func runBoundaryCheck(cmd *cobra.Command, s store.Store, threadID string) {
	gen := newGenerator()
	if gen == nil {
		fmt.Fprintln(os.Stderr, "summarization disabled: no generator configured (set PROJECTDESK_GENERATE_API_KEY)")
		return
	}

	sm := session.NewSummarizer(s, gen, slog.Default())
	defer sm.Close()
	if err := sm.Run(cmd.Context(), threadID); err != nil {
		// Summarization failures are never fatal; the span stays
		// eligible for the next boundary.
		fmt.Fprintf(os.Stderr, "no summary this cycle: %v\n", err)
	}
}
