package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projectdesk/memory/internal/memdoc"
	"github.com/projectdesk/memory/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "refresh <project-id>",
		Short: "Regenerate a project's memory document from recent sessions",
		Long:  "Asks the generation backend to rewrite Current State, Active Work, and Session History from recent session summaries, preserving everything else. The prior version is backed up first.",
		Args:  cobra.ExactArgs(1),
		Run:   runRefresh,
	}

	cmd.Flags().StringP("thread", "t", "", "Thread whose summaries feed the refresh")

	RootCmd.AddCommand(cmd)
}

func runRefresh(cmd *cobra.Command, args []string) {
	thread, _ := cmd.Flags().GetString("thread")

	gen := newGenerator()
	if gen == nil {
		exitErr("refresh", fmt.Errorf("no generator configured (set PROJECTDESK_GENERATE_API_KEY)"))
	}

	p, err := openResolver().Project(args[0])
	if err != nil {
		exitErr("resolve project", err)
	}

	var summaries string
	if thread != "" {
		s, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer s.Close()
		summaries, err = session.RenderSummaries(cmd.Context(), s, thread, 0)
		if err != nil {
			exitErr("load summaries", err)
		}
	}

	updated, err := memdoc.Refresh(cmd.Context(), p.Dir, gen, summaries)
	if err != nil {
		exitErr("refresh", err)
	}
	fmt.Println(updated)
}
