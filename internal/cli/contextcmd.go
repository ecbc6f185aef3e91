package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projectdesk/memory/internal/contextpack"
)

func init() {
	cmd := &cobra.Command{
		Use:   "context <project-id>",
		Short: "Assemble the full context string for a project",
		Long:  "Builds the memory document, file manifest, inherited context, and operating instructions into one prompt-ready string.",
		Args:  cobra.ExactArgs(1),
		Run:   runContext,
	}

	cmd.Flags().StringP("thread", "t", "", "Also include recent session summaries for this thread")

	RootCmd.AddCommand(cmd)
}

func runContext(cmd *cobra.Command, args []string) {
	thread, _ := cmd.Flags().GetString("thread")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	b := &contextpack.Builder{Resolver: openResolver(), Store: s}
	fmt.Println(b.BuildForThread(cmd.Context(), args[0], thread))
}
