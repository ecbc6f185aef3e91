package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/projectdesk/memory/internal/redact"
)

func init() {
	cmd := &cobra.Command{
		Use:   "redact [text]",
		Short: "Mask credential-shaped substrings in text",
		Long:  "Reads text from arguments or stdin and prints it with secrets replaced. Idempotent.",
		Run:   runRedact,
	}

	RootCmd.AddCommand(cmd)
}

func runRedact(cmd *cobra.Command, args []string) {
	var text string
	if len(args) > 0 {
		text = strings.Join(args, " ")
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		text = string(data)
	}
	fmt.Println(redact.Redact(text))
}
