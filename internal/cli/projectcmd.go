package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projectdesk/memory/internal/model"
)

func init() {
	project := &cobra.Command{
		Use:   "project",
		Short: "Manage the project registry",
	}

	add := &cobra.Command{
		Use:   "add <id> <name> <dir>",
		Short: "Register a project directory",
		Args:  cobra.ExactArgs(3),
		Run:   runProjectAdd,
	}
	add.Flags().String("parent", "", "Parent project id")
	add.Flags().Bool("general", false, "Mark as the command-center project")

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered projects",
		Run:   runProjectList,
	}

	project.AddCommand(add, list)
	RootCmd.AddCommand(project)
}

func runProjectAdd(cmd *cobra.Command, args []string) {
	parent, _ := cmd.Flags().GetString("parent")
	general, _ := cmd.Flags().GetBool("general")

	err := openResolver().Add(model.Project{
		ID:       args[0],
		Name:     args[1],
		Dir:      args[2],
		ParentID: parent,
		General:  general,
	})
	if err != nil {
		exitErr("add project", err)
	}
}

func runProjectList(cmd *cobra.Command, args []string) {
	projects, err := openResolver().Projects()
	if err != nil {
		exitErr("list projects", err)
	}
	b, _ := json.MarshalIndent(projects, "", "  ")
	fmt.Println(string(b))
}
