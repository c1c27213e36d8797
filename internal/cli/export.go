package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export <project>",
		Short: "Export a project as JSON",
		Long:  "Export a project with its tracks, clips and undo history as a JSON document readable by import.",
		Args:  cobra.ExactArgs(1),
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	id, err := s.ResolveProject(cmd.Context(), args[0])
	if err != nil {
		exitErr("resolve project", err)
	}
	doc, err := s.Export(cmd.Context(), id)
	if err != nil {
		exitErr("export", err)
	}

	printJSON(doc)
}
