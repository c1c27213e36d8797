package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/vtimeline/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a project from JSON",
		Long:  "Import a project from JSON (stdin or file). Expects the format produced by export. The project gets a new id.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	cmd.Flags().String("name", "", "Rename the imported project")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")

	var r io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open file", err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		exitErr("read input", err)
	}

	var doc store.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		exitErr("parse json", err)
	}
	if name != "" {
		doc.Project.Name = name
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p, err := s.Import(cmd.Context(), &doc)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Printf(`{"ok":true,"id":%q,"name":%q,"clips":%d}`+"\n", p.ID, p.Name, len(p.Clips))
}
