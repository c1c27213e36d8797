package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/vtimeline/internal/frames"
	"github.com/rcliao/vtimeline/internal/timeline"
)

func init() {
	undoCmd := &cobra.Command{
		Use:   "undo",
		Short: "Undo the last committed edit",
		Run: func(cmd *cobra.Command, args []string) {
			runEdit(cmd, func(s *timeline.Session) (bool, string, error) {
				return s.Undo(), "", nil
			})
		},
	}
	addProjectFlag(undoCmd)

	redoCmd := &cobra.Command{
		Use:   "redo",
		Short: "Redo the last undone edit",
		Run: func(cmd *cobra.Command, args []string) {
			runEdit(cmd, func(s *timeline.Session) (bool, string, error) {
				return s.Redo(), "", nil
			})
		},
	}
	addProjectFlag(redoCmd)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List the undo and redo stacks",
		Run:   runHistory,
	}
	addProjectFlag(historyCmd)

	RootCmd.AddCommand(undoCmd, redoCmd, historyCmd)
}

type historyLine struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Clips       int    `json:"clips"`
	Duration    string `json:"duration"`
	Timestamp   string `json:"timestamp"`
}

func runHistory(cmd *cobra.Command, args []string) {
	ref, _ := cmd.Flags().GetString("project")

	w, err := openWorkspace(cmd.Context(), ref)
	if err != nil {
		exitErr("open project", err)
	}
	defer w.close()

	undo, redo := w.session.History().Stacks()
	out := struct {
		Undo []historyLine `json:"undo"`
		Redo []historyLine `json:"redo"`
	}{Undo: []historyLine{}, Redo: []historyLine{}}

	for _, e := range undo {
		out.Undo = append(out.Undo, historyLine{e.ID, e.Description, len(e.Clips), frames.Timecode(e.TotalFrames), e.Timestamp.Format("2006-01-02 15:04:05")})
	}
	for _, e := range redo {
		out.Redo = append(out.Redo, historyLine{e.ID, e.Description, len(e.Clips), frames.Timecode(e.TotalFrames), e.Timestamp.Format("2006-01-02 15:04:05")})
	}

	if formatFlag == "text" {
		for i := len(out.Undo) - 1; i >= 0; i-- {
			l := out.Undo[i]
			marker := " "
			if i == len(out.Undo)-1 {
				marker = "*"
			}
			fmt.Printf("%s %s  %-20s  %s\n", marker, l.Timestamp, l.Description, l.Duration)
		}
		return
	}
	printJSON(out)
}
