package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/vtimeline/internal/model"
	"github.com/rcliao/vtimeline/internal/snap"
)

func init() {
	cmd := &cobra.Command{
		Use:   "snap",
		Short: "Show where a clip dragged to a frame would snap",
		Long:  "Resolve a candidate start frame for a clip against the playhead, the nearest whole second and the edges of the other clips, without changing the project.",
		Run:   runSnap,
	}
	addProjectFlag(cmd)
	addIDFlag(cmd)
	cmd.Flags().String("to", "", "Candidate start frame (required)")
	cmd.Flags().String("playhead", "0", "Playhead frame")
	cmd.MarkFlagRequired("to")

	RootCmd.AddCommand(cmd)
}

func runSnap(cmd *cobra.Command, args []string) {
	ref, _ := cmd.Flags().GetString("project")
	id, _ := cmd.Flags().GetString("id")
	to := frameFlag(cmd, "to")
	playhead := frameFlag(cmd, "playhead")

	w, err := openWorkspace(cmd.Context(), ref)
	if err != nil {
		exitErr("open project", err)
	}
	defer w.close()

	clips := w.session.Clips()
	i := model.FindClip(clips, id)
	if i < 0 {
		exitErr("snap", fmt.Errorf("clip %s not found", id))
	}

	targets := w.session.SnapTargets(playhead, id)
	snapped := snap.Edges(max(to, 0), clips[i].DurationFrames, targets, cfg.Editing.SnapTolerance)

	printJSON(map[string]any{
		"candidate": to,
		"snapped":   snapped,
		"moved":     snapped != max(to, 0),
		"targets":   targets,
	})
}
