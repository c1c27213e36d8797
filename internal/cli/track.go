package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rcliao/vtimeline/internal/edit"
	"github.com/rcliao/vtimeline/internal/model"
	"github.com/rcliao/vtimeline/internal/timeline"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Add tracks and set track flags",
}

func init() {
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Insert a track; existing tracks are renumbered",
		Run:   runTrackAdd,
	}
	addProjectFlag(addCmd)
	addCmd.Flags().String("kind", string(model.TrackVideo), "Track kind: video or audio")
	addCmd.Flags().String("position", string(edit.PositionBelow), "Position among tracks of the same kind: above, between or below")

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Set a track flag (muted, visible, locked)",
		Run:   runTrackSet,
	}
	addProjectFlag(setCmd)
	setCmd.Flags().Int("index", 0, "Track index")
	setCmd.Flags().String("flag", "", "Flag: muted, visible or locked (required)")
	setCmd.Flags().Bool("value", true, "Flag value")
	setCmd.MarkFlagRequired("flag")

	trackCmd.AddCommand(addCmd, setCmd)
	RootCmd.AddCommand(trackCmd)
}

func runTrackAdd(cmd *cobra.Command, args []string) {
	kindStr, _ := cmd.Flags().GetString("kind")
	posStr, _ := cmd.Flags().GetString("position")

	kind := model.TrackKind(kindStr)
	if !model.ValidTrackKinds[kind] {
		exitErr("--kind", fmt.Errorf("invalid kind %q (valid: video, audio)", kindStr))
	}
	pos := edit.Position(posStr)
	if !edit.ValidPositions[pos] {
		exitErr("--position", fmt.Errorf("invalid position %q (valid: above, between, below)", posStr))
	}

	runEdit(cmd, func(s *timeline.Session) (bool, string, error) {
		t := s.AddTrack(uuid.NewString(), kind, pos)
		return true, t.ID, nil
	})
}

var validFlags = map[edit.TrackFlag]bool{
	edit.FlagMuted:   true,
	edit.FlagVisible: true,
	edit.FlagLocked:  true,
}

func runTrackSet(cmd *cobra.Command, args []string) {
	index, _ := cmd.Flags().GetInt("index")
	flag, _ := cmd.Flags().GetString("flag")
	value, _ := cmd.Flags().GetBool("value")

	if !validFlags[edit.TrackFlag(flag)] {
		exitErr("--flag", fmt.Errorf("invalid flag %q (valid: muted, visible, locked)", flag))
	}

	runEdit(cmd, func(s *timeline.Session) (bool, string, error) {
		if err := s.SetTrackFlag(index, edit.TrackFlag(flag), value); err != nil {
			return false, "", err
		}
		return true, "", nil
	})
}
