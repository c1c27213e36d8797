package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/rcliao/vtimeline/internal/model"
	"github.com/rcliao/vtimeline/internal/timeline"
)

var clipCmd = &cobra.Command{
	Use:   "clip",
	Short: "Add, move, trim, split and remove clips",
	Long: `Edit clips of a project. Frame arguments accept a frame number (90),
seconds (3s, 1.5s) or a MM:SS:FF timecode.`,
}

func init() {
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Place a media source on a track",
		Run:   runClipAdd,
	}
	addProjectFlag(addCmd)
	addCmd.Flags().String("src", "", "Source URL (required)")
	addCmd.Flags().String("duration", "", "Source duration (required)")
	addCmd.Flags().String("kind", string(model.TrackVideo), "Clip kind: video or audio")
	addCmd.Flags().Int("track", -1, "Track index (default: first track of the clip's kind)")
	addCmd.Flags().String("start", "", "Start frame (default: end of the track)")
	addCmd.MarkFlagRequired("src")
	addCmd.MarkFlagRequired("duration")

	moveCmd := &cobra.Command{
		Use:   "move",
		Short: "Move a clip to a new start frame",
		Run:   runClipMove,
	}
	addProjectFlag(moveCmd)
	addIDFlag(moveCmd)
	moveCmd.Flags().String("to", "", "New start frame (required)")
	moveCmd.Flags().Bool("snap", false, "Snap to the playhead, whole seconds and clip edges")
	moveCmd.Flags().String("playhead", "0", "Playhead frame used for snapping")
	moveCmd.MarkFlagRequired("to")

	trimStartCmd := &cobra.Command{
		Use:   "trim-start",
		Short: "Set a clip's in-point within its source",
		Run:   runClipTrimStart,
	}
	addProjectFlag(trimStartCmd)
	addIDFlag(trimStartCmd)
	trimStartCmd.Flags().String("in", "", "Source in-point (required)")
	trimStartCmd.Flags().Bool("drag", false, "Apply as a live drag followed by a commit")
	trimStartCmd.MarkFlagRequired("in")

	trimEndCmd := &cobra.Command{
		Use:   "trim-end",
		Short: "Set a clip's out-point within its source",
		Run:   runClipTrimEnd,
	}
	addProjectFlag(trimEndCmd)
	addIDFlag(trimEndCmd)
	trimEndCmd.Flags().String("out", "", "Source out-point (required)")
	trimEndCmd.Flags().Bool("drag", false, "Apply as a live drag followed by a commit")
	trimEndCmd.MarkFlagRequired("out")

	trimLeftCmd := &cobra.Command{
		Use:   "trim-left",
		Short: "Cut away the part of a clip before a timeline frame",
		Run:   runClipTrimLeft,
	}
	addProjectFlag(trimLeftCmd)
	addIDFlag(trimLeftCmd)
	trimLeftCmd.Flags().String("at", "", "Timeline frame (required)")
	trimLeftCmd.MarkFlagRequired("at")

	trimRightCmd := &cobra.Command{
		Use:   "trim-right",
		Short: "Cut away the part of a clip after a timeline frame",
		Run:   runClipTrimRight,
	}
	addProjectFlag(trimRightCmd)
	addIDFlag(trimRightCmd)
	trimRightCmd.Flags().String("at", "", "Timeline frame (required)")
	trimRightCmd.MarkFlagRequired("at")

	splitCmd := &cobra.Command{
		Use:   "split",
		Short: "Split a clip in two at a timeline frame",
		Run:   runClipSplit,
	}
	addProjectFlag(splitCmd)
	addIDFlag(splitCmd)
	splitCmd.Flags().String("at", "", "Timeline frame (required)")
	splitCmd.MarkFlagRequired("at")

	rmCmd := &cobra.Command{
		Use:   "rm",
		Short: "Remove a clip",
		Run:   runClipRm,
	}
	addProjectFlag(rmCmd)
	addIDFlag(rmCmd)

	clipTrackCmd := &cobra.Command{
		Use:   "track",
		Short: "Move a clip to another track",
		Run:   runClipTrack,
	}
	addProjectFlag(clipTrackCmd)
	addIDFlag(clipTrackCmd)
	clipTrackCmd.Flags().Int("index", 0, "Target track index")
	clipTrackCmd.Flags().Bool("create", false, "Add a compatible track when the target holds another kind")

	clipCmd.AddCommand(addCmd, moveCmd, trimStartCmd, trimEndCmd, trimLeftCmd, trimRightCmd, splitCmd, rmCmd, clipTrackCmd)
	RootCmd.AddCommand(clipCmd)
}

func addIDFlag(cmd *cobra.Command) {
	cmd.Flags().String("id", "", "Clip id (required)")
	cmd.MarkFlagRequired("id")
}

// trackEnd is the first free frame after the clips on a track.
func trackEnd(clips []model.Clip, index int) int {
	end := 0
	for _, c := range clips {
		if c.TrackIndex == index {
			end = max(end, c.EndFrame())
		}
	}
	return end
}

func runClipAdd(cmd *cobra.Command, args []string) {
	src, _ := cmd.Flags().GetString("src")
	kindStr, _ := cmd.Flags().GetString("kind")
	index, _ := cmd.Flags().GetInt("track")
	startStr, _ := cmd.Flags().GetString("start")

	kind := model.TrackKind(kindStr)
	if !model.ValidTrackKinds[kind] {
		exitErr("--kind", fmt.Errorf("invalid kind %q (valid: video, audio)", kindStr))
	}
	duration := frameFlag(cmd, "duration")
	if duration < 1 {
		exitErr("--duration", fmt.Errorf("duration must be at least one frame"))
	}
	start, hasStart := 0, startStr != ""
	if hasStart {
		f, err := parseFrame(startStr)
		if err != nil {
			exitErr("--start", err)
		}
		start = f
	}
	id := ulid.Make().String()

	runEdit(cmd, func(s *timeline.Session) (bool, string, error) {
		tracks := s.Tracks()
		if index < 0 {
			for _, t := range tracks {
				if t.Kind == kind {
					index = t.Index
					break
				}
			}
		}
		t, ok := model.TrackByIndex(tracks, index)
		if !ok || t.Kind != kind {
			return false, "", fmt.Errorf("no %s track at index %d", kind, index)
		}
		if t.Locked {
			return false, "", fmt.Errorf("track %s is locked", t.Name)
		}
		at := start
		if !hasStart {
			at = trackEnd(s.Clips(), index)
		}
		clip := model.NewClip(id, src, kind, index, at, duration)
		return s.AddClip(clip), clip.ID, nil
	})
}

func runClipMove(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")
	useSnap, _ := cmd.Flags().GetBool("snap")
	to := frameFlag(cmd, "to")
	playhead := frameFlag(cmd, "playhead")

	runEdit(cmd, func(s *timeline.Session) (bool, string, error) {
		if !useSnap {
			return s.MoveClip(id, to), id, nil
		}
		if !s.BeginDrag(id, timeline.DragMove) {
			return false, id, nil
		}
		s.DragTo(to, playhead)
		return s.EndDrag(), id, nil
	})
}

func runClipTrimStart(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")
	asDrag, _ := cmd.Flags().GetBool("drag")
	in := frameFlag(cmd, "in")

	runEdit(cmd, func(s *timeline.Session) (bool, string, error) {
		if asDrag {
			return dragTrim(s, id, timeline.DragTrimStart, in), id, nil
		}
		return s.TrimClipStart(id, in), id, nil
	})
}

func runClipTrimEnd(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")
	asDrag, _ := cmd.Flags().GetBool("drag")
	out := frameFlag(cmd, "out")

	runEdit(cmd, func(s *timeline.Session) (bool, string, error) {
		if asDrag {
			return dragTrim(s, id, timeline.DragTrimEnd, out), id, nil
		}
		return s.TrimClipEnd(id, out), id, nil
	})
}

func dragTrim(s *timeline.Session, id string, mode timeline.DragMode, offset int) bool {
	if !s.BeginDrag(id, mode) {
		return false
	}
	s.DragTrim(offset)
	return s.EndDrag()
}

func runClipTrimLeft(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")
	at := frameFlag(cmd, "at")

	runEdit(cmd, func(s *timeline.Session) (bool, string, error) {
		return s.TrimLeftAt(id, at), id, nil
	})
}

func runClipTrimRight(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")
	at := frameFlag(cmd, "at")

	runEdit(cmd, func(s *timeline.Session) (bool, string, error) {
		return s.TrimRightAt(id, at), id, nil
	})
}

func runClipSplit(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")
	at := frameFlag(cmd, "at")

	runEdit(cmd, func(s *timeline.Session) (bool, string, error) {
		sel, ok := s.Split(id, at)
		return ok, sel, nil
	})
}

func runClipRm(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")

	runEdit(cmd, func(s *timeline.Session) (bool, string, error) {
		return s.Delete(id), "", nil
	})
}

func runClipTrack(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")
	index, _ := cmd.Flags().GetInt("index")
	create, _ := cmd.Flags().GetBool("create")

	runEdit(cmd, func(s *timeline.Session) (bool, string, error) {
		return s.MoveToTrack(id, index, uuid.NewString(), create), id, nil
	})
}
