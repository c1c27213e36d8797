package cli

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rcliao/vtimeline/internal/edit"
	"github.com/rcliao/vtimeline/internal/frames"
	"github.com/rcliao/vtimeline/internal/model"
	"github.com/rcliao/vtimeline/internal/store"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Create, list, show and remove projects",
}

func init() {
	newCmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a project with one video and one audio track",
		Args:  cobra.ExactArgs(1),
		Run:   runProjectNew,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Run:   runProjectList,
	}
	listCmd.Flags().IntP("limit", "l", 50, "Max results")

	showCmd := &cobra.Command{
		Use:   "show <project>",
		Short: "Show a project's tracks, clips and segments",
		Args:  cobra.ExactArgs(1),
		Run:   runProjectShow,
	}

	rmCmd := &cobra.Command{
		Use:   "rm <project>",
		Short: "Delete a project and its history",
		Args:  cobra.ExactArgs(1),
		Run:   runProjectRm,
	}

	projectCmd.AddCommand(newCmd, listCmd, showCmd, rmCmd)
	RootCmd.AddCommand(projectCmd)
}

func runProjectNew(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p, err := s.CreateProject(cmd.Context(), store.CreateParams{
		Name:   args[0],
		Tracks: edit.InitialTracks(uuid.NewString(), uuid.NewString()),
	})
	if err != nil {
		exitErr("create project", err)
	}
	printJSON(p)
}

func runProjectList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	projects, err := s.ListProjects(cmd.Context(), store.ListParams{Limit: limit})
	if err != nil {
		exitErr("list projects", err)
	}

	if formatFlag == "text" {
		for _, p := range projects {
			fmt.Printf("%s  %-24s  %s\n", p.ID, p.Name, p.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return
	}
	if projects == nil {
		projects = []model.Project{}
	}
	printJSON(projects)
}

// clipLayout places a clip on the ruler at the configured zoom.
type clipLayout struct {
	model.Clip
	Start string  `json:"start"`
	End   string  `json:"end"`
	X     float64 `json:"x"`
	Width float64 `json:"width"`
}

type projectView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	TotalFrames int             `json:"total_frames"`
	Duration    string          `json:"duration"`
	Tracks      []model.Track   `json:"tracks"`
	Clips       []clipLayout    `json:"clips"`
	Segments    []model.Segment `json:"segments"`
	CanUndo     bool            `json:"can_undo"`
	CanRedo     bool            `json:"can_redo"`
}

func runProjectShow(cmd *cobra.Command, args []string) {
	w, err := openWorkspace(cmd.Context(), args[0])
	if err != nil {
		exitErr("open project", err)
	}
	defer w.close()

	sess := w.session
	pps := cfg.Editing.PixelsPerSecond
	clips := sess.Clips()
	sort.SliceStable(clips, func(i, j int) bool {
		if clips[i].TrackIndex != clips[j].TrackIndex {
			return clips[i].TrackIndex < clips[j].TrackIndex
		}
		return clips[i].StartFrame < clips[j].StartFrame
	})

	v := projectView{
		ID:          w.snap.Project.ID,
		Name:        w.snap.Project.Name,
		TotalFrames: sess.TotalFrames(),
		Duration:    frames.Timecode(sess.TotalFrames()),
		Tracks:      sess.Tracks(),
		Clips:       make([]clipLayout, 0, len(clips)),
		Segments:    sess.Segments(),
		CanUndo:     sess.History().CanUndo(),
		CanRedo:     sess.History().CanRedo(),
	}
	for _, c := range clips {
		v.Clips = append(v.Clips, clipLayout{
			Clip:  c,
			Start: frames.Timecode(c.StartFrame),
			End:   frames.Timecode(c.EndFrame()),
			X:     frames.FrameToPixel(float64(c.StartFrame), pps),
			Width: frames.FrameToPixel(float64(c.DurationFrames), pps),
		})
	}
	if v.Segments == nil {
		v.Segments = []model.Segment{}
	}

	if formatFlag == "text" {
		printProjectText(v)
		return
	}
	printJSON(v)
}

func printProjectText(v projectView) {
	fmt.Printf("%s (%s)  duration %s\n", v.Name, v.ID, v.Duration)
	for _, t := range v.Tracks {
		flags := ""
		if !t.Visible {
			flags += " hidden"
		}
		if t.Muted {
			flags += " muted"
		}
		if t.Locked {
			flags += " locked"
		}
		fmt.Printf("\n%s%s\n", t.Name, flags)
		for _, c := range v.Clips {
			if c.TrackIndex != t.Index {
				continue
			}
			fmt.Printf("  %s-%s  %s  %s [%d:%d]\n", c.Start, c.End, c.ID, c.SourceURL, c.SourceInFrame, c.SourceOutFrame)
		}
	}
}

func runProjectRm(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	id, err := s.ResolveProject(cmd.Context(), args[0])
	if err != nil {
		exitErr("resolve project", err)
	}
	if err := s.DeleteProject(cmd.Context(), id); err != nil {
		exitErr("delete project", err)
	}
	fmt.Printf(`{"ok":true,"deleted":%q}`+"\n", id)
}
