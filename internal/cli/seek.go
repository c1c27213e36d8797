package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/vtimeline/internal/engine"
	"github.com/rcliao/vtimeline/internal/frames"
	"github.com/rcliao/vtimeline/internal/media"
	"github.com/rcliao/vtimeline/internal/timeline"
)

func init() {
	cmd := &cobra.Command{
		Use:   "seek",
		Short: "Resolve a timeline frame to the source and position shown there",
		Run:   runSeek,
	}
	addProjectFlag(cmd)
	cmd.Flags().String("at", "0", "Timeline frame")

	RootCmd.AddCommand(cmd)
}

// frameReport describes what the engine shows at its cursor.
type frameReport struct {
	Frame      float64 `json:"frame"`
	Timecode   string  `json:"timecode"`
	State      string  `json:"state"`
	ReachedEnd bool    `json:"reached_end"`
	Segment    string  `json:"segment,omitempty"`
	Source     string  `json:"source,omitempty"`
	SourceTime float64 `json:"source_time"`
}

func report(e *engine.Engine, m *media.Simulated) frameReport {
	f := e.CurrentFrame()
	r := frameReport{
		Frame:      f,
		Timecode:   frames.Timecode(int(f)),
		State:      e.State().String(),
		ReachedEnd: e.HasReachedEnd(),
		Source:     m.Source(),
	}
	if seg, ok := e.CurrentSegment(); ok {
		r.Segment = seg.ID
	}
	if r.Source != "" {
		r.SourceTime = m.CurrentTime()
	}
	return r
}

// newPlayer opens the project with a headless engine attached.
func newPlayer(cmd *cobra.Command, refresher engine.Refresher, opts ...engine.Option) (*workspace, *engine.Engine, *media.Simulated) {
	ref, _ := cmd.Flags().GetString("project")

	m := media.NewSimulated()
	base := []engine.Option{
		engine.WithRefresher(refresher),
		engine.WithLogger(logger),
		engine.WithDriftTolerance(cfg.Playback.DriftTolerance),
	}
	e := engine.New(m, append(base, opts...)...)

	w, err := openWorkspace(cmd.Context(), ref, timeline.WithSink(e))
	if err != nil {
		e.Close()
		exitErr("open project", err)
	}
	return w, e, m
}

func runSeek(cmd *cobra.Command, args []string) {
	at := frameFlag(cmd, "at")

	w, e, m := newPlayer(cmd, engine.TickerRefresher{Interval: cfg.Playback.RefreshInterval})
	defer w.close()
	defer e.Close()

	e.SeekToFrame(float64(at))
	r := report(e, m)

	if formatFlag == "text" {
		if r.Source == "" {
			fmt.Printf("%s  (no clip)\n", r.Timecode)
			return
		}
		fmt.Printf("%s  %s @ %.3fs  [%s]\n", r.Timecode, r.Source, r.SourceTime, r.Segment)
		return
	}
	printJSON(r)
}
