package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/vtimeline/internal/render"
)

func init() {
	cmd := &cobra.Command{
		Use:   "render <project>",
		Short: "Draw the timeline to a PNG file",
		Args:  cobra.ExactArgs(1),
		Run:   runRender,
	}
	cmd.Flags().StringP("out", "o", "timeline.png", "Output PNG path")
	cmd.Flags().Float64("scale", 0, "Pixels per second (default: editing.pixels_per_second)")
	cmd.Flags().Int("lane-height", render.DefaultLaneHeight, "Track lane height in pixels")
	cmd.Flags().String("playhead", "", "Draw the playhead at this frame")

	RootCmd.AddCommand(cmd)
}

func runRender(cmd *cobra.Command, args []string) {
	out, _ := cmd.Flags().GetString("out")
	scale, _ := cmd.Flags().GetFloat64("scale")
	laneHeight, _ := cmd.Flags().GetInt("lane-height")
	if scale <= 0 {
		scale = cfg.Editing.PixelsPerSecond
	}
	opts := render.Options{PixelsPerSecond: scale, LaneHeight: laneHeight, Playhead: -1}
	if s, _ := cmd.Flags().GetString("playhead"); s != "" {
		f, err := parseFrame(s)
		if err != nil {
			exitErr("--playhead", err)
		}
		opts.Playhead = max(f, 0)
	}

	w, err := openWorkspace(cmd.Context(), args[0])
	if err != nil {
		exitErr("open project", err)
	}
	defer w.close()

	tracks, clips := w.session.Tracks(), w.session.Clips()
	if err := render.SavePNG(out, tracks, clips, opts); err != nil {
		exitErr("render", err)
	}
	width, height := render.Size(tracks, w.session.TotalFrames(), opts)
	fmt.Printf(`{"ok":true,"path":%q,"width":%d,"height":%d}`+"\n", out, width, height)
}
