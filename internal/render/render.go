// Package render draws a composition as a PNG strip: a seconds ruler on
// top and one lane per track, with clips placed at the editor's zoom.
package render

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/fogleman/gg"

	"github.com/rcliao/vtimeline/internal/frames"
	"github.com/rcliao/vtimeline/internal/model"
)

const (
	Gutter            = 40
	RulerHeight       = 20
	RightPad          = 10
	MinWidth          = 160
	DefaultLaneHeight = 32
)

// Options controls the drawing scale.
type Options struct {
	PixelsPerSecond float64
	LaneHeight      int
	// Playhead is drawn as a red line when non-negative.
	Playhead int
}

// DefaultOptions renders at 100 px/s without a playhead.
func DefaultOptions() Options {
	return Options{PixelsPerSecond: 100, LaneHeight: DefaultLaneHeight, Playhead: -1}
}

// Size returns the image dimensions for a composition.
func Size(tracks []model.Track, totalFrames int, opts Options) (w, h int) {
	opts = normalize(opts)
	body := int(math.Ceil(frames.FrameToPixel(float64(totalFrames), opts.PixelsPerSecond)))
	return Gutter + max(body, MinWidth) + RightPad, RulerHeight + max(len(tracks), 1)*opts.LaneHeight
}

func normalize(opts Options) Options {
	if opts.PixelsPerSecond <= 0 {
		opts.PixelsPerSecond = 100
	}
	if opts.LaneHeight < 8 {
		opts.LaneHeight = DefaultLaneHeight
	}
	return opts
}

// Timeline draws tracks and clips.
func Timeline(tracks []model.Track, clips []model.Clip, opts Options) image.Image {
	return draw(tracks, clips, opts).Image()
}

// SavePNG draws the timeline to path.
func SavePNG(path string, tracks []model.Track, clips []model.Clip, opts Options) error {
	if err := draw(tracks, clips, opts).SavePNG(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func draw(tracks []model.Track, clips []model.Clip, opts Options) *gg.Context {
	opts = normalize(opts)
	total := model.TotalFrames(clips)
	w, h := Size(tracks, total, opts)
	px := func(f int) float64 { return Gutter + frames.FrameToPixel(float64(f), opts.PixelsPerSecond) }
	lh := float64(opts.LaneHeight)

	dc := gg.NewContext(w, h)
	dc.SetRGB(0.12, 0.12, 0.14)
	dc.Clear()

	// ruler: a tick per second, labelled every fifth
	dc.SetRGB(0.7, 0.7, 0.7)
	dc.SetLineWidth(1)
	for f, sec := 0, 0; px(f) <= float64(w-RightPad); f, sec = f+frames.FPS, sec+1 {
		x := px(f)
		tick := 4.0
		if sec%5 == 0 {
			tick = 8
			dc.DrawString(fmt.Sprintf("%ds", sec), x+2, 10)
		}
		dc.DrawLine(x, RulerHeight-tick, x, RulerHeight)
		dc.Stroke()
	}

	ordered := model.CloneTracks(tracks)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })
	row := make(map[int]int, len(ordered))
	for i, t := range ordered {
		row[t.Index] = i
		y := RulerHeight + float64(i)*lh
		dc.SetRGB(0.2, 0.2, 0.23)
		dc.DrawLine(0, y, float64(w), y)
		dc.Stroke()
		dc.SetRGB(0.85, 0.85, 0.85)
		dc.DrawString(t.Name, 4, y+lh/2+4)
	}

	for _, c := range clips {
		r, ok := row[c.TrackIndex]
		if !ok {
			continue
		}
		t := ordered[r]
		x, cw := px(c.StartFrame), frames.FrameToPixel(float64(c.DurationFrames), opts.PixelsPerSecond)
		y := RulerHeight + float64(r)*lh + 2

		switch {
		case !t.Visible:
			dc.SetRGB(0.4, 0.4, 0.4)
		case c.Kind == model.TrackAudio:
			dc.SetRGB(0.3, 0.7, 0.4)
		default:
			dc.SetRGB(0.27, 0.52, 0.85)
		}
		dc.DrawRectangle(x, y, cw, lh-4)
		dc.Fill()

		// trimmed edges
		dc.SetRGB(0.95, 0.75, 0.2)
		if c.SourceInFrame > 0 {
			dc.DrawRectangle(x, y, 2, lh-4)
			dc.Fill()
		}
		if c.SourceOutFrame < c.OriginalDurationFrames {
			dc.DrawRectangle(x+cw-2, y, 2, lh-4)
			dc.Fill()
		}
	}

	if opts.Playhead >= 0 {
		x := px(opts.Playhead)
		dc.SetRGB(0.9, 0.2, 0.2)
		dc.SetLineWidth(1)
		dc.DrawLine(x, 0, x, float64(h))
		dc.Stroke()
	}
	return dc
}
