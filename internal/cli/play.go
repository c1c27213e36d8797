package cli

import (
	"fmt"
	"sync"
	"time"

	tm "github.com/buger/goterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/vtimeline/internal/engine"
	"github.com/rcliao/vtimeline/internal/frames"
)

func init() {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the composition headlessly and report segment changes",
		Long: `Play the project through the engine on a virtual clock. Each refresh
advances time by the configured refresh interval; no real time passes.
Prints every segment change, play-state change and playback warning,
followed by the final position.`,
		Run: runPlay,
	}
	addProjectFlag(cmd)
	cmd.Flags().String("from", "0", "Start frame")
	cmd.Flags().String("until", "", "Stop at this frame (default: end of composition)")
	cmd.Flags().Duration("step", 0, "Virtual refresh interval (default: playback.refresh_interval)")

	RootCmd.AddCommand(cmd)
}

// steppedRefresher hands ticks to the caller instead of a ticker.
type steppedRefresher struct {
	mu   sync.Mutex
	tick func(time.Time)
}

func (r *steppedRefresher) Start(tick func(time.Time)) func() {
	r.mu.Lock()
	r.tick = tick
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		r.tick = nil
		r.mu.Unlock()
	}
}

func (r *steppedRefresher) fire(now time.Time) bool {
	r.mu.Lock()
	tick := r.tick
	r.mu.Unlock()
	if tick == nil {
		return false
	}
	tick(now)
	return true
}

type playEvent struct {
	Frame    float64 `json:"frame"`
	Timecode string  `json:"timecode"`
	Event    string  `json:"event"`
	Detail   string  `json:"detail,omitempty"`
}

func runPlay(cmd *cobra.Command, args []string) {
	from := frameFlag(cmd, "from")
	step, _ := cmd.Flags().GetDuration("step")
	if step <= 0 {
		step = cfg.Playback.RefreshInterval
	}

	clock := time.Unix(0, 0)
	r := &steppedRefresher{}
	w, e, m := newPlayer(cmd, r, engine.WithClock(func() time.Time { return clock }))
	defer w.close()
	defer e.Close()

	until := e.TotalFrames()
	if s, _ := cmd.Flags().GetString("until"); s != "" {
		f, err := parseFrame(s)
		if err != nil {
			exitErr("--until", err)
		}
		until = min(f, until)
	}

	var events []playEvent
	record := func(event, detail string) {
		f := e.CurrentFrame()
		events = append(events, playEvent{f, frames.Timecode(int(f)), event, detail})
	}
	e.OnPlayStateChange(func(playing bool) {
		if playing {
			record("play", "")
		} else {
			record("pause", "")
		}
	})
	e.OnPlaybackWarning(func(err error) {
		record("warning", err.Error())
	})

	e.SeekToFrame(float64(from))
	lastSeg := ""
	check := func() {
		seg, ok := e.CurrentSegment()
		id := ""
		if ok {
			id = seg.ID
		}
		if id == lastSeg {
			return
		}
		lastSeg = id
		if id == "" {
			record("gap", "")
			return
		}
		record("segment", fmt.Sprintf("%s %s @ %.3fs", seg.ID, seg.SourceURL, frames.FrameToTime(float64(seg.SourceInFrame)+e.CurrentFrame()-float64(seg.StartFrame))))
	}

	e.Play()
	check()
	for e.IsPlaying() && e.CurrentFrame() < float64(until) {
		clock = clock.Add(step)
		m.Advance(step)
		if !r.fire(clock) {
			break
		}
		check()
	}
	e.Pause()

	final := report(e, m)
	logger.Info("playback finished",
		zap.Float64("frame", final.Frame),
		zap.Bool("reached_end", final.ReachedEnd),
		zap.Int("loads", len(m.Loads())))

	if formatFlag == "text" {
		for _, ev := range events {
			tm.Println(tm.Color(fmt.Sprintf("%s  %-8s %s", ev.Timecode, ev.Event, ev.Detail), eventColor(ev.Event)))
		}
		tm.Println(fmt.Sprintf("%s  %-8s reached_end=%v loads=%d", final.Timecode, final.State, final.ReachedEnd, len(m.Loads())))
		tm.Flush()
		return
	}
	if events == nil {
		events = []playEvent{}
	}
	printJSON(map[string]any{
		"events": events,
		"final":  final,
		"loads":  len(m.Loads()),
	})
}

func eventColor(event string) int {
	switch event {
	case "segment":
		return tm.CYAN
	case "gap":
		return tm.MAGENTA
	case "warning":
		return tm.RED
	}
	return tm.YELLOW
}
