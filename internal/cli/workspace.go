package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/vtimeline/internal/frames"
	"github.com/rcliao/vtimeline/internal/history"
	"github.com/rcliao/vtimeline/internal/store"
	"github.com/rcliao/vtimeline/internal/timeline"
)

// workspace is an open project: its store, the stored snapshot and a live
// editing session over it.
type workspace struct {
	store   *store.SQLiteStore
	snap    *store.Snapshot
	session *timeline.Session
}

func openWorkspace(ctx context.Context, ref string, opts ...timeline.Option) (*workspace, error) {
	s, err := openStore()
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	id, err := s.ResolveProject(ctx, ref)
	if err != nil {
		s.Close()
		return nil, err
	}
	snap, err := s.LoadProject(ctx, id)
	if err != nil {
		s.Close()
		return nil, err
	}

	h := history.NewManager(history.WithLimit(cfg.Editing.HistoryLimit))
	h.Restore(snap.Undo, snap.Redo)

	base := []timeline.Option{
		timeline.WithHistory(h),
		timeline.WithLogger(logger.With(zap.String("project", id))),
		timeline.WithTrimThrottle(cfg.Editing.TrimThrottle),
		timeline.WithSnapTolerance(cfg.Editing.SnapTolerance),
	}
	sess := timeline.New(snap.Project.Tracks, snap.Project.Clips, append(base, opts...)...)
	return &workspace{store: s, snap: snap, session: sess}, nil
}

// save writes the session state back to the store.
func (w *workspace) save(ctx context.Context) error {
	w.snap.Project.Tracks = w.session.Tracks()
	w.snap.Project.Clips = w.session.Clips()
	w.snap.Undo, w.snap.Redo = w.session.History().Stacks()
	return w.store.SaveProject(ctx, w.snap)
}

func (w *workspace) close() {
	w.store.Close()
}

// editResult is printed after every edit command.
type editResult struct {
	OK          bool     `json:"ok"`
	Changed     bool     `json:"changed"`
	Selected    string   `json:"selected,omitempty"`
	Released    []string `json:"released,omitempty"`
	TotalFrames int      `json:"total_frames"`
	CanUndo     bool     `json:"can_undo"`
	CanRedo     bool     `json:"can_redo"`
}

// editFunc applies one edit. A returned error aborts the command without
// saving.
type editFunc func(s *timeline.Session) (changed bool, selected string, err error)

// runEdit applies fn to the project named by --project and prints the
// outcome.
func runEdit(cmd *cobra.Command, fn editFunc) {
	ref, _ := cmd.Flags().GetString("project")
	res, err := applyEdit(cmd.Context(), ref, fn)
	if err != nil {
		exitErr(cmd.Name(), err)
	}
	logger.Info("edit", zap.String("command", cmd.CommandPath()), zap.Bool("changed", res.Changed))
	printJSON(res)
}

// applyEdit opens the project, applies fn and saves when something
// changed. The store is closed on every path.
func applyEdit(ctx context.Context, ref string, fn editFunc) (*editResult, error) {
	var released []string
	w, err := openWorkspace(ctx, ref, timeline.WithReleaser(timeline.ReleaserFunc(func(src string) {
		released = append(released, src)
	})))
	if err != nil {
		return nil, fmt.Errorf("open project: %w", err)
	}
	defer w.close()

	changed, selected, err := fn(w.session)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := w.save(ctx); err != nil {
			return nil, fmt.Errorf("save project: %w", err)
		}
	}

	return &editResult{
		OK:          true,
		Changed:     changed,
		Selected:    selected,
		Released:    released,
		TotalFrames: w.session.TotalFrames(),
		CanUndo:     w.session.History().CanUndo(),
		CanRedo:     w.session.History().CanRedo(),
	}, nil
}

func addProjectFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("project", "p", "", "Project id or name (required)")
	cmd.MarkFlagRequired("project")
}

// parseFrame accepts a frame number ("90"), seconds ("3s", "1.5s") or a
// MM:SS:FF timecode.
func parseFrame(s string) (int, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return 0, fmt.Errorf("empty frame")
	case strings.HasSuffix(s, "s"):
		secs, err := strconv.ParseFloat(strings.TrimSuffix(s, "s"), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid seconds %q", s)
		}
		return frames.TimeToFrame(secs), nil
	case strings.Count(s, ":") == 2:
		parts := strings.Split(s, ":")
		var n [3]int
		for i, p := range parts {
			v, err := strconv.Atoi(p)
			if err != nil {
				return 0, fmt.Errorf("invalid timecode %q", s)
			}
			n[i] = v
		}
		return (n[0]*60+n[1])*frames.FPS + n[2], nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid frame %q", s)
	}
	return n, nil
}

func frameFlag(cmd *cobra.Command, name string) int {
	v, _ := cmd.Flags().GetString(name)
	f, err := parseFrame(v)
	if err != nil {
		exitErr("--"+name, err)
	}
	return f
}
