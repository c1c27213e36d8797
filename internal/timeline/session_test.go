package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/vtimeline/internal/edit"
	"github.com/rcliao/vtimeline/internal/engine"
	"github.com/rcliao/vtimeline/internal/media"
	"github.com/rcliao/vtimeline/internal/model"
)

type recordingSink struct {
	calls [][]model.Segment
}

func (r *recordingSink) SetSegments(segs []model.Segment) {
	r.calls = append(r.calls, segs)
}

func (r *recordingSink) last() []model.Segment {
	return r.calls[len(r.calls)-1]
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newSession(t *testing.T, opts ...Option) (*Session, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	tracks := edit.InitialTracks("v1", "a1")
	clips := []model.Clip{
		model.NewClip("a", "rec1.webm", model.TrackVideo, 0, 0, 90),
		model.NewClip("b", "rec2.webm", model.TrackVideo, 0, 120, 60),
	}
	s := New(tracks, clips, append([]Option{WithSink(sink)}, opts...)...)
	return s, sink
}

func TestNewRecordsBaseline(t *testing.T) {
	s, sink := newSession(t)
	assert.Equal(t, 1, s.History().Len())
	assert.False(t, s.History().CanUndo())
	assert.Equal(t, 180, s.TotalFrames())
	require.Len(t, sink.calls, 1)
	assert.Len(t, sink.last(), 2)
}

func TestLiveEditsSkipHistory(t *testing.T) {
	s, sink := newSession(t)
	require.True(t, s.Apply(edit.Live(edit.Move(s.Clips(), "a", 10))))
	assert.Equal(t, 1, s.History().Len())
	assert.Equal(t, 10, sink.last()[0].StartFrame)

	require.True(t, s.Apply(edit.Committed(edit.Move(s.Clips(), "a", 20))))
	assert.Equal(t, 2, s.History().Len())
}

func TestNoopEditIsIgnored(t *testing.T) {
	s, sink := newSession(t)
	assert.False(t, s.MoveClip("missing", 10))
	assert.Len(t, sink.calls, 1)
	assert.Equal(t, 1, s.History().Len())
}

func TestDragMoveCommitsOnce(t *testing.T) {
	s, _ := newSession(t)
	require.True(t, s.BeginDrag("b", DragMove))
	for start := 120; start <= 220; start += 5 {
		s.DragTo(start, 0)
	}
	assert.Equal(t, 1, s.History().Len(), "drag feedback must not reach history")
	assert.True(t, s.EndDrag())
	assert.Equal(t, 2, s.History().Len())
	assert.False(t, s.Dragging())

	cur, _ := s.History().Current()
	assert.Equal(t, "Move clip", cur.Description)
	assert.Equal(t, 220, cur.Clips[1].StartFrame)
}

func TestDragMoveSnaps(t *testing.T) {
	s, _ := newSession(t)
	require.True(t, s.BeginDrag("b", DragMove))
	// Leading edge 92 snaps to clip a's end at 90.
	got, ok := s.DragTo(92, 0)
	require.True(t, ok)
	assert.Equal(t, 90, got)
	// Leading edge 182 matches nothing; trailing edge 242 snaps to the playhead.
	got, _ = s.DragTo(182, 240)
	assert.Equal(t, 180, got)
	s.EndDrag()
}

func TestDragMoveKeepsLeadingEdgeOnTarget(t *testing.T) {
	s, _ := newSession(t)
	require.True(t, s.BeginDrag("b", DragMove))
	// Leading edge 90 is exactly clip a's end; trailing 150 is within
	// tolerance of the playhead at 152 but must not move the clip.
	got, ok := s.DragTo(90, 152)
	require.True(t, ok)
	assert.Equal(t, 90, got)
	assert.True(t, s.EndDrag())
	assert.Equal(t, 90, s.Clips()[1].StartFrame)
}

func TestDragWithoutChangeDoesNotCommit(t *testing.T) {
	s, _ := newSession(t)
	require.True(t, s.BeginDrag("b", DragMove))
	s.DragTo(150, 0)
	s.DragTo(120, 0)
	assert.False(t, s.EndDrag())
	assert.Equal(t, 1, s.History().Len())
}

func TestDragTrimIsThrottled(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)}
	s, sink := newSession(t, WithClock(clock.now))

	require.True(t, s.BeginDrag("a", DragTrimEnd))
	assert.True(t, s.DragTrim(80))
	calls := len(sink.calls)

	clock.advance(50 * time.Millisecond)
	assert.False(t, s.DragTrim(70))
	assert.Len(t, sink.calls, calls)
	assert.Equal(t, 80, s.Clips()[0].SourceOutFrame)

	clock.advance(60 * time.Millisecond)
	assert.True(t, s.DragTrim(60))
	assert.Equal(t, 60, s.Clips()[0].SourceOutFrame)

	clock.advance(10 * time.Millisecond)
	assert.False(t, s.DragTrim(50))

	require.True(t, s.EndDrag())
	c := s.Clips()[0]
	assert.Equal(t, 50, c.SourceOutFrame, "held-back update lands on drag end")
	assert.Equal(t, 50, c.DurationFrames)
	assert.Equal(t, 2, s.History().Len())

	cur, _ := s.History().Current()
	assert.Equal(t, "Trim clip end", cur.Description)
}

func TestDragOnLockedTrackIsRefused(t *testing.T) {
	s, _ := newSession(t)
	require.NoError(t, s.SetTrackFlag(0, edit.FlagLocked, true))
	assert.False(t, s.BeginDrag("a", DragMove))
	assert.False(t, s.Delete("a"))
	_, ok := s.Split("a", 10)
	assert.False(t, ok)
}

func TestCancelDragRestores(t *testing.T) {
	s, sink := newSession(t)
	require.True(t, s.BeginDrag("a", DragMove))
	s.DragTo(300, 0)
	s.CancelDrag()
	assert.Equal(t, 0, s.Clips()[0].StartFrame)
	assert.Equal(t, 0, sink.last()[0].StartFrame)
	assert.Equal(t, 1, s.History().Len())
}

func TestSplitUndoRedo(t *testing.T) {
	s, sink := newSession(t)
	before := s.Clips()

	id, ok := s.Split("a", 30)
	require.True(t, ok)
	assert.Equal(t, "a-1", id)
	assert.Len(t, s.Clips(), 3)

	require.True(t, s.Undo())
	assert.Equal(t, before, s.Clips())
	assert.Len(t, sink.last(), 2)

	require.True(t, s.Redo())
	assert.Len(t, s.Clips(), 3)
	assert.False(t, s.Redo())
}

func TestDeleteReleasesSource(t *testing.T) {
	var released []string
	s, _ := newSession(t, WithReleaser(ReleaserFunc(func(src string) { released = append(released, src) })))
	require.True(t, s.Delete("b"))
	assert.Equal(t, []string{"rec2.webm"}, released)
	assert.Equal(t, 90, s.TotalFrames())
}

func TestAddTrackKeepsHistoryConsistent(t *testing.T) {
	s, _ := newSession(t)
	require.True(t, s.MoveClip("a", 10))

	added := s.AddTrack("v2", model.TrackVideo, edit.PositionAbove)
	assert.Equal(t, 0, added.Index)
	assert.Equal(t, 1, s.Clips()[0].TrackIndex)

	require.True(t, s.Undo())
	assert.Equal(t, 0, s.Clips()[0].StartFrame)
	assert.Equal(t, 1, s.Clips()[0].TrackIndex, "undo keeps clips on their renumbered lane")
}

func TestMoveToTrackPolicy(t *testing.T) {
	s, _ := newSession(t)
	// Track 1 is audio: refused without the fallback.
	assert.False(t, s.MoveToTrack("a", 1, "v2", false))

	require.True(t, s.MoveToTrack("a", 1, "v2", true))
	tracks := s.Tracks()
	require.Len(t, tracks, 3)
	assert.Equal(t, "V2", tracks[1].Name)
	assert.Equal(t, 1, s.Clips()[0].TrackIndex)
	assert.Equal(t, 0, s.Clips()[1].TrackIndex)
}

func TestHiddenTrackDropsSegments(t *testing.T) {
	s, sink := newSession(t)
	require.NoError(t, s.SetTrackFlag(0, edit.FlagVisible, false))
	assert.Empty(t, sink.last())
}

func TestSessionDrivesEngine(t *testing.T) {
	m := media.NewSimulated()
	e := engine.New(m)
	t.Cleanup(func() { e.Close() })

	s := New(edit.InitialTracks("v1", "a1"), []model.Clip{
		model.NewClip("a", "rec1.webm", model.TrackVideo, 0, 0, 90),
		model.NewClip("b", "rec2.webm", model.TrackVideo, 0, 120, 60),
	}, WithSink(e))
	assert.Equal(t, 180, e.TotalFrames())

	require.True(t, s.Delete("b"))
	assert.Equal(t, 90, e.TotalFrames())

	e.SeekToFrame(45)
	require.True(t, s.TrimClipStart("a", 30))
	// The preview follows the edit while paused: frame 45 is source frame 75.
	assert.InDelta(t, 2.5, m.CurrentTime(), 1e-9)

	require.True(t, s.Undo())
	assert.Equal(t, 90, e.TotalFrames())
	assert.InDelta(t, 1.5, m.CurrentTime(), 1e-9)
}
