package engine

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/vtimeline/internal/media"
	"github.com/rcliao/vtimeline/internal/model"
)

// manualRefresher hands the tick function to the test.
type manualRefresher struct {
	mu    sync.Mutex
	tick  func(time.Time)
	stops int
}

func (r *manualRefresher) Start(tick func(time.Time)) func() {
	r.mu.Lock()
	r.tick = tick
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		r.tick = nil
		r.stops++
		r.mu.Unlock()
	}
}

func (r *manualRefresher) running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tick != nil
}

func (r *manualRefresher) fire(now time.Time) {
	r.mu.Lock()
	tick := r.tick
	r.mu.Unlock()
	if tick != nil {
		tick(now)
	}
}

type harness struct {
	e     *Engine
	m     *media.Simulated
	r     *manualRefresher
	now   time.Time
	plays []bool
}

func newHarness(t *testing.T, m *media.Simulated) *harness {
	t.Helper()
	h := &harness{
		m:   m,
		r:   &manualRefresher{},
		now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	h.e = New(m, WithRefresher(h.r), WithClock(func() time.Time { return h.now }))
	h.e.OnPlayStateChange(func(p bool) { h.plays = append(h.plays, p) })
	t.Cleanup(func() { h.e.Close() })
	return h
}

// step advances wall-clock time and the media element by d, then ticks.
func (h *harness) step(d time.Duration) {
	h.now = h.now.Add(d)
	h.m.Advance(d)
	h.r.fire(h.now)
}

func (h *harness) runToEnd(t *testing.T) {
	t.Helper()
	for i := 0; i < 10000 && h.r.running(); i++ {
		h.step(time.Second / 60)
	}
	require.False(t, h.r.running(), "playback did not stop")
}

func segs(clips ...model.Clip) []model.Segment {
	return model.Segments(clips, nil)
}

func TestPlayToCompletion(t *testing.T) {
	h := newHarness(t, media.NewSimulated())
	h.e.SetSegments(segs(model.NewClip("a", "rec.webm", model.TrackVideo, 0, 0, 90)))
	assert.Equal(t, 90, h.e.TotalFrames())

	var lastFrame float64
	h.e.OnFrameUpdate(func(f float64) { lastFrame = f })

	h.e.Play()
	assert.True(t, h.e.IsPlaying())
	h.runToEnd(t)

	assert.Equal(t, []bool{true, false}, h.plays)
	assert.Equal(t, 90.0, h.e.CurrentFrame())
	assert.Equal(t, 90.0, lastFrame)
	assert.True(t, h.e.HasReachedEnd())
	assert.Equal(t, StateEnded, h.e.State())

	h.e.Play()
	assert.Equal(t, 0.0, h.e.CurrentFrame())
	assert.False(t, h.e.HasReachedEnd())
	assert.Equal(t, StatePlaying, h.e.State())
}

func TestEmptyCompositionEndsImmediately(t *testing.T) {
	h := newHarness(t, media.NewSimulated())
	h.e.Play()
	h.step(time.Second / 60)
	assert.False(t, h.e.IsPlaying())
	assert.Equal(t, 0.0, h.e.CurrentFrame())
	assert.True(t, h.e.HasReachedEnd())
}

func TestSeekWhilePausedIsIdempotent(t *testing.T) {
	h := newHarness(t, media.NewSimulated())
	h.e.SetSegments(segs(model.NewClip("a", "rec.webm", model.TrackVideo, 0, 0, 90)))

	h.e.SeekToFrame(45)
	frame, pos := h.e.CurrentFrame(), h.m.CurrentTime()
	assert.InDelta(t, 1.5, pos, 1e-9)

	h.e.SeekToFrame(45)
	assert.Equal(t, frame, h.e.CurrentFrame())
	assert.Equal(t, pos, h.m.CurrentTime())
}

func TestSeekClampsNegativeButNotPastEnd(t *testing.T) {
	h := newHarness(t, media.NewSimulated())
	h.e.SetSegments(segs(model.NewClip("a", "rec.webm", model.TrackVideo, 0, 0, 90)))

	h.e.SeekToFrame(-10)
	assert.Equal(t, 0.0, h.e.CurrentFrame())

	h.e.SeekToFrame(200)
	assert.Equal(t, 200.0, h.e.CurrentFrame())
	_, ok := h.e.CurrentSegment()
	assert.False(t, ok)
}

func TestSeekMapsIntoTrimmedSource(t *testing.T) {
	h := newHarness(t, media.NewSimulated())
	c := model.NewClip("a", "rec.webm", model.TrackVideo, 0, 30, 90)
	c.SourceInFrame = 15
	c.DurationFrames = 75
	h.e.SetSegments(segs(c))

	h.e.SeekToFrame(60)
	// source frame = 15 + (60 - 30) = 45
	assert.InDelta(t, 1.5, h.m.CurrentTime(), 1e-9)
}

func TestGapPausesAndClearsSource(t *testing.T) {
	h := newHarness(t, media.NewSimulated())
	h.e.SetSegments(segs(
		model.NewClip("a", "rec.webm", model.TrackVideo, 0, 0, 30),
		model.NewClip("b", "rec.webm", model.TrackVideo, 0, 60, 30),
	))
	require.Equal(t, "rec.webm", h.m.Source())

	h.e.SeekToFrame(45)
	_, ok := h.e.CurrentSegment()
	assert.False(t, ok)
	assert.Equal(t, "", h.m.Source())
	assert.True(t, h.m.Paused())
}

func TestContiguousSameSourceDoesNotReload(t *testing.T) {
	h := newHarness(t, media.NewSimulated())
	first := model.NewClip("a-1", "rec.webm", model.TrackVideo, 0, 0, 45)
	second := model.NewClip("a-2", "rec.webm", model.TrackVideo, 0, 45, 45)
	h.e.SetSegments(segs(first, second))

	var seen []string
	h.e.OnFrameUpdate(func(float64) {
		if s, ok := h.e.CurrentSegment(); ok && (len(seen) == 0 || seen[len(seen)-1] != s.ID) {
			seen = append(seen, s.ID)
		}
	})
	h.e.Play()
	h.runToEnd(t)

	assert.Equal(t, []string{"rec.webm"}, h.m.Loads())
	assert.Equal(t, []string{"a-1", "a-2"}, seen)
}

func TestSourceChangeReloads(t *testing.T) {
	h := newHarness(t, media.NewSimulated())
	h.e.SetSegments(segs(
		model.NewClip("a", "one.webm", model.TrackVideo, 0, 0, 30),
		model.NewClip("b", "two.webm", model.TrackVideo, 0, 30, 30),
	))
	h.e.Play()
	h.runToEnd(t)
	assert.Equal(t, []string{"one.webm", "two.webm"}, h.m.Loads())
	assert.Equal(t, 60.0, h.e.CurrentFrame())
}

func TestDriftCorrectionWhilePlaying(t *testing.T) {
	h := newHarness(t, media.NewSimulated())
	h.e.SetSegments(segs(model.NewClip("a", "rec.webm", model.TrackVideo, 0, 0, 900)))
	h.e.Play()
	require.False(t, h.m.Paused())
	base := len(h.m.Seeks())

	h.step(100 * time.Millisecond)
	assert.Len(t, h.m.Seeks(), base, "in-sync media must not be reseeked")

	h.m.Nudge(0.05)
	h.step(100 * time.Millisecond)
	assert.Len(t, h.m.Seeks(), base, "small drift is tolerated")

	h.m.Nudge(0.25)
	h.step(100 * time.Millisecond)
	require.Len(t, h.m.Seeks(), base+1)
	assert.InDelta(t, 0.3, h.m.CurrentTime(), 1e-6)
}

func TestSourceOverrunJumpsToSegmentEnd(t *testing.T) {
	h := newHarness(t, media.NewSimulated())
	// The first segment's source window is shorter than its span.
	h.e.SetSegments([]model.Segment{
		{ID: "s1", StartFrame: 0, EndFrame: 60, SourceURL: "one.webm", SourceInFrame: 0, SourceOutFrame: 30},
		{ID: "s2", StartFrame: 60, EndFrame: 90, SourceURL: "two.webm", SourceInFrame: 0, SourceOutFrame: 30},
	})
	h.e.Play()
	for i := 0; i < 4; i++ {
		h.step(300 * time.Millisecond) // 9 frames per tick
	}
	// 36 frames in: source frame 36 >= 30 so the cursor jumps to 60.
	assert.Equal(t, 60.0, h.e.CurrentFrame())

	h.step(100 * time.Millisecond)
	s, ok := h.e.CurrentSegment()
	require.True(t, ok)
	assert.Equal(t, "s2", s.ID)
}

func TestWaitsForSourceReadyBeforeSeeking(t *testing.T) {
	m := media.NewSimulated(media.WithManualReady())
	h := newHarness(t, m)
	h.e.SetSegments(segs(model.NewClip("a", "rec.webm", model.TrackVideo, 0, 0, 90)))

	h.e.SeekToFrame(15)
	assert.Empty(t, m.Seeks())

	m.MarkReady()
	assert.Eventually(t, func() bool { return len(m.Seeks()) == 1 }, time.Second, 5*time.Millisecond)
	assert.InDelta(t, 0.5, m.Seeks()[0], 1e-9)
}

func TestPlayRejectionWarnsOncePerPlay(t *testing.T) {
	m := media.NewSimulated()
	m.PlayErr = errors.New("autoplay blocked")
	h := newHarness(t, m)
	h.e.SetSegments(segs(model.NewClip("a", "rec.webm", model.TrackVideo, 0, 0, 900)))

	var warnings []error
	h.e.OnPlaybackWarning(func(err error) { warnings = append(warnings, err) })

	h.e.Play()
	h.step(time.Second / 60)
	h.step(time.Second / 60)
	require.Len(t, warnings, 1)
	assert.EqualError(t, warnings[0], "autoplay blocked")
	assert.True(t, h.e.IsPlaying(), "rejections never stop the engine")

	h.e.Pause()
	h.e.Play()
	assert.Len(t, warnings, 2)
}

func TestPauseStopsLoop(t *testing.T) {
	h := newHarness(t, media.NewSimulated())
	h.e.SetSegments(segs(model.NewClip("a", "rec.webm", model.TrackVideo, 0, 0, 90)))
	h.e.Play()
	h.step(time.Second)
	h.e.Pause()

	assert.False(t, h.r.running())
	assert.True(t, h.m.Paused())
	assert.Equal(t, StatePaused, h.e.State())
	frame := h.e.CurrentFrame()
	assert.InDelta(t, 30.0, frame, 1e-6)

	h.e.SeekToFrame(10)
	assert.Equal(t, StateStopped, h.e.State())
}

func TestCallbacksMayReenterEngine(t *testing.T) {
	h := newHarness(t, media.NewSimulated())
	h.e.SetSegments(segs(model.NewClip("a", "rec.webm", model.TrackVideo, 0, 0, 90)))
	h.e.OnPlayStateChange(func(p bool) {
		if !p {
			h.e.SeekToFrame(0)
		}
	})
	h.e.Play()
	h.runToEnd(t)
	assert.Equal(t, 0.0, h.e.CurrentFrame())
}

func TestCloseReleasesMedia(t *testing.T) {
	h := newHarness(t, media.NewSimulated())
	h.e.SetSegments(segs(model.NewClip("a", "rec.webm", model.TrackVideo, 0, 0, 90)))
	h.e.Play()

	require.NoError(t, h.e.Close())
	assert.False(t, h.e.IsPlaying())
	assert.Equal(t, "", h.m.Source())
	assert.Equal(t, 0, h.e.TotalFrames())

	h.e.Play()
	assert.False(t, h.e.IsPlaying())
	require.NoError(t, h.e.Close())
}

func TestTickerRefresherStops(t *testing.T) {
	var mu sync.Mutex
	n := 0
	stop := TickerRefresher{Interval: time.Millisecond}.Start(func(time.Time) {
		mu.Lock()
		n++
		mu.Unlock()
	})
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return n > 2
	}, time.Second, time.Millisecond)
	stop()
	stop()
}
