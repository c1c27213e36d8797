// Package engine plays a multi-clip composition as one continuous video
// through a single media element. A virtual frame counter advances on every
// display refresh and is mapped onto the segment under it; the media
// element is loaded and seeked to follow.
package engine

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/vtimeline/internal/frames"
	"github.com/rcliao/vtimeline/internal/model"
)

// DefaultDriftTolerance is how far, in seconds, the media element may
// drift from the virtual position during playback before it is reseeked.
const DefaultDriftTolerance = 0.1

// State is the engine's playback state.
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
	StateEnded
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	}
	return "stopped"
}

// Option configures an Engine.
type Option func(*Engine)

// WithRefresher sets the refresh driver. Defaults to a 60 Hz TickerRefresher.
func WithRefresher(r Refresher) Option {
	return func(e *Engine) { e.refresher = r }
}

// WithLogger sets the logger for media failures.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock overrides the time source used when playback starts.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithDriftTolerance sets the playback reseek threshold in seconds.
func WithDriftTolerance(seconds float64) Option {
	return func(e *Engine) {
		if seconds > 0 {
			e.driftTolerance = seconds
		}
	}
}

// Engine is the virtual timeline scheduler. All methods are safe for
// concurrent use; callbacks run after the engine's lock is released and
// may call back into the engine.
type Engine struct {
	mu sync.Mutex

	media          MediaElement
	refresher      Refresher
	log            *zap.Logger
	now            func() time.Time
	driftTolerance float64

	segments     []model.Segment
	currentFrame float64
	totalFrames  int
	playing      bool
	reachedEnd   bool
	state        State
	current      *model.Segment

	loadedSrc string
	ready     <-chan struct{}
	loadGen   int

	lastTick time.Time
	stopLoop func()
	loopGen  int

	warned bool
	closed bool
	done   chan struct{}

	onFrame   func(frame float64)
	onPlay    func(playing bool)
	onWarning func(err error)
	events    []func()
}

// New returns an engine that owns media until Close.
func New(media MediaElement, opts ...Option) *Engine {
	e := &Engine{
		media:          media,
		refresher:      TickerRefresher{},
		log:            zap.NewNop(),
		now:            time.Now,
		driftTolerance: DefaultDriftTolerance,
		done:           make(chan struct{}),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// OnFrameUpdate subscribes fn to virtual frame changes.
func (e *Engine) OnFrameUpdate(fn func(frame float64)) {
	e.mu.Lock()
	e.onFrame = fn
	e.mu.Unlock()
}

// OnPlayStateChange subscribes fn to play/pause transitions.
func (e *Engine) OnPlayStateChange(fn func(playing bool)) {
	e.mu.Lock()
	e.onPlay = fn
	e.mu.Unlock()
}

// OnPlaybackWarning subscribes fn to rejected play requests. It fires at
// most once per Play call.
func (e *Engine) OnPlaybackWarning(fn func(err error)) {
	e.mu.Lock()
	e.onWarning = fn
	e.mu.Unlock()
}

// do runs fn under the lock, then dispatches the events fn queued.
func (e *Engine) do(fn func()) {
	e.mu.Lock()
	fn()
	events := e.events
	e.events = nil
	e.mu.Unlock()
	for _, ev := range events {
		ev()
	}
}

func (e *Engine) emitFrame() {
	if cb := e.onFrame; cb != nil {
		f := e.currentFrame
		e.events = append(e.events, func() { cb(f) })
	}
}

func (e *Engine) emitPlayState() {
	if cb := e.onPlay; cb != nil {
		p := e.playing
		e.events = append(e.events, func() { cb(p) })
	}
}

// SetSegments replaces the playable segments. While paused the media
// element is resynchronised immediately so edits show up in the preview.
func (e *Engine) SetSegments(segs []model.Segment) {
	e.do(func() {
		if e.closed {
			return
		}
		e.segments = append([]model.Segment(nil), segs...)
		e.totalFrames = 0
		for _, s := range e.segments {
			if s.EndFrame > e.totalFrames {
				e.totalFrames = s.EndFrame
			}
		}
		if !e.playing {
			e.sync()
		}
	})
}

// Play starts the scheduling loop. At or past the end it wraps to frame 0.
func (e *Engine) Play() {
	e.do(func() {
		if e.closed || e.playing {
			return
		}
		if e.totalFrames > 0 && e.currentFrame >= float64(e.totalFrames) {
			e.currentFrame = 0
			e.emitFrame()
		}
		e.reachedEnd = false
		e.playing = true
		e.state = StatePlaying
		e.warned = false
		e.lastTick = e.now()
		e.loopGen++
		gen := e.loopGen
		e.stopLoop = e.refresher.Start(func(now time.Time) { e.tick(gen, now) })
		e.emitPlayState()
		e.sync()
	})
}

// Pause stops the loop and pauses the media element.
func (e *Engine) Pause() {
	e.do(func() {
		if e.closed {
			return
		}
		e.pause()
	})
}

func (e *Engine) pause() {
	if e.stopLoop != nil {
		e.stopLoop()
		e.stopLoop = nil
	}
	e.loopGen++
	was := e.playing
	e.playing = false
	if e.reachedEnd {
		e.state = StateEnded
	} else if was {
		e.state = StatePaused
	}
	if e.media != nil && e.loadedSrc != "" {
		if err := e.media.Pause(); err != nil {
			e.log.Warn("media pause failed", zap.Error(err))
		}
	}
	if was {
		e.emitPlayState()
	}
}

// SeekToFrame moves the virtual cursor. Negative frames clamp to 0; frames
// past the end are allowed so scrubbing into empty space works.
func (e *Engine) SeekToFrame(frame float64) {
	e.do(func() {
		if e.closed {
			return
		}
		if frame < 0 || math.IsNaN(frame) {
			frame = 0
		}
		e.currentFrame = frame
		if frame < float64(e.totalFrames) {
			e.reachedEnd = false
		}
		if !e.playing {
			e.state = StateStopped
			if e.reachedEnd {
				e.state = StateEnded
			}
			e.sync()
		}
		e.emitFrame()
	})
}

func (e *Engine) tick(gen int, now time.Time) {
	e.do(func() {
		if gen != e.loopGen || !e.playing {
			return
		}
		delta := now.Sub(e.lastTick).Seconds()
		if delta < 0 {
			delta = 0
		}
		e.lastTick = now
		e.currentFrame += delta * frames.FPS

		if e.currentFrame >= float64(e.totalFrames) {
			if !e.reachedEnd {
				e.currentFrame = float64(e.totalFrames)
				e.reachedEnd = true
				e.pause()
				e.emitFrame()
			}
			return
		}
		e.sync()
		e.emitFrame()
	})
}

// sync points the media element at the source position under the cursor.
func (e *Engine) sync() {
	if e.media == nil {
		return
	}

	seg, ok := model.SegmentAt(e.segments, int(math.Floor(e.currentFrame)))
	if !ok {
		if e.current != nil || e.loadedSrc != "" {
			if err := e.media.Pause(); err != nil {
				e.log.Warn("media pause failed", zap.Error(err))
			}
			e.media.Unload()
		}
		e.current = nil
		e.loadedSrc = ""
		e.ready = nil
		e.loadGen++
		return
	}

	if e.current == nil || e.current.ID != seg.ID {
		e.log.Debug("segment change",
			zap.String("segment", seg.ID),
			zap.String("source", seg.SourceURL),
			zap.Float64("frame", e.currentFrame))
	}
	e.current = &seg
	if seg.SourceURL != e.loadedSrc {
		e.load(seg.SourceURL)
	}

	sourceFrame := float64(seg.SourceInFrame) + (e.currentFrame - float64(seg.StartFrame))
	if e.playing && sourceFrame >= float64(seg.SourceOutFrame) {
		if seg.EndFrame < e.totalFrames {
			e.currentFrame = float64(seg.EndFrame)
		} else {
			e.pause()
		}
		return
	}

	if e.ready != nil || e.loadedSrc == "" {
		return
	}

	target := frames.FrameToTime(sourceFrame)
	if !e.playing {
		e.seek(target)
		return
	}
	if math.Abs(e.media.CurrentTime()-target) > e.driftTolerance {
		e.seek(target)
	}
	if e.media.Paused() {
		e.playMedia()
	}
}

func (e *Engine) load(src string) {
	e.loadGen++
	gen := e.loadGen
	ready, err := e.media.Load(src)
	if err != nil {
		e.log.Warn("media load failed", zap.String("source", src), zap.Error(err))
		e.loadedSrc = ""
		e.ready = nil
		return
	}
	e.loadedSrc = src
	e.ready = nil
	if ready == nil {
		return
	}
	select {
	case <-ready:
	default:
		e.ready = ready
		go e.awaitReady(gen, ready)
	}
}

func (e *Engine) awaitReady(gen int, ready <-chan struct{}) {
	select {
	case <-ready:
	case <-e.done:
		return
	}
	e.do(func() {
		if e.closed || gen != e.loadGen {
			return
		}
		e.ready = nil
		e.sync()
	})
}

func (e *Engine) seek(seconds float64) {
	if err := e.media.Seek(seconds); err != nil {
		e.log.Warn("media seek failed", zap.Float64("target", seconds), zap.Error(err))
	}
}

func (e *Engine) playMedia() {
	err := e.media.Play()
	if err == nil {
		return
	}
	e.log.Warn("media play rejected", zap.String("source", e.loadedSrc), zap.Error(err))
	if e.warned {
		return
	}
	e.warned = true
	if cb := e.onWarning; cb != nil {
		e.events = append(e.events, func() { cb(err) })
	}
}

// Close stops playback, releases the media element and clears segments.
// The engine is unusable afterwards.
func (e *Engine) Close() error {
	e.do(func() {
		if e.closed {
			return
		}
		e.pause()
		if e.media != nil {
			e.media.Unload()
		}
		e.media = nil
		e.segments = nil
		e.totalFrames = 0
		e.current = nil
		e.loadedSrc = ""
		e.ready = nil
		e.closed = true
		close(e.done)
	})
	return nil
}

// CurrentFrame returns the virtual cursor.
func (e *Engine) CurrentFrame() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentFrame
}

// IsPlaying reports whether the loop is running.
func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// TotalFrames returns the end of the last segment.
func (e *Engine) TotalFrames() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalFrames
}

// HasReachedEnd reports whether playback stopped at the end.
func (e *Engine) HasReachedEnd() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reachedEnd
}

// State returns the playback state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// CurrentSegment returns the segment under the cursor, if any.
func (e *Engine) CurrentSegment() (model.Segment, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return model.Segment{}, false
	}
	return *e.current, true
}
