// Package timeline coordinates editing: it applies edit results to the
// clip collection, records committed edits in history and hands fresh
// segments to the playback engine.
package timeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/vtimeline/internal/edit"
	"github.com/rcliao/vtimeline/internal/history"
	"github.com/rcliao/vtimeline/internal/model"
	"github.com/rcliao/vtimeline/internal/snap"
)

// DefaultTrimThrottle bounds how often live trim updates are applied.
const DefaultTrimThrottle = 100 * time.Millisecond

// SegmentSink receives the playable projection after every change. The
// engine satisfies it.
type SegmentSink interface {
	SetSegments(segs []model.Segment)
}

// Releaser frees the media handle behind a source no clip uses any more.
type Releaser interface {
	Release(sourceURL string)
}

// ReleaserFunc adapts a function to Releaser.
type ReleaserFunc func(sourceURL string)

func (f ReleaserFunc) Release(sourceURL string) { f(sourceURL) }

// Option configures a Session.
type Option func(*Session)

// WithHistory supplies a pre-populated history manager.
func WithHistory(h *history.Manager) Option {
	return func(s *Session) { s.history = h }
}

// WithSink connects the playback engine.
func WithSink(sink SegmentSink) Option {
	return func(s *Session) { s.sink = sink }
}

// WithReleaser sets the handler for released sources.
func WithReleaser(r Releaser) Option {
	return func(s *Session) { s.releaser = r }
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the clock used for trim throttling.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithTrimThrottle sets the minimum spacing of live trim updates.
func WithTrimThrottle(d time.Duration) Option {
	return func(s *Session) { s.trimThrottle = d }
}

// WithSnapTolerance sets the snapping distance in frames for drags.
func WithSnapTolerance(frames int) Option {
	return func(s *Session) { s.snapTolerance = frames }
}

// Session owns the editable state of one composition. It is driven by a
// single interaction stream and is not safe for concurrent use.
type Session struct {
	tracks []model.Track
	clips  []model.Clip
	total  int

	history       *history.Manager
	sink          SegmentSink
	releaser      Releaser
	log           *zap.Logger
	now           func() time.Time
	trimThrottle  time.Duration
	snapTolerance int

	drag *drag
}

// New opens a session over tracks and clips. When the history manager is
// empty the initial state becomes its baseline.
func New(tracks []model.Track, clips []model.Clip, opts ...Option) *Session {
	s := &Session{
		tracks:        model.CloneTracks(tracks),
		clips:         model.CloneClips(clips),
		log:           zap.NewNop(),
		now:           time.Now,
		trimThrottle:  DefaultTrimThrottle,
		snapTolerance: snap.DefaultTolerance,
	}
	for _, o := range opts {
		o(s)
	}
	if s.history == nil {
		s.history = history.NewManager()
	}
	s.total = model.TotalFrames(s.clips)
	if s.history.Len() == 0 {
		s.history.Save(s.clips, s.total, "Initial state")
	}
	s.publish()
	return s
}

// Clips returns a copy of the clip collection.
func (s *Session) Clips() []model.Clip { return model.CloneClips(s.clips) }

// Tracks returns a copy of the tracks.
func (s *Session) Tracks() []model.Track { return model.CloneTracks(s.tracks) }

// TotalFrames returns the composition length.
func (s *Session) TotalFrames() int { return s.total }

// History exposes the undo/redo manager.
func (s *Session) History() *history.Manager { return s.history }

// Segments returns the current playable projection.
func (s *Session) Segments() []model.Segment { return model.Segments(s.clips, s.tracks) }

func (s *Session) publish() {
	if s.sink != nil {
		s.sink.SetSegments(s.Segments())
	}
}

// Apply installs the result of an edit. Live edits only update the model;
// committed edits are also recorded in history. It reports whether
// anything changed.
func (s *Session) Apply(e edit.Edit) bool {
	if !e.Changed {
		return false
	}
	s.clips = e.Clips
	s.total = e.TotalFrames
	s.publish()

	for _, src := range e.Released {
		s.log.Debug("release source", zap.String("source", src))
		if s.releaser != nil {
			s.releaser.Release(src)
		}
	}
	if e.Kind == edit.KindCommitted {
		s.commit(e.Description)
	}
	return true
}

func (s *Session) commit(description string) {
	if s.history.Save(s.clips, s.total, description) {
		s.log.Debug("history saved",
			zap.String("description", description),
			zap.Int("depth", s.history.Len()))
	}
}

// locked reports whether the clip sits on a locked track.
func (s *Session) locked(id string) bool {
	i := model.FindClip(s.clips, id)
	if i < 0 {
		return false
	}
	t, ok := model.TrackByIndex(s.tracks, s.clips[i].TrackIndex)
	return ok && t.Locked
}

// AddClip places a new clip, e.g. from an import or a finished recording.
func (s *Session) AddClip(c model.Clip) bool {
	return s.Apply(edit.Committed(edit.Insert(s.clips, c)))
}

// MoveClip is a one-shot move, committed immediately.
func (s *Session) MoveClip(id string, start int) bool {
	if s.locked(id) {
		return false
	}
	return s.Apply(edit.Committed(edit.Move(s.clips, id, start)))
}

// TrimClipStart is a one-shot in-point trim.
func (s *Session) TrimClipStart(id string, in int) bool {
	if s.locked(id) {
		return false
	}
	return s.Apply(edit.Committed(edit.TrimStart(s.clips, id, in)))
}

// TrimClipEnd is a one-shot out-point trim.
func (s *Session) TrimClipEnd(id string, out int) bool {
	if s.locked(id) {
		return false
	}
	return s.Apply(edit.Committed(edit.TrimEnd(s.clips, id, out)))
}

// TrimLeftAt cuts the clip's head at frame.
func (s *Session) TrimLeftAt(id string, frame int) bool {
	if s.locked(id) {
		return false
	}
	return s.Apply(edit.TrimLeftAt(s.clips, id, frame))
}

// TrimRightAt cuts the clip's tail at frame.
func (s *Session) TrimRightAt(id string, frame int) bool {
	if s.locked(id) {
		return false
	}
	return s.Apply(edit.TrimRightAt(s.clips, id, frame))
}

// Split cuts the clip at frame and returns the id of the leading half.
func (s *Session) Split(id string, frame int) (string, bool) {
	if s.locked(id) {
		return "", false
	}
	e := edit.Split(s.clips, id, frame)
	if !s.Apply(e) {
		return "", false
	}
	return e.Selected, true
}

// Delete removes the clip.
func (s *Session) Delete(id string) bool {
	if s.locked(id) {
		return false
	}
	return s.Apply(edit.Delete(s.clips, id))
}

// MoveToTrack moves the clip to the lane at index. When that lane holds a
// different kind and createCompatible is set, a new lane of the clip's
// kind is added below its group and used instead; otherwise the move is
// refused.
func (s *Session) MoveToTrack(id string, index int, newTrackID string, createCompatible bool) bool {
	i := model.FindClip(s.clips, id)
	if i < 0 || s.locked(id) {
		return false
	}
	clip := s.clips[i]
	if !edit.CompatibleTrack(s.tracks, clip, index) {
		if !createCompatible {
			return false
		}
		added := s.AddTrack(newTrackID, clip.Kind, edit.PositionBelow)
		index = added.Index
	}
	return s.Apply(edit.Committed(edit.MoveToTrack(s.clips, id, index)))
}

// AddTrack inserts a lane and renumbers the rest. Clips and every history
// snapshot are remapped so undo keeps clips on their lanes.
func (s *Session) AddTrack(id string, kind model.TrackKind, pos edit.Position) model.Track {
	ch := edit.AddTrack(s.tracks, s.clips, id, kind, pos)
	s.tracks = ch.Tracks
	s.clips = ch.Clips
	s.history.Rewrite(func(c []model.Clip) []model.Clip {
		return edit.RemapTracks(c, ch.Remap)
	})
	s.publish()
	return ch.Added
}

// SetTrackFlag toggles mute, visibility or lock on a lane.
func (s *Session) SetTrackFlag(index int, flag edit.TrackFlag, value bool) error {
	tracks, err := edit.SetTrackFlag(s.tracks, index, flag, value)
	if err != nil {
		return err
	}
	s.tracks = tracks
	s.publish()
	return nil
}

// Undo restores the previous snapshot.
func (s *Session) Undo() bool {
	e, ok := s.history.Undo()
	if !ok {
		return false
	}
	s.restore(e)
	return true
}

// Redo reapplies the last undone snapshot.
func (s *Session) Redo() bool {
	e, ok := s.history.Redo()
	if !ok {
		return false
	}
	s.restore(e)
	return true
}

func (s *Session) restore(e history.Entry) {
	s.drag = nil
	s.clips = e.Clips
	s.total = model.TotalFrames(e.Clips)
	s.publish()
}

// SnapTargets returns the snap targets for dragging the clip with id.
func (s *Session) SnapTargets(playhead int, excludeID string) []int {
	return snap.Targets(s.clips, playhead, excludeID)
}
