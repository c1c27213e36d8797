package timeline

import (
	"time"

	"github.com/rcliao/vtimeline/internal/edit"
	"github.com/rcliao/vtimeline/internal/model"
	"github.com/rcliao/vtimeline/internal/snap"
)

// DragMode is the kind of pointer interaction in progress.
type DragMode int

const (
	DragMove DragMode = iota + 1
	DragTrimStart
	DragTrimEnd
)

func (m DragMode) description() string {
	switch m {
	case DragTrimStart:
		return "Trim clip start"
	case DragTrimEnd:
		return "Trim clip end"
	}
	return "Move clip"
}

type drag struct {
	id       string
	mode     DragMode
	before   []model.Clip
	origin   model.Clip
	lastTrim time.Time
	pending  *int
}

// BeginDrag starts a live interaction on the clip. It fails for unknown
// clips and clips on locked tracks.
func (s *Session) BeginDrag(id string, mode DragMode) bool {
	i := model.FindClip(s.clips, id)
	if i < 0 || s.locked(id) {
		return false
	}
	s.drag = &drag{
		id:     id,
		mode:   mode,
		before: model.CloneClips(s.clips),
		origin: s.clips[i],
	}
	return true
}

// Dragging reports whether an interaction is in progress.
func (s *Session) Dragging() bool { return s.drag != nil }

// DragTo moves the dragged clip so it starts near start, snapping either
// edge to the playhead, whole seconds or other clip edges. Move updates
// are never throttled. It returns the applied start frame.
func (s *Session) DragTo(start, playhead int) (int, bool) {
	d := s.drag
	if d == nil || d.mode != DragMove {
		return 0, false
	}
	i := model.FindClip(s.clips, d.id)
	if i < 0 {
		return 0, false
	}
	targets := snap.Targets(s.clips, playhead, d.id)
	snapped := snap.Edges(start, s.clips[i].DurationFrames, targets, s.snapTolerance)
	s.Apply(edit.Live(edit.Move(s.clips, d.id, snapped)))
	return snapped, true
}

// DragTrim moves the edge selected by the drag mode to the given source
// offset. Updates closer together than the trim throttle are held back
// and applied by the next update or by EndDrag. It reports whether the
// update was applied now.
func (s *Session) DragTrim(offset int) bool {
	d := s.drag
	if d == nil || d.mode == DragMove {
		return false
	}
	now := s.now()
	if !d.lastTrim.IsZero() && now.Sub(d.lastTrim) < s.trimThrottle {
		d.pending = &offset
		return false
	}
	d.lastTrim = now
	d.pending = nil
	s.applyTrim(offset)
	return true
}

func (s *Session) applyTrim(offset int) {
	d := s.drag
	var r edit.Result
	if d.mode == DragTrimStart {
		r = edit.TrimStart(s.clips, d.id, offset)
	} else {
		r = edit.TrimEnd(s.clips, d.id, offset)
	}
	s.Apply(edit.Live(r))
}

// EndDrag finishes the interaction and commits it to history if the clip
// ended up different from where it started.
func (s *Session) EndDrag() bool {
	d := s.drag
	if d == nil {
		return false
	}
	if d.pending != nil {
		s.applyTrim(*d.pending)
	}
	s.drag = nil

	i := model.FindClip(s.clips, d.id)
	if i < 0 || s.clips[i].SameGeometry(d.origin) {
		return false
	}
	s.commit(d.mode.description())
	return true
}

// CancelDrag abandons the interaction and restores the clips as they were
// when it began.
func (s *Session) CancelDrag() {
	d := s.drag
	if d == nil {
		return
	}
	s.drag = nil
	s.clips = d.before
	s.total = model.TotalFrames(s.clips)
	s.publish()
}
