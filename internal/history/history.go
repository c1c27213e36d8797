// Package history keeps undo/redo snapshots of a clip collection.
package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/rcliao/vtimeline/internal/model"
)

// DefaultLimit caps the undo stack.
const DefaultLimit = 50

// Entry is an immutable snapshot of the composition.
type Entry struct {
	ID          string       `json:"id"`
	Clips       []model.Clip `json:"clips"`
	TotalFrames int          `json:"total_frames"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"timestamp"`
}

func (e Entry) clone() Entry {
	e.Clips = model.CloneClips(e.Clips)
	return e
}

func (e Entry) same(clips []model.Clip, description string) bool {
	if e.Description != description || len(e.Clips) != len(clips) {
		return false
	}
	for i := range clips {
		if !e.Clips[i].SameGeometry(clips[i]) {
			return false
		}
	}
	return true
}

// Manager is a bounded undo stack with a redo stack. The first entry is
// the session baseline and is never undone. It is not safe for concurrent
// use.
type Manager struct {
	undo  []Entry
	redo  []Entry
	limit int
	now   func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLimit sets the undo stack cap. Values below 2 are ignored.
func WithLimit(n int) Option {
	return func(m *Manager) {
		if n >= 2 {
			m.limit = n
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager returns an empty manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{limit: DefaultLimit, now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Save pushes a deep copy of clips. A save identical to the top entry in
// geometry and description is dropped. Any successful save clears redo.
// It reports whether an entry was pushed.
func (m *Manager) Save(clips []model.Clip, totalFrames int, description string) bool {
	if n := len(m.undo); n > 0 && m.undo[n-1].same(clips, description) {
		return false
	}
	m.undo = append(m.undo, Entry{
		ID:          uuid.NewString(),
		Clips:       model.CloneClips(clips),
		TotalFrames: totalFrames,
		Description: description,
		Timestamp:   m.now(),
	})
	if over := len(m.undo) - m.limit; over > 0 {
		m.undo = append(m.undo[:0:0], m.undo[over:]...)
	}
	m.redo = nil
	return true
}

// Undo moves the top entry to the redo stack and returns the new top.
func (m *Manager) Undo() (Entry, bool) {
	if !m.CanUndo() {
		return Entry{}, false
	}
	n := len(m.undo)
	top := m.undo[n-1]
	m.undo = m.undo[:n-1]
	m.redo = append(m.redo, top)
	return m.undo[n-2].clone(), true
}

// Redo moves the most recently undone entry back and returns it.
func (m *Manager) Redo() (Entry, bool) {
	if !m.CanRedo() {
		return Entry{}, false
	}
	n := len(m.redo)
	e := m.redo[n-1]
	m.redo = m.redo[:n-1]
	m.undo = append(m.undo, e)
	return e.clone(), true
}

// CanUndo reports whether an edit beyond the baseline exists.
func (m *Manager) CanUndo() bool { return len(m.undo) >= 2 }

// CanRedo reports whether an undone entry is available.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// Len returns the size of the undo stack.
func (m *Manager) Len() int { return len(m.undo) }

// Current returns the top of the undo stack.
func (m *Manager) Current() (Entry, bool) {
	if len(m.undo) == 0 {
		return Entry{}, false
	}
	return m.undo[len(m.undo)-1].clone(), true
}

// Stacks returns copies of both stacks, oldest first.
func (m *Manager) Stacks() (undo, redo []Entry) {
	return cloneEntries(m.undo), cloneEntries(m.redo)
}

// Restore replaces both stacks, trimming undo to the limit.
func (m *Manager) Restore(undo, redo []Entry) {
	m.undo = cloneEntries(undo)
	m.redo = cloneEntries(redo)
	if over := len(m.undo) - m.limit; over > 0 {
		m.undo = m.undo[over:]
	}
}

// Rewrite applies fn to the clips of every entry on both stacks. It is
// used when a structural change, such as track renumbering, must stay
// consistent across undo.
func (m *Manager) Rewrite(fn func([]model.Clip) []model.Clip) {
	for i := range m.undo {
		m.undo[i].Clips = fn(m.undo[i].Clips)
	}
	for i := range m.redo {
		m.redo[i].Clips = fn(m.redo[i].Clips)
	}
}

// Reset clears history and records a new baseline.
func (m *Manager) Reset(clips []model.Clip, description string) {
	m.undo, m.redo = nil, nil
	m.Save(clips, model.TotalFrames(clips), description)
}

func cloneEntries(in []Entry) []Entry {
	if len(in) == 0 {
		return nil
	}
	out := make([]Entry, len(in))
	for i, e := range in {
		out[i] = e.clone()
	}
	return out
}
