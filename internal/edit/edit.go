// Package edit implements the frame-exact editing operations over a clip
// collection. Operations never mutate their input; they return a Result
// holding the new collection.
package edit

import (
	"github.com/rcliao/vtimeline/internal/model"
)

// Kind tells the session whether an edit is recorded in history.
type Kind int

const (
	// KindLive is intermediate drag feedback; it never reaches history.
	KindLive Kind = iota + 1
	// KindCommitted is a finished edit; it is snapshotted into history.
	KindCommitted
)

func (k Kind) String() string {
	switch k {
	case KindLive:
		return "live"
	case KindCommitted:
		return "committed"
	}
	return "unknown"
}

// Result is the outcome of an editing operation.
type Result struct {
	Clips       []model.Clip
	TotalFrames int
	Description string
	// Selected is the clip the caller should select afterwards, if any.
	Selected string
	// Released lists sources no remaining clip references.
	Released []string
	// Changed is false when the operation was a no-op (unknown id or an
	// argument outside the clip's span).
	Changed bool
}

// Edit is a Result tagged with its commit discipline.
type Edit struct {
	Result
	Kind Kind
}

// Live tags r as drag feedback.
func Live(r Result) Edit { return Edit{Result: r, Kind: KindLive} }

// Committed tags r as a finished edit.
func Committed(r Result) Edit { return Edit{Result: r, Kind: KindCommitted} }

func unchanged(clips []model.Clip, desc string) Result {
	return Result{
		Clips:       clips,
		TotalFrames: model.TotalFrames(clips),
		Description: desc,
	}
}

// update copies clips and applies fn to the clip with id.
func update(clips []model.Clip, id, desc string, fn func(c *model.Clip) bool) Result {
	i := model.FindClip(clips, id)
	if i < 0 {
		return unchanged(clips, desc)
	}
	out := model.CloneClips(clips)
	if !fn(&out[i]) {
		return unchanged(clips, desc)
	}
	return Result{
		Clips:       out,
		TotalFrames: model.TotalFrames(out),
		Description: desc,
		Selected:    id,
		Changed:     true,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Move places the clip at newStart, clamped at zero. Trim fields are kept.
func Move(clips []model.Clip, id string, newStart int) Result {
	return update(clips, id, "Move clip", func(c *model.Clip) bool {
		c.StartFrame = max(0, newStart)
		return true
	})
}

// TrimStart sets the source in-point. The clip keeps its timeline start;
// only the visible window of the source shifts. newIn is clamped to
// [0, originalDuration-1] and to stay before the current out-point.
func TrimStart(clips []model.Clip, id string, newIn int) Result {
	return update(clips, id, "Trim clip start", func(c *model.Clip) bool {
		in := clamp(newIn, 0, c.OriginalDurationFrames-1)
		in = min(in, c.SourceOutFrame-1)
		c.SourceInFrame = in
		c.DurationFrames = c.SourceOutFrame - in
		return true
	})
}

// TrimEnd sets the source out-point, clamped to
// [sourceIn+1, originalDuration].
func TrimEnd(clips []model.Clip, id string, newOut int) Result {
	return update(clips, id, "Trim clip end", func(c *model.Clip) bool {
		out := clamp(newOut, c.SourceInFrame+1, c.OriginalDurationFrames)
		c.SourceOutFrame = out
		c.DurationFrames = out - c.SourceInFrame
		return true
	})
}

// TrimLeftAt removes the part of the clip before frame. The clip's start
// moves to frame and its in-point advances by the same amount. It is a
// no-op unless frame is strictly inside the clip.
func TrimLeftAt(clips []model.Clip, id string, frame int) Edit {
	return Committed(update(clips, id, "Trim clip left at playhead", func(c *model.Clip) bool {
		if !c.Contains(frame) {
			return false
		}
		removed := frame - c.StartFrame
		c.StartFrame = frame
		c.SourceInFrame += removed
		c.DurationFrames -= removed
		return true
	}))
}

// TrimRightAt removes the part of the clip from frame onwards. The start
// is untouched.
func TrimRightAt(clips []model.Clip, id string, frame int) Edit {
	return Committed(update(clips, id, "Trim clip right at playhead", func(c *model.Clip) bool {
		if !c.Contains(frame) {
			return false
		}
		c.DurationFrames = frame - c.StartFrame
		c.SourceOutFrame = c.SourceInFrame + c.DurationFrames
		return true
	}))
}

// MoveToTrack reassigns the clip's lane. Kind compatibility is the
// caller's policy; see CompatibleTrack.
func MoveToTrack(clips []model.Clip, id string, trackIndex int) Result {
	return update(clips, id, "Move clip to track", func(c *model.Clip) bool {
		if c.TrackIndex == trackIndex {
			return false
		}
		c.TrackIndex = trackIndex
		return true
	})
}

// Insert adds clip to the collection, clamping its start at zero. A clip
// whose id is already present is ignored.
func Insert(clips []model.Clip, clip model.Clip) Result {
	const desc = "Add clip"
	if model.FindClip(clips, clip.ID) >= 0 {
		return unchanged(clips, desc)
	}
	clip.StartFrame = max(0, clip.StartFrame)
	out := append(model.CloneClips(clips), clip)
	return Result{
		Clips:       out,
		TotalFrames: model.TotalFrames(out),
		Description: desc,
		Selected:    clip.ID,
		Changed:     true,
	}
}
