// Package model defines the clip, track and segment types of a composition.
package model

import "fmt"

// Clip is a placed instance of a media source on the timeline.
type Clip struct {
	ID                     string    `json:"id"`
	SourceURL              string    `json:"source_url"`
	Kind                   TrackKind `json:"kind"`
	TrackIndex             int       `json:"track_index"`
	StartFrame             int       `json:"start_frame"`
	DurationFrames         int       `json:"duration_frames"`
	OriginalDurationFrames int       `json:"original_duration_frames"`
	SourceInFrame          int       `json:"source_in_frame"`
	SourceOutFrame         int       `json:"source_out_frame"`
}

// NewClip returns an untrimmed clip covering its whole source.
func NewClip(id, sourceURL string, kind TrackKind, trackIndex, startFrame, durationFrames int) Clip {
	if startFrame < 0 {
		startFrame = 0
	}
	if durationFrames < 1 {
		durationFrames = 1
	}
	return Clip{
		ID:                     id,
		SourceURL:              sourceURL,
		Kind:                   kind,
		TrackIndex:             trackIndex,
		StartFrame:             startFrame,
		DurationFrames:         durationFrames,
		OriginalDurationFrames: durationFrames,
		SourceInFrame:          0,
		SourceOutFrame:         durationFrames,
	}
}

// EndFrame is the exclusive end of the clip on the master timeline.
func (c Clip) EndFrame() int {
	return c.StartFrame + c.DurationFrames
}

// Contains reports whether frame lies strictly inside the clip's span.
func (c Clip) Contains(frame int) bool {
	return frame > c.StartFrame && frame < c.EndFrame()
}

// Trimmed reports whether either side of the source window is cut.
func (c Clip) Trimmed() bool {
	return c.SourceInFrame > 0 || c.SourceOutFrame < c.OriginalDurationFrames
}

// SameGeometry compares everything that affects placement and playback.
func (c Clip) SameGeometry(o Clip) bool {
	return c.ID == o.ID &&
		c.SourceURL == o.SourceURL &&
		c.TrackIndex == o.TrackIndex &&
		c.StartFrame == o.StartFrame &&
		c.DurationFrames == o.DurationFrames &&
		c.SourceInFrame == o.SourceInFrame &&
		c.SourceOutFrame == o.SourceOutFrame
}

// InvariantError describes a clip that violates the model invariants.
type InvariantError struct {
	ClipID string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("clip %s: %s", e.ClipID, e.Reason)
}

// Validate checks the clip invariants.
func (c Clip) Validate() error {
	switch {
	case c.StartFrame < 0:
		return &InvariantError{c.ID, fmt.Sprintf("start frame %d is negative", c.StartFrame)}
	case c.DurationFrames <= 0:
		return &InvariantError{c.ID, fmt.Sprintf("duration %d is not positive", c.DurationFrames)}
	case c.SourceInFrame < 0:
		return &InvariantError{c.ID, fmt.Sprintf("source in %d is negative", c.SourceInFrame)}
	case c.SourceInFrame >= c.SourceOutFrame:
		return &InvariantError{c.ID, fmt.Sprintf("source in %d not before source out %d", c.SourceInFrame, c.SourceOutFrame)}
	case c.SourceOutFrame > c.OriginalDurationFrames:
		return &InvariantError{c.ID, fmt.Sprintf("source out %d beyond original duration %d", c.SourceOutFrame, c.OriginalDurationFrames)}
	case c.DurationFrames != c.SourceOutFrame-c.SourceInFrame:
		return &InvariantError{c.ID, fmt.Sprintf("duration %d != source window %d", c.DurationFrames, c.SourceOutFrame-c.SourceInFrame)}
	case !ValidTrackKinds[c.Kind]:
		return &InvariantError{c.ID, fmt.Sprintf("invalid kind %q", c.Kind)}
	}
	return nil
}

// ValidateClips returns the first invariant violation in clips.
func ValidateClips(clips []Clip) error {
	for _, c := range clips {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// TotalFrames is the furthest clip endpoint, or 0 with no clips.
func TotalFrames(clips []Clip) int {
	total := 0
	for _, c := range clips {
		if end := c.EndFrame(); end > total {
			total = end
		}
	}
	return total
}

// FindClip returns the index of the clip with id, or -1.
func FindClip(clips []Clip, id string) int {
	for i, c := range clips {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// CloneClips returns a copy that shares no backing array with clips.
func CloneClips(clips []Clip) []Clip {
	if clips == nil {
		return nil
	}
	out := make([]Clip, len(clips))
	copy(out, clips)
	return out
}
