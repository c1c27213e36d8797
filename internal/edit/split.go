package edit

import (
	"github.com/rcliao/vtimeline/internal/model"
)

// Split cuts the clip at frame into "<id>-1" and "<id>-2". The two halves
// cover the original source window with no gap or overlap. The leading
// half is returned as Selected.
func Split(clips []model.Clip, id string, frame int) Edit {
	const desc = "Split clip"
	i := model.FindClip(clips, id)
	if i < 0 || !clips[i].Contains(frame) {
		return Committed(unchanged(clips, desc))
	}

	orig := clips[i]
	at := frame - orig.StartFrame

	first := orig
	first.ID = orig.ID + "-1"
	first.DurationFrames = at
	first.SourceOutFrame = orig.SourceInFrame + at

	second := orig
	second.ID = orig.ID + "-2"
	second.StartFrame = frame
	second.SourceInFrame = orig.SourceInFrame + at
	second.DurationFrames = orig.SourceOutFrame - second.SourceInFrame

	out := make([]model.Clip, 0, len(clips)+1)
	out = append(out, clips[:i]...)
	out = append(out, first, second)
	out = append(out, clips[i+1:]...)

	return Committed(Result{
		Clips:       out,
		TotalFrames: model.TotalFrames(out),
		Description: desc,
		Selected:    first.ID,
		Changed:     true,
	})
}

// Delete removes the clip. Its source is listed in Released when no
// remaining clip plays it.
func Delete(clips []model.Clip, id string) Edit {
	const desc = "Delete clip"
	i := model.FindClip(clips, id)
	if i < 0 {
		return Committed(unchanged(clips, desc))
	}

	removed := clips[i]
	out := make([]model.Clip, 0, len(clips)-1)
	out = append(out, clips[:i]...)
	out = append(out, clips[i+1:]...)

	var released []string
	shared := false
	for _, c := range out {
		if c.SourceURL == removed.SourceURL {
			shared = true
			break
		}
	}
	if !shared && removed.SourceURL != "" {
		released = []string{removed.SourceURL}
	}

	return Committed(Result{
		Clips:       out,
		TotalFrames: model.TotalFrames(out),
		Description: desc,
		Released:    released,
		Changed:     true,
	})
}
