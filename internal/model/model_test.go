package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClip(t *testing.T) {
	c := NewClip("c1", "rec.webm", TrackVideo, 0, -5, 90)
	assert.Equal(t, 0, c.StartFrame)
	assert.Equal(t, 90, c.EndFrame())
	assert.Equal(t, 90, c.SourceOutFrame)
	assert.False(t, c.Trimmed())
	require.NoError(t, c.Validate())
}

func TestClipValidate(t *testing.T) {
	base := NewClip("c1", "rec.webm", TrackVideo, 0, 0, 90)

	cases := map[string]func(c *Clip){
		"negative start":    func(c *Clip) { c.StartFrame = -1 },
		"zero duration":     func(c *Clip) { c.DurationFrames = 0 },
		"in after out":      func(c *Clip) { c.SourceInFrame = 90 },
		"out past original": func(c *Clip) { c.SourceOutFrame = 91; c.DurationFrames = 91 },
		"duration mismatch": func(c *Clip) { c.DurationFrames = 50 },
		"bad kind":          func(c *Clip) { c.Kind = "subtitle" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			err := c.Validate()
			var ie *InvariantError
			require.True(t, errors.As(err, &ie), "expected InvariantError, got %v", err)
			assert.Equal(t, "c1", ie.ClipID)
		})
	}
}

func TestTotalFrames(t *testing.T) {
	assert.Equal(t, 0, TotalFrames(nil))
	clips := []Clip{
		NewClip("a", "x", TrackVideo, 0, 0, 30),
		NewClip("b", "x", TrackVideo, 0, 60, 30),
		NewClip("c", "y", TrackAudio, 1, 10, 20),
	}
	assert.Equal(t, 90, TotalFrames(clips))
}

func TestCloneClipsIsIndependent(t *testing.T) {
	clips := []Clip{NewClip("a", "x", TrackVideo, 0, 0, 30)}
	cp := CloneClips(clips)
	cp[0].StartFrame = 99
	assert.Equal(t, 0, clips[0].StartFrame)
	assert.Nil(t, CloneClips(nil))
}

func TestSegmentsSkipsAudioAndHiddenTracks(t *testing.T) {
	tracks := []Track{
		{ID: "t0", Index: 0, Kind: TrackVideo, Name: "V1", Visible: true},
		{ID: "t1", Index: 1, Kind: TrackVideo, Name: "V2", Visible: false},
		{ID: "t2", Index: 2, Kind: TrackAudio, Name: "A1", Visible: true},
	}
	clips := []Clip{
		NewClip("late", "x", TrackVideo, 0, 60, 30),
		NewClip("early", "x", TrackVideo, 0, 0, 30),
		NewClip("hidden", "y", TrackVideo, 1, 0, 30),
		NewClip("voice", "z", TrackAudio, 2, 0, 30),
	}

	segs := Segments(clips, tracks)
	require.Len(t, segs, 2)
	assert.Equal(t, "early", segs[0].ID)
	assert.Equal(t, "late", segs[1].ID)
	assert.Equal(t, 90, segs[1].EndFrame)

	assert.Len(t, Segments(clips, nil), 3)
}

func TestSegmentAt(t *testing.T) {
	segs := Segments([]Clip{
		NewClip("a", "x", TrackVideo, 0, 0, 30),
		NewClip("b", "x", TrackVideo, 0, 60, 30),
	}, nil)

	s, ok := SegmentAt(segs, 29)
	require.True(t, ok)
	assert.Equal(t, "a", s.ID)

	_, ok = SegmentAt(segs, 30)
	assert.False(t, ok, "end frame is exclusive")

	_, ok = SegmentAt(segs, 45)
	assert.False(t, ok)
}
