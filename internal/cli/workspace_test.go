package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/vtimeline/internal/model"
)

func TestParseFrame(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"90", 90},
		{" 12 ", 12},
		{"3s", 90},
		{"1.5s", 45},
		{"0.02s", 1},
		{"00:01:15", 45},
		{"01:00:00", 1800},
		{"-4", -4},
	}
	for _, c := range cases {
		got, err := parseFrame(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}

	for _, bad := range []string{"", "abc", "xs", "00:aa:01"} {
		_, err := parseFrame(bad)
		assert.Error(t, err, bad)
	}
}

func TestTrackEnd(t *testing.T) {
	clips := []model.Clip{
		model.NewClip("a", "a.mp4", model.TrackVideo, 0, 0, 60),
		model.NewClip("b", "b.mp4", model.TrackVideo, 0, 90, 30),
		model.NewClip("c", "c.wav", model.TrackAudio, 1, 0, 300),
	}
	assert.Equal(t, 120, trackEnd(clips, 0))
	assert.Equal(t, 300, trackEnd(clips, 1))
	assert.Equal(t, 0, trackEnd(clips, 2))
}

func TestSteppedRefresher(t *testing.T) {
	r := &steppedRefresher{}
	assert.False(t, r.fire(time.Unix(1, 0)))

	var got []time.Time
	var stop func()
	stop = r.Start(func(now time.Time) {
		got = append(got, now)
		if len(got) == 2 {
			stop()
		}
	})

	assert.True(t, r.fire(time.Unix(1, 0)))
	assert.True(t, r.fire(time.Unix(2, 0)))
	assert.False(t, r.fire(time.Unix(3, 0)))
	assert.Len(t, got, 2)
}

func TestEventColor(t *testing.T) {
	assert.NotEqual(t, eventColor("segment"), eventColor("warning"))
	assert.Equal(t, eventColor("play"), eventColor("pause"))
}
