package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayRequiresSource(t *testing.T) {
	s := NewSimulated()
	assert.ErrorIs(t, s.Play(), ErrNoSource)

	_, err := s.Load("a.webm")
	require.NoError(t, err)
	require.NoError(t, s.Play())
	assert.False(t, s.Paused())
}

func TestAdvanceStopsAtDuration(t *testing.T) {
	s := NewSimulated(WithDuration("a.webm", 1))
	s.Load("a.webm")
	s.Play()
	s.Advance(700 * time.Millisecond)
	assert.InDelta(t, 0.7, s.CurrentTime(), 1e-9)
	s.Advance(time.Second)
	assert.InDelta(t, 1.0, s.CurrentTime(), 1e-9)
	assert.True(t, s.Paused())
}

func TestManualReady(t *testing.T) {
	s := NewSimulated(WithManualReady())
	ready, err := s.Load("a.webm")
	require.NoError(t, err)

	select {
	case <-ready:
		t.Fatal("ready before MarkReady")
	default:
	}
	s.MarkReady()
	<-ready
}

func TestUnloadClearsSource(t *testing.T) {
	s := NewSimulated()
	s.Load("a.webm")
	s.Seek(2)
	s.Unload()
	assert.Equal(t, "", s.Source())
	assert.Equal(t, 0.0, s.CurrentTime())
	assert.True(t, s.Paused())
	assert.Equal(t, []float64{2}, s.Seeks())
	assert.Equal(t, []string{"a.webm"}, s.Loads())
}
