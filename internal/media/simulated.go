// Package media provides a headless media element for driving the engine
// without a decoder: it tracks source, position and play state only.
package media

import (
	"errors"
	"sync"
	"time"
)

// ErrNoSource is returned by Play when nothing is loaded.
var ErrNoSource = errors.New("no source loaded")

// Simulated is an in-memory media element. Its clock only moves when
// Advance is called.
type Simulated struct {
	mu sync.Mutex

	src         string
	paused      bool
	position    float64
	durations   map[string]float64
	manualReady bool
	pending     chan struct{}

	// PlayErr, when set, is returned by every Play call.
	PlayErr error

	loads []string
	seeks []float64
}

// Option configures a Simulated element.
type Option func(*Simulated)

// WithManualReady makes Load return a channel that stays open until
// MarkReady is called.
func WithManualReady() Option {
	return func(s *Simulated) { s.manualReady = true }
}

// WithDuration records the length in seconds of a source so playback
// stops at its end.
func WithDuration(src string, seconds float64) Option {
	return func(s *Simulated) { s.durations[src] = seconds }
}

// NewSimulated returns a paused element with nothing loaded.
func NewSimulated(opts ...Option) *Simulated {
	s := &Simulated{paused: true, durations: make(map[string]float64)}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Simulated) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PlayErr != nil {
		return s.PlayErr
	}
	if s.src == "" {
		return ErrNoSource
	}
	s.paused = false
	return nil
}

func (s *Simulated) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	return nil
}

func (s *Simulated) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Simulated) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

func (s *Simulated) Seek(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.src == "" {
		return ErrNoSource
	}
	if seconds < 0 {
		seconds = 0
	}
	s.position = seconds
	s.seeks = append(s.seeks, seconds)
	return nil
}

func (s *Simulated) Load(src string) (<-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if src == "" {
		return nil, errors.New("empty source")
	}
	s.src = src
	s.position = 0
	s.paused = true
	s.loads = append(s.loads, src)
	ch := make(chan struct{})
	if s.manualReady {
		s.pending = ch
	} else {
		close(ch)
	}
	return ch, nil
}

// MarkReady completes a pending load.
func (s *Simulated) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		close(s.pending)
		s.pending = nil
	}
}

func (s *Simulated) Unload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src = ""
	s.position = 0
	s.paused = true
	if s.pending != nil {
		close(s.pending)
		s.pending = nil
	}
}

// Advance moves the playback position by d while playing, stopping at the
// source's known duration.
func (s *Simulated) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused || s.src == "" {
		return
	}
	s.position += d.Seconds()
	if dur, ok := s.durations[s.src]; ok && s.position >= dur {
		s.position = dur
		s.paused = true
	}
}

// Nudge shifts the position without recording a seek, as a decoder
// running fast or slow would.
func (s *Simulated) Nudge(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position += seconds
}

// Source returns the loaded source, or "".
func (s *Simulated) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src
}

// Loads returns every source passed to Load, in order.
func (s *Simulated) Loads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.loads...)
}

// Seeks returns every seek target, in order.
func (s *Simulated) Seeks() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.seeks...)
}
