package engine

import (
	"sync"
	"time"
)

// MediaElement is the single playback primitive the engine drives. The
// engine owns it exclusively; callers never seek or play it directly.
type MediaElement interface {
	Play() error
	Pause() error
	Paused() bool
	// CurrentTime is the playback position within the loaded source, in
	// seconds.
	CurrentTime() float64
	Seek(seconds float64) error
	// Load replaces the source. The returned channel is closed once the
	// new source can be seeked; a nil channel means ready immediately.
	Load(src string) (<-chan struct{}, error)
	// Unload clears the source so nothing renders.
	Unload()
}

// Refresher calls tick once per display refresh until stop is called.
type Refresher interface {
	Start(tick func(now time.Time)) (stop func())
}

// DefaultRefreshInterval approximates a 60 Hz display.
const DefaultRefreshInterval = time.Second / 60

// TickerRefresher drives ticks from a time.Ticker on its own goroutine.
type TickerRefresher struct {
	Interval time.Duration
}

// Start implements Refresher. Stop may be called from inside tick.
func (r TickerRefresher) Start(tick func(now time.Time)) func() {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	t := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case now := <-t.C:
				tick(now)
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			t.Stop()
			close(done)
		})
	}
}
