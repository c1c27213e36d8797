// Package snap computes magnetic alignment targets for timeline edits.
package snap

import (
	"github.com/rcliao/vtimeline/internal/frames"
	"github.com/rcliao/vtimeline/internal/model"
)

// DefaultTolerance is the snap distance in frames.
const DefaultTolerance = 3

// Targets returns candidate frames in priority order: the playhead, the
// whole second nearest to it, then the start and end of every clip other
// than excludeID.
func Targets(clips []model.Clip, playhead int, excludeID string) []int {
	targets := make([]int, 0, 2+2*len(clips))
	targets = append(targets, playhead, frames.NearestSecondFrame(playhead))
	for _, c := range clips {
		if c.ID == excludeID {
			continue
		}
		targets = append(targets, c.StartFrame, c.EndFrame())
	}
	return targets
}

// Resolve returns the first target within tolerance of candidate, or
// candidate unchanged.
func Resolve(candidate int, targets []int, tolerance int) int {
	v, _ := resolve(candidate, targets, tolerance)
	return v
}

// resolve is Resolve that also reports whether a target matched. A
// candidate already on a target matches at distance zero.
func resolve(candidate int, targets []int, tolerance int) (int, bool) {
	for _, t := range targets {
		d := t - candidate
		if d < 0 {
			d = -d
		}
		if d <= tolerance {
			return t, true
		}
	}
	return candidate, false
}

// Edges snaps a span of duration frames starting at start. The leading
// edge is tried first, including when it already sits on a target; the
// trailing edge only if the leading one matched nothing. It returns the
// snapped start, never below zero.
func Edges(start, duration int, targets []int, tolerance int) int {
	if s, ok := resolve(start, targets, tolerance); ok {
		return max(0, s)
	}
	if e, ok := resolve(start+duration, targets, tolerance); ok {
		return max(0, e-duration)
	}
	return max(0, start)
}
