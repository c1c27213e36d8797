// Package frames converts between seconds, frames and timeline pixels.
package frames

import (
	"fmt"
	"math"
)

// FPS is the fixed frame rate of every composition.
const FPS = 30

// TimeToFrame returns the frame nearest to the given time in seconds.
func TimeToFrame(seconds float64) int {
	return int(math.Round(seconds * FPS))
}

// FrameToTime returns the time in seconds at which frame starts.
func FrameToTime(frame float64) float64 {
	return frame / FPS
}

// FrameToPixel maps a frame onto the timeline at pxPerSecond.
func FrameToPixel(frame, pxPerSecond float64) float64 {
	return FrameToTime(frame) * pxPerSecond
}

// PixelToFrame maps a timeline x offset back to the nearest frame.
// A non-positive scale yields frame 0.
func PixelToFrame(px, pxPerSecond float64) int {
	if pxPerSecond <= 0 {
		return 0
	}
	return TimeToFrame(px / pxPerSecond)
}

// NearestSecondFrame returns the whole-second boundary closest to frame.
func NearestSecondFrame(frame int) int {
	return int(math.Round(float64(frame)/FPS)) * FPS
}

// Timecode formats a frame as MM:SS:FF.
func Timecode(frame int) string {
	if frame < 0 {
		frame = 0
	}
	secs := frame / FPS
	return fmt.Sprintf("%02d:%02d:%02d", secs/60, secs%60, frame%FPS)
}
