package model

import "sort"

// Segment is the read-only playback projection of a clip.
type Segment struct {
	ID             string `json:"id"`
	StartFrame     int    `json:"start_frame"`
	EndFrame       int    `json:"end_frame"`
	SourceURL      string `json:"source_url"`
	SourceInFrame  int    `json:"source_in_frame"`
	SourceOutFrame int    `json:"source_out_frame"`
	TrackIndex     int    `json:"track_index"`
}

// Segments projects the playable clips. Only video clips contribute; when
// tracks is non-nil, clips on hidden tracks are skipped. Segments are ordered
// by track index, then start frame, so an upper lane shadows a lower one.
func Segments(clips []Clip, tracks []Track) []Segment {
	segs := make([]Segment, 0, len(clips))
	for _, c := range clips {
		if c.Kind != TrackVideo {
			continue
		}
		if tracks != nil {
			t, ok := TrackByIndex(tracks, c.TrackIndex)
			if ok && !t.Visible {
				continue
			}
		}
		segs = append(segs, Segment{
			ID:             c.ID,
			StartFrame:     c.StartFrame,
			EndFrame:       c.EndFrame(),
			SourceURL:      c.SourceURL,
			SourceInFrame:  c.SourceInFrame,
			SourceOutFrame: c.SourceOutFrame,
			TrackIndex:     c.TrackIndex,
		})
	}
	sort.SliceStable(segs, func(i, j int) bool {
		if segs[i].TrackIndex != segs[j].TrackIndex {
			return segs[i].TrackIndex < segs[j].TrackIndex
		}
		return segs[i].StartFrame < segs[j].StartFrame
	})
	return segs
}

// SegmentAt returns the first segment with start <= frame < end.
func SegmentAt(segs []Segment, frame int) (Segment, bool) {
	for _, s := range segs {
		if s.StartFrame <= frame && frame < s.EndFrame {
			return s, true
		}
	}
	return Segment{}, false
}
