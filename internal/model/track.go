package model

// TrackKind is the kind of media a track lane holds.
type TrackKind string

const (
	TrackVideo TrackKind = "video"
	TrackAudio TrackKind = "audio"
)

// ValidTrackKinds are the allowed track kinds.
var ValidTrackKinds = map[TrackKind]bool{
	TrackVideo: true,
	TrackAudio: true,
}

// Track is an ordered lane of clips of one kind.
type Track struct {
	ID      string    `json:"id"`
	Index   int       `json:"index"`
	Kind    TrackKind `json:"kind"`
	Name    string    `json:"name"`
	Muted   bool      `json:"muted,omitempty"`
	Visible bool      `json:"visible"`
	Locked  bool      `json:"locked,omitempty"`
}

// TrackByIndex returns the track at index, if any.
func TrackByIndex(tracks []Track, index int) (Track, bool) {
	for _, t := range tracks {
		if t.Index == index {
			return t, true
		}
	}
	return Track{}, false
}

// CloneTracks copies tracks.
func CloneTracks(tracks []Track) []Track {
	if tracks == nil {
		return nil
	}
	out := make([]Track, len(tracks))
	copy(out, tracks)
	return out
}
