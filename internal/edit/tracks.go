package edit

import (
	"fmt"
	"sort"

	"github.com/rcliao/vtimeline/internal/model"
)

// Position selects where AddTrack inserts among tracks of the same kind.
type Position string

const (
	PositionAbove   Position = "above"
	PositionBetween Position = "between"
	PositionBelow   Position = "below"
)

// ValidPositions are the accepted insert positions.
var ValidPositions = map[Position]bool{
	PositionAbove:   true,
	PositionBetween: true,
	PositionBelow:   true,
}

// InitialTracks is the session-start layout: one video and one audio lane.
func InitialTracks(videoID, audioID string) []model.Track {
	return []model.Track{
		{ID: videoID, Index: 0, Kind: model.TrackVideo, Name: "V1", Visible: true},
		{ID: audioID, Index: 1, Kind: model.TrackAudio, Name: "A1", Visible: true},
	}
}

// TrackChange is the outcome of AddTrack.
type TrackChange struct {
	Tracks []model.Track
	Clips  []model.Clip
	Added  model.Track
	// Remap maps every previous track index to its new index.
	Remap map[int]int
}

// AddTrack inserts a new track of kind. Above puts it first among its
// kind, below puts it last and between puts it in the middle of the group,
// after the upper half (so after the only track of a one-track group).
// Afterwards every track is renumbered (video lanes first, then audio)
// and renamed V1..Vn / A1..An, and clips are remapped so each stays on
// its lane.
func AddTrack(tracks []model.Track, clips []model.Clip, id string, kind model.TrackKind, pos Position) TrackChange {
	ordered := model.CloneTracks(tracks)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	var video, audio []model.Track
	for _, t := range ordered {
		if t.Kind == model.TrackAudio {
			audio = append(audio, t)
		} else {
			video = append(video, t)
		}
	}

	added := model.Track{ID: id, Index: -1, Kind: kind, Visible: true}
	insert := func(group []model.Track) []model.Track {
		at := len(group)
		switch pos {
		case PositionAbove:
			at = 0
		case PositionBetween:
			at = (len(group) + 1) / 2
		}
		group = append(group, model.Track{})
		copy(group[at+1:], group[at:])
		group[at] = added
		return group
	}
	if kind == model.TrackAudio {
		audio = insert(audio)
	} else {
		video = insert(video)
	}

	out := append(video, audio...)
	remap := make(map[int]int, len(out))
	for i := range out {
		if out[i].Index >= 0 {
			remap[out[i].Index] = i
		}
		out[i].Index = i
	}
	renumber(out)

	change := TrackChange{Tracks: out, Clips: RemapTracks(clips, remap), Remap: remap}
	for _, t := range out {
		if t.ID == id {
			change.Added = t
		}
	}
	return change
}

// RemapTracks returns a copy of clips with track indices translated
// through remap. Indices missing from remap are kept.
func RemapTracks(clips []model.Clip, remap map[int]int) []model.Clip {
	out := model.CloneClips(clips)
	for i := range out {
		if idx, ok := remap[out[i].TrackIndex]; ok {
			out[i].TrackIndex = idx
		}
	}
	return out
}

// renumber regenerates names so they stay contiguous per kind.
func renumber(tracks []model.Track) {
	v, a := 0, 0
	for i := range tracks {
		if tracks[i].Kind == model.TrackAudio {
			a++
			tracks[i].Name = fmt.Sprintf("A%d", a)
		} else {
			v++
			tracks[i].Name = fmt.Sprintf("V%d", v)
		}
	}
}

// CompatibleTrack reports whether clip may be placed on the track at index.
func CompatibleTrack(tracks []model.Track, clip model.Clip, index int) bool {
	t, ok := model.TrackByIndex(tracks, index)
	return ok && t.Kind == clip.Kind
}

// TrackFlag names a toggleable track property.
type TrackFlag string

const (
	FlagMuted   TrackFlag = "muted"
	FlagVisible TrackFlag = "visible"
	FlagLocked  TrackFlag = "locked"
)

// SetTrackFlag returns tracks with flag set on the track at index. Muting
// applies to audio tracks only.
func SetTrackFlag(tracks []model.Track, index int, flag TrackFlag, value bool) ([]model.Track, error) {
	out := model.CloneTracks(tracks)
	for i := range out {
		if out[i].Index != index {
			continue
		}
		switch flag {
		case FlagMuted:
			if out[i].Kind != model.TrackAudio {
				return tracks, fmt.Errorf("track %s is not an audio track", out[i].Name)
			}
			out[i].Muted = value
		case FlagVisible:
			out[i].Visible = value
		case FlagLocked:
			out[i].Locked = value
		default:
			return tracks, fmt.Errorf("unknown track flag %q", flag)
		}
		return out, nil
	}
	return tracks, fmt.Errorf("no track at index %d", index)
}
