package playback

import (
	"github.com/llehouerou/wavecore/internal/playlist"
)

// State represents the transport state.
type State int

const (
	StateStopped State = iota
	StateLoading
	StatePlaying
	StatePaused
	StateErrored
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateLoading:
		return "Loading"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateErrored:
		return "Errored"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a track is loaded (playing or paused).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// Track is a queue entry.
type Track = playlist.Track

// RepeatMode defines the repeat behavior.
type RepeatMode = playlist.RepeatMode

const (
	RepeatOff = playlist.RepeatOff
	RepeatOne = playlist.RepeatOne
	RepeatAll = playlist.RepeatAll
)
