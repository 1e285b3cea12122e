package playback

import (
	"context"
	"time"

	"github.com/llehouerou/wavecore/internal/catalog"
	"github.com/llehouerou/wavecore/internal/playlist"
)

// Service defines the playback service contract.
type Service interface {
	// Playback control. Methods taking a context block until the load they
	// start is ready or failed, superseded, or ctx is done.
	Play(ctx context.Context) error
	PlayIndex(ctx context.Context, index int) error
	PlayItem(ctx context.Context, item catalog.Item) error
	Pause()
	Resume()
	Toggle(ctx context.Context) error
	Stop()
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Seek(position time.Duration)
	SeekBy(delta time.Duration)

	// Queue manipulation
	SetQueue(ctx context.Context, tracks []Track, start int) error
	Append(tracks ...Track)
	RemoveAt(index int) bool
	Restore(s playlist.Snapshot)
	Undo() bool
	Redo() bool

	// Modes
	ToggleShuffle() bool
	ToggleRepeat() RepeatMode
	SetVolume(level float64)

	// State queries
	State() State
	Position() time.Duration
	Volume() float64
	Snapshot() Snapshot

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}

// Snapshot is a copy of the controller state for UI binding.
type Snapshot struct {
	State      State
	Track      *Track
	Index      int
	Queue      []Track
	Position   time.Duration
	Duration   time.Duration
	Volume     float64
	RepeatMode RepeatMode
	Shuffle    bool
	Err        error // last load failure while Errored
}
