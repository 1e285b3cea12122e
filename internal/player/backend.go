// Package player drives audio rendering. A Backend loads one resource at a
// time, identified by a Handle, and reports progress as Events.
package player

import (
	"time"

	"golang.org/x/xerrors"
)

// Handle identifies one load request. Backends tag every event with the
// handle of the request it belongs to and ignore commands for other handles.
type Handle string

// Resource is the media a backend renders.
type Resource struct {
	URL      string
	Data     []byte
	Format   Format
	Duration time.Duration // hint, used when the backend cannot measure it
}

// EventKind is the type of a backend notification.
type EventKind int

const (
	EventReady EventKind = iota
	EventFailure
	EventEndOfMedia
	EventPosition
)

func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventFailure:
		return "failure"
	case EventEndOfMedia:
		return "end-of-media"
	case EventPosition:
		return "position"
	default:
		return "unknown"
	}
}

// Event is a backend notification.
type Event struct {
	Handle   Handle
	Kind     EventKind
	Duration time.Duration // EventReady; 0 when unknown
	Position time.Duration // EventPosition
	Err      error         // EventFailure
}

// Ready reports that h is loaded and can start.
func Ready(h Handle, duration time.Duration) Event {
	return Event{Handle: h, Kind: EventReady, Duration: duration}
}

// Failure reports that h could not be loaded or rendered.
func Failure(h Handle, err error) Event {
	return Event{Handle: h, Kind: EventFailure, Err: err}
}

// EndOfMedia reports that h played to its end.
func EndOfMedia(h Handle) Event {
	return Event{Handle: h, Kind: EventEndOfMedia}
}

// PositionTick reports the playback position of h.
func PositionTick(h Handle, pos time.Duration) Event {
	return Event{Handle: h, Kind: EventPosition, Position: pos}
}

// Backend renders audio. Load returns immediately; the outcome arrives as an
// EventReady or EventFailure. While started, a backend emits EventPosition
// periodically and EventEndOfMedia once the resource is exhausted.
type Backend interface {
	Load(h Handle, r Resource) error
	Start(h Handle) error
	Pause(h Handle) error
	Resume(h Handle) error
	Seek(h Handle, pos time.Duration) error
	Stop(h Handle) error
	SetVolume(level float64)
	Events() <-chan Event
	Close() error
}

// Backend names accepted by New.
const (
	BackendSpeaker = "speaker"
	BackendVirtual = "virtual"
)

// DefaultPositionInterval is how often started backends report position.
const DefaultPositionInterval = 500 * time.Millisecond

const eventBuffer = 64

var (
	errUnknownBackend = xerrors.New("unknown playback backend")
	errClosed         = xerrors.New("backend closed")
	errUnsupported    = xerrors.New("unsupported audio format")
)

// IsUnknownBackendError evaluates if the given error is an unknown backend error.
func IsUnknownBackendError(err error) bool {
	return xerrors.Is(err, errUnknownBackend)
}

// IsClosedError evaluates if the given error reports a closed backend.
func IsClosedError(err error) bool {
	return xerrors.Is(err, errClosed)
}

// IsUnsupportedError evaluates if the given error reports an undecodable format.
func IsUnsupportedError(err error) bool {
	return xerrors.Is(err, errUnsupported)
}

// New creates the named backend. Ticks are emitted every interval while
// playing; a non-positive interval uses DefaultPositionInterval.
func New(name string, interval time.Duration) (Backend, error) {
	switch name {
	case "", BackendSpeaker:
		return NewSpeaker(interval), nil
	case BackendVirtual:
		return NewVirtual(interval), nil
	default:
		return nil, xerrors.Errorf("%q: %w", name, errUnknownBackend)
	}
}

// clampPosition limits pos to [0, duration]; an unknown (zero) duration only
// bounds from below.
func clampPosition(pos, duration time.Duration) time.Duration {
	pos = max(pos, 0)
	if duration > 0 {
		pos = min(pos, duration)
	}
	return pos
}
