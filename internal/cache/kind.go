package cache

import (
	"strings"
	"time"

	"golang.org/x/xerrors"
)

// Kind is a resource kind. Each kind has its own lifetime and sub-directory.
type Kind int

const (
	KindImage Kind = iota
	KindPayload
	KindAudio
)

// Kinds lists every kind in a stable order.
var Kinds = []Kind{KindImage, KindPayload, KindAudio}

// Default lifetimes.
const (
	ImageTTL   = 7 * 24 * time.Hour
	PayloadTTL = 24 * time.Hour
	AudioTTL   = 30 * 24 * time.Hour
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindPayload:
		return "payload"
	case KindAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// Dir returns the kind's sub-directory below the cache root.
func (k Kind) Dir() string {
	switch k {
	case KindImage:
		return "images"
	case KindPayload:
		return "payloads"
	case KindAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// TTL returns the kind's default lifetime.
func (k Kind) TTL() time.Duration {
	switch k {
	case KindImage:
		return ImageTTL
	case KindPayload:
		return PayloadTTL
	case KindAudio:
		return AudioTTL
	default:
		return 0
	}
}

// Valid reports whether k is one of Kinds.
func (k Kind) Valid() bool {
	return k >= KindImage && k <= KindAudio
}

// compressed reports whether the kind's blobs are zstd compressed on disk.
// Images and audio are already compressed media.
func (k Kind) compressed() bool {
	return k == KindPayload
}

// ParseKind accepts a kind name or its directory name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "image", "images":
		return KindImage, nil
	case "payload", "payloads":
		return KindPayload, nil
	case "audio":
		return KindAudio, nil
	default:
		return 0, xerrors.Errorf("%q: %w", s, errUnknownKind)
	}
}
