// Package cachemeta persists per-entry cache metadata (creation, expiry, size,
// checksum) next to the cached bytes.
package cachemeta

import (
	"context"
	"time"

	"golang.org/x/xerrors"
)

// Entry is the persisted record of one cached value.
type Entry struct {
	Kind      string // kind directory, e.g. "images"
	Key       string // logical key (usually a URL)
	StorageID string // content address of Key
	CreatedAt time.Time
	ExpiresAt time.Time
	Size      int64  // bytes stored on disk
	Checksum  uint64 // xxhash64 of the stored bytes
}

// Expired reports whether the entry's lifetime has passed at now.
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Store is the metadata index of the disk tier.
type Store interface {
	// Put inserts or replaces the record for (kind, storage id).
	Put(ctx context.Context, e Entry) error
	// Get returns the record, or false when absent.
	Get(ctx context.Context, kind, storageID string) (Entry, bool, error)
	// Delete removes the record if present.
	Delete(ctx context.Context, kind, storageID string) error
	// DeleteIf removes the record only if it still has the given creation time.
	DeleteIf(ctx context.Context, kind, storageID string, createdAt time.Time) (bool, error)
	// DeleteKind removes every record of kind.
	DeleteKind(ctx context.Context, kind string) error
	// List returns every record of kind.
	List(ctx context.Context, kind string) ([]Entry, error)
	// Expired returns the records of kind that are expired at now.
	Expired(ctx context.Context, kind string, now time.Time) ([]Entry, error)
	// Usage sums the sizes of the records of kind.
	Usage(ctx context.Context, kind string) (int64, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

var errUnknownBackend = xerrors.New("unknown metadata backend")

// IsUnknownBackendError evaluates if the given error is an unknown backend error.
func IsUnknownBackendError(err error) bool {
	return xerrors.Is(err, errUnknownBackend)
}

// Open opens the metadata store of the given backend at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", BackendSQLite:
		return OpenSQLite(path)
	case BackendBolt:
		return OpenBolt(path)
	default:
		return nil, xerrors.Errorf("%q: %w", backend, errUnknownBackend)
	}
}
