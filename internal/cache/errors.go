package cache

import (
	"golang.org/x/xerrors"
)

var (
	errUnknownKind = xerrors.New("unknown cache kind")
	errNoLoader    = xerrors.New("no resource loader configured")
	errClosed      = xerrors.New("cache closed")
	errCorrupt     = xerrors.New("corrupt cache entry")
)

// IsUnknownKindError evaluates if the given error is an unknown kind error.
func IsUnknownKindError(err error) bool {
	return xerrors.Is(err, errUnknownKind)
}

// IsNoLoaderError evaluates if the given error reports a missing loader.
func IsNoLoaderError(err error) bool {
	return xerrors.Is(err, errNoLoader)
}

// IsClosedError evaluates if the given error reports a closed cache.
func IsClosedError(err error) bool {
	return xerrors.Is(err, errClosed)
}
