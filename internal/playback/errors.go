package playback

import (
	"golang.org/x/xerrors"
)

var (
	errSuperseded = xerrors.New("load superseded")
	errLoadFailed = xerrors.New("load failed")
	errClosed     = xerrors.New("playback closed")
)

// IsSupersededError evaluates if the given error reports a load replaced by
// a newer play or stop.
func IsSupersededError(err error) bool {
	return xerrors.Is(err, errSuperseded)
}

// IsLoadFailedError evaluates if the given error reports a failed load.
func IsLoadFailedError(err error) bool {
	return xerrors.Is(err, errLoadFailed)
}

// IsClosedError evaluates if the given error reports a closed controller.
func IsClosedError(err error) bool {
	return xerrors.Is(err, errClosed)
}
