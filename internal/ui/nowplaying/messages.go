package nowplaying

import (
	"github.com/llehouerou/wavecore/internal/cache"
	"github.com/llehouerou/wavecore/internal/errmsg"
	"github.com/llehouerou/wavecore/internal/playback"
)

// eventMsg carries one controller notification. Only one of the fields is
// set; the view re-reads the snapshot on every event.
type eventMsg struct {
	track *playback.TrackChange
	err   *playback.ErrorEvent
}

// closedMsg is sent when the controller closes the subscription.
type closedMsg struct{}

// actionDoneMsg reports the result of a blocking controller call.
type actionDoneMsg struct {
	op  errmsg.Op
	err error
}

// statsMsg carries a fresh cache snapshot.
type statsMsg struct {
	stats cache.Stats
	err   error
}

// statsTickMsg schedules the next cache snapshot.
type statsTickMsg struct{}

// coverMsg carries the thumbnail of the track identified by key.
type coverMsg struct {
	key  string
	data []byte
}
