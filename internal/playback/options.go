package playback

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/llehouerou/wavecore/internal/playlist"
)

// DefaultRestartThreshold is the elapsed time past which Previous restarts
// the current track instead of moving back.
const DefaultRestartThreshold = 3 * time.Second

const defaultHistorySize = 50

type options struct {
	resolver         Resolver
	queue            *playlist.PlayingQueue
	restartThreshold time.Duration
	volume           float64
	historySize      int
	registerer       prometheus.Registerer
}

// Option configures a Controller.
type Option func(*options)

// WithResolver sets how tracks become backend resources.
func WithResolver(r Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithQueue uses q as the play queue.
func WithQueue(q *playlist.PlayingQueue) Option {
	return func(o *options) { o.queue = q }
}

// WithRestartThreshold overrides DefaultRestartThreshold.
func WithRestartThreshold(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.restartThreshold = d
		}
	}
}

// WithVolume sets the initial volume.
func WithVolume(level float64) Option {
	return func(o *options) { o.volume = level }
}

// WithHistorySize bounds the undo history.
func WithHistorySize(n int) Option {
	return func(o *options) { o.historySize = n }
}

// WithRegisterer registers playback metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}
