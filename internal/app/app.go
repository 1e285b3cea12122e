// Package app wires the long-lived services of a waves process: the tiered
// cache, the playback controller with its audio backend, artwork and queue
// persistence.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
	"golang.org/x/xerrors"

	"github.com/llehouerou/wavecore/internal/artwork"
	"github.com/llehouerou/wavecore/internal/cache"
	"github.com/llehouerou/wavecore/internal/config"
	"github.com/llehouerou/wavecore/internal/loader"
	"github.com/llehouerou/wavecore/internal/playback"
	"github.com/llehouerou/wavecore/internal/player"
	"github.com/llehouerou/wavecore/internal/playlist"
	"github.com/llehouerou/wavecore/internal/state"
)

var errEmptyQueue = xerrors.New("nothing to play")

// IsEmptyQueueError evaluates if the given error reports a play request
// without any playable location.
func IsEmptyQueueError(err error) bool {
	return xerrors.Is(err, errEmptyQueue)
}

type options struct {
	backend player.Backend
	state   state.Interface
	loader  cache.Loader
}

// Option overrides a service normally built from the configuration.
type Option func(*options)

// WithBackend uses b instead of the configured audio backend. The app takes
// ownership of b.
func WithBackend(b player.Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithState uses s for queue persistence instead of the state database.
func WithState(s state.Interface) Option {
	return func(o *options) { o.state = s }
}

// WithLoader replaces the HTTP and file loader behind cache fetches.
func WithLoader(l cache.Loader) Option {
	return func(o *options) { o.loader = l }
}

// App owns the services. Build it with New, call Start once, Close on exit.
type App struct {
	cfg *config.Config

	Registry *prometheus.Registry
	Cache    *cache.Manager
	Artwork  *artwork.Store
	Playback *playback.Controller

	backend player.Backend
	state   state.Interface
	loader  cache.Loader

	// ctx bounds artwork prefetches, stop ends the loops started by Start.
	ctx     context.Context
	cancel  context.CancelFunc
	stop    context.CancelFunc
	workers conc.WaitGroup

	mu          sync.Mutex
	closing     bool
	prefetch    conc.WaitGroup
	server      *http.Server
	metricsAddr string
	closeOnce   sync.Once
}

// New builds every service from cfg. Nothing runs in the background until
// Start is called.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.loader == nil {
		o.loader = loader.New()
	}

	playCfg := cfg.GetPlaybackConfig()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:      cfg,
		Registry: reg,
		loader:   o.loader,
		ctx:      ctx,
		cancel:   cancel,
		stop:     func() {},
	}

	c, err := OpenCache(cfg, cache.WithLoader(o.loader), cache.WithRegisterer(reg))
	if err != nil {
		cancel()
		return nil, err
	}
	a.Cache = c
	a.Artwork = artwork.NewStore(c, artwork.DefaultThumbWidth, artwork.DefaultThumbHeight)

	a.state = o.state
	if a.state == nil {
		mgr, err := state.Open(playCfg.StateDB)
		if err != nil {
			c.Close()
			cancel()
			return nil, fmt.Errorf("open state: %w", err)
		}
		a.state = mgr
	}

	a.backend = o.backend
	if a.backend == nil {
		b, err := player.New(playCfg.Backend, playCfg.PositionInterval)
		if err != nil {
			a.state.Close()
			c.Close()
			cancel()
			return nil, err
		}
		a.backend = b
	}

	a.Playback = playback.New(a.backend,
		playback.WithResolver(a.resolver()),
		playback.WithRestartThreshold(*playCfg.RestartThreshold),
		playback.WithVolume(*playCfg.Volume),
		playback.WithRegisterer(reg),
	)
	return a, nil
}

func (a *App) logger(function string) *log.Entry {
	return log.WithFields(log.Fields{
		"package":  "app",
		"struct":   "App",
		"function": function,
	})
}

// Start restores the saved queue and launches the background work: queue
// persistence, the periodic sweep and the metrics endpoint when configured.
// The restored queue is not played.
func (a *App) Start(ctx context.Context) error {
	if err := a.restore(); err != nil {
		a.logger("Start").WithError(err).Warn("saved queue not restored")
	}

	ctx, stop := context.WithCancel(ctx)
	a.stop = stop

	sub := a.Playback.Subscribe()
	a.workers.Go(func() { a.persist(ctx, sub) })

	if interval := a.cfg.GetCacheConfig().SweepInterval; interval > 0 {
		a.workers.Go(func() { a.sweepLoop(ctx, interval) })
	}

	if a.cfg.HasMetrics() {
		if err := a.serveMetrics(a.cfg.Metrics.Listen); err != nil {
			stop()
			a.workers.Wait()
			return err
		}
	}
	return nil
}

// PlayLocations replaces the queue with the given URLs or local paths and
// plays the first one.
func (a *App) PlayLocations(ctx context.Context, locations []string) error {
	tracks := make([]playlist.Track, 0, len(locations))
	for _, loc := range locations {
		if loc == "" {
			continue
		}
		tracks = append(tracks, playlist.FromLocation(loc))
	}
	if len(tracks) == 0 {
		return errEmptyQueue
	}
	return a.Playback.SetQueue(ctx, tracks, 0)
}

// Close stops the background work, then releases services in reverse order
// of construction. The last queue state is flushed before the state store
// closes.
func (a *App) Close() error {
	var errs []error
	a.closeOnce.Do(func() {
		a.stop()
		if a.server != nil {
			if err := a.server.Shutdown(context.Background()); err != nil {
				errs = append(errs, err)
			}
		}
		a.workers.Wait()

		a.saveQueue()
		errs = append(errs, a.Playback.Close())

		a.mu.Lock()
		a.closing = true
		a.mu.Unlock()
		a.cancel()
		a.prefetch.Wait()

		errs = append(errs,
			a.backend.Close(),
			a.state.Close(),
			a.Cache.Close(),
		)
	})
	return errors.Join(errs...)
}
