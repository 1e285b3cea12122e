// Package playback implements the transport state machine. A Controller owns
// the play queue, drives a player.Backend and fans its state out to
// subscribers.
package playback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/xid"
	log "github.com/sirupsen/logrus"

	"github.com/llehouerou/wavecore/internal/catalog"
	"github.com/llehouerou/wavecore/internal/player"
	"github.com/llehouerou/wavecore/internal/playlist"
)

// Verify Controller implements Service at compile time.
var _ Service = (*Controller)(nil)

// Controller serializes user commands and backend notifications under one
// mutex. Backend events are applied in arrival order by a single loop.
type Controller struct {
	mu sync.Mutex

	backend  player.Backend
	resolver Resolver
	queue    *playlist.PlayingQueue
	history  *playlist.QueueHistory
	opts     *options
	metrics  *metrics

	state    State
	handle   player.Handle // current load, "" when nothing is loaded
	cancel   context.CancelFunc
	waiter   chan error // settles the Play call waiting on handle
	position time.Duration
	duration time.Duration
	volume   float64
	lastErr  error

	lastTrack *Track
	lastIndex int

	subs   []*Subscription
	subsMu sync.RWMutex

	done     chan struct{}
	loopDone chan struct{}
	closed   bool
}

// New creates a controller driving backend and starts consuming its events.
func New(backend player.Backend, opts ...Option) *Controller {
	o := &options{
		restartThreshold: DefaultRestartThreshold,
		volume:           1,
		historySize:      defaultHistorySize,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.resolver == nil {
		o.resolver = passthrough
	}
	if o.queue == nil {
		o.queue = playlist.NewQueue()
	}

	c := &Controller{
		backend:   backend,
		resolver:  o.resolver,
		queue:     o.queue,
		history:   playlist.NewQueueHistory(o.historySize),
		opts:      o,
		metrics:   newMetrics(o.registerer),
		volume:    player.ClampVolume(o.volume),
		lastIndex: -1,
		done:      make(chan struct{}),
		loopDone:  make(chan struct{}),
	}
	c.history.Push(c.queue.Snapshot())
	backend.SetVolume(c.volume)

	go c.loop()
	return c
}

func (c *Controller) logger(function string) *log.Entry {
	return log.WithFields(log.Fields{
		"package":  "playback",
		"struct":   "Controller",
		"function": function,
	})
}

// loop applies backend notifications until Close.
func (c *Controller) loop() {
	defer close(c.loopDone)
	events := c.backend.Events()
	for {
		select {
		case <-c.done:
			return
		case ev := <-events:
			c.handleEvent(ev)
		}
	}
}

func (c *Controller) handleEvent(ev player.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if ev.Handle == "" || ev.Handle != c.handle {
		c.metrics.staleEvents.Inc()
		return
	}

	switch ev.Kind {
	case player.EventReady:
		if c.state != StateLoading {
			return
		}
		if ev.Duration > 0 {
			c.duration = ev.Duration
		}
		if err := c.backend.Start(c.handle); err != nil {
			c.failLocked(err)
			return
		}
		c.metrics.loads.WithLabelValues("ok").Inc()
		c.setStateLocked(StatePlaying)
		c.settleLocked(nil)

	case player.EventFailure:
		if c.state != StateLoading && !c.state.IsActive() {
			return
		}
		c.failLocked(ev.Err)

	case player.EventEndOfMedia:
		if c.state != StatePlaying {
			return
		}
		c.endOfMediaLocked()

	case player.EventPosition:
		if c.state != StatePlaying {
			return
		}
		c.position = ev.Position
		c.broadcastPositionLocked()
	}
}

// endOfMediaLocked picks what follows the finished track.
func (c *Controller) endOfMediaLocked() {
	next := c.queue.EndIndex()
	if next < 0 {
		c.stopLocked()
		return
	}
	c.queue.JumpTo(next)
	c.startLoadLocked()
}

// failLocked moves the current load to Errored.
func (c *Controller) failLocked(err error) {
	if err == nil {
		err = errLoadFailed
	}
	url := ""
	if t := c.queue.Current(); t != nil {
		url = t.URL
	}
	c.logger("fail").WithError(err).Warnf("failed to load %s", url)

	c.metrics.loads.WithLabelValues("failed").Inc()
	c.lastErr = err
	c.position = 0
	c.setStateLocked(StateErrored)
	c.settleLocked(fmt.Errorf("%w: %w", errLoadFailed, err))
	c.broadcastError(ErrorEvent{Operation: "play", URL: url, Err: err})
}

// settleLocked releases the Play call waiting on the current load.
func (c *Controller) settleLocked(err error) {
	if c.waiter != nil {
		c.waiter <- err
		c.waiter = nil
	}
}

// abandonLocked cancels the outstanding load, if any, and stops the backend
// on the current handle.
func (c *Controller) abandonLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.waiter != nil {
		c.metrics.loads.WithLabelValues("superseded").Inc()
		c.settleLocked(errSuperseded)
	}
	if c.handle != "" {
		if err := c.backend.Stop(c.handle); err != nil {
			c.logger("abandon").WithError(err).Debug("backend stop failed")
		}
		c.handle = ""
	}
}

// startLoadLocked begins loading the current queue track under a new handle.
// The returned channel receives the outcome once.
func (c *Controller) startLoadLocked() <-chan error {
	c.abandonLocked()

	w := make(chan error, 1)
	track := c.queue.Current()
	if track == nil {
		c.stopLocked()
		w <- nil
		return w
	}

	h := player.Handle(xid.New().String())
	ctx, cancel := context.WithCancel(context.Background())
	c.handle = h
	c.cancel = cancel
	c.waiter = w
	c.position = 0
	c.duration = track.Duration
	c.lastErr = nil
	c.setStateLocked(StateLoading)

	index := c.queue.CurrentIndex()
	if c.lastTrack == nil || c.lastIndex != index || c.lastTrack.URL != track.URL {
		c.broadcastTrack(TrackChange{
			Previous:      c.lastTrack,
			Current:       track,
			PreviousIndex: c.lastIndex,
			Index:         index,
		})
	}
	c.lastTrack, c.lastIndex = track, index

	go c.resolve(ctx, h, *track)
	return w
}

// resolve prepares the resource outside the lock, then hands it to the
// backend if the load is still current.
func (c *Controller) resolve(ctx context.Context, h player.Handle, t Track) {
	res, err := c.resolver.Resolve(ctx, t)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle != h || c.closed {
		return
	}
	if err != nil {
		c.failLocked(err)
		return
	}
	if err := c.backend.Load(h, res); err != nil {
		c.failLocked(err)
	}
}

func (c *Controller) stopLocked() {
	c.abandonLocked()
	c.position = 0
	c.setStateLocked(StateStopped)
}

func (c *Controller) setStateLocked(s State) {
	if c.state == s {
		return
	}
	prev := c.state
	c.state = s
	c.metrics.transitions.WithLabelValues(s.String()).Inc()
	c.broadcastState(StateChange{Previous: prev, Current: s})
}

// wait blocks for a load outcome.
func (c *Controller) wait(ctx context.Context, w <-chan error) error {
	select {
	case err := <-w:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// play runs fn under the lock and, when it starts a load, waits for it.
func (c *Controller) play(ctx context.Context, fn func() <-chan error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errClosed
	}
	w := fn()
	c.mu.Unlock()
	if w == nil {
		return nil
	}
	return c.wait(ctx, w)
}

// Play loads and starts the current queue track from any state. An empty
// queue leaves the controller Stopped.
func (c *Controller) Play(ctx context.Context) error {
	return c.play(ctx, func() <-chan error {
		if c.queue.IsEmpty() {
			c.stopLocked()
			return nil
		}
		return c.startLoadLocked()
	})
}

// PlayIndex jumps to index and plays it. Out of range indices are ignored.
func (c *Controller) PlayIndex(ctx context.Context, index int) error {
	return c.play(ctx, func() <-chan error {
		if c.queue.JumpTo(index) == nil {
			if c.queue.IsEmpty() {
				c.stopLocked()
			}
			return nil
		}
		return c.startLoadLocked()
	})
}

// PlayItem replaces the queue with the songs of item and plays the first.
func (c *Controller) PlayItem(ctx context.Context, item catalog.Item) error {
	return c.SetQueue(ctx, playlist.FromItem(item), 0)
}

// SetQueue replaces the queue and plays from start, clamped into range.
// An empty list stops playback.
func (c *Controller) SetQueue(ctx context.Context, tracks []Track, start int) error {
	return c.play(ctx, func() <-chan error {
		c.queue.Replace(start, tracks...)
		c.queueChangedLocked(true)
		if c.queue.IsEmpty() {
			c.stopLocked()
			return nil
		}
		return c.startLoadLocked()
	})
}

// Next plays the following track in play order, wrapping at the end.
func (c *Controller) Next(ctx context.Context) error {
	return c.play(ctx, func() <-chan error {
		if c.queue.Next() == nil {
			c.stopLocked()
			return nil
		}
		return c.startLoadLocked()
	})
}

// Previous restarts the current track when more than the restart threshold
// has elapsed, otherwise plays the preceding track, wrapping at the start.
func (c *Controller) Previous(ctx context.Context) error {
	return c.play(ctx, func() <-chan error {
		if c.queue.IsEmpty() {
			c.stopLocked()
			return nil
		}
		if c.state.IsActive() && c.position > c.opts.restartThreshold {
			c.seekLocked(0)
			return nil
		}
		c.queue.Previous()
		return c.startLoadLocked()
	})
}

// Toggle pauses when playing, resumes when paused and plays otherwise.
func (c *Controller) Toggle(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StatePlaying:
		c.pauseLocked()
		c.mu.Unlock()
		return nil
	case StatePaused:
		c.resumeLocked()
		c.mu.Unlock()
		return nil
	case StateLoading:
		c.mu.Unlock()
		return nil
	default:
		c.mu.Unlock()
		return c.Play(ctx)
	}
}

// Pause pauses playback. Ignored unless Playing.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pauseLocked()
}

func (c *Controller) pauseLocked() {
	if c.state != StatePlaying {
		return
	}
	if err := c.backend.Pause(c.handle); err != nil {
		c.logger("Pause").WithError(err).Warn("backend pause failed")
		return
	}
	c.setStateLocked(StatePaused)
}

// Resume resumes playback. Ignored unless Paused.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resumeLocked()
}

func (c *Controller) resumeLocked() {
	if c.state != StatePaused {
		return
	}
	if err := c.backend.Resume(c.handle); err != nil {
		c.logger("Resume").WithError(err).Warn("backend resume failed")
		return
	}
	c.setStateLocked(StatePlaying)
}

// Stop stops playback and cancels any outstanding load.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Seek moves to position, clamped to the track. Ignored unless Playing or
// Paused.
func (c *Controller) Seek(position time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seekLocked(position)
}

// SeekBy moves position by delta.
func (c *Controller) SeekBy(delta time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seekLocked(c.position + delta)
}

func (c *Controller) seekLocked(position time.Duration) {
	if !c.state.IsActive() {
		return
	}
	position = max(position, 0)
	if c.duration > 0 {
		position = min(position, c.duration)
	}
	if err := c.backend.Seek(c.handle, position); err != nil {
		c.logger("Seek").WithError(err).Warn("backend seek failed")
		c.broadcastError(ErrorEvent{Operation: "seek", URL: c.currentURLLocked(), Err: err})
		return
	}
	c.position = position
	c.broadcastPositionLocked()
}

func (c *Controller) currentURLLocked() string {
	if t := c.queue.Current(); t != nil {
		return t.URL
	}
	return ""
}

// Append adds tracks to the end of the queue without changing playback.
func (c *Controller) Append(tracks ...Track) {
	if len(tracks) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue.Add(tracks...)
	c.queueChangedLocked(true)
}

// RemoveAt removes the track at index. Removing the track being played
// stops playback.
func (c *Controller) RemoveAt(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.queue.CurrentIndex()
	if !c.queue.RemoveAt(index) {
		return false
	}
	if index == current || c.queue.IsEmpty() {
		c.stopLocked()
	}
	c.queueChangedLocked(true)
	return true
}

// Restore replaces the queue with a saved one, without playing.
func (c *Controller) Restore(s playlist.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.queue.Restore(s)
	c.queueChangedLocked(true)
}

// Undo reverts the last queue change. Playback stops if the current track
// differs afterwards.
func (c *Controller) Undo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.history.Undo()
	if !ok {
		return false
	}
	c.applyHistoryLocked(s)
	return true
}

// Redo reapplies the last undone queue change.
func (c *Controller) Redo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.history.Redo()
	if !ok {
		return false
	}
	c.applyHistoryLocked(s)
	return true
}

func (c *Controller) applyHistoryLocked(s playlist.Snapshot) {
	before := c.queue.Current()
	c.queue.Restore(s)
	after := c.queue.Current()
	if before == nil || after == nil || before.URL != after.URL {
		c.stopLocked()
	}
	c.queueChangedLocked(false)
}

// queueChangedLocked notifies subscribers and optionally records history.
func (c *Controller) queueChangedLocked(record bool) {
	snap := c.queue.Snapshot()
	if record {
		c.history.Push(snap)
	}
	c.broadcastQueue(QueueChange{Tracks: snap.Tracks, Index: snap.Index})
}

// ToggleShuffle flips shuffle. Turning it on draws a new order starting at
// the current track.
func (c *Controller) ToggleShuffle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	on := c.queue.ToggleShuffle()
	c.broadcastMode(ModeChange{RepeatMode: c.queue.RepeatMode(), Shuffle: on})
	return on
}

// ToggleRepeat cycles Off, One, All.
func (c *Controller) ToggleRepeat() RepeatMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	mode := c.queue.CycleRepeatMode()
	c.broadcastMode(ModeChange{RepeatMode: mode, Shuffle: c.queue.Shuffle()})
	return mode
}

// SetRepeatMode sets the repeat mode.
func (c *Controller) SetRepeatMode(mode RepeatMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue.SetRepeatMode(mode)
	c.broadcastMode(ModeChange{RepeatMode: mode, Shuffle: c.queue.Shuffle()})
}

// SetShuffle turns shuffle on or off.
func (c *Controller) SetShuffle(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue.SetShuffle(on)
	c.broadcastMode(ModeChange{RepeatMode: c.queue.RepeatMode(), Shuffle: on})
}

// SetVolume sets the volume, clamped to [0, 1].
func (c *Controller) SetVolume(level float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = player.ClampVolume(level)
	c.backend.SetVolume(c.volume)
}

// Volume returns the volume level.
func (c *Controller) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

// State returns the transport state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Position returns the last reported position.
func (c *Controller) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// Snapshot returns a copy of the controller state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:      c.state,
		Track:      c.queue.Current(),
		Index:      c.queue.CurrentIndex(),
		Queue:      c.queue.Tracks(),
		Position:   c.position,
		Duration:   c.duration,
		Volume:     c.volume,
		RepeatMode: c.queue.RepeatMode(),
		Shuffle:    c.queue.Shuffle(),
		Err:        c.lastErr,
	}
}

// Subscribe creates a new event subscription.
func (c *Controller) Subscribe() *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	sub := newSubscription()
	if c.closed {
		sub.close()
		return sub
	}
	c.subs = append(c.subs, sub)
	return sub
}

// publish hands v to every subscriber through the channel pick selects.
// With latest, a full buffer gives up its oldest value instead of v.
func publish[T any](c *Controller, event string, pick func(*Subscription) chan T, v T, latest bool) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		ch := pick(sub)
		var sent bool
		if latest {
			sent = offerLatest(ch, v)
		} else {
			sent = offer(ch, v)
		}
		if !sent {
			c.metrics.droppedEvents.WithLabelValues(event).Inc()
		}
	}
}

func (c *Controller) broadcastState(e StateChange) {
	publish(c, "state", func(s *Subscription) chan StateChange { return s.state }, e, false)
}

func (c *Controller) broadcastTrack(e TrackChange) {
	publish(c, "track", func(s *Subscription) chan TrackChange { return s.track }, e, false)
}

func (c *Controller) broadcastPositionLocked() {
	e := PositionChange{Position: c.position, Duration: c.duration}
	publish(c, "position", func(s *Subscription) chan PositionChange { return s.position }, e, true)
}

func (c *Controller) broadcastQueue(e QueueChange) {
	publish(c, "queue", func(s *Subscription) chan QueueChange { return s.queue }, e, false)
}

func (c *Controller) broadcastMode(e ModeChange) {
	publish(c, "mode", func(s *Subscription) chan ModeChange { return s.mode }, e, false)
}

func (c *Controller) broadcastError(e ErrorEvent) {
	publish(c, "error", func(s *Subscription) chan ErrorEvent { return s.errs }, e, false)
}

// Close stops playback and the event loop, and ends every subscription.
// The backend is left open.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.stopLocked()
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	<-c.loopDone

	c.subsMu.Lock()
	for _, sub := range c.subs {
		sub.close()
	}
	c.subs = nil
	c.subsMu.Unlock()
	return nil
}
