package player

import (
	"sync"
	"time"
)

// DefaultVirtualDuration is the simulated length of resources without a
// duration hint.
const DefaultVirtualDuration = 30 * time.Second

// VirtualClock is a timer-driven backend that renders nothing. Playback
// progresses with wall-clock time, so the controller behaves exactly as with
// a real device. Used when no audio output exists and in tests.
type VirtualClock struct {
	mu       sync.Mutex
	interval time.Duration
	events   emitter
	now      func() time.Time

	handle    Handle
	loaded    bool
	duration  time.Duration
	offset    time.Duration // position when the clock last stopped or jumped
	startedAt time.Time
	playing   bool
	gen       uint64 // bumped whenever timers are reset
	endTimer  *time.Timer
	ticks     chan struct{}
	level     float64
	closed    bool
}

// NewVirtual creates a virtual backend reporting position every interval.
func NewVirtual(interval time.Duration) *VirtualClock {
	if interval <= 0 {
		interval = DefaultPositionInterval
	}
	return &VirtualClock{
		interval: interval,
		events:   newEmitter(),
		now:      time.Now,
		level:    1,
	}
}

// Events returns the notification channel.
func (v *VirtualClock) Events() <-chan Event { return v.events.ch }

// Load accepts any resource and reports Ready with its duration hint.
func (v *VirtualClock) Load(h Handle, r Resource) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return errClosed
	}
	v.reset()
	v.handle = h
	v.loaded = true
	v.duration = r.Duration
	if v.duration <= 0 {
		v.duration = DefaultVirtualDuration
	}

	d := v.duration
	go v.events.emit(Ready(h, d))
	return nil
}

// Start runs the clock for h from its current position.
func (v *VirtualClock) Start(h Handle) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.handle != h || !v.loaded || v.playing {
		return nil
	}
	v.run()
	return nil
}

// Pause freezes the clock of h.
func (v *VirtualClock) Pause(h Handle) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.handle != h || !v.playing {
		return nil
	}
	v.offset = v.position()
	v.playing = false
	v.stopTimers()
	return nil
}

// Resume restarts a paused clock.
func (v *VirtualClock) Resume(h Handle) error {
	return v.Start(h)
}

// Seek moves the clock of h to pos, clamped to the duration.
func (v *VirtualClock) Seek(h Handle, pos time.Duration) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.handle != h || !v.loaded {
		return nil
	}
	v.offset = clampPosition(pos, v.duration)
	if v.playing {
		v.stopTimers()
		v.playing = false
		v.run()
	}
	return nil
}

// Stop forgets h.
func (v *VirtualClock) Stop(h Handle) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.handle != h {
		return nil
	}
	v.reset()
	return nil
}

// SetVolume records the level; nothing is rendered.
func (v *VirtualClock) SetVolume(level float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.level = ClampVolume(level)
}

// Volume returns the last level set.
func (v *VirtualClock) Volume() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.level
}

// Position returns the simulated position of the loaded resource.
func (v *VirtualClock) Position() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.position()
}

// Close stops the clock. Further loads fail.
func (v *VirtualClock) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.closed = true
	v.reset()
	close(v.events.done)
	return nil
}

func (v *VirtualClock) position() time.Duration {
	pos := v.offset
	if v.playing {
		pos += v.now().Sub(v.startedAt)
	}
	return clampPosition(pos, v.duration)
}

func (v *VirtualClock) reset() {
	v.stopTimers()
	v.handle = ""
	v.loaded = false
	v.playing = false
	v.offset = 0
	v.duration = 0
}

// run starts the end timer and the tick loop. Callers hold v.mu.
func (v *VirtualClock) run() {
	v.playing = true
	v.startedAt = v.now()
	v.gen++

	h, gen := v.handle, v.gen
	v.endTimer = time.AfterFunc(v.duration-v.offset, func() { v.ended(h, gen) })

	stop := make(chan struct{})
	v.ticks = stop
	go func() {
		t := time.NewTicker(v.interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				v.mu.Lock()
				if v.gen != gen {
					v.mu.Unlock()
					return
				}
				pos := v.position()
				v.mu.Unlock()
				v.events.offer(PositionTick(h, pos))
			}
		}
	}()
}

func (v *VirtualClock) ended(h Handle, gen uint64) {
	v.mu.Lock()
	if v.gen != gen || v.handle != h {
		v.mu.Unlock()
		return
	}
	v.offset = v.duration
	v.playing = false
	v.stopTimers()
	v.mu.Unlock()

	v.events.emit(EndOfMedia(h))
}

func (v *VirtualClock) stopTimers() {
	v.gen++
	if v.endTimer != nil {
		v.endTimer.Stop()
		v.endTimer = nil
	}
	if v.ticks != nil {
		close(v.ticks)
		v.ticks = nil
	}
}
