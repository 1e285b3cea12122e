package player

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	log "github.com/sirupsen/logrus"
)

// The speaker is process global; it is initialized once at the sample rate
// of the first track and other rates are resampled to it.
var (
	speakerOnce sync.Once
	speakerRate beep.SampleRate
	speakerErr  error
)

func initSpeaker(rate beep.SampleRate) (beep.SampleRate, error) {
	speakerOnce.Do(func() {
		speakerRate = rate
		speakerErr = speaker.Init(rate, rate.N(time.Second/10))
	})
	return speakerRate, speakerErr
}

// Speaker renders audio on the default output device through beep.
type Speaker struct {
	mu       sync.Mutex
	interval time.Duration
	events   emitter

	handle   Handle
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	level    float64
	ticks    chan struct{} // closed to stop the tick loop
	closed   bool
}

// NewSpeaker creates a speaker backend reporting position every interval.
func NewSpeaker(interval time.Duration) *Speaker {
	if interval <= 0 {
		interval = DefaultPositionInterval
	}
	return &Speaker{interval: interval, events: newEmitter(), level: 1}
}

// Events returns the notification channel.
func (s *Speaker) Events() <-chan Event { return s.events.ch }

// Load decodes r in the background and reports Ready or Failure for h.
// Whatever was loaded before is released.
func (s *Speaker) Load(h Handle, r Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	s.release()
	s.handle = h

	go func() {
		streamer, format, err := decode(r)
		if err != nil {
			s.events.emit(Failure(h, err))
			return
		}

		s.mu.Lock()
		if s.handle != h || s.closed {
			s.mu.Unlock()
			streamer.Close()
			return
		}
		s.streamer = streamer
		s.format = format
		s.mu.Unlock()

		s.events.emit(Ready(h, format.SampleRate.D(streamer.Len())))
	}()
	return nil
}

// Start begins rendering h.
func (s *Speaker) Start(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle != h || s.streamer == nil || s.ctrl != nil {
		return nil
	}

	rate, err := initSpeaker(s.format.SampleRate)
	if err != nil {
		return err
	}

	var src beep.Streamer = s.streamer
	if s.format.SampleRate != rate {
		src = beep.Resample(4, s.format.SampleRate, rate, src)
	}
	s.ctrl = &beep.Ctrl{Streamer: src}
	s.volume = &effects.Volume{
		Streamer: s.ctrl,
		Base:     2,
		Volume:   levelToVolume(s.level),
		Silent:   s.level <= 0,
	}

	speaker.Play(beep.Seq(s.volume, beep.Callback(func() {
		// runs under the speaker lock
		go s.finished(h)
	})))
	s.startTicks(h)
	return nil
}

func (s *Speaker) finished(h Handle) {
	s.mu.Lock()
	if s.handle != h {
		s.mu.Unlock()
		return
	}
	s.stopTicks()
	s.mu.Unlock()

	s.events.emit(EndOfMedia(h))
}

// Pause halts rendering of h, keeping its position.
func (s *Speaker) Pause(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle != h || s.ctrl == nil {
		return nil
	}
	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
	s.stopTicks()
	return nil
}

// Resume continues rendering of h.
func (s *Speaker) Resume(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle != h || s.ctrl == nil {
		return nil
	}
	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
	s.startTicks(h)
	return nil
}

// Seek moves h to pos, clamped to the resource.
func (s *Speaker) Seek(h Handle, pos time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle != h || s.streamer == nil {
		return nil
	}
	n := s.format.SampleRate.N(clampPosition(pos, s.format.SampleRate.D(s.streamer.Len())))
	n = min(n, max(s.streamer.Len()-1, 0))

	speaker.Lock()
	defer speaker.Unlock()
	return s.streamer.Seek(n)
}

// Stop ends h and releases its stream.
func (s *Speaker) Stop(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle != h {
		return nil
	}
	s.release()
	s.handle = ""
	return nil
}

// SetVolume sets the output level, clamped to [0, 1].
func (s *Speaker) SetVolume(level float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = ClampVolume(level)
	if s.volume == nil {
		return
	}
	speaker.Lock()
	s.volume.Volume = levelToVolume(s.level)
	s.volume.Silent = s.level <= 0
	speaker.Unlock()
}

// Close stops rendering. Further loads fail.
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.release()
	close(s.events.done)
	return nil
}

// release stops output and closes the stream. Callers hold s.mu.
func (s *Speaker) release() {
	s.stopTicks()
	if s.ctrl != nil {
		speaker.Clear()
		s.ctrl = nil
		s.volume = nil
	}
	if s.streamer != nil {
		if err := s.streamer.Close(); err != nil {
			log.WithFields(log.Fields{
				"package":  "player",
				"struct":   "Speaker",
				"function": "release",
			}).WithError(err).Debug("failed to close stream")
		}
		s.streamer = nil
	}
}

func (s *Speaker) startTicks(h Handle) {
	s.stopTicks()
	stop := make(chan struct{})
	s.ticks = stop

	go func() {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				s.mu.Lock()
				if s.handle != h || s.streamer == nil {
					s.mu.Unlock()
					return
				}
				speaker.Lock()
				pos := s.format.SampleRate.D(s.streamer.Position())
				speaker.Unlock()
				s.mu.Unlock()
				s.events.offer(PositionTick(h, pos))
			}
		}
	}()
}

func (s *Speaker) stopTicks() {
	if s.ticks != nil {
		close(s.ticks)
		s.ticks = nil
	}
}
