package playback

const eventBufferSize = 16

// Subscription delivers controller events. Each channel is buffered and
// never blocks the controller: when a buffer is full the event is dropped,
// except position updates where the oldest one is dropped instead. Done is
// closed when the controller closes.
type Subscription struct {
	StateChanged    <-chan StateChange
	TrackChanged    <-chan TrackChange
	PositionChanged <-chan PositionChange
	QueueChanged    <-chan QueueChange
	ModeChanged     <-chan ModeChange
	Error           <-chan ErrorEvent
	Done            <-chan struct{}

	state    chan StateChange
	track    chan TrackChange
	position chan PositionChange
	queue    chan QueueChange
	mode     chan ModeChange
	errs     chan ErrorEvent
	done     chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		state:    make(chan StateChange, eventBufferSize),
		track:    make(chan TrackChange, eventBufferSize),
		position: make(chan PositionChange, eventBufferSize),
		queue:    make(chan QueueChange, eventBufferSize),
		mode:     make(chan ModeChange, eventBufferSize),
		errs:     make(chan ErrorEvent, eventBufferSize),
		done:     make(chan struct{}),
	}
	s.StateChanged = s.state
	s.TrackChanged = s.track
	s.PositionChanged = s.position
	s.QueueChanged = s.queue
	s.ModeChanged = s.mode
	s.Error = s.errs
	s.Done = s.done
	return s
}

func (s *Subscription) close() {
	close(s.done)
}

// offer sends v without blocking and reports whether it was queued.
func offer[T any](ch chan T, v T) bool {
	select {
	case ch <- v:
		return true
	default:
		return false
	}
}

// offerLatest queues v, discarding the oldest buffered value when full. It
// reports false when a value was discarded.
func offerLatest[T any](ch chan T, v T) bool {
	if offer(ch, v) {
		return true
	}
	select {
	case <-ch:
	default:
	}
	offer(ch, v)
	return false
}
