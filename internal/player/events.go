package player

// emitter delivers backend events. Lifecycle events block until received or
// the backend closes; position ticks are dropped when the reader lags.
type emitter struct {
	ch   chan Event
	done chan struct{}
}

func newEmitter() emitter {
	return emitter{
		ch:   make(chan Event, eventBuffer),
		done: make(chan struct{}),
	}
}

func (e emitter) emit(ev Event) {
	select {
	case e.ch <- ev:
	case <-e.done:
	}
}

func (e emitter) offer(ev Event) {
	select {
	case e.ch <- ev:
	default:
	}
}
