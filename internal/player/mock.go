package player

import (
	"slices"
	"sync"
	"time"
)

// Call records one command received by a Mock.
type Call struct {
	Op       string
	Handle   Handle
	Position time.Duration
	Resource Resource
}

// Mock is a test double for Backend. It emits nothing on its own unless
// auto-ready is enabled; tests drive it with Emit.
type Mock struct {
	mu        sync.Mutex
	events    chan Event
	calls     []Call
	loadErr   error
	failErr   error
	autoReady bool
	duration  time.Duration
	volume    float64
	closed    bool
}

// NewMock creates a new mock backend for testing.
func NewMock() *Mock {
	return &Mock{events: make(chan Event, 256), volume: 1}
}

func (m *Mock) record(c Call) {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	m.mu.Unlock()
}

func (m *Mock) Load(h Handle, r Resource) error {
	m.record(Call{Op: "load", Handle: h, Resource: r})

	m.mu.Lock()
	loadErr, failErr, auto, d := m.loadErr, m.failErr, m.autoReady, m.duration
	m.mu.Unlock()

	if loadErr != nil {
		return loadErr
	}
	switch {
	case failErr != nil:
		m.Emit(Failure(h, failErr))
	case auto:
		m.Emit(Ready(h, d))
	}
	return nil
}

func (m *Mock) Start(h Handle) error {
	m.record(Call{Op: "start", Handle: h})
	return nil
}

func (m *Mock) Pause(h Handle) error {
	m.record(Call{Op: "pause", Handle: h})
	return nil
}

func (m *Mock) Resume(h Handle) error {
	m.record(Call{Op: "resume", Handle: h})
	return nil
}

func (m *Mock) Seek(h Handle, pos time.Duration) error {
	m.record(Call{Op: "seek", Handle: h, Position: pos})
	return nil
}

func (m *Mock) Stop(h Handle) error {
	m.record(Call{Op: "stop", Handle: h})
	return nil
}

func (m *Mock) SetVolume(level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = level
}

func (m *Mock) Events() <-chan Event { return m.events }

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

// Emit delivers ev as if the backend produced it.
func (m *Mock) Emit(ev Event) { m.events <- ev }

// SetAutoReady makes every Load report Ready with duration.
func (m *Mock) SetAutoReady(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoReady = true
	m.duration = duration
}

// SetLoadError makes Load return err.
func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

// SetFailLoads makes every Load report Failure with err; nil disables it.
func (m *Mock) SetFailLoads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

// Calls returns the recorded commands, optionally filtered by op.
func (m *Mock) Calls(ops ...string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Call
	for _, c := range m.calls {
		if len(ops) == 0 || slices.Contains(ops, c.Op) {
			out = append(out, c)
		}
	}
	return out
}

// LastHandle returns the handle of the most recent Load, or "".
func (m *Mock) LastHandle() Handle {
	loads := m.Calls("load")
	if len(loads) == 0 {
		return ""
	}
	return loads[len(loads)-1].Handle
}

// Volume returns the last level set.
func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify backends implement Backend at compile time.
var (
	_ Backend = (*Mock)(nil)
	_ Backend = (*VirtualClock)(nil)
	_ Backend = (*Speaker)(nil)
)
