package cache

import (
	"strings"
	"sync"
	"time"
)

type pendingWrite struct {
	data      []byte
	expiresAt time.Time
}

// pendingWrites holds values whose disk write has not landed yet, so a Get
// right after Set hits even when the value did not fit in memory.
type pendingWrites struct {
	mu     sync.Mutex
	writes map[string]*pendingWrite
}

func newPendingWrites() *pendingWrites {
	return &pendingWrites{writes: make(map[string]*pendingWrite)}
}

func (p *pendingWrites) put(key string, w *pendingWrite) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writes[key] = w
}

// done forgets w once written, unless a later Set replaced it.
func (p *pendingWrites) done(key string, w *pendingWrite) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writes[key] == w {
		delete(p.writes, key)
	}
}

func (p *pendingWrites) get(key string, now time.Time) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.writes[key]
	if !ok || !now.Before(w.expiresAt) {
		return nil, false
	}
	return w.data, true
}

func (p *pendingWrites) removeKind(kind Kind) {
	prefix := kind.Dir() + ":"

	p.mu.Lock()
	defer p.mu.Unlock()
	for k := range p.writes {
		if strings.HasPrefix(k, prefix) {
			delete(p.writes, k)
		}
	}
}

func (p *pendingWrites) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.writes)
}
