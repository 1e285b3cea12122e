package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/simplelru"
)

// Memory tier defaults.
const (
	DefaultMemoryMaxBytes   = 50 * 1024 * 1024
	DefaultMemoryMaxEntries = 100
)

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

// memoryTier is an LRU bounded by both entry count and total byte cost.
// Keys are "<kind>:<logical key>" so one kind can be dropped by prefix.
type memoryTier struct {
	mu         sync.Mutex
	lru        *simplelru.LRU
	maxBytes   int64
	maxEntries int
	bytes      int64
	// gens counts removals by kind, so a promotion read before a Clear or
	// Trim is not stored after it.
	gens map[Kind]uint64
}

func newMemoryTier(maxEntries int, maxBytes int64) (*memoryTier, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryMaxEntries
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMemoryMaxBytes
	}
	t := &memoryTier{maxBytes: maxBytes, maxEntries: maxEntries, gens: make(map[Kind]uint64, len(Kinds))}
	lru, err := simplelru.NewLRU(maxEntries, t.onEvict)
	if err != nil {
		return nil, err
	}
	t.lru = lru
	return t, nil
}

func memKey(kind Kind, key string) string {
	return kind.Dir() + ":" + key
}

// onEvict runs under t.mu for every removal, including Remove and Purge.
func (t *memoryTier) onEvict(_ interface{}, value interface{}) {
	if e, ok := value.(*memEntry); ok {
		t.bytes -= int64(len(e.data))
	}
}

// get returns the value and refreshes its recency. Expired values are dropped.
func (t *memoryTier) get(key string, now time.Time) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.lru.Get(key)
	if !ok {
		return nil, false
	}
	e := v.(*memEntry)
	if !now.Before(e.expiresAt) {
		t.lru.Remove(key)
		return nil, false
	}
	return e.data, true
}

// add stores data and evicts least recently used entries until both budgets
// hold. It returns how many other entries were evicted. A value larger than
// the byte budget is not kept in memory at all.
func (t *memoryTier) add(key string, data []byte, expiresAt time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.addLocked(key, data, expiresAt)
}

// generation returns the removal count of kind.
func (t *memoryTier) generation(kind Kind) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gens[kind]
}

// promote stores a value read from disk and returns the value to serve. It
// returns false without storing when kind was cleared since gen was taken.
// A value already in memory, or one newer reports, wins over the disk copy.
func (t *memoryTier) promote(kind Kind, key string, data []byte, expiresAt time.Time, gen uint64, newer func() ([]byte, bool)) (value []byte, evicted int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gens[kind] != gen {
		return nil, 0, false
	}
	if v, found := t.lru.Get(key); found {
		return v.(*memEntry).data, 0, true
	}
	if d, found := newer(); found {
		return d, 0, true
	}
	return data, t.addLocked(key, data, expiresAt), true
}

func (t *memoryTier) addLocked(key string, data []byte, expiresAt time.Time) int {
	t.lru.Remove(key)
	if int64(len(data)) > t.maxBytes {
		return 0
	}

	evicted := 0
	t.bytes += int64(len(data))
	if t.lru.Add(key, &memEntry{data: data, expiresAt: expiresAt}) {
		evicted++
	}
	for t.bytes > t.maxBytes {
		if _, _, ok := t.lru.RemoveOldest(); !ok {
			break
		}
		evicted++
	}
	return evicted
}

func (t *memoryTier) remove(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lru.Remove(key)
}

// removeKind drops every entry of kind.
func (t *memoryTier) removeKind(kind Kind) {
	prefix := kind.Dir() + ":"

	t.mu.Lock()
	defer t.mu.Unlock()
	t.gens[kind]++
	for _, k := range t.lru.Keys() {
		if s, ok := k.(string); ok && strings.HasPrefix(s, prefix) {
			t.lru.Remove(s)
		}
	}
}

func (t *memoryTier) purge() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, k := range Kinds {
		t.gens[k]++
	}
	t.lru.Purge()
}

func (t *memoryTier) contains(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lru.Contains(key)
}

// stats returns the entry count and total byte cost.
func (t *memoryTier) stats() (int, int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lru.Len(), t.bytes
}
