// Package cache implements the tiered resource cache: a budgeted in-memory LRU
// in front of a content-addressed disk store, for cover images, API payloads
// and audio bytes.
//
// Lookups never touch the network. Disk writes and clears are scheduled on one
// ordered worker per kind, so a Clear always lands after the writes scheduled
// before it.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/singleflight"

	"github.com/llehouerou/wavecore/internal/cachemeta"
	"github.com/llehouerou/wavecore/internal/compression"
)

// IndexFileName is the metadata index inside the cache root.
const IndexFileName = "index.db"

// Manager is the tiered cache. Construct one per process and share it.
type Manager struct {
	opts    *options
	memory  *memoryTier
	disk    *diskTier
	metrics *metrics

	queues   map[Kind]*opQueue
	locks    map[Kind]*sync.RWMutex
	pending  *pendingWrites
	clearing map[Kind]*atomic.Int64 // disk clears scheduled but not landed
	usage    *gocache.Cache
	group    singleflight.Group

	workers   conc.WaitGroup
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Open opens the cache rooted at root on the local filesystem, with its
// metadata index in the given backend.
func Open(root, metaBackend string, opts ...Option) (*Manager, error) {
	meta, err := cachemeta.Open(metaBackend, filepath.Join(root, IndexFileName))
	if err != nil {
		return nil, fmt.Errorf("open cache index: %w", err)
	}
	m, err := New(osfs.New(root), meta, opts...)
	if err != nil {
		meta.Close()
		return nil, err
	}
	return m, nil
}

// New creates a manager over fs and meta. The manager owns meta and closes it.
func New(fs billy.Filesystem, meta cachemeta.Store, opts ...Option) (*Manager, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	memory, err := newMemoryTier(o.maxEntries, o.maxBytes)
	if err != nil {
		return nil, err
	}

	codec, err := compression.New(compression.LevelDefault)
	if err != nil {
		return nil, err
	}

	disk := &diskTier{fs: fs, meta: meta, codec: codec}
	if err := disk.init(); err != nil {
		codec.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		opts:     o,
		memory:   memory,
		disk:     disk,
		metrics:  newMetrics(o.registerer),
		queues:   make(map[Kind]*opQueue, len(Kinds)),
		locks:    make(map[Kind]*sync.RWMutex, len(Kinds)),
		pending:  newPendingWrites(),
		clearing: make(map[Kind]*atomic.Int64, len(Kinds)),
		usage:    gocache.New(o.usageTTL, time.Minute),
		cancel:   cancel,
	}

	for _, k := range Kinds {
		q := newOpQueue()
		lock := &sync.RWMutex{}
		m.queues[k] = q
		m.locks[k] = lock
		m.clearing[k] = &atomic.Int64{}
		m.workers.Go(func() { q.run(ctx, lock) })
	}
	return m, nil
}

// TTL returns the effective lifetime of kind.
func (m *Manager) TTL(kind Kind) time.Duration {
	return m.opts.ttl[kind]
}

// Get returns the cached bytes of (kind, key). The memory tier is consulted
// first, then values whose disk write is still pending, then the disk tier; a
// disk hit is promoted to memory. Expired, corrupt or unreadable entries are
// reported as a miss, as is everything on disk while a Clear of the kind has
// not landed. The returned slice is shared with the cache and must not be
// modified.
func (m *Manager) Get(ctx context.Context, kind Kind, key string) ([]byte, bool) {
	if !kind.Valid() {
		return nil, false
	}

	now := m.opts.now()
	mkey := memKey(kind, key)
	// Taken before any lookup: a Clear after this point fails the promotion.
	gen := m.memory.generation(kind)
	if data, ok := m.memory.get(mkey, now); ok {
		m.metrics.hits.WithLabelValues(kind.String(), "memory").Inc()
		return data, true
	}
	if data, ok := m.pending.get(mkey, now); ok {
		m.metrics.hits.WithLabelValues(kind.String(), "pending").Inc()
		return data, true
	}
	if m.clearing[kind].Load() > 0 {
		m.metrics.misses.WithLabelValues(kind.String()).Inc()
		return nil, false
	}

	logger := log.WithFields(log.Fields{
		"package":  "cache",
		"struct":   "Manager",
		"function": "Get",
		"kind":     kind.String(),
	})

	lock := m.locks[kind]
	lock.RLock()
	data, e, status, err := m.disk.read(ctx, kind, key, now)
	lock.RUnlock()

	switch status {
	case readHit:
		value, evicted, ok := m.memory.promote(kind, mkey, data, e.ExpiresAt, gen, func() ([]byte, bool) {
			return m.pending.get(mkey, now)
		})
		if !ok {
			// cleared while reading
			break
		}
		m.metrics.hits.WithLabelValues(kind.String(), "disk").Inc()
		m.recordMemory(evicted)
		return value, true

	case readExpired:
		m.queues[kind].push(func(ctx context.Context) {
			if _, err := m.disk.removeIf(ctx, kind, e); err != nil {
				logger.WithError(err).Warnf("failed to remove expired entry %s", e.StorageID)
			}
			m.usage.Delete(kind.Dir())
		})

	case readMissing:
		lock.Lock()
		_, err := m.disk.removeIf(ctx, kind, e)
		lock.Unlock()
		if err != nil {
			logger.WithError(err).Warnf("failed to drop metadata of vanished entry %s", e.StorageID)
		}
		m.usage.Delete(kind.Dir())

	case readCorrupt:
		logger.WithError(err).Warnf("purging corrupt entry %s", e.StorageID)
		m.metrics.corrupt.WithLabelValues(kind.String()).Inc()
		m.purge(ctx, kind, e)

	case readFailed:
		logger.WithError(err).Warn("disk lookup failed")
		m.metrics.diskErrors.WithLabelValues(kind.String(), "read").Inc()

	case readAbsent:
	}

	m.metrics.misses.WithLabelValues(kind.String()).Inc()
	return nil, false
}

// purge synchronously deletes a disk entry before control returns to the caller.
func (m *Manager) purge(ctx context.Context, kind Kind, e cachemeta.Entry) {
	lock := m.locks[kind]
	lock.Lock()
	_, err := m.disk.removeIf(ctx, kind, e)
	lock.Unlock()
	if err != nil {
		m.metrics.diskErrors.WithLabelValues(kind.String(), "delete").Inc()
	}
	m.usage.Delete(kind.Dir())
}

// Set stores data under (kind, key). The memory tier is updated before Set
// returns; the disk write happens asynchronously.
func (m *Manager) Set(kind Kind, key string, data []byte) {
	if !kind.Valid() {
		return
	}

	buf := bytes.Clone(data)
	if buf == nil {
		buf = []byte{}
	}
	createdAt := m.opts.now()
	expiresAt := createdAt.Add(m.opts.ttl[kind])

	mkey := memKey(kind, key)
	w := &pendingWrite{data: buf, expiresAt: expiresAt}
	m.pending.put(mkey, w)
	m.addMemory(mkey, buf, expiresAt)

	ok := m.queues[kind].push(func(ctx context.Context) {
		defer m.pending.done(mkey, w)
		if err := m.disk.write(ctx, kind, key, buf, createdAt, expiresAt); err != nil {
			log.WithFields(log.Fields{
				"package":  "cache",
				"struct":   "Manager",
				"function": "Set",
				"kind":     kind.String(),
			}).WithError(err).Warn("disk write failed")
			m.metrics.diskErrors.WithLabelValues(kind.String(), "write").Inc()
		}
		m.usage.Delete(kind.Dir())
	})
	if !ok {
		m.pending.done(mkey, w)
		m.memory.remove(mkey)
	}
}

func (m *Manager) addMemory(mkey string, data []byte, expiresAt time.Time) {
	m.recordMemory(m.memory.add(mkey, data, expiresAt))
}

func (m *Manager) recordMemory(evicted int) {
	if evicted > 0 {
		m.metrics.evictions.Add(float64(evicted))
	}
	_, cost := m.memory.stats()
	m.metrics.memoryBytes.Set(float64(cost))
}

// GetImage returns cached image bytes.
func (m *Manager) GetImage(ctx context.Context, key string) ([]byte, bool) {
	return m.Get(ctx, KindImage, key)
}

// SetImage caches image bytes.
func (m *Manager) SetImage(key string, data []byte) {
	m.Set(KindImage, key, data)
}

// GetAudio returns cached audio bytes.
func (m *Manager) GetAudio(ctx context.Context, key string) ([]byte, bool) {
	return m.Get(ctx, KindAudio, key)
}

// SetAudio caches audio bytes.
func (m *Manager) SetAudio(key string, data []byte) {
	m.Set(KindAudio, key, data)
}

// GetPayload decodes the cached JSON payload of key into dest. Bytes that are
// not JSON are purged; JSON that does not fit dest is a miss and is kept.
func (m *Manager) GetPayload(ctx context.Context, key string, dest any) bool {
	data, ok := m.Get(ctx, KindPayload, key)
	if !ok {
		return false
	}
	err := json.Unmarshal(data, dest)
	if err == nil {
		return true
	}

	logger := log.WithFields(log.Fields{
		"package":  "cache",
		"struct":   "Manager",
		"function": "GetPayload",
	})
	if json.Valid(data) {
		logger.WithError(err).Debugf("payload %q does not decode into %T", key, dest)
		return false
	}

	logger.WithError(err).Warnf("purging undecodable payload %q", key)
	m.metrics.corrupt.WithLabelValues(KindPayload.String()).Inc()
	m.memory.remove(memKey(KindPayload, key))
	if err := m.queues[KindPayload].wait(ctx, func(ctx context.Context) {
		m.dropKey(ctx, KindPayload, key)
	}); err != nil {
		logger.WithError(err).Warnf("payload %q not purged from disk", key)
	}
	return false
}

// SetPayload caches v encoded as JSON.
func (m *Manager) SetPayload(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode payload %q: %w", key, err)
	}
	m.Set(KindPayload, key, data)
	return nil
}

// dropKey deletes the disk entry of key whatever its age. Runs on the worker.
func (m *Manager) dropKey(ctx context.Context, kind Kind, key string) {
	_, e, status, _ := m.disk.read(ctx, kind, key, time.Time{})
	if status == readAbsent || status == readFailed {
		return
	}
	if _, err := m.disk.removeIf(ctx, kind, e); err != nil {
		m.metrics.diskErrors.WithLabelValues(kind.String(), "delete").Inc()
	}
	m.usage.Delete(kind.Dir())
}

// Fetch returns the cached bytes of (kind, key), loading and caching them on
// a miss. Concurrent fetches of the same key share one load, which is not
// cancelled when one caller gives up; each caller returns on its own ctx.
// Loader failures are returned as is and nothing is cached; Fetch never
// retries.
func (m *Manager) Fetch(ctx context.Context, kind Kind, key string) ([]byte, error) {
	if data, ok := m.Get(ctx, kind, key); ok {
		return data, nil
	}
	if m.opts.loader == nil {
		return nil, errNoLoader
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan(memKey(kind, key), func() (any, error) {
		data, err := m.opts.loader.Fetch(loadCtx, kind, key)
		if err != nil {
			m.metrics.fetches.WithLabelValues(kind.String(), "error").Inc()
			return nil, err
		}
		m.metrics.fetches.WithLabelValues(kind.String(), "ok").Inc()
		m.Set(kind, key, data)
		return data, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err := res.Err; err != nil {
		log.WithFields(log.Fields{
			"package":  "cache",
			"struct":   "Manager",
			"function": "Fetch",
			"kind":     kind.String(),
		}).WithError(err).Debugf("fetch of %q failed", key)
		return nil, fmt.Errorf("fetch %s %q: %w", kind, key, err)
	}
	return res.Val.([]byte), nil
}

// Clear empties the given kinds, or every kind when none is given. Memory is
// emptied before Clear returns; disk contents are removed asynchronously,
// after every write already scheduled for the kind.
func (m *Manager) Clear(kinds ...Kind) {
	if len(kinds) == 0 {
		kinds = Kinds
	}
	for _, kind := range kinds {
		if !kind.Valid() {
			continue
		}
		clearing := m.clearing[kind]
		// Raised before memory is emptied so a concurrent Get that misses
		// memory cannot read the old disk contents.
		clearing.Add(1)
		m.memory.removeKind(kind)
		m.pending.removeKind(kind)
		ok := m.queues[kind].push(func(ctx context.Context) {
			defer clearing.Add(-1)
			if err := m.disk.clear(ctx, kind); err != nil {
				log.WithFields(log.Fields{
					"package":  "cache",
					"struct":   "Manager",
					"function": "Clear",
					"kind":     kind.String(),
				}).WithError(err).Warn("disk clear failed")
				m.metrics.diskErrors.WithLabelValues(kind.String(), "clear").Inc()
			}
			m.usage.Delete(kind.Dir())
		})
		if !ok {
			clearing.Add(-1)
		}
	}
	_, cost := m.memory.stats()
	m.metrics.memoryBytes.Set(float64(cost))
}

// SweepExpired deletes every expired disk entry of every kind and returns how
// many were removed. Kinds are swept concurrently, each in order with its
// pending writes.
func (m *Manager) SweepExpired(ctx context.Context) (int, error) {
	now := m.opts.now()
	counts := make([]int, len(Kinds))

	p := pool.New().WithContext(ctx)
	for i, kind := range Kinds {
		p.Go(func(ctx context.Context) error {
			var sweepErr error
			err := m.queues[kind].wait(ctx, func(ctx context.Context) {
				counts[i], sweepErr = m.disk.sweep(ctx, kind, now)
				m.usage.Delete(kind.Dir())
			})
			if err != nil {
				return err
			}
			return sweepErr
		})
	}
	err := p.Wait()

	total := 0
	for _, n := range counts {
		total += n
	}
	log.WithFields(log.Fields{
		"package":  "cache",
		"struct":   "Manager",
		"function": "SweepExpired",
	}).Infof("removed %d expired entries", total)
	return total, err
}

// Usage returns the bytes held on disk by kind. The value may lag a pending
// write by up to the usage memo lifetime.
func (m *Manager) Usage(ctx context.Context, kind Kind) (int64, error) {
	if v, ok := m.usage.Get(kind.Dir()); ok {
		return v.(int64), nil
	}
	n, err := m.disk.meta.Usage(ctx, kind.Dir())
	if err != nil {
		return 0, err
	}
	m.usage.SetDefault(kind.Dir(), n)
	return n, nil
}

// Flush blocks until every disk operation scheduled so far has landed.
func (m *Manager) Flush(ctx context.Context) error {
	for _, kind := range Kinds {
		if err := m.queues[kind].wait(ctx, func(context.Context) {}); err != nil {
			return err
		}
	}
	return nil
}

// Trim drops the whole memory tier. Call on a low-memory signal.
func (m *Manager) Trim() {
	m.memory.purge()
	m.metrics.memoryBytes.Set(0)
}

// Stats is a point-in-time view for UI binding.
type Stats struct {
	MemoryEntries int
	MemoryBytes   int64
	DiskBytes     map[Kind]int64
}

// Snapshot returns the current memory tier cost and per-kind disk usage.
func (m *Manager) Snapshot(ctx context.Context) (Stats, error) {
	entries, cost := m.memory.stats()
	s := Stats{
		MemoryEntries: entries,
		MemoryBytes:   cost,
		DiskBytes:     make(map[Kind]int64, len(Kinds)),
	}
	for _, kind := range Kinds {
		n, err := m.Usage(ctx, kind)
		if err != nil {
			return s, err
		}
		s.DiskBytes[kind] = n
	}
	return s, nil
}

// Close drains scheduled disk operations and releases resources.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		for _, q := range m.queues {
			q.close()
		}
		m.workers.Wait()
		m.cancel()
		m.disk.codec.Close()
		err = m.disk.meta.Close()
	})
	return err
}
