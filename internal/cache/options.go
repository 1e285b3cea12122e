package cache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type options struct {
	maxEntries int
	maxBytes   int64
	ttl        map[Kind]time.Duration
	loader     Loader
	now        func() time.Time
	registerer prometheus.Registerer
	usageTTL   time.Duration
}

func defaultOptions() *options {
	ttl := make(map[Kind]time.Duration, len(Kinds))
	for _, k := range Kinds {
		ttl[k] = k.TTL()
	}
	return &options{
		maxEntries: DefaultMemoryMaxEntries,
		maxBytes:   DefaultMemoryMaxBytes,
		ttl:        ttl,
		now:        time.Now,
		usageTTL:   5 * time.Second,
	}
}

// Option configures a Manager.
type Option func(*options)

// WithMemoryBudget bounds the memory tier. Non-positive values keep the default.
func WithMemoryBudget(maxEntries int, maxBytes int64) Option {
	return func(o *options) {
		if maxEntries > 0 {
			o.maxEntries = maxEntries
		}
		if maxBytes > 0 {
			o.maxBytes = maxBytes
		}
	}
}

// WithTTL overrides the lifetime of kind.
func WithTTL(kind Kind, ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 && kind.Valid() {
			o.ttl[kind] = ttl
		}
	}
}

// WithLoader sets the loader used by Fetch on a miss.
func WithLoader(l Loader) Option {
	return func(o *options) { o.loader = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRegisterer registers the cache metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithUsageTTL sets how long a computed Usage value may be reused.
func WithUsageTTL(d time.Duration) Option {
	return func(o *options) { o.usageTTL = d }
}
