package cache

import "context"

// Loader supplies bytes for a key the cache does not hold.
// Implementations may fail with any I/O error; the cache never retries.
type Loader interface {
	Fetch(ctx context.Context, kind Kind, key string) ([]byte, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, kind Kind, key string) ([]byte, error)

// Fetch calls f.
func (f LoaderFunc) Fetch(ctx context.Context, kind Kind, key string) ([]byte, error) {
	return f(ctx, kind, key)
}
