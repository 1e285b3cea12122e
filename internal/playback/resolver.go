package playback

import (
	"context"

	"github.com/llehouerou/wavecore/internal/player"
)

// Resolver turns a track into a resource the backend can load, typically by
// reading the audio bytes through the cache.
type Resolver interface {
	Resolve(ctx context.Context, t Track) (player.Resource, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, t Track) (player.Resource, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, t Track) (player.Resource, error) {
	return f(ctx, t)
}

// passthrough hands the URL to the backend untouched.
var passthrough = ResolverFunc(func(_ context.Context, t Track) (player.Resource, error) {
	return player.Resource{URL: t.URL, Duration: t.Duration}, nil
})
