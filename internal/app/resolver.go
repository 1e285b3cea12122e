package app

import (
	"context"
	"strings"

	"github.com/llehouerou/wavecore/internal/cache"
	"github.com/llehouerou/wavecore/internal/playback"
	"github.com/llehouerou/wavecore/internal/player"
	"github.com/llehouerou/wavecore/internal/playlist"
)

func (a *App) resolver() playback.Resolver {
	return playback.ResolverFunc(a.resolve)
}

// resolve reads the audio of t. Remote audio goes through the cache so a
// replay is served from disk; local files are read as is.
func (a *App) resolve(ctx context.Context, t playback.Track) (player.Resource, error) {
	var (
		data []byte
		err  error
	)
	if isRemote(t.URL) {
		data, err = a.Cache.Fetch(ctx, cache.KindAudio, t.URL)
	} else {
		data, err = a.loader.Fetch(ctx, cache.KindAudio, t.URL)
	}
	if err != nil {
		return player.Resource{}, err
	}

	a.prefetchArtwork(t)

	r := player.Resource{URL: t.URL, Data: data, Duration: t.Duration}
	r.Format = player.DetectFormat(r)
	return r, nil
}

func (a *App) prefetchArtwork(t playlist.Track) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closing {
		return
	}
	a.prefetch.Go(func() { a.Artwork.Prefetch(a.ctx, t) })
}

func isRemote(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}
