package app

import (
	"fmt"

	"github.com/llehouerou/wavecore/internal/cache"
	"github.com/llehouerou/wavecore/internal/config"
)

// OpenCache opens the resource cache described by cfg. Extra options are
// applied after the configured budget and lifetimes.
func OpenCache(cfg *config.Config, opts ...cache.Option) (*cache.Manager, error) {
	cc := cfg.GetCacheConfig()
	base := []cache.Option{
		cache.WithMemoryBudget(cc.MemoryMaxEntries, cc.MemoryMaxBytes),
		cache.WithTTL(cache.KindImage, cc.ImageTTL),
		cache.WithTTL(cache.KindPayload, cc.PayloadTTL),
		cache.WithTTL(cache.KindAudio, cc.AudioTTL),
	}
	m, err := cache.Open(cc.Root, cc.MetadataBackend, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("open cache at %s: %w", cc.Root, err)
	}
	return m, nil
}
