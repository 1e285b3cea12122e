package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/wavecore/internal/cache"
)

type Config struct {
	Cache    CacheConfig    `koanf:"cache"`
	Playback PlaybackConfig `koanf:"playback"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`

	// Keys remaps actions of the now-playing view, e.g. next_track = ["l"].
	Keys map[string][]string `koanf:"keys"`
}

// CacheConfig holds the resource cache settings.
type CacheConfig struct {
	Root             string        `koanf:"root"`               // default: $XDG_CACHE_HOME/waves
	MemoryMaxBytes   int64         `koanf:"memory_max_bytes"`   // default: 50 MiB
	MemoryMaxEntries int           `koanf:"memory_max_entries"` // default: 100
	MetadataBackend  string        `koanf:"metadata_backend"`   // "sqlite" or "bolt" (default: "sqlite")
	ImageTTL         time.Duration `koanf:"image_ttl"`          // default: 7 days
	PayloadTTL       time.Duration `koanf:"payload_ttl"`        // default: 24h
	AudioTTL         time.Duration `koanf:"audio_ttl"`          // default: 30 days
	SweepInterval    time.Duration `koanf:"sweep_interval"`     // 0 uses the default (1h), negative disables
}

// PlaybackConfig holds the playback controller settings.
type PlaybackConfig struct {
	Backend          string         `koanf:"backend"`           // "speaker" or "virtual" (default: "speaker")
	PositionInterval time.Duration  `koanf:"position_interval"` // default: 500ms
	RestartThreshold *time.Duration `koanf:"restart_threshold"` // 0 always restarts (default: 3s)
	Volume           *float64       `koanf:"volume"`            // 0.0-1.0 (default: 1.0)
	StateDB          string         `koanf:"state_db"`          // default: $XDG_STATE_HOME/waves/state.db
}

// LogConfig holds logging configuration.
type LogConfig struct {
	File       string `koanf:"file"`        // empty logs to stderr
	Level      string `koanf:"level"`       // logrus level name (default: "info")
	MaxSizeMB  int    `koanf:"max_size_mb"` // rotation size (default: 10)
	MaxBackups int    `koanf:"max_backups"` // rotated files kept (default: 3)
}

// MetricsConfig holds the Prometheus endpoint configuration.
type MetricsConfig struct {
	Listen string `koanf:"listen"` // e.g., "127.0.0.1:9310", empty disables
}

const (
	defaultMemoryMaxBytes   = cache.DefaultMemoryMaxBytes
	defaultMemoryMaxEntries = cache.DefaultMemoryMaxEntries
	defaultImageTTL         = 7 * 24 * time.Hour
	defaultPayloadTTL       = 24 * time.Hour
	defaultAudioTTL         = 30 * 24 * time.Hour
	defaultSweepInterval    = time.Hour

	defaultPositionInterval = 500 * time.Millisecond
	defaultRestartThreshold = 3 * time.Second

	defaultLogLevel      = "info"
	defaultLogMaxSizeMB  = 10
	defaultLogMaxBackups = 3
)

// Load reads the user config then ./config.toml, the latter winning.
func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given TOML files in order, later files winning.
// Missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in paths
	cfg.Cache.Root = expandPath(cfg.Cache.Root)
	cfg.Playback.StateDB = expandPath(cfg.Playback.StateDB)
	cfg.Log.File = expandPath(cfg.Log.File)

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/waves/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "waves", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasMetrics returns true if the metrics endpoint is configured.
func (c *Config) HasMetrics() bool {
	return c.Metrics.Listen != ""
}

// GetCacheConfig returns the cache configuration with defaults applied.
func (c *Config) GetCacheConfig() CacheConfig {
	cfg := c.Cache

	if cfg.Root == "" {
		cfg.Root = filepath.Join(xdg.CacheHome, "waves")
	}
	if cfg.MemoryMaxBytes <= 0 {
		cfg.MemoryMaxBytes = defaultMemoryMaxBytes
	}
	if cfg.MemoryMaxEntries <= 0 {
		cfg.MemoryMaxEntries = defaultMemoryMaxEntries
	}
	if cfg.MetadataBackend != "sqlite" && cfg.MetadataBackend != "bolt" {
		cfg.MetadataBackend = "sqlite"
	}
	if cfg.ImageTTL <= 0 {
		cfg.ImageTTL = defaultImageTTL
	}
	if cfg.PayloadTTL <= 0 {
		cfg.PayloadTTL = defaultPayloadTTL
	}
	if cfg.AudioTTL <= 0 {
		cfg.AudioTTL = defaultAudioTTL
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = defaultSweepInterval
	}

	return cfg
}

// GetPlaybackConfig returns the playback configuration with defaults applied.
func (c *Config) GetPlaybackConfig() PlaybackConfig {
	cfg := c.Playback

	if cfg.Backend != "speaker" && cfg.Backend != "virtual" {
		cfg.Backend = "speaker"
	}
	if cfg.PositionInterval <= 0 {
		cfg.PositionInterval = defaultPositionInterval
	}
	threshold := defaultRestartThreshold
	if cfg.RestartThreshold != nil && *cfg.RestartThreshold >= 0 {
		threshold = *cfg.RestartThreshold
	}
	cfg.RestartThreshold = &threshold
	volume := 1.0
	if cfg.Volume != nil {
		volume = min(max(*cfg.Volume, 0), 1)
	}
	cfg.Volume = &volume
	if cfg.StateDB == "" {
		cfg.StateDB = filepath.Join(xdg.StateHome, "waves", "state.db")
	}

	return cfg
}

// GetLogConfig returns the log configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log

	if cfg.Level == "" {
		cfg.Level = defaultLogLevel
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = defaultLogMaxSizeMB
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = defaultLogMaxBackups
	}

	return cfg
}
