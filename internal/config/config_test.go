//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/llehouerou/wavecore/internal/cache"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/music",
			expected: filepath.Join(home, "music"),
		},
		{
			name:     "tilde with nested path",
			input:    "~/music/library/albums",
			expected: filepath.Join(home, "music", "library", "albums"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/usr/local/music",
			expected: "/usr/local/music",
		},
		{
			name:     "relative path unchanged",
			input:    "music/albums",
			expected: "music/albums",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
		{
			name:     "tilde with slash",
			input:    "~/",
			expected: filepath.Join(home, ""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	// Should have at least one path
	if len(paths) == 0 {
		t.Error("getConfigPaths() returned empty slice")
	}

	// Last path should be local config.toml
	lastPath := paths[len(paths)-1]
	if lastPath != "config.toml" {
		t.Errorf("last config path = %q, want %q", lastPath, "config.toml")
	}

	// If we have home dir, first path should be ~/.config/waves/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		expectedFirst := filepath.Join(home, ".config", "waves", "config.toml")
		if paths[0] != expectedFirst {
			t.Errorf("first config path = %q, want %q", paths[0], expectedFirst)
		}
	}
}

func TestGetCacheConfig_Defaults(t *testing.T) {
	cfg := (&Config{}).GetCacheConfig()

	if cfg.Root == "" || filepath.Base(cfg.Root) != "waves" {
		t.Errorf("Root = %q, want <cache home>/waves", cfg.Root)
	}
	if cfg.MemoryMaxBytes != cache.DefaultMemoryMaxBytes {
		t.Errorf("MemoryMaxBytes = %d, want %d", cfg.MemoryMaxBytes, cache.DefaultMemoryMaxBytes)
	}
	if cfg.MemoryMaxEntries != cache.DefaultMemoryMaxEntries {
		t.Errorf("MemoryMaxEntries = %d, want %d", cfg.MemoryMaxEntries, cache.DefaultMemoryMaxEntries)
	}
	if cfg.MemoryMaxBytes != 50<<20 || cfg.MemoryMaxEntries != 100 {
		t.Errorf("memory budget = %d entries / %d bytes, want 100 / 50 MiB", cfg.MemoryMaxEntries, cfg.MemoryMaxBytes)
	}
	if cfg.MetadataBackend != "sqlite" {
		t.Errorf("MetadataBackend = %q, want sqlite", cfg.MetadataBackend)
	}
	if cfg.ImageTTL != 7*24*time.Hour {
		t.Errorf("ImageTTL = %v, want 168h", cfg.ImageTTL)
	}
	if cfg.PayloadTTL != 24*time.Hour {
		t.Errorf("PayloadTTL = %v, want 24h", cfg.PayloadTTL)
	}
	if cfg.AudioTTL != 30*24*time.Hour {
		t.Errorf("AudioTTL = %v, want 720h", cfg.AudioTTL)
	}
	if cfg.SweepInterval != time.Hour {
		t.Errorf("SweepInterval = %v, want 1h", cfg.SweepInterval)
	}
}

func TestGetCacheConfig_CustomValues(t *testing.T) {
	c := &Config{Cache: CacheConfig{
		Root:             "/var/cache/waves",
		MemoryMaxBytes:   1024,
		MemoryMaxEntries: 8,
		MetadataBackend:  "bolt",
		ImageTTL:         time.Hour,
		PayloadTTL:       time.Minute,
		AudioTTL:         2 * time.Hour,
		SweepInterval:    -1,
	}}
	cfg := c.GetCacheConfig()

	if cfg != c.Cache {
		t.Errorf("GetCacheConfig() = %+v, want values unchanged %+v", cfg, c.Cache)
	}
}

func TestGetCacheConfig_InvalidValues(t *testing.T) {
	cfg := (&Config{Cache: CacheConfig{
		MemoryMaxBytes:   -5,
		MemoryMaxEntries: -1,
		MetadataBackend:  "redis",
		ImageTTL:         -time.Hour,
	}}).GetCacheConfig()

	if cfg.MemoryMaxBytes != cache.DefaultMemoryMaxBytes {
		t.Errorf("MemoryMaxBytes = %d, want default", cfg.MemoryMaxBytes)
	}
	if cfg.MemoryMaxEntries != cache.DefaultMemoryMaxEntries {
		t.Errorf("MemoryMaxEntries = %d, want default", cfg.MemoryMaxEntries)
	}
	if cfg.MetadataBackend != "sqlite" {
		t.Errorf("MetadataBackend = %q, want sqlite", cfg.MetadataBackend)
	}
	if cfg.ImageTTL != 7*24*time.Hour {
		t.Errorf("ImageTTL = %v, want default", cfg.ImageTTL)
	}
}

func TestGetPlaybackConfig(t *testing.T) {
	half := 0.5
	loud := 1.7
	quiet := -0.2
	fiveSeconds := 5 * time.Second
	zero := time.Duration(0)
	negative := -time.Second

	tests := []struct {
		name      string
		config    PlaybackConfig
		backend   string
		volume    float64
		interval  time.Duration
		threshold time.Duration
	}{
		{
			name:      "defaults",
			config:    PlaybackConfig{},
			backend:   "speaker",
			volume:    1,
			interval:  500 * time.Millisecond,
			threshold: 3 * time.Second,
		},
		{
			name: "custom values",
			config: PlaybackConfig{
				Backend:          "virtual",
				PositionInterval: time.Second,
				RestartThreshold: &fiveSeconds,
				Volume:           &half,
			},
			backend:   "virtual",
			volume:    0.5,
			interval:  time.Second,
			threshold: 5 * time.Second,
		},
		{
			name:      "unknown backend",
			config:    PlaybackConfig{Backend: "alsa"},
			backend:   "speaker",
			volume:    1,
			interval:  500 * time.Millisecond,
			threshold: 3 * time.Second,
		},
		{
			name:      "volume above range",
			config:    PlaybackConfig{Volume: &loud},
			backend:   "speaker",
			volume:    1,
			interval:  500 * time.Millisecond,
			threshold: 3 * time.Second,
		},
		{
			name:      "zero restart threshold",
			config:    PlaybackConfig{RestartThreshold: &zero},
			backend:   "speaker",
			volume:    1,
			interval:  500 * time.Millisecond,
			threshold: 0,
		},
		{
			name:      "negative restart threshold",
			config:    PlaybackConfig{RestartThreshold: &negative},
			backend:   "speaker",
			volume:    1,
			interval:  500 * time.Millisecond,
			threshold: 3 * time.Second,
		},
		{
			name:      "volume below range",
			config:    PlaybackConfig{Volume: &quiet},
			backend:   "speaker",
			volume:    0,
			interval:  500 * time.Millisecond,
			threshold: 3 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := (&Config{Playback: tt.config}).GetPlaybackConfig()
			if cfg.Backend != tt.backend {
				t.Errorf("Backend = %q, want %q", cfg.Backend, tt.backend)
			}
			if cfg.Volume == nil || *cfg.Volume != tt.volume {
				t.Errorf("Volume = %v, want %v", cfg.Volume, tt.volume)
			}
			if cfg.PositionInterval != tt.interval {
				t.Errorf("PositionInterval = %v, want %v", cfg.PositionInterval, tt.interval)
			}
			if cfg.RestartThreshold == nil || *cfg.RestartThreshold != tt.threshold {
				t.Errorf("RestartThreshold = %v, want %v", cfg.RestartThreshold, tt.threshold)
			}
			if filepath.Base(cfg.StateDB) != "state.db" {
				t.Errorf("StateDB = %q, want .../state.db", cfg.StateDB)
			}
		})
	}
}

func TestGetPlaybackConfig_DoesNotAliasVolume(t *testing.T) {
	v := 2.0
	c := &Config{Playback: PlaybackConfig{Volume: &v}}
	_ = c.GetPlaybackConfig()
	if v != 2.0 {
		t.Errorf("GetPlaybackConfig() modified the configured volume to %v", v)
	}
}

func TestGetLogConfig(t *testing.T) {
	cfg := (&Config{}).GetLogConfig()
	if cfg.Level != "info" || cfg.MaxSizeMB != 10 || cfg.MaxBackups != 3 || cfg.File != "" {
		t.Errorf("GetLogConfig() = %+v, want defaults", cfg)
	}

	custom := LogConfig{File: "/tmp/waves.log", Level: "debug", MaxSizeMB: 1, MaxBackups: 9}
	if got := (&Config{Log: custom}).GetLogConfig(); got != custom {
		t.Errorf("GetLogConfig() = %+v, want %+v", got, custom)
	}
}

func TestHasMetrics(t *testing.T) {
	if (&Config{}).HasMetrics() {
		t.Error("HasMetrics() = true for empty config")
	}
	c := &Config{Metrics: MetricsConfig{Listen: "127.0.0.1:9310"}}
	if !c.HasMetrics() {
		t.Error("HasMetrics() = false with listen address")
	}
}

func TestLoad_EmptyConfig(t *testing.T) {
	// Create temp directory with empty config
	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("could not get working directory: %v", err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("could not change to temp directory: %v", err)
	}
	defer func() {
		_ = os.Chdir(originalWd)
	}()

	// Create an empty config file
	if err := os.WriteFile("config.toml", []byte(""), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	// Load should succeed even with empty config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	// Note: Values may be inherited from ~/.config/waves/config.toml if it exists
	// We just verify Load() succeeds and returns a valid config
}

func TestLoadFrom_BasicConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	configContent := `
[cache]
root = "~/waves-cache"
memory_max_bytes = 1048576
metadata_backend = "bolt"
payload_ttl = "90m"

[playback]
backend = "virtual"
restart_threshold = "5s"
volume = 0.25

[log]
level = "debug"

[metrics]
listen = "127.0.0.1:9310"

[keys]
next_track = ["l", "pgdown"]
`
	if err := os.WriteFile(path, []byte(configContent), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if got := cfg.Keys["next_track"]; len(got) != 2 || got[0] != "l" || got[1] != "pgdown" {
		t.Errorf("Keys[next_track] = %v, want [l pgdown]", got)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "waves-cache"); cfg.Cache.Root != want {
		t.Errorf("Cache.Root = %q, want %q", cfg.Cache.Root, want)
	}
	if cfg.Cache.MemoryMaxBytes != 1048576 {
		t.Errorf("Cache.MemoryMaxBytes = %d, want 1048576", cfg.Cache.MemoryMaxBytes)
	}
	if cfg.Cache.MetadataBackend != "bolt" {
		t.Errorf("Cache.MetadataBackend = %q, want bolt", cfg.Cache.MetadataBackend)
	}
	if cfg.Cache.PayloadTTL != 90*time.Minute {
		t.Errorf("Cache.PayloadTTL = %v, want 90m", cfg.Cache.PayloadTTL)
	}
	if cfg.Playback.Backend != "virtual" {
		t.Errorf("Playback.Backend = %q, want virtual", cfg.Playback.Backend)
	}
	if cfg.Playback.RestartThreshold == nil || *cfg.Playback.RestartThreshold != 5*time.Second {
		t.Errorf("Playback.RestartThreshold = %v, want 5s", cfg.Playback.RestartThreshold)
	}
	if cfg.Playback.Volume == nil || *cfg.Playback.Volume != 0.25 {
		t.Errorf("Playback.Volume = %v, want 0.25", cfg.Playback.Volume)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if !cfg.HasMetrics() {
		t.Error("HasMetrics() = false")
	}
}

func TestLoadFrom_LaterFileWins(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.toml")
	second := filepath.Join(dir, "second.toml")
	if err := os.WriteFile(first, []byte("[playback]\nbackend = \"virtual\"\n[log]\nlevel = \"warn\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("[playback]\nbackend = \"speaker\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(first, filepath.Join(dir, "missing.toml"), second)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Playback.Backend != "speaker" {
		t.Errorf("Playback.Backend = %q, want speaker", cfg.Playback.Backend)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn from first file", cfg.Log.Level)
	}
}

func TestLoadFrom_InvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	// Create invalid config file
	if err := os.WriteFile(path, []byte("invalid = [[["), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() expected error for invalid TOML, got nil")
	}
}

func TestLoadFrom_InvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[cache]\nimage_ttl = \"forever\"\n"), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() expected error for invalid duration, got nil")
	}
}
