// Package playlist holds the play queue: ordered tracks, the current
// position, shuffle order and repeat mode, plus undo history.
package playlist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"

	"github.com/llehouerou/wavecore/internal/catalog"
)

// Track is one queue entry.
type Track struct {
	ID         string // catalog song ID, empty for local files
	URL        string // audio source, also the audio cache key
	Title      string
	Artist     string
	Album      string
	ArtworkURL string
	Duration   time.Duration
}

// DisplayTitle returns the title, falling back to the file name of the URL.
func (t Track) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return filepath.Base(t.URL)
}

// FromSong converts a catalog song to a queue track.
func FromSong(s catalog.Song) Track {
	return Track{
		ID:         s.ID,
		URL:        s.AudioURL,
		Title:      s.Title,
		Artist:     s.Artist,
		Album:      s.Album,
		ArtworkURL: s.ArtworkURL,
		Duration:   s.Duration,
	}
}

// FromItem returns the tracks of a catalog item in play order.
func FromItem(it catalog.Item) []Track {
	songs := catalog.Songs(it)
	tracks := make([]Track, 0, len(songs))
	for _, s := range songs {
		if s.AudioURL == "" {
			continue
		}
		tracks = append(tracks, FromSong(s))
	}
	return tracks
}

// FromPath creates a track from a local file, reading its tags when possible.
func FromPath(path string) Track {
	t := Track{URL: path, Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))}

	f, err := os.Open(path)
	if err != nil {
		return t
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return t
	}
	if m.Title() != "" {
		t.Title = m.Title()
	}
	t.Artist = m.Artist()
	t.Album = m.Album()
	return t
}

// FromLocation creates a track from a URL or a local path.
func FromLocation(loc string) Track {
	if strings.Contains(loc, "://") {
		return Track{URL: loc, Title: filepath.Base(loc)}
	}
	return FromPath(loc)
}

// FormatDuration formats a duration as MM:SS, or H:MM:SS past an hour.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
