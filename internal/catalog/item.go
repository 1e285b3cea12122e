// Package catalog holds the browsable content the player can start from.
//
// Item is a closed set: Song, Album and Playlist. Callers inspect items
// through the accessor functions of this package instead of type assertions.
package catalog

import "time"

// Item is a Song, an Album or a Playlist.
type Item interface {
	item()
}

// Song is a single playable recording.
type Song struct {
	ID         string
	Title      string
	Artist     string
	Album      string
	ArtworkURL string
	AudioURL   string // source of the audio bytes, also the audio cache key
	Duration   time.Duration
}

// Album is an ordered list of songs by one artist.
type Album struct {
	ID         string
	Title      string
	Artist     string
	ArtworkURL string
	Year       int
	Tracks     []Song
}

// Playlist is a user-curated ordered list of songs.
type Playlist struct {
	ID         string
	Title      string
	Owner      string
	ArtworkURL string
	Entries    []Song
}

func (Song) item()     {}
func (Album) item()    {}
func (Playlist) item() {}

// Variant names returned by KindOf.
const (
	KindSong     = "song"
	KindAlbum    = "album"
	KindPlaylist = "playlist"
)

// KindOf returns the variant name of it, or "" for nil.
func KindOf(it Item) string {
	switch it.(type) {
	case Song, *Song:
		return KindSong
	case Album, *Album:
		return KindAlbum
	case Playlist, *Playlist:
		return KindPlaylist
	default:
		return ""
	}
}

// Title returns the display title of it.
func Title(it Item) string {
	switch v := it.(type) {
	case Song:
		return v.Title
	case *Song:
		return v.Title
	case Album:
		return v.Title
	case *Album:
		return v.Title
	case Playlist:
		return v.Title
	case *Playlist:
		return v.Title
	default:
		return ""
	}
}

// ArtworkURL returns the cover of it. A song without its own cover borrows
// nothing; albums and playlists fall back to their first song with one.
func ArtworkURL(it Item) string {
	switch v := it.(type) {
	case Song:
		return v.ArtworkURL
	case *Song:
		return v.ArtworkURL
	case Album:
		return firstArtwork(v.ArtworkURL, v.Tracks)
	case *Album:
		return firstArtwork(v.ArtworkURL, v.Tracks)
	case Playlist:
		return firstArtwork(v.ArtworkURL, v.Entries)
	case *Playlist:
		return firstArtwork(v.ArtworkURL, v.Entries)
	default:
		return ""
	}
}

// Songs returns the playable songs of it in order. A song yields itself.
// The returned slice is a copy.
func Songs(it Item) []Song {
	switch v := it.(type) {
	case Song:
		return []Song{v}
	case *Song:
		return []Song{*v}
	case Album:
		return withAlbum(v.Tracks, v.Title, v.Artist, v.ArtworkURL)
	case *Album:
		return withAlbum(v.Tracks, v.Title, v.Artist, v.ArtworkURL)
	case Playlist:
		return append([]Song(nil), v.Entries...)
	case *Playlist:
		return append([]Song(nil), v.Entries...)
	default:
		return nil
	}
}

func firstArtwork(own string, songs []Song) string {
	if own != "" {
		return own
	}
	for _, s := range songs {
		if s.ArtworkURL != "" {
			return s.ArtworkURL
		}
	}
	return ""
}

// withAlbum copies tracks, filling album fields the tracks leave empty.
func withAlbum(tracks []Song, title, artist, artwork string) []Song {
	out := make([]Song, len(tracks))
	for i, s := range tracks {
		if s.Album == "" {
			s.Album = title
		}
		if s.Artist == "" {
			s.Artist = artist
		}
		if s.ArtworkURL == "" {
			s.ArtworkURL = artwork
		}
		out[i] = s
	}
	return out
}
