// Package artwork resolves cover images for queue tracks and keeps them,
// along with their thumbnails, in the image cache.
package artwork

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder for cover art
	"image/png"
	"strings"

	"github.com/nfnt/resize"
	log "github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/llehouerou/wavecore/internal/cache"
	"github.com/llehouerou/wavecore/internal/playlist"
)

// Default thumbnail bounds in pixels.
const (
	DefaultThumbWidth  = 128
	DefaultThumbHeight = 128
)

var errNoArtwork = xerrors.New("no artwork")

// IsNoArtworkError evaluates if the given error reports a track without
// cover art.
func IsNoArtworkError(err error) bool {
	return xerrors.Is(err, errNoArtwork)
}

// Store serves covers and thumbnails through the image cache.
type Store struct {
	cache  *cache.Manager
	width  uint
	height uint
}

// NewStore creates a store backed by c. Remote covers are fetched with c's
// loader.
func NewStore(c *cache.Manager, width, height uint) *Store {
	if width == 0 {
		width = DefaultThumbWidth
	}
	if height == 0 {
		height = DefaultThumbHeight
	}
	return &Store{cache: c, width: width, height: height}
}

// sourceKey names where the cover of t comes from.
func sourceKey(t playlist.Track) (string, bool) {
	switch {
	case t.ArtworkURL != "":
		return t.ArtworkURL, true
	case t.URL != "" && !strings.Contains(t.URL, "://"):
		return "embedded:" + t.URL, true
	default:
		return "", false
	}
}

// Cover returns the full-size cover of t.
func (s *Store) Cover(ctx context.Context, t playlist.Track) ([]byte, error) {
	key, ok := sourceKey(t)
	if !ok {
		return nil, errNoArtwork
	}
	if t.ArtworkURL != "" {
		return s.cache.Fetch(ctx, cache.KindImage, key)
	}

	if data, ok := s.cache.GetImage(ctx, key); ok {
		return data, nil
	}
	data, _, err := ExtractCoverArt(t.URL)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, errNoArtwork
	}
	s.cache.SetImage(key, data)
	return data, nil
}

// Thumbnail returns the cover of t scaled to fit the store bounds.
func (s *Store) Thumbnail(ctx context.Context, t playlist.Track) ([]byte, error) {
	src, ok := sourceKey(t)
	if !ok {
		return nil, errNoArtwork
	}
	key := fmt.Sprintf("thumb:%dx%d:%s", s.width, s.height, src)
	if data, ok := s.cache.GetImage(ctx, key); ok {
		return data, nil
	}

	cover, err := s.Cover(ctx, t)
	if err != nil {
		return nil, err
	}
	thumb, err := Thumbnail(cover, s.width, s.height)
	if err != nil {
		return nil, err
	}
	s.cache.SetImage(key, thumb)
	return thumb, nil
}

// Prefetch warms the thumbnail of t. Failures are only logged.
func (s *Store) Prefetch(ctx context.Context, t playlist.Track) {
	if _, err := s.Thumbnail(ctx, t); err != nil && !IsNoArtworkError(err) {
		log.WithFields(log.Fields{
			"package":  "artwork",
			"struct":   "Store",
			"function": "Prefetch",
		}).WithError(err).Debugf("no thumbnail for %s", t.URL)
	}
}

// Thumbnail decodes a JPEG or PNG image and scales it to fit within
// width x height, keeping its aspect ratio. The result is PNG encoded.
func Thumbnail(data []byte, width, height uint) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode cover: %w", err)
	}

	resized := resize.Thumbnail(width, height, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
