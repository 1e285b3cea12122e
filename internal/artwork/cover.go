package artwork

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// Common cover art filenames to look for in album folders.
var coverArtFilenames = []string{
	"cover.jpg", "cover.jpeg", "cover.png",
	"folder.jpg", "folder.jpeg", "folder.png",
	"album.jpg", "album.jpeg", "album.png",
	"front.jpg", "front.jpeg", "front.png",
}

// ExtractCoverArt reads cover art for a local audio file: the picture
// embedded in its tags, else a cover image in the same directory.
// Returns nil data when there is none.
func ExtractCoverArt(path string) (data []byte, mimeType string, err error) {
	data, mimeType, err = embeddedArt(path)
	if err != nil || data != nil {
		return data, mimeType, err
	}
	return folderArt(filepath.Dir(path))
}

// embeddedArt returns the tag picture of path. Unreadable tags count as no
// picture.
func embeddedArt(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, "", nil
	}
	pic := m.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return nil, "", nil
	}
	return pic.Data, pic.MIMEType, nil
}

func folderArt(dir string) ([]byte, string, error) {
	for _, name := range coverArtFilenames {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			data, err = os.ReadFile(filepath.Join(dir, strings.ToUpper(name)))
			if err != nil {
				continue
			}
		}
		return data, mimeFromExt(name), nil
	}
	return nil, "", nil
}

func mimeFromExt(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
