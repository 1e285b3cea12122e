package player

import (
	"bytes"
	"io"
	"path"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
	"golang.org/x/xerrors"
)

// Format is an audio container format.
type Format string

const (
	FormatUnknown Format = ""
	FormatMP3     Format = "mp3"
	FormatFLAC    Format = "flac"
	FormatWAV     Format = "wav"
	FormatOgg     Format = "ogg"
)

// DetectFormat returns r.Format when set, else sniffs the data, else falls
// back to the URL extension.
func DetectFormat(r Resource) Format {
	if r.Format != FormatUnknown {
		return r.Format
	}
	if f := sniff(r.Data); f != FormatUnknown {
		return f
	}
	switch strings.ToLower(path.Ext(r.URL)) {
	case ".mp3":
		return FormatMP3
	case ".flac":
		return FormatFLAC
	case ".wav", ".wave":
		return FormatWAV
	case ".ogg", ".oga":
		return FormatOgg
	default:
		return FormatUnknown
	}
}

func sniff(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, []byte("fLaC")):
		return FormatFLAC
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return FormatWAV
	case bytes.HasPrefix(data, []byte("OggS")):
		return FormatOgg
	case bytes.HasPrefix(data, []byte("ID3")):
		// FLAC files occasionally carry an ID3v2 tag too
		if bytes.Contains(data[:min(len(data), 64*1024)], []byte("fLaC")) {
			return FormatFLAC
		}
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3
	default:
		return FormatUnknown
	}
}

// decode opens r for streaming.
func decode(r Resource) (beep.StreamSeekCloser, beep.Format, error) {
	data := r.Data
	switch f := DetectFormat(r); f {
	case FormatMP3:
		return mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	case FormatFLAC:
		if i := bytes.Index(data, []byte("fLaC")); i > 0 {
			data = data[i:]
		}
		return flac.Decode(bytes.NewReader(data))
	case FormatWAV:
		return wav.Decode(bytes.NewReader(data))
	case FormatOgg:
		return decodeOggVorbis(data)
	default:
		return nil, beep.Format{}, xerrors.Errorf("%s: %w", r.URL, errUnsupported)
	}
}
