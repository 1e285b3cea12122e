package nowplaying

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const kittyChunkSize = 4096

// kittyImage wraps PNG data in Kitty graphics protocol escapes, displayed
// over cols x rows cells. Covers reach the view as PNG thumbnails, so no
// re-encoding happens here.
func kittyImage(png []byte, cols, rows int) string {
	if len(png) == 0 {
		return ""
	}
	payload := base64.StdEncoding.EncodeToString(png)

	var sb strings.Builder
	for i := 0; i < len(payload); i += kittyChunkSize {
		end := min(i+kittyChunkSize, len(payload))
		more := 0
		if end < len(payload) {
			more = 1
		}
		if i == 0 {
			fmt.Fprintf(&sb, "\x1b_Ga=T,f=100,c=%d,r=%d,m=%d;%s\x1b\\", cols, rows, more, payload[i:end])
		} else {
			fmt.Fprintf(&sb, "\x1b_Gm=%d;%s\x1b\\", more, payload[i:end])
		}
	}
	return sb.String()
}

// coverPlaceholder draws a framed note where the cover would go.
func coverPlaceholder(cols, rows int) []string {
	if cols < 4 || rows < 2 {
		return nil
	}
	lines := make([]string, 0, rows)
	lines = append(lines, "┌"+strings.Repeat("─", cols-2)+"┐")
	for i := 1; i < rows-1; i++ {
		inner := strings.Repeat(" ", cols-2)
		if i == rows/2 {
			left := (cols - 3) / 2
			inner = strings.Repeat(" ", left) + "♪" + strings.Repeat(" ", cols-3-left)
		}
		lines = append(lines, "│"+inner+"│")
	}
	return append(lines, "└"+strings.Repeat("─", cols-2)+"┘")
}
