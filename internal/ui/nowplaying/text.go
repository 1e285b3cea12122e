package nowplaying

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// clean drops control characters from tag metadata so a bad title cannot
// break the terminal layout.
func clean(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.ToValidUTF8(s, ""))
}

// truncate shortens s to maxWidth cells with a single-cell ellipsis.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

// pad fills s with spaces up to width cells.
func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}
