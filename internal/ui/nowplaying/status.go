package nowplaying

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/wavecore/internal/cache"
)

// statusLine shows the last error, or the transport state, on the left and
// the cache usage on the right.
func (m Model) statusLine() string {
	text, style := m.snapshot.State.String(), metaStyle
	if m.status != "" {
		text, style = clean(m.status), errorStyle
	}
	if !m.hasStats {
		return style.Render(truncate(text, m.width))
	}

	right := cacheSummary(m.cacheStats)
	gap := m.width - lipgloss.Width(right)
	if gap <= 1 {
		return style.Render(truncate(text, m.width))
	}
	return style.Render(pad(truncate(text, gap-1), gap)) + metaStyle.Render(right)
}

// cacheSummary renders: cache 12 MB · mem 3.4 MB (42)
func cacheSummary(s cache.Stats) string {
	var disk int64
	for _, n := range s.DiskBytes {
		disk += n
	}
	return fmt.Sprintf("cache %s · mem %s (%d)",
		humanize.Bytes(uint64(max(disk, 0))),
		humanize.Bytes(uint64(max(s.MemoryBytes, 0))),
		s.MemoryEntries)
}
