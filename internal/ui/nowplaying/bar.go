package nowplaying

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/wavecore/internal/playback"
	"github.com/llehouerou/wavecore/internal/playlist"
)

// DisplayMode controls the bar appearance.
type DisplayMode int

const (
	ModeCompact  DisplayMode = iota // Single-line view
	ModeExpanded                    // Cover and metadata
)

const (
	artCols          = 16
	artRows          = 8
	minExpandedWidth = 40
	minBarWidth      = 5
	separator        = "   "
)

// State holds everything needed to render the bar.
type State struct {
	Transport  playback.State
	Title      string
	Artist     string
	Album      string
	Index      int // zero-based, -1 when nothing is current
	Total      int
	Position   time.Duration
	Duration   time.Duration
	Volume     float64
	RepeatMode playlist.RepeatMode
	Shuffle    bool
	Mode       DisplayMode
	Cover      []byte // PNG thumbnail, expanded mode only
}

// Height returns the rendered height of the bar for the given mode.
func Height(mode DisplayMode) int {
	if mode == ModeExpanded {
		return artRows + 2
	}
	return 3
}

// NewState builds a State from a controller snapshot.
func NewState(s playback.Snapshot, mode DisplayMode) State {
	st := State{
		Transport:  s.State,
		Index:      s.Index,
		Total:      len(s.Queue),
		Position:   s.Position,
		Duration:   s.Duration,
		Volume:     s.Volume,
		RepeatMode: s.RepeatMode,
		Shuffle:    s.Shuffle,
		Mode:       mode,
	}
	if s.Track != nil {
		st.Title = clean(s.Track.DisplayTitle())
		st.Artist = clean(s.Track.Artist)
		st.Album = clean(s.Track.Album)
		if st.Duration == 0 {
			st.Duration = s.Track.Duration
		}
	}
	return st
}

// Render returns the bar for the given width.
func Render(s State, width int) string {
	if s.Total == 0 {
		return barStyle.Padding(0, 2).Width(max(width-2, 0)).Render(metaStyle.Render("Queue is empty"))
	}
	if s.Mode == ModeExpanded && width-2 >= minExpandedWidth {
		return renderExpanded(s, width)
	}
	return renderCompact(s, width)
}

func statusSymbol(st playback.State) string {
	switch st {
	case playback.StatePlaying:
		return activeStyle.Render(playSymbol)
	case playback.StatePaused:
		return pauseSymbol
	case playback.StateLoading:
		return loadingSymbol
	case playback.StateErrored:
		return errorStyle.Render(errorSymbol)
	default:
		return stopSymbol
	}
}

func trackNumber(s State) string {
	if s.Index < 0 || s.Total == 0 {
		return fmt.Sprintf("-/%d", s.Total)
	}
	return fmt.Sprintf("%d/%d", s.Index+1, s.Total)
}

// modes renders the shuffle and repeat indicators and the volume.
func modes(s State) string {
	var parts []string
	if s.Shuffle {
		parts = append(parts, shuffleSymbol)
	}
	switch s.RepeatMode {
	case playlist.RepeatAll:
		parts = append(parts, repeatSymbol)
	case playlist.RepeatOne:
		parts = append(parts, repeatSymbol+repeatOneMark)
	case playlist.RepeatOff:
	}
	parts = append(parts, fmt.Sprintf("%3d%%", int(s.Volume*100+0.5)))
	return strings.Join(parts, " ")
}

func timeText(s State) string {
	dur := "-:--"
	if s.Duration > 0 {
		dur = playlist.FormatDuration(s.Duration)
	}
	return playlist.FormatDuration(s.Position) + " / " + dur
}

func renderCompact(s State, width int) string {
	// border and horizontal padding
	innerWidth := max(width-6, 0)

	title := s.Title
	if title == "" {
		title = "Unknown Track"
	}
	var info []string
	if s.Artist != "" {
		info = append(info, s.Artist)
	}
	if s.Album != "" {
		info = append(info, s.Album)
	}
	artist := strings.Join(info, " · ")

	status := statusSymbol(s.Transport)
	timeStr := timeText(s)
	right := trackNumber(s) + separator + modes(s)

	sepWidth := lipgloss.Width(separator)
	fixed := lipgloss.Width(status) + 1 + lipgloss.Width(timeStr) + lipgloss.Width(right) + sepWidth*3
	available := innerWidth - fixed - 10

	if available < 10 {
		// no room for the bar: status and title only
		line := status + " " + titleStyle.Render(truncate(title, max(innerWidth-lipgloss.Width(status)-1, 1)))
		return barStyle.Padding(0, 2).Width(max(width-2, 0)).Render(line)
	}

	var left string
	titleWidth := lipgloss.Width(title)
	switch {
	case artist != "" && titleWidth+sepWidth+lipgloss.Width(artist) <= available:
		left = titleStyle.Render(title) + separator + artistStyle.Render(artist)
	case artist != "" && titleWidth+sepWidth < available:
		left = titleStyle.Render(title) + separator + artistStyle.Render(truncate(artist, available-titleWidth-sepWidth))
	default:
		left = titleStyle.Render(truncate(title, available))
	}

	barWidth := max(innerWidth-fixed-lipgloss.Width(left), minBarWidth)

	var b strings.Builder
	b.WriteString(left)
	b.WriteString(separator)
	b.WriteString(status)
	b.WriteString(" ")
	b.WriteString(progressBar(s.Position, s.Duration, barWidth))
	b.WriteString(separator)
	b.WriteString(timeStyle.Render(timeStr))
	b.WriteString(separator)
	b.WriteString(metaStyle.Render(right))

	return barStyle.Padding(0, 2).Width(width - 2).Render(b.String())
}

// progressBar renders a width cell bar filled in proportion to position.
// An unknown duration renders an empty bar.
func progressBar(position, duration time.Duration, width int) string {
	var ratio float64
	if duration > 0 {
		ratio = min(max(float64(position)/float64(duration), 0), 1)
	}
	filled := min(int(float64(width)*ratio), width)
	return filledStyle.Render(strings.Repeat("━", filled)) +
		emptyBarStyle.Render(strings.Repeat("─", width-filled))
}

func renderExpanded(s State, width int) string {
	innerWidth := width - 2
	metaWidth := innerWidth - artCols - 2

	title := s.Title
	if title == "" {
		title = "Unknown Track"
	}
	artist := s.Artist
	if artist == "" {
		artist = "Unknown Artist"
	}
	album := s.Album
	if album == "" {
		album = "Unknown Album"
	}

	meta := []string{
		titleStyle.Render(truncate(title, metaWidth)),
		artistStyle.Render(truncate(artist, metaWidth)),
		artistStyle.Render(truncate(album, metaWidth)),
		"",
		metaStyle.Render(truncate(trackNumber(s)+separator+modes(s), metaWidth)),
		"",
		expandedProgress(s, metaWidth),
		"",
	}
	meta = meta[:artRows]

	art := coverPlaceholder(artCols, artRows)
	if len(s.Cover) > 0 {
		art = nil
	}
	lines := make([]string, artRows)
	for i := range artRows {
		left := strings.Repeat(" ", artCols)
		if i < len(art) {
			left = art[i]
		}
		lines[i] = left + "  " + meta[i]
	}

	rendered := barStyle.Width(innerWidth).Render(strings.Join(lines, "\n"))
	if len(s.Cover) == 0 {
		return rendered
	}

	// The image is drawn from the first content cell, right after the
	// left border of the first line below the top border.
	top, rest, ok := strings.Cut(rendered, "\n")
	leftBorder := lipgloss.RoundedBorder().Left
	i := strings.Index(rest, leftBorder)
	if !ok || i < 0 {
		return rendered
	}
	i += len(leftBorder)
	return top + "\n" + rest[:i] + kittyImage(s.Cover, artCols, artRows) + rest[i:]
}

// expandedProgress renders: ▶  1:23  ━━━━────  4:56
func expandedProgress(s State, width int) string {
	status := statusSymbol(s.Transport)
	pos := playlist.FormatDuration(s.Position)
	dur := "-:--"
	if s.Duration > 0 {
		dur = playlist.FormatDuration(s.Duration)
	}
	fixed := lipgloss.Width(status) + 2 + lipgloss.Width(pos) + 2 + 2 + lipgloss.Width(dur)
	barWidth := width - fixed
	if barWidth < 3 {
		return status + "  " + pos + " / " + dur
	}
	return status + "  " + timeStyle.Render(pos) + "  " + progressBar(s.Position, s.Duration, barWidth) + "  " + timeStyle.Render(dur)
}
