package nowplaying

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/wavecore/internal/playback"
	"github.com/llehouerou/wavecore/internal/playlist"
)

func playingState() State {
	return State{
		Transport: playback.StatePlaying,
		Title:     "Song Title",
		Artist:    "The Artist",
		Album:     "The Album",
		Index:     1,
		Total:     3,
		Position:  83 * time.Second,
		Duration:  296 * time.Second,
		Volume:    0.8,
	}
}

func TestRender_EmptyQueue(t *testing.T) {
	got := stripANSI(Render(State{Index: -1}, 60))
	if !strings.Contains(got, "Queue is empty") {
		t.Errorf("Render() = %q", got)
	}
}

func TestRender_Compact(t *testing.T) {
	got := stripANSI(Render(playingState(), 120))

	for _, want := range []string{"Song Title", "The Artist · The Album", "2/3", "1:23 / 4:56", playSymbol, " 80%"} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() missing %q in %q", want, got)
		}
	}
	if h := strings.Count(got, "\n") + 1; h != Height(ModeCompact) {
		t.Errorf("height = %d, want %d", h, Height(ModeCompact))
	}
}

func TestRender_CompactNarrowTruncates(t *testing.T) {
	s := playingState()
	s.Title = strings.Repeat("Long ", 30)

	got := Render(s, 60)
	for _, line := range strings.Split(got, "\n") {
		if w := lipgloss.Width(line); w > 60 {
			t.Errorf("line width %d exceeds 60: %q", w, stripANSI(line))
		}
	}
	if !strings.Contains(stripANSI(got), "…") {
		t.Error("long title should be truncated with an ellipsis")
	}
}

func TestRender_StatusSymbols(t *testing.T) {
	tests := []struct {
		state playback.State
		want  string
	}{
		{playback.StatePlaying, playSymbol},
		{playback.StatePaused, pauseSymbol},
		{playback.StateLoading, loadingSymbol},
		{playback.StateErrored, errorSymbol},
		{playback.StateStopped, stopSymbol},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			s := playingState()
			s.Transport = tt.state
			if got := stripANSI(Render(s, 120)); !strings.Contains(got, tt.want) {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_UnknownDuration(t *testing.T) {
	s := playingState()
	s.Duration = 0
	if got := stripANSI(Render(s, 120)); !strings.Contains(got, "1:23 / -:--") {
		t.Errorf("Render() = %q", got)
	}
}

func TestRender_ExpandedPlaceholder(t *testing.T) {
	s := playingState()
	s.Mode = ModeExpanded

	got := stripANSI(Render(s, 80))
	for _, want := range []string{"Song Title", "The Artist", "The Album", "♪", "1:23", "4:56"} {
		if !strings.Contains(got, want) {
			t.Errorf("expanded view missing %q", want)
		}
	}
	if h := strings.Count(got, "\n") + 1; h != Height(ModeExpanded) {
		t.Errorf("height = %d, want %d", h, Height(ModeExpanded))
	}
}

func TestRender_ExpandedFallsBackWhenNarrow(t *testing.T) {
	s := playingState()
	s.Mode = ModeExpanded

	got := Render(s, 30)
	if strings.Count(got, "\n")+1 != Height(ModeCompact) {
		t.Error("narrow expanded view should render compact")
	}
}

func TestRender_ExpandedCover(t *testing.T) {
	s := playingState()
	s.Mode = ModeExpanded
	s.Cover = []byte("png")

	got := Render(s, 80)
	lines := strings.Split(got, "\n")
	if !strings.Contains(lines[1], "\x1b_Ga=T,f=100,c=16,r=8") {
		t.Errorf("cover escape not on first content line: %q", lines[1])
	}
	if strings.Contains(got, "♪") {
		t.Error("placeholder should not be drawn under a cover")
	}
}

func TestModes(t *testing.T) {
	tests := []struct {
		name string
		s    State
		want string
	}{
		{"plain", State{Volume: 1}, "100%"},
		{"shuffle", State{Shuffle: true, Volume: 0.5}, shuffleSymbol + "  50%"},
		{"repeat all", State{RepeatMode: playlist.RepeatAll}, repeatSymbol + "   0%"},
		{"repeat one", State{RepeatMode: playlist.RepeatOne, Shuffle: true, Volume: 0.8},
			shuffleSymbol + " " + repeatSymbol + repeatOneMark + "  80%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := modes(tt.s); got != tt.want {
				t.Errorf("modes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name     string
		pos, dur time.Duration
		filled   int
	}{
		{"start", 0, time.Minute, 0},
		{"half", 30 * time.Second, time.Minute, 5},
		{"end", time.Minute, time.Minute, 10},
		{"past end", 2 * time.Minute, time.Minute, 10},
		{"unknown duration", 30 * time.Second, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripANSI(progressBar(tt.pos, tt.dur, 10))
			if n := strings.Count(got, "━"); n != tt.filled {
				t.Errorf("filled = %d, want %d (%q)", n, tt.filled, got)
			}
			if w := lipgloss.Width(got); w != 10 {
				t.Errorf("width = %d, want 10", w)
			}
		})
	}
}

func TestNewState(t *testing.T) {
	track := playlist.Track{URL: "/music/a%20b.mp3", Artist: "Art\x1bist", Duration: time.Minute}
	snap := playback.Snapshot{
		State:  playback.StatePaused,
		Track:  &track,
		Index:  0,
		Queue:  []playlist.Track{track},
		Volume: 0.3,
	}

	s := NewState(snap, ModeExpanded)
	if s.Title != "a%20b.mp3" {
		t.Errorf("Title = %q, want file name fallback", s.Title)
	}
	if s.Artist != "Artist" {
		t.Errorf("Artist = %q, want control characters stripped", s.Artist)
	}
	if s.Duration != time.Minute {
		t.Errorf("Duration = %v, want track duration hint", s.Duration)
	}
	if s.Total != 1 || s.Mode != ModeExpanded {
		t.Errorf("State = %+v", s)
	}
}

func TestKittyImage_Chunks(t *testing.T) {
	if kittyImage(nil, 4, 4) != "" {
		t.Error("no data should render nothing")
	}

	small := kittyImage([]byte("tiny"), 4, 2)
	if !strings.HasPrefix(small, "\x1b_Ga=T,f=100,c=4,r=2,m=0;") || strings.Count(small, "\x1b_G") != 1 {
		t.Errorf("small image = %q", small)
	}

	big := kittyImage(make([]byte, 8000), 4, 2)
	if n := strings.Count(big, "\x1b_G"); n != 3 {
		t.Errorf("chunks = %d, want 3", n)
	}
	if !strings.Contains(big, "\x1b_Gm=0;") {
		t.Error("last chunk should close the transfer")
	}
}

func TestCoverPlaceholder(t *testing.T) {
	lines := coverPlaceholder(8, 4)
	if len(lines) != 4 {
		t.Fatalf("len = %d, want 4", len(lines))
	}
	for _, l := range lines {
		if w := lipgloss.Width(l); w != 8 {
			t.Errorf("line %q width = %d, want 8", l, w)
		}
	}
	if coverPlaceholder(3, 1) != nil {
		t.Error("too small placeholder should be empty")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 6, "hello…"},
		{"hello", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
