package nowplaying

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/wavecore/internal/errmsg"
	"github.com/llehouerou/wavecore/internal/playback"
)

const (
	statsInterval = 5 * time.Second
	coverTimeout  = 10 * time.Second
)

// watchEvents waits for the next controller event and converts it to a
// tea.Msg. It is re-armed after every event.
func watchEvents(sub *playback.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-sub.StateChanged:
			return eventMsg{}
		case e := <-sub.TrackChanged:
			return eventMsg{track: &e}
		case <-sub.PositionChanged:
			return eventMsg{}
		case <-sub.QueueChanged:
			return eventMsg{}
		case <-sub.ModeChanged:
			return eventMsg{}
		case e := <-sub.Error:
			return eventMsg{err: &e}
		case <-sub.Done:
			return closedMsg{}
		}
	}
}

// run executes a blocking controller call off the update loop.
func run(op errmsg.Op, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{op: op, err: fn(context.Background())}
	}
}

func (m Model) refreshStats() tea.Cmd {
	if m.stats == nil {
		return nil
	}
	src := m.stats
	return func() tea.Msg {
		s, err := src.Snapshot(context.Background())
		return statsMsg{stats: s, err: err}
	}
}

func statsTick() tea.Cmd {
	return tea.Tick(statsInterval, func(time.Time) tea.Msg {
		return statsTickMsg{}
	})
}

// loadCover fetches the thumbnail of the current track.
func (m Model) loadCover() tea.Cmd {
	t := m.snapshot.Track
	if m.covers == nil || t == nil {
		return nil
	}
	src, track, key := m.covers, *t, coverKey(t)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), coverTimeout)
		defer cancel()
		data, err := src.Thumbnail(ctx, track)
		if err != nil {
			return coverMsg{key: key}
		}
		return coverMsg{key: key, data: data}
	}
}

func coverKey(t *playback.Track) string {
	if t == nil {
		return ""
	}
	return t.URL + "\x00" + t.ArtworkURL
}
