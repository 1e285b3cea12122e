// Package nowplaying is the terminal view of the playback controller: the
// current track with its progress, the transport and queue modes, cache
// usage, and key bindings driving the controller.
package nowplaying

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/wavecore/internal/cache"
	"github.com/llehouerou/wavecore/internal/errmsg"
	"github.com/llehouerou/wavecore/internal/keymap"
	"github.com/llehouerou/wavecore/internal/playback"
	"github.com/llehouerou/wavecore/internal/playlist"
)

const (
	seekStep     = 5 * time.Second
	seekStepLong = 30 * time.Second
	volumeStep   = 0.05
)

// StatsSource provides cache usage for the status line.
type StatsSource interface {
	Snapshot(ctx context.Context) (cache.Stats, error)
}

// CoverSource provides PNG thumbnails for the expanded view.
type CoverSource interface {
	Thumbnail(ctx context.Context, t playlist.Track) ([]byte, error)
}

// Option configures a Model.
type Option func(*Model)

// WithStats shows the cache usage of src in the status line.
func WithStats(src StatsSource) Option {
	return func(m *Model) { m.stats = src }
}

// WithCovers draws covers from src in the expanded view.
func WithCovers(src CoverSource) Option {
	return func(m *Model) { m.covers = src }
}

// WithKeys replaces the default key map.
func WithKeys(r *keymap.Resolver) Option {
	return func(m *Model) { m.keys = r }
}

// WithMode sets the initial display mode.
func WithMode(mode DisplayMode) Option {
	return func(m *Model) { m.mode = mode }
}

// Model is the bubbletea model of the now-playing view.
type Model struct {
	svc    playback.Service
	sub    *playback.Subscription
	keys   *keymap.Resolver
	stats  StatsSource
	covers CoverSource

	snapshot   playback.Snapshot
	cacheStats cache.Stats
	hasStats   bool
	cover      []byte
	coverKey   string
	status     string

	mode     DisplayMode
	width    int
	quitting bool
}

// New creates the view bound to svc. It subscribes immediately so no event
// between construction and Init is missed.
func New(svc playback.Service, opts ...Option) Model {
	m := Model{svc: svc, mode: ModeCompact, width: 80}
	for _, opt := range opts {
		opt(&m)
	}
	if m.keys == nil {
		// the default bindings never fail to resolve
		m.keys, _ = keymap.NewResolver(keymap.Bindings, nil)
	}
	m.sub = svc.Subscribe()
	m.snapshot = svc.Snapshot()
	m.coverKey = coverKey(m.snapshot.Track)
	return m
}

// Init starts listening to the controller and loads the first stats and
// cover.
func (m Model) Init() tea.Cmd {
	return tea.Batch(watchEvents(m.sub), m.refreshStats(), m.loadCover())
}

// Update handles a message and returns the next model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	case eventMsg:
		return m.handleEvent(msg)
	case closedMsg:
		m.quitting = true
		return m, tea.Quit
	case actionDoneMsg:
		if msg.err != nil && !playback.IsSupersededError(msg.err) {
			m.status = errmsg.Format(msg.op, msg.err)
		}
		m.snapshot = m.svc.Snapshot()
		return m, nil
	case statsMsg:
		if msg.err == nil {
			m.cacheStats = msg.stats
			m.hasStats = true
		}
		return m, statsTick()
	case statsTickMsg:
		return m, m.refreshStats()
	case coverMsg:
		if msg.key == m.coverKey {
			m.cover = msg.data
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleEvent(msg eventMsg) (tea.Model, tea.Cmd) {
	m.snapshot = m.svc.Snapshot()
	cmds := []tea.Cmd{watchEvents(m.sub)}

	switch {
	case msg.err != nil:
		m.status = errmsg.FormatWith(errmsg.OpTrackLoad, msg.err.URL, msg.err.Err)
	case msg.track != nil:
		m.status = ""
	}

	if key := coverKey(m.snapshot.Track); key != m.coverKey {
		m.coverKey = key
		m.cover = nil
		cmds = append(cmds, m.loadCover())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	svc := m.svc
	var cmd tea.Cmd

	switch m.keys.Resolve(key) {
	case keymap.ActionQuit:
		m.quitting = true
		return m, tea.Quit
	case keymap.ActionPlayPause:
		cmd = run(errmsg.OpPlaybackStart, svc.Toggle)
	case keymap.ActionStop:
		svc.Stop()
	case keymap.ActionNextTrack:
		cmd = run(errmsg.OpTrackLoad, svc.Next)
	case keymap.ActionPrevTrack:
		cmd = run(errmsg.OpTrackLoad, svc.Previous)
	case keymap.ActionFirstTrack:
		cmd = m.playIndex(0)
	case keymap.ActionLastTrack:
		cmd = m.playIndex(len(m.snapshot.Queue) - 1)
	case keymap.ActionSeekForward:
		svc.SeekBy(seekStep)
	case keymap.ActionSeekBack:
		svc.SeekBy(-seekStep)
	case keymap.ActionSeekForwardLong:
		svc.SeekBy(seekStepLong)
	case keymap.ActionSeekBackLong:
		svc.SeekBy(-seekStepLong)
	case keymap.ActionVolumeUp:
		svc.SetVolume(svc.Volume() + volumeStep)
	case keymap.ActionVolumeDown:
		svc.SetVolume(svc.Volume() - volumeStep)
	case keymap.ActionCycleRepeat:
		svc.ToggleRepeat()
	case keymap.ActionToggleShuffle:
		svc.ToggleShuffle()
	case keymap.ActionTogglePlayerDisplay:
		if m.mode == ModeCompact {
			m.mode = ModeExpanded
		} else {
			m.mode = ModeCompact
		}
	case keymap.ActionRemoveCurrent:
		if m.snapshot.Index >= 0 {
			svc.RemoveAt(m.snapshot.Index)
		}
	case keymap.ActionUndo:
		svc.Undo()
	case keymap.ActionRedo:
		svc.Redo()
	default:
		return m, nil
	}

	m.snapshot = svc.Snapshot()
	return m, cmd
}

func (m Model) playIndex(index int) tea.Cmd {
	if index < 0 {
		return nil
	}
	svc := m.svc
	return run(errmsg.OpTrackLoad, func(ctx context.Context) error {
		return svc.PlayIndex(ctx, index)
	})
}

// View renders the bar and the status line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	st := NewState(m.snapshot, m.mode)
	if m.mode == ModeExpanded {
		st.Cover = m.cover
	}
	return strings.Join([]string{Render(st, m.width), m.statusLine()}, "\n")
}
