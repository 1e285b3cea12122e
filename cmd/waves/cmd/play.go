package cmd

import (
	"errors"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/llehouerou/wavecore/internal/app"
	"github.com/llehouerou/wavecore/internal/errmsg"
	"github.com/llehouerou/wavecore/internal/keymap"
	"github.com/llehouerou/wavecore/internal/logging"
	"github.com/llehouerou/wavecore/internal/ui/nowplaying"
)

var expanded bool

var playCmd = &cobra.Command{
	Use:   "play [url|path...]",
	Short: "Play tracks in the now-playing view",
	Long:  "Replace the queue with the given URLs or files and play the first one. Without arguments, the saved queue is resumed.",
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().BoolVarP(&expanded, "expanded", "e", false, "start with the cover and metadata view")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) (err error) {
	cfg, logCloser, err := loadConfig()
	if err != nil {
		return err
	}
	defer logCloser.Close()

	logger := log.WithFields(log.Fields{
		"package":  "cmd",
		"function": "runPlay",
	})

	// Audio output writes diagnostics to stderr, which would garble the view.
	restore, err := logging.CaptureStderr()
	switch {
	case err == nil:
		defer restore()
	case logging.IsLogsOnStderrError(err):
	default:
		logger.WithError(err).Warn("stderr not captured")
	}

	keys, err := keymap.NewResolver(keymap.Bindings, cfg.Keys)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := a.Start(ctx); err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}

	if len(args) > 0 {
		// A failing first track is shown in the view, which lets the user skip it.
		if err := a.PlayLocations(ctx, args); app.IsEmptyQueueError(err) {
			return errors.New(errmsg.Format(errmsg.OpPlaybackStart, err))
		} else if err != nil {
			logger.WithError(err).Warn("first track did not start")
		}
	}

	mode := nowplaying.ModeCompact
	if expanded {
		mode = nowplaying.ModeExpanded
	}
	model := nowplaying.New(a.Playback,
		nowplaying.WithStats(a.Cache),
		nowplaying.WithCovers(a.Artwork),
		nowplaying.WithKeys(keys),
		nowplaying.WithMode(mode),
	)

	p := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
