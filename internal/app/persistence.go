package app

import (
	"context"

	"github.com/llehouerou/wavecore/internal/errmsg"
	"github.com/llehouerou/wavecore/internal/playback"
	"github.com/llehouerou/wavecore/internal/state"
)

// restore loads the saved queue into the controller without playing it.
func (a *App) restore() error {
	qs, err := a.state.GetQueue()
	if err != nil {
		return err
	}
	if qs == nil || len(qs.Tracks) == 0 {
		return nil
	}
	a.Playback.Restore(qs.Snapshot())
	a.Playback.SetRepeatMode(qs.RepeatMode)
	a.Playback.SetShuffle(qs.Shuffle)
	a.Playback.SetVolume(qs.Volume)
	return nil
}

// saveQueue hands the current queue to the state store, which debounces
// the write.
func (a *App) saveQueue() {
	s := a.Playback.Snapshot()
	a.state.SaveQueue(state.QueueState{
		CurrentIndex: s.Index,
		RepeatMode:   s.RepeatMode,
		Shuffle:      s.Shuffle,
		Volume:       s.Volume,
		Tracks:       s.Queue,
	})
}

// persist saves the queue whenever its contents, position or modes change,
// and logs playback errors.
func (a *App) persist(ctx context.Context, sub *playback.Subscription) {
	logger := a.logger("persist")
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case <-sub.QueueChanged:
			a.saveQueue()
		case <-sub.TrackChanged:
			a.saveQueue()
		case <-sub.ModeChanged:
			a.saveQueue()
		case e := <-sub.Error:
			logger.WithField("url", e.URL).Warn(errmsg.Format(errmsg.OpTrackLoad, e.Err))
		}
	}
}
