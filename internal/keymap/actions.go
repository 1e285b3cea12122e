// Package keymap maps key strings to the actions of the now-playing view.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	ActionQuit Action = "quit"

	// Transport
	ActionPlayPause       Action = "play_pause"
	ActionStop            Action = "stop"
	ActionNextTrack       Action = "next_track"
	ActionPrevTrack       Action = "prev_track"
	ActionFirstTrack      Action = "first_track"
	ActionLastTrack       Action = "last_track"
	ActionSeekForward     Action = "seek_forward"
	ActionSeekBack        Action = "seek_back"
	ActionSeekForwardLong Action = "seek_forward_long"
	ActionSeekBackLong    Action = "seek_back_long"
	ActionVolumeUp        Action = "volume_up"
	ActionVolumeDown      Action = "volume_down"

	// Modes and display
	ActionCycleRepeat         Action = "cycle_repeat"
	ActionToggleShuffle       Action = "toggle_shuffle"
	ActionTogglePlayerDisplay Action = "toggle_player_display"

	// Queue
	ActionRemoveCurrent Action = "remove_current"
	ActionUndo          Action = "undo"
	ActionRedo          Action = "redo"
)
