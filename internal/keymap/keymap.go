package keymap

// Binding ties keys to an action.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
}

// Bindings is the default key map.
var Bindings = []Binding{
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit"},

	{ActionPlayPause, []string{" "}, "Play/pause"},
	{ActionStop, []string{"s"}, "Stop"},
	{ActionNextTrack, []string{"n", "pgdown"}, "Next track"},
	{ActionPrevTrack, []string{"p", "pgup"}, "Previous track or restart"},
	{ActionFirstTrack, []string{"home"}, "First track"},
	{ActionLastTrack, []string{"end"}, "Last track"},
	{ActionSeekForward, []string{"right"}, "Seek +5s"},
	{ActionSeekBack, []string{"left"}, "Seek -5s"},
	{ActionSeekForwardLong, []string{"shift+right"}, "Seek +30s"},
	{ActionSeekBackLong, []string{"shift+left"}, "Seek -30s"},
	{ActionVolumeUp, []string{"+", "="}, "Volume up"},
	{ActionVolumeDown, []string{"-"}, "Volume down"},

	{ActionCycleRepeat, []string{"R"}, "Cycle repeat mode"},
	{ActionToggleShuffle, []string{"S"}, "Toggle shuffle"},
	{ActionTogglePlayerDisplay, []string{"v"}, "Toggle player display"},

	{ActionRemoveCurrent, []string{"d", "delete"}, "Remove current track"},
	{ActionUndo, []string{"ctrl+z"}, "Undo queue change"},
	{ActionRedo, []string{"ctrl+y"}, "Redo queue change"},
}
