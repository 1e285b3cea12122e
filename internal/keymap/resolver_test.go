package keymap

import (
	"slices"
	"testing"
)

func testBindings() []Binding {
	return []Binding{
		{ActionQuit, []string{"q", "ctrl+c"}, "Quit"},
		{ActionPlayPause, []string{" "}, "Play/pause"},
		{ActionStop, []string{"s"}, "Stop"},
		{ActionNextTrack, []string{"n", "pgdown"}, "Next"},
	}
}

func TestResolver_Resolve(t *testing.T) {
	r, err := NewResolver(testBindings(), nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		key      string
		expected Action
	}{
		{"q", ActionQuit},
		{"ctrl+c", ActionQuit},
		{" ", ActionPlayPause},
		{"s", ActionStop},
		{"pgdown", ActionNextTrack},
		{"unknown", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := r.Resolve(tt.key); got != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}

func TestResolver_Overrides(t *testing.T) {
	r, err := NewResolver(testBindings(), map[string][]string{
		"next_track": {"s", "l"},
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		key      string
		expected Action
	}{
		{"s", ActionNextTrack},
		{"l", ActionNextTrack},
		{"n", ""},
		{"pgdown", ""},
		{"q", ActionQuit},
	}
	for _, tt := range tests {
		if got := r.Resolve(tt.key); got != tt.expected {
			t.Errorf("Resolve(%q) = %q, want %q", tt.key, got, tt.expected)
		}
	}

	if keys := r.KeysFor(ActionStop); len(keys) != 0 {
		t.Errorf("KeysFor(stop) = %v, want none after its key moved", keys)
	}
	if keys := r.KeysFor(ActionNextTrack); !slices.Equal(keys, []string{"s", "l"}) {
		t.Errorf("KeysFor(next_track) = %v, want [s l]", keys)
	}
}

func TestResolver_OverrideWinsRegardlessOfOrder(t *testing.T) {
	r, err := NewResolver(testBindings(), map[string][]string{
		"play_pause": {"n"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Resolve("n"); got != ActionPlayPause {
		t.Errorf("Resolve(n) = %q, want play_pause", got)
	}
	if got := r.Resolve("pgdown"); got != ActionNextTrack {
		t.Errorf("Resolve(pgdown) = %q, want next_track", got)
	}
}

func TestResolver_UnknownOverride(t *testing.T) {
	_, err := NewResolver(testBindings(), map[string][]string{"launch_rockets": {"x"}})
	if !IsUnknownActionError(err) {
		t.Errorf("err = %v, want unknown action", err)
	}
}

func TestResolver_KeysFor(t *testing.T) {
	r, err := NewResolver(testBindings(), nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		action   Action
		expected []string
	}{
		{ActionQuit, []string{"q", "ctrl+c"}},
		{ActionPlayPause, []string{" "}},
		{Action("unknown"), nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			if got := r.KeysFor(tt.action); !slices.Equal(got, tt.expected) {
				t.Errorf("KeysFor(%q) = %v, want %v", tt.action, got, tt.expected)
			}
		})
	}
}

func TestResolver_DefaultBindings(t *testing.T) {
	r, err := NewResolver(Bindings, nil)
	if err != nil {
		t.Fatal(err)
	}
	if action := r.Resolve("q"); action != ActionQuit {
		t.Errorf("Resolve('q') = %q, want %q", action, ActionQuit)
	}
	if action := r.Resolve(" "); action != ActionPlayPause {
		t.Errorf("Resolve(' ') = %q, want %q", action, ActionPlayPause)
	}
}

func TestDedupe(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"no duplicates", []string{"a", "b", "c"}, []string{"a", "b", "c"}},
		{"with duplicates", []string{"a", "b", "a", "c", "b"}, []string{"a", "b", "c"}},
		{"empty slice", []string{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dedupe(tt.input); !slices.Equal(got, tt.expected) {
				t.Errorf("dedupe(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
