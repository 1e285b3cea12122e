//nolint:goconst // test file with repeated string literals
package playlist

import (
	"slices"
	"testing"
)

func tracks(urls ...string) []Track {
	out := make([]Track, len(urls))
	for i, u := range urls {
		out[i] = Track{URL: u}
	}
	return out
}

func urls(q *PlayingQueue) []string {
	var out []string
	for _, t := range q.Tracks() {
		out = append(out, t.URL)
	}
	return out
}

// checkInvariant fails when the current index is out of range for a
// non-empty queue, or not -1 for an empty one.
func checkInvariant(t *testing.T, q *PlayingQueue) {
	t.Helper()
	if q.IsEmpty() {
		if q.CurrentIndex() != -1 {
			t.Fatalf("empty queue has CurrentIndex() = %d", q.CurrentIndex())
		}
		return
	}
	if q.CurrentIndex() < 0 || q.CurrentIndex() >= q.Len() {
		t.Fatalf("CurrentIndex() = %d out of [0, %d)", q.CurrentIndex(), q.Len())
	}
	if q.Shuffle() {
		order := q.Order()
		if len(order) != q.Len() {
			t.Fatalf("shuffle order %v does not cover %d tracks", order, q.Len())
		}
		sorted := slices.Sorted(slices.Values(order))
		for i, v := range sorted {
			if i != v {
				t.Fatalf("shuffle order %v is not a permutation", order)
			}
		}
	}
}

func TestNewQueue(t *testing.T) {
	q := NewQueue()

	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
	if q.CurrentIndex() != -1 {
		t.Errorf("CurrentIndex() = %d, want -1", q.CurrentIndex())
	}
	if q.Current() != nil {
		t.Error("Current() should be nil for empty queue")
	}
	if q.Next() != nil || q.Previous() != nil || q.Advance() != nil {
		t.Error("navigation on empty queue should return nil")
	}
	checkInvariant(t, q)
}

func TestQueue_Add(t *testing.T) {
	q := NewQueue()

	q.Add(tracks("/a.mp3", "/b.mp3")...)

	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
	// first add to an empty queue makes the first track current
	if q.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() = %d, want 0", q.CurrentIndex())
	}

	q.JumpTo(1)
	q.Add(tracks("/c.mp3")...)
	if q.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex() = %d, want 1 (unchanged)", q.CurrentIndex())
	}
	checkInvariant(t, q)
}

func TestQueue_AddAndPlay(t *testing.T) {
	q := NewQueue()
	q.Add(tracks("/existing.mp3")...)

	track := q.AddAndPlay(tracks("/new1.mp3", "/new2.mp3")...)

	if q.Len() != 3 {
		t.Errorf("Len() = %d, want 3", q.Len())
	}
	if q.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex() = %d, want 1", q.CurrentIndex())
	}
	if track == nil || track.URL != "/new1.mp3" {
		t.Errorf("returned track = %v, want /new1.mp3", track)
	}
	if q.AddAndPlay() != nil {
		t.Error("AddAndPlay with no tracks should return nil")
	}
}

func TestQueue_Replace(t *testing.T) {
	tests := []struct {
		name      string
		start     int
		urls      []string
		wantIndex int
	}{
		{name: "start in range", start: 1, urls: []string{"/a", "/b", "/c"}, wantIndex: 1},
		{name: "start clamped high", start: 10, urls: []string{"/a", "/b"}, wantIndex: 1},
		{name: "start clamped low", start: -3, urls: []string{"/a", "/b"}, wantIndex: 0},
		{name: "empty", start: 0, urls: nil, wantIndex: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue()
			q.Add(tracks("/old1.mp3", "/old2.mp3")...)
			q.JumpTo(1)

			track := q.Replace(tt.start, tracks(tt.urls...)...)

			if q.CurrentIndex() != tt.wantIndex {
				t.Errorf("CurrentIndex() = %d, want %d", q.CurrentIndex(), tt.wantIndex)
			}
			if tt.wantIndex < 0 {
				if track != nil {
					t.Errorf("Replace() = %v, want nil", track)
				}
			} else if track == nil || track.URL != tt.urls[tt.wantIndex] {
				t.Errorf("Replace() = %v, want %s", track, tt.urls[tt.wantIndex])
			}
			checkInvariant(t, q)
		})
	}
}

func TestQueue_JumpTo_Invalid(t *testing.T) {
	q := NewQueue()
	q.Add(tracks("/a.mp3")...)

	if q.JumpTo(5) != nil || q.JumpTo(-1) != nil {
		t.Error("JumpTo out of range should return nil")
	}
	if q.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() = %d, want 0 (unchanged)", q.CurrentIndex())
	}
}

func TestQueue_NextPreviousWrap(t *testing.T) {
	tests := []struct {
		name  string
		start int
		move  func(*PlayingQueue) *Track
		want  int
	}{
		{name: "next", start: 0, move: (*PlayingQueue).Next, want: 1},
		{name: "next wraps", start: 2, move: (*PlayingQueue).Next, want: 0},
		{name: "previous", start: 2, move: (*PlayingQueue).Previous, want: 1},
		{name: "previous wraps", start: 0, move: (*PlayingQueue).Previous, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue()
			q.Replace(tt.start, tracks("/0", "/1", "/2")...)

			track := tt.move(q)

			if q.CurrentIndex() != tt.want {
				t.Errorf("CurrentIndex() = %d, want %d", q.CurrentIndex(), tt.want)
			}
			if track == nil || track.URL != q.Current().URL {
				t.Errorf("returned %v, want current track", track)
			}
		})
	}
}

func TestQueue_EndIndex(t *testing.T) {
	tests := []struct {
		name    string
		repeat  RepeatMode
		current int
		want    int
	}{
		{name: "off middle", repeat: RepeatOff, current: 1, want: 2},
		{name: "off last stops", repeat: RepeatOff, current: 2, want: -1},
		{name: "one replays", repeat: RepeatOne, current: 1, want: 1},
		{name: "one at last replays", repeat: RepeatOne, current: 2, want: 2},
		{name: "all middle", repeat: RepeatAll, current: 0, want: 1},
		{name: "all wraps", repeat: RepeatAll, current: 2, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue()
			q.Replace(tt.current, tracks("/0", "/1", "/2")...)
			q.SetRepeatMode(tt.repeat)

			if got := q.EndIndex(); got != tt.want {
				t.Errorf("EndIndex() = %d, want %d", got, tt.want)
			}

			peek := q.PeekNext()
			if q.CurrentIndex() != tt.current {
				t.Error("PeekNext must not move")
			}
			advanced := q.Advance()
			if tt.want < 0 {
				if peek != nil || advanced != nil {
					t.Error("stop case should yield nil")
				}
				if q.CurrentIndex() != tt.current {
					t.Errorf("CurrentIndex() = %d, want %d (unchanged)", q.CurrentIndex(), tt.current)
				}
				return
			}
			if q.CurrentIndex() != tt.want {
				t.Errorf("after Advance CurrentIndex() = %d, want %d", q.CurrentIndex(), tt.want)
			}
			if peek == nil || advanced == nil || peek.URL != advanced.URL {
				t.Errorf("PeekNext() = %v, Advance() = %v", peek, advanced)
			}
		})
	}
}

func TestQueue_RepeatAllVisitsInOrder(t *testing.T) {
	q := NewQueue()
	q.Replace(0, tracks("A", "B", "C")...)
	q.SetRepeatMode(RepeatAll)

	var got []string
	for range 3 {
		got = append(got, q.Next().URL)
	}

	if want := []string{"B", "C", "A"}; !slices.Equal(got, want) {
		t.Errorf("visited %v, want %v", got, want)
	}
}

func TestQueue_HasNext(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*PlayingQueue)
		wantHas bool
	}{
		{
			name:    "empty queue",
			setup:   func(_ *PlayingQueue) {},
			wantHas: false,
		},
		{
			name:    "at start",
			setup:   func(q *PlayingQueue) { q.Replace(0, tracks("/a.mp3", "/b.mp3")...) },
			wantHas: true,
		},
		{
			name:    "at end",
			setup:   func(q *PlayingQueue) { q.Replace(0, tracks("/a.mp3")...) },
			wantHas: false,
		},
		{
			name: "shuffle single track",
			setup: func(q *PlayingQueue) {
				q.Replace(0, tracks("/a.mp3")...)
				q.SetShuffle(true)
			},
			wantHas: false,
		},
		{
			name: "shuffle at order start",
			setup: func(q *PlayingQueue) {
				q.Replace(1, tracks("/a.mp3", "/b.mp3")...)
				q.SetShuffle(true)
			},
			wantHas: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue()
			tt.setup(q)

			if got := q.HasNext(); got != tt.wantHas {
				t.Errorf("HasNext() = %v, want %v", got, tt.wantHas)
			}
		})
	}
}

func TestQueue_ShuffleOrder(t *testing.T) {
	q := NewQueue(WithSeed(42))
	q.Replace(3, tracks("/0", "/1", "/2", "/3", "/4", "/5", "/6", "/7")...)

	if !q.ToggleShuffle() {
		t.Fatal("ToggleShuffle() should return true")
	}
	order := q.Order()
	if order[0] != 3 {
		t.Errorf("order %v should start with the current index 3", order)
	}
	checkInvariant(t, q)

	// Next walks the order and wraps back to its start
	for p := 1; p <= len(order); p++ {
		q.Next()
		if want := order[p%len(order)]; q.CurrentIndex() != want {
			t.Fatalf("step %d: CurrentIndex() = %d, want %d", p, q.CurrentIndex(), want)
		}
	}

	q.Previous()
	if q.CurrentIndex() != order[len(order)-1] {
		t.Errorf("Previous from order start should wrap to %d, got %d", order[len(order)-1], q.CurrentIndex())
	}

	// turning shuffle off keeps the current track
	current := q.CurrentIndex()
	if q.ToggleShuffle() {
		t.Error("ToggleShuffle() should return false")
	}
	if q.CurrentIndex() != current || q.Order() != nil {
		t.Errorf("shuffle off: CurrentIndex() = %d, Order() = %v", q.CurrentIndex(), q.Order())
	}
}

func TestQueue_ShuffleRegeneratedOnlyWhenTurningOn(t *testing.T) {
	q := NewQueue(WithSeed(7))
	q.Replace(0, tracks("/0", "/1", "/2", "/3", "/4", "/5")...)
	q.SetShuffle(true)
	first := q.Order()

	q.SetShuffle(true)
	if !slices.Equal(first, q.Order()) {
		t.Error("enabling shuffle twice must keep the order")
	}

	q.Next()
	q.JumpTo(first[3])
	if !slices.Equal(first, q.Order()) {
		t.Error("navigation must keep the order")
	}
}

func TestQueue_ShuffleReplaceRegenerates(t *testing.T) {
	q := NewQueue(WithSeed(1))
	q.SetShuffle(true)
	q.Replace(2, tracks("/0", "/1", "/2", "/3")...)

	if order := q.Order(); len(order) != 4 || order[0] != 2 {
		t.Errorf("order = %v, want a permutation of 4 starting at 2", order)
	}
	checkInvariant(t, q)

	q.Add(tracks("/4", "/5")...)
	checkInvariant(t, q)
	order := q.Order()
	if tail := slices.Sorted(slices.Values(order[4:])); !slices.Equal(tail, []int{4, 5}) {
		t.Errorf("added tracks should be ordered last, order = %v", order)
	}
}

func TestQueue_RemoveAt(t *testing.T) {
	tests := []struct {
		name      string
		current   int
		remove    int
		wantIndex int
		wantURL   string
	}{
		{name: "before current", current: 2, remove: 0, wantIndex: 1, wantURL: "/c.mp3"},
		{name: "current moves to following", current: 1, remove: 1, wantIndex: 1, wantURL: "/c.mp3"},
		{name: "current last clamps", current: 2, remove: 2, wantIndex: 1, wantURL: "/b.mp3"},
		{name: "after current", current: 0, remove: 2, wantIndex: 0, wantURL: "/a.mp3"},
	}

	for _, tt := range tests {
		for _, shuffle := range []bool{false, true} {
			t.Run(tt.name, func(t *testing.T) {
				q := NewQueue(WithSeed(3))
				q.Replace(tt.current, tracks("/a.mp3", "/b.mp3", "/c.mp3")...)
				q.SetShuffle(shuffle)

				if !q.RemoveAt(tt.remove) {
					t.Fatal("RemoveAt should return true")
				}
				if q.Len() != 2 {
					t.Errorf("Len() = %d, want 2", q.Len())
				}
				if q.CurrentIndex() != tt.wantIndex || q.Current().URL != tt.wantURL {
					t.Errorf("current = %d %q, want %d %q", q.CurrentIndex(), q.Current().URL, tt.wantIndex, tt.wantURL)
				}
				checkInvariant(t, q)
			})
		}
	}
}

func TestQueue_RemoveAt_LastTrack(t *testing.T) {
	q := NewQueue()
	q.Add(tracks("/a.mp3")...)
	q.SetShuffle(true)

	if !q.RemoveAt(0) {
		t.Fatal("RemoveAt should return true")
	}
	if q.RemoveAt(0) {
		t.Error("RemoveAt on empty queue should return false")
	}
	checkInvariant(t, q)
}

func TestQueue_Clear(t *testing.T) {
	q := NewQueue()
	q.Add(tracks("/a.mp3", "/b.mp3")...)
	q.JumpTo(1)

	q.Clear()

	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
	checkInvariant(t, q)
}

func TestQueue_CycleRepeatMode(t *testing.T) {
	q := NewQueue()

	if q.RepeatMode() != RepeatOff {
		t.Errorf("initial RepeatMode() = %v, want RepeatOff", q.RepeatMode())
	}

	for i, want := range []RepeatMode{RepeatOne, RepeatAll, RepeatOff} {
		if got := q.CycleRepeatMode(); got != want {
			t.Errorf("after cycle %d = %v, want %v", i+1, got, want)
		}
	}
}

func TestQueue_MoveIndices(t *testing.T) {
	t.Run("move up", func(t *testing.T) {
		q := NewQueue()
		q.Add(tracks("/a.mp3", "/b.mp3", "/c.mp3", "/d.mp3")...)
		q.JumpTo(1)

		newIndices, ok := q.MoveIndices([]int{2, 3}, -1)

		if !ok {
			t.Fatal("MoveIndices should succeed")
		}
		if !slices.Equal(newIndices, []int{1, 2}) {
			t.Errorf("newIndices = %v, want [1 2]", newIndices)
		}
		if want := []string{"/a.mp3", "/c.mp3", "/d.mp3", "/b.mp3"}; !slices.Equal(urls(q), want) {
			t.Errorf("tracks = %v, want %v", urls(q), want)
		}
		if q.Current().URL != "/b.mp3" {
			t.Errorf("current track changed to %q", q.Current().URL)
		}
	})

	t.Run("move down with shuffle", func(t *testing.T) {
		q := NewQueue(WithSeed(9))
		q.Add(tracks("/a.mp3", "/b.mp3", "/c.mp3")...)
		q.SetShuffle(true)
		before := q.Order()

		newIndices, ok := q.MoveIndices([]int{0, 1}, 1)

		if !ok {
			t.Fatal("MoveIndices should succeed")
		}
		if !slices.Equal(newIndices, []int{1, 2}) {
			t.Errorf("newIndices = %v, want [1 2]", newIndices)
		}
		if q.Current().URL != "/a.mp3" || q.Order()[0] != q.CurrentIndex() {
			t.Errorf("current track lost: %v order %v (before %v)", q.Current(), q.Order(), before)
		}
		checkInvariant(t, q)
	})

	t.Run("cannot move past bounds", func(t *testing.T) {
		q := NewQueue()
		q.Add(tracks("/a.mp3", "/b.mp3")...)

		if _, ok := q.MoveIndices([]int{0}, -1); ok {
			t.Error("should not be able to move index 0 up")
		}
		if _, ok := q.MoveIndices(nil, 1); ok {
			t.Error("moving nothing should fail")
		}
	})
}

func TestQueue_SnapshotRestore(t *testing.T) {
	q := NewQueue()
	q.Replace(2, tracks("/a", "/b", "/c")...)

	s := q.Snapshot()
	q.Clear()

	track := q.Restore(s)
	if track == nil || track.URL != "/c" || q.CurrentIndex() != 2 {
		t.Errorf("Restore() = %v at %d", track, q.CurrentIndex())
	}
}
