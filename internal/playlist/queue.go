package playlist

import (
	"math/rand/v2"
	"slices"
	"time"
)

// PlayingQueue is the ordered track list with playback position.
//
// The current index is within [0, Len) whenever the queue is not empty and
// -1 when it is. With shuffle on, navigation walks order, a permutation of
// the track indices that starts at the track current when shuffle was
// enabled.
type PlayingQueue struct {
	tracks       []Track
	currentIndex int
	repeat       RepeatMode
	shuffle      bool
	order        []int // shuffle permutation, nil when shuffle is off
	orderPos     int   // position of currentIndex in order
	rng          *rand.Rand
}

// QueueOption configures a PlayingQueue.
type QueueOption func(*PlayingQueue)

// WithSeed makes shuffle orders reproducible.
func WithSeed(seed uint64) QueueOption {
	return func(q *PlayingQueue) {
		q.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// NewQueue creates a new empty playing queue.
func NewQueue(opts ...QueueOption) *PlayingQueue {
	q := &PlayingQueue{currentIndex: -1}
	for _, opt := range opts {
		opt(q)
	}
	if q.rng == nil {
		now := uint64(time.Now().UnixNano())
		q.rng = rand.New(rand.NewPCG(now, now>>7))
	}
	return q
}

// Current returns the current track, or nil if the queue is empty.
func (q *PlayingQueue) Current() *Track {
	return q.Track(q.currentIndex)
}

// CurrentIndex returns the current index (-1 if empty).
func (q *PlayingQueue) CurrentIndex() int {
	return q.currentIndex
}

// Track returns the track at index, or nil if out of bounds. The pointer is
// to a copy.
func (q *PlayingQueue) Track(index int) *Track {
	if index < 0 || index >= len(q.tracks) {
		return nil
	}
	t := q.tracks[index]
	return &t
}

// Tracks returns a copy of all tracks.
func (q *PlayingQueue) Tracks() []Track {
	return slices.Clone(q.tracks)
}

// Len returns the number of tracks in the queue.
func (q *PlayingQueue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *PlayingQueue) IsEmpty() bool {
	return len(q.tracks) == 0
}

// RepeatMode returns the repeat mode.
func (q *PlayingQueue) RepeatMode() RepeatMode {
	return q.repeat
}

// SetRepeatMode sets the repeat mode.
func (q *PlayingQueue) SetRepeatMode(mode RepeatMode) {
	q.repeat = mode
}

// CycleRepeatMode advances Off, One, All, Off and returns the new mode.
func (q *PlayingQueue) CycleRepeatMode() RepeatMode {
	q.repeat = q.repeat.Next()
	return q.repeat
}

// Shuffle reports whether shuffle is on.
func (q *PlayingQueue) Shuffle() bool {
	return q.shuffle
}

// SetShuffle turns shuffle on or off. Turning it on draws a new order with
// the current track first; turning it off keeps the current track.
func (q *PlayingQueue) SetShuffle(on bool) {
	if on == q.shuffle {
		return
	}
	q.shuffle = on
	if on {
		q.reshuffle()
	} else {
		q.order = nil
		q.orderPos = 0
	}
}

// ToggleShuffle flips shuffle and returns the new state.
func (q *PlayingQueue) ToggleShuffle() bool {
	q.SetShuffle(!q.shuffle)
	return q.shuffle
}

// Order returns a copy of the shuffle order, or nil when shuffle is off.
func (q *PlayingQueue) Order() []int {
	return slices.Clone(q.order)
}

func (q *PlayingQueue) reshuffle() {
	n := len(q.tracks)
	q.order = q.rng.Perm(n)
	q.orderPos = 0
	if q.currentIndex < 0 {
		return
	}
	i := slices.Index(q.order, q.currentIndex)
	q.order[0], q.order[i] = q.order[i], q.order[0]
}

// step returns the index d positions away from the current one in play
// order, wrapping at both ends.
func (q *PlayingQueue) step(d int) int {
	n := len(q.tracks)
	if n == 0 {
		return -1
	}
	if !q.shuffle {
		return ((q.currentIndex+d)%n + n) % n
	}
	return q.order[((q.orderPos+d)%n+n)%n]
}

// HasNext reports whether a track follows the current one without wrapping.
func (q *PlayingQueue) HasNext() bool {
	if q.currentIndex < 0 {
		return false
	}
	if q.shuffle {
		return q.orderPos < len(q.order)-1
	}
	return q.currentIndex < len(q.tracks)-1
}

// NextIndex returns the index Next would move to, or -1 if empty.
func (q *PlayingQueue) NextIndex() int {
	return q.step(1)
}

// PreviousIndex returns the index Previous would move to, or -1 if empty.
func (q *PlayingQueue) PreviousIndex() int {
	return q.step(-1)
}

// Next moves to the following track, wrapping to the first one.
// Returns nil if the queue is empty.
func (q *PlayingQueue) Next() *Track {
	return q.JumpTo(q.step(1))
}

// Previous moves to the preceding track, wrapping to the last one.
// Returns nil if the queue is empty.
func (q *PlayingQueue) Previous() *Track {
	return q.JumpTo(q.step(-1))
}

// EndIndex returns the index to play once the current track ends, following
// the repeat mode, or -1 when playback should stop.
func (q *PlayingQueue) EndIndex() int {
	if q.currentIndex < 0 {
		return -1
	}
	switch q.repeat {
	case RepeatOne:
		return q.currentIndex
	case RepeatAll:
		return q.step(1)
	default:
		if !q.HasNext() {
			return -1
		}
		return q.step(1)
	}
}

// PeekNext returns the track that follows the end of the current one, or
// nil. The position does not change.
func (q *PlayingQueue) PeekNext() *Track {
	return q.Track(q.EndIndex())
}

// Advance moves to EndIndex. Returns nil, leaving the position unchanged,
// when playback should stop.
func (q *PlayingQueue) Advance() *Track {
	i := q.EndIndex()
	if i < 0 {
		return nil
	}
	return q.JumpTo(i)
}

// JumpTo sets the current index. Returns the track there, or nil if invalid.
func (q *PlayingQueue) JumpTo(index int) *Track {
	if index < 0 || index >= len(q.tracks) {
		return nil
	}
	q.currentIndex = index
	if q.shuffle {
		q.orderPos = slices.Index(q.order, index)
	}
	return q.Current()
}

// Replace swaps the whole track list and moves to start, clamped into range.
// A new shuffle order is drawn when shuffle is on.
// Returns the current track, nil for an empty list.
func (q *PlayingQueue) Replace(start int, tracks ...Track) *Track {
	q.tracks = slices.Clone(tracks)
	if len(q.tracks) == 0 {
		q.currentIndex = -1
		q.order = q.order[:0]
		q.orderPos = 0
		return nil
	}
	q.currentIndex = min(max(start, 0), len(q.tracks)-1)
	if q.shuffle {
		q.reshuffle()
	}
	return q.Current()
}

// Add appends tracks without changing the current track. The first track
// added to an empty queue becomes current. Shuffled queues play the new
// tracks after every already ordered one.
func (q *PlayingQueue) Add(tracks ...Track) {
	if len(tracks) == 0 {
		return
	}
	first := len(q.tracks)
	q.tracks = append(q.tracks, tracks...)
	if q.currentIndex < 0 {
		q.currentIndex = 0
	}
	if !q.shuffle {
		return
	}
	added := q.rng.Perm(len(tracks))
	for _, i := range added {
		q.order = append(q.order, first+i)
	}
	q.orderPos = slices.Index(q.order, q.currentIndex)
}

// AddAndPlay appends tracks and jumps to the first added track.
// Returns the track to play.
func (q *PlayingQueue) AddAndPlay(tracks ...Track) *Track {
	if len(tracks) == 0 {
		return nil
	}
	first := len(q.tracks)
	q.Add(tracks...)
	return q.JumpTo(first)
}

// RemoveAt removes the track at index. Removing the current track makes the
// following one current, or the new last one at the end of the list.
func (q *PlayingQueue) RemoveAt(index int) bool {
	if index < 0 || index >= len(q.tracks) {
		return false
	}
	q.tracks = slices.Delete(q.tracks, index, index+1)

	switch {
	case len(q.tracks) == 0:
		q.currentIndex = -1
	case q.currentIndex > index:
		q.currentIndex--
	case q.currentIndex >= len(q.tracks):
		q.currentIndex = len(q.tracks) - 1
	}

	if q.shuffle {
		q.order = slices.DeleteFunc(q.order, func(i int) bool { return i == index })
		for p, i := range q.order {
			if i > index {
				q.order[p] = i - 1
			}
		}
		q.orderPos = max(slices.Index(q.order, q.currentIndex), 0)
	}
	return true
}

// MoveIndices shifts the tracks at indices by delta positions, keeping their
// relative order. The move fails if any track would leave the list.
// Returns the new indices.
func (q *PlayingQueue) MoveIndices(indices []int, delta int) ([]int, bool) {
	if len(indices) == 0 {
		return nil, false
	}
	sorted := slices.Clone(indices)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	if sorted[0]+delta < 0 || sorted[len(sorted)-1]+delta >= len(q.tracks) {
		return nil, false
	}

	n := len(q.tracks)
	moving := make(map[int]bool, len(sorted))
	for _, i := range sorted {
		moving[i] = true
	}

	// place moved tracks at their targets, then fill the gaps in order
	placed := make([]int, n) // placed[newIndex] = oldIndex
	taken := make([]bool, n)
	for _, i := range sorted {
		placed[i+delta] = i
		taken[i+delta] = true
	}
	next := 0
	for old := range n {
		if moving[old] {
			continue
		}
		for taken[next] {
			next++
		}
		placed[next] = old
		taken[next] = true
	}

	newOf := make([]int, n)
	tracks := make([]Track, n)
	for newIdx, old := range placed {
		tracks[newIdx] = q.tracks[old]
		newOf[old] = newIdx
	}
	q.tracks = tracks
	if q.currentIndex >= 0 {
		q.currentIndex = newOf[q.currentIndex]
	}
	for p, i := range q.order {
		q.order[p] = newOf[i]
	}

	out := make([]int, len(indices))
	for k, i := range indices {
		out[k] = i + delta
	}
	return out, true
}

// Clear removes all tracks.
func (q *PlayingQueue) Clear() {
	q.Replace(0)
}

// Snapshot captures tracks and position.
func (q *PlayingQueue) Snapshot() Snapshot {
	return Snapshot{Tracks: q.Tracks(), Index: q.currentIndex}
}

// Restore replaces the queue with a snapshot.
func (q *PlayingQueue) Restore(s Snapshot) *Track {
	return q.Replace(s.Index, s.Tracks...)
}
