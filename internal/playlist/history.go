package playlist

import "slices"

// Snapshot is a queue's tracks and current index.
type Snapshot struct {
	Tracks []Track
	Index  int
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{Tracks: slices.Clone(s.Tracks), Index: s.Index}
}

// QueueHistory keeps bounded queue snapshots for undo and redo.
type QueueHistory struct {
	states  []Snapshot
	current int // index of current state (-1 = before any state)
	maxSize int
}

// NewQueueHistory creates a new history with the given maximum size.
func NewQueueHistory(maxSize int) *QueueHistory {
	if maxSize < 1 {
		maxSize = 1
	}
	return &QueueHistory{
		states:  make([]Snapshot, 0, maxSize),
		current: -1,
		maxSize: maxSize,
	}
}

// Push records s as the newest state, dropping redo states and the oldest
// state beyond the limit.
func (h *QueueHistory) Push(s Snapshot) {
	h.states = append(h.states[:h.current+1], s.clone())
	h.current = len(h.states) - 1

	if excess := len(h.states) - h.maxSize; excess > 0 {
		h.states = slices.Delete(h.states, 0, excess)
		h.current -= excess
	}
}

// Undo steps back and returns that state.
func (h *QueueHistory) Undo() (Snapshot, bool) {
	if !h.CanUndo() {
		return Snapshot{}, false
	}
	h.current--
	return h.states[h.current].clone(), true
}

// Redo steps forward and returns that state.
func (h *QueueHistory) Redo() (Snapshot, bool) {
	if !h.CanRedo() {
		return Snapshot{}, false
	}
	h.current++
	return h.states[h.current].clone(), true
}

// CanUndo returns true if there is a previous state to undo to.
func (h *QueueHistory) CanUndo() bool {
	return h.current > 0
}

// CanRedo returns true if there is a next state to redo to.
func (h *QueueHistory) CanRedo() bool {
	return h.current < len(h.states)-1
}
