package notes

import (
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrBadIndex is returned by Move when an index is outside the working list.
var ErrBadIndex = errors.New("reorder index out of range")

// ViewOrder holds one session's ephemeral presentation order of notes,
// separate from the persisted canonical order.
//
// It is a two-state machine. In the synced state every MergeFetch adopts the
// fetched list wholesale. After the first effective Move the session is
// locally reordered: fetches refresh note data but no longer clobber the
// arrangement, so a background refresh cannot snap the list back mid-drag.
// Reset returns to synced and lets the next fetch win again.
type ViewOrder struct {
	mu               sync.Mutex
	notes            []*Note
	locallyReordered bool
	dragging         int // index of the note being dragged, -1 when none
}

// NewViewOrder creates an empty, synced working set.
func NewViewOrder() *ViewOrder {
	return &ViewOrder{dragging: -1}
}

// Synced reports whether the next MergeFetch will adopt server order.
func (v *ViewOrder) Synced() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.locallyReordered
}

// Notes returns a copy of the current working list.
func (v *ViewOrder) Notes() []*Note {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]*Note, len(v.notes))
	copy(out, v.notes)
	return out
}

// MergeFetch folds a fresh fetch into the working set. Synced sessions take
// the fetch as-is. Locally reordered sessions keep their arrangement: ids
// still present stay where the user put them (with refreshed data), vanished
// ids drop out, and new ids are appended in fetch order.
func (v *ViewOrder) MergeFetch(fetched []*Note) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.locallyReordered {
		v.notes = make([]*Note, len(fetched))
		copy(v.notes, fetched)
		return
	}

	byID := make(map[bson.ObjectID]*Note, len(fetched))
	for _, n := range fetched {
		byID[n.ID] = n
	}

	merged := make([]*Note, 0, len(fetched))
	for _, n := range v.notes {
		if fresh, ok := byID[n.ID]; ok {
			merged = append(merged, fresh)
			delete(byID, n.ID)
		}
	}
	for _, n := range fetched {
		if _, ok := byID[n.ID]; ok {
			merged = append(merged, n)
		}
	}
	v.notes = merged
}

// Move removes the element at from and reinserts it at to, preserving the
// relative order of everything else. from == to is a no-op that does not
// mark the session locally reordered.
func (v *ViewOrder) Move(from, to int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if from < 0 || from >= len(v.notes) || to < 0 || to >= len(v.notes) {
		return ErrBadIndex
	}
	if from == to {
		return nil
	}

	v.notes = splice(v.notes, from, to)
	v.locallyReordered = true
	return nil
}

// Apply replaces the working arrangement with the given id order and marks
// the session locally reordered. IDs not in the working set are ignored;
// working notes missing from ids keep their position at the tail.
func (v *ViewOrder) Apply(ids []bson.ObjectID) {
	v.mu.Lock()
	defer v.mu.Unlock()

	byID := make(map[bson.ObjectID]*Note, len(v.notes))
	for _, n := range v.notes {
		byID[n.ID] = n
	}

	arranged := make([]*Note, 0, len(v.notes))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			arranged = append(arranged, n)
			delete(byID, id)
		}
	}
	for _, n := range v.notes {
		if _, ok := byID[n.ID]; ok {
			arranged = append(arranged, n)
		}
	}

	v.notes = arranged
	v.locallyReordered = true
}

// Reset drops the local arrangement; the next MergeFetch wins wholesale.
func (v *ViewOrder) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.locallyReordered = false
	v.notes = nil
	v.dragging = -1
}

// BeginDrag records the source index of an in-progress drag gesture.
func (v *ViewOrder) BeginDrag(index int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dragging = index
}

// Dragging returns the index recorded by BeginDrag, or -1.
func (v *ViewOrder) Dragging() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dragging
}

// EndDrag clears the transient drag mark. It always runs, whether or not a
// drop happened, which covers cancelled drags.
func (v *ViewOrder) EndDrag() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dragging = -1
}

// splice moves list[from] to position to without disturbing relative order.
func splice(list []*Note, from, to int) []*Note {
	out := make([]*Note, 0, len(list))
	out = append(out, list[:from]...)
	out = append(out, list[from+1:]...)

	tail := make([]*Note, len(out[to:]))
	copy(tail, out[to:])

	out = append(out[:to], list[from])
	return append(out, tail...)
}
