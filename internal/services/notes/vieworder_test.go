package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func namedNotes(titles ...string) []*Note {
	out := make([]*Note, len(titles))
	for i, title := range titles {
		out[i] = &Note{ID: bson.NewObjectID(), Title: title}
	}
	return out
}

func TestViewOrderMove(t *testing.T) {
	tests := []struct {
		name  string
		start []string
		from  int
		to    int
		want  []string
	}{
		{"first to last", []string{"A", "B", "C"}, 0, 2, []string{"B", "C", "A"}},
		{"last to first", []string{"A", "B", "C"}, 2, 0, []string{"C", "A", "B"}},
		{"middle forward", []string{"A", "B", "C", "D"}, 1, 2, []string{"A", "C", "B", "D"}},
		{"same index no-op", []string{"A", "B", "C"}, 1, 1, []string{"A", "B", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vo := NewViewOrder()
			vo.MergeFetch(namedNotes(tt.start...))

			require.NoError(t, vo.Move(tt.from, tt.to))
			assert.Equal(t, tt.want, titles(vo.Notes()))
		})
	}
}

func TestViewOrderMoveSameIndexKeepsSynced(t *testing.T) {
	vo := NewViewOrder()
	vo.MergeFetch(namedNotes("A", "B", "C"))

	require.NoError(t, vo.Move(1, 1))
	assert.True(t, vo.Synced(), "dropping an item on itself must not flip the state")
}

func TestViewOrderMoveOutOfRange(t *testing.T) {
	vo := NewViewOrder()
	vo.MergeFetch(namedNotes("A", "B"))

	assert.ErrorIs(t, vo.Move(-1, 0), ErrBadIndex)
	assert.ErrorIs(t, vo.Move(0, 2), ErrBadIndex)
	assert.ErrorIs(t, vo.Move(5, 0), ErrBadIndex)
	assert.True(t, vo.Synced())
}

func TestViewOrderMergeFetchWhileSynced(t *testing.T) {
	vo := NewViewOrder()
	vo.MergeFetch(namedNotes("A", "B"))
	vo.MergeFetch(namedNotes("X", "Y", "Z"))

	assert.Equal(t, []string{"X", "Y", "Z"}, titles(vo.Notes()))
}

func TestViewOrderMergeFetchWhileLocallyReordered(t *testing.T) {
	vo := NewViewOrder()
	first := namedNotes("A", "B", "C")
	vo.MergeFetch(first)
	require.NoError(t, vo.Move(0, 2)) // B C A

	// Refresh: A got a new title, C disappeared, D is new
	refreshedA := &Note{ID: first[0].ID, Title: "A2"}
	d := &Note{ID: bson.NewObjectID(), Title: "D"}
	vo.MergeFetch([]*Note{refreshedA, first[1], d})

	// Local arrangement kept, data refreshed, vanished dropped, new appended
	assert.Equal(t, []string{"B", "A2", "D"}, titles(vo.Notes()))
	assert.False(t, vo.Synced())
}

func TestViewOrderResetAdoptsNextFetch(t *testing.T) {
	vo := NewViewOrder()
	vo.MergeFetch(namedNotes("A", "B"))
	require.NoError(t, vo.Move(0, 1))
	require.False(t, vo.Synced())

	vo.Reset()
	assert.True(t, vo.Synced())

	vo.MergeFetch(namedNotes("X", "Y"))
	assert.Equal(t, []string{"X", "Y"}, titles(vo.Notes()))
}

func TestViewOrderApply(t *testing.T) {
	vo := NewViewOrder()
	ns := namedNotes("A", "B", "C")
	vo.MergeFetch(ns)

	// Unknown ids are ignored; missing working notes keep a tail position
	vo.Apply([]bson.ObjectID{ns[2].ID, bson.NewObjectID(), ns[0].ID})

	assert.Equal(t, []string{"C", "A", "B"}, titles(vo.Notes()))
	assert.False(t, vo.Synced())
}

func TestViewOrderDragLifecycle(t *testing.T) {
	vo := NewViewOrder()
	vo.MergeFetch(namedNotes("A", "B"))

	assert.Equal(t, -1, vo.Dragging())

	vo.BeginDrag(1)
	assert.Equal(t, 1, vo.Dragging())

	// EndDrag clears the mark even when no drop happened
	vo.EndDrag()
	assert.Equal(t, -1, vo.Dragging())

	// Drop on itself: order and state untouched, drag mark still cleared
	vo.BeginDrag(0)
	require.NoError(t, vo.Move(0, 0))
	vo.EndDrag()
	assert.Equal(t, []string{"A", "B"}, titles(vo.Notes()))
	assert.True(t, vo.Synced())
	assert.Equal(t, -1, vo.Dragging())
}
