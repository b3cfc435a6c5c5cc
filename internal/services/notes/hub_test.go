package notes

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestHubBroadcastIsOwnerScoped(t *testing.T) {
	hub := NewHub(4)
	owner := bson.NewObjectID()
	other := bson.NewObjectID()

	ownerSub, cancelOwner := hub.Subscribe(ulid.Make(), owner)
	defer cancelOwner()
	otherSub, cancelOther := hub.Subscribe(ulid.Make(), other)
	defer cancelOther()

	ev := NoteEvent{Type: "created", Note: &Note{ID: bson.NewObjectID(), UserID: owner}}
	hub.Broadcast(context.Background(), ev)

	select {
	case got := <-ownerSub.Ch:
		assert.Equal(t, "created", got.Type)
	default:
		t.Fatal("owner subscriber did not receive the event")
	}

	select {
	case <-otherSub.Ch:
		t.Fatal("event leaked to another user's subscriber")
	default:
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub(4)
	userID := bson.NewObjectID()

	_, cancel := hub.Subscribe(ulid.Make(), userID)
	require.Equal(t, 1, hub.SubscriberCount(userID))

	cancel()
	assert.Equal(t, 0, hub.SubscriberCount(userID))

	// Broadcasting to a user with no connections is a no-op
	hub.Broadcast(context.Background(), NoteEvent{
		Type: "deleted",
		Note: &Note{ID: bson.NewObjectID(), UserID: userID},
	})
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(1)
	userID := bson.NewObjectID()

	sub, cancel := hub.Subscribe(ulid.Make(), userID)
	defer cancel()

	ev := NoteEvent{Type: "updated", Note: &Note{ID: bson.NewObjectID(), UserID: userID}}
	hub.Broadcast(context.Background(), ev)
	hub.Broadcast(context.Background(), ev)

	assert.Equal(t, uint64(1), hub.Dropped())
	assert.Len(t, sub.Ch, 1)
}
