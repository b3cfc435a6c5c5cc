package notes

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Subscriber receives note events for a single connection.
type Subscriber struct {
	UserID bson.ObjectID
	Ch     chan NoteEvent
}

// Hub fans note events out to the owning user's live connections.
// Events are owner-scoped: a subscriber only ever sees its own notes.
type Hub struct {
	mu         sync.RWMutex
	byUser     map[bson.ObjectID]map[ulid.ULID]*Subscriber
	bufferSize int
	dropped    atomic.Uint64
}

// NewHub creates an event hub with the given per-connection buffer size.
func NewHub(bufferSize int) *Hub {
	return &Hub{
		byUser:     make(map[bson.ObjectID]map[ulid.ULID]*Subscriber),
		bufferSize: bufferSize,
	}
}

// Subscribe registers a connection for a user and returns the subscriber
// plus a cancel func that removes it.
func (h *Hub) Subscribe(connID ulid.ULID, userID bson.ObjectID) (*Subscriber, func()) {
	sub := &Subscriber{
		UserID: userID,
		Ch:     make(chan NoteEvent, h.bufferSize),
	}

	h.mu.Lock()
	conns, ok := h.byUser[userID]
	if !ok {
		conns = make(map[ulid.ULID]*Subscriber)
		h.byUser[userID] = conns
	}
	conns[connID] = sub
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if conns, ok := h.byUser[userID]; ok {
			delete(conns, connID)
			if len(conns) == 0 {
				delete(h.byUser, userID)
			}
		}
		h.mu.Unlock()
	}
	return sub, cancel
}

// Broadcast delivers ev to every live connection of the note's owner.
// Slow consumers never block the caller; their events are dropped and
// counted instead.
func (h *Hub) Broadcast(ctx context.Context, ev NoteEvent) {
	if ev.Note == nil {
		return
	}

	h.mu.RLock()
	conns := h.byUser[ev.Note.UserID]
	subs := make([]*Subscriber, 0, len(conns))
	for _, sub := range conns {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.Ch <- ev:
		case <-ctx.Done():
			return
		default:
			h.dropped.Add(1)
		}
	}
}

// Dropped returns the number of events discarded due to full buffers.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// SubscriberCount returns the number of live connections for a user.
func (h *Hub) SubscriberCount(userID bson.ObjectID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID])
}

// TotalSubscribers returns the number of live connections across all users.
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, subs := range h.byUser {
		total += len(subs)
	}
	return total
}
