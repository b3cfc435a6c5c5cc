package notes

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Repository defines the interface for notes persistence.
// Every operation except FindPublic is scoped to the owning user.
type Repository interface {
	Create(ctx context.Context, n *Note) error
	List(ctx context.Context, userID bson.ObjectID, req ListNotesRequest) ([]*Note, error)
	Get(ctx context.Context, userID, noteID bson.ObjectID) (*Note, error)
	Update(ctx context.Context, userID, noteID bson.ObjectID, patch UpdateNote) (*Note, error)
	Delete(ctx context.Context, userID, noteID bson.ObjectID) error

	// FindPublic looks a note up by its public identifier. It returns
	// (nil, nil) when the note is absent or no longer public; a note made
	// private again must not be retrievable via its old public id.
	FindPublic(ctx context.Context, publicID string) (*Note, error)

	// SetOrder persists the canonical manual order: orderedIDs[i] gets
	// order_index i+1. IDs not owned by userID are ignored by the filter.
	SetOrder(ctx context.Context, userID bson.ObjectID, orderedIDs []bson.ObjectID) error
}

// Bus defines the interface for event broadcasting
type Bus interface {
	Broadcast(ctx context.Context, ev NoteEvent)
}

// ContentCipher seals and opens note content at the repository boundary.
// Implemented by crypto.Box.
type ContentCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(blob string) (string, error)
}
