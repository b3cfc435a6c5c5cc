package notes

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Note is the sole persistent entity of the system. Content is stored either
// as plaintext or as an AES-GCM blob depending on IsEncrypted; above the
// service boundary Content is always plaintext.
type Note struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty" example:"683cdb8aa96ad71e8e075bd1"`
	UserID      bson.ObjectID `bson:"user_id" json:"user_id" example:"683cdb8aa96ad71e8e075bd0"`
	Title       string        `bson:"title" json:"title" validate:"required" example:"Meeting Notes"`
	Content     string        `bson:"content" json:"content" example:"Remember to discuss the quarterly targets"`
	IsPublic    bool          `bson:"is_public" json:"is_public" example:"false"`
	PublicID    string        `bson:"public_id" json:"public_id" example:"01J0AQ5TZZY3V1KQJ8RZ1Q2W3E"`
	IsEncrypted bool          `bson:"is_encrypted" json:"is_encrypted" example:"false"`
	Label       string        `bson:"label,omitempty" json:"label,omitempty" example:"work"`
	OrderIndex  int           `bson:"order_index,omitempty" json:"order_index,omitempty" example:"3"`
	Version     int64         `bson:"version" json:"version" example:"7"`
	CreatedAt   time.Time     `bson:"created_at" json:"created_at" example:"2025-06-01T23:00:26.005703677Z"`
	UpdatedAt   time.Time     `bson:"updated_at" json:"updated_at" example:"2025-06-01T23:00:26.005703677Z"`
}

// UpdateNote carries the resolved fields a repository writes on update.
// Content is already in its at-rest form (ciphertext when IsEncrypted).
// Nil pointer fields are left unchanged in the store.
type UpdateNote struct {
	Title       string
	Content     string
	IsEncrypted bool
	IsPublic    *bool
	Label       *string

	// ExpectedVersion, when set, makes the update conditional: a concurrent
	// mutation that already bumped the note's version causes
	// ErrVersionConflict instead of silently overwriting newer state.
	ExpectedVersion *int64
}

// NoteEvent represents an event that occurred on a note
type NoteEvent struct {
	Type string `json:"type"` // "created", "updated", "deleted"
	Note *Note  `json:"note"`
}
