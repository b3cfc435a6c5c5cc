package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inkwell/internal/logger"
	"inkwell/internal/services/notes"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// NotesRepo implements the notes.Repository interface for MongoDB
type NotesRepo struct {
	collection *mongo.Collection
}

func repoCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return WithRepoTimeout(parent, OpTimeout)
}

// NewNotesRepo creates a new notes repository
func NewNotesRepo(parentCtx context.Context, db *mongo.Database) (*NotesRepo, error) {
	collection := db.Collection("notes")

	indexes := []mongo.IndexModel{
		// Default listing: newest-updated first per user
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "updated_at", Value: -1},
			},
		},
		// Manual listing: canonical order per user
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "order_index", Value: 1},
			},
		},
		// Anonymous lookup by public identifier
		{
			Keys:    bson.D{{Key: "public_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	ctx, cancel := context.WithTimeout(parentCtx, OpTimeout)
	defer cancel()

	for _, indexModel := range indexes {
		if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				logger.L().Debug("index already exists, continuing", "collection", "notes")
				continue
			}
			logger.L().Error("failed to create index", "collection", "notes", "error", err)
			return nil, fmt.Errorf("failed to create notes collection index: %w", err)
		}
	}

	return &NotesRepo{collection: collection}, nil
}

// Create inserts a new note
func (r *NotesRepo) Create(ctx context.Context, note *notes.Note) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, note)
	return err
}

// List retrieves all notes for a user, newest-updated first by default or by
// canonical order_index for sort=manual.
func (r *NotesRepo) List(ctx context.Context, userID bson.ObjectID, req notes.ListNotesRequest) ([]*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	sort := bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}}
	if req.Sort == "manual" {
		// Unranked notes (order_index 0) sort ahead; within a rank fall back
		// to recency so the listing stays stable.
		sort = bson.D{{Key: "order_index", Value: 1}, {Key: "updated_at", Value: -1}}
	}

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer func(ctxToClose context.Context) {
		if cerr := cursor.Close(ctxToClose); cerr != nil {
			logger.L().Error("failed to close cursor", "error", cerr)
		}
	}(ctx)

	var notesList []*notes.Note
	if err := cursor.All(ctx, &notesList); err != nil {
		return nil, err
	}

	return notesList, nil
}

// Get fetches a single note belonging to the user
func (r *NotesRepo) Get(ctx context.Context, userID, noteID bson.ObjectID) (*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{"_id": noteID, "user_id": userID}

	var note notes.Note
	if err := r.collection.FindOne(ctx, filter).Decode(&note); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notes.ErrNoteNotFound
		}
		return nil, err
	}

	return &note, nil
}

// Update applies the patch to a note belonging to the user and returns the
// updated document. With patch.ExpectedVersion set the write is conditional:
// an intervening mutation yields notes.ErrVersionConflict.
func (r *NotesRepo) Update(ctx context.Context, userID, noteID bson.ObjectID, patch notes.UpdateNote) (*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{
		"_id":     noteID,
		"user_id": userID,
	}
	if patch.ExpectedVersion != nil {
		filter["version"] = *patch.ExpectedVersion
	}

	set := bson.M{
		"title":        patch.Title,
		"content":      patch.Content,
		"is_encrypted": patch.IsEncrypted,
		"updated_at":   time.Now().UTC(),
	}
	if patch.IsPublic != nil {
		set["is_public"] = *patch.IsPublic
	}
	if patch.Label != nil {
		set["label"] = *patch.Label
	}

	update := bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated notes.Note
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// No match: either the note is gone or the version guard lost the race.
	if patch.ExpectedVersion != nil {
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": noteID, "user_id": userID})
		if countErr == nil && count > 0 {
			return nil, notes.ErrVersionConflict
		}
	}
	return nil, notes.ErrNoteNotFound
}

// Delete removes a note belonging to the user
func (r *NotesRepo) Delete(ctx context.Context, userID, noteID bson.ObjectID) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{"_id": noteID, "user_id": userID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return notes.ErrNoteNotFound
	}

	return nil
}

// FindPublic looks up a note by public identifier. The filter requires
// is_public so a note toggled private again is unreachable through its old
// public id. Returns (nil, nil) when nothing matches.
func (r *NotesRepo) FindPublic(ctx context.Context, publicID string) (*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{"public_id": publicID, "is_public": true}

	var note notes.Note
	if err := r.collection.FindOne(ctx, filter).Decode(&note); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &note, nil
}

// SetOrder persists the canonical manual order as one bulk write.
// The owner filter on every model keeps foreign ids from being ranked.
func (r *NotesRepo) SetOrder(ctx context.Context, userID bson.ObjectID, orderedIDs []bson.ObjectID) error {
	if len(orderedIDs) == 0 {
		return nil
	}

	ctx, cancel := repoCtx(ctx)
	defer cancel()

	models := make([]mongo.WriteModel, 0, len(orderedIDs))
	for i, id := range orderedIDs {
		// Ranking is a view concern: it neither bumps the version counter
		// nor touches updated_at, so concurrent content edits stay valid.
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id, "user_id": userID}).
			SetUpdate(bson.M{"$set": bson.M{"order_index": i + 1}}))
	}

	_, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}
