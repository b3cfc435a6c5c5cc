package notes

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"inkwell/internal/utils/sanitize"

	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service handles notes business logic. It is the only place where encrypted
// content exists outside the store: everything it returns is plaintext, and
// everything it hands the repository is already in its at-rest form.
type Service struct {
	repo   Repository
	bus    Bus
	cipher ContentCipher
	log    *slog.Logger

	ordersMu sync.Mutex
	orders   map[bson.ObjectID]*ViewOrder
}

// NewService creates a new notes service
func NewService(repo Repository, bus Bus, cipher ContentCipher, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		cipher: cipher,
		log:    log,
		orders: make(map[bson.ObjectID]*ViewOrder),
	}
}

// CreateNoteRequest represents a note creation request
type CreateNoteRequest struct {
	Title    string `json:"title" validate:"required" example:"Meeting Notes"`
	Content  string `json:"content" example:"Remember to discuss the quarterly targets"`
	IsPublic bool   `json:"is_public" example:"false"`
	Encrypt  bool   `json:"encrypt" example:"false"`
	Label    string `json:"label" validate:"omitempty,max=64" example:"work"`
}

// UpdateNoteRequest represents a note update request. Encrypt left nil
// inherits the note's current encryption flag; IsPublic and Label left nil
// stay unchanged. Version, when set, is a stale-write guard: the update is
// rejected with a conflict if the note has been mutated since.
type UpdateNoteRequest struct {
	Title    string  `json:"title" validate:"required" example:"Updated Meeting Notes"`
	Content  string  `json:"content" example:"Updated content for the meeting"`
	IsPublic *bool   `json:"is_public,omitempty" example:"true"`
	Encrypt  *bool   `json:"encrypt,omitempty" example:"true"`
	Label    *string `json:"label,omitempty" validate:"omitempty,max=64" example:"personal"`
	Version  *int64  `json:"version,omitempty" example:"7"`
}

// ListNotesRequest represents a list notes request
type ListNotesRequest struct {
	Sort  string `query:"sort" validate:"omitempty,oneof=updated_at manual" example:"updated_at"`
	Fresh bool   `query:"fresh" example:"false"`
}

// ReorderRequest carries either a full ordered id list or a single move.
type ReorderRequest struct {
	OrderedIDs []string `json:"ordered_ids,omitempty" validate:"omitempty,min=1,dive,len=24"`
	From       *int     `json:"from,omitempty" validate:"omitempty,min=0"`
	To         *int     `json:"to,omitempty" validate:"omitempty,min=0"`
}

// NoteResponse represents a single note response
type NoteResponse struct {
	Note *Note `json:"note"`
}

// ListNotesResponse represents a list of notes response
type ListNotesResponse struct {
	Notes []*Note `json:"notes"`
}

// viewOrder returns the per-user session working set, creating it on demand.
func (s *Service) viewOrder(userID bson.ObjectID) *ViewOrder {
	s.ordersMu.Lock()
	defer s.ordersMu.Unlock()
	vo, ok := s.orders[userID]
	if !ok {
		vo = NewViewOrder()
		s.orders[userID] = vo
	}
	return vo
}

// seal returns the at-rest form of content for the requested encryption flag.
func (s *Service) seal(content string, encrypt bool) (string, error) {
	if !encrypt {
		return content, nil
	}
	return s.cipher.Encrypt(content)
}

// open decrypts an encrypted note in place. On failure the stored blob is
// kept as-is and the failure is only observable via the log: a single
// undecryptable note must not fail a whole listing.
func (s *Service) open(n *Note) {
	if !n.IsEncrypted {
		return
	}
	plaintext, err := s.cipher.Decrypt(n.Content)
	if err != nil {
		s.log.Warn("note content decrypt failed, returning stored form",
			"note_id", n.ID.Hex(), "error", err)
		return
	}
	n.Content = plaintext
}

// Create creates a new note. The returned note's Content is the original
// plaintext regardless of the encrypt flag.
func (s *Service) Create(ctx context.Context, userID bson.ObjectID, req CreateNoteRequest) (*NoteResponse, error) {
	title := sanitize.Clean(req.Title)
	content := sanitize.Clean(req.Content)

	stored, err := s.seal(content, req.Encrypt)
	if err != nil {
		s.log.Error(ErrEncryptContent.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrEncryptContent
	}

	now := time.Now().UTC()
	note := &Note{
		ID:          bson.NewObjectID(),
		UserID:      userID,
		Title:       title,
		Content:     stored,
		IsPublic:    req.IsPublic,
		PublicID:    ulid.Make().String(),
		IsEncrypted: req.Encrypt,
		Label:       sanitize.Clean(req.Label),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, note); err != nil {
		s.log.Error(ErrCreateNote.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrCreateNote
	}

	// Hand plaintext back; ciphertext lives only in the store.
	note.Content = content

	s.bus.Broadcast(ctx, NoteEvent{Type: "created", Note: note})

	return &NoteResponse{Note: note}, nil
}

// List retrieves the caller's notes, newest-updated first by default or in
// canonical manual order with sort=manual. A locally reordered session keeps
// its own arrangement until the caller asks for a fresh load.
func (s *Service) List(ctx context.Context, userID bson.ObjectID, req ListNotesRequest) (*ListNotesResponse, error) {
	fetched, err := s.repo.List(ctx, userID, req)
	if err != nil {
		s.log.Error(ErrListNotes.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrListNotes
	}

	for _, n := range fetched {
		s.open(n)
	}

	vo := s.viewOrder(userID)
	if req.Fresh {
		vo.Reset()
	}
	vo.MergeFetch(fetched)

	return &ListNotesResponse{Notes: vo.Notes()}, nil
}

// Update updates a note belonging to the user.
func (s *Service) Update(ctx context.Context, userID, noteID bson.ObjectID, req UpdateNoteRequest) (*NoteResponse, error) {
	title := sanitize.Clean(req.Title)
	content := sanitize.Clean(req.Content)

	encrypt, err := s.resolveEncrypt(ctx, userID, noteID, req.Encrypt)
	if err != nil {
		return nil, err
	}

	stored, err := s.seal(content, encrypt)
	if err != nil {
		s.log.Error(ErrEncryptContent.Error(), "error", err, "user_id", userID.Hex(), "note_id", noteID.Hex())
		return nil, ErrEncryptContent
	}

	patch := UpdateNote{
		Title:           title,
		Content:         stored,
		IsEncrypted:     encrypt,
		IsPublic:        req.IsPublic,
		ExpectedVersion: req.Version,
	}
	if req.Label != nil {
		label := sanitize.Clean(*req.Label)
		patch.Label = &label
	}

	updated, err := s.repo.Update(ctx, userID, noteID, patch)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoteNotFound):
			s.log.Info("note not found for update", "user_id", userID.Hex(), "note_id", noteID.Hex())
			return nil, ErrNoteNotFound
		case errors.Is(err, ErrVersionConflict):
			s.log.Info("stale note update rejected", "user_id", userID.Hex(), "note_id", noteID.Hex())
			return nil, ErrVersionConflict
		}
		s.log.Error(ErrUpdateNote.Error(), "error", err, "user_id", userID.Hex(), "note_id", noteID.Hex())
		return nil, ErrUpdateNote
	}

	updated.Content = content

	s.bus.Broadcast(ctx, NoteEvent{Type: "updated", Note: updated})

	return &NoteResponse{Note: updated}, nil
}

// resolveEncrypt returns the encryption flag an update should use: the
// explicit request value, or the note's current flag when unspecified.
func (s *Service) resolveEncrypt(ctx context.Context, userID, noteID bson.ObjectID, requested *bool) (bool, error) {
	if requested != nil {
		return *requested, nil
	}

	existing, err := s.repo.Get(ctx, userID, noteID)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return false, ErrNoteNotFound
		}
		s.log.Error(ErrUpdateNote.Error(), "error", err, "user_id", userID.Hex(), "note_id", noteID.Hex())
		return false, ErrUpdateNote
	}
	return existing.IsEncrypted, nil
}

// Delete deletes a note belonging to the user
func (s *Service) Delete(ctx context.Context, userID, noteID bson.ObjectID) error {
	if err := s.repo.Delete(ctx, userID, noteID); err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			s.log.Info("note not found for delete", "user_id", userID.Hex(), "note_id", noteID.Hex())
			return ErrNoteNotFound
		}
		s.log.Error(ErrDeleteNote.Error(), "error", err, "user_id", userID.Hex(), "note_id", noteID.Hex())
		return ErrDeleteNote
	}

	s.bus.Broadcast(ctx, NoteEvent{
		Type: "deleted",
		Note: &Note{ID: noteID, UserID: userID},
	})

	return nil
}

// GetPublic retrieves a note by its public identifier without
// authentication. It returns (nil, nil) when the note does not exist or is
// not public.
func (s *Service) GetPublic(ctx context.Context, publicID string) (*Note, error) {
	note, err := s.repo.FindPublic(ctx, publicID)
	if err != nil {
		s.log.Error(ErrGetPublicNote.Error(), "error", err, "public_id", publicID)
		return nil, ErrGetPublicNote
	}
	if note == nil {
		return nil, nil
	}

	s.open(note)
	return note, nil
}

// Reorder applies a reorder request to the caller's session view order and
// persists the resulting arrangement as the canonical order. The session
// arrangement is updated even if persistence fails; callers treat the
// canonical write as best-effort.
func (s *Service) Reorder(ctx context.Context, userID bson.ObjectID, req ReorderRequest) error {
	vo := s.viewOrder(userID)

	switch {
	case req.From != nil && req.To != nil:
		if err := vo.Move(*req.From, *req.To); err != nil {
			return ErrBadReorder
		}
	case len(req.OrderedIDs) > 0:
		ids := make([]bson.ObjectID, 0, len(req.OrderedIDs))
		for _, raw := range req.OrderedIDs {
			id, err := bson.ObjectIDFromHex(raw)
			if err != nil {
				return ErrBadReorder
			}
			ids = append(ids, id)
		}
		vo.Apply(ids)
	default:
		return ErrBadReorder
	}

	arranged := vo.Notes()
	orderedIDs := make([]bson.ObjectID, len(arranged))
	for i, n := range arranged {
		orderedIDs[i] = n.ID
	}

	if err := s.repo.SetOrder(ctx, userID, orderedIDs); err != nil {
		s.log.Error(ErrReorderNotes.Error(), "error", err, "user_id", userID.Hex())
		return ErrReorderNotes
	}

	return nil
}
