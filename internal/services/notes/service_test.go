package notes

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"inkwell/internal/utils/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var (
	errDB       = errors.New("db error")
	mockNoteArg = mock.AnythingOfType("*notes.Note")
)

// MockNotesRepo is a mock implementation of Repository
type MockNotesRepo struct {
	mock.Mock
}

func (m *MockNotesRepo) Create(ctx context.Context, n *Note) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotesRepo) List(ctx context.Context, userID bson.ObjectID, req ListNotesRequest) ([]*Note, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Note), args.Error(1)
}

func (m *MockNotesRepo) Get(ctx context.Context, userID, noteID bson.ObjectID) (*Note, error) {
	args := m.Called(ctx, userID, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Note), args.Error(1)
}

func (m *MockNotesRepo) Update(ctx context.Context, userID, noteID bson.ObjectID, patch UpdateNote) (*Note, error) {
	args := m.Called(ctx, userID, noteID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Note), args.Error(1)
}

func (m *MockNotesRepo) Delete(ctx context.Context, userID, noteID bson.ObjectID) error {
	args := m.Called(ctx, userID, noteID)
	return args.Error(0)
}

func (m *MockNotesRepo) FindPublic(ctx context.Context, publicID string) (*Note, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Note), args.Error(1)
}

func (m *MockNotesRepo) SetOrder(ctx context.Context, userID bson.ObjectID, orderedIDs []bson.ObjectID) error {
	args := m.Called(ctx, userID, orderedIDs)
	return args.Error(0)
}

// MockBus is a mock implementation of Bus
type MockBus struct {
	mock.Mock
}

func (m *MockBus) Broadcast(ctx context.Context, ev NoteEvent) {
	m.Called(ctx, ev)
}

func newTestService(repo *MockNotesRepo, bus *MockBus) *Service {
	box := crypto.NewBox(crypto.NewStaticKeyProvider("service-test-secret"))
	return NewService(repo, bus, box, silentLogger)
}

func TestServiceCreatePlaintext(t *testing.T) {
	userID := bson.NewObjectID()
	repo := new(MockNotesRepo)
	bus := new(MockBus)

	var stored Note
	repo.On("Create", mock.Anything, mockNoteArg).Run(func(args mock.Arguments) {
		stored = *args.Get(1).(*Note)
	}).Return(nil)
	bus.On("Broadcast", mock.Anything, mock.MatchedBy(func(ev NoteEvent) bool {
		return ev.Type == "created"
	})).Return()

	svc := newTestService(repo, bus)
	resp, err := svc.Create(context.Background(), userID, CreateNoteRequest{
		Title:   "Groceries",
		Content: "milk and eggs",
		Label:   "home",
	})

	require.NoError(t, err)
	assert.Equal(t, "milk and eggs", resp.Note.Content)
	assert.Equal(t, "milk and eggs", stored.Content)
	assert.False(t, stored.IsEncrypted)
	assert.Equal(t, "home", stored.Label)
	assert.NotEmpty(t, stored.PublicID)
	assert.Equal(t, int64(1), stored.Version)
	repo.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestServiceCreateEncrypted(t *testing.T) {
	userID := bson.NewObjectID()
	repo := new(MockNotesRepo)
	bus := new(MockBus)

	var stored Note
	repo.On("Create", mock.Anything, mockNoteArg).Run(func(args mock.Arguments) {
		stored = *args.Get(1).(*Note)
	}).Return(nil)
	bus.On("Broadcast", mock.Anything, mock.Anything).Return()

	svc := newTestService(repo, bus)
	resp, err := svc.Create(context.Background(), userID, CreateNoteRequest{
		Title:   "T",
		Content: "secret",
		Encrypt: true,
	})

	require.NoError(t, err)
	// Stored form is ciphertext, returned form is the original plaintext
	assert.NotEqual(t, "secret", stored.Content)
	assert.True(t, stored.IsEncrypted)
	assert.Equal(t, "secret", resp.Note.Content)
}

func TestServiceCreateRepoError(t *testing.T) {
	repo := new(MockNotesRepo)
	bus := new(MockBus)
	repo.On("Create", mock.Anything, mockNoteArg).Return(errDB)

	svc := newTestService(repo, bus)
	resp, err := svc.Create(context.Background(), bson.NewObjectID(), CreateNoteRequest{Title: "T"})

	assert.ErrorIs(t, err, ErrCreateNote)
	assert.Nil(t, resp)
	bus.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
}

func TestServiceCreateThenListReturnsPlaintext(t *testing.T) {
	userID := bson.NewObjectID()
	repo := new(MockNotesRepo)
	bus := new(MockBus)
	svc := newTestService(repo, bus)

	var stored Note
	repo.On("Create", mock.Anything, mockNoteArg).Run(func(args mock.Arguments) {
		stored = *args.Get(1).(*Note)
	}).Return(nil)
	bus.On("Broadcast", mock.Anything, mock.Anything).Return()

	_, err := svc.Create(context.Background(), userID, CreateNoteRequest{
		Title:   "T",
		Content: "secret",
		Encrypt: true,
	})
	require.NoError(t, err)

	fromStore := stored
	repo.On("List", mock.Anything, userID, mock.AnythingOfType("notes.ListNotesRequest")).
		Return([]*Note{&fromStore}, nil)

	resp, err := svc.List(context.Background(), userID, ListNotesRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Notes, 1)
	assert.Equal(t, "secret", resp.Notes[0].Content)
}

func TestServiceListDecryptFailOpen(t *testing.T) {
	userID := bson.NewObjectID()
	repo := new(MockNotesRepo)
	bus := new(MockBus)

	garbled := &Note{
		ID:          bson.NewObjectID(),
		UserID:      userID,
		Title:       "broken",
		Content:     "not-a-valid-blob",
		IsEncrypted: true,
	}
	repo.On("List", mock.Anything, userID, mock.AnythingOfType("notes.ListNotesRequest")).
		Return([]*Note{garbled}, nil)

	svc := newTestService(repo, bus)
	resp, err := svc.List(context.Background(), userID, ListNotesRequest{})

	// The stored blob comes back unchanged instead of failing the listing
	require.NoError(t, err)
	require.Len(t, resp.Notes, 1)
	assert.Equal(t, "not-a-valid-blob", resp.Notes[0].Content)
}

func TestServiceListKeepsLocalOrderUntilFresh(t *testing.T) {
	userID := bson.NewObjectID()
	repo := new(MockNotesRepo)
	bus := new(MockBus)
	svc := newTestService(repo, bus)

	a := &Note{ID: bson.NewObjectID(), UserID: userID, Title: "a"}
	b := &Note{ID: bson.NewObjectID(), UserID: userID, Title: "b"}
	c := &Note{ID: bson.NewObjectID(), UserID: userID, Title: "c"}

	repo.On("List", mock.Anything, userID, mock.AnythingOfType("notes.ListNotesRequest")).
		Return([]*Note{a, b, c}, nil)
	repo.On("SetOrder", mock.Anything, userID, mock.Anything).Return(nil)

	_, err := svc.List(context.Background(), userID, ListNotesRequest{})
	require.NoError(t, err)

	from, to := 0, 2
	require.NoError(t, svc.Reorder(context.Background(), userID, ReorderRequest{From: &from, To: &to}))

	// A background refresh must not snap the list back to server order
	resp, err := svc.List(context.Background(), userID, ListNotesRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, titles(resp.Notes))

	// An explicit fresh load adopts server order again
	resp, err = svc.List(context.Background(), userID, ListNotesRequest{Fresh: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, titles(resp.Notes))
}

func titles(ns []*Note) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.Title
	}
	return out
}

func TestServiceUpdateInheritsEncryption(t *testing.T) {
	userID := bson.NewObjectID()
	noteID := bson.NewObjectID()
	repo := new(MockNotesRepo)
	bus := new(MockBus)
	svc := newTestService(repo, bus)

	existing := &Note{ID: noteID, UserID: userID, IsEncrypted: true}
	repo.On("Get", mock.Anything, userID, noteID).Return(existing, nil)

	var gotPatch UpdateNote
	updated := &Note{ID: noteID, UserID: userID, Title: "T", IsEncrypted: true, Version: 2, UpdatedAt: time.Now()}
	repo.On("Update", mock.Anything, userID, noteID, mock.AnythingOfType("notes.UpdateNote")).
		Run(func(args mock.Arguments) {
			gotPatch = args.Get(3).(UpdateNote)
		}).Return(updated, nil)
	bus.On("Broadcast", mock.Anything, mock.Anything).Return()

	resp, err := svc.Update(context.Background(), userID, noteID, UpdateNoteRequest{
		Title:   "T",
		Content: "still secret",
		// Encrypt omitted: inherit is_encrypted=true
	})

	require.NoError(t, err)
	assert.True(t, gotPatch.IsEncrypted)
	assert.NotEqual(t, "still secret", gotPatch.Content)
	assert.Nil(t, gotPatch.IsPublic, "is_public omitted must stay unchanged")
	assert.Equal(t, "still secret", resp.Note.Content)
}

func TestServiceUpdateEncryptExplicit(t *testing.T) {
	userID := bson.NewObjectID()
	noteID := bson.NewObjectID()
	repo := new(MockNotesRepo)
	bus := new(MockBus)
	svc := newTestService(repo, bus)

	encrypt := true
	var gotPatch UpdateNote
	repo.On("Update", mock.Anything, userID, noteID, mock.AnythingOfType("notes.UpdateNote")).
		Run(func(args mock.Arguments) {
			gotPatch = args.Get(3).(UpdateNote)
		}).Return(&Note{ID: noteID, UserID: userID, IsEncrypted: true}, nil)
	bus.On("Broadcast", mock.Anything, mock.Anything).Return()

	_, err := svc.Update(context.Background(), userID, noteID, UpdateNoteRequest{
		Title:   "T",
		Content: "now secret",
		Encrypt: &encrypt,
	})

	require.NoError(t, err)
	// Explicit flag means no Get roundtrip and ciphertext in the patch
	repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	assert.True(t, gotPatch.IsEncrypted)
	assert.NotEqual(t, "now secret", gotPatch.Content)
}

func TestServiceUpdateNotFound(t *testing.T) {
	userID := bson.NewObjectID()
	noteID := bson.NewObjectID()
	repo := new(MockNotesRepo)
	bus := new(MockBus)
	svc := newTestService(repo, bus)

	encrypt := false
	repo.On("Update", mock.Anything, userID, noteID, mock.AnythingOfType("notes.UpdateNote")).
		Return(nil, ErrNoteNotFound)

	_, err := svc.Update(context.Background(), userID, noteID, UpdateNoteRequest{
		Title: "T", Encrypt: &encrypt,
	})
	assert.ErrorIs(t, err, ErrNoteNotFound)
	bus.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
}

func TestServiceUpdateVersionConflict(t *testing.T) {
	userID := bson.NewObjectID()
	noteID := bson.NewObjectID()
	repo := new(MockNotesRepo)
	bus := new(MockBus)
	svc := newTestService(repo, bus)

	encrypt := false
	version := int64(3)
	repo.On("Update", mock.Anything, userID, noteID, mock.AnythingOfType("notes.UpdateNote")).
		Return(nil, ErrVersionConflict)

	_, err := svc.Update(context.Background(), userID, noteID, UpdateNoteRequest{
		Title: "T", Encrypt: &encrypt, Version: &version,
	})
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestServiceDelete(t *testing.T) {
	userID := bson.NewObjectID()
	noteID := bson.NewObjectID()

	tests := []struct {
		name    string
		repoErr error
		wantErr error
	}{
		{"success", nil, nil},
		{"not found", ErrNoteNotFound, ErrNoteNotFound},
		{"storage failure", errDB, ErrDeleteNote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockNotesRepo)
			bus := new(MockBus)
			repo.On("Delete", mock.Anything, userID, noteID).Return(tt.repoErr)
			if tt.wantErr == nil {
				bus.On("Broadcast", mock.Anything, mock.MatchedBy(func(ev NoteEvent) bool {
					return ev.Type == "deleted" && ev.Note.ID == noteID
				})).Return()
			}

			svc := newTestService(repo, bus)
			err := svc.Delete(context.Background(), userID, noteID)

			if tt.wantErr == nil {
				assert.NoError(t, err)
				bus.AssertExpectations(t)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestServiceGetPublic(t *testing.T) {
	repo := new(MockNotesRepo)
	bus := new(MockBus)
	svc := newTestService(repo, bus)

	box := crypto.NewBox(crypto.NewStaticKeyProvider("service-test-secret"))
	blob, err := box.Encrypt("shared secret")
	require.NoError(t, err)

	public := &Note{
		ID:          bson.NewObjectID(),
		PublicID:    "01J0AQ5TZZY3V1KQJ8RZ1Q2W3E",
		IsPublic:    true,
		IsEncrypted: true,
		Content:     blob,
	}
	repo.On("FindPublic", mock.Anything, public.PublicID).Return(public, nil)
	repo.On("FindPublic", mock.Anything, "missing").Return(nil, nil)

	note, err := svc.GetPublic(context.Background(), public.PublicID)
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, "shared secret", note.Content)

	// Absent or private both come back as nil, nil — not an error
	note, err = svc.GetPublic(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, note)
}

func TestServiceReorderPersistsCanonicalOrder(t *testing.T) {
	userID := bson.NewObjectID()
	repo := new(MockNotesRepo)
	bus := new(MockBus)
	svc := newTestService(repo, bus)

	a := &Note{ID: bson.NewObjectID(), UserID: userID, Title: "a"}
	b := &Note{ID: bson.NewObjectID(), UserID: userID, Title: "b"}
	repo.On("List", mock.Anything, userID, mock.AnythingOfType("notes.ListNotesRequest")).
		Return([]*Note{a, b}, nil)

	var persisted []bson.ObjectID
	repo.On("SetOrder", mock.Anything, userID, mock.Anything).
		Run(func(args mock.Arguments) {
			persisted = args.Get(2).([]bson.ObjectID)
		}).Return(nil)

	_, err := svc.List(context.Background(), userID, ListNotesRequest{})
	require.NoError(t, err)

	err = svc.Reorder(context.Background(), userID, ReorderRequest{
		OrderedIDs: []string{b.ID.Hex(), a.ID.Hex()},
	})
	require.NoError(t, err)
	assert.Equal(t, []bson.ObjectID{b.ID, a.ID}, persisted)
}

func TestServiceReorderBadRequest(t *testing.T) {
	svc := newTestService(new(MockNotesRepo), new(MockBus))

	err := svc.Reorder(context.Background(), bson.NewObjectID(), ReorderRequest{})
	assert.ErrorIs(t, err, ErrBadReorder)

	err = svc.Reorder(context.Background(), bson.NewObjectID(), ReorderRequest{
		OrderedIDs: []string{"not-an-object-id"},
	})
	assert.ErrorIs(t, err, ErrBadReorder)
}
