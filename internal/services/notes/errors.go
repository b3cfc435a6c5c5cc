package notes

import "errors"

// ErrNoteNotFound - note absent or not owned by the caller.
var ErrNoteNotFound = errors.New("note not found")

// ErrVersionConflict is returned when a conditional update loses to a
// concurrent mutation of the same note.
var ErrVersionConflict = errors.New("note version conflict")

// ErrCreateNote is returned when note creation fails.
var ErrCreateNote = errors.New("failed to create note")

// ErrUpdateNote is returned when note update fails.
var ErrUpdateNote = errors.New("failed to update note")

// ErrDeleteNote is returned when note deletion fails.
var ErrDeleteNote = errors.New("failed to delete note")

// ErrListNotes is returned when notes listing fails.
var ErrListNotes = errors.New("failed to list notes")

// ErrGetPublicNote is returned when the public note lookup fails.
var ErrGetPublicNote = errors.New("failed to fetch public note")

// ErrReorderNotes is returned when persisting the manual order fails.
var ErrReorderNotes = errors.New("failed to reorder notes")

// ErrEncryptContent is returned when sealing note content fails.
var ErrEncryptContent = errors.New("failed to encrypt note content")

// ErrCreateNotesRepo is returned when notes repository creation fails.
var ErrCreateNotesRepo = errors.New("failed to create notes repository")

// ErrBadReorder is returned when a reorder request is malformed.
var ErrBadReorder = errors.New("invalid reorder request")
