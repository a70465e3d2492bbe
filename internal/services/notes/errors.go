package notes

import "errors"

// ErrNoteNotFound is returned when a note does not exist in the caller's
// scoped set. A note owned by another user is deliberately indistinguishable
// from a missing one.
var ErrNoteNotFound = errors.New("note not found")

// ErrInvalidCategory is returned when a write references a category that does
// not exist or is not owned by the caller.
var ErrInvalidCategory = errors.New("category does not exist or does not belong to user")

// ErrCreateNote is returned when note creation fails.
var ErrCreateNote = errors.New("failed to create note")

// ErrUpdateNote is returned when note update fails.
var ErrUpdateNote = errors.New("failed to update note")

// ErrDeleteNote is returned when note deletion fails.
var ErrDeleteNote = errors.New("failed to delete note")

// ErrListNotes is returned when notes listing fails.
var ErrListNotes = errors.New("failed to list notes")

// ErrGetNote is returned when note retrieval fails.
var ErrGetNote = errors.New("failed to get note")

// ErrToggleNote is returned when a pin/archive toggle fails.
var ErrToggleNote = errors.New("failed to toggle note")

// ErrStats is returned when stat counting fails.
var ErrStats = errors.New("failed to compute note stats")

// ErrCreateNotesRepo is returned when notes repository creation fails.
var ErrCreateNotesRepo = errors.New("failed to create notes repository")
