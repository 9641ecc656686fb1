package domain

import "errors"

var (
	// ErrStorageWrite marks a failed write transaction (disk full, constraint violation, ...).
	ErrStorageWrite = errors.New("storage write failed")
	// ErrStorageRead marks a failed query.
	ErrStorageRead = errors.New("storage read failed")

	// ErrNoReferenceData is returned when a quiz cannot be built because nothing was imported.
	ErrNoReferenceData = errors.New("no reference data imported")
	// ErrInvalidScore is returned when a score falls outside [0, total].
	ErrInvalidScore = errors.New("score out of range")
	// ErrNotEnoughGroups means the group enumeration cannot supply two distinct distractors.
	ErrNotEnoughGroups = errors.New("not enough distinct groups for distractors")
	// ErrRunIncomplete is returned when finishing a run that still has unanswered questions.
	ErrRunIncomplete = errors.New("quiz run not complete")
	// ErrRunComplete is returned when answering past the last question.
	ErrRunComplete = errors.New("quiz run already complete")
	// ErrOptionOutOfRange indicates a selected option index is invalid.
	ErrOptionOutOfRange = errors.New("option out of range")
)

// StorageError carries the failed operation, its kind (ErrStorageWrite or
// ErrStorageRead) and the underlying driver error.
type StorageError struct {
	Op   string
	Kind error
	Err  error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// WriteError wraps err as an ErrStorageWrite for op.
func WriteError(op string, err error) error {
	return &StorageError{Op: op, Kind: ErrStorageWrite, Err: err}
}

// ReadError wraps err as an ErrStorageRead for op.
func ReadError(op string, err error) error {
	return &StorageError{Op: op, Kind: ErrStorageRead, Err: err}
}
