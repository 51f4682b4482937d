package housecup

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrInvalidInput    = errors.New("housecup: invalid input")
	ErrInvalidAmount   = errors.New("housecup: invalid point amount")
	ErrUnknownActivity = errors.New("housecup: unknown activity")
	ErrNotStarted      = errors.New("housecup: ledger not started")

	// Store errors
	ErrPersistence     = errors.New("housecup: persistence failed")
	ErrCorruptSnapshot = errors.New("housecup: corrupt snapshot")
	ErrStoreClosed     = errors.New("housecup: store is closed")
	ErrMigrationFailed = errors.New("housecup: migration failed")
)

// PersistenceError is returned when a mutation could not be written to the
// store. The in-memory change has already been undone when it is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("housecup: persist %s: %v", e.Op, e.Err)
}

// Unwrap returns the store error.
func (e *PersistenceError) Unwrap() error { return e.Err }

// Is matches ErrPersistence.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("housecup: validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e ValidationError) Unwrap() error { return ErrInvalidInput }

// IsPersistence returns true if the error is a failed store write.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// IsCorruption returns true if the error reports unreadable persisted data.
func IsCorruption(err error) bool {
	return errors.Is(err, ErrCorruptSnapshot)
}
