package domain

import (
	"errors"
	"fmt"
)

// Error classes. Specific errors below wrap one of these so callers can branch with errors.Is.
var (
	// ErrValidation marks malformed input to a pure function.
	ErrValidation = errors.New("validation error")
	// ErrInvalidStateTransition marks an operation against an incompatible attempt state.
	ErrInvalidStateTransition = errors.New("invalid state transition")
	// ErrNotFound marks an absent record. Callers usually create a default instead.
	ErrNotFound = errors.New("not found")
	// ErrStorage marks a failed read or write in a storage adapter.
	ErrStorage = errors.New("storage error")
)

var (
	ErrNegativeXP         = fmt.Errorf("%w: xp amount must not be negative", ErrValidation)
	ErrNegativeMinutes    = fmt.Errorf("%w: minutes must not be negative", ErrValidation)
	ErrInvalidProgress    = fmt.Errorf("%w: progress record violates invariants", ErrValidation)
	ErrXPOverflow         = fmt.Errorf("%w: xp amount overflows the ledger", ErrValidation)
	ErrOptionOutOfRange   = fmt.Errorf("%w: option index out of range", ErrValidation)
	ErrEmptyQuiz          = fmt.Errorf("%w: quiz has no questions", ErrValidation)
	ErrInvalidQuiz        = fmt.Errorf("%w: invalid quiz definition", ErrValidation)
	ErrInvalidRoadmap     = fmt.Errorf("%w: invalid roadmap", ErrValidation)
	ErrMissingUser        = fmt.Errorf("%w: user id required", ErrValidation)
	ErrAttemptCompleted   = fmt.Errorf("%w: attempt already completed", ErrInvalidStateTransition)
	ErrQuestionUnanswered = fmt.Errorf("%w: current question has no answer", ErrInvalidStateTransition)

	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = fmt.Errorf("quiz %w", ErrNotFound)
	// ErrAttemptNotFound is returned for unknown, expired or foreign attempts.
	ErrAttemptNotFound = fmt.Errorf("attempt %w", ErrNotFound)
	// ErrProgressNotFound is returned by stores when a user has no progress record yet.
	ErrProgressNotFound = fmt.Errorf("progress %w", ErrNotFound)
	// ErrResultNotFound is returned by stores when a user has not completed a quiz.
	ErrResultNotFound = fmt.Errorf("quiz result %w", ErrNotFound)
	// ErrRoadmapNotFound is returned when no roadmap has the requested name.
	ErrRoadmapNotFound = fmt.Errorf("roadmap %w", ErrNotFound)
	// ErrStatsNotFound is returned by stores when a user has no learning stats yet.
	ErrStatsNotFound = fmt.Errorf("learning stats %w", ErrNotFound)
)

// StorageError wraps a failure from a storage adapter.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError wraps err for operation op. A nil err yields nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes every StorageError match ErrStorage.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }
