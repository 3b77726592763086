package memory

import (
	"context"
	"maps"
	"sync"

	"learning-progress-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptRepository.
// Attempts live until completed or abandoned; a restart drops them.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]domain.QuizAttemptState
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		attempts: make(map[string]domain.QuizAttemptState),
	}
}

func (s *AttemptStore) Save(_ context.Context, state domain.QuizAttemptState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[state.ID] = detach(state)
	return nil
}

func (s *AttemptStore) Get(_ context.Context, attemptID string) (domain.QuizAttemptState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.attempts[attemptID]
	if !ok {
		return domain.QuizAttemptState{}, domain.ErrAttemptNotFound
	}
	return detach(state), nil
}

func (s *AttemptStore) Delete(_ context.Context, attemptID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, attemptID)
	return nil
}

// Len reports how many attempts are in flight.
func (s *AttemptStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.attempts)
}

// detach copies the answers map so callers cannot mutate stored state.
func detach(state domain.QuizAttemptState) domain.QuizAttemptState {
	answers := make(map[int]int, len(state.Answers))
	maps.Copy(answers, state.Answers)
	state.Answers = answers
	return state
}
