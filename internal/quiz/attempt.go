package quiz

import (
	"fmt"
	"maps"
	"time"

	"learning-progress-service/internal/domain"
)

// Attempt is one user's run through a quiz. It starts InProgress at question 0 and ends
// Completed with a graded result. Attempts are not safe for concurrent use; a session
// drives one attempt at a time.
type Attempt struct {
	id        string
	userID    string
	quiz      domain.QuizDefinition
	current   int
	answers   map[int]int
	completed bool
	result    *domain.QuizResult
	startedAt time.Time
	now       func() time.Time
}

// NewAttempt starts an attempt at the first question with nothing answered.
func NewAttempt(id, userID string, def domain.QuizDefinition, now func() time.Time) (*Attempt, error) {
	if len(def.Questions) == 0 {
		return nil, domain.ErrEmptyQuiz
	}
	if now == nil {
		now = time.Now
	}
	return &Attempt{
		id:        id,
		userID:    userID,
		quiz:      def,
		answers:   make(map[int]int),
		startedAt: now(),
		now:       now,
	}, nil
}

// RestoreAttempt rebuilds an attempt from a stored snapshot and its quiz.
func RestoreAttempt(state domain.QuizAttemptState, def domain.QuizDefinition, now func() time.Time) (*Attempt, error) {
	if state.QuizID != def.ID {
		return nil, fmt.Errorf("%w: snapshot for quiz %q restored against %q", domain.ErrInvalidQuiz, state.QuizID, def.ID)
	}
	if len(def.Questions) == 0 {
		return nil, domain.ErrEmptyQuiz
	}
	if state.CurrentQuestionIndex < 0 || state.CurrentQuestionIndex >= len(def.Questions) {
		return nil, fmt.Errorf("%w: question index %d", domain.ErrInvalidQuiz, state.CurrentQuestionIndex)
	}
	if now == nil {
		now = time.Now
	}
	for q, choice := range state.Answers {
		if q < 0 || q >= len(def.Questions) {
			return nil, fmt.Errorf("%w: answer for missing question %d", domain.ErrInvalidQuiz, q)
		}
		if choice < 0 || choice >= len(def.Questions[q].Options) {
			return nil, fmt.Errorf("%w: option %d no longer exists for question %d", domain.ErrInvalidQuiz, choice, q)
		}
	}
	answers := make(map[int]int, len(state.Answers))
	maps.Copy(answers, state.Answers)
	return &Attempt{
		id:        state.ID,
		userID:    state.UserID,
		quiz:      def,
		current:   state.CurrentQuestionIndex,
		answers:   answers,
		completed: state.Completed,
		result:    state.Result,
		startedAt: state.StartedAt,
		now:       now,
	}, nil
}

func (a *Attempt) ID() string                  { return a.id }
func (a *Attempt) UserID() string              { return a.userID }
func (a *Attempt) Quiz() domain.QuizDefinition { return a.quiz }
func (a *Attempt) Completed() bool             { return a.completed }

// CurrentQuestion returns the index and content of the question being answered.
func (a *Attempt) CurrentQuestion() (int, domain.Question) {
	return a.current, a.quiz.Questions[a.current]
}

// Result returns the graded result once the attempt is completed.
func (a *Attempt) Result() (domain.QuizResult, bool) {
	if a.result == nil {
		return domain.QuizResult{}, false
	}
	return *a.result, true
}

// SelectAnswer records optionIndex for the current question, replacing any earlier choice.
func (a *Attempt) SelectAnswer(optionIndex int) error {
	if a.completed {
		return domain.ErrAttemptCompleted
	}
	options := a.quiz.Questions[a.current].Options
	if optionIndex < 0 || optionIndex >= len(options) {
		return fmt.Errorf("%w: %d not in [0,%d)", domain.ErrOptionOutOfRange, optionIndex, len(options))
	}
	a.answers[a.current] = optionIndex
	return nil
}

// Advance moves to the next question. On the last question it grades the attempt and
// reports completed=true; that transition happens exactly once.
func (a *Attempt) Advance() (completed bool, err error) {
	if a.completed {
		return false, domain.ErrAttemptCompleted
	}
	if _, ok := a.answers[a.current]; !ok {
		return false, domain.ErrQuestionUnanswered
	}
	if a.current+1 < len(a.quiz.Questions) {
		a.current++
		return false, nil
	}

	result, err := gradeAt(a.quiz, a.answers, a.now())
	if err != nil {
		return false, err
	}
	a.result = &result
	a.completed = true
	return true, nil
}

// State returns a snapshot that shares no memory with the attempt.
func (a *Attempt) State() domain.QuizAttemptState {
	answers := make(map[int]int, len(a.answers))
	maps.Copy(answers, a.answers)
	state := domain.QuizAttemptState{
		ID:                   a.id,
		UserID:               a.userID,
		QuizID:               a.quiz.ID,
		CurrentQuestionIndex: a.current,
		Answers:              answers,
		Completed:            a.completed,
		StartedAt:            a.startedAt,
	}
	if a.result != nil {
		result := *a.result
		state.Result = &result
	}
	return state
}
