package app

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"learning-progress-service/internal/domain"
	"learning-progress-service/internal/quiz"
)

// QuizService contains the quiz attempt use cases.
type QuizService struct {
	quizzes  QuizRepository
	attempts AttemptRepository
	progress *ProgressService
	runtime
}

// StartOutcome carries either a fresh attempt or, for a quiz the user already finished,
// the stored result.
type StartOutcome struct {
	Attempt  *quiz.Attempt
	Previous *domain.QuizResult
}

// AdvanceOutcome is the state after an advance. Result, Progress and LevelsGained are set
// only when the attempt completed.
type AdvanceOutcome struct {
	Attempt      *quiz.Attempt
	Completed    bool
	Result       *domain.QuizResult
	Progress     *domain.ProgressRecord
	LevelsGained int
}

func NewQuizService(quizzes QuizRepository, attempts AttemptRepository, progress *ProgressService, opts ...Option) *QuizService {
	return &QuizService{
		quizzes:  quizzes,
		attempts: attempts,
		progress: progress,
		runtime:  newRuntime(opts),
	}
}

// Start opens an attempt, unless the user already completed the quiz.
func (s *QuizService) Start(ctx context.Context, userID, quizID string) (StartOutcome, error) {
	if userID == "" {
		return StartOutcome{}, domain.ErrMissingUser
	}

	var (
		previous *domain.QuizResult
		def      domain.QuizDefinition
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := s.progress.store.LoadQuizResult(gctx, userID, quizID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			s.metrics.StorageFailed("load quiz result")
			return err
		}
		previous = &result
		return nil
	})
	g.Go(func() error {
		var err error
		def, err = s.quizzes.GetQuiz(gctx, quizID)
		return err
	})
	if err := g.Wait(); err != nil {
		return StartOutcome{}, err
	}
	if previous != nil {
		return StartOutcome{Previous: previous}, nil
	}

	attempt, err := quiz.NewAttempt(uuid.NewString(), userID, def, s.now)
	if err != nil {
		return StartOutcome{}, err
	}
	if err := s.attempts.Save(ctx, attempt.State()); err != nil {
		s.metrics.StorageFailed("save attempt")
		return StartOutcome{}, err
	}
	s.log.Debug("attempt started", zap.String("user", userID), zap.String("quiz", quizID), zap.String("attempt", attempt.ID()))
	return StartOutcome{Attempt: attempt}, nil
}

// Attempt returns an in-flight attempt owned by userID.
func (s *QuizService) Attempt(ctx context.Context, userID, attemptID string) (*quiz.Attempt, error) {
	return s.load(ctx, userID, attemptID)
}

// SelectAnswer records a choice for the attempt's current question.
func (s *QuizService) SelectAnswer(ctx context.Context, userID, attemptID string, optionIndex int) (*quiz.Attempt, error) {
	attempt, err := s.load(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	if err := attempt.SelectAnswer(optionIndex); err != nil {
		return attempt, err
	}
	if err := s.attempts.Save(ctx, attempt.State()); err != nil {
		s.metrics.StorageFailed("save attempt")
		return nil, err
	}
	return attempt, nil
}

// Advance moves to the next question or, on the last one, grades the attempt and awards XP.
//
// The result is saved before the progress record and names the attempt that earned it. If the
// progress save fails the attempt is kept, so calling Advance again awards the XP once. A
// second attempt at a quiz that another attempt already completed is refused.
func (s *QuizService) Advance(ctx context.Context, userID, attemptID string) (AdvanceOutcome, error) {
	attempt, err := s.load(ctx, userID, attemptID)
	if err != nil {
		return AdvanceOutcome{}, err
	}
	completed, err := attempt.Advance()
	if err != nil {
		return AdvanceOutcome{Attempt: attempt}, err
	}
	if !completed {
		if err := s.attempts.Save(ctx, attempt.State()); err != nil {
			s.metrics.StorageFailed("save attempt")
			return AdvanceOutcome{}, err
		}
		return AdvanceOutcome{Attempt: attempt}, nil
	}

	result, _ := attempt.Result()
	result.QuizID = attempt.Quiz().ID
	result.AttemptID = attemptID

	stored, err := s.progress.store.LoadQuizResult(ctx, userID, result.QuizID)
	switch {
	case err == nil && stored.AttemptID != attemptID:
		// Another attempt already earned this quiz.
		s.drop(ctx, attemptID)
		return AdvanceOutcome{}, domain.ErrAttemptCompleted
	case err == nil:
		// Retry after a failed progress save; the result is already durable.
		result = stored
	case errors.Is(err, domain.ErrNotFound):
	default:
		s.metrics.StorageFailed("load quiz result")
		return AdvanceOutcome{}, err
	}
	resultStored := err == nil

	rec, _, err := s.progress.loadOrCreate(ctx, userID)
	if err != nil {
		return AdvanceOutcome{}, err
	}
	award, err := s.progress.apply(rec, result.XPAwarded)
	if err != nil {
		return AdvanceOutcome{}, err
	}

	if !resultStored {
		if err := s.progress.store.SaveQuizResult(ctx, userID, result.QuizID, result); err != nil {
			s.metrics.StorageFailed("save quiz result")
			return AdvanceOutcome{}, err
		}
	}
	if err := s.progress.saveProgress(ctx, userID, award.Progress); err != nil {
		return AdvanceOutcome{}, err
	}
	s.finish(ctx, attempt)

	s.metrics.QuizCompleted(result.QuizID, result.XPAwarded, award.LevelsGained)
	s.log.Info("quiz completed",
		zap.String("user", userID),
		zap.String("quiz", result.QuizID),
		zap.Int("score", result.Score),
		zap.Int("total", result.TotalQuestions),
		zap.Int("xp", result.XPAwarded),
		zap.Int("levels_gained", award.LevelsGained),
	)
	return AdvanceOutcome{
		Attempt:      attempt,
		Completed:    true,
		Result:       &result,
		Progress:     &award.Progress,
		LevelsGained: award.LevelsGained,
	}, nil
}

// Result returns the stored result for a quiz the user completed.
func (s *QuizService) Result(ctx context.Context, userID, quizID string) (domain.QuizResult, error) {
	if userID == "" {
		return domain.QuizResult{}, domain.ErrMissingUser
	}
	result, err := s.progress.store.LoadQuizResult(ctx, userID, quizID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.metrics.StorageFailed("load quiz result")
	}
	return result, err
}

// Abandon discards an unfinished attempt. Nothing durable is touched.
func (s *QuizService) Abandon(ctx context.Context, userID, attemptID string) error {
	state, err := s.attempts.Get(ctx, attemptID)
	if err != nil {
		return err
	}
	if state.UserID != userID {
		return domain.ErrAttemptNotFound
	}
	return s.attempts.Delete(ctx, attemptID)
}

// finish removes a completed attempt. If the delete fails, the completed snapshot is saved
// instead so a replayed Advance is refused rather than regraded.
func (s *QuizService) finish(ctx context.Context, attempt *quiz.Attempt) {
	err := s.attempts.Delete(ctx, attempt.ID())
	if err == nil {
		return
	}
	s.log.Warn("drop completed attempt", zap.String("attempt", attempt.ID()), zap.Error(err))
	if err := s.attempts.Save(ctx, attempt.State()); err != nil {
		s.metrics.StorageFailed("save attempt")
		s.log.Error("completed attempt left open", zap.String("attempt", attempt.ID()), zap.Error(err))
	}
}

func (s *QuizService) drop(ctx context.Context, attemptID string) {
	if err := s.attempts.Delete(ctx, attemptID); err != nil {
		s.log.Warn("drop superseded attempt", zap.String("attempt", attemptID), zap.Error(err))
	}
}

func (s *QuizService) load(ctx context.Context, userID, attemptID string) (*quiz.Attempt, error) {
	state, err := s.attempts.Get(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if state.UserID != userID {
		return nil, domain.ErrAttemptNotFound
	}
	def, err := s.quizzes.GetQuiz(ctx, state.QuizID)
	if err != nil {
		return nil, err
	}
	return quiz.RestoreAttempt(state, def, s.now)
}
