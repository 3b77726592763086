// Package quiz implements single-user quiz attempts and their grading.
package quiz

import (
	"time"

	"learning-progress-service/internal/domain"
)

// XPPerCorrectAnswer is the reward for each correctly answered question.
const XPPerCorrectAnswer = 10

// Grade scores answers (question index -> option index) against def.
// Missing answers, and keys that do not address a question, count as incorrect.
func Grade(def domain.QuizDefinition, answers map[int]int) (domain.QuizResult, error) {
	return gradeAt(def, answers, time.Time{})
}

func gradeAt(def domain.QuizDefinition, answers map[int]int, completedAt time.Time) (domain.QuizResult, error) {
	if len(def.Questions) == 0 {
		return domain.QuizResult{}, domain.ErrEmptyQuiz
	}

	result := domain.QuizResult{
		QuizID:         def.ID,
		TotalQuestions: len(def.Questions),
		PerQuestion:    make([]domain.QuestionResult, 0, len(def.Questions)),
		CompletedAt:    completedAt,
	}
	for i, q := range def.Questions {
		qr := domain.QuestionResult{
			QuestionID:    q.ID,
			CorrectAnswer: q.CorrectAnswerIndex,
		}
		if answer, ok := answers[i]; ok {
			selected := answer
			qr.UserAnswer = &selected
			qr.IsCorrect = answer == q.CorrectAnswerIndex
		}
		if qr.IsCorrect {
			result.Score++
		}
		result.PerQuestion = append(result.PerQuestion, qr)
	}
	result.XPAwarded = result.Score * XPPerCorrectAnswer
	return result, nil
}
