package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learning-progress-service/internal/domain"
)

func pythonQuiz() domain.QuizDefinition {
	return domain.QuizDefinition{
		ID:    "python-fundamentals-syntax-and-variables",
		Title: "Python Fundamentals: Syntax and Variables",
		Questions: []domain.Question{
			{ID: "1", Prompt: "What symbol is used for comments in Python?", Options: []string{"/", "//", "#", "/* */"}, CorrectAnswerIndex: 2},
			{ID: "2", Prompt: "Which of the following is a valid variable name in Python?", Options: []string{"2myVar", "my-var", "my_var", "my var"}, CorrectAnswerIndex: 2},
			{ID: "3", Prompt: "What is the output of print(type(42))?", Options: []string{"<class 'int'>", "<class 'float'>", "<class 'str'>", "<class 'number'>"}, CorrectAnswerIndex: 0},
		},
	}
}

func TestGradeScenario(t *testing.T) {
	result, err := Grade(pythonQuiz(), map[int]int{0: 2, 1: 1, 2: 0})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Score)
	assert.Equal(t, 3, result.TotalQuestions)
	assert.Equal(t, 20, result.XPAwarded)
	require.Len(t, result.PerQuestion, 3)
	assert.False(t, result.PerQuestion[1].IsCorrect)
	assert.Equal(t, "2", result.PerQuestion[1].QuestionID)
	assert.Equal(t, 1, *result.PerQuestion[1].UserAnswer)
	assert.Equal(t, 2, result.PerQuestion[1].CorrectAnswer)
	assert.True(t, result.PerQuestion[0].IsCorrect)
	assert.True(t, result.PerQuestion[2].IsCorrect)
}

func TestGradeDeterministic(t *testing.T) {
	answers := map[int]int{0: 2, 2: 3}
	first, err := Grade(pythonQuiz(), answers)
	require.NoError(t, err)
	second, err := Grade(pythonQuiz(), answers)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGradeUnansweredIsIncorrect(t *testing.T) {
	result, err := Grade(pythonQuiz(), map[int]int{0: 2, 1: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Score)
	last := result.PerQuestion[2]
	assert.Nil(t, last.UserAnswer)
	assert.False(t, last.IsCorrect)
}

func TestGradeIgnoresUnknownKeys(t *testing.T) {
	result, err := Grade(pythonQuiz(), map[int]int{-1: 2, 7: 0})
	require.NoError(t, err)
	assert.Zero(t, result.Score)
	assert.Zero(t, result.XPAwarded)
}

func TestGradeNilAnswers(t *testing.T) {
	result, err := Grade(pythonQuiz(), nil)
	require.NoError(t, err)
	assert.Zero(t, result.Score)
	assert.Len(t, result.PerQuestion, 3)
}

func TestGradeEmptyQuiz(t *testing.T) {
	_, err := Grade(domain.QuizDefinition{ID: "empty"}, map[int]int{})
	assert.ErrorIs(t, err, domain.ErrEmptyQuiz)
}
