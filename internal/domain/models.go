package domain

import "time"

// ProgressRecord is a user's leveling and streak state.
type ProgressRecord struct {
	Level       int       `json:"level"`
	XP          int       `json:"xp"`
	NextLevelXP int       `json:"nextLevelXp"`
	StreakDays  int       `json:"streakDays"`
	LastUpdate  time.Time `json:"lastUpdate"`
}

// Question is a multiple choice question with exactly one correct option.
type Question struct {
	ID                 string   `json:"id" yaml:"id" validate:"required"`
	Prompt             string   `json:"prompt" yaml:"prompt" validate:"required"`
	Options            []string `json:"options" yaml:"options" validate:"min=2,dive,required"`
	CorrectAnswerIndex int      `json:"correctAnswer" yaml:"correctAnswer" validate:"gte=0"`
}

// QuizDefinition is an ordered set of questions. It is immutable once loaded for an attempt.
type QuizDefinition struct {
	ID        string     `json:"id" yaml:"id" validate:"required"`
	Title     string     `json:"title" yaml:"title" validate:"required"`
	Questions []Question `json:"questions" yaml:"questions" validate:"min=1,dive"`
}

// QuestionResult is the graded outcome of a single question.
// UserAnswer is nil when the question was left unanswered.
type QuestionResult struct {
	QuestionID    string `json:"questionId"`
	UserAnswer    *int   `json:"userAnswer"`
	CorrectAnswer int    `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
}

// QuizResult is created once at grading time and never changes afterwards.
type QuizResult struct {
	QuizID         string           `json:"quizId"`
	Score          int              `json:"score"`
	TotalQuestions int              `json:"totalQuestions"`
	PerQuestion    []QuestionResult `json:"perQuestion"`
	XPAwarded      int              `json:"xpAwarded"`
	CompletedAt    time.Time        `json:"completedAt"`
	// AttemptID names the attempt that earned the result. A quiz awards XP for one attempt only.
	AttemptID      string           `json:"attemptId,omitempty"`
}

// QuizAttemptState is the serialisable snapshot of one attempt.
type QuizAttemptState struct {
	ID                   string      `json:"id"`
	UserID               string      `json:"userId"`
	QuizID               string      `json:"quizId"`
	CurrentQuestionIndex int         `json:"currentQuestionIndex"`
	Answers              map[int]int `json:"answers"`
	Completed            bool        `json:"completed"`
	Result               *QuizResult `json:"result,omitempty"`
	StartedAt            time.Time   `json:"startedAt"`
}

// DayMinutes is the number of learning minutes recorded for one weekday.
type DayMinutes struct {
	Day     string `json:"day"`
	Minutes int    `json:"minutes"`
}

// WeeklyStats holds learning minutes for Mon..Sun, in that order.
type WeeklyStats struct {
	Days []DayMinutes `json:"days"`
}

// Roadmap is a named course: ordered modules, each split into subskills with a quiz apiece.
type Roadmap struct {
	Name    string          `json:"name" yaml:"name" validate:"required"`
	Modules []RoadmapModule `json:"modules" yaml:"modules" validate:"dive"`
}

type RoadmapModule struct {
	Name        string     `json:"name" yaml:"name" validate:"required"`
	Description string     `json:"description,omitempty" yaml:"description"`
	Subskills   []Subskill `json:"subskills" yaml:"subskills" validate:"dive"`
}

type Subskill struct {
	Name string `json:"name" yaml:"name" validate:"required"`
}

// RoadmapProgress is a user's completion of a roadmap, derived from stored quiz results.
type RoadmapProgress struct {
	Name      string           `json:"name"`
	Modules   []ModuleProgress `json:"modules"`
	Completed int              `json:"completed"`
	Total     int              `json:"total"`
	Percent   int              `json:"percent"`
}

type ModuleProgress struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Subskills   []SubskillProgress `json:"subskills"`
	Completed   int                `json:"completed"`
	Total       int                `json:"total"`
	Percent     int                `json:"percent"`
}

type SubskillProgress struct {
	Name      string `json:"name"`
	QuizID    string `json:"quizId"`
	Completed bool   `json:"completed"`
}
