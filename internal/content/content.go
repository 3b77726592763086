// Package content loads and validates quiz definitions authored as YAML or JSON files.
package content

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"learning-progress-service/internal/course"
	"learning-progress-service/internal/domain"
)

var validate = validator.New()

// File is the on-disk layout: quizzes plus the roadmaps that group them into courses.
type File struct {
	Quizzes  []domain.QuizDefinition `yaml:"quizzes"`
	Roadmaps []domain.Roadmap        `yaml:"roadmaps"`
}

// LoadFile reads and validates every quiz in path, keyed by quiz ID.
// JSON input is accepted since JSON is valid YAML.
func LoadFile(path string) (map[string]domain.QuizDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes raw file contents.
func Parse(data []byte) (map[string]domain.QuizDefinition, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode quizzes: %w", err)
	}
	out := make(map[string]domain.QuizDefinition, len(f.Quizzes))
	for _, def := range f.Quizzes {
		if err := Validate(def); err != nil {
			return nil, err
		}
		if _, dup := out[def.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate quiz id %q", domain.ErrInvalidQuiz, def.ID)
		}
		out[def.ID] = def
	}
	return out, nil
}

// Validate checks structural rules and that every answer key points at an existing option.
func Validate(def domain.QuizDefinition) error {
	if err := validate.Struct(def); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: quiz %q: %s failed %q", domain.ErrInvalidQuiz, def.ID, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: quiz %q: %v", domain.ErrInvalidQuiz, def.ID, err)
	}
	for i, q := range def.Questions {
		if q.CorrectAnswerIndex >= len(q.Options) {
			return fmt.Errorf("%w: quiz %q question %d: correct answer %d out of range", domain.ErrInvalidQuiz, def.ID, i, q.CorrectAnswerIndex)
		}
	}
	return nil
}

// LoadRoadmapsFile reads and validates the roadmaps section of path, keyed by name.
func LoadRoadmapsFile(path string) (map[string]domain.Roadmap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRoadmaps(data)
}

// ParseRoadmaps decodes the roadmaps section of raw file contents.
func ParseRoadmaps(data []byte) (map[string]domain.Roadmap, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode roadmaps: %w", err)
	}
	out := make(map[string]domain.Roadmap, len(f.Roadmaps))
	for _, r := range f.Roadmaps {
		if err := ValidateRoadmap(r); err != nil {
			return nil, err
		}
		if _, dup := out[r.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate roadmap %q", domain.ErrInvalidRoadmap, r.Name)
		}
		out[r.Name] = r
	}
	return out, nil
}

// ValidateRoadmap checks required names and that no two subskills map to the same quiz.
func ValidateRoadmap(r domain.Roadmap) error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: roadmap %q: %s failed %q", domain.ErrInvalidRoadmap, r.Name, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: roadmap %q: %v", domain.ErrInvalidRoadmap, r.Name, err)
	}
	seen := make(map[string]bool)
	for _, id := range course.QuizIDs(r) {
		if seen[id] {
			return fmt.Errorf("%w: roadmap %q: subskill quiz %q listed twice", domain.ErrInvalidRoadmap, r.Name, id)
		}
		seen[id] = true
	}
	return nil
}
