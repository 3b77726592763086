// Package course computes roadmap completion from the quizzes a user has finished.
package course

import (
	"strings"

	"learning-progress-service/internal/domain"
)

// QuizID derives the quiz that certifies a subskill: module and subskill names lowercased,
// whitespace runs replaced by hyphens, joined with a hyphen.
func QuizID(module, subskill string) string {
	return slug(module) + "-" + slug(subskill)
}

// QuizIDs lists every subskill quiz of r in roadmap order.
func QuizIDs(r domain.Roadmap) []string {
	var ids []string
	for _, m := range r.Modules {
		for _, s := range m.Subskills {
			ids = append(ids, QuizID(m.Name, s.Name))
		}
	}
	return ids
}

// Percent is completed/total as a whole percentage, halves rounded up. An empty total is 0%.
func Percent(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return (200*completed + total) / (2 * total)
}

// Progress marks each subskill whose quiz is in completed and totals modules and roadmap.
func Progress(r domain.Roadmap, completed map[string]bool) domain.RoadmapProgress {
	out := domain.RoadmapProgress{Name: r.Name, Modules: make([]domain.ModuleProgress, 0, len(r.Modules))}
	for _, m := range r.Modules {
		mp := domain.ModuleProgress{
			Name:        m.Name,
			Description: m.Description,
			Subskills:   make([]domain.SubskillProgress, 0, len(m.Subskills)),
			Total:       len(m.Subskills),
		}
		for _, s := range m.Subskills {
			id := QuizID(m.Name, s.Name)
			done := completed[id]
			if done {
				mp.Completed++
			}
			mp.Subskills = append(mp.Subskills, domain.SubskillProgress{Name: s.Name, QuizID: id, Completed: done})
		}
		mp.Percent = Percent(mp.Completed, mp.Total)
		out.Completed += mp.Completed
		out.Total += mp.Total
		out.Modules = append(out.Modules, mp)
	}
	out.Percent = Percent(out.Completed, out.Total)
	return out
}

func slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
