package access

import (
	"fmt"
	"math"

	"github.com/pot-code/course-gate/internal/domain"
)

// LessonState lesson as seen by a learner
type LessonState struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Type      domain.LessonType `json:"type"`
	Duration  string            `json:"duration,omitempty"`
	Completed bool              `json:"completed"`
	Locked    bool              `json:"locked"`
	LockedBy  Gate              `json:"lockedBy,omitempty"`
	Score     *int              `json:"score,omitempty"`
}

// ModuleState module as seen by a learner
type ModuleState struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Order     int            `json:"order"`
	Locked    bool           `json:"locked"`
	Progress  int            `json:"progress"`
	Completed int            `json:"completed"`
	Total     int            `json:"total"`
	Lessons   []*LessonState `json:"lessons"`
}

// Outline whole course as seen by a learner
type Outline struct {
	CourseID  string         `json:"courseId"`
	Progress  int            `json:"progress"`
	Completed int            `json:"completed"`
	Total     int            `json:"total"`
	Modules   []*ModuleState `json:"modules"`
}

// ModuleProgress completed share of the module's lessons in [0,100], 0 for an empty module
func ModuleProgress(course *domain.Course, rec *domain.ProgressRecord, moduleID string) (int, error) {
	module := course.FindModule(moduleID)
	if module == nil {
		return 0, fmt.Errorf("module %q: %w", moduleID, domain.ErrNotFound)
	}
	completed := 0
	for _, l := range module.Lessons {
		if rec.HasCompletedLesson(l.ID) {
			completed++
		}
	}
	return percent(completed, len(module.Lessons)), nil
}

// CourseProgress completed share of the course's flat lessons in [0,100].
//
// Completed ids that are not part of the course are ignored and duplicates count once.
func CourseProgress(course *domain.Course, rec *domain.ProgressRecord) int {
	return percent(completedInCourse(course, rec), len(course.Lessons))
}

// BuildOutline evaluate every gate of the course at once
func BuildOutline(course *domain.Course, rec *domain.ProgressRecord) (*Outline, error) {
	outline := &Outline{
		CourseID:  course.ID,
		Progress:  CourseProgress(course, rec),
		Completed: completedInCourse(course, rec),
		Total:     len(course.Lessons),
	}
	for _, m := range SortModules(course.Modules) {
		locked, err := IsModuleLocked(course.Modules, rec, m.ID)
		if err != nil {
			return nil, err
		}
		ms := &ModuleState{
			ID:     m.ID,
			Title:  m.Title,
			Order:  m.Order,
			Locked: locked,
			Total:  len(m.Lessons),
		}
		for _, l := range m.Lessons {
			gate, err := IsBlocked(course.Lessons, rec, l.ID)
			if err != nil {
				return nil, err
			}
			ls := &LessonState{
				ID:        l.ID,
				Title:     l.Title,
				Type:      l.Type,
				Duration:  l.Duration,
				Completed: rec.HasCompletedLesson(l.ID),
				Locked:    gate != GateNone,
				LockedBy:  gate,
			}
			if score, ok := rec.QuizScore(l.ID); ok {
				ls.Score = &score
			}
			if ls.Completed {
				ms.Completed++
			}
			ms.Lessons = append(ms.Lessons, ls)
		}
		ms.Progress = percent(ms.Completed, ms.Total)
		outline.Modules = append(outline.Modules, ms)
	}
	return outline, nil
}

// CompletedModules ids of modules whose lessons are all completed, empty modules excluded
func CompletedModules(course *domain.Course, rec *domain.ProgressRecord) []string {
	var result []string
	for _, m := range course.Modules {
		if len(m.Lessons) == 0 {
			continue
		}
		done := true
		for _, l := range m.Lessons {
			if !rec.HasCompletedLesson(l.ID) {
				done = false
				break
			}
		}
		if done {
			result = append(result, m.ID)
		}
	}
	return result
}

func completedInCourse(course *domain.Course, rec *domain.ProgressRecord) int {
	completed := 0
	for _, l := range course.Lessons {
		if rec.HasCompletedLesson(l.ID) {
			completed++
		}
	}
	return completed
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	p := int(math.Round(float64(part) / float64(total) * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
