// Package access decides what a learner may open right now.
//
// Every function is a pure function of the content tree and a progress
// snapshot. A nil *domain.ProgressRecord means nothing has been completed yet.
// Ids missing from the tree are reported as domain.ErrNotFound and never
// degrade to "unlocked".
package access

import (
	"fmt"
	"sort"

	"github.com/pot-code/course-gate/internal/domain"
)

// Gate which rule blocks a lesson
type Gate string

// gates
const (
	GateNone     Gate = ""
	GateSequence Gate = "sequence" // previous lesson not completed
	GateQuiz     Gate = "quiz"     // first quiz not passed
)

// IsLessonLocked lesson i > 0 of lessons is locked iff lesson i-1 is not completed.
//
// lessons is the course's flat, source-ordered lesson list.
func IsLessonLocked(lessons []*domain.Lesson, rec *domain.ProgressRecord, lessonID string) (bool, error) {
	i := indexOf(lessons, lessonID)
	if i < 0 {
		return true, fmt.Errorf("lesson %q: %w", lessonID, domain.ErrNotFound)
	}
	if i == 0 {
		return false, nil
	}
	return !rec.HasCompletedLesson(lessons[i-1].ID), nil
}

// IsQuizLocked every quiz lesson after the first one is locked until the first quiz is passed.
//
// The first quiz is taken in document order over the flat list, regardless of module.
// It is never locked by this rule, sequential locking is checked separately.
func IsQuizLocked(lessons []*domain.Lesson, rec *domain.ProgressRecord, lessonID string) (bool, error) {
	i := indexOf(lessons, lessonID)
	if i < 0 {
		return true, fmt.Errorf("lesson %q: %w", lessonID, domain.ErrNotFound)
	}
	if !lessons[i].IsQuiz() {
		return true, fmt.Errorf("lesson %q: %w", lessonID, domain.ErrNotQuiz)
	}

	first := firstQuiz(lessons)
	if first.ID == lessonID {
		return false, nil
	}
	return !passed(first, rec), nil
}

// IsBlocked combine both gates, a lesson is blocked if either says locked
func IsBlocked(lessons []*domain.Lesson, rec *domain.ProgressRecord, lessonID string) (Gate, error) {
	locked, err := IsLessonLocked(lessons, rec, lessonID)
	if err != nil {
		return GateSequence, err
	}
	if locked {
		return GateSequence, nil
	}

	lesson := lessons[indexOf(lessons, lessonID)]
	if !lesson.IsQuiz() {
		return GateNone, nil
	}
	locked, err = IsQuizLocked(lessons, rec, lessonID)
	if err != nil {
		return GateQuiz, err
	}
	if locked {
		return GateQuiz, nil
	}
	return GateNone, nil
}

// IsModuleLocked the first module by order is never locked, any later one
// is locked unless every lesson of the preceding module is completed
func IsModuleLocked(modules []*domain.Module, rec *domain.ProgressRecord, moduleID string) (bool, error) {
	ordered := SortModules(modules)
	i := -1
	for k, m := range ordered {
		if m.ID == moduleID {
			i = k
			break
		}
	}
	if i < 0 {
		return true, fmt.Errorf("module %q: %w", moduleID, domain.ErrNotFound)
	}
	if i == 0 {
		return false, nil
	}
	for _, l := range ordered[i-1].Lessons {
		if !rec.HasCompletedLesson(l.ID) {
			return true, nil
		}
	}
	return false, nil
}

// SortModules returns modules ordered by Order ascending, ties keep array position.
// The input slice is left untouched.
func SortModules(modules []*domain.Module) []*domain.Module {
	ordered := make([]*domain.Module, len(modules))
	copy(ordered, modules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})
	return ordered
}

// QuizLessons ordered subsequence of quiz lessons
func QuizLessons(lessons []*domain.Lesson) []*domain.Lesson {
	var result []*domain.Lesson
	for _, l := range lessons {
		if l.IsQuiz() {
			result = append(result, l)
		}
	}
	return result
}

func firstQuiz(lessons []*domain.Lesson) *domain.Lesson {
	for _, l := range lessons {
		if l.IsQuiz() {
			return l
		}
	}
	return nil
}

// passed a quiz lesson without a quiz definition can never be passed
func passed(lesson *domain.Lesson, rec *domain.ProgressRecord) bool {
	score, ok := rec.QuizScore(lesson.ID)
	if !ok || lesson.Quiz == nil {
		return false
	}
	return score >= lesson.Quiz.PassingScore
}

func indexOf(lessons []*domain.Lesson, lessonID string) int {
	for i, l := range lessons {
		if l.ID == lessonID {
			return i
		}
	}
	return -1
}
