package course

import (
	"fmt"
	"strings"

	"github.com/pot-code/course-gate/internal/access"
	"github.com/pot-code/course-gate/internal/domain"
	"github.com/pot-code/course-gate/internal/infrastructure/validate"
)

// Prepare fill the flat lesson list from the modules, in module order, when it is empty
func Prepare(course *domain.Course) *domain.Course {
	if len(course.Lessons) > 0 {
		return course
	}
	for _, m := range access.SortModules(course.Modules) {
		course.Lessons = append(course.Lessons, m.Lessons...)
	}
	return course
}

// ValidateCourse check field rules and the structural rules gating relies on.
// The returned error wraps domain.ErrInvalidCourse.
func ValidateCourse(v validate.Validator, course *domain.Course) error {
	if errs := v.Struct(course); len(errs) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidCourse, validate.Join(errs))
	}
	if problems := structuralProblems(course); len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidCourse, strings.Join(problems, "; "))
	}
	return nil
}

func structuralProblems(course *domain.Course) []string {
	var problems []string

	flat := make(map[string]bool, len(course.Lessons))
	for i, l := range course.Lessons {
		if flat[l.ID] {
			problems = append(problems, fmt.Sprintf("lessons[%d]: duplicated lesson id %q", i, l.ID))
		}
		flat[l.ID] = true

		switch {
		case l.IsQuiz() && l.Quiz == nil:
			problems = append(problems, fmt.Sprintf("lessons[%d]: quiz lesson %q has no quiz", i, l.ID))
		case !l.IsQuiz() && l.Quiz != nil:
			problems = append(problems, fmt.Sprintf("lessons[%d]: lesson %q of type %s carries a quiz", i, l.ID, l.Type))
		}
		if l.Quiz != nil {
			seen := make(map[string]bool, len(l.Quiz.Questions))
			for _, q := range l.Quiz.Questions {
				if seen[q.ID] {
					problems = append(problems, fmt.Sprintf("lessons[%d]: duplicated question id %q", i, q.ID))
				}
				seen[q.ID] = true
			}
		}
	}

	modules := make(map[string]bool, len(course.Modules))
	for i, m := range course.Modules {
		if modules[m.ID] {
			problems = append(problems, fmt.Sprintf("modules[%d]: duplicated module id %q", i, m.ID))
		}
		modules[m.ID] = true
		for j, l := range m.Lessons {
			if !flat[l.ID] {
				problems = append(problems, fmt.Sprintf("modules[%d].lessons[%d]: lesson %q missing from the course lesson list", i, j, l.ID))
			}
		}
	}
	return problems
}
