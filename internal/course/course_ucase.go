package course

import (
	"context"
	"fmt"

	"github.com/pot-code/course-gate/internal/domain"
	"github.com/pot-code/course-gate/internal/infrastructure/logging"
	"github.com/pot-code/course-gate/internal/infrastructure/uuid"
	"github.com/pot-code/course-gate/internal/infrastructure/validate"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

// CourseUseCaseImpl overrides win over base courses by id, deleted ids are hidden from both
type CourseUseCaseImpl struct {
	Catalog          BaseCatalog
	CourseRepository CourseRepository
	UUIDGenerator    uuid.Generator
	Validator        validate.Validator
}

var _ CourseUseCase = &CourseUseCaseImpl{}

// NewCourseUseCase ...
func NewCourseUseCase(
	Catalog BaseCatalog,
	CourseRepository CourseRepository,
	UUIDGenerator uuid.Generator,
	Validator validate.Validator,
) *CourseUseCaseImpl {
	return &CourseUseCaseImpl{Catalog, CourseRepository, UUIDGenerator, Validator}
}

// GetCourse returns domain.ErrNotFound for unknown and deleted ids
func (cu *CourseUseCaseImpl) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	apmSpan, _ := apm.StartSpan(ctx, "CourseUseCaseImpl.GetCourse", "service")
	defer apmSpan.End()

	repo := cu.CourseRepository
	if deleted, err := repo.IsDeleted(ctx, id); err != nil {
		return nil, err
	} else if deleted {
		return nil, fmt.Errorf("course %q: %w", id, domain.ErrNotFound)
	}

	override, err := repo.FindOverride(ctx, id)
	if err != nil {
		return nil, err
	}
	if override != nil {
		return override, nil
	}
	if base, ok := cu.Catalog.Get(id); ok {
		return base, nil
	}
	return nil, fmt.Errorf("course %q: %w", id, domain.ErrNotFound)
}

// ListCourses base courses first in catalog order, then courses that only exist as overrides
func (cu *CourseUseCaseImpl) ListCourses(ctx context.Context) ([]*domain.Course, error) {
	apmSpan, _ := apm.StartSpan(ctx, "CourseUseCaseImpl.ListCourses", "service")
	defer apmSpan.End()

	repo := cu.CourseRepository
	overrides, err := repo.ListOverrides(ctx)
	if err != nil {
		return nil, err
	}
	deletedIDs, err := repo.ListDeleted(ctx)
	if err != nil {
		return nil, err
	}

	deleted := make(map[string]bool, len(deletedIDs))
	for _, id := range deletedIDs {
		deleted[id] = true
	}
	byID := make(map[string]*domain.Course, len(overrides))
	for _, o := range overrides {
		byID[o.ID] = o
	}

	var result []*domain.Course
	for _, base := range cu.Catalog.List() {
		if deleted[base.ID] {
			continue
		}
		if o, ok := byID[base.ID]; ok {
			result = append(result, o)
			delete(byID, base.ID)
			continue
		}
		result = append(result, base)
	}
	for _, o := range overrides {
		if _, ok := byID[o.ID]; ok && !deleted[o.ID] {
			result = append(result, o)
		}
	}
	return result, nil
}

// SaveCourse assign missing ids, validate and persist course as an override
func (cu *CourseUseCaseImpl) SaveCourse(ctx context.Context, course *domain.Course) (*domain.Course, error) {
	apmSpan, _ := apm.StartSpan(ctx, "CourseUseCaseImpl.SaveCourse", "service")
	defer apmSpan.End()

	if err := cu.assignIDs(course); err != nil {
		return nil, err
	}
	Prepare(course)
	if err := ValidateCourse(cu.Validator, course); err != nil {
		return nil, err
	}
	if err := cu.CourseRepository.SaveOverride(ctx, course); err != nil {
		return nil, err
	}
	logging.ExtractLoggerFromContext(ctx).Info("Course saved",
		zap.String("course.id", course.ID),
		zap.Int("course.modules", len(course.Modules)),
		zap.Int("course.lessons", len(course.Lessons)))
	return course, nil
}

// DeleteCourse hide course id, returns domain.ErrNotFound if it is not visible
func (cu *CourseUseCaseImpl) DeleteCourse(ctx context.Context, id string) error {
	apmSpan, _ := apm.StartSpan(ctx, "CourseUseCaseImpl.DeleteCourse", "service")
	defer apmSpan.End()

	if _, err := cu.GetCourse(ctx, id); err != nil {
		return err
	}
	if err := cu.CourseRepository.MarkDeleted(ctx, id); err != nil {
		return err
	}
	logging.ExtractLoggerFromContext(ctx).Info("Course deleted", zap.String("course.id", id))
	return nil
}

// assignIDs lessons shared between a module and the flat list get one id
func (cu *CourseUseCaseImpl) assignIDs(course *domain.Course) error {
	gen := cu.UUIDGenerator
	assign := func(id *string) error {
		if *id != "" {
			return nil
		}
		v, err := gen.Generate()
		if err != nil {
			return err
		}
		*id = v
		return nil
	}

	if err := assign(&course.ID); err != nil {
		return err
	}
	lessons := make([]*domain.Lesson, 0, len(course.Lessons))
	lessons = append(lessons, course.Lessons...)
	for _, m := range course.Modules {
		if err := assign(&m.ID); err != nil {
			return err
		}
		lessons = append(lessons, m.Lessons...)
	}
	for _, l := range lessons {
		if err := assign(&l.ID); err != nil {
			return err
		}
		if l.Quiz == nil {
			continue
		}
		if err := assign(&l.Quiz.ID); err != nil {
			return err
		}
		for _, q := range l.Quiz.Questions {
			if err := assign(&q.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
