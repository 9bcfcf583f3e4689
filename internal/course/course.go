// Package course provides the content tree of every published course.
//
// Base courses ship as YAML files and are loaded into a Catalog at start up.
// Authors may override or delete them at runtime, those changes live in SQL.
package course

import (
	"context"

	"github.com/pot-code/course-gate/internal/domain"
)

// BaseCatalog read-only courses shipped with the service
type BaseCatalog interface {
	Get(id string) (*domain.Course, bool)
	List() []*domain.Course
}

// CourseRepository persisted author changes
type CourseRepository interface {
	// FindOverride returns nil, nil when id has no override
	FindOverride(ctx context.Context, id string) (*domain.Course, error)
	ListOverrides(ctx context.Context) ([]*domain.Course, error)
	// SaveOverride stores course and clears a previous deletion of the same id
	SaveOverride(ctx context.Context, course *domain.Course) error
	IsDeleted(ctx context.Context, id string) (bool, error)
	ListDeleted(ctx context.Context) ([]string, error)
	MarkDeleted(ctx context.Context, id string) error
}

// CourseUseCase merged view of base courses and author changes
type CourseUseCase interface {
	GetCourse(ctx context.Context, id string) (*domain.Course, error)
	ListCourses(ctx context.Context) ([]*domain.Course, error)
	SaveCourse(ctx context.Context, course *domain.Course) (*domain.Course, error)
	DeleteCourse(ctx context.Context, id string) error
}
