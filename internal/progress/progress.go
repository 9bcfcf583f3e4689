// Package progress stores learner progress and is the only writer of it.
package progress

import (
	"context"

	"github.com/pot-code/course-gate/internal/access"
	"github.com/pot-code/course-gate/internal/course"
	"github.com/pot-code/course-gate/internal/domain"
)

// CourseProvider read-only content tree
type CourseProvider interface {
	GetCourse(ctx context.Context, id string) (*domain.Course, error)
}

// ProgressRepository persistence of progress records keyed by (userID, courseID)
type ProgressRepository interface {
	// Get returns nil, nil when the learner never touched the course
	Get(ctx context.Context, userID, courseID string) (*domain.ProgressRecord, error)
	Save(ctx context.Context, rec *domain.ProgressRecord) error
}

// ProgressUseCase queries and mutations of a learner's progress
type ProgressUseCase interface {
	GetCourseProgress(ctx context.Context, userID, courseID string) (*domain.ProgressRecord, error)
	GetLessonProgress(ctx context.Context, userID, courseID, lessonID string) (bool, error)
	IsLessonLocked(ctx context.Context, userID, courseID, lessonID string) (bool, error)
	IsQuizLocked(ctx context.Context, userID, courseID, lessonID string) (bool, error)
	IsModuleLocked(ctx context.Context, userID, courseID, moduleID string) (bool, error)
	CalculateModuleProgress(ctx context.Context, userID, courseID, moduleID string) (int, error)
	Outline(ctx context.Context, userID, courseID string) (*access.Outline, error)

	ViewLesson(ctx context.Context, userID, courseID, lessonID string) (*domain.ProgressRecord, error)
	MarkLessonAsCompleted(ctx context.Context, userID, courseID, lessonID string) (*domain.ProgressRecord, error)
	RecordQuizScore(ctx context.Context, userID, courseID, lessonID string, score int) (*domain.ProgressRecord, error)
	SubmitQuiz(ctx context.Context, userID, courseID, lessonID string, answers map[string]string) (*course.QuizResult, error)
}
