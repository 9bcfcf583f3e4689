package user

import (
	"context"

	"github.com/pot-code/course-gate/internal/domain"
)

// UserRepository learner accounts and their enrollments
type UserRepository interface {
	// FindByEmail returns nil, nil when no account uses email
	FindByEmail(ctx context.Context, email string) (*domain.UserModel, error)
	// FindByID returns nil, nil when id is unknown
	FindByID(ctx context.Context, id string) (*domain.UserModel, error)
	SaveUser(ctx context.Context, post *domain.UserModel) error
	UpdateLogin(ctx context.Context, post *domain.UserModel) error
	ListEnrolled(ctx context.Context, userID string) ([]string, error)
	// Enroll is idempotent
	Enroll(ctx context.Context, userID, courseID string) error
	Unenroll(ctx context.Context, userID, courseID string) error
}

// CourseFinder checks that a course is published
type CourseFinder interface {
	GetCourse(ctx context.Context, id string) (*domain.Course, error)
}

// UserUseCase account and enrollment operations
type UserUseCase interface {
	SignUp(ctx context.Context, post *domain.UserModel) (*domain.UserModel, error)
	SignIn(ctx context.Context, email, password string) (*domain.UserModel, error)
	Exists(ctx context.Context, email string) (bool, error)
	Enroll(ctx context.Context, userID, courseID string) ([]string, error)
	Unenroll(ctx context.Context, userID, courseID string) ([]string, error)
	EnrolledCourses(ctx context.Context, userID string) ([]string, error)
}
