package user

import (
	"context"
	"strings"
	"time"

	"github.com/pot-code/course-gate/internal/domain"
	"github.com/pot-code/course-gate/internal/infrastructure/logging"
	"go.elastic.co/apm"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserUseCaseImpl ...
type UserUseCaseImpl struct {
	UserRepository UserRepository
	Courses        CourseFinder
	MaximumRetry   int
	RetryTimeout   time.Duration
	HashCost       int
	Now            func() time.Time
}

var _ UserUseCase = &UserUseCaseImpl{}

// NewUserUseCase ...
func NewUserUseCase(
	UserRepository UserRepository,
	Courses CourseFinder,
	MaximumRetry int,
	RetryTimeout time.Duration,
) *UserUseCaseImpl {
	return &UserUseCaseImpl{
		UserRepository: UserRepository,
		Courses:        Courses,
		MaximumRetry:   MaximumRetry,
		RetryTimeout:   RetryTimeout,
		HashCost:       bcrypt.DefaultCost,
		Now:            time.Now,
	}
}

// SignUp create a user, post.Password is replaced by its hash
func (uu *UserUseCaseImpl) SignUp(ctx context.Context, post *domain.UserModel) (*domain.UserModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "UserUseCaseImpl.SignUp", "service")
	defer apmSpan.End()

	ur := uu.UserRepository
	post.Email = strings.ToLower(strings.TrimSpace(post.Email))
	// search for existence
	if m, err := ur.FindByEmail(ctx, post.Email); err != nil {
		return nil, err
	} else if m != nil {
		return nil, domain.ErrDuplicatedUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(post.Password), uu.HashCost)
	if err != nil {
		return nil, err
	}
	post.Password = string(hash)
	post.LastLogin = uu.Now().Unix()

	// save user
	if err := ur.SaveUser(ctx, post); err != nil {
		return nil, err
	}
	logging.ExtractLoggerFromContext(ctx).Info("User signed up", zap.String("user.id", post.ID))
	return post, nil
}

// SignIn check credential, accounts are locked for RetryTimeout after MaximumRetry failures
func (uu *UserUseCaseImpl) SignIn(ctx context.Context, email, password string) (*domain.UserModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "UserUseCaseImpl.SignIn", "service")
	defer apmSpan.End()

	ur := uu.UserRepository
	user, err := ur.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNoSuchUser
	}

	now := uu.Now()
	if uu.MaximumRetry > 0 && user.LoginRetry >= uu.MaximumRetry {
		if now.Sub(time.Unix(user.LastLogin, 0)) < uu.RetryTimeout {
			return nil, domain.ErrUserTooManyRetry
		}
		user.LoginRetry = 0
	}

	user.LastLogin = now.Unix()
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if err != bcrypt.ErrMismatchedHashAndPassword {
			return nil, err
		}
		user.LoginRetry++
		if err := ur.UpdateLogin(ctx, user); err != nil {
			return nil, err
		}
		return nil, domain.ErrNoSuchUser
	}

	// reset retry number
	user.LoginRetry = 0
	if err := ur.UpdateLogin(ctx, user); err != nil {
		return nil, err
	}
	if user.EnrolledCourses, err = ur.ListEnrolled(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// Exists find if email is registered
func (uu *UserUseCaseImpl) Exists(ctx context.Context, email string) (bool, error) {
	apmSpan, _ := apm.StartSpan(ctx, "UserUseCaseImpl.Exists", "service")
	defer apmSpan.End()

	user, err := uu.UserRepository.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// Enroll courseID must be published, returns the updated enrollment list
func (uu *UserUseCaseImpl) Enroll(ctx context.Context, userID, courseID string) ([]string, error) {
	apmSpan, _ := apm.StartSpan(ctx, "UserUseCaseImpl.Enroll", "service")
	defer apmSpan.End()

	if _, err := uu.Courses.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	if err := uu.UserRepository.Enroll(ctx, userID, courseID); err != nil {
		return nil, err
	}
	logging.ExtractLoggerFromContext(ctx).Info("User enrolled", zap.String("user.id", userID), zap.String("course.id", courseID))
	return uu.UserRepository.ListEnrolled(ctx, userID)
}

// Unenroll progress is kept, only the enrollment goes away
func (uu *UserUseCaseImpl) Unenroll(ctx context.Context, userID, courseID string) ([]string, error) {
	apmSpan, _ := apm.StartSpan(ctx, "UserUseCaseImpl.Unenroll", "service")
	defer apmSpan.End()

	if err := uu.UserRepository.Unenroll(ctx, userID, courseID); err != nil {
		return nil, err
	}
	return uu.UserRepository.ListEnrolled(ctx, userID)
}

func (uu *UserUseCaseImpl) EnrolledCourses(ctx context.Context, userID string) ([]string, error) {
	apmSpan, _ := apm.StartSpan(ctx, "UserUseCaseImpl.EnrolledCourses", "service")
	defer apmSpan.End()

	return uu.UserRepository.ListEnrolled(ctx, userID)
}
