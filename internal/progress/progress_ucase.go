package progress

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pot-code/course-gate/internal/access"
	"github.com/pot-code/course-gate/internal/course"
	"github.com/pot-code/course-gate/internal/domain"
	"github.com/pot-code/course-gate/internal/infrastructure/logging"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

// ProgressUseCaseImpl read side delegates to package access, write side is
// read-modify-write on the repository. Writes of one (user, course) pair are
// serialized inside this process, across processes the last write wins.
type ProgressUseCaseImpl struct {
	Courses            CourseProvider
	ProgressRepository ProgressRepository
	Notifier           *Notifier
	Now                func() time.Time

	locksMu sync.Mutex
	locks   map[string]*recordLock
}

// recordLock entry lives while refs > 0, waiters included
type recordLock struct {
	mu   sync.Mutex
	refs int
}

var _ ProgressUseCase = &ProgressUseCaseImpl{}

// NewProgressUseCase ...
func NewProgressUseCase(
	Courses CourseProvider,
	ProgressRepository ProgressRepository,
	Notifier *Notifier,
) *ProgressUseCaseImpl {
	return &ProgressUseCaseImpl{
		Courses:            Courses,
		ProgressRepository: ProgressRepository,
		Notifier:           Notifier,
		Now:                time.Now,
	}
}

// GetCourseProgress nil when the learner never touched the course
func (pu *ProgressUseCaseImpl) GetCourseProgress(ctx context.Context, userID, courseID string) (*domain.ProgressRecord, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ProgressUseCaseImpl.GetCourseProgress", "service")
	defer apmSpan.End()

	_, rec, err := pu.load(ctx, userID, courseID)
	return rec, err
}

// GetLessonProgress whether lessonID is completed, false on any error
func (pu *ProgressUseCaseImpl) GetLessonProgress(ctx context.Context, userID, courseID, lessonID string) (bool, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ProgressUseCaseImpl.GetLessonProgress", "service")
	defer apmSpan.End()

	c, rec, err := pu.load(ctx, userID, courseID)
	if err != nil {
		return false, err
	}
	if lesson, _ := c.FindLesson(lessonID); lesson == nil {
		return false, fmt.Errorf("lesson %q: %w", lessonID, domain.ErrNotFound)
	}
	return rec.HasCompletedLesson(lessonID), nil
}

// IsLessonLocked true on any error
func (pu *ProgressUseCaseImpl) IsLessonLocked(ctx context.Context, userID, courseID, lessonID string) (bool, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ProgressUseCaseImpl.IsLessonLocked", "service")
	defer apmSpan.End()

	c, rec, err := pu.load(ctx, userID, courseID)
	if err != nil {
		return true, err
	}
	return access.IsLessonLocked(c.Lessons, rec, lessonID)
}

// IsQuizLocked true on any error
func (pu *ProgressUseCaseImpl) IsQuizLocked(ctx context.Context, userID, courseID, lessonID string) (bool, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ProgressUseCaseImpl.IsQuizLocked", "service")
	defer apmSpan.End()

	c, rec, err := pu.load(ctx, userID, courseID)
	if err != nil {
		return true, err
	}
	return access.IsQuizLocked(c.Lessons, rec, lessonID)
}

// IsModuleLocked true on any error
func (pu *ProgressUseCaseImpl) IsModuleLocked(ctx context.Context, userID, courseID, moduleID string) (bool, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ProgressUseCaseImpl.IsModuleLocked", "service")
	defer apmSpan.End()

	c, rec, err := pu.load(ctx, userID, courseID)
	if err != nil {
		return true, err
	}
	return access.IsModuleLocked(c.Modules, rec, moduleID)
}

// CalculateModuleProgress 0 on any error
func (pu *ProgressUseCaseImpl) CalculateModuleProgress(ctx context.Context, userID, courseID, moduleID string) (int, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ProgressUseCaseImpl.CalculateModuleProgress", "service")
	defer apmSpan.End()

	c, rec, err := pu.load(ctx, userID, courseID)
	if err != nil {
		return 0, err
	}
	return access.ModuleProgress(c, rec, moduleID)
}

func (pu *ProgressUseCaseImpl) Outline(ctx context.Context, userID, courseID string) (*access.Outline, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ProgressUseCaseImpl.Outline", "service")
	defer apmSpan.End()

	c, rec, err := pu.load(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	return access.BuildOutline(c, rec)
}

// ViewLesson open lessonID, creating the record on first view. Blocked lessons fail with domain.ErrLocked.
func (pu *ProgressUseCaseImpl) ViewLesson(ctx context.Context, userID, courseID, lessonID string) (*domain.ProgressRecord, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ProgressUseCaseImpl.ViewLesson", "service")
	defer apmSpan.End()

	return pu.mutate(ctx, userID, courseID, lessonID, EventLessonViewed, func(c *domain.Course, lesson *domain.Lesson, rec *domain.ProgressRecord) error {
		gate, err := access.IsBlocked(c.Lessons, rec, lessonID)
		if err != nil {
			return err
		}
		if gate != access.GateNone {
			return fmt.Errorf("lesson %q blocked by %s gate: %w", lessonID, gate, domain.ErrLocked)
		}
		rec.CurrentLesson = lessonID
		return nil
	})
}

// MarkLessonAsCompleted idempotent, lessons outside the course flat list are rejected with domain.ErrNotFound
func (pu *ProgressUseCaseImpl) MarkLessonAsCompleted(ctx context.Context, userID, courseID, lessonID string) (*domain.ProgressRecord, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ProgressUseCaseImpl.MarkLessonAsCompleted", "service")
	defer apmSpan.End()

	return pu.mutate(ctx, userID, courseID, lessonID, EventLessonCompleted, func(c *domain.Course, lesson *domain.Lesson, rec *domain.ProgressRecord) error {
		rec.CompleteLesson(lessonID)
		return nil
	})
}

// RecordQuizScore overwrite the previous score of a quiz lesson, a passing score also completes it
func (pu *ProgressUseCaseImpl) RecordQuizScore(ctx context.Context, userID, courseID, lessonID string, score int) (*domain.ProgressRecord, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ProgressUseCaseImpl.RecordQuizScore", "service")
	defer apmSpan.End()

	if score < 0 || score > 100 {
		return nil, fmt.Errorf("score %d: %w", score, domain.ErrInvalidScore)
	}
	return pu.recordScore(ctx, userID, courseID, lessonID, score)
}

// SubmitQuiz grade answers and record the resulting score
func (pu *ProgressUseCaseImpl) SubmitQuiz(ctx context.Context, userID, courseID, lessonID string, answers map[string]string) (*course.QuizResult, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ProgressUseCaseImpl.SubmitQuiz", "service")
	defer apmSpan.End()

	c, err := pu.Courses.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	lesson, _ := c.FindLesson(lessonID)
	if lesson == nil {
		return nil, fmt.Errorf("lesson %q: %w", lessonID, domain.ErrNotFound)
	}
	if !lesson.IsQuiz() || lesson.Quiz == nil {
		return nil, fmt.Errorf("lesson %q: %w", lessonID, domain.ErrNotQuiz)
	}

	result := course.Grade(lesson.Quiz, answers)
	if _, err := pu.recordScore(ctx, userID, courseID, lessonID, result.Score); err != nil {
		return nil, err
	}
	return result, nil
}

func (pu *ProgressUseCaseImpl) recordScore(ctx context.Context, userID, courseID, lessonID string, score int) (*domain.ProgressRecord, error) {
	rec, err := pu.mutate(ctx, userID, courseID, lessonID, EventQuizScored, func(c *domain.Course, lesson *domain.Lesson, rec *domain.ProgressRecord) error {
		if !lesson.IsQuiz() || lesson.Quiz == nil {
			return fmt.Errorf("lesson %q: %w", lessonID, domain.ErrNotQuiz)
		}
		rec.QuizScores[lessonID] = score
		if score >= lesson.Quiz.PassingScore {
			rec.CompleteLesson(lessonID)
		}
		return nil
	})
	return rec, err
}

type mutation func(c *domain.Course, lesson *domain.Lesson, rec *domain.ProgressRecord) error

func (pu *ProgressUseCaseImpl) mutate(ctx context.Context, userID, courseID, lessonID string, kind EventKind, fn mutation) (*domain.ProgressRecord, error) {
	unlock := pu.lock(userID, courseID)
	defer unlock()

	c, err := pu.Courses.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	lesson, _ := c.FindLesson(lessonID)
	if lesson == nil {
		return nil, fmt.Errorf("lesson %q: %w", lessonID, domain.ErrNotFound)
	}

	rec, err := pu.ProgressRepository.Get(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = domain.NewProgressRecord(userID, courseID)
	}
	if err := fn(c, lesson, rec); err != nil {
		return nil, err
	}

	for _, id := range access.CompletedModules(c, rec) {
		rec.CompleteModule(id)
	}
	rec.Progress = access.CourseProgress(c, rec)
	rec.LastAccessed = pu.Now().UTC()
	if err := pu.ProgressRepository.Save(ctx, rec); err != nil {
		return nil, err
	}

	event := Event{
		Kind:     kind,
		UserID:   userID,
		CourseID: courseID,
		LessonID: lessonID,
		Progress: rec.Progress,
		At:       rec.LastAccessed,
	}
	if score, ok := rec.QuizScore(lessonID); ok && kind == EventQuizScored {
		event.Score = &score
	}
	logging.ExtractLoggerFromContext(ctx).Debug("Progress updated",
		zap.String("event.kind", string(kind)),
		zap.String("user.id", userID),
		zap.String("course.id", courseID),
		zap.String("lesson.id", lessonID),
		zap.Int("course.progress", rec.Progress))
	if pu.Notifier != nil {
		pu.Notifier.Publish(event)
	}
	return rec, nil
}

func (pu *ProgressUseCaseImpl) load(ctx context.Context, userID, courseID string) (*domain.Course, *domain.ProgressRecord, error) {
	c, err := pu.Courses.GetCourse(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}
	rec, err := pu.ProgressRepository.Get(ctx, userID, courseID)
	if err != nil {
		return nil, nil, err
	}
	return c, rec, nil
}

func (pu *ProgressUseCaseImpl) lock(userID, courseID string) func() {
	key := progressKey(userID, courseID)

	pu.locksMu.Lock()
	if pu.locks == nil {
		pu.locks = make(map[string]*recordLock)
	}
	l, ok := pu.locks[key]
	if !ok {
		l = new(recordLock)
		pu.locks[key] = l
	}
	l.refs++
	pu.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		pu.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(pu.locks, key)
		}
		pu.locksMu.Unlock()
	}
}
