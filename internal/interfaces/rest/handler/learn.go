package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-gate/internal/course"
	"github.com/pot-code/course-gate/internal/domain"
	"github.com/pot-code/course-gate/internal/infrastructure/auth"
	"github.com/pot-code/course-gate/internal/infrastructure/validate"
	"github.com/pot-code/course-gate/internal/progress"
	"github.com/pot-code/course-gate/internal/user"
)

// LearnHandler learner progress, every route acts on behalf of the token owner
type LearnHandler struct {
	ProgressUseCase progress.ProgressUseCase
	CourseUseCase   course.CourseUseCase
	UserUseCase     user.UserUseCase
	JWTUtil         *auth.JWTUtil
	Validator       validate.Validator
}

// NewLearnHandler ...
func NewLearnHandler(
	ProgressUseCase progress.ProgressUseCase,
	CourseUseCase course.CourseUseCase,
	UserUseCase user.UserUseCase,
	JWTUtil *auth.JWTUtil,
	Validator validate.Validator,
) *LearnHandler {
	return &LearnHandler{
		ProgressUseCase: ProgressUseCase,
		CourseUseCase:   CourseUseCase,
		UserUseCase:     UserUseCase,
		JWTUtil:         JWTUtil,
		Validator:       Validator,
	}
}

type viewResponse struct {
	Lesson   *domain.Lesson         `json:"lesson"`
	Progress *domain.ProgressRecord `json:"progress"`
}

type lessonStateResponse struct {
	Completed  bool  `json:"completed"`
	Locked     bool  `json:"locked"`
	QuizLocked *bool `json:"quizLocked,omitempty"`
}

type moduleStateResponse struct {
	Locked   bool `json:"locked"`
	Progress int  `json:"progress"`
}

type scoreRequest struct {
	Score *int `json:"score"`
}

type answersRequest struct {
	Answers map[string]string `json:"answers" validate:"required"`
}

type enrollmentResponse struct {
	Courses []string `json:"courses"`
}

func (lh *LearnHandler) uid(c echo.Context) string {
	return lh.JWTUtil.GetContextToken(c).UID
}

// HandleOutline every module and lesson with its lock state
func (lh *LearnHandler) HandleOutline(c echo.Context) error {
	outline, err := lh.ProgressUseCase.Outline(c.Request().Context(), lh.uid(c), c.Param("course"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, outline)
}

// HandleGetProgress stored record, an empty one when the course was never opened
func (lh *LearnHandler) HandleGetProgress(c echo.Context) error {
	uid, courseID := lh.uid(c), c.Param("course")
	ctx := c.Request().Context()

	if _, err := lh.CourseUseCase.GetCourse(ctx, courseID); err != nil {
		return respondError(c, err)
	}
	rec, err := lh.ProgressUseCase.GetCourseProgress(ctx, uid, courseID)
	if err != nil {
		return respondError(c, err)
	}
	if rec == nil {
		rec = domain.NewProgressRecord(uid, courseID)
	}
	return c.JSON(http.StatusOK, rec)
}

// HandleGetModule module lock state and completion percentage
func (lh *LearnHandler) HandleGetModule(c echo.Context) error {
	uid, courseID, moduleID := lh.uid(c), c.Param("course"), c.Param("module")
	ctx := c.Request().Context()

	locked, err := lh.ProgressUseCase.IsModuleLocked(ctx, uid, courseID, moduleID)
	if err != nil {
		return respondError(c, err)
	}
	p, err := lh.ProgressUseCase.CalculateModuleProgress(ctx, uid, courseID, moduleID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, &moduleStateResponse{Locked: locked, Progress: p})
}

// HandleGetLessonState lesson gates without recording a view
func (lh *LearnHandler) HandleGetLessonState(c echo.Context) error {
	uid, courseID, lessonID := lh.uid(c), c.Param("course"), c.Param("lesson")
	ctx := c.Request().Context()

	locked, err := lh.ProgressUseCase.IsLessonLocked(ctx, uid, courseID, lessonID)
	if err != nil {
		return respondError(c, err)
	}
	completed, err := lh.ProgressUseCase.GetLessonProgress(ctx, uid, courseID, lessonID)
	if err != nil {
		return respondError(c, err)
	}
	res := &lessonStateResponse{Completed: completed, Locked: locked}
	quizLocked, err := lh.ProgressUseCase.IsQuizLocked(ctx, uid, courseID, lessonID)
	switch {
	case err == nil:
		res.QuizLocked = &quizLocked
	case !errors.Is(err, domain.ErrNotQuiz):
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// HandleViewLesson open a lesson, 403 while it is locked
func (lh *LearnHandler) HandleViewLesson(c echo.Context) error {
	uid, courseID, lessonID := lh.uid(c), c.Param("course"), c.Param("lesson")
	ctx := c.Request().Context()

	rec, err := lh.ProgressUseCase.ViewLesson(ctx, uid, courseID, lessonID)
	if err != nil {
		return respondError(c, err)
	}
	found, err := lh.CourseUseCase.GetCourse(ctx, courseID)
	if err != nil {
		return respondError(c, err)
	}
	lesson, _ := found.FindLesson(lessonID)
	if lesson == nil {
		return respondError(c, domain.ErrNotFound)
	}
	return c.JSON(http.StatusOK, &viewResponse{Lesson: redactLesson(lesson), Progress: rec})
}

// HandleCompleteLesson ...
func (lh *LearnHandler) HandleCompleteLesson(c echo.Context) error {
	rec, err := lh.ProgressUseCase.MarkLessonAsCompleted(c.Request().Context(), lh.uid(c), c.Param("course"), c.Param("lesson"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// HandleRecordScore store an externally graded quiz score
func (lh *LearnHandler) HandleRecordScore(c echo.Context) error {
	post := new(scoreRequest)
	if err := c.Bind(post); err != nil {
		return respondUnbindable(c, "score", err)
	}
	if post.Score == nil {
		return respondInvalid(c, "Failed to validate fields", []*validate.FieldError{
			validate.NewFieldError("score", "score is a required field"),
		})
	}

	rec, err := lh.ProgressUseCase.RecordQuizScore(c.Request().Context(), lh.uid(c), c.Param("course"), c.Param("lesson"), *post.Score)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// HandleSubmitQuiz grade answers and record the score
func (lh *LearnHandler) HandleSubmitQuiz(c echo.Context) error {
	post := new(answersRequest)
	if err := c.Bind(post); err != nil {
		return respondUnbindable(c, "answers", err)
	}
	if errs := lh.Validator.Struct(post); errs != nil {
		return respondInvalid(c, "Failed to validate fields", errs)
	}

	result, err := lh.ProgressUseCase.SubmitQuiz(c.Request().Context(), lh.uid(c), c.Param("course"), c.Param("lesson"), post.Answers)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// HandleEnroll ...
func (lh *LearnHandler) HandleEnroll(c echo.Context) error {
	courses, err := lh.UserUseCase.Enroll(c.Request().Context(), lh.uid(c), c.Param("course"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, &enrollmentResponse{Courses: nonNil(courses)})
}

// HandleUnenroll ...
func (lh *LearnHandler) HandleUnenroll(c echo.Context) error {
	courses, err := lh.UserUseCase.Unenroll(c.Request().Context(), lh.uid(c), c.Param("course"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, &enrollmentResponse{Courses: nonNil(courses)})
}

// HandleListEnrolled ...
func (lh *LearnHandler) HandleListEnrolled(c echo.Context) error {
	courses, err := lh.UserUseCase.EnrolledCourses(c.Request().Context(), lh.uid(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, &enrollmentResponse{Courses: nonNil(courses)})
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
