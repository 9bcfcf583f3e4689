package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-gate/internal/course"
	"github.com/pot-code/course-gate/internal/domain"
)

// CourseHandler published course catalog
type CourseHandler struct {
	CourseUseCase course.CourseUseCase
}

// NewCourseHandler ...
func NewCourseHandler(CourseUseCase course.CourseUseCase) *CourseHandler {
	return &CourseHandler{CourseUseCase}
}

type courseSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Level       string `json:"level,omitempty"`
	Modules     int    `json:"modules"`
	Lessons     int    `json:"lessons"`
}

// HandleListCourses ...
func (ch *CourseHandler) HandleListCourses(c echo.Context) error {
	courses, err := ch.CourseUseCase.ListCourses(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	summaries := make([]*courseSummary, 0, len(courses))
	for _, it := range courses {
		summaries = append(summaries, &courseSummary{
			ID:          it.ID,
			Title:       it.Title,
			Description: it.Description,
			Category:    it.Category,
			Level:       it.Level,
			Modules:     len(it.Modules),
			Lessons:     len(it.Lessons),
		})
	}
	return c.JSON(http.StatusOK, summaries)
}

// HandleGetCourse content tree without answer keys
func (ch *CourseHandler) HandleGetCourse(c echo.Context) error {
	found, err := ch.CourseUseCase.GetCourse(c.Request().Context(), c.Param("course"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, redactCourse(found))
}

// redactCourse copy of course with correct answers and explanations removed.
// Lessons shared between the flat list and modules stay shared in the copy.
func redactCourse(src *domain.Course) *domain.Course {
	dst := *src
	copies := make(map[*domain.Lesson]*domain.Lesson, len(src.Lessons))
	redact := func(lessons []*domain.Lesson) []*domain.Lesson {
		if lessons == nil {
			return nil
		}
		result := make([]*domain.Lesson, len(lessons))
		for i, l := range lessons {
			if cp, ok := copies[l]; ok {
				result[i] = cp
				continue
			}
			cp := redactLesson(l)
			copies[l] = cp
			result[i] = cp
		}
		return result
	}

	dst.Lessons = redact(src.Lessons)
	dst.Modules = make([]*domain.Module, len(src.Modules))
	for i, m := range src.Modules {
		mc := *m
		mc.Lessons = redact(m.Lessons)
		dst.Modules[i] = &mc
	}
	return &dst
}

func redactLesson(src *domain.Lesson) *domain.Lesson {
	dst := *src
	if src.Quiz == nil {
		return &dst
	}
	quiz := *src.Quiz
	quiz.Questions = make([]*domain.Question, len(src.Quiz.Questions))
	for i, q := range src.Quiz.Questions {
		qc := *q
		qc.CorrectAnswer = nil
		qc.Explanation = ""
		quiz.Questions[i] = &qc
	}
	dst.Quiz = &quiz
	return &dst
}
