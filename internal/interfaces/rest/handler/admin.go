package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-gate/internal/course"
	"github.com/pot-code/course-gate/internal/domain"
)

// AdminHandler course authoring
type AdminHandler struct {
	CourseUseCase course.CourseUseCase
}

// NewAdminHandler ...
func NewAdminHandler(CourseUseCase course.CourseUseCase) *AdminHandler {
	return &AdminHandler{CourseUseCase}
}

// HandleSaveCourse create or replace a course, ids left empty are generated
func (ah *AdminHandler) HandleSaveCourse(c echo.Context) error {
	post := new(domain.Course)
	if err := c.Bind(post); err != nil {
		return respondUnbindable(c, "course", err)
	}

	saved, err := ah.CourseUseCase.SaveCourse(c.Request().Context(), post)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, saved)
}

// HandleGetCourse full content tree including answer keys
func (ah *AdminHandler) HandleGetCourse(c echo.Context) error {
	found, err := ah.CourseUseCase.GetCourse(c.Request().Context(), c.Param("course"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}

// HandleDeleteCourse hide a course from learners
func (ah *AdminHandler) HandleDeleteCourse(c echo.Context) error {
	if err := ah.CourseUseCase.DeleteCourse(c.Request().Context(), c.Param("course")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
