package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminHandler(t *testing.T) {
	courses := newFakeCourses()
	ah := NewAdminHandler(courses)
	ch := NewCourseHandler(courses)

	c, rec := request(t, http.MethodPut, "/", map[string]interface{}{"id": "c2"})
	require.NoError(t, ah.HandleSaveCourse(c))
	requireStatus(t, rec, http.StatusBadRequest)

	c, rec = request(t, http.MethodPut, "/", learnCourse())
	require.NoError(t, ah.HandleSaveCourse(c))
	requireStatus(t, rec, http.StatusOK)

	c, rec = request(t, http.MethodGet, "/", nil)
	require.NoError(t, ah.HandleGetCourse(withParams(c, "course", "c1")))
	requireStatus(t, rec, http.StatusOK)
	assert.Contains(t, rec.Body.String(), "correctAnswer", "authors see answer keys")

	c, rec = request(t, http.MethodDelete, "/", nil)
	require.NoError(t, ah.HandleDeleteCourse(withParams(c, "course", "c1")))
	requireStatus(t, rec, http.StatusNoContent)

	c, rec = request(t, http.MethodGet, "/", nil)
	require.NoError(t, ch.HandleGetCourse(withParams(c, "course", "c1")))
	requireStatus(t, rec, http.StatusNotFound)
}
