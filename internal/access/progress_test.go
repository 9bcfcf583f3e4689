package access

import (
	"testing"

	"github.com/pot-code/course-gate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCourse() *domain.Course {
	a, b, q1 := lesson("A"), lesson("B"), quiz("Q1", 70)
	c, q2 := lesson("C"), quiz("Q2", 60)
	return &domain.Course{
		ID:    "c1",
		Title: "Sample",
		Modules: []*domain.Module{
			{ID: "M1", Order: 1, Lessons: []*domain.Lesson{a, b, q1}},
			{ID: "M2", Order: 2, Lessons: []*domain.Lesson{c, q2}},
			{ID: "M3", Order: 3},
		},
		Lessons: []*domain.Lesson{a, b, q1, c, q2},
	}
}

func TestModuleProgress(t *testing.T) {
	course := &domain.Course{
		ID: "c1",
		Modules: []*domain.Module{
			{ID: "M1", Lessons: []*domain.Lesson{lesson("A"), lesson("B")}},
			{ID: "M2"},
		},
	}
	course.Lessons = course.Modules[0].Lessons

	p, err := ModuleProgress(course, record("A"), "M1")
	require.NoError(t, err)
	assert.Equal(t, 50, p)

	p, err = ModuleProgress(course, record("A", "B"), "M1")
	require.NoError(t, err)
	assert.Equal(t, 100, p)

	p, err = ModuleProgress(course, record("A", "B"), "M2")
	require.NoError(t, err)
	assert.Equal(t, 0, p, "empty module")

	_, err = ModuleProgress(course, nil, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestModuleProgress_MonotonicAndRounded(t *testing.T) {
	course := sampleCourse()
	rec := record()

	last := -1
	for _, id := range []string{"A", "B", "Q1"} {
		rec.CompleteLesson(id)
		p, err := ModuleProgress(course, rec, "M1")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p, last)
		last = p
	}
	assert.Equal(t, 100, last)

	p, err := ModuleProgress(course, record("A"), "M1")
	require.NoError(t, err)
	assert.Equal(t, 33, p)

	again, err := ModuleProgress(course, record("A"), "M1")
	require.NoError(t, err)
	assert.Equal(t, p, again)
}

func TestCourseProgress_IgnoresForeignAndDuplicates(t *testing.T) {
	course := sampleCourse()

	assert.Equal(t, 0, CourseProgress(course, nil))
	assert.Equal(t, 40, CourseProgress(course, record("A", "A", "B", "other-course-lesson")))
	assert.Equal(t, 0, CourseProgress(&domain.Course{ID: "empty"}, record("A")))
}

func TestBuildOutline(t *testing.T) {
	course := sampleCourse()
	rec := record("A", "B", "Q1")
	rec.QuizScores["Q1"] = 50

	outline, err := BuildOutline(course, rec)
	require.NoError(t, err)

	assert.Equal(t, 60, outline.Progress)
	assert.Equal(t, 3, outline.Completed)
	assert.Equal(t, 5, outline.Total)
	require.Len(t, outline.Modules, 3)

	m1, m2, m3 := outline.Modules[0], outline.Modules[1], outline.Modules[2]
	assert.False(t, m1.Locked)
	assert.Equal(t, 100, m1.Progress)
	assert.False(t, m2.Locked)
	assert.True(t, m3.Locked)

	require.Len(t, m2.Lessons, 2)
	assert.False(t, m2.Lessons[0].Locked, "C follows completed Q1")
	assert.True(t, m2.Lessons[1].Locked)
	assert.Equal(t, GateSequence, m2.Lessons[1].LockedBy)

	q1 := m1.Lessons[2]
	require.NotNil(t, q1.Score)
	assert.Equal(t, 50, *q1.Score)
}

func TestBuildOutline_QuizGate(t *testing.T) {
	course := sampleCourse()
	rec := record("A", "B", "Q1", "C")
	rec.QuizScores["Q1"] = 40

	outline, err := BuildOutline(course, rec)
	require.NoError(t, err)

	m2 := outline.Modules[1]
	assert.Equal(t, 50, m2.Progress)
	assert.Equal(t, 1, m2.Completed)

	q2 := m2.Lessons[1]
	assert.True(t, q2.Locked)
	assert.Equal(t, GateQuiz, q2.LockedBy)
}

func TestCompletedModules(t *testing.T) {
	course := sampleCourse()

	assert.Empty(t, CompletedModules(course, record("A", "B")))
	assert.Equal(t, []string{"M1"}, CompletedModules(course, record("A", "B", "Q1")))
	assert.Equal(t, []string{"M1", "M2"}, CompletedModules(course, record("A", "B", "Q1", "C", "Q2")))
}
