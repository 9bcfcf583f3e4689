package course

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/pot-code/course-gate/internal/domain"
	"github.com/pot-code/course-gate/internal/infrastructure/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	catalog, err := LoadCatalog("testdata/catalog", validate.NewValidator())
	require.NoError(t, err)

	list := catalog.List()
	require.Len(t, list, 2)
	assert.Equal(t, "intro-web", list[0].ID)
	assert.Equal(t, "python-basics", list[1].ID)

	intro, ok := catalog.Get("intro-web")
	require.True(t, ok)
	require.Len(t, intro.Modules, 2)
	require.Len(t, intro.Lessons, 5, "flat list built from modules")
	assert.Equal(t, []string{"l1", "l2", "q1", "l3", "q2"}, lessonIDs(intro.Lessons))

	q1, _ := intro.FindLesson("q1")
	require.NotNil(t, q1.Quiz)
	assert.Equal(t, 70, q1.Quiz.PassingScore)
	assert.Equal(t, domain.AnswerSet{"HTML"}, q1.Quiz.Questions[0].CorrectAnswer)

	q2, _ := intro.FindLesson("q2")
	assert.Equal(t, domain.AnswerSet{".class", "#id"}, q2.Quiz.Questions[0].CorrectAnswer)

	_, ok = catalog.Get("missing")
	assert.False(t, ok)
}

func TestLoadCatalog_Errors(t *testing.T) {
	v := validate.NewValidator()

	_, err := LoadCatalog("testdata/invalid", v)
	assert.ErrorIs(t, err, domain.ErrInvalidCourse)

	_, err = LoadCatalog("testdata/unknown_field", v)
	assert.Error(t, err, "unknown yaml keys are rejected")

	_, err = LoadCatalog("testdata/does-not-exist", v)
	assert.Error(t, err)
}

func TestCatalog_ReloadKeepsStateOnError(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, ioutil.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	write("a.yaml", "id: a\ntitle: A\n")

	catalog, err := LoadCatalog(dir, validate.NewValidator())
	require.NoError(t, err)
	require.Len(t, catalog.List(), 1)

	write("b.yaml", "id: a\ntitle: duplicated\n")
	assert.ErrorIs(t, catalog.Reload(), domain.ErrInvalidCourse)
	course, ok := catalog.Get("a")
	require.True(t, ok)
	assert.Equal(t, "A", course.Title)
}

func lessonIDs(lessons []*domain.Lesson) []string {
	ids := make([]string, 0, len(lessons))
	for _, l := range lessons {
		ids = append(ids, l.ID)
	}
	return ids
}
