package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pot-code/course-gate/internal/domain"
	"github.com/pot-code/course-gate/internal/infrastructure/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenKV fails every operation
type brokenKV struct {
	*driver.MemoryKV
}

var errBroken = errors.New("connection refused")

func (brokenKV) Get(ctx context.Context, key string) (string, error) { return "", errBroken }
func (brokenKV) Set(ctx context.Context, key string, value string) error {
	return errBroken
}

func TestProgressKV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewProgressRepository(driver.NewMemoryKV())

	rec, err := repo.Get(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Nil(t, rec, "absent record")

	in := domain.NewProgressRecord("u1", "c1")
	in.CompletedLessons = []string{"b", "a", "b"}
	in.QuizScores["q"] = 80
	in.LastAccessed = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, in))

	out, err := repo.Get(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, out.CompletedLessons)
	assert.Equal(t, 80, out.QuizScores["q"])
	assert.True(t, in.LastAccessed.Equal(out.LastAccessed))

	other, err := repo.Get(ctx, "u2", "c1")
	require.NoError(t, err)
	assert.Nil(t, other, "records are scoped by user")
}

func TestProgressKV_ToleratesDuplicatesAndNulls(t *testing.T) {
	ctx := context.Background()
	kv := driver.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, "progress:u1:c1", `{"completedLessons":["a","a","a"],"quizScores":null}`))

	rec, err := NewProgressRepository(kv).Get(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, rec.CompletedLessons)
	assert.NotNil(t, rec.QuizScores)
	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, "c1", rec.CourseID)
}

func TestProgressKV_StorageUnavailable(t *testing.T) {
	ctx := context.Background()
	repo := NewProgressRepository(brokenKV{driver.NewMemoryKV()})

	_, err := repo.Get(ctx, "u1", "c1")
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	err = repo.Save(ctx, domain.NewProgressRecord("u1", "c1"))
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	kv := driver.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, "progress:u1:c1", "{broken"))
	_, err = NewProgressRepository(kv).Get(ctx, "u1", "c1")
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}
