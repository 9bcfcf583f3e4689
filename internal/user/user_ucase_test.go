package user

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/pot-code/course-gate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryUserRepo struct {
	mu       sync.Mutex
	seq      int
	users    map[string]*domain.UserModel
	enrolled map[string][]string
}

var _ UserRepository = &memoryUserRepo{}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[string]*domain.UserModel{}, enrolled: map[string][]string{}}
}

func (m *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*domain.UserModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memoryUserRepo) FindByID(ctx context.Context, id string) (*domain.UserModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (m *memoryUserRepo) SaveUser(ctx context.Context, post *domain.UserModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	post.ID = fmt.Sprintf("u%d", m.seq)
	copied := *post
	m.users[post.ID] = &copied
	return nil
}

func (m *memoryUserRepo) UpdateLogin(ctx context.Context, post *domain.UserModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[post.ID]
	u.LoginRetry, u.LastLogin = post.LoginRetry, post.LastLogin
	return nil
}

func (m *memoryUserRepo) ListEnrolled(ctx context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.enrolled[userID]...), nil
}

func (m *memoryUserRepo) Enroll(ctx context.Context, userID, courseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.enrolled[userID] {
		if id == courseID {
			return nil
		}
	}
	m.enrolled[userID] = append(m.enrolled[userID], courseID)
	return nil
}

func (m *memoryUserRepo) Unenroll(ctx context.Context, userID, courseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []string
	for _, id := range m.enrolled[userID] {
		if id != courseID {
			kept = append(kept, id)
		}
	}
	m.enrolled[userID] = kept
	return nil
}

type knownCourses map[string]bool

func (kc knownCourses) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	if kc[id] {
		return &domain.Course{ID: id}, nil
	}
	return nil, domain.ErrNotFound
}

func newTestUseCase() (*UserUseCaseImpl, *memoryUserRepo, *time.Time) {
	repo := newMemoryUserRepo()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	uc := NewUserUseCase(repo, knownCourses{"c1": true, "c2": true}, 3, time.Hour)
	uc.HashCost = bcrypt.MinCost
	uc.Now = func() time.Time { return now }
	return uc, repo, &now
}

func signUp(t *testing.T, uc *UserUseCaseImpl) *domain.UserModel {
	user, err := uc.SignUp(context.Background(), &domain.UserModel{Name: "Ann", Email: " Ann@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	return user
}

func TestUserUseCase_SignUp(t *testing.T) {
	uc, repo, _ := newTestUseCase()

	user := signUp(t, uc)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users["u1"].Password), []byte("secret1")))

	_, err := uc.SignUp(context.Background(), &domain.UserModel{Name: "Ann", Email: "ann@example.com", Password: "other1"})
	assert.ErrorIs(t, err, domain.ErrDuplicatedUser)

	exists, err := uc.Exists(context.Background(), "ANN@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserUseCase_SignIn(t *testing.T) {
	uc, _, _ := newTestUseCase()
	signUp(t, uc)
	ctx := context.Background()

	user, err := uc.SignIn(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, []string{}, user.EnrolledCourses)

	_, err = uc.SignIn(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrNoSuchUser)
	_, err = uc.SignIn(ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrNoSuchUser)
}

func TestUserUseCase_SignInLockout(t *testing.T) {
	uc, repo, now := newTestUseCase()
	signUp(t, uc)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := uc.SignIn(ctx, "ann@example.com", "wrong")
		assert.ErrorIs(t, err, domain.ErrNoSuchUser)
	}
	assert.Equal(t, 3, repo.users["u1"].LoginRetry)

	_, err := uc.SignIn(ctx, "ann@example.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrUserTooManyRetry, "locked even with the right password")

	*now = now.Add(2 * time.Hour)
	_, err = uc.SignIn(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, 0, repo.users["u1"].LoginRetry)
}

func TestUserUseCase_Enrollment(t *testing.T) {
	uc, _, _ := newTestUseCase()
	ctx := context.Background()

	list, err := uc.Enroll(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, list)

	list, err = uc.Enroll(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, list, "idempotent")

	_, err = uc.Enroll(ctx, "u1", "unknown")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	uc.Enroll(ctx, "u1", "c2")
	list, err = uc.Unenroll(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c2"}, list)

	list, err = uc.EnrolledCourses(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c2"}, list)
}
