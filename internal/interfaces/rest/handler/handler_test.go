package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-gate/internal/domain"
	"github.com/pot-code/course-gate/internal/infrastructure/auth"
	"github.com/stretchr/testify/require"
)

var testJWT = auth.NewJWTUtil("HS256", "test-secret", "gate_token", time.Hour)

type fakeCourses struct {
	mu      sync.Mutex
	courses map[string]*domain.Course
}

func newFakeCourses(courses ...*domain.Course) *fakeCourses {
	fc := &fakeCourses{courses: make(map[string]*domain.Course)}
	for _, c := range courses {
		fc.courses[c.ID] = c
	}
	return fc
}

func (fc *fakeCourses) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if c, ok := fc.courses[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("course %q: %w", id, domain.ErrNotFound)
}

func (fc *fakeCourses) ListCourses(ctx context.Context) ([]*domain.Course, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	result := make([]*domain.Course, 0, len(fc.courses))
	for _, c := range fc.courses {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (fc *fakeCourses) SaveCourse(ctx context.Context, c *domain.Course) (*domain.Course, error) {
	if c.ID == "" || c.Title == "" {
		return nil, fmt.Errorf("id and title: %w", domain.ErrInvalidCourse)
	}
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.courses[c.ID] = c
	return c, nil
}

func (fc *fakeCourses) DeleteCourse(ctx context.Context, id string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	delete(fc.courses, id)
	return nil
}

type fakeUsers struct {
	mu       sync.Mutex
	users    map[string]*domain.UserModel
	enrolled map[string][]string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]*domain.UserModel), enrolled: make(map[string][]string)}
}

func (fu *fakeUsers) SignUp(ctx context.Context, post *domain.UserModel) (*domain.UserModel, error) {
	fu.mu.Lock()
	defer fu.mu.Unlock()
	if _, ok := fu.users[post.Email]; ok {
		return nil, domain.ErrDuplicatedUser
	}
	post.ID = fmt.Sprintf("u%d", len(fu.users)+1)
	saved := *post
	fu.users[post.Email] = &saved
	return post, nil
}

func (fu *fakeUsers) SignIn(ctx context.Context, email, password string) (*domain.UserModel, error) {
	fu.mu.Lock()
	defer fu.mu.Unlock()
	u, ok := fu.users[email]
	if !ok || u.Password != password {
		return nil, domain.ErrNoSuchUser
	}
	found := *u
	return &found, nil
}

func (fu *fakeUsers) Exists(ctx context.Context, email string) (bool, error) {
	fu.mu.Lock()
	defer fu.mu.Unlock()
	_, ok := fu.users[email]
	return ok, nil
}

func (fu *fakeUsers) Enroll(ctx context.Context, userID, courseID string) ([]string, error) {
	fu.mu.Lock()
	defer fu.mu.Unlock()
	for _, id := range fu.enrolled[userID] {
		if id == courseID {
			return fu.enrolled[userID], nil
		}
	}
	fu.enrolled[userID] = append(fu.enrolled[userID], courseID)
	return fu.enrolled[userID], nil
}

func (fu *fakeUsers) Unenroll(ctx context.Context, userID, courseID string) ([]string, error) {
	fu.mu.Lock()
	defer fu.mu.Unlock()
	var kept []string
	for _, id := range fu.enrolled[userID] {
		if id != courseID {
			kept = append(kept, id)
		}
	}
	fu.enrolled[userID] = kept
	return kept, nil
}

func (fu *fakeUsers) EnrolledCourses(ctx context.Context, userID string) ([]string, error) {
	fu.mu.Lock()
	defer fu.mu.Unlock()
	return fu.enrolled[userID], nil
}

// request build an echo context for target, body is sent as JSON when not nil
func request(t *testing.T, method, target string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func withParams(c echo.Context, pairs ...string) echo.Context {
	var names, values []string
	for i := 0; i+1 < len(pairs); i += 2 {
		names = append(names, pairs[i])
		values = append(values, pairs[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c
}

func asUser(c echo.Context, uid string) echo.Context {
	testJWT.SetContextToken(c, &auth.AppTokenClaims{UID: uid, Email: uid + "@example.com"})
	return c
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	require.Equal(t, code, rec.Code, rec.Body.String())
}

