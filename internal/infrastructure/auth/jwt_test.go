package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-gate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTUtil_SignAndValidate(t *testing.T) {
	ju := NewJWTUtil("HS256", "secret", "gate_token", time.Hour)

	tokenStr, err := ju.GenerateTokenStr(&domain.UserModel{ID: "u1", Email: "a@b.com", Name: "Ann"})
	require.NoError(t, err)

	claims, err := ju.Validate(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "Ann", claims.Name)
	assert.InDelta(t, time.Hour.Seconds(), claims.TimeRemaining().Seconds(), 5)
}

func TestJWTUtil_ValidateRejects(t *testing.T) {
	ju := NewJWTUtil("HS256", "secret", "gate_token", time.Hour)

	other := NewJWTUtil("HS256", "other", "gate_token", time.Hour)
	foreign, err := other.GenerateTokenStr(&domain.UserModel{ID: "u1"})
	require.NoError(t, err)
	_, err = ju.Validate(foreign)
	assert.Error(t, err, "wrong secret")

	hs512, err := NewJWTUtil("HS512", "secret", "gate_token", time.Hour).GenerateTokenStr(&domain.UserModel{ID: "u1"})
	require.NoError(t, err)
	_, err = ju.Validate(hs512)
	assert.Error(t, err, "wrong algorithm")

	expired, err := ju.Sign(&AppTokenClaims{UID: "u1", StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Minute).Unix()}})
	require.NoError(t, err)
	_, err = ju.Validate(expired)
	assert.Error(t, err, "expired")
}

func TestJWTUtil_ExtractToken(t *testing.T) {
	ju := NewJWTUtil("HS256", "secret", "gate_token", time.Hour)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "gate_token", Value: "from-cookie"})
	req.Header.Set(echo.HeaderAuthorization, "Bearer from-header")
	token, err := ju.ExtractToken(e.NewContext(req, httptest.NewRecorder()))
	require.NoError(t, err)
	assert.Equal(t, "from-cookie", token)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer from-header")
	token, err = ju.ExtractToken(e.NewContext(req, httptest.NewRecorder()))
	require.NoError(t, err)
	assert.Equal(t, "from-header", token)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	_, err = ju.ExtractToken(e.NewContext(req, httptest.NewRecorder()))
	assert.ErrorIs(t, err, ErrTokenMissing)
}

func TestJWTUtil_ClientToken(t *testing.T) {
	ju := NewJWTUtil("HS256", "secret", "gate_token", time.Hour)
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	ju.SetClientToken(c, "abc")
	cookie := rec.Result().Cookies()[0]
	assert.Equal(t, "gate_token", cookie.Name)
	assert.Equal(t, "abc", cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestEmailAllowList(t *testing.T) {
	al := NewEmailAllowList([]string{" Admin@Example.com ", ""})

	assert.True(t, al.IsAdmin(&AppTokenClaims{Email: "admin@example.com"}))
	assert.False(t, al.IsAdmin(&AppTokenClaims{Email: "learner@example.com"}))
	assert.False(t, al.IsAdmin(nil))
	assert.False(t, NewEmailAllowList(nil).IsAdmin(&AppTokenClaims{Email: ""}))
}
