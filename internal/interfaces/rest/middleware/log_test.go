package middleware

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-gate/internal/infrastructure/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogging_LevelByStatus(t *testing.T) {
	tests := []struct {
		code int
		want zapcore.Level
	}{
		{http.StatusOK, zapcore.DebugLevel},
		{http.StatusForbidden, zapcore.WarnLevel},
		{http.StatusServiceUnavailable, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			c, _ := newContext()
			c.SetPath("/learn/:course")
			c.SetParamNames("course")
			c.SetParamValues("c1")

			err := Logging(zap.New(core))(func(c echo.Context) error {
				return c.NoContent(tt.code)
			})(c)
			require.NoError(t, err)

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.want, entry.Level)
			assert.Equal(t, http.StatusText(tt.code), entry.Message)
			fields := entry.ContextMap()
			assert.Equal(t, "/learn/:course", fields["route"])
			assert.EqualValues(t, tt.code, fields["http.response.status_code"])
		})
	}
}

func TestLogging_Skipper(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c, _ := newContext()

	mw := Logging(zap.New(core), &LoggingConfig{Skipper: func(echo.Context) bool { return true }})
	require.NoError(t, mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c))

	assert.Equal(t, 0, logs.Len())
}

func TestSetTraceLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	c, _ := newContext()
	c.Response().Header().Set(echo.HeaderXRequestID, "rid-1")

	err := SetTraceLogger(zap.New(core))(func(c echo.Context) error {
		logging.ExtractLoggerFromContext(c.Request().Context()).Info("inside")
		return nil
	})(c)
	require.NoError(t, err)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "rid-1", logs.All()[0].ContextMap()["trace.id"])
}
