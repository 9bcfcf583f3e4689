package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pot-code/course-gate/internal/infrastructure/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingConfig access log options
type LoggingConfig struct {
	// Skipper defines a function to skip middleware.
	Skipper middleware.Skipper
}

// Logging access log line per request. 5xx logs at error, 4xx at warn, the rest at debug
func Logging(base *zap.Logger, options ...*LoggingConfig) echo.MiddlewareFunc {
	cfg := &LoggingConfig{
		Skipper: middleware.DefaultSkipper,
	}
	if len(options) > 0 {
		option := options[0]
		if option.Skipper != nil {
			cfg.Skipper = option.Skipper
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper(c) {
				return next(c)
			}
			start := time.Now()
			err := next(c)

			req := c.Request()
			code := c.Response().Status
			fields := []zap.Field{
				zap.String("trace.id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.String("http.request.method", req.Method),
				zap.String("url.path", req.URL.Path),
				zap.String("route", c.Path()),
				zap.String("client.address", c.RealIP()),
				zap.Int64("http.request.body.byte", req.ContentLength),
				zap.Int64("http.response.body.byte", c.Response().Size),
				zap.Int("http.response.status_code", code),
				zap.Duration("event.duration", time.Since(start)),
			}
			if names := c.ParamNames(); len(names) > 0 {
				fields = append(fields,
					zap.Strings("route.params.name", names),
					zap.Strings("route.params.value", c.ParamValues()),
				)
			}
			if ce := base.Check(levelOf(code), http.StatusText(code)); ce != nil {
				ce.Write(fields...)
			}
			return err
		}
	}
}

func levelOf(code int) zapcore.Level {
	switch {
	case code >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case code >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.DebugLevel
	}
}

// SetTraceLogger set logger binding with trace ID into context
func SetTraceLogger(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			logger := base.With(zap.String("trace.id", c.Response().Header().Get(echo.HeaderXRequestID)))
			c.SetRequest(r.WithContext(logging.SetLoggerInContext(r.Context(), logger)))
			return next(c)
		}
	}
}
