package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorHandlingOption options for error handling
type ErrorHandlingOption struct {
	// Handler receives panics and unexpected errors
	Handler func(c echo.Context, err error)
	// HTTPError receives echo errors such as unmatched routes
	HTTPError func(c echo.Context, err *echo.HTTPError)
}

// ErrorHandling handle panic returned from controller
// **DO NOT return error anymore**
func ErrorHandling(options ...*ErrorHandlingOption) echo.MiddlewareFunc {
	custom := &ErrorHandlingOption{
		Handler: func(c echo.Context, err error) {
			c.String(http.StatusInternalServerError, err.Error())
		},
		HTTPError: func(c echo.Context, err *echo.HTTPError) {
			c.String(err.Code, err.Error())
		},
	}
	if len(options) > 0 {
		option := options[0]
		if option.Handler != nil {
			custom.Handler = option.Handler
		}
		if option.HTTPError != nil {
			custom.HTTPError = option.HTTPError
		}
	}
	handler, httpError := custom.Handler, custom.HTTPError
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("panic: %v", r)
					}
					handler(c, err)
				}
			}()
			if err := next(c); err != nil {
				if v, ok := err.(*echo.HTTPError); ok {
					httpError(c, v)
				} else {
					handler(c, err)
				}
			}
			return nil
		}
	}
}
