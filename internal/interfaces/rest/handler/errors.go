package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-gate/internal/domain"
	"github.com/pot-code/course-gate/internal/infrastructure/validate"
)

// RESTStandardError response error
type RESTStandardError struct {
	Type    string `json:"type,omitempty"`
	Code    int    `json:"code"`
	Title   string `json:"title"`
	Detail  string `json:"detail,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

func NewRESTStandardError(code int, detail string) *RESTStandardError {
	return &RESTStandardError{
		Code:   code,
		Title:  http.StatusText(code),
		Detail: detail,
	}
}

func (re RESTStandardError) Error() string {
	return re.Detail
}

func (re RESTStandardError) SetTraceID(traceID string) RESTStandardError {
	re.TraceID = traceID
	return re
}

// RESTValidationError standard validation error
type RESTValidationError struct {
	RESTStandardError
	InvalidParams []*validate.FieldError `json:"invalid_params"`
}

func NewRESTValidationError(code int, detail string, internal []*validate.FieldError) *RESTValidationError {
	return &RESTValidationError{
		RESTStandardError: RESTStandardError{
			Code:   code,
			Title:  http.StatusText(code),
			Detail: detail,
		},
		InvalidParams: internal,
	}
}

func (rve RESTValidationError) Error() string {
	return rve.Detail
}

func (rve RESTValidationError) SetTraceID(traceID string) RESTValidationError {
	rve.RESTStandardError.TraceID = traceID
	return rve
}

// StatusOf http status of a known domain error
func StatusOf(err error) (int, bool) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, domain.ErrLocked), errors.Is(err, domain.ErrUserTooManyRetry):
		return http.StatusForbidden, true
	case errors.Is(err, domain.ErrInvalidScore), errors.Is(err, domain.ErrNotQuiz), errors.Is(err, domain.ErrInvalidCourse):
		return http.StatusBadRequest, true
	case errors.Is(err, domain.ErrDuplicatedUser):
		return http.StatusConflict, true
	case errors.Is(err, domain.ErrNoSuchUser):
		return http.StatusUnauthorized, true
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, true
	}
	return 0, false
}

// respondError write known domain errors as JSON, anything else goes up to the error handling middleware
func respondError(c echo.Context, err error) error {
	if code, ok := StatusOf(err); ok {
		return c.JSON(code, NewRESTStandardError(code, err.Error()).SetTraceID(traceID(c)))
	}
	return err
}

func respondInvalid(c echo.Context, detail string, fields []*validate.FieldError) error {
	return c.JSON(http.StatusBadRequest,
		NewRESTValidationError(http.StatusBadRequest, detail, fields).SetTraceID(traceID(c)))
}

func respondUnbindable(c echo.Context, entity string, err error) error {
	detail := err.Error()
	if he, ok := err.(*echo.HTTPError); ok && he.Internal != nil {
		detail = he.Internal.Error()
	}
	return c.JSON(http.StatusUnprocessableEntity,
		NewRESTStandardError(http.StatusUnprocessableEntity, "Failed to bind "+entity+": "+detail).SetTraceID(traceID(c)))
}

func traceID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
