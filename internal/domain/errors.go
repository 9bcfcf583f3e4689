package domain

import "errors"

// ErrNotFound referenced course, module or lesson does not exist in the content tree
var ErrNotFound = errors.New("No such course, module or lesson")

// ErrStorageUnavailable progress persistence failed to read or write
var ErrStorageUnavailable = errors.New("Progress storage is unavailable")

// ErrInvalidScore quiz score outside [0,100]
var ErrInvalidScore = errors.New("Quiz score must be between 0 and 100")

// ErrNotQuiz lesson does not carry a quiz
var ErrNotQuiz = errors.New("Lesson is not a quiz")

// ErrLocked lesson is gated by an unfinished prerequisite
var ErrLocked = errors.New("Lesson is locked")

// ErrInvalidCourse course tree violates a structural rule
var ErrInvalidCourse = errors.New("Course definition is invalid")

// ErrNoSuchUser failed to validate the credential
var ErrNoSuchUser = errors.New("No such user or password is incorrect")

// ErrDuplicatedUser unique key constraint violation
var ErrDuplicatedUser = errors.New("Email is already registered")

// ErrUserTooManyRetry login attempts exceeded
var ErrUserTooManyRetry = errors.New("Too many login attempts")
