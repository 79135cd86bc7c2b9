package http

import (
	"fmt"
	"net/http"
)

// AppError is a failure the API reports to the client verbatim. Status picks
// the HTTP code and never leaves the server.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithParam attaches a detail the client can act on, such as the missing field.
func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = map[string]interface{}{}
	}
	e.Params[key] = value
	return e
}

// WithError keeps err for logs and errors.Is without exposing it in the body.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// errorClass pairs a default code with its HTTP status.
type errorClass struct {
	code   string
	status int
}

var (
	badRequest    = errorClass{"ERR_BAD_REQUEST", http.StatusBadRequest}
	notFound      = errorClass{"ERR_NOT_FOUND", http.StatusNotFound}
	unprocessable = errorClass{"ERR_UNPROCESSABLE", http.StatusUnprocessableEntity}
	rateLimited   = errorClass{"ERR_RATE_LIMITED", http.StatusTooManyRequests}
	internal      = errorClass{"ERR_INTERNAL", http.StatusInternalServerError}
)

func (k errorClass) errorf(format string, a ...interface{}) *AppError {
	msg := format
	if len(a) > 0 {
		msg = fmt.Sprintf(format, a...)
	}
	return &AppError{Code: k.code, Message: msg, Status: k.status}
}

func NotFoundErrorf(format string, a ...interface{}) *AppError {
	return notFound.errorf(format, a...)
}

func BadRequestErrorf(format string, a ...interface{}) *AppError {
	return badRequest.errorf(format, a...)
}

// UnprocessableError reports a well-formed request that cannot be scored,
// under a code naming the reason.
func UnprocessableError(code, message string) *AppError {
	e := unprocessable.errorf("%s", message)
	if code != "" {
		e.Code = code
	}
	return e
}

func TooManyRequestsError() *AppError {
	return rateLimited.errorf("too many requests")
}

func InternalErrorf(format string, a ...interface{}) *AppError {
	return internal.errorf(format, a...)
}
