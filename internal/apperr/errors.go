// Package apperr defines the error taxonomy shared by the services and the
// JSON envelope used to report it over HTTP.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Code classifies an application error.
type Code int

const (
	InvalidInput Code = 3000 + iota
	NotFound
	UploadError
)

const (
	StoreError Code = 1000 + iota
	Internal
)

var statusByCode = map[Code]int{
	InvalidInput: http.StatusBadRequest,
	NotFound:     http.StatusNotFound,
	UploadError:  http.StatusBadRequest,
	StoreError:   http.StatusInternalServerError,
	Internal:     http.StatusInternalServerError,
}

// AppError carries a client-facing message and, optionally, the cause.
type AppError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Status maps the error code to an HTTP status.
func (e *AppError) Status() int {
	if s, ok := statusByCode[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func Invalid(message string) *AppError          { return New(InvalidInput, message) }
func Missing(message string) *AppError          { return New(NotFound, message) }
func Upload(message string) *AppError           { return New(UploadError, message) }
func Store(message string, err error) *AppError { return Wrap(StoreError, message, err) }

// CodeOf returns the code of err, or Internal when err is not an AppError.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return Internal
}

// Envelope is the body written for every failed request.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Handle writes err as a JSON envelope and aborts the gin chain. Server-side
// failures are logged with their cause; the cause never reaches the client.
func Handle(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = Wrap(Internal, "Internal server error", err)
	}
	status := appErr.Status()
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.Int("code", int(appErr.Code)),
			zap.String("message", appErr.Message),
			zap.Error(appErr.Err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: appErr.Message})
}
