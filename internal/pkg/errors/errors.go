package errors

import (
	"errors"
	"net/http"
)

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *CustomError) Error() string {
	return e.Message
}

func BadRequest(msg string) error {
	return &CustomError{Code: http.StatusBadRequest, Message: msg}
}

func UnauthorizedError(msg string) error {
	return &CustomError{Code: http.StatusUnauthorized, Message: msg}
}

func Forbidden(msg string) error {
	return &CustomError{Code: http.StatusForbidden, Message: msg}
}

func NotFound(msg string) error {
	return &CustomError{Code: http.StatusNotFound, Message: msg}
}

// Conflict is returned when the target is already in a state that forbids the
// operation, e.g. paying a booking that is already paid.
func Conflict(msg string) error {
	return &CustomError{Code: http.StatusConflict, Message: msg}
}

func InternalServerError(msg string) error {
	return &CustomError{Code: http.StatusInternalServerError, Message: msg}
}

func ServiceUnavailable(msg string) error {
	return &CustomError{Code: http.StatusServiceUnavailable, Message: msg}
}

// Code returns the HTTP status carried by err, or 500 for foreign errors.
func Code(err error) int {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return http.StatusInternalServerError
}

func IsNotFound(err error) bool {
	return err != nil && Code(err) == http.StatusNotFound
}

func IsBadRequest(err error) bool {
	return err != nil && Code(err) == http.StatusBadRequest
}

func IsUnauthorized(err error) bool {
	return err != nil && Code(err) == http.StatusUnauthorized
}

// IsRetryable reports whether the caller should redeliver the work later.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	code := Code(err)
	return code == http.StatusServiceUnavailable || code == http.StatusInternalServerError
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
