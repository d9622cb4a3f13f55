package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
	RetryAfter int      // seconds, set on 429 only
	Details    []string // individual validation messages
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// As returns the typed error if err is (or wraps) an ErrorWithStatusCode.
func As(err error) (*ErrorWithStatusCode, bool) {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func HasStatus(err error, status int) bool {
	e, ok := As(err)
	return ok && e.StatusCode == status
}

// ClientInput is a malformed or missing request field.
func ClientInput(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusBadRequest}
}

// Validation joins every failed check into one message, keeping the list in Details.
func Validation(messages []string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{
		Message:    strings.Join(messages, ". "),
		StatusCode: http.StatusBadRequest,
		Details:    messages,
	}
}

func Auth(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusUnauthorized}
}

func RateLimited(retryAfterSeconds int) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{
		Message:    fmt.Sprintf("Please wait %d seconds before submitting again.", retryAfterSeconds),
		StatusCode: http.StatusTooManyRequests,
		RetryAfter: retryAfterSeconds,
	}
}

func MethodNotAllowed() *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: "Method not allowed", StatusCode: http.StatusMethodNotAllowed}
}

// ServerConfig, Delivery and Storage carry only user-safe text; details go to the log.

func ServerConfig(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusInternalServerError}
}

func Delivery(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusInternalServerError}
}

func Storage(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusInternalServerError}
}
