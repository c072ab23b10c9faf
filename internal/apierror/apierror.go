// Package apierror defines the request-visible error taxonomy.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a terminal request failure.
type Code string

const (
	CodeUnauthenticated     Code = "unauthenticated"
	CodeForbidden           Code = "forbidden"
	CodeConflict            Code = "conflict"
	CodeInvalidSubscription Code = "invalid_subscription"
	CodeQuotaExceeded       Code = "quota_exceeded"
)

// Error is a request-terminal failure with an HTTP status mapping.
// None of these are retried internally.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"error"`
	status  int
}

func (e *Error) Error() string {
	return e.Message
}

// Status returns the HTTP status code for the error.
func (e *Error) Status() int {
	return e.status
}

func Unauthenticated(msg string) *Error {
	return &Error{Code: CodeUnauthenticated, Message: msg, status: http.StatusUnauthorized}
}

func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg, status: http.StatusForbidden}
}

func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg, status: http.StatusConflict}
}

func InvalidSubscription(tierID string) *Error {
	return &Error{
		Code:    CodeInvalidSubscription,
		Message: fmt.Sprintf("subscription tier %q is not recognized", tierID),
		status:  http.StatusPaymentRequired,
	}
}

// QuotaExceeded carries the configured limit and an upgrade hint.
func QuotaExceeded(limit int64) *Error {
	return &Error{
		Code:    CodeQuotaExceeded,
		Message: fmt.Sprintf("monthly request limit of %d reached - upgrade your plan to continue", limit),
		status:  http.StatusTooManyRequests,
	}
}

// From extracts an *Error from err, or nil if err is not one.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}
