package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is returned for every failed backend call. Status is zero when the
// request never completed (dial failure, timeout, broken body).
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Transport reports whether the request failed before a response arrived.
func (e *Error) Transport() bool { return e.Status == 0 }

// IsStatus reports whether err is a classified backend error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsNotFound is shorthand for IsStatus(err, 404).
func IsNotFound(err error) bool { return IsStatus(err, http.StatusNotFound) }

// IsTransport reports whether err is a transport-level failure.
func IsTransport(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Transport()
}

// Message returns the text to show in a banner for err. Transport failures
// collapse to a generic message; classified errors keep the backend message.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Transport() {
			return transportMessage
		}
		return apiErr.Message
	}
	return err.Error()
}

const transportMessage = "could not complete operation"

func transportError(err error) *Error {
	return &Error{Message: transportMessage, Err: err}
}

func statusError(status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("request failed: %d", status)
	}
	return &Error{Status: status, Message: message}
}
