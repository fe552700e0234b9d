package repository

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when the requested task does not exist
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx response from the task service
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("task service: %d %s: %s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("task service: %d: %s", e.StatusCode, msg)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err means the task no longer exists
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// errorBody is the machine-readable error payload of the task service
type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
