package service

import (
	"errors"
	"fmt"
	"net/http"
)

// OperationError is returned when a Jira call made on behalf of an
// operation fails. Its message is prefixed by the failed operation.
type OperationError struct {
	// Op describes the failed operation (e.g., "failed to fetch issue").
	Op string

	// Key is the issue key the operation was about, if any.
	Key string

	// Status is the HTTP status Jira answered with, or 0.
	Status int

	Message string
}

func (e *OperationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Key, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// IsNotFound reports whether err (or any error in its chain) is an
// OperationError caused by a 404 response.
func IsNotFound(err error) bool {
	var opErr *OperationError
	return errors.As(err, &opErr) && opErr.Status == http.StatusNotFound
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Status
	}
	return 0
}
