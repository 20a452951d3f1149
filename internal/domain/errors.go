package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrRunCancelled is the failure outcome of a run that was terminated before completion.
	ErrRunCancelled = errors.New("run cancelled")
	// ErrRunTimeout is the failure outcome of a run that exceeded the configured timeout.
	ErrRunTimeout = errors.New("run timed out")
)

// PathNotFoundError is returned when an executable path does not resolve to a file.
type PathNotFoundError struct {
	Path string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("test executable not found: %s", e.Path)
}

// InsufficientPrivilegeError is returned when the current user may not execute the file.
// It is recoverable through a permission repair or by choosing another file.
type InsufficientPrivilegeError struct {
	Path string
}

func (e *InsufficientPrivilegeError) Error() string {
	return fmt.Sprintf("insufficient privileges to execute %s", e.Path)
}

// ListingRetrievalError is returned when the listing invocation exits non-zero.
type ListingRetrievalError struct {
	ExitCode       int
	ExecutablePath string
}

func (e *ListingRetrievalError) Error() string {
	return fmt.Sprintf("exit code %d was returned from the Google Test executable at %s; is it a valid Google Test executable?",
		e.ExitCode, e.ExecutablePath)
}

// MalformedListingError is returned when a test line appears before any suite line.
type MalformedListingError struct {
	Line int
	Text string
}

func (e *MalformedListingError) Error() string {
	return fmt.Sprintf("malformed listing: line %d %q has no enclosing suite", e.Line, e.Text)
}

// RunDispatchConflictError is returned when a listing is requested while a run
// or another listing of the same executable is outstanding.
type RunDispatchConflictError struct {
	ExecutablePath string
}

func (e *RunDispatchConflictError) Error() string {
	return fmt.Sprintf("a run of %s is already in progress", e.ExecutablePath)
}
