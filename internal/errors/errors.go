package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/grove/internal/logger"
)

// ValidationError reports malformed or out-of-range input. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// WindowClosedError reports a create attempted outside its posting window.
// Opens and Closes are HH:MM in the reference timezone.
type WindowClosedError struct {
	Kind   string
	Status string
	Opens  string
	Closes string
}

func (e *WindowClosedError) Error() string {
	return fmt.Sprintf("%s window closed (%s): new entries accepted %s-%s", e.Kind, e.Status, e.Opens, e.Closes)
}

// ConflictError reports a violated uniqueness invariant.
type ConflictError struct {
	Resource string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Reason)
}

// NotFoundError reports a referenced user or post that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// UpstreamStoreError wraps an infrastructure failure from the read or write port.
// It is the only category a caller may retry.
type UpstreamStoreError struct {
	Op  string
	Err error
}

func (e *UpstreamStoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamStoreError) Unwrap() error {
	return e.Err
}

// Invalid builds a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFound builds a NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// Conflict builds a ConflictError.
func Conflict(resource, reason string) error {
	return &ConflictError{Resource: resource, Reason: reason}
}

// Upstream wraps err as an UpstreamStoreError. A nil err stays nil.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	var up *UpstreamStoreError
	if stderrors.As(err, &up) {
		return err
	}
	return &UpstreamStoreError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return stderrors.As(err, &target)
}

func IsWindowClosed(err error) bool {
	var target *WindowClosedError
	return stderrors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return stderrors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return stderrors.As(err, &target)
}

func IsUpstream(err error) bool {
	var target *UpstreamStoreError
	return stderrors.As(err, &target)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
