// Package errors provides centralized error handling for notionflow.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrNotFound indicates that the requested entity does not exist in the store
	// (deleted, archived, or never created).
	ErrNotFound = errors.New("entity not found")

	// ErrTaskBlocked indicates that a task cannot start because at least one of
	// its dependencies is not completed or could not be resolved.
	ErrTaskBlocked = errors.New("task has incomplete dependencies")

	// ErrNoReadyTask indicates that no backlog or claimed task is ready to start.
	ErrNoReadyTask = errors.New("no ready task found")

	// ErrInvalidTransition indicates an attempt to make an invalid status transition.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDependencyCycle indicates that adding a dependency would create a cycle.
	ErrDependencyCycle = errors.New("dependency cycle detected")

	// ErrWorkspaceNotInitialized indicates that no database ID mapping exists yet.
	ErrWorkspaceNotInitialized = errors.New("workspace not initialized")

	// ErrDatabaseNotConfigured indicates that a logical database name has no ID mapping.
	ErrDatabaseNotConfigured = errors.New("database not configured")

	// ErrHistoryWrite indicates that a revision could not be persisted to local storage.
	ErrHistoryWrite = errors.New("history write failed")

	// ErrHistoryCorrupted indicates that a history file contains an unreadable line.
	ErrHistoryCorrupted = errors.New("history file corrupted")

	// ErrNotionAPI indicates that the Notion API returned an error response.
	ErrNotionAPI = errors.New("notion api error")

	// ErrRateLimited indicates that the Notion API rejected the request with HTTP 429.
	ErrRateLimited = errors.New("notion api rate limited")

	// ErrUnauthorized indicates that the Notion integration token was missing or rejected.
	ErrUnauthorized = errors.New("notion api unauthorized")

	// ErrPropertyType indicates a property value had an unexpected wire type.
	ErrPropertyType = errors.New("unexpected property type")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidNotion indicates an invalid Notion client configuration value.
	ErrConfigInvalidNotion = errors.New("invalid notion configuration")

	// ErrConfigInvalidHistory indicates an invalid history configuration value.
	ErrConfigInvalidHistory = errors.New("invalid history configuration")

	// ErrConfigInvalidSelector indicates an invalid selector configuration value.
	ErrConfigInvalidSelector = errors.New("invalid selector configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrInvalidArgument indicates that an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrLockTimeout indicates a file lock could not be acquired within the timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrPathTraversal indicates an attempt to use path traversal in an identifier
	// that becomes part of a file path.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrNonInteractiveMode indicates that an operation requiring input
	// was attempted in non-interactive mode.
	ErrNonInteractiveMode = errors.New("interactive input required")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}

// Wrap adds context to errors at package boundaries.
// It returns nil if err is nil, allowing for safe inline usage:
//
//	return errors.Wrap(store.Update(ctx, id, props), "failed to persist status")
//
// The wrapped error preserves the chain so errors.Is() keeps working.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf adds formatted context to errors at package boundaries.
// It returns nil if err is nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
