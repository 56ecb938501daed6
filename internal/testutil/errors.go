// Package testutil provides testing utilities for notionflow.
//
// This package contains mock errors used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
var (
	// ErrMockNetwork simulates a transport failure talking to the entity store.
	ErrMockNetwork = errors.New("network error")

	// ErrMockStoreUnavailable simulates an entity store that cannot serve a request.
	ErrMockStoreUnavailable = errors.New("entity store unavailable")

	// ErrMockRemoteHistory simulates a failing remote history backend.
	ErrMockRemoteHistory = errors.New("remote history unavailable")
)
