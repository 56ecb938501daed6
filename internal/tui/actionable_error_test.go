package tui

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nferrors "github.com/mrz1836/notionflow/internal/errors"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		msg      string
		context  string
		expected string
	}{
		{name: "without context", msg: "workspace not configured", expected: "workspace not configured"},
		{name: "with context", msg: "workspace not configured", context: "/tmp/ws.json", expected: "workspace not configured (/tmp/ws.json)"},
		{name: "empty message", msg: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := NewActionableError(tt.msg, "Run: notionflow init")
			if tt.context != "" {
				err = err.WithContext(tt.context)
			}
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestActionableError_Chaining(t *testing.T) {
	t.Parallel()

	err := NewActionableError("workspace not configured", "Run: notionflow init")
	same := err.WithContext("~/.notionflow/workspace.json").WithCause(nferrors.ErrWorkspaceNotInitialized)

	assert.Same(t, err, same)
	assert.Equal(t, "Run: notionflow init", err.Suggestion)
	assert.Equal(t, "workspace not configured (~/.notionflow/workspace.json)", err.Error())
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("loading: %w",
		NewActionableError("workspace not configured", "Run: notionflow init").WithCause(nferrors.ErrWorkspaceNotInitialized))

	var ae *ActionableError
	require.ErrorAs(t, wrapped, &ae)
	assert.Equal(t, "Run: notionflow init", ae.Suggestion)
	require.ErrorIs(t, wrapped, nferrors.ErrWorkspaceNotInitialized)

	assert.NoError(t, NewActionableError("x", "y").Unwrap())
}
