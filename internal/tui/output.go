// Package tui renders command results for a terminal or for machine consumers.
//
// Two Output implementations exist: TTYOutput styles messages with Lip Gloss
// and renders markdown with Glamour, JSONOutput emits one JSON document per
// call so scripts can consume the stream.
package tui

import (
	"io"
)

// Output format names accepted by NewOutput.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Output provides methods for structured output to a terminal.
type Output interface {
	// Success prints a success message.
	Success(msg string)
	// Error prints an error message.
	Error(err error)
	// Warning prints a warning message.
	Warning(msg string)
	// Info prints an informational message.
	Info(msg string)
	// Table prints rows under headers.
	Table(headers []string, rows [][]string)
	// Markdown prints a markdown document.
	Markdown(doc string)
	// JSON outputs a value as JSON.
	JSON(v any) error
}

// NewOutput creates the appropriate output based on format.
func NewOutput(w io.Writer, format string) Output {
	if format == FormatJSON {
		return NewJSONOutput(w)
	}
	return NewTTYOutput(w)
}

var (
	_ Output = (*TTYOutput)(nil)
	_ Output = (*JSONOutput)(nil)
)
