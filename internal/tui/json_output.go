package tui

import (
	"encoding/json"
	"errors"
	"io"
)

// JSONOutput writes every message as a standalone JSON object.
type JSONOutput struct {
	w       io.Writer
	encoder *json.Encoder
}

// NewJSONOutput creates a new JSONOutput.
func NewJSONOutput(w io.Writer) *JSONOutput {
	return &JSONOutput{
		w:       w,
		encoder: json.NewEncoder(w),
	}
}

type jsonMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type jsonError struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Context    string `json:"context,omitempty"`
}

type jsonMarkdown struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Success outputs {"type": "success", "message": "..."}.
func (o *JSONOutput) Success(msg string) {
	//nolint:errchkjson // Method has no error return per interface contract
	_ = o.encoder.Encode(jsonMessage{Type: "success", Message: msg})
}

// Error outputs the error with any wrapped detail. ActionableError
// suggestion and context are carried as their own fields.
func (o *JSONOutput) Error(err error) {
	jsonErr := jsonError{
		Type:    "error",
		Message: err.Error(),
	}

	var ae *ActionableError
	if errors.As(err, &ae) {
		jsonErr.Suggestion = ae.Suggestion
		jsonErr.Context = ae.Context
	}

	if wrapped := errors.Unwrap(err); wrapped != nil {
		jsonErr.Details = wrapped.Error()
	}

	//nolint:errchkjson // Method has no error return per interface contract
	_ = o.encoder.Encode(jsonErr)
}

// Warning outputs {"type": "warning", "message": "..."}.
func (o *JSONOutput) Warning(msg string) {
	//nolint:errchkjson // Method has no error return per interface contract
	_ = o.encoder.Encode(jsonMessage{Type: "warning", Message: msg})
}

// Info outputs {"type": "info", "message": "..."}.
func (o *JSONOutput) Info(msg string) {
	//nolint:errchkjson // Method has no error return per interface contract
	_ = o.encoder.Encode(jsonMessage{Type: "info", Message: msg})
}

// Table outputs the rows as an array of objects keyed by header. Missing
// cells become empty strings.
func (o *JSONOutput) Table(headers []string, rows [][]string) {
	result := make([]map[string]string, 0, len(rows))
	if len(headers) > 0 {
		for _, row := range rows {
			obj := make(map[string]string, len(headers))
			for i, h := range headers {
				if i < len(row) {
					obj[h] = row[i]
				} else {
					obj[h] = ""
				}
			}
			result = append(result, obj)
		}
	}
	//nolint:errchkjson // Method has no error return per interface contract
	_ = o.encoder.Encode(result)
}

// Markdown outputs the raw document, unrendered.
func (o *JSONOutput) Markdown(doc string) {
	//nolint:errchkjson // Method has no error return per interface contract
	_ = o.encoder.Encode(jsonMarkdown{Type: "markdown", Content: doc})
}

// JSON outputs an arbitrary value as JSON.
func (o *JSONOutput) JSON(v any) error {
	return o.encoder.Encode(v)
}
