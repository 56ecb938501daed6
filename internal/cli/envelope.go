package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"

	"github.com/mrz1836/notionflow/internal/errors"
	"github.com/mrz1836/notionflow/internal/tui"
)

// errorEnvelope is the JSON shape of every failed command:
//
//	{"error_code": "TASK_BLOCKED", "message": "...", "action": "...", "details": "..."}
type errorEnvelope struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	Action    string `json:"action,omitempty"`
	Details   string `json:"details,omitempty"`
}

// newErrorEnvelope maps err to its envelope. Details carries the full error
// text when it adds to the user message.
func newErrorEnvelope(err error) errorEnvelope {
	msg, action := errors.Actionable(err)

	var ae *tui.ActionableError
	if stderrors.As(err, &ae) && ae.Suggestion != "" {
		action = ae.Suggestion
	}

	env := errorEnvelope{
		ErrorCode: errors.Code(err),
		Message:   msg,
		Action:    action,
	}
	if detail := err.Error(); detail != msg {
		env.Details = detail
	}
	return env
}

// renderError writes err to stdout as an envelope in JSON mode, or to stderr
// as a styled message with its suggested action otherwise.
func renderError(stdout, stderr io.Writer, format string, err error) {
	env := newErrorEnvelope(err)

	if format == OutputJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		//nolint:errchkjson // nothing left to report a failed error write to
		_ = enc.Encode(env)
		return
	}

	tui.NewTTYOutput(stderr).Error(tui.NewActionableError(err.Error(), env.Action))
}
