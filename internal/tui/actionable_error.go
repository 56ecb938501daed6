package tui

// ActionableError pairs an error message with the next step the user should
// take. TTYOutput prints the suggestion under the message:
//
//	✗ workspace not configured
//	  ▸ Try: notionflow init
type ActionableError struct {
	// Message is the primary error message.
	Message string

	// Suggestion starts with a verb, e.g. "Run: notionflow init".
	Suggestion string

	// Context is appended to the message in parentheses when set.
	Context string

	// Err is the underlying cause, if any.
	Err error
}

// NewActionableError creates a new ActionableError with message and suggestion.
func NewActionableError(msg, suggestion string) *ActionableError {
	return &ActionableError{
		Message:    msg,
		Suggestion: suggestion,
	}
}

// Error returns the message with context, e.g. "file not found (/path)".
func (e *ActionableError) Error() string {
	if e.Context != "" {
		return e.Message + " (" + e.Context + ")"
	}
	return e.Message
}

// Unwrap returns the underlying cause so errors.Is sees through the
// suggestion.
func (e *ActionableError) Unwrap() error {
	return e.Err
}

// WithContext sets the context and returns e for chaining.
func (e *ActionableError) WithContext(ctx string) *ActionableError {
	e.Context = ctx
	return e
}

// WithCause sets the underlying cause and returns e for chaining.
func (e *ActionableError) WithCause(err error) *ActionableError {
	e.Err = err
	return e
}
