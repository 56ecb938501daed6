package errors

import "errors"

// ErrorInfo holds user-facing message, suggested action and envelope code for an error.
type ErrorInfo struct {
	// Code is the machine-readable error code used in the CLI error envelope.
	Code string
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// CodeInternal is the envelope code for errors that match no known sentinel.
const CodeInternal = "INTERNAL_ERROR"

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing info.
// Order matters for wrapped errors: the first errors.Is() match wins.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Workflow
	// ===================
	{
		err: ErrTaskBlocked,
		info: ErrorInfo{
			Code:    "TASK_BLOCKED",
			Message: "The task has incomplete dependencies and cannot start yet.",
			Action:  "Run 'notionflow task deps <id>' to see which dependencies are blocking.",
		},
	},
	{
		err: ErrNoReadyTask,
		info: ErrorInfo{
			Code:    "NO_READY_TASK",
			Message: "No backlog or claimed task is ready to start.",
			Action:  "Complete blocking dependencies or create new tasks.",
		},
	},
	{
		err: ErrInvalidTransition,
		info: ErrorInfo{
			Code:    "INVALID_TRANSITION",
			Message: "The task cannot move to the requested status from its current status.",
			Action:  "Check the task status with 'notionflow task show <id>'.",
		},
	},
	{
		err: ErrDependencyCycle,
		info: ErrorInfo{
			Code:    "DEPENDENCY_CYCLE",
			Message: "Adding this dependency would create a dependency cycle.",
			Action:  "Remove one of the dependencies in the reported cycle.",
		},
	},
	{
		err: ErrNotFound,
		info: ErrorInfo{
			Code:    "NOT_FOUND",
			Message: "The requested page or database was not found.",
			Action:  "Check the ID and that the integration has access to the page.",
		},
	},

	// ===================
	// Workspace & Config
	// ===================
	{
		err: ErrWorkspaceNotInitialized,
		info: ErrorInfo{
			Code:    "WORKSPACE_NOT_INITIALIZED",
			Message: "The workspace has not been initialized.",
			Action:  "Run 'notionflow init' first.",
		},
	},
	{
		err: ErrDatabaseNotConfigured,
		info: ErrorInfo{
			Code:    "DATABASE_NOT_CONFIGURED",
			Message: "A required database is missing from the workspace configuration.",
			Action:  "Run 'notionflow init' again and provide all database IDs.",
		},
	},
	{
		err: ErrConfigNil,
		info: ErrorInfo{
			Code:    "CONFIG_INVALID",
			Message: "Configuration could not be loaded.",
			Action:  "Check ~/.notionflow/config.yaml for syntax errors.",
		},
	},
	{
		err: ErrConfigInvalidNotion,
		info: ErrorInfo{
			Code:    "CONFIG_INVALID",
			Message: "The Notion client configuration is invalid.",
			Action:  "Review the notion section with 'notionflow config show'.",
		},
	},
	{
		err: ErrConfigInvalidHistory,
		info: ErrorInfo{
			Code:    "CONFIG_INVALID",
			Message: "The history configuration is invalid.",
			Action:  "Review the history section with 'notionflow config show'.",
		},
	},
	{
		err: ErrConfigInvalidSelector,
		info: ErrorInfo{
			Code:    "CONFIG_INVALID",
			Message: "The selector configuration is invalid.",
			Action:  "Review the selector section with 'notionflow config show'.",
		},
	},

	// ===================
	// Notion API
	// ===================
	{
		err: ErrUnauthorized,
		info: ErrorInfo{
			Code:    "UNAUTHORIZED",
			Message: "Notion rejected the integration token.",
			Action:  "Set NOTION_TOKEN to a valid internal integration secret.",
		},
	},
	{
		err: ErrRateLimited,
		info: ErrorInfo{
			Code:    "RATE_LIMITED",
			Message: "Notion API rate limit exceeded.",
			Action:  "Wait a few seconds and retry.",
		},
	},
	{
		err: ErrNotionAPI,
		info: ErrorInfo{
			Code:    "NOTION_API_ERROR",
			Message: "The Notion API returned an error.",
			Action:  "Retry the command; run with -v for request details.",
		},
	},
	{
		err: ErrPropertyType,
		info: ErrorInfo{
			Code:    "PROPERTY_TYPE_MISMATCH",
			Message: "A database property has an unexpected type.",
			Action:  "Check the database schema matches the expected property types.",
		},
	},

	// ===================
	// History
	// ===================
	{
		err: ErrHistoryWrite,
		info: ErrorInfo{
			Code:    "HISTORY_WRITE_FAILED",
			Message: "The change could not be recorded in the local history.",
			Action:  "Check permissions on ~/.notionflow/history.",
		},
	},
	{
		err: ErrHistoryCorrupted,
		info: ErrorInfo{
			Code:    "HISTORY_CORRUPTED",
			Message: "A local history file could not be parsed.",
			Action:  "Inspect the reported file and remove the malformed line.",
		},
	},
	{
		err: ErrLockTimeout,
		info: ErrorInfo{
			Code:    "LOCK_TIMEOUT",
			Message: "Another process is writing the same history file.",
			Action:  "Retry the command.",
		},
	},

	// ===================
	// Input
	// ===================
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Code:    "INVALID_ARGUMENT",
			Message: "The output format is not supported.",
			Action:  "Use --output text or --output json.",
		},
	},
	{
		err: ErrInvalidArgument,
		info: ErrorInfo{
			Code:    "INVALID_ARGUMENT",
			Message: "An invalid argument was provided.",
			Action:  "Check the command help for valid arguments.",
		},
	},
	{
		err: ErrEmptyValue,
		info: ErrorInfo{
			Code:    "INVALID_ARGUMENT",
			Message: "A required value was empty.",
			Action:  "Check the command help for required arguments.",
		},
	},
	{
		err: ErrPathTraversal,
		info: ErrorInfo{
			Code:    "INVALID_ARGUMENT",
			Message: "The identifier contains path separators.",
			Action:  "Use a plain page ID.",
		},
	},
	{
		err: ErrNonInteractiveMode,
		info: ErrorInfo{
			Code:    "INVALID_ARGUMENT",
			Message: "This command needs input that was not provided.",
			Action:  "Pass the required flags when not running in a terminal.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel error matches.
//
//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// It first tries a direct map lookup for unwrapped sentinel errors,
// then falls back to errors.Is() traversal for wrapped errors.
func getErrorInfo(err error) ErrorInfo {
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Code: CodeInternal, Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve the issue.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}

// Code returns the envelope error code for err, or CodeInternal when no
// sentinel matches. Returns an empty string for nil.
func Code(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Code
}
