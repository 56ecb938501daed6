// Package constants provides centralized constant values used throughout notionflow.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory and file names used by notionflow for local state.
const (
	// AppHome is the hidden directory name where notionflow stores all its data.
	// This directory is created in the user's home directory.
	AppHome = ".notionflow"

	// HistoryDir is the directory under AppHome holding per-entity revision logs.
	HistoryDir = "history"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// WorkspaceFileName is the JSON file mapping logical database names to IDs.
	WorkspaceFileName = "workspace.json"

	// OfflineSnapshotFileName is the local record store used with --offline.
	OfflineSnapshotFileName = "offline.json"

	// HistoryFileExt is the extension of per-entity revision logs (JSON lines).
	HistoryFileExt = ".jsonl"
)

// Logical database names used as keys in the workspace configuration.
const (
	DatabaseTasks         = "Tasks"
	DatabaseVersions      = "Versions"
	DatabaseProjects      = "Projects"
	DatabaseOrganizations = "Organizations"
)

// Entity types recorded in the change history.
const (
	EntityTask         = "task"
	EntityVersion      = "version"
	EntityProject      = "project"
	EntityOrganization = "organization"
)

// Property names of the Tasks database.
const (
	PropTitle          = "Title"
	PropStatus         = "Status"
	PropPriority       = "Priority"
	PropType           = "Type"
	PropDescription    = "Description"
	PropDependencies   = "Dependencies"
	PropEstimatedHours = "Estimated Hours"
	PropActualHours    = "Actual Hours"
	PropVersion        = "Version"
)

// Property names of the Versions and Projects databases.
const (
	PropName    = "Name"
	PropProject = "Project"
)

// Notion API defaults.
const (
	// NotionBaseURL is the root of the Notion REST API.
	NotionBaseURL = "https://api.notion.com/v1"

	// NotionAPIVersion is sent as the Notion-Version header.
	NotionAPIVersion = "2022-06-28"

	// NotionTokenEnvVar is the default environment variable holding the integration token.
	NotionTokenEnvVar = "NOTION_TOKEN"

	// NotionPageSize is the page size used when querying databases.
	NotionPageSize = 100
)

// Timeout and retry defaults for Notion API calls.
const (
	// DefaultNotionTimeout bounds every HTTP request to the Notion API.
	DefaultNotionTimeout = 30 * time.Second

	// MaxRetryAttempts is the maximum number of attempts for retryable API errors.
	MaxRetryAttempts = 3

	// InitialBackoff is the delay before the first retry.
	InitialBackoff = 1 * time.Second

	// MaxBackoff caps the exponential backoff delay.
	MaxBackoff = 10 * time.Second

	// BackoffMultiplier grows the delay between attempts.
	BackoffMultiplier = 2.0
)

// History defaults.
const (
	// HistoryLockTimeout is the maximum duration to wait for a per-entity history lock.
	HistoryLockTimeout = 5 * time.Second

	// DefaultAuditDays is the default look-back window of the audit log.
	DefaultAuditDays = 7

	// DefaultRedisKeyPrefix namespaces history keys in redis.
	DefaultRedisKeyPrefix = "notionflow:history"
)

// DefaultRecommendationCount is the default number of tasks returned by the selector.
const DefaultRecommendationCount = 5
