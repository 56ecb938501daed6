package constants

// Log file rotation settings for the CLI log file.
const (
	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.notionflow/logs/notionflow.log
	CLILogFileName = "notionflow.log"

	// LogMaxSizeMB is the size at which the log file is rotated.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated files kept.
	LogMaxBackups = 5

	// LogMaxAgeDays is how long rotated files are kept.
	LogMaxAgeDays = 30

	// LogCompress enables gzip compression of rotated files.
	LogCompress = true
)

// Configuration file names.
const (
	// GlobalConfigName is the name of the global configuration file in AppHome.
	GlobalConfigName = "config.yaml"

	// ProjectConfigDir is the per-project configuration directory.
	ProjectConfigDir = ".notionflow"
)

// Environment variables.
const (
	// HomeEnvVar overrides the AppHome location (used by tests and CI).
	HomeEnvVar = "NOTIONFLOW_HOME"

	// EnvPrefix is the viper environment variable prefix.
	EnvPrefix = "NOTIONFLOW"
)
