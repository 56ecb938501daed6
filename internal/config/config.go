// Package config provides configuration management for notionflow with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (NOTIONFLOW_* prefix)
//  3. Project config (.notionflow/config.yaml)
//  4. Global config (~/.notionflow/config.yaml)
//  5. Built-in defaults
//
// The workspace file (logical database name → database ID) is separate from
// this configuration; see Workspace.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// History backend names.
const (
	BackendLocal = "local"
	BackendRedis = "redis"
)

// Config is the root configuration structure for notionflow.
type Config struct {
	// Notion contains settings for the Notion API client.
	Notion NotionConfig `yaml:"notion" mapstructure:"notion"`

	// Workspace locates the workspace file.
	Workspace WorkspaceConfig `yaml:"workspace" mapstructure:"workspace"`

	// History contains settings for the change history tracker.
	History HistoryConfig `yaml:"history" mapstructure:"history"`

	// Selector contains settings for task recommendations.
	Selector SelectorConfig `yaml:"selector" mapstructure:"selector"`

	// Author is recorded on every revision. Empty falls back to $USER.
	Author string `yaml:"author" mapstructure:"author"`
}

// NotionConfig contains settings for talking to the Notion API.
type NotionConfig struct {
	// BaseURL is the API root.
	// Default: https://api.notion.com/v1
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// APIVersion is sent as the Notion-Version header.
	// Default: 2022-06-28
	APIVersion string `yaml:"api_version" mapstructure:"api_version"`

	// TokenEnvVar names the environment variable holding the integration token.
	// The token itself never lives in a config file.
	// Default: NOTION_TOKEN
	TokenEnvVar string `yaml:"token_env_var" mapstructure:"token_env_var"`

	// Timeout bounds every request.
	// Default: 30 seconds
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Retry controls backoff on rate limiting and server errors.
	Retry RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// RetryConfig controls retries of Notion API requests.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay" mapstructure:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay" mapstructure:"max_delay"`
	Multiplier   float64       `yaml:"multiplier" mapstructure:"multiplier"`
}

// WorkspaceConfig locates the workspace file.
type WorkspaceConfig struct {
	// File is the path of workspace.json. Empty means <home>/workspace.json.
	File string `yaml:"file" mapstructure:"file"`
}

// HistoryConfig contains settings for revision storage.
type HistoryConfig struct {
	// Dir is the root of the local per-entity history files.
	// Empty means <home>/history.
	Dir string `yaml:"dir" mapstructure:"dir"`

	// Backend is "local" or "redis". With redis, writes go to redis first
	// and fall back to the local files on any redis error.
	// Default: local
	Backend string `yaml:"backend" mapstructure:"backend"`

	// RedisURL is the redis connection URL, e.g. redis://localhost:6379/0.
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`

	// KeyPrefix namespaces history keys in redis.
	// Default: notionflow:history
	KeyPrefix string `yaml:"key_prefix" mapstructure:"key_prefix"`

	// LockTimeout bounds the wait for a per-entity history lock.
	// Default: 5 seconds
	LockTimeout time.Duration `yaml:"lock_timeout" mapstructure:"lock_timeout"`
}

// SelectorConfig contains settings for task recommendations.
type SelectorConfig struct {
	// DefaultCount is how many recommendations are returned when none is requested.
	// Default: 5
	DefaultCount int `yaml:"default_count" mapstructure:"default_count"`
}
