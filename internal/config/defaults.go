package config

import "github.com/mrz1836/notionflow/internal/constants"

// DefaultConfig returns a new Config with sensible default values.
// These defaults are the base layer that config files, environment
// variables, and CLI flags override.
func DefaultConfig() *Config {
	return &Config{
		Notion: NotionConfig{
			BaseURL:     constants.NotionBaseURL,
			APIVersion:  constants.NotionAPIVersion,
			TokenEnvVar: constants.NotionTokenEnvVar,
			Timeout:     constants.DefaultNotionTimeout,
			Retry: RetryConfig{
				MaxAttempts:  constants.MaxRetryAttempts,
				InitialDelay: constants.InitialBackoff,
				MaxDelay:     constants.MaxBackoff,
				Multiplier:   constants.BackoffMultiplier,
			},
		},
		History: HistoryConfig{
			Backend:     BackendLocal,
			KeyPrefix:   constants.DefaultRedisKeyPrefix,
			LockTimeout: constants.HistoryLockTimeout,
		},
		Selector: SelectorConfig{
			DefaultCount: constants.DefaultRecommendationCount,
		},
	}
}
