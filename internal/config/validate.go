package config

import (
	"net/url"

	"github.com/mrz1836/notionflow/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - notion.base_url must be an absolute URL
//   - notion.timeout must be positive
//   - notion.retry.max_attempts must be between 1 and 10
//   - history.backend must be local or redis; redis needs a redis_url
//   - selector.default_count must be positive
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateNotionConfig(&cfg.Notion); err != nil {
		return err
	}
	if err := validateHistoryConfig(&cfg.History); err != nil {
		return err
	}
	if cfg.Selector.DefaultCount < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidSelector,
			"selector.default_count must be positive, got %d", cfg.Selector.DefaultCount)
	}
	return nil
}

// validateNotionConfig checks Notion client settings.
func validateNotionConfig(cfg *NotionConfig) error {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Wrapf(errors.ErrConfigInvalidNotion,
			"notion.base_url must be an absolute URL, got %q", cfg.BaseURL)
	}
	if cfg.TokenEnvVar == "" {
		return errors.Wrap(errors.ErrConfigInvalidNotion,
			"notion.token_env_var must not be empty")
	}
	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidNotion,
			"notion.timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.Retry.MaxAttempts < 1 || cfg.Retry.MaxAttempts > 10 {
		return errors.Wrapf(errors.ErrConfigInvalidNotion,
			"notion.retry.max_attempts must be between 1 and 10, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.Multiplier < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidNotion,
			"notion.retry.multiplier must be at least 1, got %g", cfg.Retry.Multiplier)
	}
	return nil
}

// validateHistoryConfig checks history storage settings.
func validateHistoryConfig(cfg *HistoryConfig) error {
	switch cfg.Backend {
	case BackendLocal:
	case BackendRedis:
		if cfg.RedisURL == "" {
			return errors.Wrap(errors.ErrConfigInvalidHistory,
				"history.redis_url is required when history.backend is redis")
		}
	default:
		return errors.Wrapf(errors.ErrConfigInvalidHistory,
			"history.backend must be %q or %q, got %q", BackendLocal, BackendRedis, cfg.Backend)
	}
	if cfg.LockTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidHistory,
			"history.lock_timeout must be positive, got %s", cfg.LockTimeout)
	}
	return nil
}
