package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/notionflow/internal/constants"
	"github.com/mrz1836/notionflow/internal/errors"
)

// newViperInstance creates a new Viper instance with the NOTIONFLOW_ env
// prefix, key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// Missing config files are not an error.
func Load(ctx context.Context) (*Config, error) {
	globalPath, err := GlobalConfigPath()
	if err != nil {
		globalPath = ""
	}

	cfg, err := LoadFromPaths(ctx, ProjectConfigPath(), globalPath)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("history.backend", cfg.History.Backend).
		Dur("notion.timeout", cfg.Notion.Timeout).
		Int("notion.retry.max_attempts", cfg.Notion.Retry.MaxAttempts).
		Msg("configuration loaded")

	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths.
// Either path can be empty or point at a missing file to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	// Global config first (lower precedence)
	if globalConfigPath != "" && fileExists(globalConfigPath) {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	// Project config merges over global
	if projectConfigPath != "" && fileExists(projectConfigPath) {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// LoadWithOverrides loads configuration and applies CLI flag overrides.
// Only non-zero values in overrides are applied.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}
	return cfg, nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the mapstructure tag names exactly; values mirror DefaultConfig().
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("notion.base_url", d.Notion.BaseURL)
	v.SetDefault("notion.api_version", d.Notion.APIVersion)
	v.SetDefault("notion.token_env_var", d.Notion.TokenEnvVar)
	v.SetDefault("notion.timeout", d.Notion.Timeout.String())
	v.SetDefault("notion.retry.max_attempts", d.Notion.Retry.MaxAttempts)
	v.SetDefault("notion.retry.initial_delay", d.Notion.Retry.InitialDelay.String())
	v.SetDefault("notion.retry.max_delay", d.Notion.Retry.MaxDelay.String())
	v.SetDefault("notion.retry.multiplier", d.Notion.Retry.Multiplier)

	v.SetDefault("workspace.file", "")

	v.SetDefault("history.dir", "")
	v.SetDefault("history.backend", d.History.Backend)
	v.SetDefault("history.redis_url", "")
	v.SetDefault("history.key_prefix", d.History.KeyPrefix)
	v.SetDefault("history.lock_timeout", d.History.LockTimeout.String())

	v.SetDefault("selector.default_count", d.Selector.DefaultCount)

	v.SetDefault("author", "")
}

// applyOverrides merges non-zero override values into the config.
func applyOverrides(cfg, overrides *Config) {
	if overrides.Notion.BaseURL != "" {
		cfg.Notion.BaseURL = overrides.Notion.BaseURL
	}
	if overrides.Notion.Timeout != 0 {
		cfg.Notion.Timeout = overrides.Notion.Timeout
	}
	if overrides.Workspace.File != "" {
		cfg.Workspace.File = overrides.Workspace.File
	}
	if overrides.History.Dir != "" {
		cfg.History.Dir = overrides.History.Dir
	}
	if overrides.History.Backend != "" {
		cfg.History.Backend = overrides.History.Backend
	}
	if overrides.History.RedisURL != "" {
		cfg.History.RedisURL = overrides.History.RedisURL
	}
	if overrides.Author != "" {
		cfg.Author = overrides.Author
	}
}

// viperDecoderOption configures mapstructure to decode durations from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
