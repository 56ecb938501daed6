package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/notionflow/internal/constants"
	"github.com/mrz1836/notionflow/internal/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, constants.NotionBaseURL, cfg.Notion.BaseURL)
	assert.Equal(t, BackendLocal, cfg.History.Backend)
	assert.Equal(t, 5, cfg.Selector.DefaultCount)
}

func TestLoadFromPaths_Defaults(t *testing.T) {
	cfg, err := LoadFromPaths(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Notion.Timeout)
	assert.Equal(t, time.Second, cfg.Notion.Retry.InitialDelay)
	assert.Equal(t, "NOTION_TOKEN", cfg.Notion.TokenEnvVar)
	assert.Equal(t, "notionflow:history", cfg.History.KeyPrefix)
}

func TestLoadFromPaths_ProjectOverridesGlobal(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global.yaml")
	project := filepath.Join(dir, "project.yaml")

	writeFile(t, global, `
author: global-user
notion:
  timeout: 10s
selector:
  default_count: 3
`)
	writeFile(t, project, `
author: project-user
notion:
  retry:
    max_attempts: 5
`)

	cfg, err := LoadFromPaths(context.Background(), project, global)
	require.NoError(t, err)
	assert.Equal(t, "project-user", cfg.Author)
	assert.Equal(t, 10*time.Second, cfg.Notion.Timeout)
	assert.Equal(t, 5, cfg.Notion.Retry.MaxAttempts)
	assert.Equal(t, 3, cfg.Selector.DefaultCount)
}

func TestLoadFromPaths_EnvOverridesFiles(t *testing.T) {
	t.Setenv("NOTIONFLOW_AUTHOR", "env-user")
	t.Setenv("NOTIONFLOW_HISTORY_BACKEND", "redis")
	t.Setenv("NOTIONFLOW_HISTORY_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := LoadFromPaths(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "env-user", cfg.Author)
	assert.Equal(t, BackendRedis, cfg.History.Backend)
}

func TestLoadFromPaths_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "history:\n  backend: postgres\n")

	_, err := LoadFromPaths(context.Background(), path, "")
	require.ErrorIs(t, err, errors.ErrConfigInvalidHistory)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"nil config", nil, errors.ErrConfigNil},
		{"relative base url", func(c *Config) { c.Notion.BaseURL = "/v1" }, errors.ErrConfigInvalidNotion},
		{"zero timeout", func(c *Config) { c.Notion.Timeout = 0 }, errors.ErrConfigInvalidNotion},
		{"too many attempts", func(c *Config) { c.Notion.Retry.MaxAttempts = 11 }, errors.ErrConfigInvalidNotion},
		{"shrinking backoff", func(c *Config) { c.Notion.Retry.Multiplier = 0.5 }, errors.ErrConfigInvalidNotion},
		{"redis without url", func(c *Config) { c.History.Backend = BackendRedis }, errors.ErrConfigInvalidHistory},
		{"zero count", func(c *Config) { c.Selector.DefaultCount = 0 }, errors.ErrConfigInvalidSelector},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.mutate == nil {
				require.ErrorIs(t, Validate(nil), tt.want)
				return
			}
			cfg := DefaultConfig()
			tt.mutate(cfg)
			require.ErrorIs(t, Validate(cfg), tt.want)
		})
	}
}

func TestLoadWithOverrides(t *testing.T) {
	t.Setenv(constants.HomeEnvVar, t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := LoadWithOverrides(context.Background(), &Config{
		Author:  "flag-user",
		History: HistoryConfig{Dir: "/tmp/history"},
	})
	require.NoError(t, err)
	assert.Equal(t, "flag-user", cfg.Author)
	assert.Equal(t, "/tmp/history", cfg.History.Dir)
}

func TestPaths_HonorHomeOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv(constants.HomeEnvVar, home)

	cfg := DefaultConfig()

	ws, err := cfg.WorkspacePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "workspace.json"), ws)

	hist, err := cfg.HistoryPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "history"), hist)

	global, err := GlobalConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "config.yaml"), global)

	offline, err := OfflineSnapshotPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "offline.json"), offline)

	cfg.History.Dir = "/custom"
	hist, err = cfg.HistoryPath()
	require.NoError(t, err)
	assert.Equal(t, "/custom", hist)
}

func TestResolvedAuthor(t *testing.T) {
	t.Setenv("USER", "shell-user")

	cfg := DefaultConfig()
	assert.Equal(t, "shell-user", cfg.ResolvedAuthor())

	cfg.Author = "configured"
	assert.Equal(t, "configured", cfg.ResolvedAuthor())
}
