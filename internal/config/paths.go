package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrz1836/notionflow/internal/constants"
	"github.com/mrz1836/notionflow/internal/errors"
)

// HomeDir returns the notionflow data directory. NOTIONFLOW_HOME overrides
// the default of ~/.notionflow.
//
// Returns an error if the home directory cannot be determined.
func HomeDir() (string, error) {
	if dir := os.Getenv(constants.HomeEnvVar); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.AppHome), nil
}

// GlobalConfigPath returns the full path to the global configuration file.
func GlobalConfigPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.GlobalConfigName), nil
}

// ProjectConfigPath returns the relative path to the project configuration file.
// This is always .notionflow/config.yaml relative to the working directory.
func ProjectConfigPath() string {
	return filepath.Join(constants.ProjectConfigDir, constants.GlobalConfigName)
}

// WorkspacePath returns the workspace file location: workspace.file when set,
// otherwise <home>/workspace.json.
func (c *Config) WorkspacePath() (string, error) {
	if c.Workspace.File != "" {
		return c.Workspace.File, nil
	}
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.WorkspaceFileName), nil
}

// HistoryPath returns the local history root: history.dir when set,
// otherwise <home>/history.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Dir != "" {
		return c.History.Dir, nil
	}
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.HistoryDir), nil
}

// ResolvedAuthor returns the configured author, falling back to $USER and
// then to "unknown".
func (c *Config) ResolvedAuthor() string {
	if c.Author != "" {
		return c.Author
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}

// OfflineSnapshotPath returns <home>/offline.json, the record store used
// instead of Notion when running offline.
func OfflineSnapshotPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.OfflineSnapshotFileName), nil
}
