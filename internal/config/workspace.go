package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mrz1836/notionflow/internal/constants"
	"github.com/mrz1836/notionflow/internal/errors"
)

// Workspace maps logical database names (Tasks, Versions, Projects, ...) to
// their Notion database IDs. It is read once per process and passed
// explicitly; nothing mutates it after LoadWorkspace returns.
//
// On disk:
//
//	{
//	    "workspace_id": "a1b2...",
//	    "databases": {"Tasks": "...", "Versions": "...", "Projects": "..."}
//	}
type Workspace struct {
	WorkspaceID string            `json:"workspace_id,omitempty"`
	Databases   map[string]string `json:"databases"`
}

// LoadWorkspace reads the workspace file at path. A missing file returns
// errors.ErrWorkspaceNotInitialized.
func LoadWorkspace(path string) (*Workspace, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("workspace file %s: %w", path, errors.ErrWorkspaceNotInitialized)
		}
		return nil, errors.Wrap(err, "failed to read workspace file")
	}

	var ws Workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, errors.Wrapf(err, "failed to parse workspace file %s", path)
	}
	if len(ws.Databases) == 0 {
		return nil, fmt.Errorf("workspace file %s has no databases: %w", path, errors.ErrWorkspaceNotInitialized)
	}
	return &ws, nil
}

// SaveWorkspace writes the workspace file atomically, creating its directory.
func SaveWorkspace(path string, ws *Workspace) error {
	if ws == nil || len(ws.Databases) == 0 {
		return fmt.Errorf("workspace databases %w", errors.ErrEmptyValue)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrap(err, "failed to create workspace directory")
	}

	data, err := json.MarshalIndent(ws, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode workspace")
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "failed to write workspace file")
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "failed to replace workspace file")
	}
	return nil
}

// DatabaseID returns the ID of a logical database, or an error wrapping
// errors.ErrDatabaseNotConfigured.
func (w *Workspace) DatabaseID(name string) (string, error) {
	if w != nil {
		if id := w.Databases[name]; id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("database %q: %w", name, errors.ErrDatabaseNotConfigured)
}

// TasksDB returns the Tasks database ID.
func (w *Workspace) TasksDB() (string, error) {
	return w.DatabaseID(constants.DatabaseTasks)
}

// Names returns the configured logical database names, sorted.
func (w *Workspace) Names() []string {
	names := make([]string, 0, len(w.Databases))
	for n := range w.Databases {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
