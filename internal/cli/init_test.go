package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/notionflow/internal/config"
	"github.com/mrz1836/notionflow/internal/constants"
	nferrors "github.com/mrz1836/notionflow/internal/errors"
	"github.com/mrz1836/notionflow/internal/store"
)

// titledStore is a memory store that can also look up database titles.
type titledStore struct {
	*store.MemoryStore

	titles map[string]string
}

func (s *titledStore) DatabaseTitle(_ context.Context, databaseID string) (string, error) {
	title, ok := s.titles[databaseID]
	if !ok {
		return "", fmt.Errorf("database %s: %w", databaseID, nferrors.ErrNotFound)
	}
	return title, nil
}

// withPrompts swaps the terminal check and form factory for one test.
func withPrompts(t *testing.T, terminal bool, form func(*InitFlags) formRunner) {
	t.Helper()

	origTerminal, origForm := stdinIsTerminal, createInitForm
	t.Cleanup(func() {
		stdinIsTerminal, createInitForm = origTerminal, origForm
	})
	stdinIsTerminal = func() bool { return terminal }
	if form != nil {
		createInitForm = form
	}
}

func TestInit_WritesWorkspaceFromFlags(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)

	var resp initResponse
	err := te.runJSON(t, &resp, "init",
		"--tasks-db", "t-db", "--versions-db", "v-db", "--projects-db", "p-db", "--workspace-id", "ws-1")
	require.NoError(t, err)
	assert.Equal(t, "workspace initialized", resp.Message)
	assert.Equal(t, te.cfg.Workspace.File, resp.Path)
	assert.Empty(t, resp.Verified)

	ws, err := config.LoadWorkspace(te.cfg.Workspace.File)
	require.NoError(t, err)
	assert.Equal(t, "ws-1", ws.WorkspaceID)
	assert.Equal(t, map[string]string{
		constants.DatabaseTasks:    "t-db",
		constants.DatabaseVersions: "v-db",
		constants.DatabaseProjects: "p-db",
	}, ws.Databases)
}

func TestInit_VerifiesDatabases(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.store = &titledStore{
		MemoryStore: store.NewMemoryStore(),
		titles:      map[string]string{"t-db": "Tasks", "v-db": "Releases", "p-db": "Projects"},
	}

	var resp initResponse
	err := te.runJSON(t, &resp, "init", "--tasks-db", "t-db", "--versions-db", "v-db", "--projects-db", "p-db")
	require.NoError(t, err)
	assert.Equal(t, "Releases", resp.Verified[constants.DatabaseVersions])
}

func TestInit_UnknownDatabaseIsNotWritten(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.store = &titledStore{MemoryStore: store.NewMemoryStore(), titles: map[string]string{"t-db": "Tasks"}}

	var env errorEnvelope
	err := te.runJSON(t, &env, "init", "--tasks-db", "t-db", "--versions-db", "missing", "--projects-db", "p-db")
	require.ErrorIs(t, err, nferrors.ErrNotFound)
	assert.Equal(t, "NOT_FOUND", env.ErrorCode)

	_, err = config.LoadWorkspace(te.cfg.Workspace.File)
	require.ErrorIs(t, err, nferrors.ErrWorkspaceNotInitialized)
}

func TestInit_MissingFlagsWithoutTerminal(t *testing.T) { //nolint:paralleltest // swaps package-level prompts
	withPrompts(t, false, nil)

	te := newTestEnv(t)
	var env errorEnvelope
	err := te.runJSON(t, &env, "init", "--tasks-db", "t-db")
	require.ErrorIs(t, err, nferrors.ErrNonInteractiveMode)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
	assert.Equal(t, "INVALID_ARGUMENT", env.ErrorCode)
	assert.Contains(t, env.Details, "--versions-db, --projects-db")
}

func TestInit_PromptsOnTerminal(t *testing.T) { //nolint:paralleltest // swaps package-level prompts
	withPrompts(t, true, func(flags *InitFlags) formRunner {
		return &mockFormRunner{run: func() error {
			flags.VersionsDB = "v-db"
			flags.ProjectsDB = "p-db"
			return nil
		}}
	})

	te := newTestEnv(t)
	stdout, _, err := te.run("init", "--tasks-db", "t-db")
	require.NoError(t, err)
	assert.Contains(t, stdout, "workspace initialized")

	ws, err := config.LoadWorkspace(te.cfg.Workspace.File)
	require.NoError(t, err)
	assert.Equal(t, "v-db", ws.Databases[constants.DatabaseVersions])
}

func TestInit_FormError(t *testing.T) { //nolint:paralleltest // swaps package-level prompts
	formErr := errors.New("user aborted")
	withPrompts(t, true, func(*InitFlags) formRunner {
		return &mockFormRunner{run: func() error { return formErr }}
	})

	te := newTestEnv(t)
	_, _, err := te.run("init")
	require.ErrorIs(t, err, formErr)
}

func TestConfigShow_JSON(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)

	var resp configShowResponse
	require.NoError(t, te.runJSON(t, &resp, "config", "show"))

	notion, ok := resp.Config["notion"].(map[string]any)
	require.True(t, ok, "config.notion: %v", resp.Config)
	assert.Equal(t, constants.NotionTokenEnvVar, notion["token_env_var"])
	assert.Equal(t, "30s", notion["timeout"])
	assert.Equal(t, "tester", resp.Config["author"])
	assert.Equal(t, te.cfg.Workspace.File, resp.Paths.Workspace)
	assert.Equal(t, te.cfg.History.Dir, resp.Paths.History)
}

func TestConfigShow_Text(t *testing.T) { //nolint:paralleltest // text output sets the global color profile
	te := newTestEnv(t)

	stdout, _, err := te.run("config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "token_env_var: NOTION_TOKEN")
	assert.Contains(t, stdout, te.cfg.Workspace.File)
}

func TestInitResponse_JSONShape(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(initResponse{Message: "m", Path: "p", Workspace: &config.Workspace{}})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "verified")
}
