package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/notionflow/internal/config"
	"github.com/mrz1836/notionflow/internal/constants"
	"github.com/mrz1836/notionflow/internal/store"
)

const (
	testTasksDB    = "db-tasks"
	testVersionsDB = "db-versions"
	testProjectsDB = "db-projects"
)

// testEnv runs commands against a memory store and temp directories.
type testEnv struct {
	env   *cmdEnv
	cfg   *config.Config
	store store.EntityStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Workspace.File = filepath.Join(dir, constants.WorkspaceFileName)
	cfg.History.Dir = filepath.Join(dir, "history")
	cfg.Author = "tester"

	te := &testEnv{cfg: cfg, store: store.NewMemoryStore()}
	te.env = &cmdEnv{
		flags: &GlobalFlags{},
		newLogger: func(verbose, quiet bool) zerolog.Logger {
			return InitLoggerWithWriter(verbose, quiet, io.Discard)
		},
		loadConfig: func(context.Context, *GlobalFlags) (*config.Config, error) {
			return te.cfg, nil
		},
		openStore: func(context.Context, *config.Config, bool, zerolog.Logger) (store.EntityStore, func() error, error) {
			return te.store, func() error { return nil }, nil
		},
	}
	return te
}

// newInitializedTestEnv also writes the workspace file.
func newInitializedTestEnv(t *testing.T) *testEnv {
	t.Helper()

	te := newTestEnv(t)
	require.NoError(t, config.SaveWorkspace(te.cfg.Workspace.File, &config.Workspace{
		Databases: map[string]string{
			constants.DatabaseTasks:    testTasksDB,
			constants.DatabaseVersions: testVersionsDB,
			constants.DatabaseProjects: testProjectsDB,
		},
	}))
	return te
}

func (te *testEnv) run(args ...string) (stdout, stderr string, err error) {
	cmd := newRootCmd(te.env, BuildInfo{Version: "1.2.3", Commit: "abc1234", Date: "2026-01-01"})
	outBuf, errBuf := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)

	err = execute(context.Background(), cmd, te.env.flags)
	return outBuf.String(), errBuf.String(), err
}

// runJSON runs a command with -o json and decodes stdout into v.
func (te *testEnv) runJSON(t *testing.T, v any, args ...string) error {
	t.Helper()

	stdout, _, err := te.run(append([]string{"-o", "json"}, args...)...)
	require.NoError(t, json.Unmarshal([]byte(stdout), v), "stdout: %s", stdout)
	return err
}

// createTask creates a task through the CLI and returns its ID.
func (te *testEnv) createTask(t *testing.T, args ...string) string {
	t.Helper()

	var resp taskResponse
	require.NoError(t, te.runJSON(t, &resp, append([]string{"task", "create"}, args...)...))
	require.NotNil(t, resp.Task)
	return resp.Task.ID
}

type mockFormRunner struct {
	run func() error
}

func (m *mockFormRunner) Run() error {
	if m.run == nil {
		return nil
	}
	return m.run()
}
