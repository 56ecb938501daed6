package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/notionflow/internal/constants"
	"github.com/mrz1836/notionflow/internal/domain"
	nferrors "github.com/mrz1836/notionflow/internal/errors"
)

func TestHistoryCommands(t *testing.T) {
	t.Parallel()

	te := newInitializedTestEnv(t)
	id := te.createTask(t, "Write docs", "--version", "v-1", "--priority", "Low")
	require.NoError(t, te.runJSON(t, &taskResponse{}, "task", "claim", id))
	require.NoError(t, te.runJSON(t, &taskResponse{}, "task", "start", id))

	t.Run("show", func(t *testing.T) {
		var resp historyResponse
		require.NoError(t, te.runJSON(t, &resp, "history", "show", "task", id))
		require.Len(t, resp.Revisions, 3)
		for i, rev := range resp.Revisions {
			assert.Equal(t, i+1, rev.RevisionID)
			assert.Equal(t, "tester", rev.Author)
		}
		assert.Equal(t, domain.ActionCreated, resp.Revisions[0].Action())
		assert.Equal(t, "claim", resp.Revisions[1].Reason)
	})

	t.Run("revision", func(t *testing.T) {
		var resp revisionResponse
		require.NoError(t, te.runJSON(t, &resp, "history", "revision", "task", id, "1"))
		assert.Equal(t, string(constants.TaskStatusBacklog), resp.Properties[constants.PropStatus])
		assert.Equal(t, "Write docs", resp.Properties[constants.PropTitle])

		require.NoError(t, te.runJSON(t, &resp, "history", "revision", "task", id, "3"))
		assert.Equal(t, string(constants.TaskStatusInProgress), resp.Properties[constants.PropStatus])
	})

	t.Run("revision out of range", func(t *testing.T) {
		var env errorEnvelope
		err := te.runJSON(t, &env, "history", "revision", "task", id, "9")
		require.ErrorIs(t, err, nferrors.ErrNotFound)
		assert.Equal(t, "NOT_FOUND", env.ErrorCode)
	})

	t.Run("compare", func(t *testing.T) {
		var resp compareResponse
		require.NoError(t, te.runJSON(t, &resp, "history", "compare", "task", id, "1", "3"))
		require.Len(t, resp.Changes, 2)
		assert.Equal(t, constants.PropStatus, resp.Changes[0].Property)
		assert.Equal(t, string(constants.TaskStatusBacklog), resp.Changes[0].From)
		assert.Equal(t, string(constants.TaskStatusClaimed), resp.Changes[0].To)
		assert.Equal(t, string(constants.TaskStatusInProgress), resp.Changes[1].To)
	})

	t.Run("audit", func(t *testing.T) {
		var resp auditResponse
		require.NoError(t, te.runJSON(t, &resp, "history", "audit", "--days", "1", "--type", "task"))
		require.NotNil(t, resp.AuditLog)
		assert.Equal(t, 3, resp.Summary.Total)
		assert.Equal(t, 1, resp.Summary.ByAction[domain.ActionCreated])
		assert.Equal(t, 2, resp.Summary.ByAction[domain.ActionUpdated])
		assert.Equal(t, 3, resp.Revisions[0].RevisionID)

		require.NoError(t, te.runJSON(t, &resp, "history", "audit", "--type", "project"))
		assert.Equal(t, 0, resp.Summary.Total)
	})
}

func TestHistoryCommands_Text(t *testing.T) { //nolint:paralleltest // text output sets the global color profile
	t.Setenv("NO_COLOR", "1")

	te := newInitializedTestEnv(t)
	id := te.createTask(t, "Write docs", "--version", "v-1")
	require.NoError(t, te.runJSON(t, &taskResponse{}, "task", "claim", id))

	stdout, _, err := te.run("history", "show", "task", id)
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 revision(s)")
	assert.Contains(t, stdout, "claim")

	stdout, _, err = te.run("history", "compare", "task", id, "1", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Backlog")
	assert.Contains(t, stdout, "Claimed")

	stdout, _, err = te.run("history", "audit")
	require.NoError(t, err)
	assert.Contains(t, stdout, "tester")
}

func TestHistoryCommands_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown entity type", args: []string{"history", "show", "widget", "x"}},
		{name: "revision not a number", args: []string{"history", "revision", "task", "x", "first"}},
		{name: "negative revision", args: []string{"history", "revision", "task", "x", "-1"}},
		{name: "from after to", args: []string{"history", "compare", "task", "x", "3", "1"}},
		{name: "negative days", args: []string{"history", "audit", "--days", "-1"}},
		{name: "unknown audit type", args: []string{"history", "audit", "--type", "widget"}},
		{name: "missing args", args: []string{"history", "show", "task"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			te := newInitializedTestEnv(t)
			var env errorEnvelope
			err := te.runJSON(t, &env, tc.args...)
			require.Error(t, err)
			assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
			assert.NotEmpty(t, env.ErrorCode)
		})
	}
}

func TestParseEntityType(t *testing.T) {
	t.Parallel()

	got, err := parseEntityType(" Task ")
	require.NoError(t, err)
	assert.Equal(t, constants.EntityTask, got)

	_, err = parseEntityType("widget")
	require.ErrorIs(t, err, nferrors.ErrInvalidArgument)
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: "-"},
		{name: "string", in: "Backlog", want: "Backlog"},
		{name: "number", in: 2.5, want: "2.5"},
		{name: "list", in: []any{"a", "b"}, want: "[a, b]"},
		{name: "bool", in: true, want: "true"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, formatValue(tc.in))
		})
	}
}
