package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/notionflow/internal/clock"
	"github.com/mrz1836/notionflow/internal/domain"
	nferrors "github.com/mrz1836/notionflow/internal/errors"
	"github.com/mrz1836/notionflow/internal/testutil"
)

type mapResolver map[string]string

func (m mapResolver) ProjectOf(_ context.Context, _, entityID string) (string, error) {
	p, ok := m[entityID]
	if !ok {
		return "", testutil.ErrMockStoreUnavailable
	}
	return p, nil
}

// seedAudit writes history across three days using a movable clock.
func seedAudit(t *testing.T, opts ...Option) (*Tracker, *clock.Fixed) {
	t.Helper()

	clk := clock.NewFixed(time.Date(2024, 5, 8, 9, 0, 0, 0, time.UTC))
	tr, _ := newFileTracker(t, append([]Option{WithClock(clk)}, opts...)...)
	ctx := context.Background()

	// 2024-05-01: old, outside a one-day window
	clk.Set(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	_, err := tr.RecordCreation(ctx, "t-old", "task", "ana", map[string]any{"Status": "Backlog"})
	require.NoError(t, err)

	// 2024-05-07
	clk.Set(time.Date(2024, 5, 7, 8, 0, 0, 0, time.UTC))
	_, err = tr.RecordCreation(ctx, "t1", "task", "ana", map[string]any{"Status": "Backlog"})
	require.NoError(t, err)
	_, err = tr.RecordCreation(ctx, "v1", "version", "bo", map[string]any{"Name": "1.0"})
	require.NoError(t, err)

	// 2024-05-08
	clk.Set(time.Date(2024, 5, 8, 8, 30, 0, 0, time.UTC))
	_, err = tr.RecordUpdate(ctx, "t1", "task", "bo",
		map[string]any{"Status": "Backlog"}, map[string]any{"Status": "Claimed"}, "claim")
	require.NoError(t, err)
	_, err = tr.RecordUpdate(ctx, "t-old", "task", "ana",
		map[string]any{"Status": "Backlog"}, map[string]any{"Status": "Claimed"}, "claim")
	require.NoError(t, err)

	clk.Set(time.Date(2024, 5, 8, 9, 0, 0, 0, time.UTC))
	return tr, clk
}

func TestGetAuditLog_WindowAndOrdering(t *testing.T) {
	t.Parallel()

	tr, _ := seedAudit(t)
	log, err := tr.GetAuditLog(context.Background(), AuditQuery{Days: 1})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC), log.Since)
	require.Len(t, log.Revisions, 4)

	// newest first; equal timestamps break on entity ID
	assert.Equal(t, "t-old", log.Revisions[0].EntityID)
	assert.Equal(t, 2, log.Revisions[0].RevisionID)
	assert.Equal(t, "t1", log.Revisions[1].EntityID)
	assert.Equal(t, 2, log.Revisions[1].RevisionID)
	assert.Equal(t, "t1", log.Revisions[2].EntityID)
	assert.Equal(t, "v1", log.Revisions[3].EntityID)

	assert.Equal(t, 4, log.Summary.Total)
	assert.Equal(t, map[string]int{"ana": 2, "bo": 2}, log.Summary.ByAuthor)
	assert.Equal(t, map[string]int{domain.ActionCreated: 2, domain.ActionUpdated: 2}, log.Summary.ByAction)
	assert.Equal(t, map[string]int{"task": 3, "version": 1}, log.Summary.ByEntityType)
}

func TestGetAuditLog_TodayOnly(t *testing.T) {
	t.Parallel()

	tr, _ := seedAudit(t)
	log, err := tr.GetAuditLog(context.Background(), AuditQuery{Days: 0})
	require.NoError(t, err)

	require.Len(t, log.Revisions, 2)
	for _, r := range log.Revisions {
		assert.Equal(t, domain.ActionUpdated, r.Action())
	}
}

func TestGetAuditLog_EntityTypeFilter(t *testing.T) {
	t.Parallel()

	tr, _ := seedAudit(t)
	log, err := tr.GetAuditLog(context.Background(), AuditQuery{Days: 30, EntityType: "version"})
	require.NoError(t, err)

	require.Len(t, log.Revisions, 1)
	assert.Equal(t, "v1", log.Revisions[0].EntityID)
}

func TestGetAuditLog_ProjectFilter(t *testing.T) {
	t.Parallel()

	tr, _ := seedAudit(t, WithProjectResolver(mapResolver{"t1": "p1", "v1": "p2"}))
	log, err := tr.GetAuditLog(context.Background(), AuditQuery{Days: 30, ProjectID: "p1"})
	require.NoError(t, err)

	require.Len(t, log.Revisions, 2, "unresolvable t-old is excluded")
	for _, r := range log.Revisions {
		assert.Equal(t, "t1", r.EntityID)
	}
}

func TestGetAuditLog_InvalidQueries(t *testing.T) {
	t.Parallel()

	tr, _ := newFileTracker(t)

	_, err := tr.GetAuditLog(context.Background(), AuditQuery{Days: -1})
	require.ErrorIs(t, err, nferrors.ErrInvalidArgument)

	_, err = tr.GetAuditLog(context.Background(), AuditQuery{ProjectID: "p1"})
	require.ErrorIs(t, err, nferrors.ErrInvalidArgument)
}

func TestGetAuditLog_EmptyHistory(t *testing.T) {
	t.Parallel()

	tr, _ := newFileTracker(t)
	log, err := tr.GetAuditLog(context.Background(), AuditQuery{Days: 7})
	require.NoError(t, err)
	assert.NotNil(t, log.Revisions)
	assert.Empty(t, log.Revisions)
	assert.Equal(t, 0, log.Summary.Total)
}
