package selector

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/notionflow/internal/config"
	"github.com/mrz1836/notionflow/internal/constants"
	"github.com/mrz1836/notionflow/internal/domain"
	nferrors "github.com/mrz1836/notionflow/internal/errors"
	"github.com/mrz1836/notionflow/internal/notion/property"
	"github.com/mrz1836/notionflow/internal/store"
	"github.com/mrz1836/notionflow/internal/task"
)

const tasksDB = "db-tasks"

type seed struct {
	id          string
	title       string
	description string
	status      constants.TaskStatus
	priority    constants.Priority
	version     string
}

func newSelector(t *testing.T, defaultCount int, seeds ...seed) (*Selector, *store.MemoryStore) {
	t.Helper()

	ms := store.NewMemoryStore()
	for _, s := range seeds {
		status := s.status
		if status == "" {
			status = constants.TaskStatusBacklog
		}
		props := property.Bag{
			constants.PropTitle:  property.NewTitle(s.title),
			constants.PropStatus: property.NewSelect(string(status)),
		}
		if s.priority != "" {
			props[constants.PropPriority] = property.NewSelect(string(s.priority))
		}
		if s.description != "" {
			props[constants.PropDescription] = property.NewRichText(s.description)
		}
		if s.version != "" {
			props[constants.PropVersion] = property.NewRelation(s.version)
		}
		ms.Put(&store.Record{ID: s.id, ParentID: tasksDB, Properties: props})
	}

	ws := &config.Workspace{Databases: map[string]string{constants.DatabaseTasks: tasksDB}}
	return New(task.NewRepository(ms, ws), defaultCount, zerolog.Nop()), ms
}

func ids(recs []domain.TaskRecommendation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Task.ID)
	}
	return out
}

func TestPickBestTasks_CriticalWithoutSkills(t *testing.T) {
	t.Parallel()

	sel, _ := newSelector(t, 5, seed{id: "a", title: "Fix outage", priority: constants.PriorityCritical})

	recs, err := sel.PickBestTasks(context.Background(), Options{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.GreaterOrEqual(t, recs[0].MatchScore, 40)
	assert.Contains(t, recs[0].MatchReason, "Critical priority")
}

func TestPickBestTasks_OrderingAndTies(t *testing.T) {
	t.Parallel()

	sel, _ := newSelector(t, 10,
		seed{id: "low", title: "Polish", priority: constants.PriorityLow},
		seed{id: "high-1", title: "First high", priority: constants.PriorityHigh},
		seed{id: "claimed", title: "Not backlog", priority: constants.PriorityCritical, status: constants.TaskStatusClaimed},
		seed{id: "high-2", title: "Second high", priority: constants.PriorityHigh},
		seed{id: "go", title: "Go api client", priority: constants.PriorityMedium},
	)

	recs, err := sel.PickBestTasks(context.Background(), Options{Skills: []string{"GO", "API", "go"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"go", "high-1", "high-2", "low"}, ids(recs), "stable for equal scores; backlog only")
	assert.Equal(t, 40, recs[0].MatchScore)
	assert.Equal(t, "Medium priority, matches skills: GO, API", recs[0].MatchReason)
}

func TestPickBestTasks_Filters(t *testing.T) {
	t.Parallel()

	seeds := []seed{
		{id: "crit", title: "Critical thing", priority: constants.PriorityCritical, version: "v1"},
		{id: "med", title: "WIP refactor", priority: constants.PriorityMedium, version: "v1"},
		{id: "none", title: "Unprioritized", version: "v2"},
		{id: "low", title: "Docs", priority: constants.PriorityLow, version: "v2"},
	}

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{name: "max priority", opts: Options{MaxPriority: "medium"}, want: []string{"med", "low", "none"}},
		{name: "exclude pattern is case-insensitive", opts: Options{ExcludePatterns: []string{"^WIP", "docs"}}, want: []string{"crit", "none"}},
		{name: "version scope", opts: Options{VersionID: "v2"}, want: []string{"low", "none"}},
		{name: "count", opts: Options{Count: 2}, want: []string{"crit", "med"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sel, _ := newSelector(t, 10, seeds...)
			recs, err := sel.PickBestTasks(context.Background(), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(recs))
		})
	}
}

func TestPickBestTasks_DefaultCount(t *testing.T) {
	t.Parallel()

	seeds := make([]seed, 0, 8)
	for _, id := range strings.Split("a b c d e f g h", " ") {
		seeds = append(seeds, seed{id: id, title: id})
	}
	sel, _ := newSelector(t, 3, seeds...)

	recs, err := sel.PickBestTasks(context.Background(), Options{Count: 0})
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestPickBestTasks_ProjectScope(t *testing.T) {
	t.Parallel()

	sel, ms := newSelector(t, 10,
		seed{id: "in", title: "In project", version: "v1"},
		seed{id: "out", title: "Other project", version: "v2"},
		seed{id: "loose", title: "No version"},
	)
	ms.Put(&store.Record{ID: "v1", ParentID: "db-versions", Properties: property.Bag{
		constants.PropName:    property.NewTitle("1.0"),
		constants.PropProject: property.NewRelation("p1"),
	}})
	ms.Put(&store.Record{ID: "v2", ParentID: "db-versions", Properties: property.Bag{
		constants.PropName:    property.NewTitle("2.0"),
		constants.PropProject: property.NewRelation("p2"),
	}})

	recs, err := sel.PickBestTasks(context.Background(), Options{ProjectID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"in"}, ids(recs))
}

func TestPickBestTasks_InvalidOptions(t *testing.T) {
	t.Parallel()

	sel, _ := newSelector(t, 5)

	_, err := sel.PickBestTasks(context.Background(), Options{ExcludePatterns: []string{"("}})
	require.ErrorIs(t, err, nferrors.ErrInvalidArgument)

	_, err = sel.PickBestTasks(context.Background(), Options{MaxPriority: "Urgent"})
	require.ErrorIs(t, err, nferrors.ErrInvalidArgument)
}

func TestScore_Bounds(t *testing.T) {
	t.Parallel()

	skills := []string{"go", "api", "redis", "notion", "cli"}
	for _, p := range append(constants.ValidPriorities(), "", "Unknown") {
		tk := &domain.Task{
			Title:       "go api redis notion cli",
			Description: "GO API",
			Priority:    p,
		}
		score, _ := Score(tk, skills)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 70, "priority 40 + skill cap 30")
	}

	score, reason := Score(&domain.Task{Title: "nothing"}, []string{"rust"})
	assert.Equal(t, 0, score)
	assert.Equal(t, "no priority or skill match", reason)

	score, _ = Score(&domain.Task{Title: "go api redis notion", Priority: constants.PriorityCritical}, skills)
	assert.Equal(t, 70, score, "skill points are capped at 30")
}
