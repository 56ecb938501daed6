package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/notionflow/internal/constants"
	"github.com/mrz1836/notionflow/internal/domain"
	nferrors "github.com/mrz1836/notionflow/internal/errors"
	"github.com/mrz1836/notionflow/internal/notion/property"
	"github.com/mrz1836/notionflow/internal/store"
)

func TestIsValidTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to constants.TaskStatus
		want     bool
	}{
		{constants.TaskStatusBacklog, constants.TaskStatusClaimed, true},
		{constants.TaskStatusBacklog, constants.TaskStatusInProgress, true},
		{constants.TaskStatusBacklog, constants.TaskStatusCompleted, true},
		{constants.TaskStatusClaimed, constants.TaskStatusInProgress, true},
		{constants.TaskStatusClaimed, constants.TaskStatusCompleted, true},
		{constants.TaskStatusInProgress, constants.TaskStatusCompleted, true},
		{constants.TaskStatusCompleted, constants.TaskStatusCompleted, true},
		{constants.TaskStatusClaimed, constants.TaskStatusClaimed, true},
		{constants.TaskStatusInProgress, constants.TaskStatusClaimed, true},
		{constants.TaskStatusClaimed, constants.TaskStatusBacklog, false},
		{constants.TaskStatusInProgress, constants.TaskStatusBacklog, false},
		{constants.TaskStatusCompleted, constants.TaskStatusClaimed, false},
		{constants.TaskStatusCompleted, constants.TaskStatusBacklog, false},
		{"Archived", constants.TaskStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsValidTransition(tt.from, tt.to))
		})
	}
}

func TestGetValidTargetStatuses_ReturnsCopy(t *testing.T) {
	t.Parallel()

	targets := GetValidTargetStatuses(constants.TaskStatusClaimed)
	require.Len(t, targets, 3)
	targets[0] = constants.TaskStatusBacklog

	assert.Equal(t, constants.TaskStatusClaimed, ValidTransitions[constants.TaskStatusClaimed][0])
	assert.Nil(t, GetValidTargetStatuses("unknown"))
	assert.True(t, IsTerminalStatus(constants.TaskStatusCompleted))
	assert.False(t, IsTerminalStatus(constants.TaskStatusInProgress))
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	done := &domain.Task{ID: "d", Status: constants.TaskStatusCompleted}
	busy := &domain.Task{ID: "b", Status: constants.TaskStatusInProgress}

	empty := Evaluate(nil)
	assert.True(t, empty.Ready, "no dependencies means ready")
	assert.NotNil(t, empty.Dependencies)

	mixed := Evaluate([]DependencyResult{
		{ID: "d", State: DependencyResolved, Task: done},
		{ID: "b", State: DependencyResolved, Task: busy},
		{ID: "x", State: DependencyNotFound, Err: nferrors.ErrNotFound},
	})
	assert.False(t, mixed.Ready)
	require.Len(t, mixed.Blocking, 2)
	assert.Equal(t, "b", mixed.Blocking[0].ID)
	assert.Equal(t, "x", mixed.Blocking[1].ID)
	assert.Equal(t, "not found", mixed.Blocking[1].Describe())

	allDone := Evaluate([]DependencyResult{{ID: "d", State: DependencyResolved, Task: done}})
	assert.True(t, allDone.Ready)
}

func TestFromRecordAndToProperties(t *testing.T) {
	t.Parallel()

	rec := &store.Record{
		ID: "t1",
		Properties: property.Bag{
			constants.PropTitle:          property.NewTitle("Ship it"),
			constants.PropStatus:         property.NewSelect("Claimed"),
			constants.PropPriority:       property.NewSelect("High"),
			constants.PropType:           property.NewSelect("Bug"),
			constants.PropDescription:    property.NewRichText("Fix the go api"),
			constants.PropDependencies:   property.NewRelation("a", "b"),
			constants.PropEstimatedHours: property.NewNumber(3),
			constants.PropVersion:        property.NewRelation("v1", "v2"),
		},
	}

	task := FromRecord(rec)
	assert.Equal(t, "Ship it", task.Title)
	assert.Equal(t, constants.TaskStatusClaimed, task.Status)
	assert.Equal(t, constants.PriorityHigh, task.Priority)
	assert.Equal(t, "Bug", task.Type)
	assert.Equal(t, []string{"a", "b"}, task.DependencyIDs)
	require.NotNil(t, task.EstimatedHours)
	assert.Nil(t, task.ActualHours)
	assert.Equal(t, "v1", task.VersionID, "first version relation wins")

	bag := ToProperties(task)
	assert.Equal(t, property.NewRelation("v1"), bag[constants.PropVersion])
	assert.NotContains(t, bag, constants.PropActualHours)
	assert.Equal(t, rec.Properties[constants.PropDependencies], bag[constants.PropDependencies])
}
