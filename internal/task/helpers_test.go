package task

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/notionflow/internal/config"
	"github.com/mrz1836/notionflow/internal/constants"
	"github.com/mrz1836/notionflow/internal/history"
	"github.com/mrz1836/notionflow/internal/notion/property"
	"github.com/mrz1836/notionflow/internal/store"
)

const (
	tasksDB    = "db-tasks"
	versionsDB = "db-versions"
)

type fixture struct {
	store   *store.MemoryStore
	tracker *history.Tracker
	engine  *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ms := store.NewMemoryStore()
	ws := &config.Workspace{Databases: map[string]string{
		constants.DatabaseTasks:    tasksDB,
		constants.DatabaseVersions: versionsDB,
	}}
	tracker := history.NewTracker(history.NewFileBackend(t.TempDir(), 5*time.Second, zerolog.Nop()))

	return &fixture{
		store:   ms,
		tracker: tracker,
		engine:  NewEngine(NewRepository(ms, ws), tracker, zerolog.Nop()),
	}
}

func (f *fixture) putTask(id string, status constants.TaskStatus, deps ...string) {
	props := property.Bag{
		constants.PropTitle:  property.NewTitle("Task " + id),
		constants.PropStatus: property.NewSelect(string(status)),
	}
	if len(deps) > 0 {
		props[constants.PropDependencies] = property.NewRelation(deps...)
	}
	f.store.Put(&store.Record{ID: id, ParentID: tasksDB, Properties: props})
}

func (f *fixture) putTaskInVersion(id string, status constants.TaskStatus, versionID string) {
	f.store.Put(&store.Record{ID: id, ParentID: tasksDB, Properties: property.Bag{
		constants.PropTitle:   property.NewTitle("Task " + id),
		constants.PropStatus:  property.NewSelect(string(status)),
		constants.PropVersion: property.NewRelation(versionID),
	}})
}

func (f *fixture) putVersion(id, projectID string) {
	f.store.Put(&store.Record{ID: id, ParentID: versionsDB, Properties: property.Bag{
		constants.PropName:    property.NewTitle("v-" + id),
		constants.PropProject: property.NewRelation(projectID),
	}})
}

func (f *fixture) setStatus(id string, status constants.TaskStatus) {
	rec, err := f.store.Get(context.Background(), id)
	if err != nil {
		panic(err)
	}
	rec.Properties[constants.PropStatus] = property.NewSelect(string(status))
	f.store.Put(rec)
}

func ptr(f float64) *float64 { return &f }
