package task

import (
	"context"
	"fmt"

	"github.com/mrz1836/notionflow/internal/config"
	"github.com/mrz1836/notionflow/internal/constants"
	"github.com/mrz1836/notionflow/internal/domain"
	"github.com/mrz1836/notionflow/internal/notion/property"
	"github.com/mrz1836/notionflow/internal/store"
)

// Repository reads and writes tasks and their grouping entities through an
// entity store, using the workspace to locate databases.
type Repository struct {
	store     store.EntityStore
	workspace *config.Workspace
}

// NewRepository creates a repository. The workspace is read-only and may be
// shared.
func NewRepository(s store.EntityStore, ws *config.Workspace) *Repository {
	return &Repository{store: s, workspace: ws}
}

// Store returns the underlying entity store.
func (r *Repository) Store() store.EntityStore {
	return r.store
}

// Get loads one task.
func (r *Repository) Get(ctx context.Context, id string) (*domain.Task, error) {
	rec, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load task '%s': %w", id, err)
	}
	return FromRecord(rec), nil
}

// getRecord loads the raw page of a task, keeping properties the Task type
// does not model so history diffs see the full bag.
func (r *Repository) getRecord(ctx context.Context, id string) (*store.Record, error) {
	rec, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load task '%s': %w", id, err)
	}
	return rec, nil
}

// ListByStatus queries the Tasks database for tasks in any of the given
// statuses, in store order. No statuses means all tasks.
func (r *Repository) ListByStatus(ctx context.Context, statuses ...constants.TaskStatus) ([]*domain.Task, error) {
	dbID, err := r.workspace.TasksDB()
	if err != nil {
		return nil, err
	}

	var filter *store.Filter
	switch len(statuses) {
	case 0:
	case 1:
		f := store.SelectEquals(constants.PropStatus, string(statuses[0]))
		filter = &f
	default:
		leaves := make([]store.Filter, 0, len(statuses))
		for _, s := range statuses {
			leaves = append(leaves, store.SelectEquals(constants.PropStatus, string(s)))
		}
		filter = store.AnyOf(leaves...)
	}

	recs, err := r.store.Query(ctx, dbID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(recs))
	for _, rec := range recs {
		tasks = append(tasks, FromRecord(rec))
	}
	return tasks, nil
}

// create writes a new task page.
func (r *Repository) create(ctx context.Context, props property.Bag) (*store.Record, error) {
	dbID, err := r.workspace.TasksDB()
	if err != nil {
		return nil, err
	}
	rec, err := r.store.Create(ctx, dbID, props)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return rec, nil
}

// update writes properties of an existing task page.
func (r *Repository) update(ctx context.Context, id string, props property.Bag) (*store.Record, error) {
	rec, err := r.store.Update(ctx, id, props)
	if err != nil {
		return nil, fmt.Errorf("failed to update task '%s': %w", id, err)
	}
	return rec, nil
}

// Version loads one version.
func (r *Repository) Version(ctx context.Context, id string) (*domain.Version, error) {
	rec, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load version '%s': %w", id, err)
	}
	return versionFromRecord(rec), nil
}
