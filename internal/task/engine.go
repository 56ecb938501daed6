package task

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/notionflow/internal/constants"
	"github.com/mrz1836/notionflow/internal/domain"
	nferrors "github.com/mrz1836/notionflow/internal/errors"
	"github.com/mrz1836/notionflow/internal/notion/property"
	"github.com/mrz1836/notionflow/internal/store"
)

// HistoryRecorder records task revisions. *history.Tracker satisfies it.
type HistoryRecorder interface {
	RecordCreation(ctx context.Context, entityID, entityType, author string, props map[string]any) (*domain.Revision, error)
	RecordUpdate(ctx context.Context, entityID, entityType, author string, oldProps, newProps map[string]any, reason string) (*domain.Revision, error)
}

// Transition reasons written to the change history.
const (
	ReasonClaim            = "claim"
	ReasonStart            = "start"
	ReasonComplete         = "complete"
	ReasonAddDependency    = "add dependency"
	ReasonRemoveDependency = "remove dependency"
)

// Engine runs the task workflow: status transitions gated by dependency
// readiness, task creation and edits, and next-task discovery. Every
// persisted change is recorded in the change history.
//
// The engine performs no retries; store errors are wrapped and returned.
type Engine struct {
	repo     *Repository
	history  HistoryRecorder
	resolver *ProjectResolver
	logger   zerolog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithProjectResolver sets the resolver used to scope Next by project.
// Defaults to a resolver over the engine's repository.
func WithProjectResolver(r *ProjectResolver) EngineOption {
	return func(e *Engine) {
		e.resolver = r
	}
}

// NewEngine creates a workflow engine.
func NewEngine(repo *Repository, history HistoryRecorder, logger zerolog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		repo:    repo,
		history: history,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolver == nil {
		e.resolver = NewProjectResolver(repo)
	}
	return e
}

// Repository returns the engine's task repository.
func (e *Engine) Repository() *Repository {
	return e.repo
}

// CreateRequest describes a new task.
type CreateRequest struct {
	Title          string
	VersionID      string
	Priority       constants.Priority
	Type           string
	Description    string
	DependencyIDs  []string
	EstimatedHours *float64
	Author         string
}

// Create writes a new Backlog task and records its first revision.
//
// Returns an error if:
//   - the title or version is empty (ErrEmptyValue)
//   - the priority is unknown or the estimate is negative (ErrInvalidArgument)
//   - the Tasks database is not configured
func (e *Engine) Create(ctx context.Context, req CreateRequest) (*domain.Task, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("task title %w", nferrors.ErrEmptyValue)
	}
	if req.VersionID == "" {
		return nil, fmt.Errorf("task version %w", nferrors.ErrEmptyValue)
	}
	if req.Priority != "" && !req.Priority.IsValid() {
		return nil, fmt.Errorf("priority %q: %w", req.Priority, nferrors.ErrInvalidArgument)
	}
	if req.EstimatedHours != nil && *req.EstimatedHours < 0 {
		return nil, fmt.Errorf("estimated hours must not be negative: %w", nferrors.ErrInvalidArgument)
	}

	draft := &domain.Task{
		Title:          strings.TrimSpace(req.Title),
		Status:         constants.TaskStatusBacklog,
		Priority:       req.Priority,
		Type:           req.Type,
		Description:    req.Description,
		DependencyIDs:  dedupe(req.DependencyIDs),
		EstimatedHours: req.EstimatedHours,
		VersionID:      req.VersionID,
	}

	rec, err := e.repo.create(ctx, ToProperties(draft))
	if err != nil {
		return nil, err
	}
	if _, err := e.history.RecordCreation(ctx, rec.ID, constants.EntityTask, req.Author, historyProps(rec.Properties)); err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("task_id", rec.ID).
		Str("title", draft.Title).
		Str("author", req.Author).
		Msg("task created")
	return FromRecord(rec), nil
}

// Get loads one task.
func (e *Engine) Get(ctx context.Context, id string) (*domain.Task, error) {
	return e.repo.Get(ctx, id)
}

// Claim moves any open task to Claimed. There is no dependency check, and
// claiming a Claimed task writes nothing. Completed tasks cannot be claimed.
func (e *Engine) Claim(ctx context.Context, id, author string) (*domain.Task, error) {
	return e.transition(ctx, id, author, constants.TaskStatusClaimed, nil, ReasonClaim)
}

// Start moves a Backlog or Claimed task to In Progress. The dependency check
// is part of the transition: when any dependency is not Completed (including
// missing or unavailable ones) Start returns a *BlockedError and changes
// nothing.
func (e *Engine) Start(ctx context.Context, id, author string) (*domain.Task, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	rec, err := e.repo.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	t := FromRecord(rec)
	if err := checkTransition(id, t.Status, constants.TaskStatusInProgress); err != nil {
		return nil, err
	}

	readiness, err := e.readiness(ctx, t)
	if err != nil {
		return nil, err
	}
	if !readiness.Ready {
		e.logger.Info().
			Str("task_id", id).
			Int("blocking", len(readiness.Blocking)).
			Msg("task start blocked by dependencies")
		return nil, &BlockedError{TaskID: id, Blocking: readiness.Blocking}
	}

	return e.apply(ctx, rec, author, property.Bag{
		constants.PropStatus: property.NewSelect(string(constants.TaskStatusInProgress)),
	}, ReasonStart)
}

// Complete moves a task to Completed from any status, storing actualHours
// when given. Completing a completed task succeeds; with no new hours it
// writes nothing.
func (e *Engine) Complete(ctx context.Context, id, author string, actualHours *float64) (*domain.Task, error) {
	if actualHours != nil && *actualHours < 0 {
		return nil, fmt.Errorf("actual hours must not be negative: %w", nferrors.ErrInvalidArgument)
	}
	return e.transition(ctx, id, author, constants.TaskStatusCompleted, actualHours, ReasonComplete)
}

func (e *Engine) transition(ctx context.Context, id, author string, to constants.TaskStatus, hours *float64, reason string) (*domain.Task, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	rec, err := e.repo.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	t := FromRecord(rec)
	if err := checkTransition(id, t.Status, to); err != nil {
		return nil, err
	}

	updates := property.Bag{constants.PropStatus: property.NewSelect(string(to))}
	if hours != nil {
		updates[constants.PropActualHours] = property.NewNumber(*hours)
	}

	if t.Status == to && (hours == nil || (t.ActualHours != nil && *t.ActualHours == *hours)) {
		e.logger.Debug().Str("task_id", id).Str("status", string(to)).Msg("task already in target status")
		return t, nil
	}

	return e.apply(ctx, rec, author, updates, reason)
}

// apply persists updates over rec and records the resulting diff.
func (e *Engine) apply(ctx context.Context, rec *store.Record, author string, updates property.Bag, reason string) (*domain.Task, error) {
	updated, err := e.repo.update(ctx, rec.ID, updates)
	if err != nil {
		return nil, err
	}

	if _, err := e.history.RecordUpdate(ctx, rec.ID, constants.EntityTask, author,
		historyProps(rec.Properties), historyProps(updated.Properties), reason); err != nil {
		return nil, err
	}

	t := FromRecord(updated)
	e.logger.Info().
		Str("task_id", t.ID).
		Str("status", string(t.Status)).
		Str("reason", reason).
		Str("author", author).
		Msg("task updated")
	return t, nil
}

// Update writes task properties and records the diff. Status belongs to the
// state machine and dependencies to AddDependency and RemoveDependency, so
// neither can be set here. Hour properties must be non-negative numbers.
func (e *Engine) Update(ctx context.Context, id, author string, props property.Bag, reason string) (*domain.Task, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if len(props) == 0 {
		return nil, fmt.Errorf("task properties %w", nferrors.ErrEmptyValue)
	}
	if err := checkUpdate(props); err != nil {
		return nil, err
	}

	rec, err := e.repo.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.apply(ctx, rec, author, props, reason)
}

func checkUpdate(props property.Bag) error {
	if _, ok := props[constants.PropStatus]; ok {
		return fmt.Errorf("status changes go through claim, start or complete: %w", nferrors.ErrInvalidArgument)
	}
	if _, ok := props[constants.PropDependencies]; ok {
		return fmt.Errorf("dependency changes go through add or remove dependency: %w", nferrors.ErrInvalidArgument)
	}
	for _, name := range []string{constants.PropEstimatedHours, constants.PropActualHours} {
		v, ok := props[name]
		if !ok {
			continue
		}
		n, isNumber := v.(property.Number)
		if !isNumber {
			return fmt.Errorf("%s must be a number: %w", strings.ToLower(name), nferrors.ErrInvalidArgument)
		}
		if n.Value != nil && *n.Value < 0 {
			return fmt.Errorf("%s must not be negative: %w", strings.ToLower(name), nferrors.ErrInvalidArgument)
		}
	}
	return nil
}

// CanStart reports the readiness of a task without changing it.
func (e *Engine) CanStart(ctx context.Context, id string) (*Readiness, error) {
	t, err := e.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.readiness(ctx, t)
}

func (e *Engine) readiness(ctx context.Context, t *domain.Task) (*Readiness, error) {
	results, err := e.repo.ResolveDependencies(ctx, t)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		if r.State == DependencyFailed {
			e.logger.Warn().
				Err(r.Err).
				Str("task_id", t.ID).
				Str("dependency_id", r.ID).
				Msg("dependency could not be resolved, treating as blocking")
		}
	}
	return Evaluate(results), nil
}

// Next returns the first Backlog or Claimed task, in store order, whose
// dependencies are all completed. A non-empty projectID limits candidates to
// tasks whose version belongs to that project. Returns an error wrapping
// ErrNoReadyTask when nothing qualifies.
func (e *Engine) Next(ctx context.Context, projectID string) (*domain.Task, error) {
	candidates, err := e.repo.ListByStatus(ctx, constants.TaskStatusBacklog, constants.TaskStatusClaimed)
	if err != nil {
		return nil, err
	}

	for _, t := range candidates {
		if projectID != "" {
			in, err := e.resolver.InProject(ctx, t, projectID)
			if err != nil {
				return nil, err
			}
			if !in {
				continue
			}
		}

		readiness, err := e.readiness(ctx, t)
		if err != nil {
			return nil, err
		}
		if readiness.Ready {
			return t, nil
		}
	}

	if projectID != "" {
		return nil, fmt.Errorf("project '%s': %w", projectID, nferrors.ErrNoReadyTask)
	}
	return nil, nferrors.ErrNoReadyTask
}

// AddDependency makes id depend on depID. A dependency that would close a
// cycle is rejected with ErrDependencyCycle; adding an existing dependency is
// a no-op.
func (e *Engine) AddDependency(ctx context.Context, id, depID, author string) (*domain.Task, error) {
	if id == depID {
		return nil, cycleError([]string{id, id})
	}

	rec, err := e.repo.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	t := FromRecord(rec)
	if t.HasDependency(depID) {
		return t, nil
	}
	if _, err := e.repo.Get(ctx, depID); err != nil {
		return nil, err
	}

	cycle, err := e.repo.detectCycle(ctx, id, map[string][]string{id: {depID}})
	if err != nil {
		return nil, err
	}
	if cycle != nil {
		return nil, cycleError(cycle)
	}

	deps := append(slices.Clone(t.DependencyIDs), depID)
	return e.apply(ctx, rec, author, property.Bag{
		constants.PropDependencies: property.NewRelation(deps...),
	}, ReasonAddDependency)
}

// RemoveDependency drops depID from id's dependencies. Removing a dependency
// that is not declared is a no-op.
func (e *Engine) RemoveDependency(ctx context.Context, id, depID, author string) (*domain.Task, error) {
	rec, err := e.repo.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	t := FromRecord(rec)
	if !t.HasDependency(depID) {
		return t, nil
	}

	deps := slices.DeleteFunc(slices.Clone(t.DependencyIDs), func(d string) bool { return d == depID })
	return e.apply(ctx, rec, author, property.Bag{
		constants.PropDependencies: property.NewRelation(deps...),
	}, ReasonRemoveDependency)
}

func dedupe(ids []string) []string {
	var out []string
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
