package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mrz1836/notionflow/internal/domain"
	nferrors "github.com/mrz1836/notionflow/internal/errors"
)

// DependencyState is the outcome of resolving one dependency ID.
type DependencyState string

// Dependency resolution outcomes.
const (
	// DependencyResolved means the dependency task was loaded.
	DependencyResolved DependencyState = "resolved"

	// DependencyNotFound means the store has no such task (or it is archived).
	DependencyNotFound DependencyState = "not_found"

	// DependencyFailed means the store call failed for another reason.
	DependencyFailed DependencyState = "failed"
)

// DependencyResult is the resolution of one declared dependency.
type DependencyResult struct {
	ID    string          `json:"id"`
	State DependencyState `json:"state"`

	// Task is set when State is DependencyResolved.
	Task *domain.Task `json:"task,omitempty"`

	// Err is set when State is DependencyNotFound or DependencyFailed.
	Err error `json:"-"`
}

// Completed reports whether the dependency resolved to a completed task.
func (r DependencyResult) Completed() bool {
	return r.State == DependencyResolved && r.Task.IsCompleted()
}

// Describe returns a short human-readable status, e.g. "In Progress" or
// "not found".
func (r DependencyResult) Describe() string {
	switch r.State {
	case DependencyResolved:
		return string(r.Task.Status)
	case DependencyNotFound:
		return "not found"
	default:
		if r.Err != nil {
			return "unavailable: " + r.Err.Error()
		}
		return "unavailable"
	}
}

// ResolveDependencies loads each declared dependency of t, one store call per
// ID, and returns one result per ID in declared order. Store failures are
// reported in the results, never dropped. Only context cancellation returns
// an error.
func (r *Repository) ResolveDependencies(ctx context.Context, t *domain.Task) ([]DependencyResult, error) {
	results := make([]DependencyResult, 0, len(t.DependencyIDs))
	for _, id := range t.DependencyIDs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		dep, err := r.Get(ctx, id)
		switch {
		case err == nil:
			results = append(results, DependencyResult{ID: id, State: DependencyResolved, Task: dep})
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		case isNotFound(err):
			results = append(results, DependencyResult{ID: id, State: DependencyNotFound, Err: err})
		default:
			results = append(results, DependencyResult{ID: id, State: DependencyFailed, Err: err})
		}
	}
	return results, nil
}

// color marks DFS progress: unvisited tasks are absent from the map.
type color int

const (
	gray  color = iota + 1 // on the current path
	black                  // fully explored
)

// DetectCycle walks the transitive dependencies of rootID depth-first and
// returns the first cycle found as a path of task IDs that starts and ends
// with the same ID, or nil when the graph reachable from rootID is acyclic.
// Dependencies that cannot be loaded are treated as leaves.
func (r *Repository) DetectCycle(ctx context.Context, rootID string) ([]string, error) {
	return r.detectCycle(ctx, rootID, nil)
}

// detectCycle runs the DFS with extra edges overlaid on the stored ones, so a
// proposed dependency can be checked before it is written.
func (r *Repository) detectCycle(ctx context.Context, rootID string, extra map[string][]string) ([]string, error) {
	colors := make(map[string]color)
	var path []string

	var visit func(id string) ([]string, error)
	visit = func(id string) ([]string, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		colors[id] = gray
		path = append(path, id)

		deps, err := r.edges(ctx, id, extra)
		if err != nil {
			return nil, err
		}
		for _, dep := range deps {
			switch colors[dep] {
			case gray:
				start := indexOf(path, dep)
				cycle := append([]string(nil), path[start:]...)
				return append(cycle, dep), nil
			case black:
				continue
			}
			if cycle, err := visit(dep); cycle != nil || err != nil {
				return cycle, err
			}
		}

		path = path[:len(path)-1]
		colors[id] = black
		return nil, nil
	}

	return visit(rootID)
}

func (r *Repository) edges(ctx context.Context, id string, extra map[string][]string) ([]string, error) {
	t, err := r.Get(ctx, id)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return extra[id], nil
	}
	return append(t.DependencyIDs, extra[id]...), nil
}

func indexOf(path []string, id string) int {
	for i, p := range path {
		if p == id {
			return i
		}
	}
	return 0
}

// cycleError formats a cycle path for errors.
func cycleError(cycle []string) error {
	return fmt.Errorf("%w: %s", nferrors.ErrDependencyCycle, strings.Join(cycle, " -> "))
}

func isNotFound(err error) bool {
	return errors.Is(err, nferrors.ErrNotFound)
}
