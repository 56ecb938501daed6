package task

import (
	"fmt"
	"strings"

	nferrors "github.com/mrz1836/notionflow/internal/errors"
)

// Readiness is the dependency check behind Engine.Start.
type Readiness struct {
	// Ready is true when every dependency resolved to a Completed task.
	// A task without dependencies is always ready.
	Ready bool `json:"ready"`

	// Dependencies holds every resolution result in declared order.
	Dependencies []DependencyResult `json:"dependencies"`

	// Blocking is the subset of Dependencies that keeps the task from
	// starting: incomplete, missing, or unavailable dependencies.
	Blocking []DependencyResult `json:"blocking"`
}

// Evaluate derives readiness from dependency results. Not-found and failed
// dependencies block.
func Evaluate(results []DependencyResult) *Readiness {
	r := &Readiness{
		Dependencies: results,
		Blocking:     []DependencyResult{},
	}
	for _, res := range results {
		if !res.Completed() {
			r.Blocking = append(r.Blocking, res)
		}
	}
	r.Ready = len(r.Blocking) == 0
	if r.Dependencies == nil {
		r.Dependencies = []DependencyResult{}
	}
	return r
}

// BlockedError is returned by Engine.Start when a task has dependencies that
// are not completed. It wraps ErrTaskBlocked.
type BlockedError struct {
	TaskID   string
	Blocking []DependencyResult
}

func (e *BlockedError) Error() string {
	parts := make([]string, 0, len(e.Blocking))
	for _, b := range e.Blocking {
		parts = append(parts, fmt.Sprintf("%s (%s)", b.ID, b.Describe()))
	}
	return fmt.Sprintf("task '%s' has incomplete dependencies: %s", e.TaskID, strings.Join(parts, ", "))
}

// Unwrap returns ErrTaskBlocked.
func (e *BlockedError) Unwrap() error {
	return nferrors.ErrTaskBlocked
}
