// Package task provides the task workflow engine for notionflow.
//
// This file implements the task state machine, which enforces valid status
// transitions.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors,
//     internal/store, internal/config, internal/notion/property, std lib
//   - MUST NOT import: internal/cli, internal/tui
package task

import (
	"fmt"
	"slices"

	"github.com/mrz1836/notionflow/internal/constants"
	nferrors "github.com/mrz1836/notionflow/internal/errors"
)

// ValidTransitions defines all allowed status transitions.
// Format: from_status -> []to_statuses
//
// The state machine follows this flow:
//
//	Backlog → Claimed, In Progress, Completed
//	Claimed → Claimed, In Progress, Completed
//	In Progress → Claimed, Completed
//	Completed → Completed
//
// Claim works from every status but Completed, and re-claiming or
// re-completing is a no-op. Entering In Progress is additionally gated on
// dependency readiness by Engine.Start.
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[constants.TaskStatus][]constants.TaskStatus{
	constants.TaskStatusBacklog: {
		constants.TaskStatusClaimed,
		constants.TaskStatusInProgress,
		constants.TaskStatusCompleted,
	},
	constants.TaskStatusClaimed: {
		constants.TaskStatusClaimed,
		constants.TaskStatusInProgress,
		constants.TaskStatusCompleted,
	},
	constants.TaskStatusInProgress: {constants.TaskStatusClaimed, constants.TaskStatusCompleted},
	constants.TaskStatusCompleted:  {constants.TaskStatusCompleted},
}

// IsValidTransition checks if a transition from one status to another is allowed.
// Unknown statuses have no valid transitions.
func IsValidTransition(from, to constants.TaskStatus) bool {
	return slices.Contains(ValidTransitions[from], to)
}

// IsTerminalStatus returns true when the only allowed transition is to itself.
func IsTerminalStatus(status constants.TaskStatus) bool {
	return status == constants.TaskStatusCompleted
}

// GetValidTargetStatuses returns all valid target statuses for a given status.
// Returns nil for unknown statuses.
func GetValidTargetStatuses(from constants.TaskStatus) []constants.TaskStatus {
	targets, exists := ValidTransitions[from]
	if !exists {
		return nil
	}
	return slices.Clone(targets)
}

// checkTransition returns an error wrapping ErrInvalidTransition when from → to
// is not allowed.
func checkTransition(taskID string, from, to constants.TaskStatus) error {
	if !IsValidTransition(from, to) {
		return fmt.Errorf("%w: task '%s' cannot move from %q to %q",
			nferrors.ErrInvalidTransition, taskID, from, to)
	}
	return nil
}
