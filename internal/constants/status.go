package constants

import "strings"

// TaskStatus represents the state of a task in the workflow state machine.
// Values match the select option names stored in the Tasks database.
type TaskStatus string

// Task status constants define the valid states a task can be in:
//
//	Backlog → Claimed → In Progress → Completed
//
// Backlog may skip Claimed and go straight to In Progress.
// Any non-terminal status may be completed directly.
const (
	// TaskStatusBacklog is the initial status of every new task.
	TaskStatusBacklog TaskStatus = "Backlog"

	// TaskStatusClaimed indicates someone intends to work on the task.
	TaskStatusClaimed TaskStatus = "Claimed"

	// TaskStatusInProgress indicates work on the task has started.
	// Entering this status requires every dependency to be completed.
	TaskStatusInProgress TaskStatus = "In Progress"

	// TaskStatusCompleted is the terminal status.
	TaskStatusCompleted TaskStatus = "Completed"
)

// String returns the string representation of the TaskStatus.
func (s TaskStatus) String() string {
	return string(s)
}

// ValidTaskStatuses returns all known task statuses in lifecycle order.
func ValidTaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusBacklog, TaskStatusClaimed, TaskStatusInProgress, TaskStatusCompleted}
}

// IsValid checks if the status is a known value.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusBacklog, TaskStatusClaimed, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// Priority indicates how urgent a task is.
type Priority string

// Priority constants, highest first.
const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"
)

// String returns the string representation of the Priority.
func (p Priority) String() string {
	return string(p)
}

// ValidPriorities returns all known priorities, highest first.
func ValidPriorities() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
}

// Rank orders priorities: Critical=4, High=3, Medium=2, Low=1, unknown=0.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// IsValid checks if the priority is a known value.
func (p Priority) IsValid() bool {
	return p.Rank() > 0
}

// ParsePriority matches s case-insensitively against the known priorities.
// Returns false when s is not a known priority.
func ParsePriority(s string) (Priority, bool) {
	for _, p := range ValidPriorities() {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, true
		}
	}
	return "", false
}

// ParseTaskStatus matches s case-insensitively against the known statuses.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	for _, st := range ValidTaskStatuses() {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, true
		}
	}
	return "", false
}
