// Package domain provides shared domain types for notionflow's task workflow.
// These types are used across all internal packages to ensure consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case.
package domain

import (
	"time"

	"github.com/mrz1836/notionflow/internal/constants"
)

// Re-export status and priority types so consumers can work with domain
// objects through a single import.
type (
	// TaskStatus represents the state of a task in the workflow state machine.
	TaskStatus = constants.TaskStatus

	// Priority indicates how urgent a task is.
	Priority = constants.Priority
)

// Task is one unit of work stored as a page in the Tasks database.
//
// Example JSON representation:
//
//	{
//	    "id": "2f6c0c3e-...",
//	    "title": "Implement OAuth login",
//	    "status": "Backlog",
//	    "priority": "High",
//	    "type": "Feature",
//	    "dependency_ids": ["9a1b..."],
//	    "estimated_hours": 4,
//	    "version_id": "v-1",
//	    "created_time": "2024-01-02T03:04:05Z"
//	}
type Task struct {
	// ID is the page ID in the entity store.
	ID string `json:"id"`

	Title       string     `json:"title"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority,omitempty"`
	Type        string     `json:"type,omitempty"`
	Description string     `json:"description,omitempty"`

	// DependencyIDs lists the tasks that must be Completed before this one
	// can start, in declared order.
	DependencyIDs []string `json:"dependency_ids,omitempty"`

	// EstimatedHours and ActualHours are nil when unset.
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	ActualHours    *float64 `json:"actual_hours,omitempty"`

	// VersionID is the version (release) this task is grouped under.
	VersionID string `json:"version_id,omitempty"`

	CreatedTime time.Time `json:"created_time"`
}

// IsCompleted reports whether the task reached the terminal status.
func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == constants.TaskStatusCompleted
}

// HasDependency reports whether id is a declared dependency.
func (t *Task) HasDependency(id string) bool {
	for _, d := range t.DependencyIDs {
		if d == id {
			return true
		}
	}
	return false
}

// Version groups tasks under a release of a project.
type Version struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"project_id,omitempty"`
}

// Project groups versions.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaskRecommendation is one result of the task selector.
type TaskRecommendation struct {
	Task *Task `json:"task"`

	// MatchScore is the priority score plus the capped skill bonus, in [0, 100].
	MatchScore int `json:"match_score"`

	// MatchReason is a human-readable explanation of the score,
	// e.g. "High priority, matches skills: go, api".
	MatchReason string `json:"match_reason"`
}
