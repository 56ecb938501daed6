package domain

import "time"

// Audit actions derived from a revision's position in its entity history.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// PropertyChange records one property moving from one plain value to another.
// From is nil when the property was added; To is nil when it was removed.
type PropertyChange struct {
	Property string `json:"property"`
	From     any    `json:"from_value"`
	To       any    `json:"to_value"`
}

// Revision is one entry in an entity's change history. RevisionID is 1-based
// and gap-free per entity.
type Revision struct {
	RevisionID int              `json:"revision_id"`
	EntityID   string           `json:"entity_id"`
	EntityType string           `json:"entity_type"`
	Timestamp  time.Time        `json:"timestamp"`
	Author     string           `json:"author"`
	Changes    []PropertyChange `json:"changes"`
	Reason     string           `json:"reason,omitempty"`

	// EventID uniquely identifies the write across storage backends.
	EventID string `json:"event_id"`
}

// Action reports whether the revision created the entity or updated it.
func (r Revision) Action() string {
	if r.RevisionID == 1 {
		return ActionCreated
	}
	return ActionUpdated
}

// AuditSummary counts audit log revisions by dimension.
type AuditSummary struct {
	Total        int            `json:"total"`
	ByAuthor     map[string]int `json:"by_author"`
	ByAction     map[string]int `json:"by_action"`
	ByEntityType map[string]int `json:"by_entity_type"`
}

// AuditLog is the result of an audit query, newest revision first.
type AuditLog struct {
	Since     time.Time    `json:"since"`
	Revisions []Revision   `json:"revisions"`
	Summary   AuditSummary `json:"summary"`
}

// Summarize builds the summary of a set of revisions.
func Summarize(revisions []Revision) AuditSummary {
	s := AuditSummary{
		Total:        len(revisions),
		ByAuthor:     make(map[string]int),
		ByAction:     make(map[string]int),
		ByEntityType: make(map[string]int),
	}
	for _, r := range revisions {
		s.ByAuthor[r.Author]++
		s.ByAction[r.Action()]++
		s.ByEntityType[r.EntityType]++
	}
	return s
}
