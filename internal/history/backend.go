// Package history records per-entity change history (revisions) and answers
// questions about it: full history, point-in-time snapshots, change slices
// between revisions, and a cross-entity audit log.
//
// Revision numbering belongs to the storage backend so it can be atomic:
// the file backend serializes appends per entity with an exclusive file
// lock, and the redis backend appends through a server-side script. In both
// cases RevisionID is 1-based and gap-free per entity even with concurrent
// writers.
package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrz1836/notionflow/internal/domain"
	nferrors "github.com/mrz1836/notionflow/internal/errors"
)

// Backend stores revisions.
type Backend interface {
	// Append assigns rev.RevisionID as the next number in the entity's
	// sequence and persists the revision.
	Append(ctx context.Context, rev *domain.Revision) error

	// Load returns every revision of an entity sorted by RevisionID ascending.
	// An entity with no history returns an empty slice.
	Load(ctx context.Context, entityType, entityID string) ([]domain.Revision, error)

	// Entities lists every entity with at least one revision.
	Entities(ctx context.Context) ([]EntityRef, error)
}

// EntityRef identifies one entity's history.
type EntityRef struct {
	Type string
	ID   string
}

func (r EntityRef) String() string {
	return r.Type + "/" + r.ID
}

// validateRef rejects names that could escape the storage root or collide
// with key separators.
func validateRef(entityType, entityID string) error {
	if entityType == "" {
		return fmt.Errorf("entity type %w", nferrors.ErrEmptyValue)
	}
	if entityID == "" {
		return fmt.Errorf("entity ID %w", nferrors.ErrEmptyValue)
	}
	for _, s := range []string{entityType, entityID} {
		if s == "." || s == ".." || strings.ContainsAny(s, `/\:`) || strings.Contains(s, "..") {
			return fmt.Errorf("invalid history name %q: %w", s, nferrors.ErrPathTraversal)
		}
	}
	return nil
}
