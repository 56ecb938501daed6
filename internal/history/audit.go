package history

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/notionflow/internal/domain"
	nferrors "github.com/mrz1836/notionflow/internal/errors"
)

// AuditQuery selects revisions for the audit log.
type AuditQuery struct {
	// ProjectID keeps only entities that belong to this project. Requires a
	// ProjectResolver on the tracker.
	ProjectID string

	// Days is the look-back window: revisions on or after today's UTC
	// midnight minus Days are kept. Zero means today only.
	Days int

	// EntityType keeps only entities of this type when set.
	EntityType string
}

// GetAuditLog scans every entity history and returns the revisions inside
// the query window, newest first, with a summary by author, action and entity
// type.
func (t *Tracker) GetAuditLog(ctx context.Context, q AuditQuery) (*domain.AuditLog, error) {
	if q.Days < 0 {
		return nil, fmt.Errorf("audit days %d: %w", q.Days, nferrors.ErrInvalidArgument)
	}
	if q.ProjectID != "" && t.resolver == nil {
		return nil, fmt.Errorf("project filter needs a project resolver: %w", nferrors.ErrInvalidArgument)
	}

	now := t.clock.Now().UTC()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -q.Days)

	refs, err := t.backend.Entities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	var (
		mu        sync.Mutex
		revisions []domain.Revision
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.scanLimit)
	for _, ref := range refs {
		if q.EntityType != "" && ref.Type != q.EntityType {
			continue
		}
		g.Go(func() error {
			revs, err := t.backend.Load(gctx, ref.Type, ref.ID)
			if err != nil {
				return fmt.Errorf("failed to load history for %s: %w", ref, err)
			}

			var kept []domain.Revision
			for _, rev := range revs {
				if !rev.Timestamp.Before(since) {
					kept = append(kept, rev)
				}
			}
			if len(kept) == 0 {
				return nil
			}

			if q.ProjectID != "" {
				project, err := t.resolver.ProjectOf(gctx, ref.Type, ref.ID)
				if err != nil {
					t.logger.Debug().Err(err).Str("entity", ref.String()).Msg("cannot resolve project, excluding from audit")
					return nil
				}
				if project != q.ProjectID {
					return nil
				}
			}

			mu.Lock()
			revisions = append(revisions, kept...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(revisions, func(a, b domain.Revision) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		if c := strings.Compare(a.EntityID, b.EntityID); c != 0 {
			return c
		}
		return b.RevisionID - a.RevisionID
	})
	if revisions == nil {
		revisions = []domain.Revision{}
	}

	return &domain.AuditLog{
		Since:     since,
		Revisions: revisions,
		Summary:   domain.Summarize(revisions),
	}, nil
}
