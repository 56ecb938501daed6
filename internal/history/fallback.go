package history

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mrz1836/notionflow/internal/domain"
)

// FallbackBackend writes to a remote backend and falls back to a local one on
// any remote error.
//
// While the remote is reachable, reads merge both stores so revisions written
// locally during an outage stay part of the entity's history. The merged
// sequence is ordered by timestamp, keeps each store's own order, drops local
// copies of events the remote already holds and is renumbered from 1.
//
// The revision number reported for a write that lands locally counts local
// revisions only. It becomes the merged position once the remote is back.
type FallbackBackend struct {
	remote Backend
	local  Backend
	logger zerolog.Logger
}

// NewFallbackBackend creates a backend preferring remote over local.
func NewFallbackBackend(remote, local Backend, logger zerolog.Logger) *FallbackBackend {
	return &FallbackBackend{remote: remote, local: local, logger: logger}
}

// Append implements Backend. Local errors are returned to the caller.
func (b *FallbackBackend) Append(ctx context.Context, rev *domain.Revision) error {
	err := b.remote.Append(ctx, rev)
	if err == nil {
		return b.renumber(ctx, rev)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	b.logger.Warn().
		Err(err).
		Str("entity_type", rev.EntityType).
		Str("entity_id", rev.EntityID).
		Msg("remote history write failed, falling back to local storage")
	return b.local.Append(ctx, rev)
}

// renumber moves a remote revision number past any local-only revisions of
// the same entity.
func (b *FallbackBackend) renumber(ctx context.Context, rev *domain.Revision) error {
	local, err := b.local.Load(ctx, rev.EntityType, rev.EntityID)
	if err != nil {
		b.logger.Warn().Err(err).Msg("local history read failed, keeping remote revision number")
		return nil
	}
	if len(local) == 0 {
		return nil
	}

	merged, err := b.Load(ctx, rev.EntityType, rev.EntityID)
	if err != nil {
		return fmt.Errorf("history renumber %s/%s: %w", rev.EntityType, rev.EntityID, err)
	}
	for _, m := range merged {
		if rev.EventID != "" && m.EventID == rev.EventID {
			rev.RevisionID = m.RevisionID
			return nil
		}
	}
	rev.RevisionID = len(merged)
	return nil
}

// Load implements Backend.
func (b *FallbackBackend) Load(ctx context.Context, entityType, entityID string) ([]domain.Revision, error) {
	revs, err := b.remote.Load(ctx, entityType, entityID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		b.logger.Warn().Err(err).Msg("remote history read failed, falling back to local storage")
		return b.local.Load(ctx, entityType, entityID)
	}

	local, err := b.local.Load(ctx, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("local history %s/%s: %w", entityType, entityID, err)
	}
	if len(local) == 0 {
		return revs, nil
	}
	return mergeRevisions(revs, local), nil
}

// mergeRevisions interleaves two ordered histories by timestamp. A local
// revision goes first only when it is strictly older, so equal timestamps
// keep remote order.
func mergeRevisions(remote, local []domain.Revision) []domain.Revision {
	seen := make(map[string]struct{}, len(remote))
	for _, r := range remote {
		if r.EventID != "" {
			seen[r.EventID] = struct{}{}
		}
	}

	localOnly := make([]domain.Revision, 0, len(local))
	for _, r := range local {
		if _, dup := seen[r.EventID]; dup && r.EventID != "" {
			continue
		}
		localOnly = append(localOnly, r)
	}

	merged := make([]domain.Revision, 0, len(remote)+len(localOnly))
	i, j := 0, 0
	for i < len(remote) || j < len(localOnly) {
		takeLocal := i == len(remote) ||
			(j < len(localOnly) && localOnly[j].Timestamp.Before(remote[i].Timestamp))
		if takeLocal {
			merged = append(merged, localOnly[j])
			j++
		} else {
			merged = append(merged, remote[i])
			i++
		}
	}
	for k := range merged {
		merged[k].RevisionID = k + 1
	}
	return merged
}

// Entities implements Backend.
func (b *FallbackBackend) Entities(ctx context.Context) ([]EntityRef, error) {
	refs, err := b.remote.Entities(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		b.logger.Warn().Err(err).Msg("remote history listing failed, falling back to local storage")
		return b.local.Entities(ctx)
	}

	local, err := b.local.Entities(ctx)
	if err != nil {
		return nil, fmt.Errorf("local history listing: %w", err)
	}

	seen := make(map[EntityRef]struct{}, len(refs))
	for _, r := range refs {
		seen[r] = struct{}{}
	}
	for _, r := range local {
		if _, ok := seen[r]; !ok {
			seen[r] = struct{}{}
			refs = append(refs, r)
		}
	}
	return refs, nil
}

var _ Backend = (*FallbackBackend)(nil)
