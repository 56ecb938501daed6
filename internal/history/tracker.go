package history

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/notionflow/internal/clock"
	"github.com/mrz1836/notionflow/internal/domain"
	nferrors "github.com/mrz1836/notionflow/internal/errors"
	"github.com/mrz1836/notionflow/internal/notion/property"
)

// ProjectResolver maps an entity to the project it belongs to. It backs the
// project filter of the audit log.
type ProjectResolver interface {
	ProjectOf(ctx context.Context, entityType, entityID string) (string, error)
}

// Tracker records and queries change history.
type Tracker struct {
	backend   Backend
	clock     clock.Clock
	logger    zerolog.Logger
	resolver  ProjectResolver
	scanLimit int
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock sets the clock used for revision timestamps and audit windows.
func WithClock(c clock.Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// WithLogger sets the tracker's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithProjectResolver enables project filtering in GetAuditLog.
func WithProjectResolver(r ProjectResolver) Option {
	return func(t *Tracker) { t.resolver = r }
}

// WithScanLimit bounds how many entity histories the audit scan loads at once.
func WithScanLimit(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.scanLimit = n
		}
	}
}

// NewTracker creates a tracker over backend.
func NewTracker(backend Backend, opts ...Option) *Tracker {
	t := &Tracker{
		backend:   backend,
		clock:     clock.RealClock{},
		logger:    zerolog.Nop(),
		scanLimit: 8,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RecordCreation writes revision 1 of a new entity: one change per initial
// property, in sorted property order, each with a nil From.
func (t *Tracker) RecordCreation(ctx context.Context, entityID, entityType, author string, props map[string]any) (*domain.Revision, error) {
	keys := sortedKeys(props)
	changes := make([]domain.PropertyChange, 0, len(keys))
	for _, k := range keys {
		changes = append(changes, domain.PropertyChange{Property: k, To: property.Plain(props[k])})
	}

	return t.write(ctx, entityID, entityType, author, "created", changes)
}

// RecordUpdate compares old and new property maps and writes one revision
// holding a change for every property whose normalized value differs.
// Properties present on only one side count as added or removed. When
// nothing differs no revision is written and (nil, nil) is returned.
func (t *Tracker) RecordUpdate(ctx context.Context, entityID, entityType, author string, oldProps, newProps map[string]any, reason string) (*domain.Revision, error) {
	changes := Diff(oldProps, newProps)
	if len(changes) == 0 {
		t.logger.Debug().
			Str("entity_id", entityID).
			Msg("no property changes, skipping revision")
		return nil, nil
	}

	return t.write(ctx, entityID, entityType, author, reason, changes)
}

// Diff returns the changes between two property maps in sorted key order.
// Values are compared after normalization with property.Plain.
func Diff(oldProps, newProps map[string]any) []domain.PropertyChange {
	union := make(map[string]any, len(oldProps)+len(newProps))
	for k := range oldProps {
		union[k] = nil
	}
	for k := range newProps {
		union[k] = nil
	}

	var changes []domain.PropertyChange
	for _, k := range sortedKeys(union) {
		from := property.Plain(oldProps[k])
		to := property.Plain(newProps[k])
		if reflect.DeepEqual(from, to) {
			continue
		}
		changes = append(changes, domain.PropertyChange{Property: k, From: from, To: to})
	}
	return changes
}

func (t *Tracker) write(ctx context.Context, entityID, entityType, author, reason string, changes []domain.PropertyChange) (*domain.Revision, error) {
	rev := &domain.Revision{
		EntityID:   entityID,
		EntityType: entityType,
		Timestamp:  t.clock.Now().UTC(),
		Author:     author,
		Changes:    changes,
		Reason:     reason,
		EventID:    uuid.New().String(),
	}

	if err := t.backend.Append(ctx, rev); err != nil {
		return nil, fmt.Errorf("failed to record revision for %s/%s: %w", entityType, entityID, err)
	}

	t.logger.Info().
		Str("entity_type", entityType).
		Str("entity_id", entityID).
		Int("revision_id", rev.RevisionID).
		Int("changes", len(changes)).
		Str("author", author).
		Msg("revision recorded")
	return rev, nil
}

// GetHistory returns every revision of an entity, oldest first.
func (t *Tracker) GetHistory(ctx context.Context, entityID, entityType string) ([]domain.Revision, error) {
	revs, err := t.backend.Load(ctx, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %s/%s: %w", entityType, entityID, err)
	}
	return revs, nil
}

// GetRevision reconstructs the entity's property state as of revisionID by
// folding changes of revisions 1..revisionID, last write wins. A property
// whose latest change has a nil To is absent from the snapshot. Returns
// (nil, nil) when revisionID is out of range.
func (t *Tracker) GetRevision(ctx context.Context, entityID, entityType string, revisionID int) (map[string]any, error) {
	revs, err := t.GetHistory(ctx, entityID, entityType)
	if err != nil {
		return nil, err
	}
	if revisionID < 1 || revisionID > len(revs) {
		return nil, nil
	}

	state := make(map[string]any)
	for _, rev := range revs {
		if rev.RevisionID > revisionID {
			break
		}
		for _, c := range rev.Changes {
			if c.To == nil {
				delete(state, c.Property)
				continue
			}
			state[c.Property] = c.To
		}
	}
	return state, nil
}

// CompareRevisions returns the concatenated changes of revisions in
// (from, to], in revision order. It is the raw change log between the two
// points, not a net per-property difference: a property changed twice in the
// range appears twice.
func (t *Tracker) CompareRevisions(ctx context.Context, entityID, entityType string, from, to int) ([]domain.PropertyChange, error) {
	if from < 0 || from > to {
		return nil, fmt.Errorf("revision range (%d, %d]: %w", from, to, nferrors.ErrInvalidArgument)
	}

	revs, err := t.GetHistory(ctx, entityID, entityType)
	if err != nil {
		return nil, err
	}

	changes := []domain.PropertyChange{}
	for _, rev := range revs {
		if rev.RevisionID > from && rev.RevisionID <= to {
			changes = append(changes, rev.Changes...)
		}
	}
	return changes, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
