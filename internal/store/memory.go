package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mrz1836/notionflow/internal/clock"
	nferrors "github.com/mrz1836/notionflow/internal/errors"
	"github.com/mrz1836/notionflow/internal/notion/property"
)

// MemoryStore is an EntityStore kept in process memory. Records are returned
// from Query in creation order. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	order   []string
	faults  map[string]error
	clock   clock.Clock
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock sets the clock used for created/edited timestamps.
func WithClock(c clock.Clock) MemoryOption {
	return func(s *MemoryStore) { s.clock = c }
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		records: make(map[string]*Record),
		faults:  make(map[string]error),
		clock:   clock.RealClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put inserts or replaces a record as-is. The record's ParentID is the
// database it belongs to.
func (s *MemoryStore) Put(rec *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.ID]; !exists {
		s.order = append(s.order, rec.ID)
	}
	s.records[rec.ID] = rec.Clone()
}

// Archive marks a record archived; Get then reports it as not found.
func (s *MemoryStore) Archive(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[id]; ok {
		rec.Archived = true
	}
}

// FailOn makes every Get and Update of id return err until cleared with a nil err.
func (s *MemoryStore) FailOn(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, id)
		return
	}
	s.faults[id] = err
}

// Get implements EntityStore.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.faults[id]; err != nil {
		return nil, err
	}
	rec, ok := s.records[id]
	if !ok || rec.Archived {
		return nil, fmt.Errorf("record '%s': %w", id, nferrors.ErrNotFound)
	}
	return rec.Clone(), nil
}

// Update implements EntityStore. Properties not named in props are kept.
func (s *MemoryStore) Update(ctx context.Context, id string, props property.Bag) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.faults[id]; err != nil {
		return nil, err
	}
	rec, ok := s.records[id]
	if !ok || rec.Archived {
		return nil, fmt.Errorf("record '%s': %w", id, nferrors.ErrNotFound)
	}
	rec.Properties = rec.Properties.Merge(props)
	rec.LastEditedTime = s.clock.Now()
	return rec.Clone(), nil
}

// Query implements EntityStore.
func (s *MemoryStore) Query(ctx context.Context, databaseID string, filter *Filter) ([]*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.faults[databaseID]; err != nil {
		return nil, err
	}

	var out []*Record
	for _, id := range s.order {
		rec := s.records[id]
		if rec.ParentID != databaseID || rec.Archived {
			continue
		}
		if filter != nil && !filter.Matches(rec.Properties) {
			continue
		}
		out = append(out, rec.Clone())
	}
	return out, nil
}

// Create implements EntityStore.
func (s *MemoryStore) Create(ctx context.Context, databaseID string, props property.Bag) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if databaseID == "" {
		return nil, fmt.Errorf("failed to create record: database ID %w", nferrors.ErrEmptyValue)
	}

	now := s.clock.Now()
	rec := &Record{
		ID:             uuid.New().String(),
		ParentID:       databaseID,
		CreatedTime:    now,
		LastEditedTime: now,
		Properties:     props.Clone(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	return rec.Clone(), nil
}

var _ EntityStore = (*MemoryStore)(nil)
