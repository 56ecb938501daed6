// Package store defines the entity store contract the workflow engine is built
// on and an in-memory implementation of it.
//
// An entity store holds pages ("records") grouped under databases. The Notion
// client in internal/notion is the production implementation; MemoryStore
// backs tests and offline dry runs.
package store

import (
	"context"
	"time"

	"github.com/mrz1836/notionflow/internal/notion/property"
)

// Record is one page as returned by the store.
type Record struct {
	ID             string       `json:"id"`
	ParentID       string       `json:"parent_id"`
	CreatedTime    time.Time    `json:"created_time"`
	LastEditedTime time.Time    `json:"last_edited_time"`
	Archived       bool         `json:"archived,omitempty"`
	Properties     property.Bag `json:"properties"`
}

// Clone returns a copy of the record with its own property bag.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Properties = r.Properties.Clone()
	return &c
}

// EntityStore reads and writes records.
//
// Get returns an error wrapping errors.ErrNotFound for unknown or archived IDs.
// Query returns every matching record of a database in store order, following
// pagination internally. A nil filter matches everything.
type EntityStore interface {
	Get(ctx context.Context, id string) (*Record, error)
	Update(ctx context.Context, id string, props property.Bag) (*Record, error)
	Query(ctx context.Context, databaseID string, filter *Filter) ([]*Record, error)
	Create(ctx context.Context, databaseID string, props property.Bag) (*Record, error)
}
