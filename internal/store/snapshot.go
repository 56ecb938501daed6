package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	nferrors "github.com/mrz1836/notionflow/internal/errors"
)

// snapshot is the on-disk form of a MemoryStore.
type snapshot struct {
	Records []*Record `json:"records"`
}

// LoadSnapshot builds a MemoryStore from a snapshot file written by
// SaveSnapshot. A missing file yields an empty store.
func LoadSnapshot(path string, opts ...MemoryOption) (*MemoryStore, error) {
	s := NewMemoryStore(opts...)

	data, err := os.ReadFile(path) //#nosec G304 -- path comes from configuration
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, nferrors.Wrap(err, "failed to read snapshot")
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, nferrors.Wrapf(err, "failed to parse snapshot %s", path)
	}
	for _, rec := range snap.Records {
		s.Put(rec)
	}
	return s, nil
}

// SaveSnapshot writes every record, archived ones included, to path
// atomically.
func (s *MemoryStore) SaveSnapshot(path string) error {
	s.mu.RLock()
	snap := snapshot{Records: make([]*Record, 0, len(s.order))}
	for _, id := range s.order {
		snap.Records = append(snap.Records, s.records[id].Clone())
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nferrors.Wrap(err, "failed to encode snapshot")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nferrors.Wrap(err, "failed to create snapshot directory")
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return nferrors.Wrap(err, "failed to write snapshot")
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return nferrors.Wrap(err, "failed to replace snapshot")
	}
	return nil
}
