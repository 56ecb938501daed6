package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/notionflow/internal/constants"
	"github.com/mrz1836/notionflow/internal/ctxutil"
	"github.com/mrz1836/notionflow/internal/domain"
	nferrors "github.com/mrz1836/notionflow/internal/errors"
	"github.com/mrz1836/notionflow/internal/flock"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// FileBackend stores each entity's revisions as JSON lines in
// <root>/<entity_type>/<entity_id>.jsonl.
type FileBackend struct {
	root        string
	lockTimeout time.Duration
	logger      zerolog.Logger
}

// NewFileBackend creates a backend rooted at root. The directory is created
// lazily on first write.
func NewFileBackend(root string, lockTimeout time.Duration, logger zerolog.Logger) *FileBackend {
	if lockTimeout <= 0 {
		lockTimeout = constants.HistoryLockTimeout
	}
	return &FileBackend{root: root, lockTimeout: lockTimeout, logger: logger}
}

// Root returns the storage directory.
func (b *FileBackend) Root() string {
	return b.root
}

func (b *FileBackend) entityPath(entityType, entityID string) string {
	return filepath.Join(b.root, entityType, entityID+constants.HistoryFileExt)
}

func (b *FileBackend) lockPath(entityType, entityID string) string {
	return filepath.Join(b.root, entityType, entityID+".lock")
}

// Append implements Backend. The entity lock is held across reading the
// current sequence and appending, so concurrent writers (in this or other
// processes) never reuse a revision number.
func (b *FileBackend) Append(ctx context.Context, rev *domain.Revision) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	if err := validateRef(rev.EntityType, rev.EntityID); err != nil {
		return err
	}

	lock, err := flock.Acquire(ctx, b.lockPath(rev.EntityType, rev.EntityID), b.lockTimeout)
	if err != nil {
		return fmt.Errorf("%w: %w", nferrors.ErrHistoryWrite, err)
	}
	defer func() { _ = lock.Release() }()

	existing, err := b.read(rev.EntityType, rev.EntityID)
	if err != nil {
		return fmt.Errorf("%w: %w", nferrors.ErrHistoryWrite, err)
	}
	rev.RevisionID = nextRevisionID(existing)

	line, err := json.Marshal(rev)
	if err != nil {
		return fmt.Errorf("%w: failed to encode revision: %w", nferrors.ErrHistoryWrite, err)
	}
	line = append(line, '\n')

	path := b.entityPath(rev.EntityType, rev.EntityID)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm) //#nosec G304 -- path is validated and constructed from trusted base
	if err != nil {
		return fmt.Errorf("%w: %w", nferrors.ErrHistoryWrite, err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %w", nferrors.ErrHistoryWrite, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %w", nferrors.ErrHistoryWrite, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", nferrors.ErrHistoryWrite, err)
	}

	b.logger.Debug().
		Str("entity_type", rev.EntityType).
		Str("entity_id", rev.EntityID).
		Int("revision_id", rev.RevisionID).
		Msg("revision appended")
	return nil
}

// Load implements Backend.
func (b *FileBackend) Load(ctx context.Context, entityType, entityID string) ([]domain.Revision, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if err := validateRef(entityType, entityID); err != nil {
		return nil, err
	}
	return b.read(entityType, entityID)
}

// read parses an entity file. A torn final line (no trailing newline, e.g.
// after a crash mid-write) is ignored; any other malformed line is corruption.
func (b *FileBackend) read(entityType, entityID string) ([]domain.Revision, error) {
	path := b.entityPath(entityType, entityID)
	data, err := os.ReadFile(path) //#nosec G304 -- path is validated and constructed from trusted base
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Revision{}, nil
		}
		return nil, fmt.Errorf("failed to read history %s/%s: %w", entityType, entityID, err)
	}

	lines := bytes.Split(data, []byte{'\n'})
	revs := make([]domain.Revision, 0, len(lines))
	for i, line := range lines {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var rev domain.Revision
		if err := json.Unmarshal(line, &rev); err != nil {
			if i == len(lines)-1 {
				b.logger.Warn().
					Str("entity_type", entityType).
					Str("entity_id", entityID).
					Msg("ignoring torn final history line")
				continue
			}
			return nil, fmt.Errorf("history %s/%s line %d: %w", entityType, entityID, i+1, nferrors.ErrHistoryCorrupted)
		}
		revs = append(revs, rev)
	}

	sortRevisions(revs)
	return revs, nil
}

// Entities implements Backend by walking <root>/<type>/*.jsonl.
func (b *FileBackend) Entities(ctx context.Context) ([]EntityRef, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	typeDirs, err := os.ReadDir(b.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list history directory: %w", err)
	}

	var refs []EntityRef
	for _, td := range typeDirs {
		if !td.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(b.root, td.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to list history for %s: %w", td.Name(), err)
		}
		for _, f := range files {
			name := f.Name()
			if f.IsDir() || !strings.HasSuffix(name, constants.HistoryFileExt) {
				continue
			}
			refs = append(refs, EntityRef{Type: td.Name(), ID: strings.TrimSuffix(name, constants.HistoryFileExt)})
		}
	}
	return refs, nil
}

func nextRevisionID(existing []domain.Revision) int {
	if len(existing) == 0 {
		return 1
	}
	return existing[len(existing)-1].RevisionID + 1
}

func sortRevisions(revs []domain.Revision) {
	slices.SortStableFunc(revs, func(a, b domain.Revision) int {
		return a.RevisionID - b.RevisionID
	})
}

var _ Backend = (*FileBackend)(nil)
