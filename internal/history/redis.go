package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/rs/zerolog"

	"github.com/mrz1836/notionflow/internal/domain"
)

// appendScript pushes a revision and registers the entity in one atomic step.
// The list length after the push is the revision number, so numbering can
// neither skip nor repeat.
//
// KEYS[1] = revisions list, KEYS[2] = entity index set
// ARGV[1] = revision JSON,  ARGV[2] = entity ref
var appendScript = redis.NewScript(2, `
local n = redis.call('RPUSH', KEYS[1], ARGV[1])
redis.call('SADD', KEYS[2], ARGV[2])
return n
`)

// RedisBackend stores revisions in redis lists keyed by entity:
//
//	<prefix>:<entity_type>:<entity_id>  list of revision JSON, oldest first
//	<prefix>:entities                   set of "<entity_type>/<entity_id>"
//
// The stored JSON does not carry the revision number; it is the 1-based
// list position.
type RedisBackend struct {
	pool   *redis.Pool
	prefix string
	logger zerolog.Logger
}

// NewRedisBackend creates a backend connecting to rawURL
// (redis://[user:pass@]host:port/db).
func NewRedisBackend(rawURL, prefix string, logger zerolog.Logger) *RedisBackend {
	pool := &redis.Pool{
		MaxIdle:     3,
		IdleTimeout: 4 * time.Minute,
		Dial: func() (redis.Conn, error) {
			return redis.DialURL(rawURL,
				redis.DialConnectTimeout(5*time.Second),
				redis.DialReadTimeout(5*time.Second),
				redis.DialWriteTimeout(5*time.Second),
			)
		},
	}
	return &RedisBackend{pool: pool, prefix: strings.TrimRight(prefix, ":"), logger: logger}
}

// Close releases pooled connections.
func (b *RedisBackend) Close() error {
	return b.pool.Close()
}

func (b *RedisBackend) listKey(entityType, entityID string) string {
	return b.prefix + ":" + entityType + ":" + entityID
}

func (b *RedisBackend) indexKey() string {
	return b.prefix + ":entities"
}

// Append implements Backend.
func (b *RedisBackend) Append(ctx context.Context, rev *domain.Revision) error {
	if err := validateRef(rev.EntityType, rev.EntityID); err != nil {
		return err
	}

	conn, err := b.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("redis connect: %w", err)
	}
	defer func() { _ = conn.Close() }()

	stored := *rev
	stored.RevisionID = 0
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode revision: %w", err)
	}

	ref := EntityRef{Type: rev.EntityType, ID: rev.EntityID}.String()
	n, err := redis.Int(appendScript.Do(conn, b.listKey(rev.EntityType, rev.EntityID), b.indexKey(), data, ref))
	if err != nil {
		return fmt.Errorf("redis append %s: %w", ref, err)
	}
	rev.RevisionID = n

	b.logger.Debug().
		Str("entity", ref).
		Int("revision_id", n).
		Msg("revision appended to redis")
	return nil
}

// Load implements Backend.
func (b *RedisBackend) Load(ctx context.Context, entityType, entityID string) ([]domain.Revision, error) {
	if err := validateRef(entityType, entityID); err != nil {
		return nil, err
	}

	conn, err := b.pool.GetContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}
	defer func() { _ = conn.Close() }()

	items, err := redis.ByteSlices(conn.Do("LRANGE", b.listKey(entityType, entityID), 0, -1))
	if err != nil {
		return nil, fmt.Errorf("redis load %s/%s: %w", entityType, entityID, err)
	}

	revs := make([]domain.Revision, 0, len(items))
	for i, item := range items {
		var rev domain.Revision
		if err := json.Unmarshal(item, &rev); err != nil {
			return nil, fmt.Errorf("redis revision %d of %s/%s: %w", i+1, entityType, entityID, err)
		}
		rev.RevisionID = i + 1
		revs = append(revs, rev)
	}
	return revs, nil
}

// Entities implements Backend.
func (b *RedisBackend) Entities(ctx context.Context) ([]EntityRef, error) {
	conn, err := b.pool.GetContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}
	defer func() { _ = conn.Close() }()

	members, err := redis.Strings(conn.Do("SMEMBERS", b.indexKey()))
	if err != nil {
		return nil, fmt.Errorf("redis list entities: %w", err)
	}

	refs := make([]EntityRef, 0, len(members))
	for _, m := range members {
		typ, id, ok := strings.Cut(m, "/")
		if !ok {
			continue
		}
		refs = append(refs, EntityRef{Type: typ, ID: id})
	}
	return refs, nil
}

var _ Backend = (*RedisBackend)(nil)
