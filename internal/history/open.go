package history

import (
	"github.com/rs/zerolog"

	"github.com/mrz1836/notionflow/internal/config"
	"github.com/mrz1836/notionflow/internal/logging"
)

// OpenBackend builds the backend selected by configuration. The returned
// close function releases remote connections and is never nil.
func OpenBackend(cfg *config.Config, logger zerolog.Logger) (Backend, func() error, error) {
	root, err := cfg.HistoryPath()
	if err != nil {
		return nil, nil, err
	}
	local := NewFileBackend(root, cfg.History.LockTimeout, logger)

	if cfg.History.Backend != config.BackendRedis {
		return local, func() error { return nil }, nil
	}

	logger.Debug().
		Str("redis_url", logging.SafeValue("redis_url", cfg.History.RedisURL)).
		Str("key_prefix", cfg.History.KeyPrefix).
		Msg("using redis history backend with local fallback")

	remote := NewRedisBackend(cfg.History.RedisURL, cfg.History.KeyPrefix, logger)
	return NewFallbackBackend(remote, local, logger), remote.Close, nil
}
