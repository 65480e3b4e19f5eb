package storage

import (
	"context"
	"log/slog"

	"github.com/superpet/superpet-api/internal/errors"
	redisclient "github.com/superpet/superpet-api/internal/redis"
)

const scanBatch = 100

// RedisConfig contains configuration for the Redis store.
type RedisConfig struct {
	Client  redisclient.Client
	Version string
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// RedisStore keeps values in Redis under a versioned prefix.
type RedisStore struct {
	client  redisclient.Client
	version string
	prefix  string
}

// NewRedis creates a Redis-backed store. Call Init before use.
func NewRedis(cfg *RedisConfig) (*RedisStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	version := normalizeVersion(cfg.Version)
	return &RedisStore{
		client:  cfg.Client,
		version: version,
		prefix:  VersionPrefix(version),
	}, nil
}

// Init compares the stored version with the configured one. On mismatch
// every superpet_ key is deleted and the new version is recorded.
func (s *RedisStore) Init(ctx context.Context) error {
	stored, err := s.client.Get(ctx, VersionKey).Result()
	if err != nil && !redisclient.IsNil(err) {
		return errors.Wrap(err, "failed to read storage version")
	}
	if err == nil && stored == s.version {
		return nil
	}

	removed, err := s.clearPrefixed(ctx)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, VersionKey, s.version, 0).Err(); err != nil {
		return errors.Wrap(err, "failed to record storage version")
	}
	slog.Info("storage version changed, cleared game data",
		"previous", stored,
		"version", s.version,
		"removed_keys", removed)
	return nil
}

func (s *RedisStore) clearPrefixed(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, KeyPrefix+"*", scanBatch).Result()
		if err != nil {
			return removed, errors.Wrap(err, "failed to scan stored keys")
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return removed, errors.Wrap(err, "failed to clear stored keys")
			}
			removed += len(keys)
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

// Load returns the value under key.
func (s *RedisStore) Load(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if redisclient.IsNil(err) {
			return "", false, nil
		}
		return "", false, errors.Wrapf(err, "failed to load %s", key)
	}
	return value, true, nil
}

// Save writes value under key with no expiry.
func (s *RedisStore) Save(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to save %s", key)
	}
	return nil
}

// Remove deletes key.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Wrapf(err, "failed to remove %s", key)
	}
	return nil
}
