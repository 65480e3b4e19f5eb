package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/superpet/superpet-api/internal/errors"
)

// InitSQLite opens the SQLite database at dbPath and creates the key-value
// table. ":memory:" opens a private in-memory database.
func InitSQLite(dbPath string) (*sql.DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return db, nil
}

// SQLiteConfig contains configuration for the SQLite store.
type SQLiteConfig struct {
	DB      *sql.DB
	Version string
}

// Validate validates the SQLiteConfig.
func (cfg *SQLiteConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.DB == nil {
		return errors.InvalidArgument("db cannot be nil")
	}
	return nil
}

// SQLiteStore keeps values in a single SQLite table under a versioned
// prefix, for single-node deployments without Redis.
type SQLiteStore struct {
	db      *sql.DB
	version string
	prefix  string
}

// NewSQLite creates a SQLite-backed store. Call Init before use.
func NewSQLite(cfg *SQLiteConfig) (*SQLiteStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	version := normalizeVersion(cfg.Version)
	return &SQLiteStore{db: cfg.DB, version: version, prefix: VersionPrefix(version)}, nil
}

// Init clears every superpet_ row when the recorded version differs.
func (s *SQLiteStore) Init(ctx context.Context) error {
	var stored string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, VersionKey).Scan(&stored)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(err, "failed to read storage version")
	}
	if err == nil && stored == s.version {
		return nil
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key LIKE ? ESCAPE '\'`, `superpet\_%`)
	if err != nil {
		return errors.Wrap(err, "failed to clear stored keys")
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		VersionKey, s.version); err != nil {
		return errors.Wrap(err, "failed to record storage version")
	}
	removed, _ := res.RowsAffected()
	slog.Info("storage version changed, cleared game data",
		"previous", stored,
		"version", s.version,
		"removed_keys", removed)
	return nil
}

// Load returns the value under key.
func (s *SQLiteStore) Load(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, s.prefix+key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to load %s", key)
	}
	return value, true, nil
}

// Save writes value under key.
func (s *SQLiteStore) Save(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		s.prefix+key, value)
	if err != nil {
		return errors.Wrapf(err, "failed to save %s", key)
	}
	return nil
}

// Remove deletes key.
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, s.prefix+key); err != nil {
		return errors.Wrapf(err, "failed to remove %s", key)
	}
	return nil
}
