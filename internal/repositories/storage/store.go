// Package storage provides the string key-value collaborator game state is
// persisted through. Implementations namespace keys under a versioned
// prefix; bumping the version discards every previously stored value.
package storage

//go:generate mockgen -destination=mock/mock_store.go -package=storagemock github.com/superpet/superpet-api/internal/repositories/storage Store

import (
	"context"
	"strings"
)

const (
	// KeyPrefix is shared by every key the game owns, versioned or not.
	KeyPrefix = "superpet_"
	// VersionKey records which storage version wrote the current data.
	VersionKey = KeyPrefix + "storage_version"
	// DefaultVersion is the storage version used when none is configured.
	DefaultVersion = "v4"
)

// Game data keys. Per-player keys are built with PlayerKey.
const (
	KeyCharacters      = "characters"
	KeyActiveCharacter = "active-character"
	KeyInventory       = "inventory"
	KeyLastFeedTime    = "last-feed-time"
	KeyMissionDate     = "mission-date"
)

// GameDataKeys are the keys that make up a player's save file.
var GameDataKeys = []string{KeyCharacters, KeyActiveCharacter, KeyInventory}

// Store is a string key-value store.
type Store interface {
	// Load returns the value under key and whether it existed.
	Load(ctx context.Context, key string) (string, bool, error)

	// Save writes value under key, replacing any previous value.
	Save(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// Initializer is implemented by stores that must check their storage
// version before first use.
type Initializer interface {
	Init(ctx context.Context) error
}

// PlayerKey namespaces key for one player.
func PlayerKey(playerID, key string) string {
	return playerID + ":" + key
}

// VersionPrefix is the key prefix for a storage version.
func VersionPrefix(version string) string {
	return KeyPrefix + version + "_"
}

// ClearGameData removes a player's characters, active selection and
// inventory. Other keys such as mission progress are kept.
func ClearGameData(ctx context.Context, store Store, playerID string) error {
	for _, key := range GameDataKeys {
		if err := store.Remove(ctx, PlayerKey(playerID, key)); err != nil {
			return err
		}
	}
	return nil
}

func normalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return DefaultVersion
	}
	return version
}
