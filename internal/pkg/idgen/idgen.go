// Package idgen provides ID generation utilities
package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -destination=mock/mock.go -package=idgenmock github.com/superpet/superpet-api/internal/pkg/idgen Generator

// Generator generates unique identifiers
type Generator interface {
	Generate() string
}

// PrefixedGenerator generates IDs with a specific prefix
type PrefixedGenerator struct {
	prefix string
}

// NewPrefixed creates a new generator with the given prefix
func NewPrefixed(prefix string) *PrefixedGenerator {
	return &PrefixedGenerator{prefix: prefix}
}

// Generate creates a new ID with the format: prefix_timestamp_random
func (g *PrefixedGenerator) Generate() string {
	timestamp := time.Now().UnixMilli()
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		// crypto/rand.Read only fails on a broken system
		panic(fmt.Sprintf("crypto/rand.Read failed: %v", err))
	}

	return fmt.Sprintf("%s_%d_%s", g.prefix, timestamp, hex.EncodeToString(randomBytes))
}

// SequentialGenerator generates sequential IDs for testing
type SequentialGenerator struct {
	prefix  string
	counter uint64
}

// NewSequential creates a new sequential generator
func NewSequential(prefix string) *SequentialGenerator {
	return &SequentialGenerator{prefix: prefix}
}

// Generate creates a new sequential ID
func (g *SequentialGenerator) Generate() string {
	n := atomic.AddUint64(&g.counter, 1)
	if g.prefix != "" {
		return fmt.Sprintf("%s_%d", g.prefix, n)
	}
	return fmt.Sprintf("%d", n)
}

// UUIDGenerator generates UUIDs with optional prefix
type UUIDGenerator struct {
	prefix string
}

// NewUUID creates a new UUID generator with optional prefix
func NewUUID(prefix string) *UUIDGenerator {
	return &UUIDGenerator{prefix: prefix}
}

// Generate creates a new UUID-based ID
func (g *UUIDGenerator) Generate() string {
	id := uuid.New().String()
	if g.prefix != "" {
		return fmt.Sprintf("%s_%s", g.prefix, id)
	}
	return id
}

// InstanceIDs derives equipment instance IDs from a catalog item ID using
// an underlying generator, giving IDs shaped like "katana-<suffix>".
type InstanceIDs struct {
	gen Generator
}

// NewInstanceIDs wraps gen. A nil gen uses unprefixed UUIDs.
func NewInstanceIDs(gen Generator) *InstanceIDs {
	if gen == nil {
		gen = NewUUID("")
	}
	return &InstanceIDs{gen: gen}
}

// For returns a fresh instance ID for itemID.
func (i *InstanceIDs) For(itemID string) string {
	return itemID + "-" + i.gen.Generate()
}
