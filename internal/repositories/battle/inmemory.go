package battle

import (
	"context"
	"sync"

	"github.com/superpet/superpet-api/internal/engine"
	"github.com/superpet/superpet-api/internal/errors"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*engine.Battle
}

// NewInMemory creates a new in-memory repository
func NewInMemory() *InMemoryRepository {
	return &InMemoryRepository{
		store: make(map[string]*engine.Battle),
	}
}

func clone(b *engine.Battle) *engine.Battle {
	c := *b
	c.Log = append([]engine.LogEntry(nil), b.Log...)
	c.Monster.Drops = append(c.Monster.Drops[:0:0], b.Monster.Drops...)
	if b.Victory != nil {
		v := *b.Victory
		v.Drops = append([]string(nil), b.Victory.Drops...)
		c.Victory = &v
	}
	return &c
}

// Save stores a battle
func (r *InMemoryRepository) Save(ctx context.Context, input *SaveInput) (*SaveOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	if input.PlayerID == "" {
		return nil, errors.InvalidArgument("player ID is required")
	}

	if input.Battle == nil {
		return nil, errors.InvalidArgument("battle is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[input.PlayerID] = clone(input.Battle)

	return &SaveOutput{Success: true}, nil
}

// Get retrieves a battle by player
func (r *InMemoryRepository) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	if input.PlayerID == "" {
		return nil, errors.InvalidArgument("player ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	b, exists := r.store[input.PlayerID]
	if !exists {
		return nil, errors.NotFound("battle not found")
	}

	// Return a copy to prevent external modification
	return &GetOutput{Battle: clone(b)}, nil
}

// Delete removes a battle
func (r *InMemoryRepository) Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	if input.PlayerID == "" {
		return nil, errors.InvalidArgument("player ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[input.PlayerID]; !exists {
		return nil, errors.NotFound("battle not found")
	}

	delete(r.store, input.PlayerID)

	return &DeleteOutput{Success: true}, nil
}
