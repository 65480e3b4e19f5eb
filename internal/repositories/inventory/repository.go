// Package inventory provides persistence for a player's bag
package inventory

import (
	"context"
	"encoding/json"

	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/errors"
	"github.com/superpet/superpet-api/internal/repositories/storage"
)

// Repository loads and saves whole inventories.
type Repository interface {
	// Get returns the player's inventory, empty when nothing was saved
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Save replaces the player's inventory
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)
}

// GetInput defines the input for loading an inventory
type GetInput struct {
	PlayerID string
}

// GetOutput defines the output for loading an inventory
type GetOutput struct {
	Items superpet.Inventory
}

// SaveInput defines the input for saving an inventory
type SaveInput struct {
	PlayerID string
	Items    superpet.Inventory
}

// SaveOutput defines the output for saving an inventory
type SaveOutput struct{}

// StoreConfig contains configuration for the store-backed repository.
type StoreConfig struct {
	Store storage.Store
}

// Validate validates the StoreConfig.
func (cfg *StoreConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Store == nil {
		return errors.InvalidArgument("store cannot be nil")
	}
	return nil
}

type storeRepository struct {
	store storage.Store
}

// NewStore creates an inventory repository on top of a key-value store.
func NewStore(cfg *StoreConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &storeRepository{store: cfg.Store}, nil
}

func (r *storeRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument("player ID cannot be empty")
	}
	raw, ok, err := r.store.Load(ctx, storage.PlayerKey(input.PlayerID, storage.KeyInventory))
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return &GetOutput{Items: superpet.Inventory{}}, nil
	}

	var items superpet.Inventory
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal inventory")
	}
	// entries saved without a quantity predate stacking
	for i := range items {
		if items[i].Quantity <= 0 {
			items[i].Quantity = 1
		}
	}
	if items == nil {
		items = superpet.Inventory{}
	}
	return &GetOutput{Items: items}, nil
}

func (r *storeRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument("player ID cannot be empty")
	}
	items := input.Items
	if items == nil {
		items = superpet.Inventory{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal inventory")
	}
	if err := r.store.Save(ctx, storage.PlayerKey(input.PlayerID, storage.KeyInventory), string(data)); err != nil {
		return nil, err
	}
	return &SaveOutput{}, nil
}
