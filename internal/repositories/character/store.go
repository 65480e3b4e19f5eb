package character

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/errors"
	"github.com/superpet/superpet-api/internal/pkg/idgen"
	"github.com/superpet/superpet-api/internal/repositories/storage"
)

const (
	errCharacterNil     = "character cannot be nil"
	errCharacterIDEmpty = "character ID cannot be empty"
	errPlayerIDEmpty    = "player ID cannot be empty"
)

// StoreConfig contains configuration for the store-backed repository.
type StoreConfig struct {
	Store storage.Store
	// InstanceIDs names equipment found in legacy saves. Defaults to UUIDs.
	InstanceIDs *idgen.InstanceIDs
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
	store       storage.Store
	instanceIDs *idgen.InstanceIDs
}

// NewStore creates a character repository on top of a key-value store.
func NewStore(cfg *StoreConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ids := cfg.InstanceIDs
	if ids == nil {
		ids = idgen.NewInstanceIDs(nil)
	}
	return &storeRepository{store: cfg.Store, instanceIDs: ids}, nil
}

// storedCharacter reads the equipment block slot by slot so saves written
// before equipped items carried instance IDs can be upgraded on load.
type storedCharacter struct {
	superpet.Character
	Equipment map[superpet.EquipmentSlot]json.RawMessage `json:"equipment"`
}

func (r *storeRepository) load(ctx context.Context, playerID string) ([]*superpet.Character, error) {
	if playerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}
	raw, ok, err := r.store.Load(ctx, storage.PlayerKey(playerID, storage.KeyCharacters))
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []*superpet.Character{}, nil
	}

	var stored []storedCharacter
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal characters")
	}

	patched := false
	chars := make([]*superpet.Character, 0, len(stored))
	for i := range stored {
		c := stored[i].Character
		c.Equipment = superpet.Equipment{}
		for slot, data := range stored[i].Equipment {
			item, legacy, err := r.decodeSlot(data)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to unmarshal %s equipment of %s", slot, c.ID)
			}
			patched = patched || legacy
			c.Equipment.Set(slot, item)
		}
		if c.Level < 1 {
			c.Level = 1
			patched = true
		}
		chars = append(chars, &c)
	}

	if patched {
		slog.Info("upgraded legacy character data", "player_id", playerID)
		if err := r.save(ctx, playerID, chars); err != nil {
			return nil, err
		}
	}
	return chars, nil
}

// decodeSlot returns the equipped item in data. A bare catalog item without
// an instance ID is wrapped with a fresh one and reported as legacy.
func (r *storeRepository) decodeSlot(data json.RawMessage) (*superpet.EquippedItem, bool, error) {
	if len(data) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, false, nil
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, false, err
	}
	if _, ok := probe["instanceId"]; ok {
		var item superpet.EquippedItem
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, false, err
		}
		return &item, false, nil
	}

	var bare superpet.GameItem
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, false, err
	}
	return &superpet.EquippedItem{Item: bare, InstanceID: r.instanceIDs.For(bare.ID)}, true, nil
}

func (r *storeRepository) save(ctx context.Context, playerID string, chars []*superpet.Character) error {
	data, err := json.Marshal(chars)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal characters")
	}
	return r.store.Save(ctx, storage.PlayerKey(playerID, storage.KeyCharacters), string(data))
}

func indexOf(chars []*superpet.Character, id string) int {
	for i, c := range chars {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (r *storeRepository) ListByPlayerID(ctx context.Context, input ListByPlayerIDInput) (*ListByPlayerIDOutput, error) {
	chars, err := r.load(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	return &ListByPlayerIDOutput{Characters: chars}, nil
}

func (r *storeRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}
	chars, err := r.load(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	idx := indexOf(chars, input.ID)
	if idx < 0 {
		return nil, errors.NotFoundf("character with ID %s not found", input.ID)
	}
	return &GetOutput{Character: chars[idx]}, nil
}

func (r *storeRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Character == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	if input.Character.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}
	chars, err := r.load(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	if indexOf(chars, input.Character.ID) >= 0 {
		return nil, errors.AlreadyExists("character with ID " + input.Character.ID + " already exists")
	}
	chars = append(chars, input.Character)
	if err := r.save(ctx, input.PlayerID, chars); err != nil {
		return nil, err
	}
	return &CreateOutput{Character: input.Character}, nil
}

func (r *storeRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Character == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	if input.Character.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}
	chars, err := r.load(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	idx := indexOf(chars, input.Character.ID)
	if idx < 0 {
		return nil, errors.NotFoundf("character with ID %s not found", input.Character.ID)
	}
	chars[idx] = input.Character
	if err := r.save(ctx, input.PlayerID, chars); err != nil {
		return nil, err
	}
	return &UpdateOutput{Character: input.Character}, nil
}

func (r *storeRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}
	chars, err := r.load(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	idx := indexOf(chars, input.ID)
	if idx < 0 {
		return nil, errors.NotFoundf("character with ID %s not found", input.ID)
	}
	chars = append(chars[:idx], chars[idx+1:]...)
	if err := r.save(ctx, input.PlayerID, chars); err != nil {
		return nil, err
	}
	return &DeleteOutput{Remaining: chars}, nil
}

func (r *storeRepository) GetActive(ctx context.Context, input GetActiveInput) (*GetActiveOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}
	id, ok, err := r.store.Load(ctx, storage.PlayerKey(input.PlayerID, storage.KeyActiveCharacter))
	if err != nil {
		return nil, err
	}
	if !ok || id == "" {
		return &GetActiveOutput{}, nil
	}
	chars, err := r.load(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	out := &GetActiveOutput{ID: id}
	if idx := indexOf(chars, id); idx >= 0 {
		out.Character = chars[idx]
	}
	return out, nil
}

func (r *storeRepository) SetActive(ctx context.Context, input SetActiveInput) (*SetActiveOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}
	key := storage.PlayerKey(input.PlayerID, storage.KeyActiveCharacter)
	if input.ID == "" {
		if err := r.store.Remove(ctx, key); err != nil {
			return nil, err
		}
		return &SetActiveOutput{}, nil
	}
	if err := r.store.Save(ctx, key, input.ID); err != nil {
		return nil, err
	}
	return &SetActiveOutput{}, nil
}
