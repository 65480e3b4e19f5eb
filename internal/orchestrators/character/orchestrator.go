// Package character implements the character orchestrator
package character

import (
	"context"
	"log/slog"

	"github.com/superpet/superpet-api/internal/catalog"
	"github.com/superpet/superpet-api/internal/clients/cloudsync"
	"github.com/superpet/superpet-api/internal/engine"
	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/errors"
	"github.com/superpet/superpet-api/internal/pkg/clock"
	"github.com/superpet/superpet-api/internal/pkg/idgen"
	characterrepo "github.com/superpet/superpet-api/internal/repositories/character"
	inventoryrepo "github.com/superpet/superpet-api/internal/repositories/inventory"
	"github.com/superpet/superpet-api/internal/services/character"
)

// CreateGemCost is charged for every character after the first when a gem
// wallet is configured.
const CreateGemCost = 100

// starterItemID is granted with a player's first character.
const starterItemID = "feed"

// GemWallet debits gems for paid actions. cloudsync.Client satisfies it.
type GemWallet interface {
	UseGem(ctx context.Context, input *cloudsync.UseGemInput) (*cloudsync.GemOutput, error)
}

// Config holds the dependencies for the character orchestrator
type Config struct {
	CharacterRepo characterrepo.Repository
	InventoryRepo inventoryrepo.Repository
	Engine        engine.Engine
	Catalog       *catalog.Catalog
	IDGenerator   idgen.Generator
	InstanceIDs   *idgen.InstanceIDs
	Clock         clock.Clock
	// Saver schedules cloud saves (optional)
	Saver cloudsync.Saver
	// Gems charges for extra characters (optional)
	Gems GemWallet
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}
	vb := errors.NewValidationBuilder()

	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	if c.InventoryRepo == nil {
		vb.RequiredField("InventoryRepo")
	}
	if c.Engine == nil {
		vb.RequiredField("Engine")
	}
	if c.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

// Orchestrator implements the character.Service interface
type Orchestrator struct {
	characterRepo characterrepo.Repository
	inventoryRepo inventoryrepo.Repository
	engine        engine.Engine
	catalog       *catalog.Catalog
	idGen         idgen.Generator
	instanceIDs   *idgen.InstanceIDs
	clock         clock.Clock
	saver         cloudsync.Saver
	gems          GemWallet
}

// New creates a new character orchestrator
func New(cfg *Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &Orchestrator{
		characterRepo: cfg.CharacterRepo,
		inventoryRepo: cfg.InventoryRepo,
		engine:        cfg.Engine,
		catalog:       cfg.Catalog,
		idGen:         cfg.IDGenerator,
		instanceIDs:   cfg.InstanceIDs,
		clock:         cfg.Clock,
		saver:         cfg.Saver,
		gems:          cfg.Gems,
	}
	if o.instanceIDs == nil {
		o.instanceIDs = idgen.NewInstanceIDs(nil)
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	if o.saver == nil {
		o.saver = cloudsync.Noop{}
	}
	return o, nil
}

// Ensure Orchestrator implements the Service interface
var _ character.Service = (*Orchestrator)(nil)

func requirePlayer(playerID string) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("player_id", playerID, vb)
	return vb.Build()
}

func (o *Orchestrator) sheet(c *superpet.Character) *character.Sheet {
	return &character.Sheet{
		Character:      c,
		Totals:         o.engine.TotalStats(c),
		EquipmentStats: o.engine.EquipmentStats(c),
		ExpToNext:      o.engine.ExpForNextLevel(c.Level),
	}
}

// active loads the selected character or fails with no_active_character.
func (o *Orchestrator) active(ctx context.Context, playerID string) (*superpet.Character, error) {
	out, err := o.characterRepo.GetActive(ctx, characterrepo.GetActiveInput{PlayerID: playerID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load active character")
	}
	if out.Character == nil {
		return nil, errors.NoActiveCharacter()
	}
	return out.Character, nil
}

func (o *Orchestrator) update(ctx context.Context, playerID string, c *superpet.Character) error {
	if _, err := o.characterRepo.Update(ctx, characterrepo.UpdateInput{PlayerID: playerID, Character: c}); err != nil {
		return errors.Wrap(err, "failed to save character")
	}
	return nil
}

func (o *Orchestrator) inventory(ctx context.Context, playerID string) (superpet.Inventory, error) {
	out, err := o.inventoryRepo.Get(ctx, inventoryrepo.GetInput{PlayerID: playerID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load inventory")
	}
	return out.Items, nil
}

func (o *Orchestrator) saveInventory(ctx context.Context, playerID string, items superpet.Inventory) error {
	if _, err := o.inventoryRepo.Save(ctx, inventoryrepo.SaveInput{PlayerID: playerID, Items: items}); err != nil {
		return errors.Wrap(err, "failed to save inventory")
	}
	return nil
}

// Roster methods

// CreateCharacter generates a pet, stores it and selects it
func (o *Orchestrator) CreateCharacter(
	ctx context.Context,
	input *character.CreateCharacterInput,
) (*character.CreateCharacterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := requirePlayer(input.PlayerID); err != nil {
		return nil, err
	}

	existing, err := o.characterRepo.ListByPlayerID(ctx, characterrepo.ListByPlayerIDInput{PlayerID: input.PlayerID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list characters")
	}
	tuning := o.catalog.Tuning()
	if len(existing.Characters) >= tuning.MaxCharacters {
		return nil, errors.CannotProceedf(errors.ReasonCharacterLimit,
			"a player can have at most %d characters", tuning.MaxCharacters)
	}

	c, err := o.engine.GenerateCharacter(&engine.GenerateCharacterInput{
		Name:      input.Name,
		PetType:   input.PetType,
		Traits:    input.Traits,
		ClassName: input.ClassName,
		Image:     input.Image,
	})
	if err != nil {
		return nil, err
	}

	first := len(existing.Characters) == 0
	if !first && o.gems != nil {
		_, err := o.gems.UseGem(ctx, &cloudsync.UseGemInput{
			PlayerID: input.PlayerID,
			Amount:   CreateGemCost,
			Source:   cloudsync.UseCreateCharacter,
			Memo:     "create character: " + c.Name,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to pay for character")
		}
	}

	c.ID = o.idGen.Generate()
	c.CreatedAt = o.clock.Now()
	if _, err := o.characterRepo.Create(ctx, characterrepo.CreateInput{PlayerID: input.PlayerID, Character: c}); err != nil {
		return nil, errors.Wrap(err, "failed to create character")
	}
	if _, err := o.characterRepo.SetActive(ctx, characterrepo.SetActiveInput{PlayerID: input.PlayerID, ID: c.ID}); err != nil {
		return nil, errors.Wrap(err, "failed to select character")
	}

	out := &character.CreateCharacterOutput{Sheet: o.sheet(c)}
	if first && tuning.StarterFeed > 0 {
		item, ok := o.catalog.Item(starterItemID)
		if !ok {
			return nil, errors.Internalf("starter item %s is not in the catalog", starterItemID)
		}
		items, err := o.inventory(ctx, input.PlayerID)
		if err != nil {
			return nil, err
		}
		items = items.Add(item, tuning.StarterFeed, o.instanceIDs.For)
		if err := o.saveInventory(ctx, input.PlayerID, items); err != nil {
			return nil, err
		}
		out.StarterItems = []superpet.InventoryItem{{Item: item, Quantity: tuning.StarterFeed}}
	}

	o.saver.MarkDirty(input.PlayerID)

	slog.Info("character created",
		"player_id", input.PlayerID,
		"character_id", c.ID,
		"class", c.ClassName,
		"element", c.Element,
		"first", first)

	return out, nil
}

// ListCharacters returns the roster and the current selection
func (o *Orchestrator) ListCharacters(
	ctx context.Context,
	input *character.ListCharactersInput,
) (*character.ListCharactersOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := requirePlayer(input.PlayerID); err != nil {
		return nil, err
	}

	list, err := o.characterRepo.ListByPlayerID(ctx, characterrepo.ListByPlayerIDInput{PlayerID: input.PlayerID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list characters")
	}
	active, err := o.characterRepo.GetActive(ctx, characterrepo.GetActiveInput{PlayerID: input.PlayerID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load active character")
	}

	activeID := ""
	if active.Character != nil {
		activeID = active.ID
	}
	return &character.ListCharactersOutput{
		Characters: list.Characters,
		ActiveID:   activeID,
		MaxAllowed: o.catalog.Tuning().MaxCharacters,
	}, nil
}

// SelectCharacter switches the active character
func (o *Orchestrator) SelectCharacter(
	ctx context.Context,
	input *character.SelectCharacterInput,
) (*character.SelectCharacterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("player_id", input.PlayerID, vb)
	errors.ValidateRequired("character_id", input.CharacterID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	got, err := o.characterRepo.Get(ctx, characterrepo.GetInput{PlayerID: input.PlayerID, ID: input.CharacterID})
	if err != nil {
		return nil, err
	}
	if _, err := o.characterRepo.SetActive(ctx, characterrepo.SetActiveInput{
		PlayerID: input.PlayerID,
		ID:       input.CharacterID,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to select character")
	}
	o.saver.MarkDirty(input.PlayerID)

	return &character.SelectCharacterOutput{Sheet: o.sheet(got.Character)}, nil
}

// DeleteCharacter removes a character. Deleting the selected character
// selects the first one left, or clears the selection.
func (o *Orchestrator) DeleteCharacter(
	ctx context.Context,
	input *character.DeleteCharacterInput,
) (*character.DeleteCharacterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("player_id", input.PlayerID, vb)
	errors.ValidateRequired("character_id", input.CharacterID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	active, err := o.characterRepo.GetActive(ctx, characterrepo.GetActiveInput{PlayerID: input.PlayerID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load active character")
	}
	deleted, err := o.characterRepo.Delete(ctx, characterrepo.DeleteInput{PlayerID: input.PlayerID, ID: input.CharacterID})
	if err != nil {
		return nil, err
	}

	activeID := active.ID
	if activeID == input.CharacterID {
		activeID = ""
		if len(deleted.Remaining) > 0 {
			activeID = deleted.Remaining[0].ID
		}
		if _, err := o.characterRepo.SetActive(ctx, characterrepo.SetActiveInput{
			PlayerID: input.PlayerID,
			ID:       activeID,
		}); err != nil {
			return nil, errors.Wrap(err, "failed to update selection")
		}
	}
	o.saver.MarkDirty(input.PlayerID)

	slog.Info("character deleted",
		"player_id", input.PlayerID,
		"character_id", input.CharacterID,
		"remaining", len(deleted.Remaining))

	return &character.DeleteCharacterOutput{ActiveID: activeID}, nil
}

// GetCharacter returns a character sheet
func (o *Orchestrator) GetCharacter(
	ctx context.Context,
	input *character.GetCharacterInput,
) (*character.GetCharacterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := requirePlayer(input.PlayerID); err != nil {
		return nil, err
	}

	if input.CharacterID == "" {
		c, err := o.active(ctx, input.PlayerID)
		if err != nil {
			return nil, err
		}
		return &character.GetCharacterOutput{Sheet: o.sheet(c)}, nil
	}

	got, err := o.characterRepo.Get(ctx, characterrepo.GetInput{PlayerID: input.PlayerID, ID: input.CharacterID})
	if err != nil {
		return nil, err
	}
	return &character.GetCharacterOutput{Sheet: o.sheet(got.Character)}, nil
}

// Progression methods

// AddExp grants experience to the active character
func (o *Orchestrator) AddExp(ctx context.Context, input *character.AddExpInput) (*character.AddExpOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("player_id", input.PlayerID, vb)
	if input.Exp < 0 {
		vb.InvalidField("exp", "must not be negative")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	c, err := o.active(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	gained := o.engine.GainExp(c, input.Exp)
	if err := o.update(ctx, input.PlayerID, c); err != nil {
		return nil, err
	}
	o.saver.MarkDirty(input.PlayerID)

	if gained.LeveledUp {
		slog.Info("character leveled up",
			"player_id", input.PlayerID,
			"character_id", c.ID,
			"from", gained.PrevLevel,
			"to", c.Level)
	}

	return &character.AddExpOutput{
		Character:    c,
		LeveledUp:    gained.LeveledUp,
		LevelsGained: gained.LevelsGained,
	}, nil
}

// AddGold adjusts the active character's gold. Negative amounts spend gold
// and fail when the balance would drop below zero.
func (o *Orchestrator) AddGold(ctx context.Context, input *character.AddGoldInput) (*character.AddGoldOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := requirePlayer(input.PlayerID); err != nil {
		return nil, err
	}

	c, err := o.active(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	if c.Gold+input.Gold < 0 {
		return nil, errors.Insufficient(errors.ReasonInsufficientGold,
			"need %d gold, have %d", -input.Gold, c.Gold)
	}
	c.Gold += input.Gold
	if err := o.update(ctx, input.PlayerID, c); err != nil {
		return nil, err
	}
	o.saver.MarkDirty(input.PlayerID)

	return &character.AddGoldOutput{Character: c}, nil
}

// Care and gear methods

// UseFood eats one unit of a food item to restore HP
func (o *Orchestrator) UseFood(ctx context.Context, input *character.UseFoodInput) (*character.UseFoodOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("player_id", input.PlayerID, vb)
	errors.ValidateRequired("item_id", input.ItemID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	item, ok := o.catalog.Item(input.ItemID)
	if !ok {
		return nil, errors.NotFoundf("item %s not found", input.ItemID)
	}
	if item.Type != superpet.ItemTypeFood {
		return nil, errors.CannotProceedf(errors.ReasonNotFood, "%s is not food", item.Name)
	}

	c, err := o.active(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	items, err := o.inventory(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	if items.Count(item.ID) < 1 {
		return nil, errors.NotFoundf("no %s in inventory", item.Name)
	}

	maxHP := o.engine.TotalStats(c).HP
	if c.CurrentHP >= maxHP {
		return nil, errors.CannotProceed(errors.ReasonHPFull, "HP is already full")
	}

	healed := min(item.Stats.HP, maxHP-c.CurrentHP)
	c.CurrentHP += healed

	items, _ = items.Take(item.ID, 1)
	if err := o.saveInventory(ctx, input.PlayerID, items); err != nil {
		return nil, err
	}
	if err := o.update(ctx, input.PlayerID, c); err != nil {
		return nil, err
	}
	o.saver.MarkDirty(input.PlayerID)

	return &character.UseFoodOutput{Character: c, Healed: healed}, nil
}

// Equip moves an equipment instance from the bag into its slot. Whatever
// occupied the slot goes back to the bag with its instance ID and
// enhancement level.
func (o *Orchestrator) Equip(ctx context.Context, input *character.EquipInput) (*character.EquipOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("player_id", input.PlayerID, vb)
	errors.ValidateRequired("instance_id", input.InstanceID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	c, err := o.active(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	items, err := o.inventory(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	idx := items.FindInstance(input.InstanceID)
	if idx < 0 {
		return nil, errors.NotFoundf("item instance %s not found in inventory", input.InstanceID)
	}
	entry := items[idx]
	if !entry.Item.IsEquipment() || !entry.Item.Slot.Valid() {
		return nil, errors.CannotProceedf(errors.ReasonNotEquipment, "%s cannot be equipped", entry.Item.Name)
	}

	items = items.RemoveAt(idx)
	previous := c.Equipment.Set(entry.Item.Slot, entry.AsEquipped())
	if previous != nil {
		items = items.Put(superpet.FromEquipped(previous))
	}
	o.clampHP(c)

	if err := o.saveInventory(ctx, input.PlayerID, items); err != nil {
		return nil, err
	}
	if err := o.update(ctx, input.PlayerID, c); err != nil {
		return nil, err
	}
	o.saver.MarkDirty(input.PlayerID)

	return &character.EquipOutput{Sheet: o.sheet(c), Previous: previous}, nil
}

// Unequip moves the item in a slot back to the bag
func (o *Orchestrator) Unequip(ctx context.Context, input *character.UnequipInput) (*character.UnequipOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("player_id", input.PlayerID, vb)
	if !input.Slot.Valid() {
		vb.InvalidField("slot", "unknown equipment slot")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	c, err := o.active(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	removed := c.Equipment.Set(input.Slot, nil)
	if removed == nil {
		return nil, errors.NotFoundf("nothing equipped in %s", input.Slot)
	}

	items, err := o.inventory(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	items = items.Put(superpet.FromEquipped(removed))
	o.clampHP(c)

	if err := o.saveInventory(ctx, input.PlayerID, items); err != nil {
		return nil, err
	}
	if err := o.update(ctx, input.PlayerID, c); err != nil {
		return nil, err
	}
	o.saver.MarkDirty(input.PlayerID)

	return &character.UnequipOutput{Sheet: o.sheet(c), Removed: removed}, nil
}

// clampHP keeps current HP inside [0, total HP] after a gear change.
func (o *Orchestrator) clampHP(c *superpet.Character) {
	maxHP := o.engine.TotalStats(c).HP
	if c.CurrentHP > maxHP {
		c.CurrentHP = maxHP
	}
	if c.CurrentHP < 0 {
		c.CurrentHP = 0
	}
}
