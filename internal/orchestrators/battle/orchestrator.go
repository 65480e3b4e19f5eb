// Package battle implements the dungeon battle orchestrator
package battle

import (
	"context"
	"log/slog"
	"sync"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/superpet/superpet-api/internal/catalog"
	"github.com/superpet/superpet-api/internal/clients/cloudsync"
	"github.com/superpet/superpet-api/internal/engine"
	"github.com/superpet/superpet-api/internal/engine/rpgtoolkit"
	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/errors"
	"github.com/superpet/superpet-api/internal/pkg/idgen"
	battlerepo "github.com/superpet/superpet-api/internal/repositories/battle"
	characterrepo "github.com/superpet/superpet-api/internal/repositories/character"
	inventoryrepo "github.com/superpet/superpet-api/internal/repositories/inventory"
	"github.com/superpet/superpet-api/internal/services/battle"
)

// Config holds the dependencies for the battle orchestrator
type Config struct {
	CharacterRepo characterrepo.Repository
	InventoryRepo inventoryrepo.Repository
	BattleRepo    battlerepo.Repository
	Engine        engine.Engine
	Catalog       *catalog.Catalog
	IDGenerator   idgen.Generator
	InstanceIDs   *idgen.InstanceIDs
	// EventBus receives a monster.defeated event per won battle (optional)
	EventBus events.EventBus
	// Saver schedules cloud saves (optional)
	Saver cloudsync.Saver
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
	if c.BattleRepo == nil {
		vb.RequiredField("BattleRepo")
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

// Orchestrator implements the battle.Service interface
type Orchestrator struct {
	characterRepo characterrepo.Repository
	inventoryRepo inventoryrepo.Repository
	battleRepo    battlerepo.Repository
	engine        engine.Engine
	catalog       *catalog.Catalog
	idGenerator   idgen.Generator
	instanceIDs   *idgen.InstanceIDs
	eventBus      events.EventBus
	saver         cloudsync.Saver

	// mu serializes every read-modify-write of battles and the records
	// they touch
	mu sync.Mutex
}

// New creates a new battle orchestrator
func New(cfg *Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &Orchestrator{
		characterRepo: cfg.CharacterRepo,
		inventoryRepo: cfg.InventoryRepo,
		battleRepo:    cfg.BattleRepo,
		engine:        cfg.Engine,
		catalog:       cfg.Catalog,
		idGenerator:   cfg.IDGenerator,
		instanceIDs:   cfg.InstanceIDs,
		eventBus:      cfg.EventBus,
		saver:         cfg.Saver,
	}
	if o.instanceIDs == nil {
		o.instanceIDs = idgen.NewInstanceIDs(nil)
	}
	if o.saver == nil {
		o.saver = cloudsync.Noop{}
	}
	return o, nil
}

// Ensure Orchestrator implements the Service interface
var _ battle.Service = (*Orchestrator)(nil)

func validatePlayer(playerID string) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("player_id", playerID, vb)
	return vb.Build()
}

// current returns the player's battle, or nil when there is none.
func (o *Orchestrator) current(ctx context.Context, playerID string) (*engine.Battle, error) {
	out, err := o.battleRepo.Get(ctx, &battlerepo.GetInput{PlayerID: playerID})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to load battle")
	}
	return out.Battle, nil
}

func (o *Orchestrator) saveBattle(ctx context.Context, b *engine.Battle) error {
	if _, err := o.battleRepo.Save(ctx, &battlerepo.SaveInput{PlayerID: b.PlayerID, Battle: b}); err != nil {
		return errors.Wrap(err, "failed to save battle")
	}
	return nil
}

func (o *Orchestrator) updateCharacter(ctx context.Context, playerID string, c *superpet.Character) error {
	if _, err := o.characterRepo.Update(ctx, characterrepo.UpdateInput{PlayerID: playerID, Character: c}); err != nil {
		return errors.Wrap(err, "failed to save character")
	}
	return nil
}

// ListDungeons returns every dungeon in order
func (o *Orchestrator) ListDungeons(_ context.Context, _ *battle.ListDungeonsInput) (*battle.ListDungeonsOutput, error) {
	return &battle.ListDungeonsOutput{Dungeons: o.catalog.Dungeons()}, nil
}

// StartBattle puts the active character into a dungeon against a freshly
// drawn monster. A battle still in progress must be exited first.
func (o *Orchestrator) StartBattle(
	ctx context.Context,
	input *battle.StartBattleInput,
) (*battle.StartBattleOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validatePlayer(input.PlayerID); err != nil {
		return nil, err
	}

	dungeon, ok := o.catalog.Dungeon(input.DungeonID)
	if !ok {
		return nil, errors.NotFoundf("dungeon %d not found", input.DungeonID)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	existing, err := o.current(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.State == engine.BattleFighting {
		return nil, errors.FailedPrecondition("a battle is already in progress").
			WithMeta("battle_id", existing.ID)
	}

	active, err := o.characterRepo.GetActive(ctx, characterrepo.GetActiveInput{PlayerID: input.PlayerID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load active character")
	}
	if active.Character == nil {
		return nil, errors.NoActiveCharacter()
	}

	b, err := o.engine.StartBattle(&engine.StartBattleInput{Character: active.Character, Dungeon: dungeon})
	if err != nil {
		return nil, err
	}
	b.ID = o.idGenerator.Generate()
	b.PlayerID = input.PlayerID

	if err := o.saveBattle(ctx, b); err != nil {
		return nil, err
	}

	slog.Info("battle started",
		"player_id", input.PlayerID,
		"battle_id", b.ID,
		"dungeon_id", dungeon.ID,
		"monster", b.Monster.Name,
		"boss", b.Monster.IsBoss)

	return &battle.StartBattleOutput{Battle: b}, nil
}

// Tick resolves one exchange. A win credits the character, adds the drops
// to the bag and announces the kill on the event bus; a loss leaves the
// character at 0 HP.
func (o *Orchestrator) Tick(ctx context.Context, input *battle.TickInput) (*battle.TickOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validatePlayer(input.PlayerID); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	b, err := o.current(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, errors.CannotProceed(errors.ReasonBattleNotActive, "not in a battle")
	}

	charOut, err := o.characterRepo.Get(ctx, characterrepo.GetInput{PlayerID: input.PlayerID, ID: b.CharacterID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load character %s", b.CharacterID)
	}
	c := charOut.Character

	result, err := o.engine.ResolveTick(b, c)
	if err != nil {
		return nil, err
	}

	switch {
	case result.Victory != nil:
		if err := o.grantDrops(ctx, input.PlayerID, result.Victory.Drops); err != nil {
			return nil, err
		}
		if err := o.updateCharacter(ctx, input.PlayerID, c); err != nil {
			return nil, err
		}
		o.saver.MarkDirty(input.PlayerID)
		o.publishKill(ctx, b, c)

		slog.Info("battle won",
			"player_id", input.PlayerID,
			"battle_id", b.ID,
			"exp", result.Victory.Exp,
			"gold", result.Victory.Gold,
			"drops", len(result.Victory.Drops),
			"level", c.Level)
	case result.Defeated:
		if err := o.updateCharacter(ctx, input.PlayerID, c); err != nil {
			return nil, err
		}
		o.saver.MarkDirty(input.PlayerID)

		slog.Info("battle lost",
			"player_id", input.PlayerID,
			"battle_id", b.ID,
			"ticks", b.Ticks)
	}

	if err := o.saveBattle(ctx, b); err != nil {
		return nil, err
	}

	return &battle.TickOutput{Battle: b, Entries: result.Entries}, nil
}

func (o *Orchestrator) grantDrops(ctx context.Context, playerID string, drops []string) error {
	if len(drops) == 0 {
		return nil
	}
	out, err := o.inventoryRepo.Get(ctx, inventoryrepo.GetInput{PlayerID: playerID})
	if err != nil {
		return errors.Wrap(err, "failed to load inventory")
	}
	items := out.Items
	for _, id := range drops {
		item, ok := o.catalog.Item(id)
		if !ok {
			continue
		}
		items = items.Add(item, 1, o.instanceIDs.For)
	}
	if _, err := o.inventoryRepo.Save(ctx, inventoryrepo.SaveInput{PlayerID: playerID, Items: items}); err != nil {
		return errors.Wrap(err, "failed to save inventory")
	}
	return nil
}

// publishKill announces a won battle. Subscribers failing never undo the win.
func (o *Orchestrator) publishKill(ctx context.Context, b *engine.Battle, c *superpet.Character) {
	if o.eventBus == nil {
		return
	}
	event := rpgtoolkit.NewMonsterDefeatedEvent(b.PlayerID, c, b.ID, b.Monster)
	if err := o.eventBus.Publish(ctx, event); err != nil {
		slog.Warn("monster defeated handler failed",
			"player_id", b.PlayerID,
			"battle_id", b.ID,
			"error", err)
	}
}

// GetBattle returns the player's current battle
func (o *Orchestrator) GetBattle(ctx context.Context, input *battle.GetBattleInput) (*battle.GetBattleOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validatePlayer(input.PlayerID); err != nil {
		return nil, err
	}

	out, err := o.battleRepo.Get(ctx, &battlerepo.GetInput{PlayerID: input.PlayerID})
	if err != nil {
		return nil, err
	}
	return &battle.GetBattleOutput{Battle: out.Battle}, nil
}

// ExitBattle leaves the current battle. Leaving mid-fight keeps the HP the
// character had left; finished battles were persisted when they ended.
func (o *Orchestrator) ExitBattle(ctx context.Context, input *battle.ExitBattleInput) (*battle.ExitBattleOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validatePlayer(input.PlayerID); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	b, err := o.current(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, errors.CannotProceed(errors.ReasonBattleNotActive, "not in a battle")
	}

	out := &battle.ExitBattleOutput{PersistedHP: b.PlayerHP}
	charOut, err := o.characterRepo.Get(ctx, characterrepo.GetInput{PlayerID: input.PlayerID, ID: b.CharacterID})
	switch {
	case err == nil:
		c := charOut.Character
		if b.State == engine.BattleFighting {
			c.CurrentHP = b.PlayerHP
			if err := o.updateCharacter(ctx, input.PlayerID, c); err != nil {
				return nil, err
			}
			o.saver.MarkDirty(input.PlayerID)
		}
		out.PersistedHP = c.CurrentHP
	case errors.IsNotFound(err):
		// character was deleted mid-battle; nothing to write back
	default:
		return nil, errors.Wrap(err, "failed to load character")
	}

	if _, err := o.battleRepo.Delete(ctx, &battlerepo.DeleteInput{PlayerID: input.PlayerID}); err != nil {
		return nil, errors.Wrap(err, "failed to delete battle")
	}

	slog.Info("battle exited",
		"player_id", input.PlayerID,
		"battle_id", b.ID,
		"state", b.State,
		"hp", out.PersistedHP)

	return out, nil
}
