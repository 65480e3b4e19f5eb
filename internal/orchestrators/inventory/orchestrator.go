// Package inventory implements the bag, shop and forge orchestrator
package inventory

import (
	"context"
	"log/slog"
	"math"

	"github.com/superpet/superpet-api/internal/catalog"
	"github.com/superpet/superpet-api/internal/clients/cloudsync"
	"github.com/superpet/superpet-api/internal/engine"
	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/errors"
	"github.com/superpet/superpet-api/internal/pkg/idgen"
	characterrepo "github.com/superpet/superpet-api/internal/repositories/character"
	inventoryrepo "github.com/superpet/superpet-api/internal/repositories/inventory"
	"github.com/superpet/superpet-api/internal/services/inventory"
)

// MaxQuantity caps how many copies one AddItem or Purchase call may grant.
const MaxQuantity = 999

// GemWallet debits gems for shop purchases. cloudsync.Client satisfies it.
type GemWallet interface {
	UseGem(ctx context.Context, input *cloudsync.UseGemInput) (*cloudsync.GemOutput, error)
}

// Config holds the dependencies for the inventory orchestrator
type Config struct {
	CharacterRepo characterrepo.Repository
	InventoryRepo inventoryrepo.Repository
	Engine        engine.Engine
	Catalog       *catalog.Catalog
	InstanceIDs   *idgen.InstanceIDs
	// Saver schedules cloud saves (optional)
	Saver cloudsync.Saver
	// Gems pays for gem purchases (optional). Without it the active
	// character's own gem balance is spent.
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

	return vb.Build()
}

// Orchestrator implements the inventory.Service interface
type Orchestrator struct {
	characterRepo characterrepo.Repository
	inventoryRepo inventoryrepo.Repository
	engine        engine.Engine
	catalog       *catalog.Catalog
	instanceIDs   *idgen.InstanceIDs
	saver         cloudsync.Saver
	gems          GemWallet
}

// New creates a new inventory orchestrator
func New(cfg *Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &Orchestrator{
		characterRepo: cfg.CharacterRepo,
		inventoryRepo: cfg.InventoryRepo,
		engine:        cfg.Engine,
		catalog:       cfg.Catalog,
		instanceIDs:   cfg.InstanceIDs,
		saver:         cfg.Saver,
		gems:          cfg.Gems,
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
var _ inventory.Service = (*Orchestrator)(nil)

func (o *Orchestrator) bag(ctx context.Context, playerID string) (superpet.Inventory, error) {
	out, err := o.inventoryRepo.Get(ctx, inventoryrepo.GetInput{PlayerID: playerID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load inventory")
	}
	return out.Items, nil
}

func (o *Orchestrator) saveBag(ctx context.Context, playerID string, items superpet.Inventory) error {
	if _, err := o.inventoryRepo.Save(ctx, inventoryrepo.SaveInput{PlayerID: playerID, Items: items}); err != nil {
		return errors.Wrap(err, "failed to save inventory")
	}
	return nil
}

// active loads the selected character, or nil when there is none.
func (o *Orchestrator) active(ctx context.Context, playerID string) (*superpet.Character, error) {
	out, err := o.characterRepo.GetActive(ctx, characterrepo.GetActiveInput{PlayerID: playerID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load active character")
	}
	return out.Character, nil
}

func (o *Orchestrator) requireActive(ctx context.Context, playerID string) (*superpet.Character, error) {
	c, err := o.active(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.NoActiveCharacter()
	}
	return c, nil
}

func (o *Orchestrator) updateCharacter(ctx context.Context, playerID string, c *superpet.Character) error {
	if _, err := o.characterRepo.Update(ctx, characterrepo.UpdateInput{PlayerID: playerID, Character: c}); err != nil {
		return errors.Wrap(err, "failed to save character")
	}
	return nil
}

// scrollFor returns the catalog scroll of the given category.
func (o *Orchestrator) scrollFor(scrollType superpet.ScrollType) (superpet.GameItem, bool) {
	for _, item := range o.catalog.Items() {
		if item.Type == superpet.ItemTypeScroll && item.ScrollType == scrollType {
			return item, true
		}
	}
	return superpet.GameItem{}, false
}

// GetInventory returns the player's bag
func (o *Orchestrator) GetInventory(
	ctx context.Context,
	input *inventory.GetInventoryInput,
) (*inventory.GetInventoryOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("player_id", input.PlayerID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	items, err := o.bag(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	return &inventory.GetInventoryOutput{Items: items}, nil
}

// AddItem grants catalog items. Equipment gets a fresh instance per copy.
func (o *Orchestrator) AddItem(ctx context.Context, input *inventory.AddItemInput) (*inventory.AddItemOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("player_id", input.PlayerID, vb)
	errors.ValidateRequired("item_id", input.ItemID, vb)
	errors.ValidateRange("quantity", input.Quantity, 1, MaxQuantity, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	item, ok := o.catalog.Item(input.ItemID)
	if !ok {
		return nil, errors.NotFoundf("item %s not found", input.ItemID)
	}
	items, err := o.bag(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}

	before := len(items)
	items = items.Add(item, input.Quantity, o.instanceIDs.For)
	var added []superpet.InventoryItem
	if item.IsEquipment() {
		added = append(added, items[before:]...)
	} else if stack, ok := items.Stack(item.ID); ok {
		added = append(added, stack)
	}

	if err := o.saveBag(ctx, input.PlayerID, items); err != nil {
		return nil, err
	}
	o.saver.MarkDirty(input.PlayerID)

	return &inventory.AddItemOutput{Items: items, Added: added}, nil
}

// Economy methods

// SellItem sells bag entries for gold at the rarity's sell price
func (o *Orchestrator) SellItem(ctx context.Context, input *inventory.SellItemInput) (*inventory.SellItemOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("player_id", input.PlayerID, vb)
	if input.ItemID == "" && input.InstanceID == "" {
		vb.Field("item_id", "item_id or instance_id is required")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	c, err := o.requireActive(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	items, err := o.bag(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}

	var (
		item superpet.GameItem
		sold int
	)
	switch {
	case input.InstanceID != "":
		idx := items.FindInstance(input.InstanceID)
		if idx < 0 {
			return nil, errors.NotFoundf("item instance %s not found in inventory", input.InstanceID)
		}
		item = items[idx].Item
		items = items.RemoveAt(idx)
		sold = 1
	default:
		idx := items.First(input.ItemID)
		if idx < 0 {
			return nil, errors.NotFoundf("no %s in inventory", input.ItemID)
		}
		item = items[idx].Item
		switch {
		case input.All:
			items, sold = items.RemoveItem(item.ID)
		case item.IsEquipment():
			items = items.RemoveAt(idx)
			sold = 1
		default:
			items, _ = items.Take(item.ID, 1)
			sold = 1
		}
	}

	gold := o.engine.SellPrice(item.Rarity) * sold
	c.Gold += gold

	if err := o.saveBag(ctx, input.PlayerID, items); err != nil {
		return nil, err
	}
	if err := o.updateCharacter(ctx, input.PlayerID, c); err != nil {
		return nil, err
	}
	o.saver.MarkDirty(input.PlayerID)

	slog.Info("items sold",
		"player_id", input.PlayerID,
		"item_id", item.ID,
		"quantity", sold,
		"gold", gold)

	return &inventory.SellItemOutput{Sold: sold, GoldEarned: gold, Character: c, Items: items}, nil
}

// Purchase buys shop items with gold or gems. Currency packs are paid out
// as gold instead of entering the bag.
func (o *Orchestrator) Purchase(ctx context.Context, input *inventory.PurchaseInput) (*inventory.PurchaseOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	currency := input.Currency
	if currency == "" {
		currency = inventory.CurrencyGold
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("player_id", input.PlayerID, vb)
	errors.ValidateRequired("item_id", input.ItemID, vb)
	errors.ValidateRange("quantity", quantity, 1, MaxQuantity, vb)
	errors.ValidateEnum("currency", string(currency),
		[]string{string(inventory.CurrencyGold), string(inventory.CurrencyGem)}, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	item, ok := o.catalog.Item(input.ItemID)
	if !ok {
		return nil, errors.NotFoundf("item %s not found", input.ItemID)
	}
	price := item.ShopGold
	if currency == inventory.CurrencyGem {
		price = item.ShopGem
	}
	if price <= 0 {
		return nil, errors.CannotProceedf(errors.ReasonNotForSale, "%s is not sold for %s", item.Name, currency)
	}
	if quantity > math.MaxInt/price {
		return nil, errors.InvalidArgumentf("quantity %d is too large", quantity)
	}
	cost := price * quantity

	c, err := o.requireActive(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	items, err := o.bag(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}

	switch currency {
	case inventory.CurrencyGem:
		if err := o.spendGems(ctx, input.PlayerID, c, cost, item.ID); err != nil {
			return nil, err
		}
	default:
		if c.Gold < cost {
			return nil, errors.Insufficient(errors.ReasonInsufficientGold, "need %d gold, have %d", cost, c.Gold)
		}
		c.Gold -= cost
	}

	out := &inventory.PurchaseOutput{Spent: cost}
	if item.Type == superpet.ItemTypeCurrency {
		out.GoldReceived = item.GoldAmount * quantity
		c.Gold += out.GoldReceived
	} else {
		items = items.Add(item, quantity, o.instanceIDs.For)
		if err := o.saveBag(ctx, input.PlayerID, items); err != nil {
			return nil, err
		}
	}
	if err := o.updateCharacter(ctx, input.PlayerID, c); err != nil {
		return nil, err
	}

	// gem purchases have already moved money outside this store
	if currency == inventory.CurrencyGem {
		o.saver.SaveNow(ctx, input.PlayerID)
	} else {
		o.saver.MarkDirty(input.PlayerID)
	}

	slog.Info("shop purchase",
		"player_id", input.PlayerID,
		"item_id", item.ID,
		"quantity", quantity,
		"currency", currency,
		"cost", cost)

	out.Character = c
	out.Items = items
	return out, nil
}

func (o *Orchestrator) spendGems(ctx context.Context, playerID string, c *superpet.Character, amount int, itemID string) error {
	if o.gems != nil {
		_, err := o.gems.UseGem(ctx, &cloudsync.UseGemInput{
			PlayerID: playerID,
			Amount:   amount,
			Source:   cloudsync.UseShopItem,
			Memo:     itemID,
		})
		if err != nil {
			return errors.Wrap(err, "failed to pay with gems")
		}
		return nil
	}
	if c.Gem < amount {
		return errors.Insufficient(errors.ReasonInsufficientGem, "need %d gems, have %d", amount, c.Gem)
	}
	c.Gem -= amount
	return nil
}

// ListShop returns everything the shop sells
func (o *Orchestrator) ListShop(_ context.Context, _ *inventory.ListShopInput) (*inventory.ListShopOutput, error) {
	return &inventory.ListShopOutput{Items: o.catalog.ShopItems()}, nil
}

// Forge methods

// Disassemble breaks an unequipped equipment instance into one powder of
// its rarity's tier
func (o *Orchestrator) Disassemble(
	ctx context.Context,
	input *inventory.DisassembleInput,
) (*inventory.DisassembleOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("player_id", input.PlayerID, vb)
	errors.ValidateRequired("instance_id", input.InstanceID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	items, err := o.bag(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	idx := items.FindInstance(input.InstanceID)
	if idx < 0 {
		c, err := o.active(ctx, input.PlayerID)
		if err != nil {
			return nil, err
		}
		if c != nil {
			if _, equipped := c.Equipment.FindInstance(input.InstanceID); equipped {
				return nil, errors.CannotProceed(errors.ReasonItemEquipped, "unequip the item before disassembling it")
			}
		}
		return nil, errors.NotFoundf("item instance %s not found in inventory", input.InstanceID)
	}

	entry := items[idx]
	if !entry.Item.IsEquipment() {
		return nil, errors.CannotProceedf(errors.ReasonNotEquipment, "%s cannot be disassembled", entry.Item.Name)
	}
	powderID := o.engine.PowderFor(entry.Item.Rarity)
	powder, ok := o.catalog.Item(powderID)
	if !ok {
		return nil, errors.Internalf("no powder configured for %s", entry.Item.Rarity)
	}

	items = items.RemoveAt(idx).Add(powder, 1, o.instanceIDs.For)
	if err := o.saveBag(ctx, input.PlayerID, items); err != nil {
		return nil, err
	}
	o.saver.MarkDirty(input.PlayerID)

	return &inventory.DisassembleOutput{PowderID: powder.ID, Items: items}, nil
}

// Enhance spends one scroll on an equipment instance in the bag or on the
// active character. Rejected attempts spend nothing. The result is pushed
// to cloud storage straight away.
func (o *Orchestrator) Enhance(ctx context.Context, input *inventory.EnhanceInput) (*inventory.EnhanceOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("player_id", input.PlayerID, vb)
	errors.ValidateRequired("instance_id", input.InstanceID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	items, err := o.bag(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}

	var (
		c        *superpet.Character
		slot     superpet.EquipmentSlot
		item     superpet.GameItem
		level    int
		equipped bool
	)
	idx := items.FindInstance(input.InstanceID)
	if idx >= 0 {
		item = items[idx].Item
		level = items[idx].EnhanceLevel
	} else {
		c, err = o.active(ctx, input.PlayerID)
		if err != nil {
			return nil, err
		}
		found := false
		if c != nil {
			slot, found = c.Equipment.FindInstance(input.InstanceID)
		}
		if !found {
			return nil, errors.NotFoundf("item instance %s not found", input.InstanceID)
		}
		current := c.Equipment.Get(slot)
		item = current.Item
		level = current.EnhanceLevel
		equipped = true
	}

	if !item.IsEquipment() || !item.Slot.Valid() {
		return nil, errors.CannotProceedf(errors.ReasonNotEquipment, "%s cannot be enhanced", item.Name)
	}
	scrollType := o.engine.RequiredScrollType(item.Slot)
	scroll, ok := o.scrollFor(scrollType)
	if !ok {
		return nil, errors.Internalf("no %s scroll in the catalog", scrollType)
	}
	if items.Count(scroll.ID) < 1 {
		return nil, errors.CannotProceedf(errors.ReasonMissingScroll, "%s needs a %s", item.Name, scroll.Name).
			WithMeta("scroll_id", scroll.ID)
	}

	result, err := o.engine.AttemptEnhance(&engine.AttemptEnhanceInput{
		Item:         item,
		EnhanceLevel: level,
		Scroll:       scroll,
	})
	if err != nil {
		return nil, err
	}

	items, _ = items.Take(scroll.ID, 1)
	if equipped {
		c.Equipment.Get(slot).EnhanceLevel = result.NewLevel
		if maxHP := o.engine.TotalStats(c).HP; c.CurrentHP > maxHP {
			c.CurrentHP = maxHP
		}
	} else {
		idx = items.FindInstance(input.InstanceID)
		items[idx].EnhanceLevel = result.NewLevel
	}

	if err := o.saveBag(ctx, input.PlayerID, items); err != nil {
		return nil, err
	}
	if equipped {
		if err := o.updateCharacter(ctx, input.PlayerID, c); err != nil {
			return nil, err
		}
	}
	saved := o.saver.SaveNow(ctx, input.PlayerID)

	slog.Info("enhancement attempted",
		"player_id", input.PlayerID,
		"instance_id", input.InstanceID,
		"success", result.Success,
		"protected", result.Protected,
		"from", result.PreviousLevel,
		"to", result.NewLevel,
		"saved", saved)

	return &inventory.EnhanceOutput{
		Result:       result,
		ItemID:       item.ID,
		ScrollID:     scroll.ID,
		ScrollsLeft:  items.Count(scroll.ID),
		Equipped:     equipped,
		EnhanceLevel: result.NewLevel,
		Saved:        saved,
	}, nil
}

// Craft consumes a recipe's materials and rolls its success rate
func (o *Orchestrator) Craft(ctx context.Context, input *inventory.CraftInput) (*inventory.CraftOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("player_id", input.PlayerID, vb)
	errors.ValidateRequired("recipe_id", input.RecipeID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	recipe, ok := o.catalog.Recipe(input.RecipeID)
	if !ok {
		return nil, errors.NotFoundf("recipe %s not found", input.RecipeID)
	}
	result, ok := o.catalog.Item(recipe.ResultItemID)
	if !ok {
		return nil, errors.Internalf("recipe %s makes unknown item %s", recipe.ID, recipe.ResultItemID)
	}

	items, err := o.bag(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	for _, m := range recipe.Materials {
		if have := items.Count(m.ItemID); have < m.Quantity {
			return nil, errors.Insufficient(errors.ReasonInsufficientMaterials,
				"need %d %s, have %d", m.Quantity, m.ItemID, have).WithMeta("item_id", m.ItemID)
		}
	}
	for _, m := range recipe.Materials {
		items, _ = items.Take(m.ItemID, m.Quantity)
	}

	out := &inventory.CraftOutput{ResultItemID: result.ID}
	if o.engine.RollCraft(recipe) {
		out.Success = true
		out.ResultQuantity = recipe.ResultQuantity
		items = items.Add(result, recipe.ResultQuantity, o.instanceIDs.For)
	}

	if err := o.saveBag(ctx, input.PlayerID, items); err != nil {
		return nil, err
	}
	o.saver.MarkDirty(input.PlayerID)

	slog.Info("crafted",
		"player_id", input.PlayerID,
		"recipe_id", recipe.ID,
		"success", out.Success)

	out.Items = items
	return out, nil
}

// ListRecipes returns every crafting recipe
func (o *Orchestrator) ListRecipes(_ context.Context, _ *inventory.ListRecipesInput) (*inventory.ListRecipesOutput, error) {
	return &inventory.ListRecipesOutput{Recipes: o.catalog.Recipes()}, nil
}
