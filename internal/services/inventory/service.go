// Package inventory defines the interface for bag, shop and forge operations
package inventory

//go:generate mockgen -destination=mock/mock_service.go -package=inventorymock github.com/superpet/superpet-api/internal/services/inventory Service

import (
	"context"

	"github.com/superpet/superpet-api/internal/engine"
	"github.com/superpet/superpet-api/internal/entities/superpet"
)

// Service defines the interface for inventory operations
type Service interface {
	GetInventory(ctx context.Context, input *GetInventoryInput) (*GetInventoryOutput, error)
	AddItem(ctx context.Context, input *AddItemInput) (*AddItemOutput, error)

	// Economy
	SellItem(ctx context.Context, input *SellItemInput) (*SellItemOutput, error)
	Purchase(ctx context.Context, input *PurchaseInput) (*PurchaseOutput, error)
	ListShop(ctx context.Context, input *ListShopInput) (*ListShopOutput, error)

	// Forge
	Disassemble(ctx context.Context, input *DisassembleInput) (*DisassembleOutput, error)
	Enhance(ctx context.Context, input *EnhanceInput) (*EnhanceOutput, error)
	Craft(ctx context.Context, input *CraftInput) (*CraftOutput, error)
	ListRecipes(ctx context.Context, input *ListRecipesInput) (*ListRecipesOutput, error)
}

// Currency names what a purchase is paid with.
type Currency string

// Currencies.
const (
	CurrencyGold Currency = "gold"
	CurrencyGem  Currency = "gem"
)

// GetInventoryInput defines the request for reading the bag
type GetInventoryInput struct {
	PlayerID string
}

// GetInventoryOutput defines the response for reading the bag
type GetInventoryOutput struct {
	Items superpet.Inventory
}

// AddItemInput defines the request for granting items
type AddItemInput struct {
	PlayerID string
	ItemID   string
	Quantity int
}

// AddItemOutput defines the response for granting items
type AddItemOutput struct {
	Items superpet.Inventory
	// Added holds the entries created or grown by the call
	Added []superpet.InventoryItem
}

// SellItemInput defines the request for selling. InstanceID picks one
// equipment copy; otherwise ItemID is sold one unit at a time, or every
// unit when All is set.
type SellItemInput struct {
	PlayerID   string
	ItemID     string
	InstanceID string
	All        bool
}

// SellItemOutput defines the response for selling
type SellItemOutput struct {
	Sold       int
	GoldEarned int
	Character  *superpet.Character
	Items      superpet.Inventory
}

// PurchaseInput defines the request for buying from the shop
type PurchaseInput struct {
	PlayerID string
	ItemID   string
	Quantity int
	Currency Currency
}

// PurchaseOutput defines the response for buying from the shop
type PurchaseOutput struct {
	Character *superpet.Character
	Items     superpet.Inventory
	Spent     int
	// GoldReceived is set when a currency pack was converted to gold
	GoldReceived int
}

// ListShopInput defines the request for listing the shop
type ListShopInput struct{}

// ListShopOutput defines the response for listing the shop
type ListShopOutput struct {
	Items []superpet.GameItem
}

// DisassembleInput defines the request for breaking down equipment
type DisassembleInput struct {
	PlayerID   string
	InstanceID string
}

// DisassembleOutput defines the response for breaking down equipment
type DisassembleOutput struct {
	PowderID string
	Items    superpet.Inventory
}

// EnhanceInput defines the request for enhancing an equipment instance,
// whether it sits in the bag or in a slot of the active character
type EnhanceInput struct {
	PlayerID   string
	InstanceID string
}

// EnhanceOutput defines the response for an enhancement attempt
type EnhanceOutput struct {
	Result       *engine.AttemptEnhanceOutput
	ItemID       string
	ScrollID     string
	ScrollsLeft  int
	Equipped     bool
	EnhanceLevel int
	// Saved reports whether the result reached cloud storage immediately
	Saved bool
}

// CraftInput defines the request for crafting
type CraftInput struct {
	PlayerID string
	RecipeID string
}

// CraftOutput defines the response for crafting
type CraftOutput struct {
	Success        bool
	ResultItemID   string
	ResultQuantity int
	Items          superpet.Inventory
}

// ListRecipesInput defines the request for listing recipes
type ListRecipesInput struct{}

// ListRecipesOutput defines the response for listing recipes
type ListRecipesOutput struct {
	Recipes []superpet.Recipe
}
