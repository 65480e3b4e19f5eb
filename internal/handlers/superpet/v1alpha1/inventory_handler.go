package v1alpha1

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/services/inventory"
)

type itemsResponse struct {
	Items superpet.Inventory `json:"items"`
}

// GetInventory returns the player's bag
func (h *Handler) GetInventory(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, _ *empty) (interface{}, error) {
		out, err := h.inventoryService.GetInventory(ctx, &inventory.GetInventoryInput{PlayerID: playerID})
		if err != nil {
			return nil, err
		}
		return itemsResponse{Items: out.Items}, nil
	})
}

type addItemRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// AddItem grants items to the player's bag
func (h *Handler) AddItem(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, req *addItemRequest) (interface{}, error) {
		out, err := h.inventoryService.AddItem(ctx, &inventory.AddItemInput{
			PlayerID: playerID,
			ItemID:   req.ItemID,
			Quantity: req.Quantity,
		})
		if err != nil {
			return nil, err
		}
		return struct {
			Items superpet.Inventory       `json:"items"`
			Added []superpet.InventoryItem `json:"added"`
		}{out.Items, out.Added}, nil
	})
}

type sellItemRequest struct {
	ItemID     string `json:"itemId"`
	InstanceID string `json:"instanceId"`
	All        bool   `json:"all"`
}

// SellItem sells one unit, every unit or one equipment instance
func (h *Handler) SellItem(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, req *sellItemRequest) (interface{}, error) {
		out, err := h.inventoryService.SellItem(ctx, &inventory.SellItemInput{
			PlayerID:   playerID,
			ItemID:     req.ItemID,
			InstanceID: req.InstanceID,
			All:        req.All,
		})
		if err != nil {
			return nil, err
		}
		return struct {
			Sold       int                 `json:"sold"`
			GoldEarned int                 `json:"goldEarned"`
			Character  *superpet.Character `json:"character"`
			Items      superpet.Inventory  `json:"items"`
		}{out.Sold, out.GoldEarned, out.Character, out.Items}, nil
	})
}

type purchaseRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
	Currency string `json:"currency"`
}

// Purchase buys from the shop with gold or gems
func (h *Handler) Purchase(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, req *purchaseRequest) (interface{}, error) {
		out, err := h.inventoryService.Purchase(ctx, &inventory.PurchaseInput{
			PlayerID: playerID,
			ItemID:   req.ItemID,
			Quantity: req.Quantity,
			Currency: inventory.Currency(req.Currency),
		})
		if err != nil {
			return nil, err
		}
		return struct {
			Character    *superpet.Character `json:"character"`
			Items        superpet.Inventory  `json:"items"`
			Spent        int                 `json:"spent"`
			GoldReceived int                 `json:"goldReceived,omitempty"`
		}{out.Character, out.Items, out.Spent, out.GoldReceived}, nil
	})
}

// ListShop returns the items for sale
func (h *Handler) ListShop(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return serveCatalog(func() (interface{}, error) {
		out, err := h.inventoryService.ListShop(ctx, &inventory.ListShopInput{})
		if err != nil {
			return nil, err
		}
		return struct {
			Items []superpet.GameItem `json:"items"`
		}{out.Items}, nil
	})
}

type instanceRequest struct {
	InstanceID string `json:"instanceId"`
}

// Disassemble breaks an equipment instance down into powder
func (h *Handler) Disassemble(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, req *instanceRequest) (interface{}, error) {
		out, err := h.inventoryService.Disassemble(ctx, &inventory.DisassembleInput{
			PlayerID:   playerID,
			InstanceID: req.InstanceID,
		})
		if err != nil {
			return nil, err
		}
		return struct {
			PowderID string             `json:"powderId"`
			Items    superpet.Inventory `json:"items"`
		}{out.PowderID, out.Items}, nil
	})
}

type enhanceResponse struct {
	Success       bool    `json:"success"`
	PreviousLevel int     `json:"previousLevel"`
	NewLevel      int     `json:"newLevel"`
	Protected     bool    `json:"protected"`
	IsMaxLevel    bool    `json:"isMaxLevel"`
	Rate          float64 `json:"rate"`
	ItemID        string  `json:"itemId"`
	ScrollID      string  `json:"scrollId"`
	ScrollsLeft   int     `json:"scrollsLeft"`
	Equipped      bool    `json:"equipped"`
	EnhanceLevel  int     `json:"enhanceLevel"`
	Saved         bool    `json:"saved"`
}

// Enhance attempts to raise an equipment instance by one level
func (h *Handler) Enhance(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, req *instanceRequest) (interface{}, error) {
		out, err := h.inventoryService.Enhance(ctx, &inventory.EnhanceInput{
			PlayerID:   playerID,
			InstanceID: req.InstanceID,
		})
		if err != nil {
			return nil, err
		}
		resp := enhanceResponse{
			ItemID:       out.ItemID,
			ScrollID:     out.ScrollID,
			ScrollsLeft:  out.ScrollsLeft,
			Equipped:     out.Equipped,
			EnhanceLevel: out.EnhanceLevel,
			Saved:        out.Saved,
		}
		if r := out.Result; r != nil {
			resp.Success = r.Success
			resp.PreviousLevel = r.PreviousLevel
			resp.NewLevel = r.NewLevel
			resp.Protected = r.Protected
			resp.IsMaxLevel = r.IsMaxLevel
			resp.Rate = r.Rate
		}
		return resp, nil
	})
}

// Craft runs a recipe
func (h *Handler) Craft(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, req *struct {
		RecipeID string `json:"recipeId"`
	}) (interface{}, error) {
		out, err := h.inventoryService.Craft(ctx, &inventory.CraftInput{PlayerID: playerID, RecipeID: req.RecipeID})
		if err != nil {
			return nil, err
		}
		return struct {
			Success        bool               `json:"success"`
			ResultItemID   string             `json:"resultItemId"`
			ResultQuantity int                `json:"resultQuantity"`
			Items          superpet.Inventory `json:"items"`
		}{out.Success, out.ResultItemID, out.ResultQuantity, out.Items}, nil
	})
}

// ListRecipes returns the crafting recipes
func (h *Handler) ListRecipes(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return serveCatalog(func() (interface{}, error) {
		out, err := h.inventoryService.ListRecipes(ctx, &inventory.ListRecipesInput{})
		if err != nil {
			return nil, err
		}
		return struct {
			Recipes []superpet.Recipe `json:"recipes"`
		}{out.Recipes}, nil
	})
}
