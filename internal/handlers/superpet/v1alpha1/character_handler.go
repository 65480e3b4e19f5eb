package v1alpha1

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/services/character"
)

type sheetResponse struct {
	Character      *superpet.Character `json:"character"`
	Totals         superpet.Stats      `json:"totals"`
	EquipmentStats superpet.Stats      `json:"equipmentStats"`
	ExpToNext      int                 `json:"expToNext"`
}

func toSheet(s *character.Sheet) *sheetResponse {
	if s == nil {
		return nil
	}
	return &sheetResponse{
		Character:      s.Character,
		Totals:         s.Totals,
		EquipmentStats: s.EquipmentStats,
		ExpToNext:      s.ExpToNext,
	}
}

type createCharacterRequest struct {
	Name      string   `json:"name"`
	PetType   string   `json:"type"`
	Traits    []string `json:"traits"`
	ClassName string   `json:"className"`
	Image     string   `json:"image"`
}

// CreateCharacter creates a pet and makes it the active character
func (h *Handler) CreateCharacter(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, req *createCharacterRequest) (interface{}, error) {
		out, err := h.characterService.CreateCharacter(ctx, &character.CreateCharacterInput{
			PlayerID:  playerID,
			Name:      req.Name,
			PetType:   superpet.PetType(req.PetType),
			Traits:    req.Traits,
			ClassName: superpet.ClassName(req.ClassName),
			Image:     req.Image,
		})
		if err != nil {
			return nil, err
		}
		return struct {
			Sheet        *sheetResponse           `json:"sheet"`
			StarterItems []superpet.InventoryItem `json:"starterItems"`
		}{toSheet(out.Sheet), out.StarterItems}, nil
	})
}

// ListCharacters returns the player's roster
func (h *Handler) ListCharacters(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, _ *empty) (interface{}, error) {
		out, err := h.characterService.ListCharacters(ctx, &character.ListCharactersInput{PlayerID: playerID})
		if err != nil {
			return nil, err
		}
		return struct {
			Characters []*superpet.Character `json:"characters"`
			ActiveID   string                `json:"activeId"`
			MaxAllowed int                   `json:"maxAllowed"`
		}{out.Characters, out.ActiveID, out.MaxAllowed}, nil
	})
}

type characterIDRequest struct {
	CharacterID string `json:"characterId"`
}

// SelectCharacter switches the active character
func (h *Handler) SelectCharacter(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, req *characterIDRequest) (interface{}, error) {
		out, err := h.characterService.SelectCharacter(ctx, &character.SelectCharacterInput{
			PlayerID:    playerID,
			CharacterID: req.CharacterID,
		})
		if err != nil {
			return nil, err
		}
		return struct {
			Sheet *sheetResponse `json:"sheet"`
		}{toSheet(out.Sheet)}, nil
	})
}

// DeleteCharacter removes a character
func (h *Handler) DeleteCharacter(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, req *characterIDRequest) (interface{}, error) {
		out, err := h.characterService.DeleteCharacter(ctx, &character.DeleteCharacterInput{
			PlayerID:    playerID,
			CharacterID: req.CharacterID,
		})
		if err != nil {
			return nil, err
		}
		return struct {
			ActiveID string `json:"activeId"`
		}{out.ActiveID}, nil
	})
}

// GetCharacter returns a character sheet, the active one when no ID is given
func (h *Handler) GetCharacter(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, req *characterIDRequest) (interface{}, error) {
		out, err := h.characterService.GetCharacter(ctx, &character.GetCharacterInput{
			PlayerID:    playerID,
			CharacterID: req.CharacterID,
		})
		if err != nil {
			return nil, err
		}
		return struct {
			Sheet *sheetResponse `json:"sheet"`
		}{toSheet(out.Sheet)}, nil
	})
}

// AddExp grants experience to the active character
func (h *Handler) AddExp(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, req *struct {
		Exp int `json:"exp"`
	}) (interface{}, error) {
		out, err := h.characterService.AddExp(ctx, &character.AddExpInput{PlayerID: playerID, Exp: req.Exp})
		if err != nil {
			return nil, err
		}
		return struct {
			Character    *superpet.Character `json:"character"`
			LeveledUp    bool                `json:"leveledUp"`
			LevelsGained int                 `json:"levelsGained"`
		}{out.Character, out.LeveledUp, out.LevelsGained}, nil
	})
}

// AddGold adjusts the active character's gold
func (h *Handler) AddGold(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, req *struct {
		Gold int `json:"gold"`
	}) (interface{}, error) {
		out, err := h.characterService.AddGold(ctx, &character.AddGoldInput{PlayerID: playerID, Gold: req.Gold})
		if err != nil {
			return nil, err
		}
		return struct {
			Character *superpet.Character `json:"character"`
		}{out.Character}, nil
	})
}

// UseFood feeds the active character from the bag
func (h *Handler) UseFood(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, req *struct {
		ItemID string `json:"itemId"`
	}) (interface{}, error) {
		out, err := h.characterService.UseFood(ctx, &character.UseFoodInput{PlayerID: playerID, ItemID: req.ItemID})
		if err != nil {
			return nil, err
		}
		return struct {
			Character *superpet.Character `json:"character"`
			Healed    int                 `json:"healed"`
		}{out.Character, out.Healed}, nil
	})
}

// Equip moves an inventory instance into its slot
func (h *Handler) Equip(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, req *struct {
		InstanceID string `json:"instanceId"`
	}) (interface{}, error) {
		out, err := h.characterService.Equip(ctx, &character.EquipInput{PlayerID: playerID, InstanceID: req.InstanceID})
		if err != nil {
			return nil, err
		}
		return struct {
			Sheet    *sheetResponse         `json:"sheet"`
			Previous *superpet.EquippedItem `json:"previous,omitempty"`
		}{toSheet(out.Sheet), out.Previous}, nil
	})
}

// Unequip moves a slot's item back to the bag
func (h *Handler) Unequip(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, req *struct {
		Slot string `json:"slot"`
	}) (interface{}, error) {
		out, err := h.characterService.Unequip(ctx, &character.UnequipInput{
			PlayerID: playerID,
			Slot:     superpet.EquipmentSlot(req.Slot),
		})
		if err != nil {
			return nil, err
		}
		return struct {
			Sheet   *sheetResponse         `json:"sheet"`
			Removed *superpet.EquippedItem `json:"removed,omitempty"`
		}{toSheet(out.Sheet), out.Removed}, nil
	})
}
