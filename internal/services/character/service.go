// Package character defines the interface for character operations
package character

//go:generate mockgen -destination=mock/mock_service.go -package=charactermock github.com/superpet/superpet-api/internal/services/character Service

import (
	"context"

	"github.com/superpet/superpet-api/internal/entities/superpet"
)

// Service defines the interface for character operations
type Service interface {
	// Roster
	CreateCharacter(ctx context.Context, input *CreateCharacterInput) (*CreateCharacterOutput, error)
	ListCharacters(ctx context.Context, input *ListCharactersInput) (*ListCharactersOutput, error)
	SelectCharacter(ctx context.Context, input *SelectCharacterInput) (*SelectCharacterOutput, error)
	DeleteCharacter(ctx context.Context, input *DeleteCharacterInput) (*DeleteCharacterOutput, error)
	GetCharacter(ctx context.Context, input *GetCharacterInput) (*GetCharacterOutput, error)

	// Progression on the active character
	AddExp(ctx context.Context, input *AddExpInput) (*AddExpOutput, error)
	AddGold(ctx context.Context, input *AddGoldInput) (*AddGoldOutput, error)

	// Care and gear on the active character
	UseFood(ctx context.Context, input *UseFoodInput) (*UseFoodOutput, error)
	Equip(ctx context.Context, input *EquipInput) (*EquipOutput, error)
	Unequip(ctx context.Context, input *UnequipInput) (*UnequipOutput, error)
}

// Sheet is a character with its derived numbers.
type Sheet struct {
	Character      *superpet.Character
	Totals         superpet.Stats
	EquipmentStats superpet.Stats
	ExpToNext      int
}

// CreateCharacterInput defines the request for creating a character
type CreateCharacterInput struct {
	PlayerID  string
	Name      string
	PetType   superpet.PetType
	Traits    []string
	ClassName superpet.ClassName
	Image     string
}

// CreateCharacterOutput defines the response for creating a character
type CreateCharacterOutput struct {
	Sheet *Sheet
	// StarterItems lists items granted because this was the first character
	StarterItems []superpet.InventoryItem
}

// ListCharactersInput defines the request for listing characters
type ListCharactersInput struct {
	PlayerID string
}

// ListCharactersOutput defines the response for listing characters
type ListCharactersOutput struct {
	Characters []*superpet.Character
	ActiveID   string
	MaxAllowed int
}

// SelectCharacterInput defines the request for switching characters
type SelectCharacterInput struct {
	PlayerID    string
	CharacterID string
}

// SelectCharacterOutput defines the response for switching characters
type SelectCharacterOutput struct {
	Sheet *Sheet
}

// DeleteCharacterInput defines the request for deleting a character
type DeleteCharacterInput struct {
	PlayerID    string
	CharacterID string
}

// DeleteCharacterOutput defines the response for deleting a character
type DeleteCharacterOutput struct {
	// ActiveID is the selection after the delete, empty when none remain
	ActiveID string
}

// GetCharacterInput defines the request for reading a character. An empty
// CharacterID reads the active character.
type GetCharacterInput struct {
	PlayerID    string
	CharacterID string
}

// GetCharacterOutput defines the response for reading a character
type GetCharacterOutput struct {
	Sheet *Sheet
}

// AddExpInput defines the request for granting experience
type AddExpInput struct {
	PlayerID string
	Exp      int
}

// AddExpOutput defines the response for granting experience
type AddExpOutput struct {
	Character    *superpet.Character
	LeveledUp    bool
	LevelsGained int
}

// AddGoldInput defines the request for granting gold
type AddGoldInput struct {
	PlayerID string
	Gold     int
}

// AddGoldOutput defines the response for granting gold
type AddGoldOutput struct {
	Character *superpet.Character
}

// UseFoodInput defines the request for feeding the active character
type UseFoodInput struct {
	PlayerID string
	ItemID   string
}

// UseFoodOutput defines the response for feeding the active character
type UseFoodOutput struct {
	Character *superpet.Character
	Healed    int
}

// EquipInput defines the request for equipping an inventory instance
type EquipInput struct {
	PlayerID   string
	InstanceID string
}

// EquipOutput defines the response for equipping an item
type EquipOutput struct {
	Sheet *Sheet
	// Previous is the item moved back to the inventory, if any
	Previous *superpet.EquippedItem
}

// UnequipInput defines the request for emptying a slot
type UnequipInput struct {
	PlayerID string
	Slot     superpet.EquipmentSlot
}

// UnequipOutput defines the response for emptying a slot
type UnequipOutput struct {
	Sheet   *Sheet
	Removed *superpet.EquippedItem
}
