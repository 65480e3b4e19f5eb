package testutils

import (
	"time"

	"github.com/superpet/superpet-api/internal/entities/superpet"
)

const (
	// TestPlayerID is the default player for fixtures
	TestPlayerID = "player-test-001"

	// TestCharacterName is the default character name for test fixtures
	TestCharacterName = "Mochi"
)

// TestCreatedAt is the creation time stamped on fixture characters.
var TestCreatedAt = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// CreateTestCharacter creates a level 1 warrior dog at full health.
func CreateTestCharacter(id string) *superpet.Character {
	return &superpet.Character{
		ID:        id,
		Name:      TestCharacterName,
		PetType:   superpet.PetDog,
		Traits:    []string{"brave"},
		ClassName: superpet.ClassWarrior,
		Element:   superpet.ElementFire,
		HP:        130,
		Attack:    13,
		Defense:   5,
		Speed:     5,
		CurrentHP: 130,
		Level:     1,
		CreatedAt: TestCreatedAt,
	}
}

// CreateTestCharacterAtLevel creates a fixture character with the given
// level, gold and current HP.
func CreateTestCharacterAtLevel(id string, level, gold, currentHP int) *superpet.Character {
	c := CreateTestCharacter(id)
	c.Level = level
	c.Gold = gold
	c.CurrentHP = currentHP
	return c
}

// Equip places item in its slot on c with the given instance ID and
// enhancement level.
func Equip(c *superpet.Character, item superpet.GameItem, instanceID string, enhanceLevel int) {
	c.Equipment.Set(item.Slot, &superpet.EquippedItem{
		Item:         item,
		InstanceID:   instanceID,
		EnhanceLevel: enhanceLevel,
	})
}
