package engine

import (
	"github.com/superpet/superpet-api/internal/entities/superpet"
)

// GainExpOutput reports the result of applying experience.
type GainExpOutput struct {
	Character    *superpet.Character
	LeveledUp    bool
	LevelsGained int
	PrevLevel    int
}

// GenerateCharacterInput describes a new pet.
type GenerateCharacterInput struct {
	Name      string
	PetType   superpet.PetType
	Traits    []string
	ClassName superpet.ClassName
	Image     string
}

// AttemptEnhanceInput is one enhancement try on one equipment instance.
type AttemptEnhanceInput struct {
	Item         superpet.GameItem
	EnhanceLevel int
	Scroll       superpet.GameItem
}

// AttemptEnhanceOutput is the outcome of an attempt. The scroll is spent
// whenever an output is returned.
type AttemptEnhanceOutput struct {
	Success       bool
	PreviousLevel int
	NewLevel      int
	// Protected is set when a failure happened at a ceiling level.
	Protected  bool
	IsMaxLevel bool
	Rate       float64
}

// KillRewardsOutput is what a defeated monster pays out.
type KillRewardsOutput struct {
	Exp  int
	Gold int
}

// StartBattleInput selects a monster from Dungeon for Character.
type StartBattleInput struct {
	Character *superpet.Character
	Dungeon   superpet.Dungeon
}

// Victory records the spoils of a won battle.
type Victory struct {
	Exp          int      `json:"exp"`
	Gold         int      `json:"gold"`
	Drops        []string `json:"drops"`
	LeveledUp    bool     `json:"leveledUp"`
	LevelsGained int      `json:"levelsGained"`
	NewLevel     int      `json:"newLevel"`
}

// TickOutput describes what one tick did.
type TickOutput struct {
	Entries  []LogEntry
	Victory  *Victory
	Defeated bool
}
