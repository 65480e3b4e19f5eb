// Package engine implements the game rules: derived stats, progression,
// enhancement, loot and the battle resolver. It is pure with respect to
// storage; every random decision goes through the configured rng.Source.
package engine

//go:generate mockgen -destination=mock/mock_engine.go -package=enginemock github.com/superpet/superpet-api/internal/engine Engine

import (
	"github.com/superpet/superpet-api/internal/entities/superpet"
)

// Engine provides game mechanics and rules calculations
type Engine interface {
	// Derived totals
	TotalStats(character *superpet.Character) superpet.Stats
	EquipmentStats(character *superpet.Character) superpet.Stats

	// Progression
	ExpForNextLevel(level int) int
	GainExp(character *superpet.Character, exp int) *GainExpOutput
	GenerateCharacter(input *GenerateCharacterInput) (*superpet.Character, error)

	// Enhancement
	RequiredScrollType(slot superpet.EquipmentSlot) superpet.ScrollType
	EnhanceSuccessRate(currentLevel int) float64
	IsCeilingLevel(level int) bool
	MaxEnhanceLevel() int
	EnhancementBonus(item superpet.GameItem, enhanceLevel int) superpet.Stats
	AttemptEnhance(input *AttemptEnhanceInput) (*AttemptEnhanceOutput, error)

	// Loot and economy
	RollDrops(monster superpet.Monster) []string
	KillRewards(monster superpet.Monster) *KillRewardsOutput
	SellPrice(rarity superpet.Rarity) int
	PowderFor(rarity superpet.Rarity) string
	RollCraft(recipe superpet.Recipe) bool

	// Battle
	SelectMonster(dungeon superpet.Dungeon) (superpet.Monster, error)
	StartBattle(input *StartBattleInput) (*Battle, error)
	ResolveTick(battle *Battle, character *superpet.Character) (*TickOutput, error)
}
