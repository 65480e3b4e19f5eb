package engine

import (
	"slices"

	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/errors"
	"github.com/superpet/superpet-api/internal/pkg/rng"
)

// RequiredScrollType maps a slot to the scroll category it consumes.
func RequiredScrollType(slot superpet.EquipmentSlot) superpet.ScrollType {
	switch slot {
	case superpet.SlotWeapon:
		return superpet.ScrollWeapon
	case superpet.SlotNecklace, superpet.SlotRing:
		return superpet.ScrollAccessory
	default:
		return superpet.ScrollArmor
	}
}

func (e *engine) RequiredScrollType(slot superpet.EquipmentSlot) superpet.ScrollType {
	return RequiredScrollType(slot)
}

// EnhanceSuccessRate is the chance that an item at currentLevel reaches the
// next level.
func (e *engine) EnhanceSuccessRate(currentLevel int) float64 {
	target := currentLevel + 1
	for _, band := range e.tuning.EnhanceRates {
		if target <= band.MaxLevel {
			return band.Rate
		}
	}
	return 0
}

func (e *engine) IsCeilingLevel(level int) bool {
	return slices.Contains(e.tuning.CeilingLevels, level)
}

func (e *engine) MaxEnhanceLevel() int {
	return e.tuning.MaxEnhanceLevel
}

// EnhancementBonus is the extra stats an item gains at enhanceLevel. It is
// linear in the level, and the table holds no negative entries, so it never
// decreases as the level rises.
func (e *engine) EnhancementBonus(item superpet.GameItem, enhanceLevel int) superpet.Stats {
	if enhanceLevel <= 0 || !item.IsEquipment() || item.Slot == "" {
		return superpet.Stats{}
	}
	perLevel := e.tuning.EnhanceBonus[RequiredScrollType(item.Slot)][item.Rarity]
	return perLevel.Scale(enhanceLevel)
}

// AttemptEnhance validates the attempt and then rolls it. Validation
// failures return an error and consume nothing. Once an output is returned
// the caller must spend exactly one scroll.
func (e *engine) AttemptEnhance(input *AttemptEnhanceInput) (*AttemptEnhanceOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if !input.Item.IsEquipment() || input.Item.Slot == "" {
		return nil, errors.CannotProceedf(errors.ReasonNotEquipment, "%s cannot be enhanced", input.Item.Name)
	}
	if input.Scroll.Type != superpet.ItemTypeScroll {
		return nil, errors.CannotProceedf(errors.ReasonWrongScroll, "%s is not an enhancement scroll", input.Scroll.Name)
	}
	required := RequiredScrollType(input.Item.Slot)
	if input.Scroll.ScrollType != required {
		return nil, errors.CannotProceedf(errors.ReasonWrongScroll, "%s requires a %s scroll", input.Item.Name, required).
			WithMeta("required_scroll_type", string(required))
	}
	current := input.EnhanceLevel
	if current < 0 {
		current = 0
	}
	if current >= e.tuning.MaxEnhanceLevel {
		return nil, errors.CannotProceed(errors.ReasonMaxEnhanceLevel, "already at max enhancement level")
	}

	rate := e.EnhanceSuccessRate(current)
	out := &AttemptEnhanceOutput{PreviousLevel: current, Rate: rate}
	if rng.Chance(e.random, rate) {
		out.Success = true
		out.NewLevel = current + 1
		out.IsMaxLevel = out.NewLevel >= e.tuning.MaxEnhanceLevel
		return out, nil
	}

	if e.IsCeilingLevel(current) {
		out.Protected = true
		out.NewLevel = current
		return out, nil
	}
	out.NewLevel = max(0, current-1)
	return out, nil
}
