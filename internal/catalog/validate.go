package catalog

import (
	"fmt"

	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/errors"
)

// Validate checks cross references and the invariants the rules depend on:
// every referenced item exists, rarities are known, rates are probabilities
// and enhancement bonuses are non-negative so totals never fall as an item
// is enhanced.
func (c *Catalog) Validate() error {
	vb := errors.NewValidationBuilder()

	for _, id := range c.itemOrder {
		item := c.items[id]
		if !item.Rarity.Valid() {
			vb.Fieldf("items."+id+".rarity", "unknown rarity %q", item.Rarity)
		}
		if item.Type == superpet.ItemTypeScroll && item.ScrollType == "" {
			vb.RequiredField("items." + id + ".scroll_type")
		}
	}
	if len(c.itemOrder) != len(c.items) {
		vb.Field("items", "duplicate item id")
	}

	c.validateDungeons(vb)
	c.validateRecipes(vb)
	c.validateMissions(vb)
	c.validateTuning(vb)

	for petType := range c.pets.BaseStats {
		switch petType {
		case superpet.PetDog, superpet.PetCat, superpet.PetBird, superpet.PetOther:
		default:
			vb.Fieldf("pets.base_stats", "unknown pet type %q", petType)
		}
	}
	if _, ok := c.pets.Growth["default"]; !ok {
		vb.RequiredField("pets.growth.default")
	}

	return vb.Build()
}

func (c *Catalog) validateDungeons(vb *errors.ValidationBuilder) {
	for _, d := range c.dungeons {
		field := fmt.Sprintf("dungeons.%d", d.ID)
		if len(d.Monsters) == 0 {
			vb.Field(field+".monsters", "must not be empty")
		}
		if d.MinLevel > d.MaxLevel {
			vb.Field(field, "min_level exceeds max_level")
		}
		for _, m := range d.Monsters {
			if m.HP <= 0 {
				vb.Fieldf(field+".monsters", "%s must have positive hp", m.Name)
			}
			if m.SpawnChance < 0 {
				vb.Fieldf(field+".monsters", "%s has a negative spawn weight", m.Name)
			}
			for _, drop := range m.Drops {
				if _, ok := c.items[drop.ItemID]; !ok {
					vb.Fieldf(field+".monsters", "%s drops unknown item %q", m.Name, drop.ItemID)
				}
			}
		}
	}
}

func (c *Catalog) validateRecipes(vb *errors.ValidationBuilder) {
	for _, r := range c.recipes {
		field := "recipes." + r.ID
		if _, ok := c.items[r.ResultItemID]; !ok {
			vb.Fieldf(field, "unknown result %q", r.ResultItemID)
		}
		if r.ResultQuantity <= 0 {
			vb.Field(field, "result_quantity must be positive")
		}
		if r.SuccessRate < 0 || r.SuccessRate > 100 {
			vb.Field(field, "success_rate must be within 0..100")
		}
		for _, m := range r.Materials {
			if _, ok := c.items[m.ItemID]; !ok {
				vb.Fieldf(field, "unknown material %q", m.ItemID)
			}
		}
	}
}

func (c *Catalog) validateMissions(vb *errors.ValidationBuilder) {
	for _, m := range c.missions {
		field := "missions." + m.Key
		if m.Target <= 0 {
			vb.Field(field, "target must be positive")
		}
		if m.RewardKind == superpet.RewardItem {
			if _, ok := c.items[m.RewardItemID]; !ok {
				vb.Fieldf(field, "unknown reward item %q", m.RewardItemID)
			}
		}
	}
}

func (c *Catalog) validateTuning(vb *errors.ValidationBuilder) {
	t := c.tuning
	if t.MaxEnhanceLevel <= 0 {
		vb.Field("tuning.max_enhance_level", "must be positive")
	}
	if len(t.EnhanceRates) == 0 {
		vb.RequiredField("tuning.enhance_rates")
	} else if last := t.EnhanceRates[len(t.EnhanceRates)-1]; last.MaxLevel < t.MaxEnhanceLevel {
		vb.Field("tuning.enhance_rates", "must cover max_enhance_level")
	}
	for _, band := range t.EnhanceRates {
		if band.Rate < 0 || band.Rate > 1 {
			vb.Fieldf("tuning.enhance_rates", "rate %v is not a probability", band.Rate)
		}
	}
	for scroll, byRarity := range t.EnhanceBonus {
		for rarity, bonus := range byRarity {
			if bonus.HP < 0 || bonus.Attack < 0 || bonus.Defense < 0 || bonus.Speed < 0 {
				vb.Fieldf("tuning.enhance_bonus", "%s/%s must not be negative", scroll, rarity)
			}
		}
	}
	for _, rarity := range superpet.Rarities {
		if _, ok := t.SellPrice[rarity]; !ok {
			vb.Fieldf("tuning.sell_price", "missing %s", rarity)
		}
		powder, ok := t.Powder[rarity]
		if !ok {
			vb.Fieldf("tuning.powder", "missing %s", rarity)
		} else if _, ok := c.items[powder]; !ok {
			vb.Fieldf("tuning.powder", "unknown item %q", powder)
		}
	}
	if t.MaxCharacters <= 0 {
		vb.Field("tuning.max_characters", "must be positive")
	}
	if t.FeedReward.Interval <= 0 {
		vb.Field("tuning.feed_reward.interval", "must be positive")
	}
	if _, ok := c.items[t.FeedReward.ItemID]; !ok {
		vb.Fieldf("tuning.feed_reward.item", "unknown item %q", t.FeedReward.ItemID)
	}
}
