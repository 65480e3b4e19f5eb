package engine

import (
	"math"

	"github.com/superpet/superpet-api/internal/catalog"
	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/errors"
	"github.com/superpet/superpet-api/internal/pkg/rng"
)

type engine struct {
	catalog *catalog.Catalog
	tuning  catalog.Tuning
	random  rng.Source
}

// Config contains configuration for creating a new Engine
type Config struct {
	Catalog *catalog.Catalog
	// Random drives every probabilistic rule. Defaults to a dice-backed source.
	Random rng.Source
}

// Validate checks that all required dependencies are provided
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config is required")
	}
	if cfg.Catalog == nil {
		return errors.InvalidArgument("catalog is required")
	}
	return nil
}

// New creates a rules engine over the given content.
func New(cfg *Config) (Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	random := cfg.Random
	if random == nil {
		random = rng.NewDice(nil)
	}
	return &engine{
		catalog: cfg.Catalog,
		tuning:  cfg.Catalog.Tuning(),
		random:  random,
	}, nil
}

// ExpForNextLevel is the experience needed to advance from level. The curve
// is linear through 20, quadratic through 50 and exponential after. The
// quadratic and exponential pieces meet at 50; the step from 20 to 21 jumps.
func ExpForNextLevel(level int) int {
	switch {
	case level < 1:
		return 0
	case level <= 20:
		return 100 + (level-1)*50
	case level <= 50:
		l := float64(level)
		return int(math.Floor(4.95*l*l + 211*l - 1588))
	default:
		return int(math.Floor(21337 * math.Exp(0.021*float64(level-50))))
	}
}

func (e *engine) ExpForNextLevel(level int) int {
	return ExpForNextLevel(level)
}

func (e *engine) TotalStats(character *superpet.Character) superpet.Stats {
	return character.BaseStats().Add(e.EquipmentStats(character))
}

func (e *engine) EquipmentStats(character *superpet.Character) superpet.Stats {
	var total superpet.Stats
	character.Equipment.Each(func(_ superpet.EquipmentSlot, equipped *superpet.EquippedItem) {
		total = total.Add(equipped.Item.Stats).Add(e.EnhancementBonus(equipped.Item, equipped.EnhanceLevel))
	})
	return total
}

func (e *engine) SellPrice(rarity superpet.Rarity) int {
	return e.tuning.SellPrice[rarity]
}

func (e *engine) PowderFor(rarity superpet.Rarity) string {
	return e.tuning.Powder[rarity]
}

func (e *engine) RollCraft(recipe superpet.Recipe) bool {
	return rng.Percent(e.random, recipe.SuccessRate)
}
