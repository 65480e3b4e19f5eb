// Package catalog loads the game's static content: items, dungeons, recipes,
// missions, pet generation tables and the enhancement tuning tables. Content
// ships as YAML embedded in the binary and is immutable once loaded.
package catalog

import (
	"embed"
	"io/fs"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/errors"
)

//go:embed content/*.yaml
var embedded embed.FS

// RateBand is one step of the enhancement success curve.
type RateBand struct {
	MaxLevel int     `yaml:"max_level"`
	Rate     float64 `yaml:"rate"`
}

// FeedReward configures the periodic free feed.
type FeedReward struct {
	Interval time.Duration `yaml:"interval"`
	ItemID   string        `yaml:"item"`
	Quantity int           `yaml:"quantity"`
}

// Tuning holds the numeric balance tables.
type Tuning struct {
	MaxEnhanceLevel int                                                         `yaml:"max_enhance_level"`
	CeilingLevels   []int                                                       `yaml:"ceiling_levels"`
	EnhanceRates    []RateBand                                                  `yaml:"enhance_rates"`
	EnhanceBonus    map[superpet.ScrollType]map[superpet.Rarity]superpet.Stats `yaml:"enhance_bonus"`
	SellPrice       map[superpet.Rarity]int                                     `yaml:"sell_price"`
	Powder          map[superpet.Rarity]string                                  `yaml:"powder"`
	MaxCharacters   int                                                         `yaml:"max_characters"`
	StarterFeed     int                                                         `yaml:"starter_feed"`
	FeedReward      FeedReward                                                  `yaml:"feed_reward"`
}

// Pets holds the character generation tables.
type Pets struct {
	BaseStats map[superpet.PetType]superpet.Stats `yaml:"base_stats"`
	Traits    map[string]superpet.Stats           `yaml:"traits"`
	Growth    map[string]superpet.Stats           `yaml:"growth"`
}

// GrowthFor returns the per-level gains for class, falling back to default.
func (p Pets) GrowthFor(class superpet.ClassName) superpet.Stats {
	if g, ok := p.Growth[string(class)]; ok {
		return g
	}
	return p.Growth["default"]
}

// Catalog is the loaded content set.
type Catalog struct {
	items     map[string]superpet.GameItem
	itemOrder []string
	dungeons  []superpet.Dungeon
	recipes   []superpet.Recipe
	missions  []superpet.MissionDef
	pets      Pets
	tuning    Tuning
}

type itemsFile struct {
	Food      []superpet.GameItem                            `yaml:"food"`
	Equipment map[superpet.EquipmentSlot][]superpet.GameItem `yaml:"equipment"`
	Scroll    []superpet.GameItem                            `yaml:"scroll"`
	Material  []superpet.GameItem                            `yaml:"material"`
	Currency  []superpet.GameItem                            `yaml:"currency"`
}

type rulesFile struct {
	Recipes  []superpet.Recipe     `yaml:"recipes"`
	Missions []superpet.MissionDef `yaml:"missions"`
	Tuning   Tuning                `yaml:"tuning"`
}

// LoadEmbedded loads the content compiled into the binary.
func LoadEmbedded() (*Catalog, error) {
	sub, err := fs.Sub(embedded, "content")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open embedded content")
	}
	return Load(sub)
}

// Load reads items.yaml, dungeons.yaml, rules.yaml and pets.yaml from fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	var items itemsFile
	if err := decode(fsys, "items.yaml", &items); err != nil {
		return nil, err
	}
	var dungeons []superpet.Dungeon
	if err := decode(fsys, "dungeons.yaml", &dungeons); err != nil {
		return nil, err
	}
	var rules rulesFile
	if err := decode(fsys, "rules.yaml", &rules); err != nil {
		return nil, err
	}
	var pets Pets
	if err := decode(fsys, "pets.yaml", &pets); err != nil {
		return nil, err
	}

	c := &Catalog{
		items:    make(map[string]superpet.GameItem),
		dungeons: dungeons,
		recipes:  rules.Recipes,
		missions: rules.Missions,
		pets:     pets,
		tuning:   rules.Tuning,
	}

	c.addItems(superpet.ItemTypeFood, "", items.Food)
	for _, slot := range superpet.Slots {
		c.addItems(superpet.ItemTypeEquipment, slot, items.Equipment[slot])
	}
	c.addItems(superpet.ItemTypeScroll, "", items.Scroll)
	c.addItems(superpet.ItemTypeMaterial, "", items.Material)
	c.addItems(superpet.ItemTypeCurrency, "", items.Currency)

	for slot := range items.Equipment {
		if !slot.Valid() {
			return nil, errors.InvalidArgumentf("unknown equipment slot %q", slot)
		}
	}

	sort.Slice(c.dungeons, func(i, j int) bool { return c.dungeons[i].ID < c.dungeons[j].ID })
	sort.Slice(c.tuning.EnhanceRates, func(i, j int) bool {
		return c.tuning.EnhanceRates[i].MaxLevel < c.tuning.EnhanceRates[j].MaxLevel
	})

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func decode(fsys fs.FS, name string, out interface{}) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", name)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse "+name)
	}
	return nil
}

func (c *Catalog) addItems(itemType superpet.ItemType, slot superpet.EquipmentSlot, list []superpet.GameItem) {
	for _, item := range list {
		item.Type = itemType
		item.Slot = slot
		c.items[item.ID] = item
		c.itemOrder = append(c.itemOrder, item.ID)
	}
}

// Item looks up a catalog item by ID.
func (c *Catalog) Item(id string) (superpet.GameItem, bool) {
	item, ok := c.items[id]
	return item, ok
}

// MustItem is Item for IDs known to exist, such as those referenced by
// validated content.
func (c *Catalog) MustItem(id string) superpet.GameItem {
	item, ok := c.items[id]
	if !ok {
		panic("catalog: unknown item " + id)
	}
	return item
}

// Items returns every item in file order.
func (c *Catalog) Items() []superpet.GameItem {
	out := make([]superpet.GameItem, 0, len(c.itemOrder))
	for _, id := range c.itemOrder {
		out = append(out, c.items[id])
	}
	return out
}

// ShopItems returns the items purchasable for gold or gems.
func (c *Catalog) ShopItems() []superpet.GameItem {
	var out []superpet.GameItem
	for _, item := range c.Items() {
		if item.ShopGold > 0 || item.ShopGem > 0 {
			out = append(out, item)
		}
	}
	return out
}

// Dungeons returns every dungeon ordered by ID.
func (c *Catalog) Dungeons() []superpet.Dungeon {
	return c.dungeons
}

// Dungeon looks up a dungeon by ID.
func (c *Catalog) Dungeon(id int) (superpet.Dungeon, bool) {
	for _, d := range c.dungeons {
		if d.ID == id {
			return d, true
		}
	}
	return superpet.Dungeon{}, false
}

// Recipes returns every crafting recipe.
func (c *Catalog) Recipes() []superpet.Recipe {
	return c.recipes
}

// Recipe looks up a recipe by ID.
func (c *Catalog) Recipe(id string) (superpet.Recipe, bool) {
	for _, r := range c.recipes {
		if r.ID == id {
			return r, true
		}
	}
	return superpet.Recipe{}, false
}

// Missions returns the daily missions.
func (c *Catalog) Missions() []superpet.MissionDef {
	return c.missions
}

// Mission looks up a mission by key.
func (c *Catalog) Mission(key string) (superpet.MissionDef, bool) {
	for _, m := range c.missions {
		if m.Key == key {
			return m, true
		}
	}
	return superpet.MissionDef{}, false
}

// Pets returns the character generation tables.
func (c *Catalog) Pets() Pets {
	return c.pets
}

// Tuning returns the balance tables.
func (c *Catalog) Tuning() Tuning {
	return c.tuning
}
