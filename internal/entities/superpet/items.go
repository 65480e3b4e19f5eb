// Package superpet holds the game's domain records: pets, items, inventory
// entries and dungeon content. Records are plain data; rules live in
// internal/engine.
package superpet

// Rarity is the five-tier item grade.
type Rarity string

// Rarity tiers in ascending order.
const (
	RarityCommon    Rarity = "Common"
	RarityUncommon  Rarity = "Uncommon"
	RarityRare      Rarity = "Rare"
	RarityEpic      Rarity = "Epic"
	RarityLegendary Rarity = "Legendary"
)

// Rarities lists every tier, lowest first.
var Rarities = []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary}

// Rank returns the 1-based ordinal of the tier, or 0 when unknown.
func (r Rarity) Rank() int {
	for i, known := range Rarities {
		if r == known {
			return i + 1
		}
	}
	return 0
}

// Valid reports whether r is one of the five tiers.
func (r Rarity) Valid() bool {
	return r.Rank() > 0
}

// ItemType classifies catalog items.
type ItemType string

// Item types.
const (
	ItemTypeEquipment ItemType = "equipment"
	ItemTypeFood      ItemType = "food"
	ItemTypeScroll    ItemType = "scroll"
	ItemTypeMaterial  ItemType = "material"
	ItemTypeCurrency  ItemType = "currency"
)

// ScrollType is the enhancement scroll category a slot consumes.
type ScrollType string

// Scroll categories.
const (
	ScrollWeapon    ScrollType = "weapon"
	ScrollArmor     ScrollType = "armor"
	ScrollAccessory ScrollType = "accessory"
)

// Stats is a bundle of the four combat attributes. It is used for base
// stats, item bonuses and derived totals alike.
type Stats struct {
	HP      int `json:"hp" yaml:"hp"`
	Attack  int `json:"attack" yaml:"attack"`
	Defense int `json:"defense" yaml:"defense"`
	Speed   int `json:"speed" yaml:"speed"`
}

// Add returns the component-wise sum.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		HP:      s.HP + o.HP,
		Attack:  s.Attack + o.Attack,
		Defense: s.Defense + o.Defense,
		Speed:   s.Speed + o.Speed,
	}
}

// Scale multiplies every component by n.
func (s Stats) Scale(n int) Stats {
	return Stats{HP: s.HP * n, Attack: s.Attack * n, Defense: s.Defense * n, Speed: s.Speed * n}
}

// IsZero reports whether every component is zero.
func (s Stats) IsZero() bool {
	return s == Stats{}
}

// GameItem is an immutable catalog entry.
type GameItem struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Emoji       string        `json:"emoji" yaml:"emoji"`
	Rarity      Rarity        `json:"rarity" yaml:"rarity"`
	Type        ItemType      `json:"type" yaml:"type"`
	Description string        `json:"description,omitempty" yaml:"description"`
	Stats       Stats         `json:"stats" yaml:"stats"`
	Slot        EquipmentSlot `json:"equipmentSlot,omitempty" yaml:"slot"`
	ScrollType  ScrollType    `json:"scrollType,omitempty" yaml:"scroll_type"`
	ShopGold    int           `json:"shopGold,omitempty" yaml:"shop_gold"`
	ShopGem     int           `json:"shopGem,omitempty" yaml:"shop_gem"`
	GoldAmount  int           `json:"goldAmount,omitempty" yaml:"gold_amount"`
}

// IsEquipment reports whether the item occupies a slot and never stacks.
func (g GameItem) IsEquipment() bool {
	return g.Type == ItemTypeEquipment
}

// EquippedItem is one specific copy of an equipment item.
type EquippedItem struct {
	Item         GameItem `json:"item"`
	InstanceID   string   `json:"instanceId"`
	EnhanceLevel int      `json:"enhanceLevel"`
}

// InventoryItem is a holding in the player's bag. Equipment entries always
// have Quantity 1 and their own InstanceID; everything else stacks by item ID.
type InventoryItem struct {
	Item         GameItem `json:"item"`
	Quantity     int      `json:"quantity"`
	InstanceID   string   `json:"instanceId,omitempty"`
	EnhanceLevel int      `json:"enhanceLevel,omitempty"`
}

// AsEquipped converts an equipment entry into the record stored in a slot.
func (i InventoryItem) AsEquipped() *EquippedItem {
	return &EquippedItem{Item: i.Item, InstanceID: i.InstanceID, EnhanceLevel: i.EnhanceLevel}
}

// FromEquipped is the inverse of AsEquipped.
func FromEquipped(e *EquippedItem) InventoryItem {
	return InventoryItem{Item: e.Item, Quantity: 1, InstanceID: e.InstanceID, EnhanceLevel: e.EnhanceLevel}
}
