package superpet

import "time"

// ClassName is the pet's combat class; it decides level-up growth.
type ClassName string

// Classes.
const (
	ClassWarrior  ClassName = "Warrior"
	ClassPaladin  ClassName = "Paladin"
	ClassAssassin ClassName = "Assassin"
)

// Classes lists the selectable classes.
var Classes = []ClassName{ClassWarrior, ClassPaladin, ClassAssassin}

// Element is cosmetic affinity assigned at creation.
type Element string

// Elements.
const (
	ElementFire  Element = "Fire"
	ElementWater Element = "Water"
	ElementWind  Element = "Wind"
	ElementEarth Element = "Earth"
)

// Elements lists every element.
var Elements = []Element{ElementFire, ElementWater, ElementWind, ElementEarth}

// PetType picks the base stat line at creation.
type PetType string

// Pet types.
const (
	PetDog   PetType = "dog"
	PetCat   PetType = "cat"
	PetBird  PetType = "bird"
	PetOther PetType = "other"
)

// EquipmentSlot names one of the nine fixed slots.
type EquipmentSlot string

// Equipment slots.
const (
	SlotHelmet   EquipmentSlot = "helmet"
	SlotArmor    EquipmentSlot = "armor"
	SlotCloak    EquipmentSlot = "cloak"
	SlotWeapon   EquipmentSlot = "weapon"
	SlotShield   EquipmentSlot = "shield"
	SlotGloves   EquipmentSlot = "gloves"
	SlotBoots    EquipmentSlot = "boots"
	SlotNecklace EquipmentSlot = "necklace"
	SlotRing     EquipmentSlot = "ring"
)

// Slots lists every slot in display order.
var Slots = []EquipmentSlot{
	SlotHelmet, SlotArmor, SlotCloak, SlotWeapon, SlotShield,
	SlotGloves, SlotBoots, SlotNecklace, SlotRing,
}

// Valid reports whether s names a real slot.
func (s EquipmentSlot) Valid() bool {
	for _, known := range Slots {
		if s == known {
			return true
		}
	}
	return false
}

// Equipment is the fixed set of slots on a character. Nil means empty.
type Equipment struct {
	Helmet   *EquippedItem `json:"helmet"`
	Armor    *EquippedItem `json:"armor"`
	Cloak    *EquippedItem `json:"cloak"`
	Weapon   *EquippedItem `json:"weapon"`
	Shield   *EquippedItem `json:"shield"`
	Gloves   *EquippedItem `json:"gloves"`
	Boots    *EquippedItem `json:"boots"`
	Necklace *EquippedItem `json:"necklace"`
	Ring     *EquippedItem `json:"ring"`
}

func (e *Equipment) ref(slot EquipmentSlot) **EquippedItem {
	switch slot {
	case SlotHelmet:
		return &e.Helmet
	case SlotArmor:
		return &e.Armor
	case SlotCloak:
		return &e.Cloak
	case SlotWeapon:
		return &e.Weapon
	case SlotShield:
		return &e.Shield
	case SlotGloves:
		return &e.Gloves
	case SlotBoots:
		return &e.Boots
	case SlotNecklace:
		return &e.Necklace
	case SlotRing:
		return &e.Ring
	}
	return nil
}

// Get returns the item in slot, or nil.
func (e *Equipment) Get(slot EquipmentSlot) *EquippedItem {
	if r := e.ref(slot); r != nil {
		return *r
	}
	return nil
}

// Set places item in slot and returns what was there before. Unknown slots
// are ignored.
func (e *Equipment) Set(slot EquipmentSlot, item *EquippedItem) *EquippedItem {
	r := e.ref(slot)
	if r == nil {
		return nil
	}
	prev := *r
	*r = item
	return prev
}

// Each calls fn for every occupied slot in display order.
func (e *Equipment) Each(fn func(slot EquipmentSlot, item *EquippedItem)) {
	for _, slot := range Slots {
		if item := e.Get(slot); item != nil {
			fn(slot, item)
		}
	}
}

// FindInstance returns the slot holding instanceID.
func (e *Equipment) FindInstance(instanceID string) (EquipmentSlot, bool) {
	for _, slot := range Slots {
		if item := e.Get(slot); item != nil && item.InstanceID == instanceID {
			return slot, true
		}
	}
	return "", false
}

// Character is a player's pet.
type Character struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	PetType   PetType   `json:"type"`
	Traits    []string  `json:"traits,omitempty"`
	ClassName ClassName `json:"className"`
	Element   Element   `json:"element"`
	Image     string    `json:"image,omitempty"`

	HP      int `json:"hp"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Speed   int `json:"speed"`

	CurrentHP int `json:"currentHp"`
	Level     int `json:"level"`
	Exp       int `json:"exp"`
	Gold      int `json:"gold"`
	Gem       int `json:"gem"`

	Equipment Equipment `json:"equipment"`
	CreatedAt time.Time `json:"createdAt"`
}

// BaseStats returns the character's own stats without equipment.
func (c *Character) BaseStats() Stats {
	return Stats{HP: c.HP, Attack: c.Attack, Defense: c.Defense, Speed: c.Speed}
}

// Defeated reports whether the pet must heal before battling.
func (c *Character) Defeated() bool {
	return c.CurrentHP <= 0
}
