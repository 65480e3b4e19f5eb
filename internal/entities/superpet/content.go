package superpet

// Drop is one independent loot roll on a monster.
type Drop struct {
	ItemID string  `json:"itemId" yaml:"item"`
	Chance float64 `json:"chance" yaml:"chance"`
}

// Monster is static per-dungeon configuration.
type Monster struct {
	Name        string  `json:"name" yaml:"name"`
	Emoji       string  `json:"emoji" yaml:"emoji"`
	Level       int     `json:"level" yaml:"level"`
	HP          int     `json:"hp" yaml:"hp"`
	Attack      int     `json:"attack" yaml:"attack"`
	IsBoss      bool    `json:"isBoss" yaml:"boss"`
	SpawnChance float64 `json:"spawnChance" yaml:"spawn"`
	Drops       []Drop  `json:"drops" yaml:"drops"`
}

// Dungeon groups monsters for a level band.
type Dungeon struct {
	ID          int       `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	MinLevel    int       `json:"minLevel" yaml:"min_level"`
	MaxLevel    int       `json:"maxLevel" yaml:"max_level"`
	Monsters    []Monster `json:"monsters" yaml:"monsters"`
}

// Material is one ingredient line of a recipe.
type Material struct {
	ItemID   string `json:"itemId" yaml:"item"`
	Quantity int    `json:"quantity" yaml:"quantity"`
}

// Recipe turns materials into an item.
type Recipe struct {
	ID             string     `json:"id" yaml:"id"`
	ResultItemID   string     `json:"resultItemId" yaml:"result"`
	ResultQuantity int        `json:"resultQuantity" yaml:"result_quantity"`
	Materials      []Material `json:"materials" yaml:"materials"`
	SuccessRate    float64    `json:"successRate" yaml:"success_rate"`
	Rarity         Rarity     `json:"rarity" yaml:"rarity"`
}

// MissionCounter names the daily counter a mission reads.
type MissionCounter string

// Counters.
const (
	CounterAttendance  MissionCounter = "attendance"
	CounterBossKills   MissionCounter = "boss_kills"
	CounterNormalKills MissionCounter = "normal_kills"
)

// RewardKind says what a mission pays out.
type RewardKind string

// Reward kinds.
const (
	RewardGold RewardKind = "gold"
	RewardItem RewardKind = "item"
)

// MissionDef is a daily mission.
type MissionDef struct {
	Key          string         `json:"key" yaml:"key"`
	Name         string         `json:"name" yaml:"name"`
	Counter      MissionCounter `json:"counter" yaml:"counter"`
	Target       int            `json:"target" yaml:"target"`
	RewardKind   RewardKind     `json:"rewardKind" yaml:"reward_kind"`
	RewardItemID string         `json:"rewardItemId,omitempty" yaml:"reward_item"`
	RewardAmount int            `json:"rewardAmount" yaml:"reward_amount"`
}
