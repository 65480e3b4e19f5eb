package engine

import (
	"fmt"
	"math"

	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/errors"
	"github.com/superpet/superpet-api/internal/pkg/rng"
)

// BattleState is the resolver's state machine position.
type BattleState string

// Battle states. Won and lost are terminal for a battle; the player leaves
// them by starting a new battle or exiting.
const (
	BattleIdle     BattleState = "idle"
	BattleFighting BattleState = "fighting"
	BattleWon      BattleState = "won"
	BattleLost     BattleState = "lost"
)

// LogKind tags a battle log entry.
type LogKind string

// Log entry kinds.
const (
	LogAppear        LogKind = "appear"
	LogPlayerAttack  LogKind = "player_attack"
	LogComboAttack   LogKind = "combo_attack"
	LogMonsterAttack LogKind = "monster_attack"
	LogDodge         LogKind = "dodge"
	LogVictory       LogKind = "victory"
	LogDrop          LogKind = "drop"
	LogNoDrop        LogKind = "no_drop"
	LogReward        LogKind = "reward"
	LogLevelUp       LogKind = "level_up"
	LogDefeat        LogKind = "defeat"
)

// LogEntry is one line of the append-only battle log.
type LogEntry struct {
	Tick    int     `json:"tick"`
	Kind    LogKind `json:"kind"`
	Amount  int     `json:"amount,omitempty"`
	ItemID  string  `json:"itemId,omitempty"`
	Message string  `json:"message"`
}

// Battle is one fight between a character and a monster.
type Battle struct {
	ID          string           `json:"id"`
	PlayerID    string           `json:"playerId"`
	CharacterID string           `json:"characterId"`
	DungeonID   int              `json:"dungeonId"`
	Monster     superpet.Monster `json:"monster"`
	State       BattleState      `json:"state"`
	PlayerHP    int              `json:"playerHp"`
	PlayerMaxHP int              `json:"playerMaxHp"`
	MonsterHP   int              `json:"monsterHp"`
	Ticks       int              `json:"ticks"`
	Log         []LogEntry       `json:"log"`
	Victory     *Victory         `json:"victory,omitempty"`
}

func (b *Battle) append(entries *[]LogEntry, kind LogKind, amount int, itemID, format string, args ...interface{}) {
	entry := LogEntry{Tick: b.Ticks, Kind: kind, Amount: amount, ItemID: itemID, Message: fmt.Sprintf(format, args...)}
	b.Log = append(b.Log, entry)
	*entries = append(*entries, entry)
}

// DoubleAttackChance is the per-tick chance of a combo hit.
func DoubleAttackChance(speed int) float64 {
	return math.Min(float64(speed)/500, 0.5)
}

// DodgeChance is the per-tick chance of avoiding the counter attack.
func DodgeChance(speed int) float64 {
	return math.Min(float64(speed)/500, 0.4)
}

// SelectMonster draws a monster weighted by spawn chance.
func (e *engine) SelectMonster(dungeon superpet.Dungeon) (superpet.Monster, error) {
	if len(dungeon.Monsters) == 0 {
		return superpet.Monster{}, errors.FailedPreconditionf("dungeon %d has no monsters", dungeon.ID)
	}
	total := 0.0
	for _, m := range dungeon.Monsters {
		total += m.SpawnChance
	}
	if total <= 0 {
		return dungeon.Monsters[0], nil
	}

	draw := e.random.Float64() * total
	cumulative := 0.0
	for _, m := range dungeon.Monsters {
		cumulative += m.SpawnChance
		if cumulative > draw {
			return m, nil
		}
	}
	return dungeon.Monsters[0], nil
}

// RollDrops evaluates every drop entry independently and returns the IDs
// granted, in table order. Unknown items are skipped.
func (e *engine) RollDrops(monster superpet.Monster) []string {
	var drops []string
	for _, d := range monster.Drops {
		if !rng.Percent(e.random, d.Chance) {
			continue
		}
		if _, ok := e.catalog.Item(d.ItemID); !ok {
			continue
		}
		drops = append(drops, d.ItemID)
	}
	return drops
}

// KillRewards computes experience and gold for defeating monster.
func (e *engine) KillRewards(monster superpet.Monster) *KillRewardsOutput {
	bonus := 0
	if monster.IsBoss {
		bonus = 50
	}
	baseGold := float64(monster.Level*5 + bonus)
	return &KillRewardsOutput{
		Exp:  monster.Level*10 + bonus,
		Gold: int(math.Floor(baseGold * rng.Uniform(e.random, 0.8, 1.2))),
	}
}

// StartBattle selects a monster and seeds both HP pools. A defeated
// character cannot enter.
func (e *engine) StartBattle(input *StartBattleInput) (*Battle, error) {
	if input == nil || input.Character == nil {
		return nil, errors.NoActiveCharacter()
	}
	character := input.Character
	if character.Defeated() {
		return nil, errors.CannotProceed(errors.ReasonLowHP, "not enough HP to battle, heal first")
	}

	monster, err := e.SelectMonster(input.Dungeon)
	if err != nil {
		return nil, err
	}

	maxHP := e.TotalStats(character).HP
	b := &Battle{
		CharacterID: character.ID,
		DungeonID:   input.Dungeon.ID,
		Monster:     monster,
		State:       BattleFighting,
		PlayerHP:    min(character.CurrentHP, maxHP),
		PlayerMaxHP: maxHP,
		MonsterHP:   monster.HP,
	}
	var entries []LogEntry
	boss := ""
	if monster.IsBoss {
		boss = " (boss)"
	}
	b.append(&entries, LogAppear, 0, "", "%s%s appeared! Lv.%d HP %d ATK %d",
		monster.Name, boss, monster.Level, monster.HP, monster.Attack)
	return b, nil
}

// ResolveTick runs one exchange of blows. On victory the character is
// credited in place with experience, level ups, gold and the battle's HP;
// drop IDs are reported in the victory for the caller to add to the
// inventory. On defeat the character's current HP is set to 0.
//
// Draw order per tick: damage variance, then combo roll (and combo variance
// on success) while the monster stands; on a kill one draw per drop entry
// and then gold variance; otherwise the dodge roll and, if not dodged, the
// counter variance.
func (e *engine) ResolveTick(b *Battle, character *superpet.Character) (*TickOutput, error) {
	if b == nil || b.State != BattleFighting {
		return nil, errors.CannotProceed(errors.ReasonBattleNotActive, "battle is not in progress")
	}
	if character == nil {
		return nil, errors.NoActiveCharacter()
	}

	b.Ticks++
	out := &TickOutput{}
	totals := e.TotalStats(character)
	b.PlayerMaxHP = totals.HP
	b.PlayerHP = min(b.PlayerHP, b.PlayerMaxHP)

	hit := int(math.Floor(float64(totals.Attack) * rng.Uniform(e.random, 0.8, 1.2)))
	b.MonsterHP = max(b.MonsterHP-hit, 0)
	b.append(&out.Entries, LogPlayerAttack, hit, "", "%s attacks! %d damage!", character.Name, hit)

	if b.MonsterHP > 0 && rng.Chance(e.random, DoubleAttackChance(totals.Speed)) {
		combo := int(math.Floor(float64(totals.Attack) * rng.Uniform(e.random, 0.6, 0.9)))
		b.MonsterHP = max(b.MonsterHP-combo, 0)
		b.append(&out.Entries, LogComboAttack, combo, "", "Quick follow-up! %d extra damage!", combo)
	}

	if b.MonsterHP <= 0 {
		out.Victory = e.win(b, character, &out.Entries)
		return out, nil
	}

	if rng.Chance(e.random, DodgeChance(totals.Speed)) {
		b.append(&out.Entries, LogDodge, 0, "", "%s dodged swiftly!", character.Name)
		return out, nil
	}

	variance := rng.Uniform(e.random, 0.8, 1.2)
	counter := max(int(math.Floor(float64(b.Monster.Attack-totals.Defense)*variance)), 5)
	b.PlayerHP = max(b.PlayerHP-counter, 0)
	b.append(&out.Entries, LogMonsterAttack, counter, "", "%s strikes back! %d damage!", b.Monster.Name, counter)

	if b.PlayerHP <= 0 {
		b.State = BattleLost
		character.CurrentHP = 0
		out.Defeated = true
		b.append(&out.Entries, LogDefeat, 0, "", "%s collapsed...", character.Name)
	}
	return out, nil
}

func (e *engine) win(b *Battle, character *superpet.Character, entries *[]LogEntry) *Victory {
	b.State = BattleWon
	b.append(entries, LogVictory, 0, "", "%s was defeated!", b.Monster.Name)

	drops := e.RollDrops(b.Monster)
	for _, id := range drops {
		item, _ := e.catalog.Item(id)
		b.append(entries, LogDrop, 1, id, "%s %s obtained!", item.Emoji, item.Name)
	}
	if len(drops) == 0 {
		b.append(entries, LogNoDrop, 0, "", "Nothing dropped...")
	}

	rewards := e.KillRewards(b.Monster)
	gained := e.GainExp(character, rewards.Exp)
	character.CurrentHP = min(b.PlayerHP, e.TotalStats(character).HP)
	character.Gold += rewards.Gold

	b.append(entries, LogReward, rewards.Gold, "", "%dG earned!", rewards.Gold)
	b.append(entries, LogReward, rewards.Exp, "", "EXP +%d earned!", rewards.Exp)
	if gained.LeveledUp {
		b.append(entries, LogLevelUp, gained.LevelsGained, "", "Level up! Lv.%d -> Lv.%d", gained.PrevLevel, character.Level)
	}

	v := &Victory{
		Exp:          rewards.Exp,
		Gold:         rewards.Gold,
		Drops:        drops,
		LeveledUp:    gained.LeveledUp,
		LevelsGained: gained.LevelsGained,
		NewLevel:     character.Level,
	}
	b.Victory = v
	return v
}
