// Package rpgtoolkit adapts game records to rpg-toolkit so battle outcomes can
// travel over its event bus.
package rpgtoolkit

import (
	"github.com/KirkDiggler/rpg-toolkit/core"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/superpet/superpet-api/internal/entities/superpet"
)

// Entity types reported by the wrappers.
const (
	EntityTypeCharacter = "character"
	EntityTypeMonster   = "monster"
	EntityTypeBoss      = "boss"
)

// EventMonsterDefeated is published once per won battle. Source is a
// *CharacterEntity and Target a *MonsterEntity.
const EventMonsterDefeated = "monster.defeated"

// CharacterEntity wraps superpet.Character to implement core.Entity interface
type CharacterEntity struct {
	*superpet.Character
	PlayerID string
}

// GetID returns the character's ID
func (c *CharacterEntity) GetID() string {
	return c.ID
}

// GetType returns the entity type for rpg-toolkit
func (c *CharacterEntity) GetType() string {
	return EntityTypeCharacter
}

// MonsterEntity wraps the monster fought in one battle.
type MonsterEntity struct {
	superpet.Monster
	BattleID string
}

// GetID returns the battle the monster belongs to; monsters have no identity
// outside of one fight.
func (m *MonsterEntity) GetID() string {
	return m.BattleID
}

// GetType returns EntityTypeBoss for bosses and EntityTypeMonster otherwise
func (m *MonsterEntity) GetType() string {
	if m.IsBoss {
		return EntityTypeBoss
	}
	return EntityTypeMonster
}

// WrapCharacter converts a superpet.Character owned by playerID to a CharacterEntity
func WrapCharacter(playerID string, character *superpet.Character) *CharacterEntity {
	return &CharacterEntity{Character: character, PlayerID: playerID}
}

// WrapMonster converts the monster of battleID to a MonsterEntity
func WrapMonster(battleID string, monster superpet.Monster) *MonsterEntity {
	return &MonsterEntity{Monster: monster, BattleID: battleID}
}

// NewMonsterDefeatedEvent builds the event published when a battle is won.
func NewMonsterDefeatedEvent(
	playerID string,
	character *superpet.Character,
	battleID string,
	monster superpet.Monster,
) events.Event {
	return events.NewGameEvent(EventMonsterDefeated, WrapCharacter(playerID, character), WrapMonster(battleID, monster))
}

// DefeatedMonster unpacks a monster.defeated event.
func DefeatedMonster(event events.Event) (*CharacterEntity, *MonsterEntity, bool) {
	if event == nil || event.Type() != EventMonsterDefeated {
		return nil, nil, false
	}
	character, ok := event.Source().(*CharacterEntity)
	if !ok {
		return nil, nil, false
	}
	monster, ok := event.Target().(*MonsterEntity)
	if !ok {
		return nil, nil, false
	}
	return character, monster, true
}

var (
	_ core.Entity = (*CharacterEntity)(nil)
	_ core.Entity = (*MonsterEntity)(nil)
)
