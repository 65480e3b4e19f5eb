package engine

import (
	"unicode/utf16"

	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/errors"
)

// GainExp adds exp to character in place and applies every level up it
// earns. Current HP is left untouched.
func (e *engine) GainExp(character *superpet.Character, exp int) *GainExpOutput {
	out := &GainExpOutput{Character: character, PrevLevel: character.Level}
	if exp > 0 {
		character.Exp += exp
	}

	growth := e.catalog.Pets().GrowthFor(character.ClassName)
	for {
		needed := ExpForNextLevel(character.Level)
		if needed <= 0 || character.Exp < needed {
			break
		}
		character.Exp -= needed
		character.Level++
		character.HP += growth.HP
		character.Attack += growth.Attack
		character.Defense += growth.Defense
		character.Speed += growth.Speed
		out.LevelsGained++
	}
	out.LeveledUp = out.LevelsGained > 0
	return out
}

// nameHash sums the UTF-16 code units of name.
func nameHash(name string) int {
	sum := 0
	for _, unit := range utf16.Encode([]rune(name)) {
		sum += int(unit)
	}
	return sum
}

// GenerateCharacter derives a level 1 pet from its name, type, traits and
// class. Only the element is random. ID and creation time are left to the
// caller.
func (e *engine) GenerateCharacter(input *GenerateCharacterInput) (*superpet.Character, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("name", input.Name, vb)
	errors.ValidateMaxLength("name", input.Name, 20, vb)
	pets := e.catalog.Pets()
	base, ok := pets.BaseStats[input.PetType]
	if !ok {
		vb.InvalidField("pet_type", "unknown pet type")
	}
	classes := make([]string, len(superpet.Classes))
	for i, c := range superpet.Classes {
		classes[i] = string(c)
	}
	errors.ValidateEnum("class_name", string(input.ClassName), classes, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	stats := base
	for _, trait := range input.Traits {
		stats = stats.Add(pets.Traits[trait])
	}

	hash := nameHash(input.Name)
	stats = stats.Add(superpet.Stats{
		HP:      hash % 10,
		Attack:  hash % 5,
		Defense: hash % 5,
		Speed:   hash % 5,
	})

	idx := int(e.random.Float64() * float64(len(superpet.Elements)))
	if idx >= len(superpet.Elements) {
		idx = len(superpet.Elements) - 1
	}

	return &superpet.Character{
		Name:      input.Name,
		PetType:   input.PetType,
		Traits:    append([]string(nil), input.Traits...),
		ClassName: input.ClassName,
		Element:   superpet.Elements[idx],
		Image:     input.Image,
		HP:        stats.HP,
		Attack:    stats.Attack,
		Defense:   stats.Defense,
		Speed:     stats.Speed,
		CurrentHP: stats.HP,
		Level:     1,
	}, nil
}
