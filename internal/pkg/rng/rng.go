// Package rng isolates every random decision the game makes behind Source so
// battles, drops and enhancement can be replayed in tests.
package rng

import (
	"math/rand/v2"
	"sync"

	"github.com/KirkDiggler/rpg-toolkit/dice"
)

//go:generate mockgen -destination=mock/mock.go -package=rngmock github.com/superpet/superpet-api/internal/pkg/rng Source

// Source yields uniform floats in [0, 1).
type Source interface {
	Float64() float64
}

// diceResolution is the die size used to derive a float from one roll.
const diceResolution = 1 << 24

// DiceSource draws from an rpg-toolkit dice roller.
type DiceSource struct {
	roller   dice.Roller
	fallback *rand.Rand
	mu       sync.Mutex
}

// NewDice wraps roller. A nil roller uses dice.DefaultRoller.
func NewDice(roller dice.Roller) *DiceSource {
	if roller == nil {
		roller = dice.DefaultRoller
	}
	return &DiceSource{
		roller:   roller,
		fallback: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Float64 rolls a d(2^24) and scales it into [0, 1).
func (s *DiceSource) Float64() float64 {
	n, err := s.roller.Roll(diceResolution)
	if err != nil || n < 1 || n > diceResolution {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.fallback.Float64()
	}
	return float64(n-1) / diceResolution
}

// Seeded is a deterministic PCG source, safe for concurrent use.
type Seeded struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeeded returns a source whose sequence is fixed by seed.
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Float64 returns the next value in the seeded sequence.
func (s *Seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// Sequence replays fixed values in order, cycling when exhausted. Values are
// clamped into [0, 1).
type Sequence struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewSequence returns a source replaying values. An empty list always yields 0.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Float64 returns the next scripted value.
func (s *Sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	switch {
	case v < 0:
		return 0
	case v >= 1:
		return 1 - 1e-9
	default:
		return v
	}
}

// Draws reports how many values have been consumed.
func (s *Sequence) Draws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Uniform maps one draw onto [lo, hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// Chance reports whether one draw falls under probability p.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}

// Percent reports whether one draw scaled to [0, 100) falls under pct.
func Percent(src Source, pct float64) bool {
	return src.Float64()*100 < pct
}
