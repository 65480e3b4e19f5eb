// Package battle defines the interface for dungeon battles
package battle

//go:generate mockgen -destination=mock/mock_service.go -package=battlemock github.com/superpet/superpet-api/internal/services/battle Service

import (
	"context"

	"github.com/superpet/superpet-api/internal/engine"
	"github.com/superpet/superpet-api/internal/entities/superpet"
)

// Service defines the interface for battle operations
type Service interface {
	ListDungeons(ctx context.Context, input *ListDungeonsInput) (*ListDungeonsOutput, error)
	StartBattle(ctx context.Context, input *StartBattleInput) (*StartBattleOutput, error)
	Tick(ctx context.Context, input *TickInput) (*TickOutput, error)
	GetBattle(ctx context.Context, input *GetBattleInput) (*GetBattleOutput, error)
	ExitBattle(ctx context.Context, input *ExitBattleInput) (*ExitBattleOutput, error)
}

// ListDungeonsInput defines the request for listing dungeons
type ListDungeonsInput struct{}

// ListDungeonsOutput defines the response for listing dungeons
type ListDungeonsOutput struct {
	Dungeons []superpet.Dungeon
}

// StartBattleInput defines the request for entering a dungeon. Starting
// again after a finished battle fights a fresh monster.
type StartBattleInput struct {
	PlayerID  string
	DungeonID int
}

// StartBattleOutput defines the response for entering a dungeon
type StartBattleOutput struct {
	Battle *engine.Battle
}

// TickInput defines the request for resolving one exchange
type TickInput struct {
	PlayerID string
}

// TickOutput defines the response for resolving one exchange
type TickOutput struct {
	Battle  *engine.Battle
	Entries []engine.LogEntry
}

// GetBattleInput defines the request for reading the current battle
type GetBattleInput struct {
	PlayerID string
}

// GetBattleOutput defines the response for reading the current battle
type GetBattleOutput struct {
	Battle *engine.Battle
}

// ExitBattleInput defines the request for leaving a battle
type ExitBattleInput struct {
	PlayerID string
}

// ExitBattleOutput defines the response for leaving a battle
type ExitBattleOutput struct {
	// PersistedHP is the HP written back to the character
	PersistedHP int
}
