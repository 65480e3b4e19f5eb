package v1alpha1

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/superpet/superpet-api/internal/engine"
	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/services/battle"
)

type battleResponse struct {
	Battle *engine.Battle `json:"battle"`
}

// ListDungeons returns the dungeon catalog
func (h *Handler) ListDungeons(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return serveCatalog(func() (interface{}, error) {
		out, err := h.battleService.ListDungeons(ctx, &battle.ListDungeonsInput{})
		if err != nil {
			return nil, err
		}
		return struct {
			Dungeons []superpet.Dungeon `json:"dungeons"`
		}{out.Dungeons}, nil
	})
}

// StartBattle enters a dungeon with the active character
func (h *Handler) StartBattle(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, req *struct {
		DungeonID int `json:"dungeonId"`
	}) (interface{}, error) {
		out, err := h.battleService.StartBattle(ctx, &battle.StartBattleInput{
			PlayerID:  playerID,
			DungeonID: req.DungeonID,
		})
		if err != nil {
			return nil, err
		}
		return battleResponse{Battle: out.Battle}, nil
	})
}

// Tick resolves one exchange of the current battle
func (h *Handler) Tick(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, _ *empty) (interface{}, error) {
		out, err := h.battleService.Tick(ctx, &battle.TickInput{PlayerID: playerID})
		if err != nil {
			return nil, err
		}
		return struct {
			Battle  *engine.Battle    `json:"battle"`
			Entries []engine.LogEntry `json:"entries"`
		}{out.Battle, out.Entries}, nil
	})
}

// GetBattle returns the current battle
func (h *Handler) GetBattle(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, _ *empty) (interface{}, error) {
		out, err := h.battleService.GetBattle(ctx, &battle.GetBattleInput{PlayerID: playerID})
		if err != nil {
			return nil, err
		}
		return battleResponse{Battle: out.Battle}, nil
	})
}

// ExitBattle leaves the current battle
func (h *Handler) ExitBattle(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, _ *empty) (interface{}, error) {
		out, err := h.battleService.ExitBattle(ctx, &battle.ExitBattleInput{PlayerID: playerID})
		if err != nil {
			return nil, err
		}
		return struct {
			PersistedHP int `json:"persistedHp"`
		}{out.PersistedHP}, nil
	})
}
