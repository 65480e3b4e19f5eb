package v1alpha1

import (
	"context"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/superpet/superpet-api/internal/clients/cloudsync"
	"github.com/superpet/superpet-api/internal/errors"
	"github.com/superpet/superpet-api/internal/services/cloud"
)

func (h *Handler) requireCloud() error {
	if h.cloudService == nil {
		return errors.Unavailable("cloud sync is not configured")
	}
	return nil
}

// SyncSave uploads the player's save now
func (h *Handler) SyncSave(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, _ *empty) (interface{}, error) {
		if err := h.requireCloud(); err != nil {
			return nil, err
		}
		out, err := h.cloudService.SyncSave(ctx, &cloud.SyncSaveInput{PlayerID: playerID})
		if err != nil {
			return nil, err
		}
		return struct {
			Saved bool `json:"saved"`
		}{out.Saved}, nil
	})
}

// RestoreSave replaces the local save with the cloud copy
func (h *Handler) RestoreSave(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, _ *empty) (interface{}, error) {
		if err := h.requireCloud(); err != nil {
			return nil, err
		}
		out, err := h.cloudService.RestoreSave(ctx, &cloud.RestoreSaveInput{PlayerID: playerID})
		if err != nil {
			return nil, err
		}
		return struct {
			Restored bool `json:"restored"`
		}{out.Restored}, nil
	})
}

// GetGemBalance reads the player's gem wallet
func (h *Handler) GetGemBalance(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, _ *empty) (interface{}, error) {
		if err := h.requireCloud(); err != nil {
			return nil, err
		}
		out, err := h.cloudService.GetGemBalance(ctx, &cloud.GetGemBalanceInput{PlayerID: playerID})
		if err != nil {
			return nil, err
		}
		return struct {
			Balance int `json:"balance"`
		}{out.Balance}, nil
	})
}

// GetRanking returns the leaderboard
func (h *Handler) GetRanking(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return serveCatalog(func() (interface{}, error) {
		if err := h.requireCloud(); err != nil {
			return nil, err
		}
		out, err := h.cloudService.GetRanking(ctx, &cloud.GetRankingInput{})
		if err != nil {
			return nil, err
		}
		return struct {
			Entries   []cloudsync.RankingEntry `json:"entries"`
			UpdatedAt *time.Time               `json:"updatedAt,omitempty"`
		}{out.Entries, out.UpdatedAt}, nil
	})
}
