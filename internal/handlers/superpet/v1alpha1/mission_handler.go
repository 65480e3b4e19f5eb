package v1alpha1

import (
	"context"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/services/mission"
)

type progressResponse struct {
	Mission  superpet.MissionDef `json:"mission"`
	Current  int                 `json:"current"`
	Complete bool                `json:"complete"`
	Claimed  bool                `json:"claimed"`
}

// ListMissions returns today's missions with progress
func (h *Handler) ListMissions(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, _ *empty) (interface{}, error) {
		out, err := h.missionService.ListMissions(ctx, &mission.ListMissionsInput{PlayerID: playerID})
		if err != nil {
			return nil, err
		}
		missions := make([]progressResponse, 0, len(out.Missions))
		for _, p := range out.Missions {
			missions = append(missions, progressResponse{
				Mission:  p.Mission,
				Current:  p.Current,
				Complete: p.Complete,
				Claimed:  p.Claimed,
			})
		}
		return struct {
			Date     string             `json:"date"`
			Missions []progressResponse `json:"missions"`
		}{out.Date, missions}, nil
	})
}

// ClaimMission pays out a completed mission
func (h *Handler) ClaimMission(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, req *struct {
		MissionKey string `json:"missionKey"`
	}) (interface{}, error) {
		out, err := h.missionService.ClaimMission(ctx, &mission.ClaimMissionInput{
			PlayerID:   playerID,
			MissionKey: req.MissionKey,
		})
		if err != nil {
			return nil, err
		}
		return struct {
			Mission   superpet.MissionDef `json:"mission"`
			Character *superpet.Character `json:"character"`
		}{out.Mission, out.Character}, nil
	})
}

// CollectFeedReward collects the timed feed reward when it is due
func (h *Handler) CollectFeedReward(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, in, func(playerID string, _ *empty) (interface{}, error) {
		out, err := h.missionService.CollectFeedReward(ctx, &mission.CollectFeedRewardInput{PlayerID: playerID})
		if err != nil {
			return nil, err
		}
		return struct {
			Collected bool      `json:"collected"`
			ItemID    string    `json:"itemId,omitempty"`
			Quantity  int       `json:"quantity,omitempty"`
			NextAt    time.Time `json:"nextAt"`
		}{out.Collected, out.ItemID, out.Quantity, out.NextAt}, nil
	})
}
