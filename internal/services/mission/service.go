// Package mission defines the interface for daily missions and timed rewards
package mission

//go:generate mockgen -destination=mock/mock_service.go -package=missionmock github.com/superpet/superpet-api/internal/services/mission Service

import (
	"context"
	"time"

	"github.com/superpet/superpet-api/internal/entities/superpet"
)

// Service defines the interface for mission operations
type Service interface {
	ListMissions(ctx context.Context, input *ListMissionsInput) (*ListMissionsOutput, error)
	ClaimMission(ctx context.Context, input *ClaimMissionInput) (*ClaimMissionOutput, error)
	RecordKill(ctx context.Context, input *RecordKillInput) (*RecordKillOutput, error)
	CollectFeedReward(ctx context.Context, input *CollectFeedRewardInput) (*CollectFeedRewardOutput, error)
}

// Progress is one mission's standing for today.
type Progress struct {
	Mission  superpet.MissionDef
	Current  int
	Complete bool
	Claimed  bool
}

// ListMissionsInput defines the request for listing missions
type ListMissionsInput struct {
	PlayerID string
}

// ListMissionsOutput defines the response for listing missions
type ListMissionsOutput struct {
	Date     string
	Missions []Progress
}

// ClaimMissionInput defines the request for claiming a reward
type ClaimMissionInput struct {
	PlayerID   string
	MissionKey string
}

// ClaimMissionOutput defines the response for claiming a reward
type ClaimMissionOutput struct {
	Mission   superpet.MissionDef
	Character *superpet.Character
}

// RecordKillInput defines the request for counting a defeated monster
type RecordKillInput struct {
	PlayerID string
	Boss     bool
}

// RecordKillOutput defines the response for counting a defeated monster
type RecordKillOutput struct {
	Counter superpet.MissionCounter
	Value   int
}

// CollectFeedRewardInput defines the request for the timed feed reward
type CollectFeedRewardInput struct {
	PlayerID string
}

// CollectFeedRewardOutput defines the response for the timed feed reward.
// Collected is false when the timer was only armed or has not elapsed.
type CollectFeedRewardOutput struct {
	Collected bool
	ItemID    string
	Quantity  int
	NextAt    time.Time
}
