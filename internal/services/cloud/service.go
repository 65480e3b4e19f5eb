// Package cloud defines the interface for cloud save and account operations
package cloud

//go:generate mockgen -destination=mock/mock_service.go -package=cloudmock github.com/superpet/superpet-api/internal/services/cloud Service

import (
	"context"
	"time"

	"github.com/superpet/superpet-api/internal/clients/cloudsync"
)

// Service defines the interface for cloud operations
type Service interface {
	// SyncSave uploads the player's save immediately
	SyncSave(ctx context.Context, input *SyncSaveInput) (*SyncSaveOutput, error)

	// RestoreSave replaces local save keys with the cloud copy
	RestoreSave(ctx context.Context, input *RestoreSaveInput) (*RestoreSaveOutput, error)

	GetGemBalance(ctx context.Context, input *GetGemBalanceInput) (*GetGemBalanceOutput, error)
	GetRanking(ctx context.Context, input *GetRankingInput) (*GetRankingOutput, error)
}

// SyncSaveInput defines the request for an immediate upload
type SyncSaveInput struct {
	PlayerID string
}

// SyncSaveOutput defines the response for an immediate upload
type SyncSaveOutput struct {
	Saved bool
}

// RestoreSaveInput defines the request for downloading a save
type RestoreSaveInput struct {
	PlayerID string
}

// RestoreSaveOutput defines the response for downloading a save
type RestoreSaveOutput struct {
	Restored bool
}

// GetGemBalanceInput defines the request for reading the gem wallet
type GetGemBalanceInput struct {
	PlayerID string
}

// GetGemBalanceOutput defines the response for reading the gem wallet
type GetGemBalanceOutput struct {
	Balance int
}

// GetRankingInput defines the request for the leaderboard
type GetRankingInput struct{}

// GetRankingOutput defines the response for the leaderboard
type GetRankingOutput struct {
	Entries   []cloudsync.RankingEntry
	UpdatedAt *time.Time
}
