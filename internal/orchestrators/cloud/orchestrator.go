// Package cloud implements the cloud save and account service
package cloud

import (
	"context"
	"log/slog"

	"github.com/superpet/superpet-api/internal/clients/cloudsync"
	"github.com/superpet/superpet-api/internal/errors"
	"github.com/superpet/superpet-api/internal/services/cloud"
)

// Syncer moves a player's save between local storage and the cloud.
// cloudsync.Scheduler satisfies it.
type Syncer interface {
	SaveNow(ctx context.Context, playerID string) bool
	Restore(ctx context.Context, playerID string) bool
}

// Config holds the dependencies for the cloud orchestrator
type Config struct {
	Client cloudsync.Client
	Syncer Syncer
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}
	vb := errors.NewValidationBuilder()

	if c.Client == nil {
		vb.RequiredField("Client")
	}
	if c.Syncer == nil {
		vb.RequiredField("Syncer")
	}

	return vb.Build()
}

// Orchestrator implements the cloud service
type Orchestrator struct {
	client cloudsync.Client
	syncer Syncer
}

// New creates a new cloud orchestrator
func New(cfg *Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Orchestrator{
		client: cfg.Client,
		syncer: cfg.Syncer,
	}, nil
}

var _ cloud.Service = (*Orchestrator)(nil)

func requirePlayer(playerID string) error {
	if playerID == "" {
		return errors.InvalidArgument("player ID is required")
	}
	return nil
}

// SyncSave uploads the player's save now
func (o *Orchestrator) SyncSave(ctx context.Context, input *cloud.SyncSaveInput) (*cloud.SyncSaveOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := requirePlayer(input.PlayerID); err != nil {
		return nil, err
	}

	saved := o.syncer.SaveNow(ctx, input.PlayerID)
	slog.Info("cloud save requested", "player_id", input.PlayerID, "saved", saved)

	return &cloud.SyncSaveOutput{Saved: saved}, nil
}

// RestoreSave overwrites local save keys with the cloud copy
func (o *Orchestrator) RestoreSave(
	ctx context.Context,
	input *cloud.RestoreSaveInput,
) (*cloud.RestoreSaveOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := requirePlayer(input.PlayerID); err != nil {
		return nil, err
	}

	restored := o.syncer.Restore(ctx, input.PlayerID)
	slog.Info("cloud restore requested", "player_id", input.PlayerID, "restored", restored)

	return &cloud.RestoreSaveOutput{Restored: restored}, nil
}

// GetGemBalance reads the player's gem wallet
func (o *Orchestrator) GetGemBalance(
	ctx context.Context,
	input *cloud.GetGemBalanceInput,
) (*cloud.GetGemBalanceOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := requirePlayer(input.PlayerID); err != nil {
		return nil, err
	}

	balance, err := o.client.GemBalance(ctx, input.PlayerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read gem balance")
	}
	return &cloud.GetGemBalanceOutput{Balance: balance}, nil
}

// GetRanking returns the published leaderboard
func (o *Orchestrator) GetRanking(ctx context.Context, _ *cloud.GetRankingInput) (*cloud.GetRankingOutput, error) {
	out, err := o.client.Ranking(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load ranking")
	}
	return &cloud.GetRankingOutput{Entries: out.Entries, UpdatedAt: out.UpdatedAt}, nil
}
