package battle

import (
	"context"
	"log/slog"
	"time"

	"github.com/superpet/superpet-api/internal/engine"
	"github.com/superpet/superpet-api/internal/errors"
	"github.com/superpet/superpet-api/internal/services/battle"
)

// DefaultTickInterval is how often an automatic battle resolves a tick.
const DefaultTickInterval = time.Second

// RunnerConfig configures automatic battle ticking
type RunnerConfig struct {
	Service  battle.Service
	Interval time.Duration
	// OnTick receives every resolved tick (optional)
	OnTick func(playerID string, out *battle.TickOutput)
}

// Validate ensures all required dependencies are provided
func (c *RunnerConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}
	vb := errors.NewValidationBuilder()
	if c.Service == nil {
		vb.RequiredField("Service")
	}
	if c.Interval < 0 {
		vb.InvalidField("Interval", "must not be negative")
	}
	return vb.Build()
}

// Runner ticks a player's battle on a fixed interval until it ends.
type Runner struct {
	service  battle.Service
	interval time.Duration
	onTick   func(string, *battle.TickOutput)
}

// NewRunner creates a new Runner
func NewRunner(cfg *RunnerConfig) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	r := &Runner{
		service:  cfg.Service,
		interval: cfg.Interval,
		onTick:   cfg.OnTick,
	}
	if r.interval == 0 {
		r.interval = DefaultTickInterval
	}
	return r, nil
}

// Run resolves one tick per interval and returns the battle once it leaves
// the fighting state. It stops early when ctx is done or a tick fails.
func (r *Runner) Run(ctx context.Context, playerID string) (*engine.Battle, error) {
	current, err := r.service.GetBattle(ctx, &battle.GetBattleInput{PlayerID: playerID})
	if err != nil {
		return nil, err
	}
	b := current.Battle
	if b.State != engine.BattleFighting {
		return b, nil
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return b, ctx.Err()
		case <-ticker.C:
			out, err := r.service.Tick(ctx, &battle.TickInput{PlayerID: playerID})
			if err != nil {
				// exiting the battle from elsewhere ends the run quietly
				if errors.HasReason(err, errors.ReasonBattleNotActive) {
					slog.Debug("battle ended outside the runner", "player_id", playerID)
					return b, nil
				}
				return b, err
			}
			b = out.Battle
			if r.onTick != nil {
				r.onTick(playerID, out)
			}
			if b.State != engine.BattleFighting {
				return b, nil
			}
		}
	}
}
