// Package mission implements daily missions and the timed feed reward
package mission

import (
	"context"
	"log/slog"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/superpet/superpet-api/internal/catalog"
	"github.com/superpet/superpet-api/internal/clients/cloudsync"
	"github.com/superpet/superpet-api/internal/engine/rpgtoolkit"
	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/errors"
	"github.com/superpet/superpet-api/internal/pkg/clock"
	"github.com/superpet/superpet-api/internal/pkg/idgen"
	characterrepo "github.com/superpet/superpet-api/internal/repositories/character"
	inventoryrepo "github.com/superpet/superpet-api/internal/repositories/inventory"
	missionrepo "github.com/superpet/superpet-api/internal/repositories/mission"
	"github.com/superpet/superpet-api/internal/services/mission"
)

// Config holds the dependencies for the mission orchestrator
type Config struct {
	CharacterRepo characterrepo.Repository
	InventoryRepo inventoryrepo.Repository
	MissionRepo   missionrepo.Repository
	Catalog       *catalog.Catalog
	Clock         clock.Clock
	InstanceIDs   *idgen.InstanceIDs
	// EventBus delivers monster.defeated events to count kills (optional)
	EventBus events.EventBus
	// Saver schedules cloud saves (optional)
	Saver cloudsync.Saver
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}
	vb := errors.NewValidationBuilder()

	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	if c.InventoryRepo == nil {
		vb.RequiredField("InventoryRepo")
	}
	if c.MissionRepo == nil {
		vb.RequiredField("MissionRepo")
	}
	if c.Catalog == nil {
		vb.RequiredField("Catalog")
	}

	return vb.Build()
}

// Orchestrator implements the mission.Service interface
type Orchestrator struct {
	characterRepo characterrepo.Repository
	inventoryRepo inventoryrepo.Repository
	missionRepo   missionrepo.Repository
	catalog       *catalog.Catalog
	clock         clock.Clock
	instanceIDs   *idgen.InstanceIDs
	eventBus      events.EventBus
	saver         cloudsync.Saver

	subscription string
}

// New creates a new mission orchestrator and, when an event bus is
// configured, starts counting kills from it
func New(cfg *Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &Orchestrator{
		characterRepo: cfg.CharacterRepo,
		inventoryRepo: cfg.InventoryRepo,
		missionRepo:   cfg.MissionRepo,
		catalog:       cfg.Catalog,
		clock:         cfg.Clock,
		instanceIDs:   cfg.InstanceIDs,
		eventBus:      cfg.EventBus,
		saver:         cfg.Saver,
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	if o.instanceIDs == nil {
		o.instanceIDs = idgen.NewInstanceIDs(nil)
	}
	if o.saver == nil {
		o.saver = cloudsync.Noop{}
	}
	if o.eventBus != nil {
		o.subscription = o.eventBus.SubscribeFunc(rpgtoolkit.EventMonsterDefeated, 0, o.onMonsterDefeated)
	}
	return o, nil
}

// Ensure Orchestrator implements the Service interface
var _ mission.Service = (*Orchestrator)(nil)

// Close stops listening to the event bus.
func (o *Orchestrator) Close() error {
	if o.eventBus == nil || o.subscription == "" {
		return nil
	}
	err := o.eventBus.Unsubscribe(o.subscription)
	o.subscription = ""
	return err
}

func (o *Orchestrator) onMonsterDefeated(ctx context.Context, event events.Event) error {
	source, target, ok := rpgtoolkit.DefeatedMonster(event)
	if !ok {
		return nil
	}
	_, err := o.RecordKill(ctx, &mission.RecordKillInput{PlayerID: source.PlayerID, Boss: target.IsBoss})
	return err
}

func validatePlayer(playerID string) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("player_id", playerID, vb)
	return vb.Build()
}

// today loads the player's mission state, starting a new day first when the
// KST date has moved on.
func (o *Orchestrator) today(ctx context.Context, playerID string) (*missionrepo.State, error) {
	missions := o.catalog.Missions()
	out, err := o.missionRepo.GetState(ctx, missionrepo.GetStateInput{PlayerID: playerID, Missions: missions})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load missions")
	}

	date := clock.DateKey(o.clock.Now())
	if out.State.Date == date {
		return out.State, nil
	}

	_, err = o.missionRepo.ResetDay(ctx, missionrepo.ResetDayInput{PlayerID: playerID, Date: date, Missions: missions})
	if err != nil {
		return nil, errors.Wrap(err, "failed to reset missions")
	}
	slog.Debug("mission day reset", "player_id", playerID, "date", date, "previous", out.State.Date)

	return &missionrepo.State{
		Date:     date,
		Counters: map[superpet.MissionCounter]int{},
		Claimed:  map[string]bool{},
	}, nil
}

func (o *Orchestrator) active(ctx context.Context, playerID string) (*superpet.Character, error) {
	out, err := o.characterRepo.GetActive(ctx, characterrepo.GetActiveInput{PlayerID: playerID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load active character")
	}
	return out.Character, nil
}

// progress reports how far def is. Attendance counts as done for anyone
// with a character.
func progress(def superpet.MissionDef, state *missionrepo.State, hasCharacter bool) mission.Progress {
	current := state.Counters[def.Counter]
	if def.Counter == superpet.CounterAttendance && hasCharacter {
		current = def.Target
	}
	return mission.Progress{
		Mission:  def,
		Current:  min(current, def.Target),
		Complete: current >= def.Target,
		Claimed:  state.Claimed[def.Key],
	}
}

// ListMissions returns today's missions and their progress
func (o *Orchestrator) ListMissions(
	ctx context.Context,
	input *mission.ListMissionsInput,
) (*mission.ListMissionsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validatePlayer(input.PlayerID); err != nil {
		return nil, err
	}

	state, err := o.today(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	c, err := o.active(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}

	missions := o.catalog.Missions()
	out := &mission.ListMissionsOutput{Date: state.Date, Missions: make([]mission.Progress, 0, len(missions))}
	for _, def := range missions {
		out.Missions = append(out.Missions, progress(def, state, c != nil))
	}
	return out, nil
}

// ClaimMission pays out a completed mission once per day
func (o *Orchestrator) ClaimMission(
	ctx context.Context,
	input *mission.ClaimMissionInput,
) (*mission.ClaimMissionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("player_id", input.PlayerID, vb)
	errors.ValidateRequired("mission_key", input.MissionKey, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	def, ok := o.catalog.Mission(input.MissionKey)
	if !ok {
		return nil, errors.NotFoundf("mission %s not found", input.MissionKey)
	}

	state, err := o.today(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	c, err := o.active(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.NoActiveCharacter()
	}

	p := progress(def, state, true)
	if p.Claimed {
		return nil, errors.CannotProceedf(errors.ReasonMissionClaimed, "%s was already claimed today", def.Name)
	}
	if !p.Complete {
		return nil, errors.CannotProceedf(errors.ReasonMissionIncomplete,
			"%s is at %d/%d", def.Name, p.Current, def.Target).
			WithMeta("current", p.Current).
			WithMeta("target", def.Target)
	}

	switch def.RewardKind {
	case superpet.RewardItem:
		if err := o.grantItem(ctx, input.PlayerID, def.RewardItemID, def.RewardAmount); err != nil {
			return nil, err
		}
	case superpet.RewardGold:
		c.Gold += def.RewardAmount
		if _, err := o.characterRepo.Update(ctx, characterrepo.UpdateInput{PlayerID: input.PlayerID, Character: c}); err != nil {
			return nil, errors.Wrap(err, "failed to save character")
		}
	default:
		return nil, errors.Internalf("mission %s has unknown reward kind %q", def.Key, def.RewardKind)
	}

	if _, err := o.missionRepo.MarkClaimed(ctx, missionrepo.MarkClaimedInput{
		PlayerID:   input.PlayerID,
		MissionKey: def.Key,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to record claim")
	}
	o.saver.MarkDirty(input.PlayerID)

	slog.Info("mission claimed",
		"player_id", input.PlayerID,
		"mission", def.Key,
		"reward_kind", def.RewardKind,
		"amount", def.RewardAmount)

	return &mission.ClaimMissionOutput{Mission: def, Character: c}, nil
}

func (o *Orchestrator) grantItem(ctx context.Context, playerID, itemID string, quantity int) error {
	item, ok := o.catalog.Item(itemID)
	if !ok {
		return errors.Internalf("reward item %s not found", itemID)
	}
	out, err := o.inventoryRepo.Get(ctx, inventoryrepo.GetInput{PlayerID: playerID})
	if err != nil {
		return errors.Wrap(err, "failed to load inventory")
	}
	items := out.Items.Add(item, quantity, o.instanceIDs.For)
	if _, err := o.inventoryRepo.Save(ctx, inventoryrepo.SaveInput{PlayerID: playerID, Items: items}); err != nil {
		return errors.Wrap(err, "failed to save inventory")
	}
	return nil
}

// RecordKill advances the boss or normal kill counter for today
func (o *Orchestrator) RecordKill(ctx context.Context, input *mission.RecordKillInput) (*mission.RecordKillOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validatePlayer(input.PlayerID); err != nil {
		return nil, err
	}

	if _, err := o.today(ctx, input.PlayerID); err != nil {
		return nil, err
	}

	counter := superpet.CounterNormalKills
	if input.Boss {
		counter = superpet.CounterBossKills
	}
	out, err := o.missionRepo.IncrementCounter(ctx, missionrepo.IncrementCounterInput{
		PlayerID: input.PlayerID,
		Counter:  counter,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to count kill")
	}
	o.saver.MarkDirty(input.PlayerID)

	return &mission.RecordKillOutput{Counter: counter, Value: out.Value}, nil
}

// CollectFeedReward hands out the periodic free feed. The first call only
// arms the timer.
func (o *Orchestrator) CollectFeedReward(
	ctx context.Context,
	input *mission.CollectFeedRewardInput,
) (*mission.CollectFeedRewardOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validatePlayer(input.PlayerID); err != nil {
		return nil, err
	}

	reward := o.catalog.Tuning().FeedReward
	now := o.clock.Now()
	out := &mission.CollectFeedRewardOutput{ItemID: reward.ItemID}

	last, err := o.missionRepo.GetLastFeedTime(ctx, missionrepo.GetLastFeedTimeInput{PlayerID: input.PlayerID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load feed timer")
	}
	if last.At.IsZero() {
		if err := o.setFeedTime(ctx, input.PlayerID, now); err != nil {
			return nil, err
		}
		out.NextAt = now.Add(reward.Interval)
		return out, nil
	}

	due := last.At.Add(reward.Interval)
	if now.Before(due) {
		out.NextAt = due
		return out, nil
	}

	c, err := o.active(ctx, input.PlayerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.NoActiveCharacter()
	}

	if err := o.grantItem(ctx, input.PlayerID, reward.ItemID, reward.Quantity); err != nil {
		return nil, err
	}
	if err := o.setFeedTime(ctx, input.PlayerID, now); err != nil {
		return nil, err
	}
	o.saver.MarkDirty(input.PlayerID)

	slog.Info("feed reward collected",
		"player_id", input.PlayerID,
		"character", c.Name,
		"quantity", reward.Quantity)

	out.Collected = true
	out.Quantity = reward.Quantity
	out.NextAt = now.Add(reward.Interval)
	return out, nil
}

func (o *Orchestrator) setFeedTime(ctx context.Context, playerID string, at time.Time) error {
	if _, err := o.missionRepo.SetLastFeedTime(ctx, missionrepo.SetLastFeedTimeInput{PlayerID: playerID, At: at}); err != nil {
		return errors.Wrap(err, "failed to save feed timer")
	}
	return nil
}
