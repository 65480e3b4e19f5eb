package battle_test

import (
	"context"
	"testing"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/stretchr/testify/suite"

	"github.com/superpet/superpet-api/internal/catalog"
	"github.com/superpet/superpet-api/internal/engine"
	"github.com/superpet/superpet-api/internal/engine/rpgtoolkit"
	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/errors"
	battleorch "github.com/superpet/superpet-api/internal/orchestrators/battle"
	"github.com/superpet/superpet-api/internal/pkg/idgen"
	"github.com/superpet/superpet-api/internal/pkg/rng"
	battlerepo "github.com/superpet/superpet-api/internal/repositories/battle"
	characterrepo "github.com/superpet/superpet-api/internal/repositories/character"
	inventoryrepo "github.com/superpet/superpet-api/internal/repositories/inventory"
	"github.com/superpet/superpet-api/internal/repositories/storage"
	"github.com/superpet/superpet-api/internal/services/battle"
	"github.com/superpet/superpet-api/internal/testutils"
)

const (
	playerID = testutils.TestPlayerID
	// forestID is the first dungeon; with every draw at 0 its Pine Squirrel
	// (Lv.2, 60 HP, 10 ATK) is picked
	forestID = 5
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctx           context.Context
	catalog       *catalog.Catalog
	saver         *testutils.RecordingSaver
	bus           events.EventBus
	defeated      []events.Event
	characterRepo characterrepo.Repository
	inventoryRepo inventoryrepo.Repository
	battleRepo    *battlerepo.InMemoryRepository
	orchestrator  *battleorch.Orchestrator
}

func (s *OrchestratorTestSuite) SetupSuite() {
	c, err := catalog.LoadEmbedded()
	s.Require().NoError(err)
	s.catalog = c
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.saver = testutils.NewRecordingSaver(true)
	s.defeated = nil
	s.bus = events.NewBus()
	s.bus.SubscribeFunc(rpgtoolkit.EventMonsterDefeated, 0, func(_ context.Context, e events.Event) error {
		s.defeated = append(s.defeated, e)
		return nil
	})

	instanceIDs := idgen.NewInstanceIDs(idgen.NewSequential(""))
	store := storage.NewMemory()
	var err error
	s.characterRepo, err = characterrepo.NewStore(&characterrepo.StoreConfig{Store: store, InstanceIDs: instanceIDs})
	s.Require().NoError(err)
	s.inventoryRepo, err = inventoryrepo.NewStore(&inventoryrepo.StoreConfig{Store: store})
	s.Require().NoError(err)
	s.battleRepo = battlerepo.NewInMemory()

	eng, err := engine.New(&engine.Config{Catalog: s.catalog, Random: rng.NewSequence(0)})
	s.Require().NoError(err)

	s.orchestrator, err = battleorch.New(&battleorch.Config{
		CharacterRepo: s.characterRepo,
		InventoryRepo: s.inventoryRepo,
		BattleRepo:    s.battleRepo,
		Engine:        eng,
		Catalog:       s.catalog,
		IDGenerator:   idgen.NewSequential("battle"),
		InstanceIDs:   instanceIDs,
		EventBus:      s.bus,
		Saver:         s.saver,
	})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) seed(c *superpet.Character) {
	_, err := s.characterRepo.Create(s.ctx, characterrepo.CreateInput{PlayerID: playerID, Character: c})
	s.Require().NoError(err)
	_, err = s.characterRepo.SetActive(s.ctx, characterrepo.SetActiveInput{PlayerID: playerID, ID: c.ID})
	s.Require().NoError(err)
}

// champion kills anything in one hit.
func (s *OrchestratorTestSuite) champion() *superpet.Character {
	c := testutils.CreateTestCharacter("c1")
	c.Attack = 1000
	s.seed(c)
	return c
}

// punchingBag never hits, combos or dodges, and takes the minimum 5 damage
// per counter.
func (s *OrchestratorTestSuite) punchingBag(currentHP int) *superpet.Character {
	c := testutils.CreateTestCharacter("c1")
	c.Attack = 1
	c.Speed = 0
	c.CurrentHP = currentHP
	s.seed(c)
	return c
}

func (s *OrchestratorTestSuite) stored() *superpet.Character {
	out, err := s.characterRepo.Get(s.ctx, characterrepo.GetInput{PlayerID: playerID, ID: "c1"})
	s.Require().NoError(err)
	return out.Character
}

func (s *OrchestratorTestSuite) start() *engine.Battle {
	out, err := s.orchestrator.StartBattle(s.ctx, &battle.StartBattleInput{PlayerID: playerID, DungeonID: forestID})
	s.Require().NoError(err)
	return out.Battle
}

func (s *OrchestratorTestSuite) tick() *battle.TickOutput {
	out, err := s.orchestrator.Tick(s.ctx, &battle.TickInput{PlayerID: playerID})
	s.Require().NoError(err)
	return out
}

func (s *OrchestratorTestSuite) TestConfigValidation() {
	_, err := battleorch.New(&battleorch.Config{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestListDungeons() {
	out, err := s.orchestrator.ListDungeons(s.ctx, &battle.ListDungeonsInput{})
	s.Require().NoError(err)
	s.Require().NotEmpty(out.Dungeons)
	s.Equal(forestID, out.Dungeons[0].ID)
}

func (s *OrchestratorTestSuite) TestStartBattle() {
	s.champion()
	b := s.start()

	s.Equal("battle_1", b.ID)
	s.Equal(playerID, b.PlayerID)
	s.Equal("c1", b.CharacterID)
	s.Equal(engine.BattleFighting, b.State)
	s.Equal("Pine Squirrel", b.Monster.Name)
	s.Equal(60, b.MonsterHP)
	s.Equal(130, b.PlayerHP)
	s.Require().Len(b.Log, 1)
	s.Equal(engine.LogAppear, b.Log[0].Kind)

	got, err := s.orchestrator.GetBattle(s.ctx, &battle.GetBattleInput{PlayerID: playerID})
	s.Require().NoError(err)
	s.Equal(b.ID, got.Battle.ID)
}

func (s *OrchestratorTestSuite) TestStartBattleRejections() {
	_, err := s.orchestrator.StartBattle(s.ctx, &battle.StartBattleInput{PlayerID: playerID, DungeonID: forestID})
	s.True(errors.HasReason(err, errors.ReasonNoActiveCharacter))

	s.punchingBag(0)
	_, err = s.orchestrator.StartBattle(s.ctx, &battle.StartBattleInput{PlayerID: playerID, DungeonID: forestID})
	s.True(errors.HasReason(err, errors.ReasonLowHP))

	_, err = s.orchestrator.StartBattle(s.ctx, &battle.StartBattleInput{PlayerID: playerID, DungeonID: 404})
	s.True(errors.IsNotFound(err))

	_, err = s.orchestrator.StartBattle(s.ctx, &battle.StartBattleInput{DungeonID: forestID})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestCannotStartWhileFighting() {
	s.punchingBag(130)
	s.start()

	_, err := s.orchestrator.StartBattle(s.ctx, &battle.StartBattleInput{PlayerID: playerID, DungeonID: forestID})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *OrchestratorTestSuite) TestVictoryPaysOut() {
	s.champion()
	s.start()

	out := s.tick()
	s.Equal(engine.BattleWon, out.Battle.State)
	s.Require().NotNil(out.Battle.Victory)
	s.Equal(20, out.Battle.Victory.Exp)
	s.Equal(8, out.Battle.Victory.Gold)
	s.Equal([]string{"feed", "iron_helmet", "simple_cloak"}, out.Battle.Victory.Drops)
	s.NotEmpty(out.Entries)

	c := s.stored()
	s.Equal(20, c.Exp)
	s.Equal(8, c.Gold)
	s.Equal(130, c.CurrentHP)

	bag, err := s.inventoryRepo.Get(s.ctx, inventoryrepo.GetInput{PlayerID: playerID})
	s.Require().NoError(err)
	s.Equal(1, bag.Items.Count("feed"))
	s.Equal(1, bag.Items.Count("iron_helmet"))
	s.Equal(1, bag.Items.Count("simple_cloak"))
	helmet := bag.Items[bag.Items.First("iron_helmet")]
	s.NotEmpty(helmet.InstanceID)

	s.Require().Len(s.defeated, 1)
	source, target, ok := rpgtoolkit.DefeatedMonster(s.defeated[0])
	s.Require().True(ok)
	s.Equal(playerID, source.PlayerID)
	s.Equal("Pine Squirrel", target.Name)
	s.False(target.IsBoss)
	s.Equal(1, s.saver.DirtyCount(playerID))

	_, err = s.orchestrator.Tick(s.ctx, &battle.TickInput{PlayerID: playerID})
	s.True(errors.HasReason(err, errors.ReasonBattleNotActive))
	s.Len(s.defeated, 1)
}

func (s *OrchestratorTestSuite) TestSubscriberFailureKeepsVictory() {
	s.bus.SubscribeFunc(rpgtoolkit.EventMonsterDefeated, 10, func(_ context.Context, _ events.Event) error {
		return errors.Internal("mission store offline")
	})
	s.champion()
	s.start()

	out := s.tick()
	s.Equal(engine.BattleWon, out.Battle.State)
	s.Equal(8, s.stored().Gold)
}

func (s *OrchestratorTestSuite) TestStartAgainAfterVictory() {
	s.champion()
	s.start()
	s.tick()

	b := s.start()
	s.Equal("battle_2", b.ID)
	s.Equal(engine.BattleFighting, b.State)
	s.Nil(b.Victory)
}

func (s *OrchestratorTestSuite) TestDefeatPersistsZeroHP() {
	s.punchingBag(5)
	s.start()

	out := s.tick()
	s.Equal(engine.BattleLost, out.Battle.State)
	s.Zero(s.stored().CurrentHP)
	s.Empty(s.defeated)
	s.Equal(1, s.saver.DirtyCount(playerID))

	exit, err := s.orchestrator.ExitBattle(s.ctx, &battle.ExitBattleInput{PlayerID: playerID})
	s.Require().NoError(err)
	s.Zero(exit.PersistedHP)

	_, err = s.orchestrator.StartBattle(s.ctx, &battle.StartBattleInput{PlayerID: playerID, DungeonID: forestID})
	s.True(errors.HasReason(err, errors.ReasonLowHP))
}

func (s *OrchestratorTestSuite) TestExitMidFightKeepsRemainingHP() {
	s.punchingBag(130)
	s.start()
	s.tick()
	s.tick()

	out, err := s.orchestrator.ExitBattle(s.ctx, &battle.ExitBattleInput{PlayerID: playerID})
	s.Require().NoError(err)
	s.Equal(120, out.PersistedHP)
	s.Equal(120, s.stored().CurrentHP)

	_, err = s.orchestrator.GetBattle(s.ctx, &battle.GetBattleInput{PlayerID: playerID})
	s.True(errors.IsNotFound(err))

	_, err = s.orchestrator.ExitBattle(s.ctx, &battle.ExitBattleInput{PlayerID: playerID})
	s.True(errors.HasReason(err, errors.ReasonBattleNotActive))
}

func (s *OrchestratorTestSuite) TestTickWithoutBattle() {
	_, err := s.orchestrator.Tick(s.ctx, &battle.TickInput{PlayerID: playerID})
	s.True(errors.HasReason(err, errors.ReasonBattleNotActive))
}

func (s *OrchestratorTestSuite) TestRunnerStopsWhenBattleEnds() {
	s.champion()
	s.start()

	var ticks []*battle.TickOutput
	runner, err := battleorch.NewRunner(&battleorch.RunnerConfig{
		Service:  s.orchestrator,
		Interval: time.Millisecond,
		OnTick: func(id string, out *battle.TickOutput) {
			s.Equal(playerID, id)
			ticks = append(ticks, out)
		},
	})
	s.Require().NoError(err)

	b, err := runner.Run(s.ctx, playerID)
	s.Require().NoError(err)
	s.Equal(engine.BattleWon, b.State)
	s.Len(ticks, 1)
}

func (s *OrchestratorTestSuite) TestRunnerFightsToDefeat() {
	s.punchingBag(20)
	s.start()

	runner, err := battleorch.NewRunner(&battleorch.RunnerConfig{Service: s.orchestrator, Interval: time.Millisecond})
	s.Require().NoError(err)

	b, err := runner.Run(s.ctx, playerID)
	s.Require().NoError(err)
	s.Equal(engine.BattleLost, b.State)
	s.Equal(4, b.Ticks)
}

func (s *OrchestratorTestSuite) TestRunnerHonoursContext() {
	s.punchingBag(130)
	s.start()

	runner, err := battleorch.NewRunner(&battleorch.RunnerConfig{Service: s.orchestrator, Interval: time.Hour})
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	b, err := runner.Run(ctx, playerID)
	s.ErrorIs(err, context.Canceled)
	s.Equal(engine.BattleFighting, b.State)
}

func (s *OrchestratorTestSuite) TestRunnerValidation() {
	_, err := battleorch.NewRunner(&battleorch.RunnerConfig{})
	s.True(errors.IsInvalidArgument(err))

	_, err = battleorch.NewRunner(&battleorch.RunnerConfig{Service: s.orchestrator, Interval: -time.Second})
	s.True(errors.IsInvalidArgument(err))
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}
