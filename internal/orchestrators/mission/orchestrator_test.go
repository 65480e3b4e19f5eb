package mission_test

import (
	"context"
	"testing"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/stretchr/testify/suite"

	"github.com/superpet/superpet-api/internal/catalog"
	"github.com/superpet/superpet-api/internal/engine/rpgtoolkit"
	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/errors"
	missionorch "github.com/superpet/superpet-api/internal/orchestrators/mission"
	"github.com/superpet/superpet-api/internal/pkg/clock"
	characterrepo "github.com/superpet/superpet-api/internal/repositories/character"
	inventoryrepo "github.com/superpet/superpet-api/internal/repositories/inventory"
	missionrepo "github.com/superpet/superpet-api/internal/repositories/mission"
	"github.com/superpet/superpet-api/internal/repositories/storage"
	"github.com/superpet/superpet-api/internal/services/mission"
	"github.com/superpet/superpet-api/internal/testutils"
)

const playerID = testutils.TestPlayerID

type OrchestratorTestSuite struct {
	suite.Suite
	ctx           context.Context
	catalog       *catalog.Catalog
	clock         *clock.Fixed
	bus           events.EventBus
	saver         *testutils.RecordingSaver
	characterRepo characterrepo.Repository
	inventoryRepo inventoryrepo.Repository
	orchestrator  *missionorch.Orchestrator
}

func (s *OrchestratorTestSuite) SetupSuite() {
	c, err := catalog.LoadEmbedded()
	s.Require().NoError(err)
	s.catalog = c
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()
	// 12:00 in Seoul
	s.clock = clock.NewFixed(time.Date(2025, 3, 1, 3, 0, 0, 0, time.UTC))
	s.bus = events.NewBus()
	s.saver = testutils.NewRecordingSaver(true)

	store := storage.NewMemory()
	var err error
	s.characterRepo, err = characterrepo.NewStore(&characterrepo.StoreConfig{Store: store})
	s.Require().NoError(err)
	s.inventoryRepo, err = inventoryrepo.NewStore(&inventoryrepo.StoreConfig{Store: store})
	s.Require().NoError(err)
	missionRepo, err := missionrepo.NewStore(&missionrepo.StoreConfig{Store: store})
	s.Require().NoError(err)

	s.orchestrator, err = missionorch.New(&missionorch.Config{
		CharacterRepo: s.characterRepo,
		InventoryRepo: s.inventoryRepo,
		MissionRepo:   missionRepo,
		Catalog:       s.catalog,
		Clock:         s.clock,
		EventBus:      s.bus,
		Saver:         s.saver,
	})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.NoError(s.orchestrator.Close())
}

func (s *OrchestratorTestSuite) seed() *superpet.Character {
	c := testutils.CreateTestCharacter("c1")
	_, err := s.characterRepo.Create(s.ctx, characterrepo.CreateInput{PlayerID: playerID, Character: c})
	s.Require().NoError(err)
	_, err = s.characterRepo.SetActive(s.ctx, characterrepo.SetActiveInput{PlayerID: playerID, ID: c.ID})
	s.Require().NoError(err)
	return c
}

func (s *OrchestratorTestSuite) missions() map[string]mission.Progress {
	out, err := s.orchestrator.ListMissions(s.ctx, &mission.ListMissionsInput{PlayerID: playerID})
	s.Require().NoError(err)
	byKey := make(map[string]mission.Progress, len(out.Missions))
	for _, p := range out.Missions {
		byKey[p.Mission.Key] = p
	}
	return byKey
}

func (s *OrchestratorTestSuite) kill(boss bool, times int) {
	for i := 0; i < times; i++ {
		_, err := s.orchestrator.RecordKill(s.ctx, &mission.RecordKillInput{PlayerID: playerID, Boss: boss})
		s.Require().NoError(err)
	}
}

func (s *OrchestratorTestSuite) claim(key string) (*mission.ClaimMissionOutput, error) {
	return s.orchestrator.ClaimMission(s.ctx, &mission.ClaimMissionInput{PlayerID: playerID, MissionKey: key})
}

func (s *OrchestratorTestSuite) bag() superpet.Inventory {
	out, err := s.inventoryRepo.Get(s.ctx, inventoryrepo.GetInput{PlayerID: playerID})
	s.Require().NoError(err)
	return out.Items
}

func (s *OrchestratorTestSuite) TestConfigValidation() {
	_, err := missionorch.New(&missionorch.Config{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestListMissions() {
	out, err := s.orchestrator.ListMissions(s.ctx, &mission.ListMissionsInput{PlayerID: playerID})
	s.Require().NoError(err)
	s.Equal("2025-03-01", out.Date)
	s.Require().Len(out.Missions, 3)
	s.Equal("attendance", out.Missions[0].Mission.Key)

	for _, p := range out.Missions {
		s.Zero(p.Current)
		s.False(p.Complete, p.Mission.Key)
		s.False(p.Claimed)
	}
}

func (s *OrchestratorTestSuite) TestAttendance() {
	_, err := s.claim("attendance")
	s.True(errors.HasReason(err, errors.ReasonNoActiveCharacter))

	s.seed()
	s.True(s.missions()["attendance"].Complete)

	out, err := s.claim("attendance")
	s.Require().NoError(err)
	s.Equal("attendance", out.Mission.Key)
	s.Equal(10, s.bag().Count("feed"))
	s.True(s.missions()["attendance"].Claimed)
	s.Equal(1, s.saver.DirtyCount(playerID))

	_, err = s.claim("attendance")
	s.True(errors.HasReason(err, errors.ReasonMissionClaimed))
	s.Equal(10, s.bag().Count("feed"))
}

func (s *OrchestratorTestSuite) TestKillMissions() {
	s.seed()
	s.kill(true, 2)
	s.kill(false, 5)

	progress := s.missions()
	s.Equal(2, progress["boss_kill"].Current)
	s.Equal(5, progress["normal_kill"].Current)

	_, err := s.claim("boss_kill")
	s.True(errors.HasReason(err, errors.ReasonMissionIncomplete))

	s.kill(true, 2)
	progress = s.missions()
	s.Equal(3, progress["boss_kill"].Current, "progress is capped at the target")
	s.True(progress["boss_kill"].Complete)

	out, err := s.claim("boss_kill")
	s.Require().NoError(err)
	s.Equal(8000, out.Character.Gold)

	_, err = s.claim("normal_kill")
	s.True(errors.HasReason(err, errors.ReasonMissionIncomplete))

	_, err = s.claim("treasure_hunt")
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestKillsArriveFromEventBus() {
	c := s.seed()
	boss := superpet.Monster{Name: "Pine Guardian", Level: 10, IsBoss: true}
	squirrel := superpet.Monster{Name: "Pine Squirrel", Level: 2}

	s.Require().NoError(s.bus.Publish(s.ctx, rpgtoolkit.NewMonsterDefeatedEvent(playerID, c, "battle_1", boss)))
	s.Require().NoError(s.bus.Publish(s.ctx, rpgtoolkit.NewMonsterDefeatedEvent(playerID, c, "battle_2", squirrel)))
	s.Require().NoError(s.bus.Publish(s.ctx, rpgtoolkit.NewMonsterDefeatedEvent(playerID, c, "battle_3", squirrel)))

	progress := s.missions()
	s.Equal(1, progress["boss_kill"].Current)
	s.Equal(2, progress["normal_kill"].Current)

	s.Require().NoError(s.orchestrator.Close())
	s.Require().NoError(s.bus.Publish(s.ctx, rpgtoolkit.NewMonsterDefeatedEvent(playerID, c, "battle_4", boss)))
	s.Equal(1, s.missions()["boss_kill"].Current)
}

func (s *OrchestratorTestSuite) TestCountersResetAtSeoulMidnight() {
	s.seed()
	// 23:59 in Seoul
	s.clock.Set(time.Date(2025, 3, 1, 14, 59, 0, 0, time.UTC))
	s.kill(true, 3)
	_, err := s.claim("attendance")
	s.Require().NoError(err)
	s.Equal(3, s.missions()["boss_kill"].Current)

	s.clock.Advance(time.Minute)
	out, err := s.orchestrator.ListMissions(s.ctx, &mission.ListMissionsInput{PlayerID: playerID})
	s.Require().NoError(err)
	s.Equal("2025-03-02", out.Date)

	progress := s.missions()
	s.Zero(progress["boss_kill"].Current)
	s.False(progress["attendance"].Claimed)

	_, err = s.claim("attendance")
	s.Require().NoError(err)
	s.Equal(20, s.bag().Count("feed"))
}

func (s *OrchestratorTestSuite) TestFeedReward() {
	start := s.clock.Now()

	out, err := s.orchestrator.CollectFeedReward(s.ctx, &mission.CollectFeedRewardInput{PlayerID: playerID})
	s.Require().NoError(err)
	s.False(out.Collected)
	s.True(start.Add(10 * time.Minute).Equal(out.NextAt))

	s.clock.Advance(9 * time.Minute)
	out, err = s.orchestrator.CollectFeedReward(s.ctx, &mission.CollectFeedRewardInput{PlayerID: playerID})
	s.Require().NoError(err)
	s.False(out.Collected)
	s.True(start.Add(10 * time.Minute).Equal(out.NextAt))

	s.clock.Advance(time.Minute)
	_, err = s.orchestrator.CollectFeedReward(s.ctx, &mission.CollectFeedRewardInput{PlayerID: playerID})
	s.True(errors.HasReason(err, errors.ReasonNoActiveCharacter))

	s.seed()
	out, err = s.orchestrator.CollectFeedReward(s.ctx, &mission.CollectFeedRewardInput{PlayerID: playerID})
	s.Require().NoError(err)
	s.True(out.Collected)
	s.Equal("feed", out.ItemID)
	s.Equal(10, out.Quantity)
	s.True(s.clock.Now().Add(10 * time.Minute).Equal(out.NextAt))
	s.Equal(10, s.bag().Count("feed"))

	out, err = s.orchestrator.CollectFeedReward(s.ctx, &mission.CollectFeedRewardInput{PlayerID: playerID})
	s.Require().NoError(err)
	s.False(out.Collected, "the timer restarts after collecting")
}

func (s *OrchestratorTestSuite) TestValidation() {
	_, err := s.orchestrator.ListMissions(s.ctx, &mission.ListMissionsInput{})
	s.True(errors.IsInvalidArgument(err))
	_, err = s.orchestrator.ClaimMission(s.ctx, &mission.ClaimMissionInput{PlayerID: playerID})
	s.True(errors.IsInvalidArgument(err))
	_, err = s.orchestrator.RecordKill(s.ctx, nil)
	s.True(errors.IsInvalidArgument(err))
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}
