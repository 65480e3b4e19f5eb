package character_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/superpet/superpet-api/internal/errors"
	"github.com/superpet/superpet-api/internal/pkg/idgen"
	character "github.com/superpet/superpet-api/internal/repositories/character"
	"github.com/superpet/superpet-api/internal/repositories/storage"
	storagemock "github.com/superpet/superpet-api/internal/repositories/storage/mock"
	"github.com/superpet/superpet-api/internal/testutils"
)

const testPlayerID = "player_456"

type StoreRepositoryTestSuite struct {
	suite.Suite
	store *storage.MemoryStore
	repo  character.Repository
	ctx   context.Context
}

func (s *StoreRepositoryTestSuite) SetupTest() {
	s.store = storage.NewMemory()
	repo, err := character.NewStore(&character.StoreConfig{
		Store:       s.store,
		InstanceIDs: idgen.NewInstanceIDs(idgen.NewSequential("")),
	})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *StoreRepositoryTestSuite) TestCreateAndList() {
	first := testutils.CreateTestCharacter("char-1")
	second := testutils.CreateTestCharacter("char-2")

	_, err := s.repo.Create(s.ctx, character.CreateInput{PlayerID: testPlayerID, Character: first})
	s.Require().NoError(err)
	_, err = s.repo.Create(s.ctx, character.CreateInput{PlayerID: testPlayerID, Character: second})
	s.Require().NoError(err)

	out, err := s.repo.ListByPlayerID(s.ctx, character.ListByPlayerIDInput{PlayerID: testPlayerID})
	s.Require().NoError(err)
	s.Require().Len(out.Characters, 2)
	s.Equal("char-1", out.Characters[0].ID)
	s.Equal("char-2", out.Characters[1].ID)
	s.Equal(first.CreatedAt, out.Characters[0].CreatedAt)

	other, err := s.repo.ListByPlayerID(s.ctx, character.ListByPlayerIDInput{PlayerID: "someone-else"})
	s.Require().NoError(err)
	s.Empty(other.Characters)
}

func (s *StoreRepositoryTestSuite) TestCreateValidation() {
	s.Run("nil character", func() {
		_, err := s.repo.Create(s.ctx, character.CreateInput{PlayerID: testPlayerID})
		s.True(errors.IsInvalidArgument(err))
	})
	s.Run("missing id", func() {
		_, err := s.repo.Create(s.ctx, character.CreateInput{PlayerID: testPlayerID, Character: testutils.CreateTestCharacter("")})
		s.True(errors.IsInvalidArgument(err))
	})
	s.Run("missing player", func() {
		_, err := s.repo.Create(s.ctx, character.CreateInput{Character: testutils.CreateTestCharacter("c")})
		s.True(errors.IsInvalidArgument(err))
	})
	s.Run("duplicate id", func() {
		c := testutils.CreateTestCharacter("dup")
		_, err := s.repo.Create(s.ctx, character.CreateInput{PlayerID: testPlayerID, Character: c})
		s.Require().NoError(err)
		_, err = s.repo.Create(s.ctx, character.CreateInput{PlayerID: testPlayerID, Character: c})
		s.Equal(errors.CodeAlreadyExists, errors.GetCode(err))
	})
}

func (s *StoreRepositoryTestSuite) TestUpdateAndGet() {
	c := testutils.CreateTestCharacter("char-1")
	_, err := s.repo.Create(s.ctx, character.CreateInput{PlayerID: testPlayerID, Character: c})
	s.Require().NoError(err)

	c.Gold = 500
	c.Equipment.Weapon = nil
	_, err = s.repo.Update(s.ctx, character.UpdateInput{PlayerID: testPlayerID, Character: c})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, character.GetInput{PlayerID: testPlayerID, ID: "char-1"})
	s.Require().NoError(err)
	s.Equal(500, got.Character.Gold)

	_, err = s.repo.Get(s.ctx, character.GetInput{PlayerID: testPlayerID, ID: "missing"})
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Update(s.ctx, character.UpdateInput{PlayerID: testPlayerID, Character: testutils.CreateTestCharacter("missing")})
	s.True(errors.IsNotFound(err))
}

func (s *StoreRepositoryTestSuite) TestDelete() {
	for _, id := range []string{"a", "b", "c"} {
		_, err := s.repo.Create(s.ctx, character.CreateInput{PlayerID: testPlayerID, Character: testutils.CreateTestCharacter(id)})
		s.Require().NoError(err)
	}

	out, err := s.repo.Delete(s.ctx, character.DeleteInput{PlayerID: testPlayerID, ID: "b"})
	s.Require().NoError(err)
	s.Require().Len(out.Remaining, 2)
	s.Equal("a", out.Remaining[0].ID)
	s.Equal("c", out.Remaining[1].ID)

	_, err = s.repo.Delete(s.ctx, character.DeleteInput{PlayerID: testPlayerID, ID: "b"})
	s.True(errors.IsNotFound(err))
}

func (s *StoreRepositoryTestSuite) TestActiveSelection() {
	out, err := s.repo.GetActive(s.ctx, character.GetActiveInput{PlayerID: testPlayerID})
	s.Require().NoError(err)
	s.Nil(out.Character)

	_, err = s.repo.Create(s.ctx, character.CreateInput{PlayerID: testPlayerID, Character: testutils.CreateTestCharacter("a")})
	s.Require().NoError(err)
	_, err = s.repo.SetActive(s.ctx, character.SetActiveInput{PlayerID: testPlayerID, ID: "a"})
	s.Require().NoError(err)

	out, err = s.repo.GetActive(s.ctx, character.GetActiveInput{PlayerID: testPlayerID})
	s.Require().NoError(err)
	s.Require().NotNil(out.Character)
	s.Equal("a", out.Character.ID)

	_, err = s.repo.SetActive(s.ctx, character.SetActiveInput{PlayerID: testPlayerID, ID: "ghost"})
	s.Require().NoError(err)
	out, err = s.repo.GetActive(s.ctx, character.GetActiveInput{PlayerID: testPlayerID})
	s.Require().NoError(err)
	s.Equal("ghost", out.ID)
	s.Nil(out.Character)

	_, err = s.repo.SetActive(s.ctx, character.SetActiveInput{PlayerID: testPlayerID})
	s.Require().NoError(err)
	_, ok, err := s.store.Load(s.ctx, storage.PlayerKey(testPlayerID, storage.KeyActiveCharacter))
	s.Require().NoError(err)
	s.False(ok)
}

func (s *StoreRepositoryTestSuite) TestLegacyEquipmentIsUpgraded() {
	legacy := `[{"id":"old-1","name":"Bori","type":"dog","className":"Warrior","hp":120,"attack":10,"defense":5,"speed":5,
		"currentHp":120,"level":0,"exp":0,"gold":0,"gem":0,
		"equipment":{"weapon":{"id":"katana","name":"Katana","rarity":"Uncommon","type":"equipment","stats":{"attack":8},"equipmentSlot":"weapon"},
		"ring":{"item":{"id":"copper_ring","name":"Copper Ring","rarity":"Common","type":"equipment","stats":{"hp":10},"equipmentSlot":"ring"},"instanceId":"copper_ring-9","enhanceLevel":2},
		"helmet":null}}]`
	key := storage.PlayerKey(testPlayerID, storage.KeyCharacters)
	s.Require().NoError(s.store.Save(s.ctx, key, legacy))

	out, err := s.repo.ListByPlayerID(s.ctx, character.ListByPlayerIDInput{PlayerID: testPlayerID})
	s.Require().NoError(err)
	s.Require().Len(out.Characters, 1)
	c := out.Characters[0]

	s.Equal(1, c.Level)
	s.Require().NotNil(c.Equipment.Weapon)
	s.Equal("katana", c.Equipment.Weapon.Item.ID)
	s.Equal("katana-1", c.Equipment.Weapon.InstanceID)
	s.Equal(0, c.Equipment.Weapon.EnhanceLevel)
	s.Equal(8, c.Equipment.Weapon.Item.Stats.Attack)

	s.Require().NotNil(c.Equipment.Ring)
	s.Equal("copper_ring-9", c.Equipment.Ring.InstanceID)
	s.Equal(2, c.Equipment.Ring.EnhanceLevel)
	s.Nil(c.Equipment.Helmet)

	// the upgrade is written back so instance IDs stay stable
	again, err := s.repo.ListByPlayerID(s.ctx, character.ListByPlayerIDInput{PlayerID: testPlayerID})
	s.Require().NoError(err)
	s.Equal("katana-1", again.Characters[0].Equipment.Weapon.InstanceID)
}

func (s *StoreRepositoryTestSuite) TestCorruptDataIsAnError() {
	s.Require().NoError(s.store.Save(s.ctx, storage.PlayerKey(testPlayerID, storage.KeyCharacters), "{not json"))
	_, err := s.repo.ListByPlayerID(s.ctx, character.ListByPlayerIDInput{PlayerID: testPlayerID})
	s.Error(err)
}

func (s *StoreRepositoryTestSuite) TestStoreErrorsPropagate() {
	ctrl := gomock.NewController(s.T())
	mockStore := storagemock.NewMockStore(ctrl)
	repo, err := character.NewStore(&character.StoreConfig{Store: mockStore})
	s.Require().NoError(err)

	mockStore.EXPECT().
		Load(s.ctx, storage.PlayerKey(testPlayerID, storage.KeyCharacters)).
		Return("", false, errors.Unavailable("redis down"))

	_, err = repo.ListByPlayerID(s.ctx, character.ListByPlayerIDInput{PlayerID: testPlayerID})
	s.True(errors.IsUnavailable(err))
}

func (s *StoreRepositoryTestSuite) TestConfigValidation() {
	_, err := character.NewStore(nil)
	s.Error(err)
	_, err = character.NewStore(&character.StoreConfig{})
	s.Error(err)
}

func TestStoreRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(StoreRepositoryTestSuite))
}
