package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/superpet/superpet-api/internal/catalog"
	"github.com/superpet/superpet-api/internal/clients/cloudsync"
	"github.com/superpet/superpet-api/internal/engine"
	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/errors"
	invorch "github.com/superpet/superpet-api/internal/orchestrators/inventory"
	"github.com/superpet/superpet-api/internal/pkg/idgen"
	"github.com/superpet/superpet-api/internal/pkg/rng"
	characterrepo "github.com/superpet/superpet-api/internal/repositories/character"
	inventoryrepo "github.com/superpet/superpet-api/internal/repositories/inventory"
	"github.com/superpet/superpet-api/internal/repositories/storage"
	"github.com/superpet/superpet-api/internal/services/inventory"
	"github.com/superpet/superpet-api/internal/testutils"
)

const playerID = testutils.TestPlayerID

type stubWallet struct {
	calls []*cloudsync.UseGemInput
}

func (w *stubWallet) UseGem(_ context.Context, input *cloudsync.UseGemInput) (*cloudsync.GemOutput, error) {
	w.calls = append(w.calls, input)
	return &cloudsync.GemOutput{Balance: 1000 - input.Amount}, nil
}

type OrchestratorTestSuite struct {
	suite.Suite
	ctx           context.Context
	catalog       *catalog.Catalog
	saver         *testutils.RecordingSaver
	characterRepo characterrepo.Repository
	inventoryRepo inventoryrepo.Repository
	instanceIDs   *idgen.InstanceIDs
	orchestrator  *invorch.Orchestrator
}

func (s *OrchestratorTestSuite) SetupSuite() {
	c, err := catalog.LoadEmbedded()
	s.Require().NoError(err)
	s.catalog = c
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.saver = testutils.NewRecordingSaver(true)
	s.instanceIDs = idgen.NewInstanceIDs(idgen.NewSequential(""))

	store := storage.NewMemory()
	var err error
	s.characterRepo, err = characterrepo.NewStore(&characterrepo.StoreConfig{Store: store, InstanceIDs: s.instanceIDs})
	s.Require().NoError(err)
	s.inventoryRepo, err = inventoryrepo.NewStore(&inventoryrepo.StoreConfig{Store: store})
	s.Require().NoError(err)

	s.orchestrator = s.newOrchestrator(rng.NewSequence(0), nil)
}

// newOrchestrator shares the suite's repositories but rolls with random.
func (s *OrchestratorTestSuite) newOrchestrator(random rng.Source, gems invorch.GemWallet) *invorch.Orchestrator {
	eng, err := engine.New(&engine.Config{Catalog: s.catalog, Random: random})
	s.Require().NoError(err)
	o, err := invorch.New(&invorch.Config{
		CharacterRepo: s.characterRepo,
		InventoryRepo: s.inventoryRepo,
		Engine:        eng,
		Catalog:       s.catalog,
		InstanceIDs:   s.instanceIDs,
		Saver:         s.saver,
		Gems:          gems,
	})
	s.Require().NoError(err)
	return o
}

func (s *OrchestratorTestSuite) seed(c *superpet.Character) {
	_, err := s.characterRepo.Create(s.ctx, characterrepo.CreateInput{PlayerID: playerID, Character: c})
	s.Require().NoError(err)
	_, err = s.characterRepo.SetActive(s.ctx, characterrepo.SetActiveInput{PlayerID: playerID, ID: c.ID})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) character(id string) *superpet.Character {
	out, err := s.characterRepo.Get(s.ctx, characterrepo.GetInput{PlayerID: playerID, ID: id})
	s.Require().NoError(err)
	return out.Character
}

func (s *OrchestratorTestSuite) add(itemID string, quantity int) superpet.Inventory {
	out, err := s.orchestrator.AddItem(s.ctx, &inventory.AddItemInput{PlayerID: playerID, ItemID: itemID, Quantity: quantity})
	s.Require().NoError(err)
	return out.Items
}

func (s *OrchestratorTestSuite) bag() superpet.Inventory {
	out, err := s.orchestrator.GetInventory(s.ctx, &inventory.GetInventoryInput{PlayerID: playerID})
	s.Require().NoError(err)
	return out.Items
}

func (s *OrchestratorTestSuite) TestConfigValidation() {
	_, err := invorch.New(&invorch.Config{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestAddItemStacksAndInstances() {
	out, err := s.orchestrator.AddItem(s.ctx, &inventory.AddItemInput{PlayerID: playerID, ItemID: "feed", Quantity: 3})
	s.Require().NoError(err)
	s.Require().Len(out.Added, 1)
	s.Equal(3, out.Added[0].Quantity)

	out, err = s.orchestrator.AddItem(s.ctx, &inventory.AddItemInput{PlayerID: playerID, ItemID: "feed", Quantity: 2})
	s.Require().NoError(err)
	s.Equal(5, out.Added[0].Quantity)

	out, err = s.orchestrator.AddItem(s.ctx, &inventory.AddItemInput{PlayerID: playerID, ItemID: "katana", Quantity: 2})
	s.Require().NoError(err)
	s.Require().Len(out.Added, 2)
	s.Equal("katana-1", out.Added[0].InstanceID)
	s.Equal("katana-2", out.Added[1].InstanceID)

	bag := s.bag()
	s.Len(bag, 3, "one feed stack and two katanas")
	s.Equal(5, bag.Count("feed"))

	_, err = s.orchestrator.AddItem(s.ctx, &inventory.AddItemInput{PlayerID: playerID, ItemID: "feed"})
	s.True(errors.IsInvalidArgument(err))
	_, err = s.orchestrator.AddItem(s.ctx, &inventory.AddItemInput{PlayerID: playerID, ItemID: "caviar", Quantity: 1})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestSellRoundTrip() {
	s.seed(testutils.CreateTestCharacter("c1"))
	s.add("feed", 5)

	out, err := s.orchestrator.SellItem(s.ctx, &inventory.SellItemInput{PlayerID: playerID, ItemID: "feed"})
	s.Require().NoError(err)
	s.Equal(1, out.Sold)
	s.Equal(10, out.GoldEarned)
	s.Equal(4, out.Items.Count("feed"))

	out, err = s.orchestrator.SellItem(s.ctx, &inventory.SellItemInput{PlayerID: playerID, ItemID: "feed", All: true})
	s.Require().NoError(err)
	s.Equal(4, out.Sold)
	s.Equal(40, out.GoldEarned)
	s.Zero(out.Items.Count("feed"))

	s.Equal(50, s.character("c1").Gold)

	_, err = s.orchestrator.SellItem(s.ctx, &inventory.SellItemInput{PlayerID: playerID, ItemID: "feed"})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestSellEquipment() {
	s.seed(testutils.CreateTestCharacter("c1"))
	s.add("katana", 3)

	out, err := s.orchestrator.SellItem(s.ctx, &inventory.SellItemInput{PlayerID: playerID, InstanceID: "katana-2"})
	s.Require().NoError(err)
	s.Equal(80, out.GoldEarned)
	s.Equal(-1, out.Items.FindInstance("katana-2"))
	s.Equal(2, out.Items.Count("katana"))

	out, err = s.orchestrator.SellItem(s.ctx, &inventory.SellItemInput{PlayerID: playerID, ItemID: "katana", All: true})
	s.Require().NoError(err)
	s.Equal(2, out.Sold)
	s.Equal(160, out.GoldEarned)
	s.Equal(240, out.Character.Gold)
}

func (s *OrchestratorTestSuite) TestSellNeedsCharacter() {
	s.add("feed", 1)
	_, err := s.orchestrator.SellItem(s.ctx, &inventory.SellItemInput{PlayerID: playerID, ItemID: "feed"})
	s.True(errors.HasReason(err, errors.ReasonNoActiveCharacter))
	s.Equal(1, s.bag().Count("feed"))

	_, err = s.orchestrator.SellItem(s.ctx, &inventory.SellItemInput{PlayerID: playerID})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestPurchaseWithGold() {
	s.seed(testutils.CreateTestCharacterAtLevel("c1", 1, 1000, 130))

	out, err := s.orchestrator.Purchase(s.ctx, &inventory.PurchaseInput{PlayerID: playerID, ItemID: "feed", Quantity: 2})
	s.Require().NoError(err)
	s.Equal(100, out.Spent)
	s.Equal(900, out.Character.Gold)
	s.Equal(2, out.Items.Count("feed"))

	_, err = s.orchestrator.Purchase(s.ctx, &inventory.PurchaseInput{PlayerID: playerID, ItemID: "weapon_enhance_scroll"})
	s.True(errors.HasReason(err, errors.ReasonInsufficientGold))
	s.Equal(900, s.character("c1").Gold)

	_, err = s.orchestrator.Purchase(s.ctx, &inventory.PurchaseInput{PlayerID: playerID, ItemID: "katana"})
	s.True(errors.HasReason(err, errors.ReasonNotForSale))

	_, err = s.orchestrator.Purchase(s.ctx, &inventory.PurchaseInput{PlayerID: playerID, ItemID: "gold_pack"})
	s.True(errors.HasReason(err, errors.ReasonNotForSale), "gold packs are gem only")
}

func (s *OrchestratorTestSuite) TestPurchaseRejectsHugeQuantity() {
	s.seed(testutils.CreateTestCharacterAtLevel("c1", 1, 1000, 130))

	// 50 gold each wraps the cost negative
	_, err := s.orchestrator.Purchase(s.ctx, &inventory.PurchaseInput{
		PlayerID: playerID, ItemID: "feed", Quantity: 368934881474191033,
	})
	s.True(errors.IsInvalidArgument(err))
	_, err = s.orchestrator.Purchase(s.ctx, &inventory.PurchaseInput{
		PlayerID: playerID, ItemID: "feed", Quantity: invorch.MaxQuantity + 1,
	})
	s.True(errors.IsInvalidArgument(err))

	s.Equal(1000, s.character("c1").Gold)
	s.Empty(s.bag())
	s.Zero(s.saver.SaveNowCount(playerID))
}

func (s *OrchestratorTestSuite) TestAddItemCapsQuantity() {
	_, err := s.orchestrator.AddItem(s.ctx, &inventory.AddItemInput{
		PlayerID: playerID, ItemID: "katana", Quantity: 1 << 40,
	})
	s.True(errors.IsInvalidArgument(err))
	s.Empty(s.bag())

	s.Equal(invorch.MaxQuantity, s.add("feed", invorch.MaxQuantity).Count("feed"))
}

func (s *OrchestratorTestSuite) TestPurchaseGoldPackWithLocalGems() {
	c := testutils.CreateTestCharacter("c1")
	c.Gem = 60
	s.seed(c)

	out, err := s.orchestrator.Purchase(s.ctx, &inventory.PurchaseInput{
		PlayerID: playerID, ItemID: "gold_pack", Currency: inventory.CurrencyGem,
	})
	s.Require().NoError(err)
	s.Equal(50, out.Spent)
	s.Equal(20000, out.GoldReceived)
	s.Equal(10, out.Character.Gem)
	s.Equal(20000, out.Character.Gold)
	s.Zero(out.Items.Count("gold_pack"), "currency packs never enter the bag")
	s.Equal(1, s.saver.SaveNowCount(playerID))

	_, err = s.orchestrator.Purchase(s.ctx, &inventory.PurchaseInput{
		PlayerID: playerID, ItemID: "gold_pack", Currency: inventory.CurrencyGem,
	})
	s.True(errors.HasReason(err, errors.ReasonInsufficientGem))
}

func (s *OrchestratorTestSuite) TestPurchaseWithWallet() {
	wallet := &stubWallet{}
	o := s.newOrchestrator(rng.NewSequence(0), wallet)
	s.seed(testutils.CreateTestCharacter("c1"))

	out, err := o.Purchase(s.ctx, &inventory.PurchaseInput{
		PlayerID: playerID, ItemID: "gold_pack", Quantity: 2, Currency: inventory.CurrencyGem,
	})
	s.Require().NoError(err)
	s.Equal(40000, out.Character.Gold)
	s.Zero(out.Character.Gem)
	s.Require().Len(wallet.calls, 1)
	s.Equal(100, wallet.calls[0].Amount)
	s.Equal(cloudsync.UseShopItem, wallet.calls[0].Source)

	_, err = o.Purchase(s.ctx, &inventory.PurchaseInput{PlayerID: playerID, ItemID: "feed", Currency: "diamonds"})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestDisassemble() {
	s.seed(testutils.CreateTestCharacter("c1"))
	s.add("katana", 1)

	out, err := s.orchestrator.Disassemble(s.ctx, &inventory.DisassembleInput{PlayerID: playerID, InstanceID: "katana-1"})
	s.Require().NoError(err)
	s.Equal("shining_powder", out.PowderID)
	s.Equal(1, out.Items.Count("shining_powder"))
	s.Zero(out.Items.Count("katana"))

	_, err = s.orchestrator.Disassemble(s.ctx, &inventory.DisassembleInput{PlayerID: playerID, InstanceID: "katana-1"})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestDisassembleRejectsEquipped() {
	c := testutils.CreateTestCharacter("c1")
	testutils.Equip(c, s.catalog.MustItem("katana"), "katana-9", 0)
	s.seed(c)

	_, err := s.orchestrator.Disassemble(s.ctx, &inventory.DisassembleInput{PlayerID: playerID, InstanceID: "katana-9"})
	s.True(errors.HasReason(err, errors.ReasonItemEquipped))
	s.NotNil(s.character("c1").Equipment.Weapon)
}

func (s *OrchestratorTestSuite) TestEnhanceBagItem() {
	s.add("katana", 1)
	s.add("weapon_enhance_scroll", 2)
	s.add("armor_enhance_scroll", 3)

	out, err := s.orchestrator.Enhance(s.ctx, &inventory.EnhanceInput{PlayerID: playerID, InstanceID: "katana-1"})
	s.Require().NoError(err)
	s.True(out.Result.Success)
	s.Equal(1, out.EnhanceLevel)
	s.Equal("weapon_enhance_scroll", out.ScrollID)
	s.Equal(1, out.ScrollsLeft)
	s.False(out.Equipped)
	s.True(out.Saved)
	s.Equal(1, s.saver.SaveNowCount(playerID))

	bag := s.bag()
	s.Equal(1, bag[bag.FindInstance("katana-1")].EnhanceLevel)
	s.Equal(1, bag.Count("weapon_enhance_scroll"))
	s.Equal(3, bag.Count("armor_enhance_scroll"), "only the weapon scroll is spent")
}

func (s *OrchestratorTestSuite) TestEnhanceWithoutScrollSpendsNothing() {
	s.add("katana", 1)
	s.add("armor_enhance_scroll", 1)

	_, err := s.orchestrator.Enhance(s.ctx, &inventory.EnhanceInput{PlayerID: playerID, InstanceID: "katana-1"})
	s.True(errors.HasReason(err, errors.ReasonMissingScroll))
	s.Equal(1, s.bag().Count("armor_enhance_scroll"))
	s.Zero(s.saver.SaveNowCount(playerID))
}

func (s *OrchestratorTestSuite) TestEnhanceAtMaxLevelSpendsNothing() {
	items := s.add("weapon_enhance_scroll", 1)
	items = items.Put(superpet.InventoryItem{Item: s.catalog.MustItem("katana"), InstanceID: "katana-max", EnhanceLevel: 30})
	_, err := s.inventoryRepo.Save(s.ctx, inventoryrepo.SaveInput{PlayerID: playerID, Items: items})
	s.Require().NoError(err)

	_, err = s.orchestrator.Enhance(s.ctx, &inventory.EnhanceInput{PlayerID: playerID, InstanceID: "katana-max"})
	s.True(errors.HasReason(err, errors.ReasonMaxEnhanceLevel))
	s.Equal(1, s.bag().Count("weapon_enhance_scroll"))
}

func (s *OrchestratorTestSuite) TestEnhanceEquippedFailureDropsLevel() {
	c := testutils.CreateTestCharacter("c1")
	testutils.Equip(c, s.catalog.MustItem("copper_ring"), "copper_ring-5", 7)
	// full HP including seven levels of accessory bonus
	c.CurrentHP = 130 + 2 + 7*30
	s.seed(c)
	s.add("accessory_enhance_scroll", 1)

	o := s.newOrchestrator(rng.NewSequence(0.99), nil)
	out, err := o.Enhance(s.ctx, &inventory.EnhanceInput{PlayerID: playerID, InstanceID: "copper_ring-5"})
	s.Require().NoError(err)
	s.False(out.Result.Success)
	s.False(out.Result.Protected)
	s.True(out.Equipped)
	s.Equal(6, out.EnhanceLevel)
	s.Zero(out.ScrollsLeft)

	stored := s.character("c1")
	s.Equal(6, stored.Equipment.Ring.EnhanceLevel)
	s.Equal(130+2+6*30, stored.CurrentHP, "current HP follows the lower maximum")
}

func (s *OrchestratorTestSuite) TestEnhanceCeilingProtects() {
	c := testutils.CreateTestCharacter("c1")
	testutils.Equip(c, s.catalog.MustItem("iron_helmet"), "iron_helmet-3", 10)
	s.seed(c)
	s.add("armor_enhance_scroll", 1)

	o := s.newOrchestrator(rng.NewSequence(0.99), nil)
	out, err := o.Enhance(s.ctx, &inventory.EnhanceInput{PlayerID: playerID, InstanceID: "iron_helmet-3"})
	s.Require().NoError(err)
	s.True(out.Result.Protected)
	s.Equal(10, out.EnhanceLevel)
	s.Zero(s.bag().Count("armor_enhance_scroll"), "a protected failure still spends the scroll")
}

func (s *OrchestratorTestSuite) TestEnhanceUnknownInstance() {
	_, err := s.orchestrator.Enhance(s.ctx, &inventory.EnhanceInput{PlayerID: playerID, InstanceID: "ghost-1"})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestCraft() {
	s.add("faded_powder", 7)

	out, err := s.orchestrator.Craft(s.ctx, &inventory.CraftInput{PlayerID: playerID, RecipeID: "craft_feed"})
	s.Require().NoError(err)
	s.True(out.Success)
	s.Equal("feed", out.ResultItemID)
	s.Equal(1, out.ResultQuantity)
	s.Equal(2, out.Items.Count("faded_powder"))
	s.Equal(1, out.Items.Count("feed"))

	_, err = s.orchestrator.Craft(s.ctx, &inventory.CraftInput{PlayerID: playerID, RecipeID: "craft_feed"})
	s.True(errors.HasReason(err, errors.ReasonInsufficientMaterials))
	s.Equal(2, s.bag().Count("faded_powder"), "materials stay when the check fails")

	_, err = s.orchestrator.Craft(s.ctx, &inventory.CraftInput{PlayerID: playerID, RecipeID: "craft_moon"})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestCraftEquipmentGetsInstance() {
	s.add("faded_powder", 30)
	s.add("sparkling_powder", 20)
	s.add("shining_powder", 15)

	out, err := s.orchestrator.Craft(s.ctx, &inventory.CraftInput{PlayerID: playerID, RecipeID: "craft_seven_star_sword"})
	s.Require().NoError(err)
	s.True(out.Success)
	s.Len(out.Items, 1)
	s.NotEmpty(out.Items[0].InstanceID)
}

func (s *OrchestratorTestSuite) TestListings() {
	shop, err := s.orchestrator.ListShop(s.ctx, &inventory.ListShopInput{})
	s.Require().NoError(err)
	ids := make([]string, 0, len(shop.Items))
	for _, item := range shop.Items {
		ids = append(ids, item.ID)
	}
	s.Contains(ids, "feed")
	s.Contains(ids, "gold_pack")
	s.NotContains(ids, "katana")

	recipes, err := s.orchestrator.ListRecipes(s.ctx, &inventory.ListRecipesInput{})
	s.Require().NoError(err)
	s.NotEmpty(recipes.Recipes)
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}
