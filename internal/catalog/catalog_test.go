package catalog_test

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/superpet/superpet-api/internal/catalog"
	"github.com/superpet/superpet-api/internal/entities/superpet"
	"github.com/superpet/superpet-api/internal/errors"
)

type CatalogTestSuite struct {
	suite.Suite
	catalog *catalog.Catalog
}

func (s *CatalogTestSuite) SetupTest() {
	c, err := catalog.LoadEmbedded()
	s.Require().NoError(err)
	s.catalog = c
}

func (s *CatalogTestSuite) TestItemsAreTyped() {
	feed, ok := s.catalog.Item("feed")
	s.Require().True(ok)
	s.Equal(superpet.ItemTypeFood, feed.Type)
	s.Equal(50, feed.Stats.HP)
	s.Equal(50, feed.ShopGold)

	katana, ok := s.catalog.Item("katana")
	s.Require().True(ok)
	s.True(katana.IsEquipment())
	s.Equal(superpet.SlotWeapon, katana.Slot)
	s.Equal(superpet.RarityRare, katana.Rarity)

	scroll, ok := s.catalog.Item("armor_enhance_scroll")
	s.Require().True(ok)
	s.Equal(superpet.ScrollArmor, scroll.ScrollType)

	plate := s.catalog.MustItem("plate_armor")
	s.Equal(-1, plate.Stats.Speed)

	_, ok = s.catalog.Item("nope")
	s.False(ok)
}

func (s *CatalogTestSuite) TestEveryDungeonHasOneBoss() {
	dungeons := s.catalog.Dungeons()
	s.Len(dungeons, 5)
	for i, d := range dungeons {
		if i > 0 {
			s.Greater(d.ID, dungeons[i-1].ID)
		}
		bosses := 0
		for _, m := range d.Monsters {
			if m.IsBoss {
				bosses++
			}
		}
		s.Equal(1, bosses, d.Name)
	}

	d, ok := s.catalog.Dungeon(9)
	s.Require().True(ok)
	s.Equal("Dragon Valley", d.Name)
	boss := d.Monsters[len(d.Monsters)-1]
	s.Equal(1500, boss.HP)
	s.Equal("legend_meat", boss.Drops[0].ItemID)
	s.Equal(100.0, boss.Drops[0].Chance)
}

func (s *CatalogTestSuite) TestShopItems() {
	ids := map[string]bool{}
	for _, item := range s.catalog.ShopItems() {
		ids[item.ID] = true
	}
	s.True(ids["feed"])
	s.True(ids["gold_pack"])
	s.True(ids["weapon_enhance_scroll"])
	s.False(ids["katana"])
}

func (s *CatalogTestSuite) TestRulesAndTuning() {
	t := s.catalog.Tuning()
	s.Equal(30, t.MaxEnhanceLevel)
	s.Equal([]int{10, 15, 20, 25}, t.CeilingLevels)
	s.Equal(10, t.SellPrice[superpet.RarityCommon])
	s.Equal("shining_powder", t.Powder[superpet.RarityRare])
	s.Equal(10*time.Minute, t.FeedReward.Interval)
	s.Equal(superpet.Stats{Attack: 5}, t.EnhanceBonus[superpet.ScrollWeapon][superpet.RarityLegendary])

	r, ok := s.catalog.Recipe("craft_the_one_ring")
	s.Require().True(ok)
	s.Equal("the_one_ring", r.ResultItemID)
	s.Len(r.Materials, 3)

	m, ok := s.catalog.Mission("boss_kill")
	s.Require().True(ok)
	s.Equal(3, m.Target)
	s.Equal(8000, m.RewardAmount)

	pets := s.catalog.Pets()
	s.Equal(superpet.Stats{HP: 120, Attack: 10, Defense: 5, Speed: 5}, pets.BaseStats[superpet.PetDog])
	s.Equal(superpet.Stats{HP: 10, Attack: 2, Defense: 1, Speed: 1}, pets.GrowthFor(superpet.ClassWarrior))
	s.Equal(superpet.Stats{HP: 10, Attack: 1, Defense: 1, Speed: 1}, pets.GrowthFor("Bard"))
}

func (s *CatalogTestSuite) TestLoadRejectsBrokenReferences() {
	fsys := fstest.MapFS{
		"items.yaml": {Data: []byte(`
food:
  - {id: feed, name: Feed, rarity: Common, stats: {hp: 50}}
material:
  - {id: dust, name: Dust, rarity: Common}
`)},
		"dungeons.yaml": {Data: []byte(`
- id: 1
  name: Cave
  min_level: 1
  max_level: 5
  monsters:
    - {name: Bat, level: 1, hp: 10, attack: 2, spawn: 1, drops: [{item: ghost_item, chance: 50}]}
`)},
		"rules.yaml": {Data: []byte(`
tuning:
  max_enhance_level: 5
  enhance_rates: [{max_level: 5, rate: 1.0}]
  enhance_bonus:
    weapon: {Common: {attack: -1}}
  sell_price: {Common: 1, Uncommon: 1, Rare: 1, Epic: 1, Legendary: 1}
  powder: {Common: dust, Uncommon: dust, Rare: dust, Epic: dust, Legendary: dust}
  max_characters: 3
  feed_reward: {interval: 1m, item: feed, quantity: 1}
`)},
		"pets.yaml": {Data: []byte(`
growth:
  default: {hp: 10}
`)},
	}

	_, err := catalog.Load(fsys)
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
	s.Contains(err.Error(), "ghost_item")
	s.Contains(err.Error(), "must not be negative")
}

func (s *CatalogTestSuite) TestLoadReportsMissingFile() {
	_, err := catalog.Load(fstest.MapFS{})
	s.Error(err)
}

func TestCatalogTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogTestSuite))
}
