package client

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/superpet/superpet-api/internal/handlers/superpet/v1alpha1"
)

// param maps one positional argument onto a request field
type param struct {
	field  string
	number bool
}

func text(field string) param { return param{field: field} }
func number(field string) param { return param{field: field, number: true} }

// gameCommand describes a shortcut for one GameService method
type gameCommand struct {
	use    string
	short  string
	method string
	params []param
	// optional trailing params
	optional int
}

var gameCommandDefs = []gameCommand{
	{use: "create [name] [type] [class]", short: "Create a character", method: v1alpha1.MethodCreateCharacter,
		params: []param{text("name"), text("type"), text("className")}, optional: 1},
	{use: "characters", short: "List characters", method: v1alpha1.MethodListCharacters},
	{use: "select [character-id]", short: "Make a character active", method: v1alpha1.MethodSelectCharacter,
		params: []param{text("characterId")}},
	{use: "delete [character-id]", short: "Delete a character", method: v1alpha1.MethodDeleteCharacter,
		params: []param{text("characterId")}},
	{use: "sheet", short: "Show the active character", method: v1alpha1.MethodGetCharacter},
	{use: "feed", short: "Feed the active character", method: v1alpha1.MethodUseFood},
	{use: "equip [instance-id]", short: "Equip an item", method: v1alpha1.MethodEquip,
		params: []param{text("instanceId")}},
	{use: "unequip [slot]", short: "Unequip a slot", method: v1alpha1.MethodUnequip,
		params: []param{text("slot")}},
	{use: "inventory", short: "Show the inventory", method: v1alpha1.MethodGetInventory},
	{use: "shop", short: "List shop prices", method: v1alpha1.MethodListShop},
	{use: "buy [item-id] [quantity] [currency]", short: "Buy from the shop", method: v1alpha1.MethodPurchase,
		params: []param{text("itemId"), number("quantity"), text("currency")}, optional: 2},
	{use: "sell [item-id]", short: "Sell one unit of a stackable item", method: v1alpha1.MethodSellItem,
		params: []param{text("itemId")}},
	{use: "disassemble [instance-id]", short: "Break equipment into powder", method: v1alpha1.MethodDisassemble,
		params: []param{text("instanceId")}},
	{use: "enhance [instance-id]", short: "Enhance a piece of equipment", method: v1alpha1.MethodEnhance,
		params: []param{text("instanceId")}},
	{use: "recipes", short: "List crafting recipes", method: v1alpha1.MethodListRecipes},
	{use: "craft [recipe-id]", short: "Craft a recipe", method: v1alpha1.MethodCraft,
		params: []param{text("recipeId")}},
	{use: "dungeons", short: "List dungeons", method: v1alpha1.MethodListDungeons},
	{use: "fight [dungeon-id]", short: "Start a battle", method: v1alpha1.MethodStartBattle,
		params: []param{number("dungeonId")}},
	{use: "tick", short: "Advance the battle one round", method: v1alpha1.MethodTick},
	{use: "flee", short: "Leave the battle", method: v1alpha1.MethodExitBattle},
	{use: "missions", short: "Show today's missions", method: v1alpha1.MethodListMissions},
	{use: "claim [mission-key]", short: "Claim a mission reward", method: v1alpha1.MethodClaimMission,
		params: []param{text("missionKey")}},
	{use: "feed-reward", short: "Collect the timed feed reward", method: v1alpha1.MethodCollectFeedReward},
	{use: "sync", short: "Upload the save to the cloud", method: v1alpha1.MethodSyncSave},
	{use: "restore", short: "Download the cloud save", method: v1alpha1.MethodRestoreSave},
	{use: "gems", short: "Show the gem wallet", method: v1alpha1.MethodGetGemBalance},
	{use: "ranking", short: "Show the leaderboard", method: v1alpha1.MethodGetRanking},
}

func gameCommands() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(gameCommandDefs))
	for _, def := range gameCommandDefs {
		cmds = append(cmds, def.command())
	}
	return cmds
}

func (g gameCommand) command() *cobra.Command {
	return &cobra.Command{
		Use:   g.use,
		Short: g.short,
		Args:  cobra.RangeArgs(len(g.params)-g.optional, len(g.params)),
		RunE: func(_ *cobra.Command, args []string) error {
			fields, err := g.fields(args)
			if err != nil {
				return err
			}
			return invoke(g.method, fields)
		},
	}
}

func (g gameCommand) fields(args []string) (map[string]interface{}, error) {
	fields := make(map[string]interface{}, len(args))
	for i, arg := range args {
		p := g.params[i]
		if !p.number {
			fields[p.field] = arg
			continue
		}
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number: %w", p.field, err)
		}
		fields[p.field] = n
	}
	return fields, nil
}
