package srv

import (
	"lowlife.exe.dev/discord"
	"lowlife.exe.dev/game"
)

// Commands returns the slash commands the interactions endpoint serves.
func Commands() []discord.ApplicationCommand {
	noDM := false

	slotChoices := make([]discord.OptionChoice, 0, len(game.Slots))
	for _, s := range game.Slots {
		slotChoices = append(slotChoices, discord.OptionChoice{Name: string(s), Value: string(s)})
	}
	tierChoices := make([]discord.OptionChoice, 0, len(game.Tiers))
	for _, t := range game.Tiers {
		tierChoices = append(tierChoices, discord.OptionChoice{Name: string(t), Value: string(t)})
	}
	minQty, maxQty := 1.0, float64(MaxGiveQuantity)

	duelCmd := discord.ApplicationCommand{
		Name:         "duel",
		Description:  "Duel commands",
		DMPermission: &noDM,
		Options: []discord.CommandOptionDef{
			{
				Type:        discord.OptionSubCommand,
				Name:        "start",
				Description: "Start a duel with another player",
				Options: []discord.CommandOptionDef{
					{Type: discord.OptionUser, Name: "opponent", Description: "Who to fight", Required: true},
				},
			},
			{Type: discord.OptionSubCommand, Name: "ai", Description: "Start a duel against an AI Defender"},
			{Type: discord.OptionSubCommand, Name: "reset", Description: "Force end the duel in this channel"},
		},
	}

	invCmd := discord.ApplicationCommand{
		Name:         "inv",
		Description:  "Inventory and equipment",
		DMPermission: &noDM,
		Options: []discord.CommandOptionDef{
			{Type: discord.OptionSubCommand, Name: "show", Description: "Show your inventory and equipped gear."},
			{
				Type:        discord.OptionSubCommand,
				Name:        "equip",
				Description: "Equip an item you own.",
				Options: []discord.CommandOptionDef{
					{Type: discord.OptionString, Name: "item_id", Description: "ID of the item to equip (see /inv listitems or /inv show).", Required: true},
					{Type: discord.OptionString, Name: "slot", Description: "Slot to use; defaults to the item's own", Choices: slotChoices},
				},
			},
			{
				Type:        discord.OptionSubCommand,
				Name:        "unequip",
				Description: "Unequip a slot.",
				Options: []discord.CommandOptionDef{
					{Type: discord.OptionString, Name: "slot", Description: "Slot to empty", Required: true, Choices: slotChoices},
				},
			},
			{Type: discord.OptionSubCommand, Name: "listitems", Description: "List the item catalog."},
			{
				Type:        discord.OptionSubCommand,
				Name:        "give",
				Description: "[Admin] Give an item to a user.",
				Options: []discord.CommandOptionDef{
					{Type: discord.OptionUser, Name: "user", Description: "Target player", Required: true},
					{Type: discord.OptionString, Name: "item_id", Description: "Item ID", Required: true},
					{Type: discord.OptionInteger, Name: "qty", Description: "Quantity", MinValue: &minQty, MaxValue: &maxQty},
					{Type: discord.OptionString, Name: "tier", Description: "Rarity tier", Choices: tierChoices},
				},
			},
		},
	}
	return []discord.ApplicationCommand{duelCmd, invCmd}
}
