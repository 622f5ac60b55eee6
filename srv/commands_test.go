package srv

import (
	"errors"
	"testing"

	"lowlife.exe.dev/discord"
	"lowlife.exe.dev/game"
)

func findOption(opts []discord.CommandOptionDef, name string) (discord.CommandOptionDef, bool) {
	for _, o := range opts {
		if o.Name == name {
			return o, true
		}
	}
	return discord.CommandOptionDef{}, false
}

func TestCommands(t *testing.T) {
	cmds := Commands()
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}

	subs := map[string][]string{
		"duel": {"start", "ai", "reset"},
		"inv":  {"show", "equip", "unequip", "listitems", "give"},
	}
	for _, c := range cmds {
		want, ok := subs[c.Name]
		if !ok {
			t.Errorf("unexpected command %q", c.Name)
			continue
		}
		if c.DMPermission == nil || *c.DMPermission {
			t.Errorf("%s should be guild only", c.Name)
		}
		for _, name := range want {
			o, ok := findOption(c.Options, name)
			if !ok || o.Type != discord.OptionSubCommand {
				t.Errorf("%s is missing subcommand %s", c.Name, name)
			}
		}
	}

	inv := cmds[1]
	give, _ := findOption(inv.Options, "give")
	qty, ok := findOption(give.Options, "qty")
	if !ok || qty.MinValue == nil || qty.MaxValue == nil || *qty.MinValue != 1 || *qty.MaxValue != MaxGiveQuantity {
		t.Errorf("qty option = %+v", qty)
	}
	tier, _ := findOption(give.Options, "tier")
	if len(tier.Choices) != len(game.Tiers) {
		t.Errorf("tier choices = %d, want %d", len(tier.Choices), len(game.Tiers))
	}
	unequip, _ := findOption(inv.Options, "unequip")
	slot, _ := findOption(unequip.Options, "slot")
	if !slot.Required || len(slot.Choices) != len(game.Slots) {
		t.Errorf("unequip slot = %+v", slot)
	}
}

var errBoom = errors.New("boom")

func TestInvMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{game.ErrUnknownItem, "Unknown item_id. Use /inv listitems."},
		{game.ErrItemNotOwned, "You don't own that item. Check /inv show."},
		{ValidationError{Field: "item_id", Message: "is required"}, "item_id: is required"},
		{errBoom, ""},
	}
	for _, tt := range tests {
		if got := invMessage(tt.err); got != tt.want {
			t.Errorf("invMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
