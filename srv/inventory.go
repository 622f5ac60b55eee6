package srv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"lowlife.exe.dev/db/dbgen"
	"lowlife.exe.dev/discord"
	"lowlife.exe.dev/game"
)

const maxItemList = 4000

func (s *Server) invShow(ctx context.Context, actor Actor) discord.InteractionResponse {
	if err := s.Inventory.EnsurePlayer(ctx, actor.GuildID, actor.UserID, actor.Name); err != nil {
		return s.internalError("ensure player", err)
	}
	e, err := s.inventoryEmbed(ctx, actor)
	if err != nil {
		return s.internalError("show inventory", err)
	}
	return discord.EphemeralEmbed(e)
}

func (s *Server) inventoryEmbed(ctx context.Context, actor Actor) (discord.Embed, error) {
	ctx, span := StartDBSpan(ctx, "show_inventory", attribute.Int64("discord.user", actor.UserID))
	defer span.End()

	lo, err := s.Inventory.Show(ctx, actor.GuildID, actor.UserID)
	if err != nil {
		RecordError(span, err)
		return discord.Embed{}, err
	}
	rec, err := dbgen.New(s.DB).GetDuelRecord(ctx, dbgen.GetDuelRecordParams{UserID: actor.UserID, GuildID: actor.GuildID})
	if err != nil {
		RecordError(span, err)
		return discord.Embed{}, err
	}

	e := discord.NewEmbed("🎒 Inventory — "+actor.Name, "", discord.ColorDarkGold)

	var items []string
	for _, it := range lo.Items {
		items = append(items, fmt.Sprintf("`%s` %s (%s, %.2f kg)", it.ID, it.Name, it.Tier, it.Weight))
	}
	if len(items) == 0 {
		items = []string{"Empty. Ask an admin for gear."}
	}
	e.AddField("Items", strings.Join(items, "\n"), false)

	var equipped []string
	for _, slot := range game.Slots {
		if it, ok := lo.Equipped[slot]; ok {
			equipped = append(equipped, fmt.Sprintf("**%s**: %s", slot, it.Name))
		} else {
			equipped = append(equipped, fmt.Sprintf("**%s**: —", slot))
		}
	}
	e.AddField("Equipped", strings.Join(equipped, "\n"), false)

	carry := fmt.Sprintf("%.2f/%.2f kg", lo.CarryWeight(), lo.Player.CarryCapacity)
	if lo.OverCapacity() {
		carry += " ⚠️ over capacity"
	}
	e.AddField("Carry", carry, true)
	e.AddField("Record", fmt.Sprintf("%dW / %dL", rec.Wins, rec.Losses), true)
	e.SetFooter("Use /inv equip, /inv unequip (slots: "+strings.Join(game.SlotNames(), ", ")+")", "")
	return e, nil
}

func (s *Server) invEquip(ctx context.Context, actor Actor, opts []discord.CommandOption) discord.InteractionResponse {
	var ref string
	if o, ok := discord.Option(opts, "item_id"); ok {
		ref = strings.TrimSpace(o.String())
	}
	if err := ValidateItemRef(ref); err != nil {
		return discord.Ephemeral("⚠️ " + err.Error())
	}
	var slot game.Slot
	if o, ok := discord.Option(opts, "slot"); ok && o.String() != "" {
		sl, err := game.ParseSlot(o.String())
		if err != nil {
			return discord.Ephemeral("⚠️ " + invMessage(err))
		}
		slot = sl
	}

	if err := s.Inventory.EnsurePlayer(ctx, actor.GuildID, actor.UserID, actor.Name); err != nil {
		return s.internalError("ensure player", err)
	}
	res, err := s.Inventory.Equip(ctx, actor.GuildID, actor.UserID, ref, slot)
	if err != nil {
		if msg := invMessage(err); msg != "" {
			return discord.Ephemeral("⚠️ " + msg)
		}
		return s.internalError("equip", err)
	}

	content := fmt.Sprintf("✅ Equipped **%s** to **%s**.", res.Item.Name, res.Slot)
	if res.Replaced != nil {
		content += fmt.Sprintf(" (replaced %s)", res.Replaced.Name)
	}
	return s.withInventory(ctx, actor, content)
}

func (s *Server) invUnequip(ctx context.Context, actor Actor, opts []discord.CommandOption) discord.InteractionResponse {
	o, ok := discord.Option(opts, "slot")
	if !ok {
		return discord.Ephemeral("⚠️ Pick a slot to unequip.")
	}
	slot, err := game.ParseSlot(o.String())
	if err != nil {
		return discord.Ephemeral("⚠️ " + invMessage(err))
	}
	if err := s.Inventory.EnsurePlayer(ctx, actor.GuildID, actor.UserID, actor.Name); err != nil {
		return s.internalError("ensure player", err)
	}
	removed, err := s.Inventory.Unequip(ctx, actor.GuildID, actor.UserID, slot)
	if err != nil {
		return s.internalError("unequip", err)
	}
	content := fmt.Sprintf("✅ Unequipped **%s**.", slot)
	if !removed {
		content = fmt.Sprintf("Nothing equipped in **%s**.", slot)
	}
	return s.withInventory(ctx, actor, content)
}

// withInventory replies ephemerally with content above the actor's
// inventory embed.
func (s *Server) withInventory(ctx context.Context, actor Actor, content string) discord.InteractionResponse {
	e, err := s.inventoryEmbed(ctx, actor)
	if err != nil {
		slog.Warn("render inventory", "user", actor.UserID, "error", err)
		return discord.Ephemeral(content)
	}
	return discord.Reply(discord.ResponseData{
		Content:         content,
		Embeds:          []discord.Embed{e},
		Flags:           discord.FlagEphemeral,
		AllowedMentions: discord.NoMentions,
	})
}

func (s *Server) invListItems() discord.InteractionResponse {
	lines := ItemLines(s.Catalog)
	var b strings.Builder
	for _, l := range lines {
		if b.Len()+len(l)+1 > maxItemList {
			break
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l)
	}
	if b.Len() == 0 {
		return discord.Ephemeral("The catalog is empty.")
	}
	return discord.Ephemeral(b.String())
}

// ItemLines renders one line per catalog template, sorted by id.
func ItemLines(cat *game.Catalog) []string {
	list := cat.List()
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	lines := make([]string, 0, len(list))
	for _, t := range list {
		slot := string(t.Slot)
		if slot == "" {
			slot = "-"
		}
		lines = append(lines, fmt.Sprintf("`%s` — **%s** (slot: %s, wt %.2f)", t.ID, t.Name, slot, t.BaseWeight))
	}
	return lines
}

func (s *Server) invGive(ctx context.Context, in discord.Interaction, actor Actor, opts []discord.CommandOption, resolved *discord.Resolved) discord.InteractionResponse {
	if !in.Member.HasPermission(discord.PermissionManageGuild) {
		RecordSecurityEvent(ctx, "permission_denied",
			attribute.String("command", "inv give"),
			attribute.String("discord.user.id", actor.User),
		)
		return discord.Ephemeral("You need Manage Server permission.")
	}

	userOpt, ok := discord.Option(opts, "user")
	if !ok {
		return discord.Ephemeral("⚠️ Pick a user.")
	}
	target, err := discord.ParseSnowflake(userOpt.String())
	if err != nil || target == 0 {
		return discord.Ephemeral("⚠️ That user doesn't look right.")
	}
	targetName := resolved.UserName(userOpt.String())
	if targetName == "" {
		targetName = "Player"
	}

	var ref string
	if o, ok := discord.Option(opts, "item_id"); ok {
		ref = strings.TrimSpace(o.String())
	}
	if err := ValidateItemRef(ref); err != nil {
		return discord.Ephemeral("⚠️ " + err.Error())
	}
	qty := int64(1)
	if o, ok := discord.Option(opts, "qty"); ok {
		n, err := o.Int()
		if err != nil {
			return discord.Ephemeral("⚠️ qty must be a number")
		}
		qty = n
	}
	if err := ValidateQuantity(qty); err != nil {
		return discord.Ephemeral("⚠️ " + err.Error())
	}
	var tierName string
	if o, ok := discord.Option(opts, "tier"); ok {
		tierName = o.String()
	}
	tier, err := game.ParseTier(tierName)
	if err != nil {
		return discord.Ephemeral("⚠️ " + invMessage(err))
	}

	if err := s.Inventory.EnsurePlayer(ctx, actor.GuildID, target, targetName); err != nil {
		return s.internalError("ensure player", err)
	}
	given, err := s.Inventory.Give(ctx, actor.GuildID, target, ref, int(qty), tier)
	if err != nil {
		if msg := invMessage(err); msg != "" {
			return discord.Ephemeral("⚠️ " + msg)
		}
		return s.internalError("give", err)
	}
	slog.Info("items given", "guild", actor.GuildID, "by", actor.UserID, "to", target, "item", ref, "qty", qty, "tier", tier)

	name := ref
	if len(given) > 0 {
		name = given[0].Name
	}
	return discord.Reply(discord.ResponseData{
		Content:         fmt.Sprintf("✅ Gave **%d× %s** to **%s**.", qty, name, targetName),
		Flags:           discord.FlagEphemeral,
		AllowedMentions: discord.NoMentions,
	})
}

// invMessage maps inventory errors to player-facing text. It returns "" for
// errors players can't act on.
func invMessage(err error) string {
	var verr ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, game.ErrUnknownItem):
		return "Unknown item_id. Use /inv listitems."
	case errors.Is(err, game.ErrUnknownTier):
		return "Unknown tier. Pick one of: " + tierNames() + "."
	case errors.Is(err, game.ErrUnknownSlot):
		return "Unknown slot. Pick one of: " + strings.Join(game.SlotNames(), ", ") + "."
	case errors.Is(err, game.ErrBadQuantity):
		return fmt.Sprintf("qty must be between 1 and %d.", MaxGiveQuantity)
	case errors.Is(err, game.ErrItemNotOwned):
		return "You don't own that item. Check /inv show."
	case errors.Is(err, game.ErrNotEquippable):
		return "That item can't be equipped."
	case errors.Is(err, game.ErrSlotMismatch):
		return "That item doesn't fit that slot."
	}
	return ""
}

func tierNames() string {
	names := make([]string, len(game.Tiers))
	for i, t := range game.Tiers {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
