package srv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"lowlife.exe.dev/db/dbgen"
	"lowlife.exe.dev/discord"
	"lowlife.exe.dev/duel"
	"lowlife.exe.dev/game"
)

// combatant loads a player's equipped kit and stats for a duel.
func (s *Server) combatant(ctx context.Context, guildID, userID int64, name string) (duel.Combatant, error) {
	ctx, span := StartDBSpan(ctx, "load_kit", attribute.Int64("discord.user", userID))
	defer span.End()
	if err := s.Inventory.EnsurePlayer(ctx, guildID, userID, name); err != nil {
		RecordError(span, err)
		return duel.Combatant{}, err
	}
	kit, stats, err := s.Inventory.Kit(ctx, guildID, userID)
	if err != nil {
		RecordError(span, err)
		return duel.Combatant{}, err
	}
	return duel.Combatant{UserID: userID, Name: name, Kit: kit, Stats: stats}, nil
}

func (s *Server) duelStart(ctx context.Context, actor Actor, opts []discord.CommandOption, resolved *discord.Resolved) discord.InteractionResponse {
	opt, ok := discord.Option(opts, "opponent")
	if !ok {
		return discord.Ephemeral("Pick an opponent.")
	}
	oppID, err := discord.ParseSnowflake(opt.String())
	if err != nil || oppID == 0 {
		return discord.Ephemeral("That opponent doesn't look like a user.")
	}
	if oppID == actor.UserID {
		return discord.Ephemeral(duel.Message(duel.ErrSelfDuel))
	}
	oppName := resolved.UserName(opt.String())
	if oppName == "" {
		oppName = "Opponent"
	}

	a, err := s.combatant(ctx, actor.GuildID, actor.UserID, actor.Name)
	if err != nil {
		return s.internalError("load challenger kit", err)
	}
	b, err := s.combatant(ctx, actor.GuildID, oppID, oppName)
	if err != nil {
		return s.internalError("load opponent kit", err)
	}
	return s.startDuel(ctx, actor, a, b)
}

func (s *Server) duelAI(ctx context.Context, actor Actor) discord.InteractionResponse {
	a, err := s.combatant(ctx, actor.GuildID, actor.UserID, actor.Name)
	if err != nil {
		return s.internalError("load challenger kit", err)
	}
	b, err := duel.DefenderCombatant(s.Catalog, actor.UserID)
	if err != nil {
		return s.internalError("build defender", err)
	}
	return s.startDuel(ctx, actor, a, b)
}

func (s *Server) startDuel(ctx context.Context, actor Actor, a, b duel.Combatant) discord.InteractionResponse {
	d, out, err := s.Duels.Start(duel.StartParams{Key: actor.Key(), A: a, B: b})
	if err != nil {
		return discord.Ephemeral(duel.Message(err))
	}
	observeDuelStarted(b.AI)
	s.settle(ctx, d, out)

	view := d.View()
	view.Content = fmt.Sprintf("⚔️ **%s** challenges **%s**!", a.Name, b.Name)
	view.AllowedMentions = discord.NoMentions
	return discord.Reply(view)
}

func (s *Server) duelReset(ctx context.Context, actor Actor) discord.InteractionResponse {
	d, out, err := s.Duels.Reset(actor.Key())
	if errors.Is(err, duel.ErrNoDuel) {
		return discord.Ephemeral("No duel to reset here.")
	}
	if err != nil {
		return discord.Ephemeral(duel.Message(err))
	}
	s.settle(ctx, d, out)
	view := d.View()
	if res, ok := d.Result(); ok {
		view.Content = res.Note()
	}
	view.AllowedMentions = discord.NoMentions
	return discord.Reply(view)
}

func (s *Server) handleComponent(ctx context.Context, actor Actor, data discord.ComponentData) discord.InteractionResponse {
	a, ok := duel.ParseAction(data.CustomID)
	if !ok {
		return discord.Ephemeral("That button no longer does anything.")
	}
	d, out, err := s.Duels.Act(actor.Key(), actor.UserID, a)
	if err != nil {
		return discord.Ephemeral(duel.Message(err))
	}
	DuelActionsTotal.WithLabelValues(string(a)).Inc()
	s.settle(ctx, d, out)
	return discord.Update(d.View())
}

// settle applies an outcome's side effects: spent grenades, hostages and
// the stored result.
func (s *Server) settle(ctx context.Context, d *duel.Duel, out duel.Outcome) {
	k := d.Key()
	ai := map[int64]bool{}
	for _, f := range d.Fighters() {
		ai[f.UserID] = f.AI
	}
	for _, id := range out.GrenadeThrowers {
		if ai[id] {
			continue
		}
		ok, err := s.Inventory.ConsumeTagged(ctx, k.GuildID, id, game.GrenadeTag)
		if err != nil {
			slog.Error("consume grenade", "guild", k.GuildID, "user", id, "error", err)
		} else if !ok {
			slog.Warn("grenade thrown but none in inventory", "guild", k.GuildID, "user", id)
		}
	}
	if kn := out.Kidnap; kn != nil && !ai[kn.VictorID] {
		if _, err := s.Inventory.AddHostage(ctx, k.GuildID, kn.VictorID, kn.TargetID, kn.TargetName); err != nil {
			slog.Error("add hostage", "guild", k.GuildID, "victor", kn.VictorID, "error", err)
		}
	}
	if out.Finished && out.Result != nil {
		s.recordResult(ctx, k, *out.Result)
	}
}

func (s *Server) recordResult(ctx context.Context, k duel.Key, res duel.Result) {
	observeDuelFinished(res.Kind)
	ctx, span := StartDBSpan(ctx, "create_duel_result", attribute.String("duel.outcome", string(res.Kind)))
	defer span.End()

	p := dbgen.CreateDuelResultParams{
		GuildID:    k.GuildID,
		ChannelID:  k.ChannelID,
		Outcome:    string(res.Kind),
		Rounds:     int64(res.Rounds),
		FinishedAt: time.Now().UTC(),
	}
	if res.WinnerID != 0 {
		p.WinnerID, p.LoserID = &res.WinnerID, &res.LoserID
	}
	if res.Cause != "" {
		p.Cause = &res.Cause
	}
	if res.Weapon != "" {
		p.Weapon = &res.Weapon
	}
	if _, err := dbgen.New(s.DB).CreateDuelResult(ctx, p); err != nil {
		RecordError(span, err)
		slog.Error("record duel result", "guild", k.GuildID, "channel", k.ChannelID, "error", err)
		return
	}
	slog.Info("duel finished", "guild", k.GuildID, "channel", k.ChannelID, "outcome", res.Kind, "rounds", res.Rounds)
}

// HandleExpired records a duel the sweeper timed out and tells its channel.
func (s *Server) HandleExpired(ctx context.Context, e duel.Expired) {
	s.settle(ctx, e.Duel, e.Outcome)
	res, ok := e.Duel.Result()
	if !ok {
		return
	}
	if !s.Discord.HasToken() {
		slog.Info("duel timed out; no bot token to announce it", "channel", e.Duel.Key().ChannelID)
		return
	}
	msg := discord.MessageSend{
		Content:         res.Note(),
		Embeds:          []discord.Embed{e.Duel.HUD()},
		AllowedMentions: discord.NoMentions,
	}
	channel := discord.FormatSnowflake(e.Duel.Key().ChannelID)
	if _, err := s.Discord.SendMessage(ctx, channel, msg); err != nil {
		slog.Warn("announce duel timeout", "channel", channel, "error", err)
	}
}

func (s *Server) internalError(what string, err error) discord.InteractionResponse {
	slog.Error(what, "error", err)
	return discord.Ephemeral("Something went wrong. Try again in a moment.")
}
