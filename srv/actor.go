package srv

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"lowlife.exe.dev/discord"
	"lowlife.exe.dev/duel"
)

var errNoActor = errors.New("interaction has no user")

// Actor is who sent an interaction and where.
type Actor struct {
	UserID  int64
	User    string // snowflake as sent
	Name    string
	GuildID int64
	Channel int64
}

// Key is the duel registry key for the actor's channel.
func (a Actor) Key() duel.Key {
	return duel.Key{GuildID: a.GuildID, ChannelID: a.Channel}
}

// ActorOf extracts the invoking user and channel from an interaction.
func ActorOf(in discord.Interaction) (Actor, error) {
	u := in.Actor()
	if u == nil || u.ID == "" {
		return Actor{}, errNoActor
	}
	uid, err := discord.ParseSnowflake(u.ID)
	if err != nil {
		return Actor{}, err
	}
	gid, err := discord.ParseSnowflake(in.GuildID)
	if err != nil {
		return Actor{}, err
	}
	cid, err := discord.ParseSnowflake(in.ChannelID)
	if err != nil {
		return Actor{}, err
	}
	return Actor{UserID: uid, User: u.ID, Name: in.ActorName(), GuildID: gid, Channel: cid}, nil
}

// AddInteractionAttributes adds the interaction's origin as span attributes for observability
func AddInteractionAttributes(ctx context.Context, in discord.Interaction) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.String("discord.interaction.id", in.ID),
		attribute.String("discord.interaction.type", in.Type.String()),
		attribute.String("discord.guild.id", in.GuildID),
		attribute.String("discord.channel.id", in.ChannelID),
	)
	if u := in.Actor(); u != nil {
		span.SetAttributes(
			attribute.String("discord.user.id", u.ID),
			attribute.String("discord.user.name", u.Username),
		)
	}
	switch in.Type {
	case discord.InteractionApplicationCommand:
		if d, err := in.CommandData(); err == nil {
			name := d.Name
			if sub, _ := d.Subcommand(); sub != "" {
				name += " " + sub
			}
			span.SetAttributes(attribute.String("discord.command", name))
		}
	case discord.InteractionMessageComponent:
		if d, err := in.ComponentData(); err == nil {
			span.SetAttributes(attribute.String("discord.custom_id", d.CustomID))
		}
	}
}
