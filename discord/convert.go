package discord

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
)

func toEmbeds(embeds []Embed) []*discordgo.MessageEmbed {
	if len(embeds) == 0 {
		return nil
	}
	out := make([]*discordgo.MessageEmbed, len(embeds))
	for i, e := range embeds {
		me := &discordgo.MessageEmbed{
			Title:       e.Title,
			Description: e.Description,
			URL:         e.URL,
			Color:       e.Color,
			Timestamp:   e.Timestamp,
		}
		if e.Author != nil {
			me.Author = &discordgo.MessageEmbedAuthor{Name: e.Author.Name, URL: e.Author.URL, IconURL: e.Author.IconURL}
		}
		if e.Thumbnail != nil {
			me.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.Thumbnail.URL}
		}
		if e.Image != nil {
			me.Image = &discordgo.MessageEmbedImage{URL: e.Image.URL}
		}
		if e.Footer != nil {
			me.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer.Text, IconURL: e.Footer.IconURL}
		}
		for _, f := range e.Fields {
			me.Fields = append(me.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
		}
		out[i] = me
	}
	return out
}

func toComponents(comps []Component) []discordgo.MessageComponent {
	if len(comps) == 0 {
		return nil
	}
	out := make([]discordgo.MessageComponent, 0, len(comps))
	for _, c := range comps {
		switch c.Type {
		case ComponentActionRow:
			out = append(out, discordgo.ActionsRow{Components: toComponents(c.Components)})
		case ComponentButton:
			out = append(out, discordgo.Button{
				Label:    c.Label,
				Style:    discordgo.ButtonStyle(c.Style),
				CustomID: c.CustomID,
				URL:      c.URL,
				Disabled: c.Disabled,
			})
		}
	}
	return out
}

func toMentions(m *AllowedMentions) *discordgo.MessageAllowedMentions {
	if m == nil {
		return nil
	}
	parse := make([]discordgo.AllowedMentionType, len(m.Parse))
	for i, p := range m.Parse {
		parse[i] = discordgo.AllowedMentionType(p)
	}
	return &discordgo.MessageAllowedMentions{Parse: parse}
}

func toCommands(cmds []ApplicationCommand) []*discordgo.ApplicationCommand {
	out := make([]*discordgo.ApplicationCommand, len(cmds))
	for i, c := range cmds {
		ac := &discordgo.ApplicationCommand{
			Type:         discordgo.ApplicationCommandType(c.Type),
			Name:         c.Name,
			Description:  c.Description,
			Options:      toOptions(c.Options),
			DMPermission: c.DMPermission,
		}
		if c.DefaultMemberPermissions != nil {
			if p, err := strconv.ParseInt(*c.DefaultMemberPermissions, 10, 64); err == nil {
				ac.DefaultMemberPermissions = &p
			}
		}
		out[i] = ac
	}
	return out
}

func toOptions(opts []CommandOptionDef) []*discordgo.ApplicationCommandOption {
	if len(opts) == 0 {
		return nil
	}
	out := make([]*discordgo.ApplicationCommandOption, len(opts))
	for i, o := range opts {
		ao := &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionType(o.Type),
			Name:        o.Name,
			Description: o.Description,
			Required:    o.Required,
			Options:     toOptions(o.Options),
			MinValue:    o.MinValue,
		}
		if o.MaxValue != nil {
			ao.MaxValue = *o.MaxValue
		}
		for _, ch := range o.Choices {
			ao.Choices = append(ao.Choices, &discordgo.ApplicationCommandOptionChoice{Name: ch.Name, Value: ch.Value})
		}
		out[i] = ao
	}
	return out
}

func fromCommands(cmds []*discordgo.ApplicationCommand) []ApplicationCommand {
	out := make([]ApplicationCommand, 0, len(cmds))
	for _, c := range cmds {
		if c == nil {
			continue
		}
		out = append(out, ApplicationCommand{
			Name:         c.Name,
			Description:  c.Description,
			Type:         int(c.Type),
			DMPermission: c.DMPermission,
		})
	}
	return out
}
