package updates

import (
	"strings"
	"time"

	"lowlife.exe.dev/discord"
)

// Art holds the resolved image URLs for an update embed. Local files are
// referenced with attachment:// URLs.
type Art struct {
	ThumbnailURL string
	FooterURL    string
}

// BuildEmbed renders an entry as an update embed.
func BuildEmbed(e Entry, art Art, project string) discord.Embed {
	title := "📜 " + project + " — v" + e.Version
	if e.Unreleased {
		title = "📜 " + project + " — Unreleased"
	}
	em := discord.NewEmbed(title, e.Summary, discord.ColorDarkGold)
	for _, s := range e.Sections {
		if len(s.Items) == 0 {
			continue
		}
		lines := make([]string, len(s.Items))
		for i, it := range s.Items {
			lines[i] = "• " + it
		}
		em.AddField(s.Name, strings.Join(lines, "\n"), false)
	}
	if t, err := time.Parse(time.DateOnly, e.Date); err == nil {
		em.SetTimestamp(t)
	}
	if art.ThumbnailURL != "" {
		em.Thumbnail = &discord.EmbedImage{URL: art.ThumbnailURL}
	}
	footer := project
	if e.Date != "" {
		footer += " • " + e.Date
	}
	em.SetFooter(footer, art.FooterURL)
	em.Fit()
	return em
}
