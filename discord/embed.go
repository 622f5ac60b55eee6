package discord

import (
	"time"
	"unicode/utf8"
)

// Embed limits enforced by Discord.
const (
	MaxTitle       = 256
	MaxDescription = 4096
	MaxFieldName   = 256
	MaxFieldValue  = 1024
	MaxFields      = 25
	MaxFooterText  = 2048
	// MaxTotal caps title, description, field names and values, footer
	// text and author name together.
	MaxTotal = 6000
)

// Colors used across the bot.
const (
	ColorBlurple  = 0x5865F2
	ColorDarkGold = 0xC27C0E
	ColorRed      = 0xED4245
)

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Author      *EmbedAuthor `json:"author,omitempty"`
	Thumbnail   *EmbedImage  `json:"thumbnail,omitempty"`
	Image       *EmbedImage  `json:"image,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

type EmbedAuthor struct {
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type EmbedImage struct {
	URL string `json:"url"`
}

type EmbedFooter struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// ZeroWidth is used for blank field names and values.
const ZeroWidth = "\u200b"

// NewEmbed returns an embed with the title and description cut to fit.
func NewEmbed(title, description string, color int) Embed {
	return Embed{
		Title:       Truncate(title, MaxTitle),
		Description: Truncate(description, MaxDescription),
		Color:       color,
	}
}

// AddField appends a field, truncating name and value. Fields past the
// 25th are dropped and AddField reports false.
func (e *Embed) AddField(name, value string, inline bool) bool {
	if len(e.Fields) >= MaxFields {
		return false
	}
	if name == "" {
		name = ZeroWidth
	}
	if value == "" {
		value = ZeroWidth
	}
	e.Fields = append(e.Fields, EmbedField{
		Name:   Truncate(name, MaxFieldName),
		Value:  Truncate(value, MaxFieldValue),
		Inline: inline,
	})
	return true
}

func (e *Embed) SetFooter(text, iconURL string) {
	e.Footer = &EmbedFooter{Text: Truncate(text, MaxFooterText), IconURL: iconURL}
}

func (e *Embed) SetTimestamp(t time.Time) {
	if t.IsZero() {
		e.Timestamp = ""
		return
	}
	e.Timestamp = t.UTC().Format(time.RFC3339)
}

// Length counts the characters that go toward MaxTotal.
func (e Embed) Length() int {
	n := utf8.RuneCountInString(e.Title) + utf8.RuneCountInString(e.Description)
	for _, f := range e.Fields {
		n += utf8.RuneCountInString(f.Name) + utf8.RuneCountInString(f.Value)
	}
	if e.Footer != nil {
		n += utf8.RuneCountInString(e.Footer.Text)
	}
	if e.Author != nil {
		n += utf8.RuneCountInString(e.Author.Name)
	}
	return n
}

const moreNote = "…and more"

// Fit brings the embed under MaxTotal. The description is cut to one
// field's worth first, then trailing fields are dropped and the footer
// says so, then the description and title give up the rest.
func (e *Embed) Fit() {
	if e.Length() <= MaxTotal {
		return
	}
	e.cutDescription(MaxFieldValue)

	suffix := utf8.RuneCountInString(" • " + moreNote)
	dropped := false
	for len(e.Fields) > 0 && e.Length() > MaxTotal-suffix && (dropped || e.Length() > MaxTotal) {
		e.Fields = e.Fields[:len(e.Fields)-1]
		dropped = true
	}
	if dropped {
		if e.Footer == nil {
			e.Footer = &EmbedFooter{}
		}
		text := moreNote
		if e.Footer.Text != "" {
			text = e.Footer.Text + " • " + moreNote
		}
		e.Footer.Text = Truncate(text, MaxFooterText)
	}

	e.cutDescription(0)
	if over := e.Length() - MaxTotal; over > 0 {
		e.Title = Truncate(e.Title, utf8.RuneCountInString(e.Title)-over)
	}
}

// cutDescription shortens the description toward MaxTotal, keeping at
// least floor runes.
func (e *Embed) cutDescription(floor int) {
	over := e.Length() - MaxTotal
	if over <= 0 {
		return
	}
	n := utf8.RuneCountInString(e.Description)
	if keep := max(n-over, floor); keep < n {
		e.Description = Truncate(e.Description, keep)
	}
}

// Truncate cuts s to at most n runes, ending with an ellipsis when cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
