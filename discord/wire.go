// Package discord is a small client for the parts of the Discord API the bot
// uses: the HTTP interactions endpoint, messages, webhooks and application
// command registration.
package discord

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type InteractionType int

const (
	InteractionPing               InteractionType = 1
	InteractionApplicationCommand InteractionType = 2
	InteractionMessageComponent   InteractionType = 3
	InteractionAutocomplete       InteractionType = 4
	InteractionModalSubmit        InteractionType = 5
)

func (t InteractionType) String() string {
	switch t {
	case InteractionPing:
		return "ping"
	case InteractionApplicationCommand:
		return "command"
	case InteractionMessageComponent:
		return "component"
	case InteractionAutocomplete:
		return "autocomplete"
	case InteractionModalSubmit:
		return "modal"
	}
	return "unknown"
}

// Interaction is the payload Discord POSTs to the interactions endpoint.
type Interaction struct {
	ID            string          `json:"id"`
	ApplicationID string          `json:"application_id"`
	Type          InteractionType `json:"type"`
	Data          json.RawMessage `json:"data,omitempty"`
	GuildID       string          `json:"guild_id,omitempty"`
	ChannelID     string          `json:"channel_id,omitempty"`
	Member        *Member         `json:"member,omitempty"`
	User          *User           `json:"user,omitempty"`
	Token         string          `json:"token"`
	Message       *Message        `json:"message,omitempty"`
}

// Actor returns the invoking user. Guild interactions carry it on the
// member, DMs on the top-level user.
func (i Interaction) Actor() *User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// ActorName is the member nickname if set, otherwise the user's display name.
func (i Interaction) ActorName() string {
	if i.Member != nil && i.Member.Nick != "" {
		return i.Member.Nick
	}
	if u := i.Actor(); u != nil {
		return u.DisplayName()
	}
	return ""
}

func (i Interaction) CommandData() (CommandData, error) {
	var d CommandData
	if err := json.Unmarshal(i.Data, &d); err != nil {
		return CommandData{}, fmt.Errorf("decode command data: %w", err)
	}
	return d, nil
}

func (i Interaction) ComponentData() (ComponentData, error) {
	var d ComponentData
	if err := json.Unmarshal(i.Data, &d); err != nil {
		return ComponentData{}, fmt.Errorf("decode component data: %w", err)
	}
	return d, nil
}

type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name,omitempty"`
	Bot        bool   `json:"bot,omitempty"`
}

func (u User) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

type Member struct {
	User        *User  `json:"user,omitempty"`
	Nick        string `json:"nick,omitempty"`
	Permissions string `json:"permissions,omitempty"`
}

// Permission bits used by the bot.
const (
	PermissionManageGuild uint64 = 1 << 5
	PermissionAdmin       uint64 = 1 << 3
)

// HasPermission reports whether the member's resolved permissions include
// bit. Administrators have every permission.
func (m *Member) HasPermission(bit uint64) bool {
	if m == nil || m.Permissions == "" {
		return false
	}
	p, err := strconv.ParseUint(m.Permissions, 10, 64)
	if err != nil {
		return false
	}
	return p&PermissionAdmin != 0 || p&bit != 0
}

type Message struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	Content   string `json:"content,omitempty"`
}

type OptionType int

const (
	OptionSubCommand      OptionType = 1
	OptionSubCommandGroup OptionType = 2
	OptionString          OptionType = 3
	OptionInteger         OptionType = 4
	OptionBoolean         OptionType = 5
	OptionUser            OptionType = 6
	OptionChannel         OptionType = 7
)

type CommandData struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Type     int             `json:"type"`
	Options  []CommandOption `json:"options,omitempty"`
	Resolved *Resolved       `json:"resolved,omitempty"`
}

// Subcommand returns the first subcommand option and its options.
func (d CommandData) Subcommand() (string, []CommandOption) {
	for _, o := range d.Options {
		if o.Type == OptionSubCommand {
			return o.Name, o.Options
		}
	}
	return "", d.Options
}

type CommandOption struct {
	Name    string          `json:"name"`
	Type    OptionType      `json:"type"`
	Value   json.RawMessage `json:"value,omitempty"`
	Options []CommandOption `json:"options,omitempty"`
	Focused bool            `json:"focused,omitempty"`
}

// String returns the option value as a string. User and channel options
// carry snowflake ids as strings too.
func (o CommandOption) String() string {
	var s string
	if err := json.Unmarshal(o.Value, &s); err == nil {
		return s
	}
	return strings.Trim(string(o.Value), `"`)
}

func (o CommandOption) Int() (int64, error) {
	var n json.Number
	if err := json.Unmarshal(o.Value, &n); err != nil {
		return 0, fmt.Errorf("option %s: %w", o.Name, err)
	}
	return n.Int64()
}

// Option finds an option by name.
func Option(opts []CommandOption, name string) (CommandOption, bool) {
	for _, o := range opts {
		if o.Name == name {
			return o, true
		}
	}
	return CommandOption{}, false
}

type Resolved struct {
	Users   map[string]User   `json:"users,omitempty"`
	Members map[string]Member `json:"members,omitempty"`
}

// UserName resolves a user id from a command to a display name.
func (r *Resolved) UserName(id string) string {
	if r == nil {
		return ""
	}
	if m, ok := r.Members[id]; ok && m.Nick != "" {
		return m.Nick
	}
	if u, ok := r.Users[id]; ok {
		return u.DisplayName()
	}
	return ""
}

type ComponentData struct {
	CustomID      string        `json:"custom_id"`
	ComponentType ComponentType `json:"component_type"`
}

type ResponseType int

const (
	ResponsePong                     ResponseType = 1
	ResponseChannelMessageWithSource ResponseType = 4
	ResponseDeferredChannelMessage   ResponseType = 5
	ResponseDeferredUpdateMessage    ResponseType = 6
	ResponseUpdateMessage            ResponseType = 7
)

// FlagEphemeral makes a response visible only to the invoking user.
const FlagEphemeral = 1 << 6

type InteractionResponse struct {
	Type ResponseType  `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

type ResponseData struct {
	Content         string           `json:"content,omitempty"`
	Embeds          []Embed          `json:"embeds,omitempty"`
	Components      []Component      `json:"components"`
	Flags           int              `json:"flags,omitempty"`
	AllowedMentions *AllowedMentions `json:"allowed_mentions,omitempty"`
}

type AllowedMentions struct {
	Parse []string `json:"parse"`
}

// NoMentions suppresses every ping in a message.
var NoMentions = &AllowedMentions{Parse: []string{}}

func Pong() InteractionResponse {
	return InteractionResponse{Type: ResponsePong}
}

// Reply is a public message in response to an interaction.
func Reply(data ResponseData) InteractionResponse {
	if data.Components == nil {
		data.Components = []Component{}
	}
	return InteractionResponse{Type: ResponseChannelMessageWithSource, Data: &data}
}

// Ephemeral is a text reply only the invoking user can see.
func Ephemeral(content string) InteractionResponse {
	return InteractionResponse{
		Type: ResponseChannelMessageWithSource,
		Data: &ResponseData{Content: content, Flags: FlagEphemeral, Components: []Component{}, AllowedMentions: NoMentions},
	}
}

// EphemeralEmbed is an embed reply only the invoking user can see.
func EphemeralEmbed(e Embed) InteractionResponse {
	return InteractionResponse{
		Type: ResponseChannelMessageWithSource,
		Data: &ResponseData{Embeds: []Embed{e}, Flags: FlagEphemeral, Components: []Component{}},
	}
}

// Update edits the message a component was attached to.
func Update(data ResponseData) InteractionResponse {
	if data.Components == nil {
		data.Components = []Component{}
	}
	return InteractionResponse{Type: ResponseUpdateMessage, Data: &data}
}

type ComponentType int

const (
	ComponentActionRow ComponentType = 1
	ComponentButton    ComponentType = 2
)

type ButtonStyle int

const (
	ButtonPrimary   ButtonStyle = 1
	ButtonSecondary ButtonStyle = 2
	ButtonSuccess   ButtonStyle = 3
	ButtonDanger    ButtonStyle = 4
	ButtonLink      ButtonStyle = 5
)

// MaxButtonsPerRow is Discord's limit for one action row.
const MaxButtonsPerRow = 5

type Component struct {
	Type       ComponentType `json:"type"`
	Components []Component   `json:"components,omitempty"`
	Style      ButtonStyle   `json:"style,omitempty"`
	Label      string        `json:"label,omitempty"`
	CustomID   string        `json:"custom_id,omitempty"`
	URL        string        `json:"url,omitempty"`
	Disabled   bool          `json:"disabled,omitempty"`
}

func Button(style ButtonStyle, label, customID string) Component {
	return Component{Type: ComponentButton, Style: style, Label: label, CustomID: customID}
}

func ActionRow(buttons ...Component) Component {
	return Component{Type: ComponentActionRow, Components: buttons}
}

// Rows packs buttons into action rows of at most five.
func Rows(buttons []Component) []Component {
	rows := []Component{}
	for len(buttons) > 0 {
		n := min(len(buttons), MaxButtonsPerRow)
		rows = append(rows, ActionRow(buttons[:n]...))
		buttons = buttons[n:]
	}
	return rows
}

// ApplicationCommand is a slash command definition for bulk registration.
type ApplicationCommand struct {
	Name                     string             `json:"name"`
	Description              string             `json:"description"`
	Type                     int                `json:"type,omitempty"`
	Options                  []CommandOptionDef `json:"options,omitempty"`
	DefaultMemberPermissions *string            `json:"default_member_permissions,omitempty"`
	DMPermission             *bool              `json:"dm_permission,omitempty"`
}

type CommandOptionDef struct {
	Type        OptionType         `json:"type"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Required    bool               `json:"required,omitempty"`
	Choices     []OptionChoice     `json:"choices,omitempty"`
	Options     []CommandOptionDef `json:"options,omitempty"`
	MinValue    *float64           `json:"min_value,omitempty"`
	MaxValue    *float64           `json:"max_value,omitempty"`
}

type OptionChoice struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// ParseSnowflake converts a Discord id to an int64. An empty id is 0.
func ParseSnowflake(id string) (int64, error) {
	if id == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse snowflake %q: %w", id, err)
	}
	return n, nil
}

func FormatSnowflake(id int64) string {
	return strconv.FormatInt(id, 10)
}
