package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

var (
	// ErrUnknownChannel is returned when Discord reports the target channel
	// or webhook no longer exists.
	ErrUnknownChannel = errors.New("discord: unknown channel")
	ErrNoToken        = errors.New("discord: bot token not configured")
	ErrBadWebhookURL  = errors.New("discord: malformed webhook url")
)

// APIError is a non-2xx response from Discord.
type APIError struct {
	Status int
	Code   int
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord: HTTP %d: %s (code %d)", e.Status, e.Msg, e.Code)
}

// MessageSend is the body of a channel message or webhook execution.
type MessageSend struct {
	Content         string
	Embeds          []Embed
	Components      []Component
	AllowedMentions *AllowedMentions
	Username        string
	AvatarURL       string
}

// File is an upload referenced from an embed as attachment://Name.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// AttachmentURL is how an embed points at an uploaded file.
func AttachmentURL(name string) string {
	return "attachment://" + name
}

// Client wraps two discordgo sessions: one authenticated with the bot token
// and one without credentials for webhook executions.
type Client struct {
	token   string
	base    string
	http    *http.Client
	limiter *rate.Limiter

	bot  *discordgo.Session
	hook *discordgo.Session
}

type ClientOption func(*Client)

// WithBaseURL sends every request to another API root, mainly for tests.
// Paths keep their shape below the versioned prefix.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) { c.base = strings.TrimRight(base, "/") }
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithRate sets the request pacing. The default is 5 requests per second
// with a burst of 5, matching Discord's per-route message limit.
func WithRate(r rate.Limit, burst int) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

// NewClient returns a REST client. token may be empty when only webhooks
// are used.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}
	for _, o := range opts {
		o(c)
	}
	if c.base != "" {
		hc := *c.http
		hc.Transport = &rebaseTransport{base: c.base, next: c.http.Transport}
		c.http = &hc
	}

	auth := ""
	if token != "" {
		auth = "Bot " + token
	}
	c.bot = newSession(auth, c.http)
	c.hook = newSession("", c.http)
	return c
}

func newSession(auth string, hc *http.Client) *discordgo.Session {
	s, _ := discordgo.New(auth)
	s.Client = hc
	s.UserAgent = "DiscordBot (https://lowlife.exe.dev, 1.0)"
	return s
}

func (c *Client) HasToken() bool { return c != nil && c.token != "" }

// SendMessage posts a message to a channel.
func (c *Client) SendMessage(ctx context.Context, channelID string, msg MessageSend) (Message, error) {
	return c.SendMessageWithFiles(ctx, channelID, msg, nil)
}

// SendMessageWithFiles posts a message with uploads as multipart
// payload_json plus files[n].
func (c *Client) SendMessageWithFiles(ctx context.Context, channelID string, msg MessageSend, files []File) (Message, error) {
	if c.token == "" {
		return Message{}, ErrNoToken
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return Message{}, fmt.Errorf("rate wait: %w", err)
	}
	data := &discordgo.MessageSend{
		Content:         msg.Content,
		Embeds:          toEmbeds(msg.Embeds),
		Components:      toComponents(msg.Components),
		Files:           toFiles(files),
		AllowedMentions: toMentions(msg.AllowedMentions),
	}
	m, err := c.bot.ChannelMessageSendComplex(channelID, data, discordgo.WithContext(ctx))
	if err != nil {
		return Message{}, restError(err)
	}
	return fromMessage(m), nil
}

// ExecuteWebhook posts through a webhook URL and waits for the created message.
func (c *Client) ExecuteWebhook(ctx context.Context, webhookURL string, msg MessageSend, files []File) (Message, error) {
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return Message{}, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return Message{}, fmt.Errorf("rate wait: %w", err)
	}
	params := &discordgo.WebhookParams{
		Content:         msg.Content,
		Username:        msg.Username,
		AvatarURL:       msg.AvatarURL,
		Embeds:          toEmbeds(msg.Embeds),
		Components:      toComponents(msg.Components),
		Files:           toFiles(files),
		AllowedMentions: toMentions(msg.AllowedMentions),
	}
	m, err := c.hook.WebhookExecute(id, token, true, params, discordgo.WithContext(ctx))
	if err != nil {
		return Message{}, restError(err)
	}
	return fromMessage(m), nil
}

// RegisterCommands bulk-overwrites the application's commands, globally
// when guildID is empty.
func (c *Client) RegisterCommands(ctx context.Context, appID, guildID string, cmds []ApplicationCommand) ([]ApplicationCommand, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate wait: %w", err)
	}
	out, err := c.bot.ApplicationCommandBulkOverwrite(appID, guildID, toCommands(cmds), discordgo.WithContext(ctx))
	if err != nil {
		return nil, restError(err)
	}
	return fromCommands(out), nil
}

// restError turns a discordgo failure into an *APIError. Unknown channel
// and unknown webhook codes also match ErrUnknownChannel.
func restError(err error) error {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return err
	}
	apiErr := &APIError{}
	if rest.Response != nil {
		apiErr.Status = rest.Response.StatusCode
	}
	if rest.Message != nil {
		apiErr.Code = rest.Message.Code
		apiErr.Msg = rest.Message.Message
	}
	if apiErr.Msg == "" {
		apiErr.Msg = strings.TrimSpace(string(rest.ResponseBody))
	}
	switch apiErr.Code {
	case discordgo.ErrCodeUnknownChannel, discordgo.ErrCodeUnknownWebhook:
		return fmt.Errorf("%w: %w", ErrUnknownChannel, apiErr)
	}
	return apiErr
}

// parseWebhookURL pulls the id and token from .../webhooks/{id}/{token}.
func parseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrBadWebhookURL, err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, p := range parts {
		if p == "webhooks" && i+2 < len(parts) && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", ErrBadWebhookURL
}

// rebaseTransport rewrites discordgo's fixed API root onto base.
type rebaseTransport struct {
	base string
	next http.RoundTripper
}

func (t *rebaseTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	raw := req.URL.String()
	if !strings.HasPrefix(raw, discordgo.EndpointAPI) {
		return t.transport().RoundTrip(req)
	}
	u, err := url.Parse(t.base + "/" + strings.TrimPrefix(raw, discordgo.EndpointAPI))
	if err != nil {
		return nil, fmt.Errorf("rebase %s: %w", raw, err)
	}
	out := req.Clone(req.Context())
	out.URL = u
	out.Host = u.Host
	return t.transport().RoundTrip(out)
}

func (t *rebaseTransport) transport() http.RoundTripper {
	if t.next != nil {
		return t.next
	}
	return http.DefaultTransport
}

func toFiles(files []File) []*discordgo.File {
	if len(files) == 0 {
		return nil
	}
	out := make([]*discordgo.File, len(files))
	for i, f := range files {
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		out[i] = &discordgo.File{Name: f.Name, ContentType: ct, Reader: bytes.NewReader(f.Data)}
	}
	return out
}

func fromMessage(m *discordgo.Message) Message {
	if m == nil {
		return Message{}
	}
	return Message{ID: m.ID, ChannelID: m.ChannelID, Content: m.Content}
}
