package discord

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/time/rate"
)

func TestVerifyRequest(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	key, err := ParsePublicKey(hex.EncodeToString(pub))
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	body := `{"type":1}`
	ts := "1700000000"
	sig := hex.EncodeToString(ed25519.Sign(priv, []byte(ts+body)))

	tests := []struct {
		name string
		ts   string
		body string
		sig  string
		key  ed25519.PublicKey
		want bool
	}{
		{"valid", ts, body, sig, key, true},
		{"tampered body", ts, `{"type":2}`, sig, key, false},
		{"other timestamp", "1700000001", body, sig, key, false},
		{"not hex", ts, body, "zz", key, false},
		{"empty signature", ts, body, "", key, false},
		{"empty timestamp", "", body, sig, key, false},
		{"no key", ts, body, sig, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/interactions", strings.NewReader(tt.body))
			r.Header.Set("X-Signature-Timestamp", tt.ts)
			r.Header.Set("X-Signature-Ed25519", tt.sig)
			if got := VerifyRequest(r, tt.key); got != tt.want {
				t.Errorf("VerifyRequest = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifyRequestKeepsBody(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(nil)
	body := `{"type":1}`
	r := httptest.NewRequest(http.MethodPost, "/interactions", strings.NewReader(body))
	r.Header.Set("X-Signature-Timestamp", "1")
	r.Header.Set("X-Signature-Ed25519", hex.EncodeToString(ed25519.Sign(priv, []byte("1"+body))))
	if !VerifyRequest(r, pub) {
		t.Fatal("VerifyRequest = false, want true")
	}
	got, _ := io.ReadAll(r.Body)
	if string(got) != body {
		t.Errorf("body after verify = %q, want %q", got, body)
	}
}

func TestParsePublicKeyErrors(t *testing.T) {
	for _, in := range []string{"", "abc", strings.Repeat("00", 31)} {
		if _, err := ParsePublicKey(in); !errors.Is(err, ErrBadPublicKey) {
			t.Errorf("ParsePublicKey(%q) err = %v, want ErrBadPublicKey", in, err)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 5, "hell…"},
		{"héllo wörld", 4, "hél…"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestEmbedLimits(t *testing.T) {
	e := NewEmbed(strings.Repeat("t", 300), strings.Repeat("d", 5000), ColorBlurple)
	if n := utf8.RuneCountInString(e.Title); n != MaxTitle {
		t.Errorf("title runes = %d, want %d", n, MaxTitle)
	}
	if n := utf8.RuneCountInString(e.Description); n != MaxDescription {
		t.Errorf("description runes = %d, want %d", n, MaxDescription)
	}
	for i := 0; i < MaxFields; i++ {
		if !e.AddField("f", strings.Repeat("v", 2000), true) {
			t.Fatalf("AddField %d refused", i)
		}
	}
	if e.AddField("extra", "x", false) {
		t.Error("26th field accepted")
	}
	if n := utf8.RuneCountInString(e.Fields[0].Value); n != MaxFieldValue {
		t.Errorf("field value runes = %d, want %d", n, MaxFieldValue)
	}
	e2 := Embed{}
	e2.AddField("", "", false)
	if e2.Fields[0].Name != ZeroWidth || e2.Fields[0].Value != ZeroWidth {
		t.Errorf("empty field = %+v, want zero width placeholders", e2.Fields[0])
	}
}

func TestEmbedFit(t *testing.T) {
	tests := []struct {
		name       string
		desc       int
		fields     int
		wantFields int
		wantMore   bool
	}{
		{"under the cap", 100, 3, 3, false},
		{"description trimmed first", 4096, 1, 1, false},
		{"trailing fields dropped", 4096, 5, 4, true},
		{"many fields", 0, 25, 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEmbed("Title", strings.Repeat("d", tt.desc), ColorBlurple)
			for i := 0; i < tt.fields; i++ {
				e.AddField("name", strings.Repeat("v", MaxFieldValue), false)
			}
			e.SetFooter("footer", "")
			e.Fit()
			if n := e.Length(); n > MaxTotal {
				t.Errorf("Length = %d, want <= %d", n, MaxTotal)
			}
			if len(e.Fields) != tt.wantFields {
				t.Errorf("fields = %d, want %d", len(e.Fields), tt.wantFields)
			}
			if got := strings.HasSuffix(e.Footer.Text, moreNote); got != tt.wantMore {
				t.Errorf("footer = %q, more note = %v, want %v", e.Footer.Text, got, tt.wantMore)
			}
		})
	}
}

func TestRows(t *testing.T) {
	var buttons []Component
	for i := 0; i < 7; i++ {
		buttons = append(buttons, Button(ButtonSecondary, "b", "x"))
	}
	rows := Rows(buttons)
	if len(rows) != 2 || len(rows[0].Components) != 5 || len(rows[1].Components) != 2 {
		t.Errorf("Rows layout = %d rows", len(rows))
	}
	if got := Rows(nil); got == nil || len(got) != 0 {
		t.Errorf("Rows(nil) = %v, want empty non-nil slice", got)
	}
}

func TestInteractionDecode(t *testing.T) {
	raw := `{
		"id": "1", "application_id": "2", "type": 2, "token": "tok",
		"guild_id": "10", "channel_id": "20",
		"member": {"user": {"id": "30", "username": "rook", "global_name": "Rook"}, "permissions": "32"},
		"data": {"name": "inv", "options": [{"name": "give", "type": 1, "options": [
			{"name": "user", "type": 6, "value": "40"},
			{"name": "qty", "type": 4, "value": 3}
		]}], "resolved": {"users": {"40": {"id": "40", "username": "mal"}}}}
	}`
	var in Interaction
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if in.Actor().ID != "30" || in.ActorName() != "Rook" {
		t.Errorf("actor = %+v name %q", in.Actor(), in.ActorName())
	}
	if !in.Member.HasPermission(PermissionManageGuild) {
		t.Error("member should have Manage Server")
	}
	data, err := in.CommandData()
	if err != nil {
		t.Fatalf("CommandData: %v", err)
	}
	sub, opts := data.Subcommand()
	if sub != "give" {
		t.Errorf("subcommand = %q", sub)
	}
	user, _ := Option(opts, "user")
	if user.String() != "40" || data.Resolved.UserName("40") != "mal" {
		t.Errorf("user option = %q", user.String())
	}
	qty, _ := Option(opts, "qty")
	if n, err := qty.Int(); err != nil || n != 3 {
		t.Errorf("qty = %d, %v", n, err)
	}
}

func TestEphemeralJSON(t *testing.T) {
	b, err := json.Marshal(Ephemeral("Not your turn."))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	data := got["data"].(map[string]any)
	if data["flags"].(float64) != FlagEphemeral {
		t.Errorf("flags = %v, want %d", data["flags"], FlagEphemeral)
	}
	if comps, ok := data["components"].([]any); !ok || len(comps) != 0 {
		t.Errorf("components = %v, want []", data["components"])
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient("bot-token", WithBaseURL(srv.URL), WithRate(rate.Inf, 1))
}

func TestSendMessageWithFiles(t *testing.T) {
	var gotPayload struct {
		Embeds []struct {
			Thumbnail struct {
				URL string `json:"url"`
			} `json:"thumbnail"`
		} `json:"embeds"`
	}
	var gotFile string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/channels/55/messages" || r.Method != http.MethodPost {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bot bot-token" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		if err := json.Unmarshal([]byte(r.FormValue("payload_json")), &gotPayload); err != nil {
			t.Errorf("payload_json: %v", err)
		}
		f, hdr, err := r.FormFile("files[0]")
		if err != nil {
			t.Errorf("files[0]: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		gotFile = hdr.Filename + ":" + string(data)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"99","channel_id":"55"}`))
	})

	msg := MessageSend{Embeds: []Embed{{Title: "hi", Thumbnail: &EmbedImage{URL: AttachmentURL("seal.png")}}}}
	out, err := c.SendMessageWithFiles(context.Background(), "55", msg, []File{{Name: "seal.png", ContentType: "image/png", Data: []byte("PNG")}})
	if err != nil {
		t.Fatalf("SendMessageWithFiles: %v", err)
	}
	if out.ID != "99" || out.ChannelID != "55" {
		t.Errorf("message = %+v", out)
	}
	if gotFile != "seal.png:PNG" {
		t.Errorf("uploaded file = %q", gotFile)
	}
	if len(gotPayload.Embeds) != 1 || gotPayload.Embeds[0].Thumbnail.URL != "attachment://seal.png" {
		t.Errorf("embeds = %+v", gotPayload.Embeds)
	}
}

func TestUnknownChannel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Unknown Channel","code":10003}`))
	})
	_, err := c.SendMessage(context.Background(), "1", MessageSend{Content: "x"})
	if !errors.Is(err, ErrUnknownChannel) {
		t.Errorf("err = %v, want ErrUnknownChannel", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Errorf("err = %v, want wrapped 404 APIError", err)
	}
}

func TestNotFoundOtherRoutes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Unknown Application","code":10002}`))
	})
	_, err := c.RegisterCommands(context.Background(), "7", "", []ApplicationCommand{{Name: "duel", Description: "Duel"}})
	if errors.Is(err, ErrUnknownChannel) {
		t.Errorf("err = %v, should not be ErrUnknownChannel", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 10002 {
		t.Errorf("err = %v, want APIError code 10002", err)
	}
}

func TestUnknownWebhook(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Unknown Webhook","code":10015}`))
	})
	_, err := c.ExecuteWebhook(context.Background(), "https://discord.com/api/webhooks/1/abc", MessageSend{Content: "x"}, nil)
	if !errors.Is(err, ErrUnknownChannel) {
		t.Errorf("err = %v, want ErrUnknownChannel", err)
	}
}

func TestRetryAfterTooManyRequests(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"message":"You are being rate limited.","retry_after":0.01,"global":false}`))
			return
		}
		w.Write([]byte(`{"id":"5","channel_id":"1"}`))
	})
	out, err := c.SendMessage(context.Background(), "1", MessageSend{Content: "x"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if out.ID != "5" || hits.Load() != 2 {
		t.Errorf("id = %q after %d requests, want 5 after 2", out.ID, hits.Load())
	}
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Missing Access","code":50001}`))
	})
	_, err := c.SendMessage(context.Background(), "1", MessageSend{Content: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != 403 || apiErr.Code != 50001 || apiErr.Msg != "Missing Access" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestRegisterCommands(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/applications/7/guilds/8/commands" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var cmds []ApplicationCommand
		if err := json.NewDecoder(r.Body).Decode(&cmds); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len(cmds) != 1 || cmds[0].DefaultMemberPermissions == nil || *cmds[0].DefaultMemberPermissions != "32" {
			t.Errorf("commands sent = %+v", cmds)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"1","name":"duel","description":"Duel","default_member_permissions":"32"}]`))
	})
	perms := "32"
	got, err := c.RegisterCommands(context.Background(), "7", "8", []ApplicationCommand{{Name: "duel", Description: "Duel", DefaultMemberPermissions: &perms}})
	if err != nil {
		t.Fatalf("RegisterCommands: %v", err)
	}
	if diff := cmp.Diff([]ApplicationCommand{{Name: "duel", Description: "Duel"}}, got); diff != "" {
		t.Errorf("registered (-want +got):\n%s", diff)
	}
}

func TestExecuteWebhookNoAuth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/webhooks/1/abc" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("wait") != "true" {
			t.Errorf("wait = %q", r.URL.Query().Get("wait"))
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("webhook request should not send the bot token")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1"}`))
	})
	if _, err := c.ExecuteWebhook(context.Background(), "https://discord.com/api/webhooks/1/abc", MessageSend{Content: "x"}, nil); err != nil {
		t.Fatalf("ExecuteWebhook: %v", err)
	}
}

func TestParseWebhookURL(t *testing.T) {
	tests := []struct {
		in        string
		id, token string
		wantErr   bool
	}{
		{"https://discord.com/api/webhooks/123/tok", "123", "tok", false},
		{"https://discord.com/api/v10/webhooks/123/tok?thread_id=9", "123", "tok", false},
		{"https://discord.com/api/webhooks/123", "", "", true},
		{"https://example.com/hook", "", "", true},
	}
	for _, tt := range tests {
		id, token, err := parseWebhookURL(tt.in)
		if (err != nil) != tt.wantErr || id != tt.id || token != tt.token {
			t.Errorf("parseWebhookURL(%q) = %q, %q, %v", tt.in, id, token, err)
		}
	}
}

func TestNoToken(t *testing.T) {
	c := NewClient("")
	if _, err := c.SendMessage(context.Background(), "1", MessageSend{}); !errors.Is(err, ErrNoToken) {
		t.Errorf("err = %v, want ErrNoToken", err)
	}
}
