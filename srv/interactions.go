package srv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"lowlife.exe.dev/discord"
)

// Header names Discord signs interaction requests with.
const (
	HeaderSignature = "X-Signature-Ed25519"
	HeaderTimestamp = "X-Signature-Timestamp"
)

const slowDownMessage = "⏳ Slow down! You're sending actions too fast."

// HandleInteractions is the Discord interactions endpoint.
//
//	@Summary	Discord interactions webhook
//	@Accept		json
//	@Produce	json
//	@Param		X-Signature-Ed25519		header		string	true	"Request signature"
//	@Param		X-Signature-Timestamp	header		string	true	"Signed timestamp"
//	@Success	200						{object}	discord.InteractionResponse
//	@Failure	401						{string}	string	"invalid request signature"
//	@Router		/interactions [post]
func (s *Server) HandleInteractions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	if !discord.VerifyRequest(r, s.publicKey) {
		RecordSecurityEvent(ctx, "bad_signature",
			attribute.String("path", r.URL.Path),
			attribute.String("remote", r.RemoteAddr),
		)
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	var in discord.Interaction
	if err := json.Unmarshal(body, &in); err != nil {
		http.Error(w, "invalid interaction", http.StatusBadRequest)
		return
	}
	InteractionsTotal.WithLabelValues(in.Type.String()).Inc()
	AddInteractionAttributes(ctx, in)

	writeJSON(w, http.StatusOK, s.dispatch(ctx, in))
}

func (s *Server) dispatch(ctx context.Context, in discord.Interaction) discord.InteractionResponse {
	if in.Type == discord.InteractionPing {
		return discord.Pong()
	}
	actor, err := ActorOf(in)
	if err != nil {
		slog.Warn("interaction without actor", "id", in.ID, "error", err)
		return discord.Ephemeral("I couldn't tell who sent that.")
	}
	if !s.UserLimiter.AllowUser(actor.User) {
		RecordSecurityEvent(ctx, "rate_limited",
			attribute.String("rate_limit.key", "user:"+actor.User),
			attribute.String("rate_limit.key_type", "user"),
		)
		return discord.Ephemeral(slowDownMessage)
	}

	switch in.Type {
	case discord.InteractionApplicationCommand:
		data, err := in.CommandData()
		if err != nil {
			return discord.Ephemeral("That command payload was malformed.")
		}
		return s.handleCommand(ctx, in, actor, data)
	case discord.InteractionMessageComponent:
		data, err := in.ComponentData()
		if err != nil {
			return discord.Ephemeral("That button payload was malformed.")
		}
		return s.handleComponent(ctx, actor, data)
	}
	return discord.Ephemeral("That interaction type isn't supported.")
}

func (s *Server) handleCommand(ctx context.Context, in discord.Interaction, actor Actor, data discord.CommandData) discord.InteractionResponse {
	sub, opts := data.Subcommand()
	if actor.GuildID == 0 {
		return discord.Ephemeral("Use this command in a server channel.")
	}
	switch data.Name {
	case "duel":
		switch sub {
		case "start":
			return s.duelStart(ctx, actor, opts, data.Resolved)
		case "ai":
			return s.duelAI(ctx, actor)
		case "reset":
			return s.duelReset(ctx, actor)
		}
	case "inv":
		switch sub {
		case "show":
			return s.invShow(ctx, actor)
		case "equip":
			return s.invEquip(ctx, actor, opts)
		case "unequip":
			return s.invUnequip(ctx, actor, opts)
		case "listitems":
			return s.invListItems()
		case "give":
			return s.invGive(ctx, in, actor, opts, data.Resolved)
		}
	}
	slog.Warn("unknown command", "name", data.Name, "sub", sub)
	return discord.Ephemeral("Unknown command.")
}
