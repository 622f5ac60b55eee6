package srv

import (
	"context"
	"crypto/ed25519"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"lowlife.exe.dev/db"
	"lowlife.exe.dev/db/dbgen"
	"lowlife.exe.dev/discord"
	"lowlife.exe.dev/duel"
	"lowlife.exe.dev/game"
	"lowlife.exe.dev/updates"
)

// Messenger is the part of the Discord REST client the server needs.
type Messenger interface {
	updates.Sender
	SendMessage(ctx context.Context, channelID string, msg discord.MessageSend) (discord.Message, error)
	RegisterCommands(ctx context.Context, appID, guildID string, cmds []discord.ApplicationCommand) ([]discord.ApplicationCommand, error)
}

type Server struct {
	DB          *sql.DB
	Config      Config
	Catalog     *game.Catalog
	Inventory   *game.Inventory
	Duels       *duel.Registry
	Poster      *updates.Poster
	Discord     Messenger
	Markers     *MarkerClient
	APILimiter  *RateLimiter
	UserLimiter *RateLimiter

	publicKey  ed25519.PublicKey
	httpServer *http.Server
	closeOnce  sync.Once
}

// Option adjusts a Server before its database is opened.
type Option func(*Server)

// WithMessenger replaces the Discord client, mainly for tests.
func WithMessenger(m Messenger) Option {
	return func(s *Server) { s.Discord = m }
}

// WithMarkers sets the Honeycomb marker client.
func WithMarkers(mc *MarkerClient) Option {
	return func(s *Server) { s.Markers = mc }
}

func New(cfg Config, opts ...Option) (*Server, error) {
	srv := &Server{
		Config:      cfg,
		APILimiter:  NewRateLimiter(cfg.APIRateLimit, cfg.APIRateInterval, cfg.APIRateBurst),
		UserLimiter: NewRateLimiter(cfg.InteractionRateLimit, cfg.InteractionRateInterval, cfg.InteractionRateBurst),
	}
	for _, o := range opts {
		o(srv)
	}
	proxies, err := ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		srv.Close()
		return nil, err
	}
	srv.APILimiter.SetTrustedProxies(proxies)
	if srv.Discord == nil {
		var copts []discord.ClientOption
		if cfg.APIBase != "" {
			copts = append(copts, discord.WithBaseURL(cfg.APIBase))
		}
		srv.Discord = discord.NewClient(cfg.BotToken, copts...)
	}
	if cfg.PublicKey != "" {
		key, err := discord.ParsePublicKey(cfg.PublicKey)
		if err != nil {
			return nil, err
		}
		srv.publicKey = key
	}

	catalog, err := game.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	srv.Catalog = catalog

	if err := srv.setUpDatabase(cfg.DBPath); err != nil {
		srv.Close()
		return nil, err
	}
	srv.Inventory = game.NewInventory(srv.DB, catalog)

	srv.Duels = duel.NewRegistry()
	srv.Duels.IdleTimeout = cfg.DuelIdleTimeout

	srv.Poster = updates.NewPoster(srv.DB, srv.Discord, updates.Config{
		Project:    cfg.ProjectName,
		ChannelID:  cfg.UpdatesChannelID,
		WebhookURL: cfg.UpdatesWebhook,
		SealPath:   cfg.SealPath,
		FooterPath: cfg.FooterPath,
	})
	srv.Poster.OnResult = srv.onUpdateResult
	return srv, nil
}

func (s *Server) setUpDatabase(dbPath string) error {
	wdb, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	s.DB = wdb
	if err := db.RunMigrations(wdb, s.Markers.CreateMigrationMarker); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Server) onUpdateResult(e updates.Entry, status updates.Status) {
	ObserveUpdatePost(e, status)
	if status == updates.StatusPosted || status == updates.StatusEdited {
		s.Markers.CreateUpdatePostedMarker(context.Background(), e.Version, string(status))
	}
}

// RegisterCommands syncs the slash commands with Discord. An empty guildID
// registers them globally.
func (s *Server) RegisterCommands(ctx context.Context, guildID string) error {
	if s.Config.ApplicationID == "" {
		return errors.New("DISCORD_APPLICATION_ID is not set")
	}
	cmds, err := s.Discord.RegisterCommands(ctx, s.Config.ApplicationID, guildID, Commands())
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	slog.Info("registered commands", "count", len(cmds), "guild", guildID)
	s.Markers.CreateCommandSyncMarker(ctx, len(cmds), guildID)
	return nil
}

// CheckChangelog posts the newest changelog entry unless it already went out.
// A missing changelog, one with only unreleased entries, and a missing
// channel are not errors.
func (s *Server) CheckChangelog(ctx context.Context) error {
	status, err := s.Poster.PostFile(ctx, s.Config.ChangelogPath, false)
	return quietPostErr("changelog", status, err)
}

// CheckReleaseNotes posts the notes the release tool wrote to the data dir.
func (s *Server) CheckReleaseNotes(ctx context.Context) error {
	status, err := s.Poster.PostNotes(ctx, updates.NotesSource{Dir: s.Config.DataDir}, false)
	return quietPostErr("release notes", status, err)
}

func quietPostErr(source string, status updates.Status, err error) error {
	switch {
	case err == nil:
		slog.Debug("updates: checked", "source", source, "status", status)
		return nil
	case errors.Is(err, os.ErrNotExist), errors.Is(err, updates.ErrNoEntries), errors.Is(err, updates.ErrNoChannel):
		slog.Debug("updates: nothing to post", "source", source, "reason", err)
		return nil
	}
	return err
}

// HandleHealth reports whether the database is reachable.
//
//	@Summary	Health check
//	@Produce	plain
//	@Success	200	{string}	string	"ok"
//	@Failure	503	{string}	string	"unhealthy: database unreachable"
//	@Router		/health [get]
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	// Check database connection
	if err := s.DB.PingContext(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintln(w, "unhealthy: database unreachable")
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

// HandleChangelog returns the parsed changelog, newest first.
//
//	@Summary	Changelog entries
//	@Produce	json
//	@Success	200	{array}	updates.Entry
//	@Failure	404	{object}	map[string]string
//	@Router		/api/changelog [get]
func (s *Server) HandleChangelog(w http.ResponseWriter, r *http.Request) {
	raw, err := os.ReadFile(s.Config.ChangelogPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no changelog"})
			return
		}
		slog.Error("read changelog", "path", s.Config.ChangelogPath, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "read changelog"})
		return
	}
	entries, err := updates.Parse(string(raw))
	if errors.Is(err, updates.ErrNoEntries) {
		entries = []updates.Entry{}
	} else if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// postedUpdateJSON is one row of the posted_updates ledger.
type postedUpdateJSON struct {
	Version  string    `json:"version"`
	Digest   string    `json:"digest"`
	State    string    `json:"state"`
	PostedAt time.Time `json:"posted_at"`
}

// HandlePostedUpdates lists the versions already announced.
//
//	@Summary	Posted updates
//	@Produce	json
//	@Success	200	{array}	postedUpdateJSON
//	@Router		/api/updates [get]
func (s *Server) HandlePostedUpdates(w http.ResponseWriter, r *http.Request) {
	ctx, span := StartDBSpan(r.Context(), "list_posted_updates")
	defer span.End()
	rows, err := s.Poster.History(ctx)
	if err != nil {
		RecordError(span, err)
		slog.Error("list posted updates", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list updates"})
		return
	}
	out := make([]postedUpdateJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, postedUpdateJSON{Version: row.Version, Digest: row.Digest, State: row.State, PostedAt: row.PostedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleItems returns the item catalog.
//
//	@Summary	Item catalog
//	@Produce	json
//	@Success	200	{array}	game.Template
//	@Router		/api/items [get]
func (s *Server) HandleItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Catalog.List())
}

// HandleDuelRecord returns a player's wins and losses in a guild.
//
//	@Summary	Duel record
//	@Produce	json
//	@Param		guild	path		string	true	"Guild id"
//	@Param		user	path		string	true	"User id"
//	@Success	200		{object}	dbgen.GetDuelRecordRow
//	@Failure	400		{object}	map[string]string
//	@Router		/api/guilds/{guild}/players/{user}/record [get]
func (s *Server) HandleDuelRecord(w http.ResponseWriter, r *http.Request) {
	guild, user := r.PathValue("guild"), r.PathValue("user")
	for _, v := range []struct{ field, value string }{{"guild", guild}, {"user", user}} {
		if err := ValidateSnowflake(v.field, v.value); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	gid, _ := discord.ParseSnowflake(guild)
	uid, _ := discord.ParseSnowflake(user)

	ctx, span := StartDBSpan(r.Context(), "get_duel_record")
	defer span.End()
	rec, err := dbgen.New(s.DB).GetDuelRecord(ctx, dbgen.GetDuelRecordParams{UserID: uid, GuildID: gid})
	if err != nil {
		RecordError(span, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "read record"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Handler builds the full route table wrapped in the middleware stack.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /interactions", s.HandleInteractions)
	mux.HandleFunc("GET /health", s.HandleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/assets/", http.StripPrefix("/assets/", StaticFileServer(s.Config.AssetsDir)))

	// API routes with rate limiting
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/{$}", s.HandleAPIDocs)
	apiMux.HandleFunc("GET /api/openapi.json", s.HandleAPISpec)
	apiMux.HandleFunc("GET /api/changelog", s.HandleChangelog)
	apiMux.HandleFunc("GET /api/updates", s.HandlePostedUpdates)
	apiMux.HandleFunc("GET /api/items", s.HandleItems)
	apiMux.HandleFunc("GET /api/guilds/{guild}/players/{user}/record", s.HandleDuelRecord)
	mux.Handle("/api/", s.APILimiter.Middleware(apiMux))

	return otelhttp.NewHandler(RequestLogger(Gzip(LimitRequestBody(mux))), "lowlife")
}

func (s *Server) Serve(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("starting server", "addr", addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Close releases the limiters and the database.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.APILimiter.Close()
		s.UserLimiter.Close()
		if s.DB != nil {
			err = s.DB.Close()
		}
	})
	return err
}
