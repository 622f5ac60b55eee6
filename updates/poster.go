package updates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"lowlife.exe.dev/db/dbgen"
	"lowlife.exe.dev/discord"
)

var ErrNoChannel = errors.New("no update channel or webhook configured")

const (
	DefaultSealPath   = "assets/seal.png"
	DefaultFooterPath = "assets/footer.png"
	DefaultClaimTTL   = 5 * time.Minute

	statePending = "pending"
	stateEditing = "editing"
	statePosted  = "posted"
)

type Status string

const (
	StatusPosted         Status = "posted"
	StatusEdited         Status = "edited"
	StatusDuplicate      Status = "duplicate"
	StatusClaimed        Status = "claimed"
	StatusUnreleased     Status = "unreleased"
	StatusNoChannel      Status = "no_channel"
	StatusUnknownChannel Status = "unknown_channel"
	StatusFailed         Status = "failed"
)

// Sender is the part of discord.Client the poster needs.
type Sender interface {
	HasToken() bool
	SendMessageWithFiles(ctx context.Context, channelID string, msg discord.MessageSend, files []discord.File) (discord.Message, error)
	ExecuteWebhook(ctx context.Context, webhookURL string, msg discord.MessageSend, files []discord.File) (discord.Message, error)
}

type Config struct {
	Project    string
	ChannelID  string
	WebhookURL string
	SealPath   string
	FooterPath string
	// ClaimTTL is how long another run's unfinished claim blocks a post.
	ClaimTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		Project:    "Lowlife Society",
		SealPath:   DefaultSealPath,
		FooterPath: DefaultFooterPath,
		ClaimTTL:   DefaultClaimTTL,
	}
}

// Poster posts changelog entries once per version and digest.
type Poster struct {
	cfg    Config
	db     *sql.DB
	q      *dbgen.Queries
	sender Sender
	now    func() time.Time

	// OnResult is called after every attempt.
	OnResult func(e Entry, s Status)
}

func NewPoster(db *sql.DB, sender Sender, cfg Config) *Poster {
	if cfg.ClaimTTL <= 0 {
		cfg.ClaimTTL = DefaultClaimTTL
	}
	return &Poster{cfg: cfg, db: db, q: dbgen.New(db), sender: sender, now: time.Now}
}

type claim struct {
	skip   Status
	edited bool
	prev   *dbgen.PostedUpdate
}

// Post posts e unless the same version and digest was already posted.
// An edited entry is posted again, marked as edited. force reposts an
// unchanged entry.
func (p *Poster) Post(ctx context.Context, e Entry, force bool) (Status, error) {
	return p.post(ctx, e, force, "")
}

func (p *Poster) post(ctx context.Context, e Entry, force bool, mediaDir string) (s Status, err error) {
	defer func() {
		if p.OnResult != nil {
			p.OnResult(e, s)
		}
	}()
	if e.Unreleased {
		return StatusUnreleased, nil
	}
	if p.cfg.WebhookURL == "" && (p.cfg.ChannelID == "" || p.sender == nil || !p.sender.HasToken()) {
		slog.Warn("updates: no webhook or bot channel configured; skipping post", "version", e.Version)
		return StatusNoChannel, ErrNoChannel
	}

	c, err := p.claim(ctx, e, force)
	if err != nil {
		return StatusFailed, err
	}
	if c.skip != "" {
		slog.Info("updates: skipping post", "version", e.Version, "reason", c.skip)
		return c.skip, nil
	}
	if c.edited {
		slog.Info("updates: entry edited since last post", "version", e.Version, "diff", editDiff(e.Version, c.prev.Body, e.Body()))
	}

	if err := p.send(ctx, e, c.edited, mediaDir); err != nil {
		if rerr := p.release(ctx, e, c); rerr != nil {
			slog.Error("updates: release claim", "version", e.Version, "error", rerr)
		}
		if errors.Is(err, discord.ErrUnknownChannel) {
			slog.Warn("updates: update channel not found; skipping", "channel", p.cfg.ChannelID, "version", e.Version)
			return StatusUnknownChannel, nil
		}
		return StatusFailed, fmt.Errorf("post update %s: %w", e.Version, err)
	}

	if err := p.q.UpdatePostedUpdate(ctx, dbgen.UpdatePostedUpdateParams{
		Digest:   e.Digest(),
		Body:     e.Body(),
		State:    statePosted,
		PostedAt: p.now().UTC(),
		Version:  e.Version,
	}); err != nil {
		return StatusFailed, fmt.Errorf("record posted update %s: %w", e.Version, err)
	}
	if c.edited {
		slog.Info("updates: posted edited entry", "version", e.Version)
		return StatusEdited, nil
	}
	slog.Info("updates: posted entry", "version", e.Version)
	return StatusPosted, nil
}

// claim reserves the version in one transaction so that concurrent runs
// cannot both post it.
func (p *Poster) claim(ctx context.Context, e Entry, force bool) (claim, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return claim{}, fmt.Errorf("begin claim: %w", err)
	}
	defer tx.Rollback()
	q := p.q.WithTx(tx)
	now := p.now().UTC()
	digest := e.Digest()

	row, err := q.GetPostedUpdate(ctx, e.Version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = q.InsertPostedUpdate(ctx, dbgen.InsertPostedUpdateParams{
			Version: e.Version, Digest: digest, Body: e.Body(), State: statePending, PostedAt: now,
		})
		if err != nil {
			return claim{}, fmt.Errorf("insert claim: %w", err)
		}
		return claim{}, tx.Commit()
	case err != nil:
		return claim{}, fmt.Errorf("get posted update: %w", err)
	}

	stale := now.Sub(row.PostedAt) >= p.cfg.ClaimTTL
	switch row.State {
	case statePending:
		if !stale {
			return claim{skip: StatusClaimed}, nil
		}
		err = q.UpdatePostedUpdate(ctx, dbgen.UpdatePostedUpdateParams{
			Digest: digest, Body: e.Body(), State: statePending, PostedAt: now, Version: e.Version,
		})
		if err != nil {
			return claim{}, fmt.Errorf("retake claim: %w", err)
		}
		return claim{}, tx.Commit()
	case stateEditing:
		if !stale {
			return claim{skip: StatusClaimed}, nil
		}
	}

	prev := row
	prev.State = statePosted
	if row.Digest == digest && !force {
		if row.State == stateEditing {
			err = q.UpdatePostedUpdate(ctx, dbgen.UpdatePostedUpdateParams{
				Digest: row.Digest, Body: row.Body, State: statePosted, PostedAt: row.PostedAt, Version: e.Version,
			})
			if err != nil {
				return claim{}, fmt.Errorf("clear stale edit: %w", err)
			}
			return claim{skip: StatusDuplicate}, tx.Commit()
		}
		return claim{skip: StatusDuplicate}, nil
	}
	err = q.UpdatePostedUpdate(ctx, dbgen.UpdatePostedUpdateParams{
		Digest: row.Digest, Body: row.Body, State: stateEditing, PostedAt: now, Version: e.Version,
	})
	if err != nil {
		return claim{}, fmt.Errorf("claim edit: %w", err)
	}
	return claim{edited: row.Digest != digest, prev: &prev}, tx.Commit()
}

// release undoes a claim after a failed post.
func (p *Poster) release(ctx context.Context, e Entry, c claim) error {
	if c.prev == nil {
		return p.q.DeletePostedUpdate(ctx, e.Version)
	}
	return p.q.UpdatePostedUpdate(ctx, dbgen.UpdatePostedUpdateParams{
		Digest:   c.prev.Digest,
		Body:     c.prev.Body,
		State:    statePosted,
		PostedAt: c.prev.PostedAt,
		Version:  e.Version,
	})
}

func (p *Poster) send(ctx context.Context, e Entry, edited bool, mediaDir string) error {
	clean, media := e.WithoutMedia()
	art, files := p.resolveArt(media, mediaDir)
	em := BuildEmbed(clean, art, p.cfg.Project)
	if edited {
		em.Title = discord.Truncate(em.Title+" (edited)", discord.MaxTitle)
	}
	msg := discord.MessageSend{
		Embeds:          []discord.Embed{em},
		AllowedMentions: discord.NoMentions,
	}
	if p.cfg.WebhookURL != "" {
		msg.Username = p.cfg.Project
		_, err := p.sender.ExecuteWebhook(ctx, p.cfg.WebhookURL, msg, files)
		return err
	}
	_, err := p.sender.SendMessageWithFiles(ctx, p.cfg.ChannelID, msg, files)
	return err
}

// resolveArt falls back to the configured seal and footer images and
// turns local files into uploads.
func (p *Poster) resolveArt(m Media, mediaDir string) (Art, []discord.File) {
	var (
		art   Art
		files []discord.File
	)
	thumb, footer := m.Thumbnail, m.Footer
	thumbDir, footerDir := mediaDir, mediaDir
	if thumb == nil && p.cfg.SealPath != "" {
		thumb, thumbDir = &Image{Alt: "seal", Src: p.cfg.SealPath}, ""
	}
	if footer == nil && p.cfg.FooterPath != "" {
		footer, footerDir = &Image{Alt: "footer", Src: p.cfg.FooterPath}, ""
	}
	art.ThumbnailURL, files = attach(thumb, thumbDir, "thumbnail", files)
	art.FooterURL, files = attach(footer, footerDir, "footer", files)
	return art, files
}

func attach(img *Image, dir, name string, files []discord.File) (string, []discord.File) {
	if img == nil {
		return "", files
	}
	if img.Remote() {
		return img.Src, files
	}
	path := img.Src
	if dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("updates: image unavailable; posting without it", "path", path, "error", err)
		return "", files
	}
	ext := strings.ToLower(filepath.Ext(path))
	ct := mime.TypeByExtension(ext)
	if ct == "" {
		ct = "application/octet-stream"
	}
	f := discord.File{Name: name + ext, ContentType: ct, Data: data}
	return discord.AttachmentURL(f.Name), append(files, f)
}

func editDiff(version, before, after string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "v" + version + " (posted)",
		ToFile:   "v" + version + " (edited)",
		Context:  1,
	})
	if err != nil {
		return ""
	}
	return diff
}

// PostFile parses the changelog at path and posts its newest released
// entry. Relative image paths resolve against the changelog's directory.
func (p *Poster) PostFile(ctx context.Context, path string, force bool) (Status, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return StatusFailed, fmt.Errorf("read changelog: %w", err)
	}
	entries, err := Parse(string(raw))
	if err != nil {
		return StatusFailed, err
	}
	e, err := Latest(entries)
	if err != nil {
		return StatusFailed, err
	}
	return p.post(ctx, e, force, filepath.Dir(path))
}

// PostNotes posts the release tool's current notes.
func (p *Poster) PostNotes(ctx context.Context, src NotesSource, force bool) (Status, error) {
	e, err := src.Entry()
	if err != nil {
		return StatusFailed, err
	}
	return p.post(ctx, e, force, src.Dir)
}

// History lists what has been posted, newest first.
func (p *Poster) History(ctx context.Context) ([]dbgen.PostedUpdate, error) {
	return p.q.ListPostedUpdates(ctx)
}
