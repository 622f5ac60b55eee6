package srv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// Marker types for grouping in Honeycomb UI
const (
	MarkerTypeDeploy       = "deploy"
	MarkerTypeMigration    = "migration"
	MarkerTypeCommandSync  = "command-sync"
	MarkerTypeUpdatePosted = "update-posted"
)

const DefaultMarkerAPIBase = "https://api.honeycomb.io/1/markers"

// Build-time variables (set via -ldflags)
var (
	Version   = "dev"
	CommitSHA = "unknown"
	RepoURL   = ""
)

// Marker represents a Honeycomb marker
type Marker struct {
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time,omitempty"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	URL       string `json:"url,omitempty"`
}

// MarkerClient handles communication with Honeycomb Markers API.
// A nil client is valid and sends nothing.
type MarkerClient struct {
	apiKey  string
	dataset string
	base    string
	client  *http.Client
}

// NewMarkerClient creates a new marker client from environment variables.
// Returns nil if HONEYCOMB_API_KEY is not set.
func NewMarkerClient() *MarkerClient {
	apiKey := os.Getenv("HONEYCOMB_API_KEY")
	if apiKey == "" {
		return nil
	}

	dataset := os.Getenv("OTEL_SERVICE_NAME")
	if dataset == "" {
		dataset = "lowlife"
	}

	return &MarkerClient{
		apiKey:  apiKey,
		dataset: dataset,
		base:    DefaultMarkerAPIBase,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateMarker sends a marker to Honeycomb.
// Logs errors but doesn't return them - markers are best-effort.
func (mc *MarkerClient) CreateMarker(ctx context.Context, m Marker) {
	if mc == nil {
		return
	}

	if m.StartTime == 0 {
		m.StartTime = time.Now().Unix()
	}

	body, err := json.Marshal(m)
	if err != nil {
		slog.Error("marshal marker", "error", err)
		return
	}

	url := mc.base + "/" + mc.dataset
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		slog.Error("create marker request", "error", err)
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Honeycomb-Team", mc.apiKey)

	resp, err := mc.client.Do(req)
	if err != nil {
		slog.Error("send marker", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		slog.Error("marker API error", "status", resp.StatusCode, "type", m.Type, "message", m.Message)
		return
	}

	slog.Info("marker created", "type", m.Type, "message", m.Message)
}

// CreateDeployMarker creates a deploy marker with version and commit info
func (mc *MarkerClient) CreateDeployMarker(ctx context.Context) {
	if mc == nil {
		return
	}

	message := fmt.Sprintf("Deploy %s", Version)
	known := CommitSHA != "unknown" && CommitSHA != ""
	if known {
		message = fmt.Sprintf("Deploy %s (%s)", Version, CommitSHA[:min(7, len(CommitSHA))])
	}

	m := Marker{
		Message: message,
		Type:    MarkerTypeDeploy,
	}
	if known && RepoURL != "" {
		m.URL = fmt.Sprintf("%s/commit/%s", strings.TrimRight(RepoURL, "/"), CommitSHA)
	}

	mc.CreateMarker(ctx, m)
}

// CreateMigrationMarker creates a marker for a database migration
func (mc *MarkerClient) CreateMigrationMarker(filename string, startTime, endTime time.Time) {
	if mc == nil {
		return
	}

	mc.CreateMarker(context.Background(), Marker{
		StartTime: startTime.Unix(),
		EndTime:   endTime.Unix(),
		Message:   fmt.Sprintf("Migration: %s", filename),
		Type:      MarkerTypeMigration,
	})
}

// CreateCommandSyncMarker marks a slash command registration.
func (mc *MarkerClient) CreateCommandSyncMarker(ctx context.Context, count int, guildID string) {
	if mc == nil {
		return
	}
	scope := "global"
	if guildID != "" {
		scope = "guild " + guildID
	}
	mc.CreateMarker(ctx, Marker{
		Message: fmt.Sprintf("Registered %d commands (%s)", count, scope),
		Type:    MarkerTypeCommandSync,
	})
}

// CreateUpdatePostedMarker marks a changelog entry posted to Discord.
func (mc *MarkerClient) CreateUpdatePostedMarker(ctx context.Context, version, status string) {
	if mc == nil {
		return
	}
	mc.CreateMarker(ctx, Marker{
		Message: fmt.Sprintf("Update v%s %s", version, status),
		Type:    MarkerTypeUpdatePosted,
	})
}
