package srv

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type markerSink struct {
	mu      sync.Mutex
	markers []Marker
	paths   []string
	keys    []string
}

func newMarkerSink(t *testing.T, status int) (*markerSink, *MarkerClient) {
	t.Helper()
	sink := &markerSink{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var m Marker
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		sink.mu.Lock()
		sink.markers = append(sink.markers, m)
		sink.paths = append(sink.paths, r.URL.Path)
		sink.keys = append(sink.keys, r.Header.Get("X-Honeycomb-Team"))
		sink.mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(ts.Close)
	mc := &MarkerClient{apiKey: "hc-key", dataset: "lowlife", base: ts.URL + "/1/markers", client: ts.Client()}
	return sink, mc
}

func TestNewMarkerClient_Env(t *testing.T) {
	t.Setenv("HONEYCOMB_API_KEY", "")
	if mc := NewMarkerClient(); mc != nil {
		t.Error("expected nil client without an API key")
	}

	t.Setenv("HONEYCOMB_API_KEY", "k")
	t.Setenv("OTEL_SERVICE_NAME", "")
	mc := NewMarkerClient()
	if mc == nil || mc.dataset != "lowlife" {
		t.Fatalf("expected default dataset lowlife, got %+v", mc)
	}

	t.Setenv("OTEL_SERVICE_NAME", "lowlife-staging")
	if mc := NewMarkerClient(); mc.dataset != "lowlife-staging" {
		t.Errorf("dataset = %q", mc.dataset)
	}
}

func TestMarkerClient_NilIsNoop(t *testing.T) {
	var mc *MarkerClient
	mc.CreateMarker(context.Background(), Marker{Message: "x"})
	mc.CreateDeployMarker(context.Background())
	mc.CreateMigrationMarker("001-base.sql", time.Now(), time.Now())
	mc.CreateCommandSyncMarker(context.Background(), 2, "")
	mc.CreateUpdatePostedMarker(context.Background(), "1.0", "posted")
}

func TestMarkerClient_Sends(t *testing.T) {
	sink, mc := newMarkerSink(t, http.StatusCreated)
	start := time.Unix(1_700_000_000, 0)

	mc.CreateMigrationMarker("002-items.sql", start, start.Add(2*time.Second))
	mc.CreateCommandSyncMarker(context.Background(), 2, "99")
	mc.CreateUpdatePostedMarker(context.Background(), "0.4", "edited")

	if len(sink.markers) != 3 {
		t.Fatalf("got %d markers, want 3", len(sink.markers))
	}
	for i, p := range sink.paths {
		if p != "/1/markers/lowlife" {
			t.Errorf("marker %d path = %q", i, p)
		}
		if sink.keys[i] != "hc-key" {
			t.Errorf("marker %d api key = %q", i, sink.keys[i])
		}
	}
	mig := sink.markers[0]
	if mig.Type != MarkerTypeMigration || mig.StartTime != start.Unix() || mig.EndTime != start.Unix()+2 {
		t.Errorf("migration marker = %+v", mig)
	}
	if got := sink.markers[1].Message; got != "Registered 2 commands (guild 99)" {
		t.Errorf("command sync message = %q", got)
	}
	if got := sink.markers[2]; got.Type != MarkerTypeUpdatePosted || got.Message != "Update v0.4 edited" {
		t.Errorf("update marker = %+v", got)
	}
}

func TestMarkerClient_DeployMarker(t *testing.T) {
	sink, mc := newMarkerSink(t, http.StatusOK)

	oldV, oldC, oldR := Version, CommitSHA, RepoURL
	t.Cleanup(func() { Version, CommitSHA, RepoURL = oldV, oldC, oldR })
	Version, CommitSHA, RepoURL = "v1.3.0", "0123456789abcdef", "https://example.com/lowlife/"

	mc.CreateDeployMarker(context.Background())

	if len(sink.markers) != 1 {
		t.Fatalf("got %d markers", len(sink.markers))
	}
	m := sink.markers[0]
	if m.Message != "Deploy v1.3.0 (0123456)" {
		t.Errorf("message = %q", m.Message)
	}
	if m.URL != "https://example.com/lowlife/commit/0123456789abcdef" {
		t.Errorf("url = %q", m.URL)
	}
	if m.StartTime == 0 {
		t.Error("start time should default to now")
	}
}

func TestMarkerClient_APIErrorIsSwallowed(t *testing.T) {
	buf := captureLogs(t)
	_, mc := newMarkerSink(t, http.StatusUnauthorized)

	mc.CreateMarker(context.Background(), Marker{Message: "x", Type: MarkerTypeDeploy})

	if !strings.Contains(buf.String(), "marker API error") {
		t.Errorf("expected error log, got %s", buf.String())
	}
}
