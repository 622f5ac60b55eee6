package srv

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGzip_WithAcceptEncoding(t *testing.T) {
	// Handler that returns a known response
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	})

	handler := Gzip(inner)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Error("Content-Encoding should be gzip")
	}
	if rec.Header().Get("Content-Length") != "" {
		t.Error("Content-Length should be removed for gzipped response")
	}

	gr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("response is not valid gzip: %v", err)
	}
	defer gr.Close()

	body, err := io.ReadAll(gr)
	if err != nil {
		t.Fatalf("failed to read gzipped body: %v", err)
	}
	if string(body) != "hello world" {
		t.Errorf("got %q, want %q", string(body), "hello world")
	}
}

func TestGzip_WithoutAcceptEncoding(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	})

	handler := Gzip(inner)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") == "gzip" {
		t.Error("should not gzip without Accept-Encoding")
	}
	if rec.Body.String() != "hello world" {
		t.Errorf("got %q, want %q", rec.Body.String(), "hello world")
	}
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(old) })
	return &buf
}

func TestRequestLogger_SkipsQuietPaths(t *testing.T) {
	buf := captureLogs(t)
	called := 0
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called++
		w.WriteHeader(http.StatusOK)
	})
	handler := RequestLogger(inner)

	for _, path := range []string{"/health", "/metrics", "/assets/seal.png"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
	if called != 3 {
		t.Errorf("inner handler called %d times, want 3", called)
	}
	if strings.Contains(buf.String(), "http request") {
		t.Errorf("quiet paths were logged: %s", buf.String())
	}
}

func TestRequestLogger_CapturesStatus(t *testing.T) {
	buf := captureLogs(t)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	handler := RequestLogger(inner)

	req := httptest.NewRequest("POST", "/interactions", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	out := buf.String()
	if !strings.Contains(out, "status=401") || !strings.Contains(out, "path=/interactions") {
		t.Errorf("log line missing status or path: %s", out)
	}
}

func TestResponseRecorder_DefaultStatus(t *testing.T) {
	buf := captureLogs(t)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello")) // No explicit WriteHeader
	})

	handler := RequestLogger(inner)

	req := httptest.NewRequest("GET", "/api/changelog", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(buf.String(), "status=200") {
		t.Errorf("log line missing default status: %s", buf.String())
	}
}

func TestStaticFileServer_CacheHeaders(t *testing.T) {
	tmpDir := t.TempDir()

	files := map[string]string{
		"seal.png":   "fake png",
		"footer.jpg": "fake jpg",
		"notes.txt":  "hi",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	handler := StaticFileServer(tmpDir)

	tests := []struct {
		path      string
		wantCache string
	}{
		{"/seal.png", "public, max-age=31536000, immutable"},
		{"/footer.jpg", "public, max-age=31536000, immutable"},
		{"/notes.txt", "public, max-age=3600"}, // default
	}

	for _, tt := range tests {
		req := httptest.NewRequest("GET", tt.path, nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Cache-Control"); got != tt.wantCache {
			t.Errorf("%s: Cache-Control = %q, want %q", tt.path, got, tt.wantCache)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", tt.path, rec.Code)
		}
	}
}

func TestLimitRequestBody(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, "too large", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	handler := LimitRequestBody(inner)

	small := httptest.NewRecorder()
	handler.ServeHTTP(small, httptest.NewRequest("POST", "/interactions", strings.NewReader("{}")))
	if small.Code != http.StatusOK {
		t.Errorf("small body: status = %d", small.Code)
	}

	big := httptest.NewRecorder()
	body := bytes.Repeat([]byte("x"), MaxRequestBodySize+1)
	handler.ServeHTTP(big, httptest.NewRequest("POST", "/interactions", bytes.NewReader(body)))
	if big.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("big body: status = %d, want %d", big.Code, http.StatusRequestEntityTooLarge)
	}
}
