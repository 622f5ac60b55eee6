package release

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
)

const (
	StateFile   = "updates_state.json"
	QueueFile   = "notes_queue.md"
	VersionFile = "version.txt"
	NotesFile   = "notes.md"

	initialVersion = "0.1"
)

// State survives between release runs.
type State struct {
	LastSeen   string `json:"last_seen"`
	QueueCount int    `json:"queue_count"`
}

// LoadState reads the state file. A missing or unreadable file starts
// over from an empty state.
func LoadState(path string) State {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("release: read state", "path", path, "error", err)
		}
		return State{}
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		slog.Warn("release: corrupt state; starting over", "path", path, "error", err)
		return State{}
	}
	return s
}

func SaveState(path string, s State) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return writeFile(path, raw)
}

// LoadQueue returns the queued subject lines, skipping blanks.
func LoadQueue(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read queue: %w", err)
	}
	var lines []string
	for _, l := range strings.Split(string(raw), "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, strings.TrimRight(l, "\r"))
		}
	}
	return lines, nil
}

func SaveQueue(path string, lines []string) error {
	body := strings.Join(lines, "\n")
	if len(lines) > 0 {
		body += "\n"
	}
	return writeFile(path, []byte(body))
}

// ReadVersion returns the current version. A missing or empty file reads
// as 0.1.
func ReadVersion(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return initialVersion
	}
	if v := strings.TrimSpace(string(raw)); v != "" {
		return v
	}
	return initialVersion
}

var semver = regexp.MustCompile(`^\s*(\d+)\.(\d+)(?:\.(\d+))?`)

// BumpMinor turns X.Y[.Z] into X.(Y+1). Anything else becomes 0.1.
func BumpMinor(v string) string {
	m := semver.FindStringSubmatch(v)
	if m == nil {
		return initialVersion
	}
	major, _ := strconv.Atoi(m[1])
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return initialVersion
	}
	return fmt.Sprintf("%d.%d", major, minor+1)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
