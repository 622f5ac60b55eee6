// Package updates turns changelog entries into Discord update posts and
// keeps a record of what was already posted.
package updates

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
)

var ErrNoEntries = errors.New("no changelog entries")

// Section is one category block of an entry, such as Added or Fixed.
type Section struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// Entry is one version heading of a changelog.
type Entry struct {
	Version    string    `json:"version"`
	Date       string    `json:"date,omitempty"`
	Unreleased bool      `json:"unreleased,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	Sections   []Section `json:"sections"`
}

var (
	versionHeading = regexp.MustCompile(`^##\s+\[?[vV]?([0-9][0-9A-Za-z.+\-]*?)\]?(?:\s*(?:[-–—]|\()\s*(\d{4}-\d{2}-\d{2})\)?)?(?:\s+[-–—:]\s+.*|:\s+.*)?\s*$`)
	unreleased     = regexp.MustCompile(`(?i)^##\s+\[?unreleased\]?\s*$`)
	sectionHeading = regexp.MustCompile(`^###\s+(.+?)\s*$`)
	bullet         = regexp.MustCompile(`^\s*[-*•]\s+(.*)$`)
)

var knownSections = []string{"Added", "Changed", "Fixed", "Removed", "Deprecated", "Security", "Notes"}

// Parse reads a Keep a Changelog style document. Entries are returned in
// document order, newest first by convention.
func Parse(markdown string) ([]Entry, error) {
	var (
		entries []Entry
		cur     *Entry
		sec     *Section
		summary []string
	)
	flush := func() {
		if cur == nil {
			return
		}
		cur.Summary = strings.TrimSpace(strings.Join(summary, "\n"))
		var kept []Section
		for _, s := range cur.Sections {
			if len(s.Items) > 0 {
				kept = append(kept, s)
			}
		}
		cur.Sections = kept
		entries = append(entries, *cur)
		cur, sec, summary = nil, nil, nil
	}

	for _, line := range strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n") {
		switch {
		case unreleased.MatchString(line):
			flush()
			cur = &Entry{Version: "Unreleased", Unreleased: true}
			continue
		case strings.HasPrefix(line, "## "):
			flush()
			if m := versionHeading.FindStringSubmatch(line); m != nil {
				cur = &Entry{Version: m[1], Date: m[2]}
			} else {
				slog.Warn("updates: skipped changelog heading", "heading", line)
			}
			continue
		case cur == nil:
			continue
		}
		if m := sectionHeading.FindStringSubmatch(line); m != nil {
			cur.Sections = append(cur.Sections, Section{Name: sectionName(m[1])})
			sec = &cur.Sections[len(cur.Sections)-1]
			continue
		}
		text := strings.TrimSpace(line)
		if sec == nil {
			summary = append(summary, strings.TrimRight(line, " \t"))
			continue
		}
		if text == "" {
			continue
		}
		if m := bullet.FindStringSubmatch(line); m != nil {
			sec.Items = append(sec.Items, strings.TrimSpace(m[1]))
			continue
		}
		if n := len(sec.Items); n > 0 {
			sec.Items[n-1] += " " + text
		} else {
			sec.Items = append(sec.Items, text)
		}
	}
	flush()
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	return entries, nil
}

// sectionName drops a leading emoji and normalizes well known names.
func sectionName(raw string) string {
	name := strings.TrimLeftFunc(raw, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if name == "" {
		return strings.TrimSpace(raw)
	}
	for _, k := range knownSections {
		if strings.EqualFold(name, k) {
			return k
		}
	}
	return name
}

// Latest returns the newest released entry.
func Latest(entries []Entry) (Entry, error) {
	for _, e := range entries {
		if !e.Unreleased {
			return e, nil
		}
	}
	return Entry{}, ErrNoEntries
}

// Body renders the entry back to markdown. It is what digests and edit
// diffs are computed over.
func (e Entry) Body() string {
	var b strings.Builder
	b.WriteString("## [" + e.Version + "]")
	if e.Date != "" {
		b.WriteString(" - " + e.Date)
	}
	b.WriteString("\n")
	if e.Summary != "" {
		b.WriteString(e.Summary + "\n")
	}
	for _, s := range e.Sections {
		b.WriteString("\n### " + s.Name + "\n")
		for _, it := range s.Items {
			b.WriteString("- " + it + "\n")
		}
	}
	return b.String()
}

func (e Entry) Digest() string {
	sum := sha256.Sum256([]byte(e.Body()))
	return hex.EncodeToString(sum[:])
}
