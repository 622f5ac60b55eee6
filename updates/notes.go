package updates

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	VersionFile = "version.txt"
	NotesFile   = "notes.md"
)

var (
	notesHeading = regexp.MustCompile(`^\*\*(.+)\*\*$`)
	notesStamp   = regexp.MustCompile(`^_\*UTC (\d{4}-\d{2}-\d{2}) \d{2}:\d{2}\*_$`)
)

// NotesSource reads the version and notes files the release tool writes
// into Dir.
type NotesSource struct {
	Dir string
}

func (s NotesSource) NotesPath() string { return filepath.Join(s.Dir, NotesFile) }

// Entry turns the current release notes into a changelog entry.
func (s NotesSource) Entry() (Entry, error) {
	rawVersion, err := os.ReadFile(filepath.Join(s.Dir, VersionFile))
	if errors.Is(err, os.ErrNotExist) {
		return Entry{}, ErrNoEntries
	}
	if err != nil {
		return Entry{}, fmt.Errorf("read version: %w", err)
	}
	version := strings.TrimSpace(string(rawVersion))
	if version == "" {
		return Entry{}, ErrNoEntries
	}
	notes, err := os.ReadFile(s.NotesPath())
	if errors.Is(err, os.ErrNotExist) {
		return Entry{}, ErrNoEntries
	}
	if err != nil {
		return Entry{}, fmt.Errorf("read notes: %w", err)
	}
	e := ParseNotes(string(notes))
	e.Version = version
	return e, nil
}

// ParseNotes reads a release notes body: bold section titles followed by
// bullet lines, and a UTC stamp footer.
func ParseNotes(body string) Entry {
	var e Entry
	var sec *Section
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case notesStamp.MatchString(line):
			e.Date = notesStamp.FindStringSubmatch(line)[1]
		case notesHeading.MatchString(line):
			e.Sections = append(e.Sections, Section{Name: notesHeading.FindStringSubmatch(line)[1]})
			sec = &e.Sections[len(e.Sections)-1]
		default:
			item := strings.TrimSpace(strings.TrimPrefix(line, "•"))
			if sec == nil {
				e.Sections = append(e.Sections, Section{Name: "Notes"})
				sec = &e.Sections[len(e.Sections)-1]
			}
			sec.Items = append(sec.Items, item)
		}
	}
	return e
}
