package updates

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleChangelog = `# Changelog

All notable changes to this project are documented here.

## [Unreleased]

### Added
- Something in progress

## [1.2.0] - 2025-09-12

The big duel update.
![seal](assets/seal.png)

### ✨ added
- Grenades you can throw
* Kidnapping an unconscious foe
  adds a hostage to your bag
• Night maps

### Fixed
- Stamina never going below zero

### Empty

## v0.4 — 2025-08-20
### Changed
- Faster turns

## 0.3.1 (2025-08-01)
- stray bullet before any section
### Removed
- Old /fight command
`

func TestParse(t *testing.T) {
	entries, err := Parse(sampleChangelog)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []Entry{
		{
			Version:    "Unreleased",
			Unreleased: true,
			Sections:   []Section{{Name: "Added", Items: []string{"Something in progress"}}},
		},
		{
			Version: "1.2.0",
			Date:    "2025-09-12",
			Summary: "The big duel update.\n![seal](assets/seal.png)",
			Sections: []Section{
				{Name: "Added", Items: []string{
					"Grenades you can throw",
					"Kidnapping an unconscious foe adds a hostage to your bag",
					"Night maps",
				}},
				{Name: "Fixed", Items: []string{"Stamina never going below zero"}},
			},
		},
		{
			Version:  "0.4",
			Date:     "2025-08-20",
			Sections: []Section{{Name: "Changed", Items: []string{"Faster turns"}}},
		},
		{
			Version:  "0.3.1",
			Date:     "2025-08-01",
			Summary:  "- stray bullet before any section",
			Sections: []Section{{Name: "Removed", Items: []string{"Old /fight command"}}},
		},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}

	latest, err := Latest(entries)
	if err != nil || latest.Version != "1.2.0" {
		t.Errorf("Latest = %q, %v", latest.Version, err)
	}
}

func TestParseHeadingVariants(t *testing.T) {
	tests := []struct {
		heading     string
		version     string
		date        string
		wantSkipped bool
	}{
		{"## [1.2.0] - 2025-09-12", "1.2.0", "2025-09-12", false},
		{"## [1.2.0] - 2025-09-12 - Night Raid", "1.2.0", "2025-09-12", false},
		{"## [1.2.0] — 2025-09-12 — Night Raid", "1.2.0", "2025-09-12", false},
		{"## 1.2.0 (2025-09-12): Night Raid", "1.2.0", "2025-09-12", false},
		{"## [1.2.0] - Night Raid", "1.2.0", "", false},
		{"## v1.3.0-beta.1", "1.3.0-beta.1", "", false},
		{"## 1.3.0-beta - 2025-10-01", "1.3.0-beta", "2025-10-01", false},
		{"## Roadmap", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.heading, func(t *testing.T) {
			entries, err := Parse(tt.heading + "\n### Added\n- Thing\n")
			if tt.wantSkipped {
				if !errors.Is(err, ErrNoEntries) {
					t.Errorf("entries = %+v, err = %v, want ErrNoEntries", entries, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if entries[0].Version != tt.version || entries[0].Date != tt.date {
				t.Errorf("got version %q date %q, want %q %q", entries[0].Version, entries[0].Date, tt.version, tt.date)
			}
		})
	}
}

func TestParseNoEntries(t *testing.T) {
	for _, doc := range []string{"", "# Changelog\n\nNothing yet.\n", "## Notes\n- not a version\n"} {
		if _, err := Parse(doc); !errors.Is(err, ErrNoEntries) {
			t.Errorf("Parse(%q) err = %v, want ErrNoEntries", doc, err)
		}
	}
	if _, err := Latest([]Entry{{Version: "Unreleased", Unreleased: true}}); !errors.Is(err, ErrNoEntries) {
		t.Errorf("Latest of only unreleased: err = %v", err)
	}
}

func TestSectionName(t *testing.T) {
	tests := map[string]string{
		"Added":      "Added",
		"FIXED":      "Fixed",
		"🐞 fixed":    "Fixed",
		"⚖️ Balance": "Balance",
		"Known Bugs": "Known Bugs",
		"📝 notes":    "Notes",
	}
	for in, want := range tests {
		if got := sectionName(in); got != want {
			t.Errorf("sectionName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDigest(t *testing.T) {
	e := Entry{Version: "1.0", Date: "2025-01-01", Sections: []Section{{Name: "Added", Items: []string{"a"}}}}
	same := e
	same.Sections = []Section{{Name: "Added", Items: []string{"a"}}}
	if e.Digest() != same.Digest() {
		t.Error("equal entries should share a digest")
	}
	edited := e
	edited.Sections = []Section{{Name: "Added", Items: []string{"a", "b"}}}
	if e.Digest() == edited.Digest() {
		t.Error("edited entry should change the digest")
	}
	wantBody := "## [1.0] - 2025-01-01\n\n### Added\n- a\n"
	if e.Body() != wantBody {
		t.Errorf("Body = %q", e.Body())
	}
}
